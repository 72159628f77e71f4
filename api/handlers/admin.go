package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/api"
	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

// Exportable tables
const (
	ExportWaitlist = "waitlist"
	ExportSurveys  = "surveys"
	ExportCases    = "cases"
)

// Stats sources
const (
	SourceAirtable = "airtable"
	SourceMongo    = "mongo"
)

// Admin serves the admin dashboard. Every route is behind AdminAuth.
type Admin struct {
	Airtable   AirtableClient
	CaseDB     databases.CaseDatabase
	WaitlistDB databases.WaitlistDatabase
	SurveyDB   databases.SurveyDatabase
	Engine     *lifecycle.Engine
	Now        func() time.Time
}

func (a Admin) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a Admin) airtableEnabled() bool {
	return a.Airtable != nil && a.Airtable.Configured()
}

// StatsHandler counts waitlist signups, surveys and cases in parallel
func (a Admin) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var stats models.StatsResponse
	g, gctx := errgroup.WithContext(ctx)
	if a.airtableEnabled() {
		stats.Source = SourceAirtable
		g.Go(func() (err error) {
			stats.Waitlist, err = a.Airtable.CountRecords(gctx, airtable.TableWaitlist)
			return err
		})
		g.Go(func() (err error) {
			stats.Surveys, err = a.Airtable.CountRecords(gctx, airtable.TableSurveys)
			return err
		})
		g.Go(func() (err error) {
			stats.Cases, err = a.Airtable.CountRecords(gctx, a.Airtable.CaseTable())
			return err
		})
	} else {
		stats.Source = SourceMongo
		g.Go(func() error {
			n, err := a.WaitlistDB.CountDocuments(gctx)
			stats.Waitlist = int(n)
			return err
		})
		g.Go(func() error {
			n, err := a.SurveyDB.CountDocuments(gctx)
			stats.Surveys = int(n)
			return err
		})
		g.Go(func() error {
			n, err := a.CaseDB.CountDocuments(gctx, bson.M{})
			stats.Cases = int(n)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		config.ErrorStatus("failed to get stats", http.StatusBadGateway, w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CasesHandler pages through stored cases, newest first, with their current
// lifecycle stage
func (a Admin) CasesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := a.CaseDB.FindPage(ctx, bson.M{}, limit, page)
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}

	engine := a.Engine
	if engine == nil {
		engine = lifecycle.Default()
	}
	now := a.now()
	out := make([]models.CaseResponse, 0, len(cases))
	for _, c := range cases {
		resp, err := caseResponse(engine, c, lifecycle.RoleCommunity, now)
		if err != nil {
			zap.S().Warnw("skipping unclassifiable case", "caseId", c.CaseID, "error", err)
			continue
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, models.CaseListResponse{Cases: out, Count: len(out)})
}

// ExportHandler streams ?table= as CSV
func (a Admin) ExportHandler(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	switch table {
	case ExportWaitlist, ExportSurveys, ExportCases:
	default:
		config.ErrorStatus("table must be waitlist, surveys or cases", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var (
		rows []map[string]interface{}
		err  error
	)
	if a.airtableEnabled() {
		rows, err = a.airtableRows(ctx, table)
	} else {
		rows, err = a.mongoRows(ctx, table)
	}
	if err != nil {
		config.ErrorStatus("failed to export "+table, http.StatusBadGateway, w, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", table, a.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := writeCSV(w, rows); err != nil {
		zap.S().Errorw("failed to write csv export", "table", table, "error", err)
	}
}

func (a Admin) airtableRows(ctx context.Context, table string) ([]map[string]interface{}, error) {
	name := map[string]string{
		ExportWaitlist: airtable.TableWaitlist,
		ExportSurveys:  airtable.TableSurveys,
		ExportCases:    a.Airtable.CaseTable(),
	}[table]

	records, err := a.Airtable.ListRecords(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		row := map[string]interface{}{"id": rec.ID, "createdTime": rec.CreatedTime}
		for k, v := range rec.Fields {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (a Admin) mongoRows(ctx context.Context, table string) ([]map[string]interface{}, error) {
	var (
		docs interface{}
		err  error
	)
	switch table {
	case ExportWaitlist:
		docs, err = a.WaitlistDB.Find(ctx)
	case ExportSurveys:
		docs, err = a.SurveyDB.Find(ctx)
	default:
		docs, err = a.CaseDB.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	}
	if err != nil {
		return nil, err
	}

	// the JSON shape is the public one, so contact fields hidden from the API
	// stay out of case exports too
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	rows := []map[string]interface{}{}
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

var preferredColumns = []string{"id", "createdTime", "caseId", "case_id", "email"}

func columnsOf(rows []map[string]interface{}) []string {
	seen := map[string]bool{}
	var rest []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	var cols []string
	for _, c := range preferredColumns {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}
	sort.Strings(rest)
	for _, c := range rest {
		if seen[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

func writeCSV(w http.ResponseWriter, rows []map[string]interface{}) error {
	cols := columnsOf(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			record[i] = csvCell(row[c])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvCell renders v for a spreadsheet. Nested values are written as JSON and
// cells that a spreadsheet would evaluate as a formula are quoted.
func csvCell(v interface{}) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case bool, float64:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			s = fmt.Sprint(t)
		} else {
			s = string(b)
		}
	}
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		s = "'" + s
	}
	return s
}
