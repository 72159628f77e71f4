package handlers

import (
	"context"
	"errors"
	"net/url"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/models"
)

// AirtableClient is the part of the Airtable client the handlers use.
type AirtableClient interface {
	Configured() bool
	CaseTable() string
	ListCases(ctx context.Context) ([]models.Case, error)
	ListRecords(ctx context.Context, table string, query url.Values) ([]airtable.Record, error)
	CountRecords(ctx context.Context, table string) (int, error)
	CreateRecords(ctx context.Context, table string, fields ...interface{}) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

// CaseForwarder hands new cases to the intake automation.
type CaseForwarder interface {
	Configured() bool
	SubmitCase(ctx context.Context, s models.CaseSubmission) error
}

// feedLimit caps how many stored cases one feed request reads.
const feedLimit = 500

// caseStore reads cases from mongo and, when configured, the Airtable mirror.
// Mongo wins when both hold the same case id.
type caseStore struct {
	DB       databases.CaseDatabase
	Airtable AirtableClient
}

func (s caseStore) airtableEnabled() bool {
	return s.Airtable != nil && s.Airtable.Configured()
}

// find looks a case up by id.
func (s caseStore) find(ctx context.Context, caseID string) (*models.Case, error) {
	c, err := s.DB.FindByCaseID(ctx, caseID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, databases.ErrNotFound) || !s.airtableEnabled() {
		return nil, err
	}

	mirrored, err := s.Airtable.ListCases(ctx)
	if err != nil {
		return nil, err
	}
	for i := range mirrored {
		if mirrored[i].CaseID == caseID {
			return &mirrored[i], nil
		}
	}
	return nil, databases.ErrNotFound
}

// list returns stored cases matching filter merged with the Airtable mirror,
// newest first. An Airtable failure degrades to mongo only.
func (s caseStore) list(ctx context.Context, filter bson.M) ([]models.Case, error) {
	var stored, mirrored []models.Case

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(feedLimit)
		var err error
		stored, err = s.DB.Find(gctx, filter, opts)
		return err
	})
	if s.airtableEnabled() {
		g.Go(func() error {
			var err error
			mirrored, err = s.Airtable.ListCases(gctx)
			if err != nil {
				zap.S().Warnw("failed to list airtable cases, serving mongo only", "error", err)
				mirrored = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeCases(stored, mirrored), nil
}

func mergeCases(primary, secondary []models.Case) []models.Case {
	seen := make(map[string]bool, len(primary))
	out := make([]models.Case, 0, len(primary)+len(secondary))
	for _, c := range primary {
		seen[c.CaseID] = true
		out = append(out, c)
	}
	for _, c := range secondary {
		if seen[c.CaseID] {
			continue
		}
		seen[c.CaseID] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
