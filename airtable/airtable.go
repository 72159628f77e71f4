// Package airtable talks to the Airtable REST API, the store behind the
// prelaunch waitlist, the post-submit survey and the mirrored case table.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dnounce/dnounce-api/config"
)

// DefaultBaseURL is the public Airtable API root.
const DefaultBaseURL = "https://api.airtable.com/v0"

// Tables the service reads and writes.
const (
	TableWaitlist    = "waitlist_signups"
	TableSurveys     = "post_submit_surveys"
	DefaultCaseTable = "case_submissions"
)

const (
	// Airtable allows five requests per second per base.
	requestsPerSecond = 5
	// Airtable rejects create calls with more than ten records.
	maxCreateBatch = 10
)

// ErrNotConfigured is returned by every call when the API key or base id is
// missing.
var ErrNotConfigured = errors.New("airtable not configured")

// StatusError is returned when Airtable answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("airtable API error %d: %s", e.Code, e.Body)
}

// Record is one Airtable row.
type Record struct {
	ID          string                 `json:"id,omitempty"`
	CreatedTime string                 `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

type listResponse struct {
	Records []json.RawMessage `json:"records"`
	Offset  string            `json:"offset"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	baseID     string
	caseTable  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimit overrides the per-base request rate.
func WithRateLimit(l rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(l, burst) }
}

// NewClient builds a client for one base.
func NewClient(apiKey, baseID, caseTable string, opts ...Option) *Client {
	if caseTable == "" {
		caseTable = DefaultCaseTable
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		baseID:     baseID,
		caseTable:  caseTable,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(requestsPerSecond, requestsPerSecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New builds a client from the service config.
func New(conf *config.Config, opts ...Option) *Client {
	return NewClient(conf.AirtableAPIKey, conf.AirtableBaseID, conf.AirtableTableID, opts...)
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.baseID != ""
}

// CaseTable is the table holding mirrored case submissions.
func (c *Client) CaseTable() string {
	return c.caseTable
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// list walks every page of table matching query, calling fn per raw record.
func (c *Client) list(ctx context.Context, table string, query url.Values, fn func(json.RawMessage) error) error {
	if query == nil {
		query = url.Values{}
	}
	for {
		var page listResponse
		endpoint := c.tableURL(table)
		if enc := query.Encode(); enc != "" {
			endpoint += "?" + enc
		}
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return err
		}
		for _, raw := range page.Records {
			if err := fn(raw); err != nil {
				return err
			}
		}
		if page.Offset == "" {
			return nil
		}
		query.Set("offset", page.Offset)
	}
}

// ListRecords returns every record in table matching query.
func (c *Client) ListRecords(ctx context.Context, table string, query url.Values) ([]Record, error) {
	records := []Record{}
	err := c.list(ctx, table, query, func(raw json.RawMessage) error {
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountRecords counts the rows of table.
func (c *Client) CountRecords(ctx context.Context, table string) (int, error) {
	n := 0
	err := c.list(ctx, table, nil, func(json.RawMessage) error {
		n++
		return nil
	})
	return n, err
}

// CreateRecords appends rows to table. Each value is marshalled as the fields
// object of one record.
func (c *Client) CreateRecords(ctx context.Context, table string, fields ...interface{}) error {
	for start := 0; start < len(fields); start += maxCreateBatch {
		end := start + maxCreateBatch
		if end > len(fields) {
			end = len(fields)
		}
		batch := make([]map[string]interface{}, 0, end-start)
		for _, f := range fields[start:end] {
			batch = append(batch, map[string]interface{}{"fields": f})
		}
		if err := c.do(ctx, http.MethodPost, c.tableURL(table), map[string]interface{}{"records": batch}, nil); err != nil {
			return fmt.Errorf("create %s records: %w", table, err)
		}
	}
	zap.S().Debugw("airtable records created", "table", table, "count", len(fields))
	return nil
}

// EmailExists reports whether a waitlist row already holds email.
func (c *Client) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	escaped := strings.ReplaceAll(email, `"`, `\"`)
	q := url.Values{
		"filterByFormula": {fmt.Sprintf(`{email}="%s"`, escaped)},
		"maxRecords":      {"1"},
	}
	var page listResponse
	if err := c.do(ctx, http.MethodGet, c.tableURL(TableWaitlist)+"?"+q.Encode(), nil, &page); err != nil {
		return false, err
	}
	return len(page.Records) > 0, nil
}
