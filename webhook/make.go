// Package webhook forwards case submissions to the Make scenario that files
// them into the back office.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/models"
)

// ErrNotConfigured is returned when MAKE_WEBHOOK_URL is unset.
var ErrNotConfigured = errors.New("make webhook not configured: missing MAKE_WEBHOOK_URL")

// StatusError is returned when the scenario answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Make webhook error %d: %s", e.Code, e.Body)
}

// Client posts to one Make webhook URL.
type Client struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// New returns a client for url. An empty url yields a client whose calls fail
// with ErrNotConfigured.
func New(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{url: url, httpClient: httpClient, now: time.Now}
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// SubmitCase posts the submission payload. The case id and the fields the
// form requires must be present. A missing submitted_at is stamped now.
func (c *Client) SubmitCase(ctx context.Context, s models.CaseSubmission) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if s.CaseID == "" {
		return fmt.Errorf("%w: case_id", models.ErrMissingField)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.SubmittedAt == "" {
		s.SubmittedAt = c.now().UTC().Format(time.RFC3339)
	}

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		zap.S().Errorw("make webhook failed", "caseID", s.CaseID, "status", resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	zap.S().Infow("make webhook accepted case", "caseID", s.CaseID)
	return nil
}
