// Package workspace mirrors payment request lifecycle changes into an
// external workspace (a Notion-like record store). Mirroring is best effort:
// the duplicate-record lookup is a text search with no uniqueness guarantee,
// so callers must not assume strict exactly-once semantics.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RecordFields is the flattened field set pushed to the workspace, keyed by
// the public request ID.
type RecordFields struct {
	RequestID     string `json:"requestId"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Network       string `json:"network"`
	RecipientName string `json:"recipientName"`
	Description   string `json:"description"`
	PaidAt        string `json:"paidAt,omitempty"`
	RefundDueAt   string `json:"refundDueAt,omitempty"`
}

// Mirror upserts lifecycle records keyed by request ID. Implementations must
// support "find existing record by request ID, else create", since the
// scheduler's activation cycle re-enters with the same ID.
type Mirror interface {
	UpsertRecord(ctx context.Context, requestID string, fields RecordFields) error
}

// HTTPMirror is the workspace client used in production.
type HTTPMirror struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPMirror(baseURL, token string) *HTTPMirror {
	return &HTTPMirror{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		RecordID string `json:"recordId"`
	} `json:"results"`
}

func (m *HTTPMirror) UpsertRecord(ctx context.Context, requestID string, fields RecordFields) error {
	recordID, err := m.findRecord(ctx, requestID)
	if err != nil {
		return err
	}

	if recordID != "" {
		return m.send(ctx, http.MethodPatch, "/records/"+recordID, fields)
	}
	return m.send(ctx, http.MethodPost, "/records", fields)
}

func (m *HTTPMirror) findRecord(ctx context.Context, requestID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/records/search?query="+requestID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("workspace search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("workspace search returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode workspace search response: %w", err)
	}
	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].RecordID, nil
}

func (m *HTTPMirror) send(ctx context.Context, method, path string, fields RecordFields) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("workspace upsert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("workspace upsert returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopMirror is wired when the workspace integration is disabled.
type NoopMirror struct{}

func (NoopMirror) UpsertRecord(ctx context.Context, requestID string, fields RecordFields) error {
	return nil
}
