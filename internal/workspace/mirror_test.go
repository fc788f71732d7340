package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMirror_CreatesWhenNoRecordExists(t *testing.T) {
	var created RecordFields
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/records/search":
			assert.Equal(t, "req-1", r.URL.Query().Get("query"))
			json.NewEncoder(w).Encode(searchResponse{})
		case r.Method == http.MethodPost && r.URL.Path == "/records":
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	m := NewHTTPMirror(srv.URL, "token")
	err := m.UpsertRecord(context.Background(), "req-1", RecordFields{
		RequestID: "req-1",
		Status:    "processing",
		Amount:    "100",
		Currency:  "USDC",
	})

	require.NoError(t, err)
	assert.Equal(t, "req-1", created.RequestID)
	assert.Equal(t, "processing", created.Status)
}

func TestHTTPMirror_PatchesExistingRecord(t *testing.T) {
	var patchedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/records/search":
			resp := searchResponse{}
			resp.Results = append(resp.Results, struct {
				RecordID string `json:"recordId"`
			}{RecordID: "rec-42"})
			json.NewEncoder(w).Encode(resp)
		case r.Method == http.MethodPatch:
			patchedPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	m := NewHTTPMirror(srv.URL, "token")
	err := m.UpsertRecord(context.Background(), "req-1", RecordFields{RequestID: "req-1", Status: "payment_received"})

	require.NoError(t, err)
	assert.Equal(t, "/records/rec-42", patchedPath)
}

func TestHTTPMirror_SearchFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewHTTPMirror(srv.URL, "token")
	err := m.UpsertRecord(context.Background(), "req-1", RecordFields{RequestID: "req-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNoopMirror(t *testing.T) {
	assert.NoError(t, NoopMirror{}.UpsertRecord(context.Background(), "req-1", RecordFields{}))
}
