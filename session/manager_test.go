package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/transport"
)

func TestManager_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/sessions", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]core.SessionSummary{
			{SessionID: "s-1", Title: "first"},
			{SessionID: "s-2", Title: "second"},
		})
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	sessions, err := m.List(context.Background())

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s-1", sessions[0].SessionID)
	assert.Equal(t, "second", sessions[1].Title)
}

func TestManager_Runs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/s%201/runs", r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode([]core.RunRecord{{RunID: "r-1", Input: "hi", Content: "hello"}})
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	records, err := m.Runs(context.Background(), "s 1")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Content)
}

func TestManager_Rename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sessions/s-1/rename", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new title", body["title"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	require.NoError(t, m.Rename(context.Background(), "s-1", "new title"))
}

func TestManager_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/sessions/s-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	require.NoError(t, m.Delete(context.Background(), "s-1"))
}

func TestManager_GetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"session not found"}`))
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	_, err := m.Get(context.Background(), "missing")

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "session not found", apiErr.Detail)
}
