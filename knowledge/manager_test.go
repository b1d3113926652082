package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/transport"
)

func TestManager_ListContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge/content", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Content{
			{ID: "k-1", Name: "handbook.pdf", Status: "completed", MimeType: "application/pdf"},
		})
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	docs, err := m.ListContent(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "handbook.pdf", docs[0].Name)
}

func TestManager_GetContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge/content/k-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Content{ID: "k-1", Name: "handbook.pdf", SizeBytes: 2048})
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	doc, err := m.GetContent(context.Background(), "k-1")

	require.NoError(t, err)
	assert.Equal(t, int64(2048), doc.SizeBytes)
}

func TestManager_DeleteContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/knowledge/content/k-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	require.NoError(t, m.DeleteContent(context.Background(), "k-1"))
}
