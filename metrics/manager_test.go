package metrics

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

func TestManager_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/metrics", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Snapshot{TotalRuns: 42, TotalSessions: 7, TotalTokens: 12345})
	}))
	defer srv.Close()

	m := NewManager(transport.New(srv.URL))
	snap, err := m.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), snap.TotalRuns)
	assert.Equal(t, int64(7), snap.TotalSessions)
	assert.Equal(t, int64(12345), snap.TotalTokens)
}
