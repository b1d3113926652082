// Package metrics wraps the remote usage-metrics endpoint.
package metrics

import (
	"context"
	"net/http"

	"github.com/hupe1980/agentbridge/transport"
)

// Snapshot aggregates usage counters reported by the remote service.
type Snapshot struct {
	TotalRuns     int64 `json:"total_runs"`
	TotalSessions int64 `json:"total_sessions"`
	TotalTokens   int64 `json:"total_tokens"`
	UpdatedAt     int64 `json:"updated_at,omitempty"`
}

// Manager issues metrics requests through the shared caller.
type Manager struct {
	caller *transport.Caller
}

// NewManager constructs a Manager.
func NewManager(caller *transport.Caller) *Manager {
	return &Manager{caller: caller}
}

// Get fetches the current usage snapshot.
func (m *Manager) Get(ctx context.Context) (*Snapshot, error) {
	var out Snapshot
	if err := m.caller.Unary(ctx, http.MethodGet, "/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
