// Package evaluation wraps the remote evaluation-run endpoints.
package evaluation

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hupe1980/agentbridge/transport"
)

// Run is one stored evaluation run.
type Run struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	AgentID   string  `json:"agent_id,omitempty"`
	EvalType  string  `json:"eval_type,omitempty"`
	Score     float64 `json:"score,omitempty"`
	CreatedAt int64   `json:"created_at,omitempty"`
}

// Manager issues evaluation requests through the shared caller.
type Manager struct {
	caller *transport.Caller
}

// NewManager constructs a Manager.
func NewManager(caller *transport.Caller) *Manager {
	return &Manager{caller: caller}
}

// List returns the stored evaluation runs.
func (m *Manager) List(ctx context.Context) ([]Run, error) {
	var out []Run
	if err := m.caller.Unary(ctx, http.MethodGet, "/eval-runs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one evaluation run.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.caller.Unary(ctx, http.MethodDelete, "/eval-runs/"+url.PathEscape(id), nil, nil)
}
