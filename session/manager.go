// Package session wraps the remote session endpoints: listing, fetching,
// renaming and deleting sessions, plus the authoritative run-record fetch the
// engine uses for transcript reconciliation.
package session

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/transport"
)

// Manager issues session requests through the shared caller.
type Manager struct {
	caller *transport.Caller
}

// NewManager constructs a Manager.
func NewManager(caller *transport.Caller) *Manager {
	return &Manager{caller: caller}
}

// List returns the sessions known to the remote service.
func (m *Manager) List(ctx context.Context) ([]core.SessionSummary, error) {
	var out []core.SessionSummary
	if err := m.caller.Unary(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*core.SessionSummary, error) {
	var out core.SessionSummary
	if err := m.caller.Unary(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Runs returns the authoritative ordered run records of a session.
func (m *Manager) Runs(ctx context.Context, sessionID string) ([]core.RunRecord, error) {
	var out []core.RunRecord
	if err := m.caller.Unary(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID)+"/runs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename sets a session title.
func (m *Manager) Rename(ctx context.Context, sessionID, title string) error {
	body := map[string]string{"title": title}
	return m.caller.Unary(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/rename", body, nil)
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.caller.Unary(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil, nil)
}
