// Package memory wraps the remote user-memory endpoints.
package memory

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hupe1980/agentbridge/transport"
)

// Record is one stored user memory.
type Record struct {
	MemoryID  string   `json:"memory_id"`
	Memory    string   `json:"memory"`
	Topics    []string `json:"topics,omitempty"`
	UpdatedAt int64    `json:"updated_at,omitempty"`
}

// Manager issues memory requests through the shared caller.
type Manager struct {
	caller *transport.Caller
}

// NewManager constructs a Manager.
func NewManager(caller *transport.Caller) *Manager {
	return &Manager{caller: caller}
}

// List returns the memories stored for a user.
func (m *Manager) List(ctx context.Context, userID string) ([]Record, error) {
	path := "/memories"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	var out []Record
	if err := m.caller.Unary(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one memory.
func (m *Manager) Delete(ctx context.Context, memoryID string) error {
	return m.caller.Unary(ctx, http.MethodDelete, "/memories/"+url.PathEscape(memoryID), nil, nil)
}
