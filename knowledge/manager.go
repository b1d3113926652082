// Package knowledge wraps the remote knowledge-content endpoints.
package knowledge

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hupe1980/agentbridge/transport"
)

// Content describes one indexed knowledge document.
type Content struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Manager issues knowledge requests through the shared caller.
type Manager struct {
	caller *transport.Caller
}

// NewManager constructs a Manager.
func NewManager(caller *transport.Caller) *Manager {
	return &Manager{caller: caller}
}

// ListContent returns the indexed documents.
func (m *Manager) ListContent(ctx context.Context) ([]Content, error) {
	var out []Content
	if err := m.caller.Unary(ctx, http.MethodGet, "/knowledge/content", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetContent fetches one document's metadata.
func (m *Manager) GetContent(ctx context.Context, id string) (*Content, error) {
	var out Content
	if err := m.caller.Unary(ctx, http.MethodGet, "/knowledge/content/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContent removes one document from the index.
func (m *Manager) DeleteContent(ctx context.Context, id string) error {
	return m.caller.Unary(ctx, http.MethodDelete, "/knowledge/content/"+url.PathEscape(id), nil, nil)
}
