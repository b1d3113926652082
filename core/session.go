package core

// SessionSummary describes one remote session as listed by the session API
// and by the client's local session registry.
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// RunRecord is the authoritative record of one completed run as stored
// server-side. Reconciliation converts an ordered list of run records into
// conversation entries, replacing the locally accreted transcript.
type RunRecord struct {
	RunID       string       `json:"run_id"`
	Input       string       `json:"input"`
	Content     string       `json:"content"`
	Tools       []ToolCall   `json:"tools,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   int64        `json:"created_at"`
}
