package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation entry.
type Role string

const (
	// RoleUser marks entries authored by the local user.
	RoleUser Role = "user"
	// RoleAgent marks entries authored by the remote agent or team.
	RoleAgent Role = "agent"
)

// UIAnnotation is a client-only decoration attached to a tool call, typically
// driving a generative UI component. It is never persisted server-side and
// must survive transcript reconciliation for every tool call whose id is
// still present in the authoritative transcript.
type UIAnnotation struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`
}

// ToolCall records one tool invocation surfaced during a run, including the
// eventual result content and error flag delivered by a completion event.
type ToolCall struct {
	ToolCallID           string         `json:"tool_call_id"`
	ToolName             string         `json:"tool_name"`
	ToolArgs             map[string]any `json:"tool_args,omitempty"`
	Content              string         `json:"content,omitempty"`
	ToolCallError        bool           `json:"tool_call_error,omitempty"`
	RequiresConfirmation bool           `json:"requires_confirmation,omitempty"`

	// Annotation is client-only and excluded from wire payloads.
	Annotation *UIAnnotation `json:"-"`
}

// Clone returns a deep copy of the tool call.
func (t ToolCall) Clone() ToolCall {
	c := t
	if t.ToolArgs != nil {
		c.ToolArgs = make(map[string]any, len(t.ToolArgs))
		for k, v := range t.ToolArgs {
			c.ToolArgs[k] = v
		}
	}
	if t.Annotation != nil {
		ann := *t.Annotation
		c.Annotation = &ann
	}
	return c
}

// Attachment is a media reference on a user message. URL is the
// server-echoed location when available; LocalURL is a client-side object
// reference (e.g. a blob handle) that the server never echoes back and that
// reconciliation backfills on a best-effort basis.
type Attachment struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
	LocalURL string `json:"-"`
}

// ChatMessage is one entry in the ordered conversation transcript. Only the
// last entry of the transcript (the in-progress agent entry) is ever mutated
// while a run streams; all earlier entries are immutable once appended.
type ChatMessage struct {
	ID             string       `json:"id"`
	Role           Role         `json:"role"`
	Content        string       `json:"content"`
	ToolCalls      []ToolCall   `json:"tool_calls,omitempty"`
	ReasoningSteps []string     `json:"reasoning_steps,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	StreamingError bool         `json:"streaming_error,omitempty"`
	Cancelled      bool         `json:"cancelled,omitempty"`
}

// NewUserMessage constructs a user-authored entry with optional attachments.
func NewUserMessage(content string, attachments []Attachment) ChatMessage {
	return ChatMessage{
		ID:          NewID(),
		Role:        RoleUser,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewAgentMessage constructs the blank in-progress agent entry appended when
// a run starts. Streamed events accrete onto it until the run terminates.
func NewAgentMessage() ChatMessage {
	return ChatMessage{ID: NewID(), Role: RoleAgent, CreatedAt: time.Now().UTC()}
}

// Clone returns a deep copy of the message safe for independent mutation.
func (m ChatMessage) Clone() ChatMessage {
	c := m
	if m.ToolCalls != nil {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			c.ToolCalls[i] = tc.Clone()
		}
	}
	if m.ReasoningSteps != nil {
		c.ReasoningSteps = append([]string(nil), m.ReasoningSteps...)
	}
	if m.Attachments != nil {
		c.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	return c
}

// NewID generates a unique identifier for conversation entries.
func NewID() string { return uuid.NewString() }
