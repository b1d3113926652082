// Package conversation owns the ordered transcript a client instance mutates
// while a run streams. The store exposes positional mutation primitives and a
// pending-annotation side table for annotations that arrive before their tool
// call does. All returned messages are defensive copies.
package conversation

import (
	"sync"

	"github.com/hupe1980/agentbridge/core"
)

// Store is the ordered log of conversation entries. Safe for concurrent
// access; the engine mutates only the last entry while a run is in flight.
type Store struct {
	mu      sync.RWMutex
	entries []core.ChatMessage
	pending map[string]core.UIAnnotation
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{pending: make(map[string]core.UIAnnotation)}
}

// Append adds an entry to the end of the transcript, consuming any pending
// annotations matching its tool calls.
func (s *Store) Append(msg core.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := msg.Clone()
	s.consumePendingLocked(&m)
	s.entries = append(s.entries, m)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Messages returns a deep copy of the transcript.
func (s *Store) Messages() []core.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.ChatMessage, len(s.entries))
	for i, m := range s.entries {
		out[i] = m.Clone()
	}
	return out
}

// Last returns a copy of the final entry.
func (s *Store) Last() (core.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return core.ChatMessage{}, false
	}
	return s.entries[len(s.entries)-1].Clone(), true
}

// UpdateLast applies fn to the final entry in place, then consumes pending
// annotations for any tool calls fn appended. Reports whether an entry existed.
func (s *Store) UpdateLast(fn func(m *core.ChatMessage)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return false
	}
	last := &s.entries[len(s.entries)-1]
	fn(last)
	s.consumePendingLocked(last)
	return true
}

// ReplaceLast swaps the final entry. Reports whether an entry existed.
func (s *Store) ReplaceLast(msg core.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return false
	}
	m := msg.Clone()
	s.consumePendingLocked(&m)
	s.entries[len(s.entries)-1] = m
	return true
}

// RemoveLastN drops up to n entries from the end of the transcript.
func (s *Store) RemoveLastN(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= len(s.entries) {
		s.entries = nil
		return
	}
	s.entries = s.entries[:len(s.entries)-n]
}

// ReplaceAll swaps the entire transcript, consuming pending annotations
// against the new entries.
func (s *Store) ReplaceAll(msgs []core.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]core.ChatMessage, len(msgs))
	for i, m := range msgs {
		c := m.Clone()
		s.consumePendingLocked(&c)
		s.entries[i] = c
	}
}

// Clear empties the transcript and the pending-annotation table.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.pending = make(map[string]core.UIAnnotation)
}

// Annotate attaches a client-only annotation to the tool call with the given
// id anywhere in the transcript. When the tool call has not been appended yet
// the annotation is parked in the side table and consumed opportunistically
// as new tool calls arrive. Reports whether the annotation was applied
// immediately.
func (s *Store) Annotate(toolCallID string, ann core.UIAnnotation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		for j := range s.entries[i].ToolCalls {
			if s.entries[i].ToolCalls[j].ToolCallID == toolCallID {
				a := ann
				s.entries[i].ToolCalls[j].Annotation = &a
				return true
			}
		}
	}
	s.pending[toolCallID] = ann
	return false
}

// SnapshotAnnotations collects every tool_call_id → annotation pair in the
// transcript, for splicing back after reconciliation.
func (s *Store) SnapshotAnnotations() map[string]core.UIAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]core.UIAnnotation)
	for i := range s.entries {
		for _, tc := range s.entries[i].ToolCalls {
			if tc.Annotation != nil {
				out[tc.ToolCallID] = *tc.Annotation
			}
		}
	}
	return out
}

// PendingAnnotations returns a copy of the side table.
func (s *Store) PendingAnnotations() map[string]core.UIAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]core.UIAnnotation, len(s.pending))
	for k, v := range s.pending {
		out[k] = v
	}
	return out
}

func (s *Store) consumePendingLocked(msg *core.ChatMessage) {
	if len(s.pending) == 0 {
		return
	}
	for i := range msg.ToolCalls {
		tc := &msg.ToolCalls[i]
		if tc.Annotation != nil {
			continue
		}
		if ann, ok := s.pending[tc.ToolCallID]; ok {
			a := ann
			tc.Annotation = &a
			delete(s.pending, tc.ToolCallID)
		}
	}
}
