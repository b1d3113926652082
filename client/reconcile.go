package client

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentbridge/core"
)

// reconcile replaces the locally accreted transcript with the authoritative
// one after a successful run: streamed content can diverge from the final
// stored content. Client-only state is snapshotted first and spliced back:
// tool-call annotations by id, user attachments positionally (best effort).
// When the authoritative fetch fails the local transcript stays in place so
// the user does not lose visible content.
func (c *Client) reconcile(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	annotations := c.store.SnapshotAnnotations()
	localAttachments := userAttachments(c.store.Messages())

	records, err := c.sessionAPI.Runs(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("fetch authoritative transcript: %w", err)
	}
	fresh := c.convert(records)

	// Splice annotations back onto tool calls whose id survived.
	for i := range fresh {
		for j := range fresh[i].ToolCalls {
			if ann, ok := annotations[fresh[i].ToolCalls[j].ToolCallID]; ok {
				a := ann
				fresh[i].ToolCalls[j].Annotation = &a
			}
		}
	}

	// Backfill client-only attachments onto the nth user message, only where
	// the authoritative transcript lacks them. Server-provided attachments
	// are never overwritten. Positional keying is best effort: indexes beyond
	// the server transcript are skipped.
	userIdx := 0
	for i := range fresh {
		if fresh[i].Role != core.RoleUser {
			continue
		}
		if userIdx < len(localAttachments) && len(fresh[i].Attachments) == 0 {
			fresh[i].Attachments = append([]core.Attachment(nil), localAttachments[userIdx]...)
		}
		userIdx++
	}

	c.store.ReplaceAll(fresh)
	c.emitConversation()
	return nil
}

// userAttachments collects the attachment list of each user message in order.
func userAttachments(msgs []core.ChatMessage) [][]core.Attachment {
	var out [][]core.Attachment
	for _, m := range msgs {
		if m.Role == core.RoleUser {
			out = append(out, m.Attachments)
		}
	}
	return out
}

// RunRecordsToMessages is the default conversion from authoritative run
// records to conversation entries: one user entry and one agent entry per
// record, in run order.
func RunRecordsToMessages(records []core.RunRecord) []core.ChatMessage {
	out := make([]core.ChatMessage, 0, len(records)*2)
	for _, r := range records {
		created := time.Unix(r.CreatedAt, 0).UTC()
		user := core.ChatMessage{
			ID:          core.NewID(),
			Role:        core.RoleUser,
			Content:     r.Input,
			Attachments: append([]core.Attachment(nil), r.Attachments...),
			CreatedAt:   created,
		}
		agent := core.ChatMessage{
			ID:        core.NewID(),
			Role:      core.RoleAgent,
			Content:   r.Content,
			CreatedAt: created,
		}
		for _, tc := range r.Tools {
			agent.ToolCalls = append(agent.ToolCalls, tc.Clone())
		}
		out = append(out, user, agent)
	}
	return out
}
