package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKindIsTeam(t *testing.T) {
	assert.True(t, EventTeamRunContent.IsTeam())
	assert.True(t, EventTeamReasoningStep.IsTeam())
	assert.False(t, EventRunContent.IsTeam())
	assert.False(t, EventKind("SomethingNew").IsTeam())
}

func TestEventKindModeIndependent(t *testing.T) {
	independent := []EventKind{EventRunPaused, EventRunContinued, EventRunCancelled, EventCustom}
	for _, k := range independent {
		assert.True(t, k.ModeIndependent(), string(k))
	}
	assert.False(t, EventRunContent.ModeIndependent())
	assert.False(t, EventTeamRunCancelled.ModeIndependent())
}

func TestRunEventGetReachesUndecodedFields(t *testing.T) {
	ev := RunEvent{Kind: EventCustom, Raw: `{"event":"CustomEvent","payload":{"step":3}}`}
	assert.Equal(t, int64(3), ev.Get("payload.step").Int())
	assert.False(t, ev.Get("missing").Exists())
}
