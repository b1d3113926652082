package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_FanOut(t *testing.T) {
	r := NewRegistry(nil)
	var a, b, all int
	r.On(TypeRunStarted, func(Payload) { a++ })
	r.On(TypeRunStarted, func(Payload) { b++ })
	r.OnAny(func(Payload) { all++ })

	r.Emit(Payload{Type: TypeRunStarted})
	r.Emit(Payload{Type: TypeRunCompleted})

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 2, all)
}

func TestRegistry_PanickingListenerIsIsolated(t *testing.T) {
	r := NewRegistry(nil)
	var survived bool
	r.On(TypeRunError, func(Payload) { panic("listener bug") })
	r.On(TypeRunError, func(Payload) { survived = true })

	assert.NotPanics(t, func() { r.Emit(Payload{Type: TypeRunError}) })
	assert.True(t, survived)
}

func TestRegistry_NoListenersIsNoOp(t *testing.T) {
	r := NewRegistry(nil)
	assert.NotPanics(t, func() { r.Emit(Payload{Type: TypeConversationUpdated}) })
}
