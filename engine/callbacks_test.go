package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackManager_ExecutesInRegistrationOrder(t *testing.T) {
	cm := NewCallbackManager()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		cm.RegisterCallback(NewFunctionCallback(CallbackAfterPlay, func(context.Context, *CallbackContext) error {
			order = append(order, i)
			return nil
		}))
	}

	err := cm.ExecuteCallbacks(context.Background(), CallbackAfterPlay, &CallbackContext{})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestCallbackManager_StopsOnError(t *testing.T) {
	cm := NewCallbackManager()
	boom := errors.New("boom")
	called := false
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforePlay, func(context.Context, *CallbackContext) error { return boom }))
	cm.RegisterCallback(NewFunctionCallback(CallbackBeforePlay, func(context.Context, *CallbackContext) error {
		called = true
		return nil
	}))

	err := cm.ExecuteCallbacks(context.Background(), CallbackBeforePlay, &CallbackContext{})

	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestCallbackManager_UnregisteredType(t *testing.T) {
	cm := NewCallbackManager()

	assert.NoError(t, cm.ExecuteCallbacks(context.Background(), CallbackOnEnd, &CallbackContext{}))
}

func TestCallbackManager_SetsCallbackType(t *testing.T) {
	cm := NewCallbackManager()
	var got CallbackType
	cm.RegisterCallback(NewFunctionCallback(CallbackOnEnd, func(_ context.Context, c *CallbackContext) error {
		got = c.CallbackType
		return nil
	}))

	require.NoError(t, cm.ExecuteCallbacks(context.Background(), CallbackOnEnd, &CallbackContext{}))
	assert.Equal(t, CallbackOnEnd, got)
}

func TestLoggingCallback(t *testing.T) {
	var messages []string
	cb := NewLoggingCallback(CallbackOnStateChange, func(m string) { messages = append(messages, m) })

	err := cb.Execute(context.Background(), &CallbackContext{SessionID: "s1", ExperienceID: "x1", From: StateIdle, To: StateLoading})

	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "[on_state_change] Session: s1, Experience: x1, idle -> loading", messages[0])
	assert.Equal(t, CallbackOnStateChange, cb.Type())
	assert.NoError(t, NewLoggingCallback(CallbackOnEnd, nil).Execute(context.Background(), &CallbackContext{}))
}
