package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CallbackType defines the lifecycle points of a playback session where
// callbacks can be executed.
//
// Callbacks provide a flexible mechanism for hooking into playback without
// modifying the controller. Each type represents a specific point in the
// session lifecycle:
//   - BeforePlay/AfterPlay: Around one Play call, including scene chaining
//   - OnError: When Start, Play or End fails
//   - OnStateChange: When the session moves between states
//   - OnEnd: When an experience was ended on the server and torn down
//
// Callbacks are executed synchronously. A BeforePlay callback returning an
// error aborts the Play; errors from the other types are logged.
type CallbackType string

const (
	// CallbackBeforePlay is triggered before a batch is fetched or played.
	CallbackBeforePlay CallbackType = "before_play"

	// CallbackAfterPlay is triggered after a Play call completed successfully.
	CallbackAfterPlay CallbackType = "after_play"

	// CallbackOnError is triggered when an operation fails.
	CallbackOnError CallbackType = "on_error"

	// CallbackOnStateChange is triggered after the session state changed.
	CallbackOnStateChange CallbackType = "on_state_change"

	// CallbackOnEnd is triggered after an experience ended.
	CallbackOnEnd CallbackType = "on_end"
)

// CallbackContext carries what a callback needs to know about the lifecycle
// point it runs at. Fields that do not apply are left zero.
type CallbackContext struct {
	// SessionID identifies the playback session.
	SessionID string

	// ExperienceID is the active experience, if any.
	ExperienceID string

	// CallbackType indicates which callback type triggered this execution.
	CallbackType CallbackType

	// From and To are the states of an OnStateChange transition.
	From State
	To   State

	// Operation names the failing operation for OnError ("start", "play", ...).
	Operation string

	// Err is the failure reported to OnError.
	Err error

	// Events and Actions count the events played and actions compiled by a
	// successful Play.
	Events  int
	Actions int

	// Elapsed is the wall time of the Play or failing operation.
	Elapsed time.Duration

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]any
}

// Callback defines the interface for playback lifecycle hooks.
//
// Implementations should be fast: callbacks run synchronously on the
// session's goroutine and delay playback while they run.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	cb := NewFunctionCallback(
//	    CallbackOnEnd,
//	    func(ctx context.Context, callbackCtx *CallbackContext) error {
//	        log.Printf("experience %s ended", callbackCtx.ExperienceID)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager orchestrates callback execution for every session of an
// engine.
//
// Callbacks are executed in registration order, and any callback returning
// an error stops execution of the remaining callbacks of that type.
// Registration and execution are safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager instance.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback to the manager for its type.
//
// Example:
//
//	manager := NewCallbackManager()
//	manager.RegisterCallback(loggingCallback)
//	manager.RegisterCallback(metricsCallback)
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type.
// The first error is returned and the remaining callbacks are skipped.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback forwards lifecycle events to a logging function.
//
// Example:
//
//	logger := func(message string) {
//	    log.Printf("[PLAYBACK] %s", message)
//	}
//	callback := NewLoggingCallback(CallbackOnStateChange, logger)
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the lifecycle event. A nil logger function makes it a no-op.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}
	message := fmt.Sprintf("[%s] Session: %s, Experience: %s", c.callbackType, callbackCtx.SessionID, callbackCtx.ExperienceID)
	switch c.callbackType {
	case CallbackOnStateChange:
		message += fmt.Sprintf(", %s -> %s", callbackCtx.From, callbackCtx.To)
	case CallbackOnError:
		message += fmt.Sprintf(", %s: %v", callbackCtx.Operation, callbackCtx.Err)
	case CallbackAfterPlay:
		message += fmt.Sprintf(", Events: %d, Actions: %d", callbackCtx.Events, callbackCtx.Actions)
	}
	c.logger(message)
	return nil
}
