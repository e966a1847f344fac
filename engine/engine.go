package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hupe1980/playback/compiler"
	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/logging"
	"github.com/hupe1980/playback/registry"
	"github.com/hupe1980/playback/session"
)

// Options configures an Engine instance using the functional options pattern.
//
// Every dependency except the data service has an in-memory default so an
// engine can be constructed for development and tests without wiring.
//
// Example:
//
//	e := New(dataService,
//	    func(o *Options) { o.Logger = logger },
//	    func(o *Options) { o.Callbacks = callbacks },
//	)
type Options struct {
	// Registry caches the experience catalog. Defaults to an empty
	// in-memory registry filled by LoadCatalog.
	Registry *registry.InMemoryRegistry

	// SessionStore keeps live sessions by id. Defaults to an in-memory store.
	SessionStore *session.InMemoryStore[*Session]

	// Compiler is shared by every session. Defaults to compiler.New().
	Compiler *compiler.Compiler

	// Callbacks are executed for every session. Defaults to an empty manager.
	Callbacks *CallbackManager

	// Logger provides structured logging. Defaults to a no-op logger.
	Logger logging.Logger
}

// Engine holds the dependencies shared by playback sessions and tracks the
// sessions it opened.
//
// The Engine is safe for concurrent use. Each Session it opens serializes
// its own operations; sessions are independent of each other.
//
// Example Usage:
//
//	e := New(dataservice.New(baseURL))
//	if err := e.LoadCatalog(ctx); err != nil {
//	    return err
//	}
//	s := e.Open(renderer)
//	if err := s.Start(ctx, experienceID); err != nil {
//	    return err
//	}
//	err := s.Play(ctx, nil)
type Engine struct {
	data      core.DataService
	registry  *registry.InMemoryRegistry
	sessions  *session.InMemoryStore[*Session]
	compiler  *compiler.Compiler
	callbacks *CallbackManager
	logger    logging.Logger
}

// New creates an engine backed by data.
func New(data core.DataService, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Registry:     registry.New(),
		SessionStore: session.NewInMemoryStore[*Session](),
		Callbacks:    NewCallbackManager(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Compiler == nil {
		opts.Compiler = compiler.New(func(o *compiler.Options) { o.Logger = opts.Logger })
	}

	return &Engine{
		data:      data,
		registry:  opts.Registry,
		sessions:  opts.SessionStore,
		compiler:  opts.Compiler,
		callbacks: opts.Callbacks,
		logger:    opts.Logger,
	}
}

// LoadCatalog fills the registry from the data service. It only performs a
// round trip the first time it is called.
func (e *Engine) LoadCatalog(ctx context.Context) error {
	if err := e.registry.Load(ctx, e.data); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	e.logger.Info("engine.catalog.loaded", "experiences", len(e.registry.List(registry.ScopeAll)))
	return nil
}

// Registry returns the experience registry.
func (e *Engine) Registry() *registry.InMemoryRegistry { return e.registry }

// RegisterCallback adds a lifecycle callback for every session.
func (e *Engine) RegisterCallback(cb Callback) { e.callbacks.RegisterCallback(cb) }

// Open creates an idle session driving renderer and tracks it.
func (e *Engine) Open(renderer core.Renderer) *Session {
	id := uuid.NewString()
	s := NewSession(e.registry, e.data, renderer, func(o *SessionOptions) {
		o.ID = id
		o.Compiler = e.compiler
		o.Callbacks = e.callbacks
		o.Logger = e.logger
	})
	e.sessions.Put(id, s)
	e.logger.Debug("engine.session.opened", "session", id)
	return s
}

// Session returns the tracked session with id.
func (e *Engine) Session(id string) (*Session, bool) { return e.sessions.Get(id) }

// Sessions returns the number of tracked sessions.
func (e *Engine) Sessions() int { return e.sessions.Len() }

// Close ends the session's experience and stops tracking it. The session is
// forgotten even when ending fails.
func (e *Engine) Close(ctx context.Context, id string) error {
	s, ok := e.sessions.Delete(id)
	if !ok {
		return nil
	}
	e.logger.Debug("engine.session.closed", "session", id)
	if err := s.End(ctx); err != nil {
		return fmt.Errorf("close session %s: %w", id, err)
	}
	return nil
}

// Shutdown closes every tracked session and returns the first error.
func (e *Engine) Shutdown(ctx context.Context) error {
	var first error
	for _, id := range e.sessions.IDs() {
		if err := e.Close(ctx, id); err != nil && first == nil {
			first = err
		}
	}
	return first
}
