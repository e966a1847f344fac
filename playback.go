// Package playback provides a high-level facade over the playback engine,
// the data service client and the metrics collector. Most applications use
// it by:
//  1. Creating a Player via New() with the data service location
//  2. Opening a session per renderer (Open) or starting one directly (Launch)
//  3. Shutting the player down, which ends every open experience
//
// The facade delegates playback to engine.Engine and keeps setup concise.
// Defaults are safe for local development; production deployments usually
// supply a structured logger and expose Metrics().Registry().
package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/playback/compiler"
	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/dataservice"
	"github.com/hupe1980/playback/engine"
	"github.com/hupe1980/playback/logging"
	"github.com/hupe1980/playback/metrics"
	"github.com/hupe1980/playback/registry"
)

// ErrNoDataService is returned by New when neither DataService nor
// DataServiceURL is set.
var ErrNoDataService = errors.New("playback: no data service configured")

// Options configures the Player.
type Options struct {
	// DataService overrides the HTTP client built from DataServiceURL.
	DataService core.DataService

	// DataServiceURL is the base URL of the experience data service.
	DataServiceURL string
	// DataServiceToken is sent as a bearer token when set.
	DataServiceToken string
	// DataServiceTimeout bounds each data service request.
	DataServiceTimeout time.Duration

	// Compiler overrides the default event compiler.
	Compiler *compiler.Compiler

	// Metrics receives lifecycle observations. A private collector is
	// created when nil; set DisableMetrics to skip it entirely.
	Metrics        *metrics.Collector
	DisableMetrics bool

	// Callbacks are registered on the engine in order.
	Callbacks []engine.Callback

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Player aggregates the engine and its collaborators.
type Player struct {
	opts    Options
	engine  *engine.Engine
	metrics *metrics.Collector
}

// New creates a Player.
func New(optFns ...func(o *Options)) (*Player, error) {
	opts := Options{
		DataServiceTimeout: dataservice.DefaultTimeout,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.DataService == nil {
		if opts.DataServiceURL == "" {
			return nil, ErrNoDataService
		}
		opts.DataService = dataservice.New(opts.DataServiceURL, func(o *dataservice.Options) {
			o.Token = opts.DataServiceToken
			o.Timeout = opts.DataServiceTimeout
			o.Logger = opts.Logger
		})
	}
	if opts.Metrics == nil && !opts.DisableMetrics {
		opts.Metrics = metrics.New()
	}

	e := engine.New(opts.DataService, func(o *engine.Options) {
		o.Compiler = opts.Compiler
		o.Logger = opts.Logger
	})
	if opts.Metrics != nil {
		for _, cb := range opts.Metrics.Callbacks() {
			e.RegisterCallback(cb)
		}
	}
	for _, cb := range opts.Callbacks {
		e.RegisterCallback(cb)
	}

	return &Player{opts: opts, engine: e, metrics: opts.Metrics}, nil
}

// Engine returns the underlying engine.
func (p *Player) Engine() *engine.Engine { return p.engine }

// Metrics returns the metrics collector, or nil when metrics are disabled.
func (p *Player) Metrics() *metrics.Collector { return p.metrics }

// Catalog loads the experience catalog once and lists it.
func (p *Player) Catalog(ctx context.Context, scope registry.Scope) ([]core.ExperienceSummary, error) {
	if err := p.engine.LoadCatalog(ctx); err != nil {
		return nil, err
	}
	return p.engine.Registry().List(scope), nil
}

// Open creates an idle session driving renderer.
func (p *Player) Open(renderer core.Renderer) *engine.Session {
	return p.engine.Open(renderer)
}

// Launch opens a session, starts experienceID and plays its first batch.
// The session is returned even when starting or playing fails so that the
// caller can inspect or close it.
func (p *Player) Launch(ctx context.Context, renderer core.Renderer, experienceID string) (*engine.Session, error) {
	if err := p.engine.LoadCatalog(ctx); err != nil {
		return nil, err
	}
	s := p.engine.Open(renderer)
	if err := s.Start(ctx, experienceID); err != nil {
		return s, fmt.Errorf("launch %s: %w", experienceID, err)
	}
	if err := s.Play(ctx, nil); err != nil {
		return s, fmt.Errorf("launch %s: %w", experienceID, err)
	}
	return s, nil
}

// Close ends the session with id and forgets it.
func (p *Player) Close(ctx context.Context, id string) error {
	return p.engine.Close(ctx, id)
}

// Shutdown ends every open session.
func (p *Player) Shutdown(ctx context.Context) error {
	return p.engine.Shutdown(ctx)
}
