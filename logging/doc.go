// Package logging provides a minimal logging interface and adapters for the
// playback engine.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the engine, sequencer and stage manager use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter wrapping go.uber.org/zap for production deployments
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	zl, err := logging.NewZap(logging.ZapConfig{Level: "info", Encoding: "json"})
//	if err != nil {
//	    return err
//	}
//	player := playback.New(func(o *playback.Options) { o.Logger = logging.NewZapAdapter(zl) })
//
// Arguments are alternating key/value pairs, as with slog.
package logging
