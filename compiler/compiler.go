// Package compiler turns event records into ordered animation actions.
//
// Compilation is a pipeline of readers, each inspecting one facet of an
// event. Readers run in a fixed order (stage, character, dialog, input) and
// their outputs are concatenated, so the action order of an event never
// depends on which facets are present.
package compiler

import (
	"fmt"
	"sort"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/logging"
)

// State is the live context a reader compiles against.
type State struct {
	// Experience is the live aggregate. The character reader writes role and
	// name back onto its cast records.
	Experience *core.Experience
	// Backdrop is the backdrop the batch will play on.
	Backdrop core.Backdrop
	// Surfaces, when set, is used to verify that hard-required render targets
	// exist. Nil skips those checks.
	Surfaces core.Surfaces
}

// Reader compiles one facet of an event.
type Reader interface {
	// Name returns the reader's identifier.
	Name() string
	// Read returns the actions for its facet of ev, or none.
	Read(ev core.Event, st *State) ([]core.Action, error)
}

// Compiler runs its readers over events.
type Compiler struct {
	readers []Reader
	logger  logging.Logger
}

// Options configures a Compiler.
type Options struct {
	// Readers overrides the default reader pipeline.
	Readers []Reader
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// New creates a compiler with the stage, character, dialog and input readers.
func New(optFns ...func(o *Options)) *Compiler {
	opts := Options{
		Readers: DefaultReaders(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Compiler{readers: opts.Readers, logger: opts.Logger}
}

// DefaultReaders returns the reader pipeline in its fixed order.
func DefaultReaders() []Reader {
	return []Reader{
		NewStageReader(),
		NewCharacterReader(),
		NewDialogReader(),
		NewInputReader(),
	}
}

// CompileEvent compiles a single event.
func (c *Compiler) CompileEvent(ev core.Event, st *State) ([]core.Action, error) {
	var actions []core.Action
	for _, r := range c.readers {
		out, err := r.Read(ev, st)
		if err != nil {
			return nil, fmt.Errorf("compile event %s (%s): %w", ev.ID, r.Name(), err)
		}
		actions = append(actions, out...)
	}
	c.logger.Debug("compiler.event.compiled", "event", ev.ID, "actions", len(actions))
	return actions, nil
}

// CompileBatch orders events by Order and concatenates their actions. The
// first error aborts compilation.
func (c *Compiler) CompileBatch(events []core.Event, st *State) ([]core.Action, error) {
	actions := make([]core.Action, 0, len(events))
	for _, ev := range SortByOrder(events) {
		out, err := c.CompileEvent(ev, st)
		if err != nil {
			return nil, err
		}
		actions = append(actions, out...)
	}
	return actions, nil
}

// SortByOrder returns a copy of events sorted by ascending Order. Events
// sharing an Order keep their original relative position.
func SortByOrder(events []core.Event) []core.Event {
	sorted := append([]core.Event{}, events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}
