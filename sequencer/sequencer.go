package sequencer

import (
	"context"
	"fmt"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/logging"
)

// Boundary reports which terminal marker, if any, stopped a run.
type Boundary int

const (
	// BoundaryNone means the action list was exhausted.
	BoundaryNone Boundary = iota
	// BoundaryScene means the scene ended; the next scene's events are due.
	BoundaryScene
	// BoundaryExperience means the whole experience ended.
	BoundaryExperience
)

// String returns the boundary name.
func (b Boundary) String() string {
	switch b {
	case BoundaryScene:
		return "scene"
	case BoundaryExperience:
		return "experience"
	default:
		return "none"
	}
}

// Result is the outcome of Run.
type Result struct {
	// OK is false when any step failed; Err carries the cause.
	OK  bool
	Err error
	// Boundary and SceneID describe the terminal marker that stopped the run.
	Boundary Boundary
	SceneID  string
	// Played counts actions that produced a transition or an immediate hide.
	Played int
}

// Stage is the renderer surface the sequencer needs.
type Stage interface {
	core.Surfaces
	core.Animator
	core.Gestures
}

// Sequencer executes actions strictly in order. A Sequencer holds no
// per-run state; concurrent runs against the same Stage are not supported.
type Sequencer struct {
	stage  Stage
	logger logging.Logger
}

// Options configures a Sequencer.
type Options struct {
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// New creates a sequencer driving stage.
func New(stage Stage, optFns ...func(o *Options)) *Sequencer {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Sequencer{stage: stage, logger: opts.Logger}
}

// Run plays actions on backdrop. It returns when the list is exhausted, a
// terminal marker was crossed, or a step failed.
func (s *Sequencer) Run(ctx context.Context, actions []core.Action, backdrop core.Backdrop) Result {
	res := Result{OK: true}
	for i, a := range actions {
		if a.IsEnd() {
			if err := s.stage.AwaitContinue(ctx); err != nil {
				return s.fail(res, i, a, err)
			}
			res.Boundary = BoundaryScene
			if a.EndsExperience() {
				res.Boundary = BoundaryExperience
			}
			res.SceneID = a.SceneID
			s.logger.Debug("sequencer.boundary", "boundary", res.Boundary.String(), "scene", a.SceneID)
			return res
		}

		surface, ok := s.stage.Lookup(a.Target)
		if !ok {
			s.logger.Debug("sequencer.action.skipped", "index", i, "element", a.ElementID(), "reason", "unresolved")
			continue
		}

		played, err := s.step(ctx, a, surface, backdrop)
		if err != nil {
			return s.fail(res, i, a, err)
		}
		if played {
			res.Played++
		}
	}
	return res
}

func (s *Sequencer) fail(res Result, i int, a core.Action, err error) Result {
	res.OK = false
	res.Err = fmt.Errorf("action %d (%s %s): %w", i, a.Action, a.ElementID(), err)
	s.logger.Warn("sequencer.run.aborted", "index", i, "element", a.ElementID(), "error", err)
	return res
}

// step performs one action. It reports false when the idempotence guard
// turned the action into a no-op.
func (s *Sequencer) step(ctx context.Context, a core.Action, surface core.Surface, backdrop core.Backdrop) (bool, error) {
	switch a.Action {
	case core.ActionAppear, core.ActionClick:
		if surface.Visible() {
			if !replacesContent(a) {
				s.logger.Debug("sequencer.action.skipped", "element", a.ElementID(), "reason", "already shown")
				return false, nil
			}
			if err := s.stage.Hide(ctx, surface); err != nil {
				return false, err
			}
		}
		if a.Action == core.ActionAppear && a.Type == core.TypeCharacter && backdrop.SharesChatLane() {
			if err := s.hideOtherLanes(ctx, a.Target); err != nil {
				return false, err
			}
		}
	case core.ActionDisappear:
		if !surface.Visible() {
			s.logger.Debug("sequencer.action.skipped", "element", a.ElementID(), "reason", "already hidden")
			return false, nil
		}
		if a.Animation == nil {
			if a.Type == core.TypeCharacter {
				return true, s.hideLane(ctx, surface)
			}
			return true, s.stage.Hide(ctx, surface)
		}
	default:
		return false, fmt.Errorf("unsupported action %q", a.Action)
	}

	tr, err := s.stage.Animate(ctx, surface, a)
	if err != nil {
		return false, err
	}
	dismissed, err := s.await(ctx, tr, a.Dismissable)
	if err != nil {
		return false, err
	}
	if a.Halt && !dismissed {
		if err := s.stage.AwaitContinue(ctx); err != nil {
			return false, err
		}
	}
	if a.Action == core.ActionClick {
		return true, s.stage.Hide(ctx, surface)
	}
	return true, nil
}

// await blocks until tr completes. Dismissable transitions are also
// completed, and snapped to their final state, by a qualifying gesture.
func (s *Sequencer) await(ctx context.Context, tr core.Transition, dismissable bool) (bool, error) {
	if !dismissable {
		select {
		case <-tr.Done():
			return false, tr.Err()
		case <-ctx.Done():
			tr.Cancel()
			return false, ctx.Err()
		}
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	token := armDismiss(watchCtx, s.stage)

	select {
	case <-tr.Done():
		return false, tr.Err()
	case <-token.Consumed():
		tr.Cancel()
		return true, nil
	case <-ctx.Done():
		tr.Cancel()
		return false, ctx.Err()
	}
}

func (s *Sequencer) hideOtherLanes(ctx context.Context, keep core.ActionTarget) error {
	for _, lane := range s.stage.VisibleLanes() {
		if lane.Target() == keep {
			continue
		}
		if err := s.hideLane(ctx, lane); err != nil {
			return err
		}
	}
	return nil
}

// hideLane hides a character lane together with its dialog container.
func (s *Sequencer) hideLane(ctx context.Context, lane core.Surface) error {
	if err := s.stage.Hide(ctx, lane); err != nil {
		return err
	}
	target := lane.Target()
	if target.Kind != core.TargetCharacterLane {
		return nil
	}
	if d, ok := s.stage.Lookup(core.DialogTarget(target.CharacterID)); ok && d.Visible() {
		return s.stage.Hide(ctx, d)
	}
	return nil
}

// replacesContent reports whether an appear on an already shown surface
// carries new content for it. Dialog and moderator surfaces are reused for
// every line and prompt, so the previous content is retracted first.
func replacesContent(a core.Action) bool {
	if a.Action != core.ActionAppear || a.Content == nil {
		return false
	}
	return a.Type == core.TypeDialog || a.Type == core.TypeModerator
}
