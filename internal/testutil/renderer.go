package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/render"
)

// Transition is a manually controllable core.Transition.
type Transition struct {
	Action core.Action

	once      sync.Once
	done      chan struct{}
	mu        sync.Mutex
	err       error
	cancelled bool
}

func newTransition(a core.Action) *Transition {
	return &Transition{Action: a, done: make(chan struct{})}
}

// Done implements core.Transition.
func (t *Transition) Done() <-chan struct{} { return t.done }

// Err implements core.Transition.
func (t *Transition) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Cancel implements core.Transition.
func (t *Transition) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
	t.Complete(nil)
}

// Complete ends the transition naturally with err.
func (t *Transition) Complete(err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		close(t.done)
	})
}

// Cancelled reports whether Cancel was called.
func (t *Transition) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Renderer is a scripted core.Renderer backed by a render.Board. By default
// every transition completes immediately and every continue gate opens
// immediately; Manual switches both to test control.
//
// Every call is recorded as a short string, e.g. "animate appear char-c1".
type Renderer struct {
	board *render.Board

	mu           sync.Mutex
	calls        []string
	manual       bool
	animateErr   error
	input        string
	memberInput  []bool
	transitions  chan *Transition
	gestures     chan core.Gesture
	continues    chan struct{}
	awaitingGate chan struct{}
}

var _ core.Renderer = (*Renderer)(nil)

// NewRenderer returns an auto-completing renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		board:        render.NewBoard(),
		transitions:  make(chan *Transition, 64),
		gestures:     make(chan core.Gesture, 16),
		continues:    make(chan struct{}, 16),
		awaitingGate: make(chan struct{}, 64),
	}
}

// Manual makes transitions wait for Complete/Cancel and continue gates wait
// for Continue (chainable).
func (r *Renderer) Manual() *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manual = true
	return r
}

// FailAnimate makes every Animate call return err (chainable).
func (r *Renderer) FailAnimate(err error) *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.animateErr = err
	return r
}

// SetInput sets the value InputValue returns.
func (r *Renderer) SetInput(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.input = v
}

// Board exposes the backing board.
func (r *Renderer) Board() *render.Board { return r.board }

// Calls returns a copy of the recorded calls.
func (r *Renderer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

// MemberInputToggles returns the display flags passed to ToggleMemberInput.
func (r *Renderer) MemberInputToggles() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool{}, r.memberInput...)
}

// NextTransition blocks until a manual transition starts.
func (r *Renderer) NextTransition(ctx context.Context) (*Transition, error) {
	select {
	case t := <-r.transitions:
		return t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WaitGate blocks until a manual AwaitContinue call is blocked.
func (r *Renderer) WaitGate(ctx context.Context) error {
	select {
	case <-r.awaitingGate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Press delivers a user gesture.
func (r *Renderer) Press(g core.Gesture) { r.gestures <- g }

// Continue opens one manual continue gate.
func (r *Renderer) Continue() { r.continues <- struct{}{} }

func (r *Renderer) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *Renderer) isManual() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manual
}

// Lookup implements core.Surfaces.
func (r *Renderer) Lookup(target core.ActionTarget) (core.Surface, bool) {
	return r.board.Lookup(target)
}

// VisibleLanes implements core.Surfaces.
func (r *Renderer) VisibleLanes() []core.Surface { return r.board.VisibleLanes() }

// Animate implements core.Animator.
func (r *Renderer) Animate(_ context.Context, s core.Surface, a core.Action) (core.Transition, error) {
	r.mu.Lock()
	err := r.animateErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r.record("animate %s %s", a.Action, s.Target().ElementID())
	r.board.SetVisible(s.Target(), a.Action != core.ActionDisappear)

	t := newTransition(a)
	if !r.isManual() {
		t.Complete(nil)
		return t, nil
	}
	r.transitions <- t
	return t, nil
}

// Hide implements core.Animator.
func (r *Renderer) Hide(_ context.Context, s core.Surface) error {
	r.record("hide %s", s.Target().ElementID())
	r.board.SetVisible(s.Target(), false)
	return nil
}

// NextGesture implements core.Gestures.
func (r *Renderer) NextGesture(ctx context.Context) (core.Gesture, error) {
	select {
	case g := <-r.gestures:
		return g, nil
	case <-ctx.Done():
		return core.Gesture{}, ctx.Err()
	}
}

// AwaitContinue implements core.Gestures.
func (r *Renderer) AwaitContinue(ctx context.Context) error {
	r.record("await continue")
	if !r.isManual() {
		return nil
	}
	r.awaitingGate <- struct{}{}
	select {
	case <-r.continues:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MountLane implements core.Backstage.
func (r *Renderer) MountLane(_ context.Context, c core.Character, container core.Container) error {
	r.record("mount %s %s", c.ID, container)
	r.board.MountLane(c.ID, container)
	return nil
}

// UnmountLanes implements core.Backstage.
func (r *Renderer) UnmountLanes(_ context.Context, container core.Container) error {
	r.board.UnmountLanes(container)
	return nil
}

// ClearModerator implements core.Backstage.
func (r *Renderer) ClearModerator(_ context.Context) error {
	r.board.HideModerator()
	return nil
}

// HideBackstage implements core.Backstage.
func (r *Renderer) HideBackstage(_ context.Context) error {
	r.record("hide backstage")
	return nil
}

// RevealMainstage implements core.Backstage.
func (r *Renderer) RevealMainstage(_ context.Context) error {
	r.record("reveal mainstage")
	return nil
}

// RevealChat implements core.Backstage.
func (r *Renderer) RevealChat(_ context.Context, sidebar bool) error {
	r.record("reveal chat sidebar=%t", sidebar)
	return nil
}

// ShowWelcome implements core.Chrome.
func (r *Renderer) ShowWelcome(_ context.Context, s core.ExperienceSummary) error {
	r.record("welcome %s", s.ID)
	return nil
}

// ShowReady implements core.Chrome.
func (r *Renderer) ShowReady(_ context.Context) error {
	r.record("ready")
	return nil
}

// ToggleMemberInput implements core.Chrome.
func (r *Renderer) ToggleMemberInput(display, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberInput = append(r.memberInput, display)
}

// InputValue implements core.Chrome.
func (r *Renderer) InputValue(core.Backdrop) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.input
}

// Clear implements core.Chrome.
func (r *Renderer) Clear(_ context.Context, experienceID string) error {
	r.record("clear %s", experienceID)
	r.board.Reset()
	return nil
}
