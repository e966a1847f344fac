package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/playback/compiler"
	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/logging"
	"github.com/hupe1980/playback/sequencer"
	"github.com/hupe1980/playback/stage"
)

// State is the lifecycle state of a playback session.
type State string

const (
	StateIdle             State = "idle"
	StateLoading          State = "loading"
	StateWelcomeDisplayed State = "welcome_displayed"
	StatePlaying          State = "playing"
	StateWaitingForInput  State = "waiting_for_input"
	StateEnded            State = "ended"
)

// Catalog resolves experience ids to their catalog entry.
type Catalog interface {
	Find(id string) (core.ExperienceSummary, bool)
}

// Listener observes state transitions of one session.
type Listener func(from, to State)

// SessionOptions configures a Session.
type SessionOptions struct {
	// ID defaults to a random UUID.
	ID string
	// Compiler defaults to compiler.New().
	Compiler *compiler.Compiler
	// Callbacks defaults to an empty manager.
	Callbacks *CallbackManager
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Session is the playback controller for one renderer. It owns at most one
// active experience at a time.
//
// Operations are serialized: Start, Play, Skip and End never run
// concurrently for the same session. End is the only operation that
// interrupts Play; it cancels every running or queued Play before
// acquiring the session.
//
// State and Experience never block on a running operation.
type Session struct {
	id        string
	catalog   Catalog
	data      core.DataService
	renderer  core.Renderer
	compiler  *compiler.Compiler
	sequencer *sequencer.Sequencer
	stage     *stage.Manager
	callbacks *CallbackManager
	logger    logging.Logger

	// mu serializes operations and guards the fields below it.
	mu        sync.Mutex
	exp       *core.Experience
	preloaded []core.Event
	hasBatch  bool
	prompt    *core.InputCue

	// viewMu guards the fields readable without the operation lock.
	viewMu     sync.RWMutex
	state      State
	snapshot   *core.Experience
	listeners  []Listener
	interrupts map[uint64]context.CancelFunc
	nextID     uint64
}

// NewSession creates an idle session driving renderer.
func NewSession(catalog Catalog, data core.DataService, renderer core.Renderer, optFns ...func(o *SessionOptions)) *Session {
	opts := SessionOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Compiler == nil {
		opts.Compiler = compiler.New(func(o *compiler.Options) { o.Logger = opts.Logger })
	}
	if opts.Callbacks == nil {
		opts.Callbacks = NewCallbackManager()
	}

	logger := logging.With(opts.Logger, "session", opts.ID)
	return &Session{
		id:        opts.ID,
		catalog:   catalog,
		data:      data,
		renderer:  renderer,
		compiler:  opts.Compiler,
		sequencer: sequencer.New(renderer, func(o *sequencer.Options) { o.Logger = logger }),
		stage:     stage.New(renderer, func(o *stage.Options) { o.Logger = logger }),
		callbacks: opts.Callbacks,
		logger:    logger,
		state:      StateIdle,
		interrupts: make(map[uint64]context.CancelFunc),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.state
}

// Experience returns a copy of the active experience as of the last
// completed step, or nil.
func (s *Session) Experience() *core.Experience {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.Clone()
}

// Backdrop returns the backdrop currently mounted.
func (s *Session) Backdrop() core.Backdrop { return s.stage.State() }

// Listen registers fn for state transitions. Listeners are detached when the
// experience ends.
func (s *Session) Listen(fn Listener) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Start loads the experience with experienceID and shows its welcome
// surface. A previously active experience is ended first.
func (s *Session) Start(ctx context.Context, experienceID string) error {
	if _, err := uuid.Parse(experienceID); err != nil {
		return core.Errorf(core.ErrInvalidIdentifier, "%q", experienceID)
	}
	summary, ok := s.catalog.Find(experienceID)
	if !ok {
		return core.Errorf(core.ErrNotFound, "%s", experienceID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exp != nil {
		if err := s.endLocked(ctx); err != nil {
			return s.fail(ctx, "start", time.Now(), err)
		}
	}

	started := time.Now()
	prev := s.State()
	s.setState(ctx, StateLoading)

	if err := s.load(ctx, summary); err != nil {
		s.exp = nil
		s.preloaded, s.hasBatch, s.prompt = nil, false, nil
		s.publish()
		s.setState(ctx, prev)
		return s.fail(ctx, "start", started, err)
	}

	s.publish()
	s.setState(ctx, StateWelcomeDisplayed)
	s.logger.Info("engine.session.started", "experience", experienceID, "cast", len(s.exp.Cast), "preloaded", len(s.preloaded))
	return nil
}

func (s *Session) load(ctx context.Context, summary core.ExperienceSummary) error {
	exp := core.NewExperience(summary)
	s.exp = exp

	if err := s.renderer.ShowWelcome(ctx, summary); err != nil {
		return fmt.Errorf("show welcome: %w", err)
	}

	manifest := s.data.Manifest(ctx, exp.ID)
	if !manifest.Success || manifest.Cast == nil {
		return core.Errorf(core.ErrManifestMissing, "%s", manifest.Message)
	}
	exp.ApplyManifest(manifest)

	batch := s.data.Events(ctx, exp.ID, nil)
	if !batch.Success {
		return core.Errorf(core.ErrEmptyEventBatch, "initial batch: %s", batch.Message)
	}
	exp.ApplyBatch(batch)
	s.preloaded = batch.Events
	s.hasBatch = true
	s.prompt = nil
	s.stage.Reset()

	if err := s.renderer.ShowReady(ctx); err != nil {
		return fmt.Errorf("show ready: %w", err)
	}
	return nil
}

// Play runs the next event batch. The first call after Start plays the
// preloaded batch; later calls fetch a batch seeded with memberInput. Scene
// boundaries chain into the next scene's batch; an experience boundary ends
// the experience.
func (s *Session) Play(ctx context.Context, memberInput map[string]any) error {
	ctx, release := s.interruptible(ctx)
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(ctx, memberInput)
}

// interruptible derives a context End can cancel. It is registered before
// the operation lock is taken, so an End racing a Play that is still
// waiting for the lock interrupts it as well.
func (s *Session) interruptible(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	s.viewMu.Lock()
	s.nextID++
	id := s.nextID
	s.interrupts[id] = cancel
	s.viewMu.Unlock()

	return ctx, func() {
		s.viewMu.Lock()
		delete(s.interrupts, id)
		s.viewMu.Unlock()
		cancel()
	}
}

// interrupt cancels every registered Play.
func (s *Session) interrupt() {
	s.viewMu.RLock()
	cancels := make([]context.CancelFunc, 0, len(s.interrupts))
	for _, cancel := range s.interrupts {
		cancels = append(cancels, cancel)
	}
	s.viewMu.RUnlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (s *Session) playLocked(ctx context.Context, memberInput map[string]any) error {
	if s.exp == nil {
		return core.ErrNoActiveExperience
	}

	started := time.Now()
	cbCtx := s.callbackContext()
	if err := s.callbacks.ExecuteCallbacks(ctx, CallbackBeforePlay, cbCtx); err != nil {
		return s.fail(ctx, "play", started, fmt.Errorf("before play callback: %w", err))
	}

	// A fetched batch answers the member's input: the input affordance and
	// the moderator prompt are retracted while it loads, and the input comes
	// back if the play fails so the member can try again.
	fetched := !s.hasBatch
	if fetched {
		s.renderer.ToggleMemberInput(false, true)
		if err := s.renderer.ClearModerator(ctx); err != nil {
			s.logger.Warn("engine.moderator.clear_failed", "experience", s.exp.ID, "error", err)
		}
	}
	prev := s.State()
	failed := func(err error) error {
		s.setState(ctx, prev)
		if fetched && ctx.Err() == nil {
			s.renderer.ToggleMemberInput(true, false)
		}
		return s.fail(ctx, "play", started, err)
	}

	batch, err := s.nextBatch(ctx, memberInput)
	if err != nil {
		return failed(err)
	}

	s.setState(ctx, StatePlaying)

	var events, actions int
	for {
		res, n, err := s.playBatch(ctx, batch)
		events += len(batch)
		actions += n
		s.publish()
		if err != nil {
			return failed(err)
		}

		switch res.Boundary {
		case sequencer.BoundaryScene:
			s.exp.EnterScene(res.SceneID)
			s.logger.Info("engine.scene.ended", "experience", s.exp.ID, "scene", res.SceneID)
			if batch, err = s.fetchBatch(ctx, nil); err != nil {
				return failed(err)
			}
			continue
		case sequencer.BoundaryExperience:
			s.logger.Info("engine.experience.completed", "experience", s.exp.ID)
			if err := s.endLocked(ctx); err != nil {
				return s.fail(ctx, "end", started, err)
			}
			return nil
		}
		break
	}

	s.setState(ctx, StateWaitingForInput)
	s.renderer.ToggleMemberInput(true, false)

	cbCtx = s.callbackContext()
	cbCtx.Events, cbCtx.Actions, cbCtx.Elapsed = events, actions, time.Since(started)
	if err := s.callbacks.ExecuteCallbacks(ctx, CallbackAfterPlay, cbCtx); err != nil {
		s.logger.Warn("engine.callback.failed", "type", string(CallbackAfterPlay), "error", err)
	}
	return nil
}

// nextBatch consumes the preloaded batch once, then goes to the network.
func (s *Session) nextBatch(ctx context.Context, memberInput map[string]any) ([]core.Event, error) {
	if s.hasBatch {
		batch := s.preloaded
		s.preloaded, s.hasBatch = nil, false
		return batch, nil
	}
	return s.fetchBatch(ctx, memberInput)
}

func (s *Session) fetchBatch(ctx context.Context, memberInput map[string]any) ([]core.Event, error) {
	batch := s.data.Events(ctx, s.exp.ID, memberInput)
	if !batch.Success {
		return nil, core.Errorf(core.ErrEmptyEventBatch, "%s", batch.Message)
	}
	if len(batch.Events) == 0 {
		return nil, core.Errorf(core.ErrEmptyEventBatch, "no events")
	}
	s.exp.ApplyBatch(batch)
	return batch.Events, nil
}

// playBatch prepares the backdrop, compiles batch and runs it. It returns
// the number of compiled actions.
func (s *Session) playBatch(ctx context.Context, batch []core.Event) (sequencer.Result, int, error) {
	ordered := compiler.SortByOrder(batch)
	backdrop := s.backdropFor(ordered)

	if _, err := s.stage.Prepare(ctx, s.exp, backdrop); err != nil {
		return sequencer.Result{}, 0, err
	}

	actions, err := s.compiler.CompileBatch(ordered, &compiler.State{
		Experience: s.exp,
		Backdrop:   backdrop,
		Surfaces:   s.renderer,
	})
	if err != nil {
		if core.KindOf(err) == core.KindAnimation {
			err = fmt.Errorf("%w: %w", core.ErrPlaybackFailed, err)
		}
		return sequencer.Result{}, 0, err
	}

	res := s.sequencer.Run(ctx, actions, backdrop)
	if !res.OK {
		return res, len(actions), fmt.Errorf("%w: %w", core.ErrPlaybackFailed, res.Err)
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		if ordered[i].SceneID != "" {
			s.exp.EnterScene(ordered[i].SceneID)
			break
		}
	}
	for _, ev := range ordered {
		if ev.AwaitsInput() {
			s.prompt = ev.Input
		}
	}

	s.logger.Debug("engine.batch.played", "events", len(ordered), "actions", len(actions), "played", res.Played, "backdrop", string(backdrop))
	return res, len(actions), nil
}

// backdropFor resolves the backdrop of the scene a batch plays in: an
// explicit stage backdrop on the first event wins over the scene's.
func (s *Session) backdropFor(ordered []core.Event) core.Backdrop {
	sceneID := s.exp.SceneID()
	if len(ordered) > 0 {
		first := ordered[0]
		if first.Stage != nil && first.Stage.Backdrop.Valid() {
			return first.Stage.Backdrop
		}
		if first.SceneID != "" {
			sceneID = first.SceneID
		}
	}
	node, _ := s.exp.FindScene(sceneID)
	return node.BackdropOrDefault()
}

// SubmitInput reads the member's answer from the renderer and plays the next
// batch with it. Failures are logged and reported to OnError callbacks, not
// returned.
func (s *Session) SubmitInput(ctx context.Context) {
	ctx, release := s.interruptible(ctx)
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.prompt.VariableName()
	value := s.renderer.InputValue(s.stage.State())
	if err := s.playLocked(ctx, map[string]any{key: value}); err != nil {
		s.logger.Error("engine.input.failed", "variable", key, "error", err)
	}
}

// Skip repositions playback on sceneID, or on the current scene when
// sceneID is empty. The next Play re-prepares the backdrop.
func (s *Session) Skip(ctx context.Context, sceneID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exp == nil {
		return core.ErrNoActiveExperience
	}
	if !s.exp.Skippable {
		return core.Errorf(core.ErrNotSkippable, "%s", s.exp.ID)
	}
	target := sceneID
	if target == "" {
		target = s.exp.SceneID()
	}
	if _, ok := s.exp.FindScene(target); !ok {
		return core.Errorf(core.ErrSceneNotFound, "%q", target)
	}

	s.exp.EnterScene(target)
	s.stage.Invalidate()
	s.publish()
	s.logger.Info("engine.scene.skipped", "experience", s.exp.ID, "scene", target)
	return nil
}

// End terminates the active experience. Without one it does nothing. An
// in-flight Play is cancelled first. Visual state is cleared only after the
// data service acknowledged the end.
func (s *Session) End(ctx context.Context) error {
	s.interrupt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.endLocked(ctx); err != nil {
		return s.fail(ctx, "end", time.Now(), err)
	}
	return nil
}

func (s *Session) endLocked(ctx context.Context) error {
	if s.exp == nil {
		return nil
	}
	id := s.exp.ID

	res := s.data.End(ctx, id)
	if !res.Success {
		return core.Errorf(core.ErrEndFailed, "%s: %s", id, res.Message)
	}

	if err := s.renderer.Clear(ctx, id); err != nil {
		s.logger.Warn("engine.clear.failed", "experience", id, "error", err)
	}
	s.stage.Reset()
	s.exp = nil
	s.preloaded, s.hasBatch, s.prompt = nil, false, nil
	s.publish()
	s.setState(ctx, StateEnded)

	cbCtx := s.callbackContext()
	cbCtx.ExperienceID = id
	if err := s.callbacks.ExecuteCallbacks(ctx, CallbackOnEnd, cbCtx); err != nil {
		s.logger.Warn("engine.callback.failed", "type", string(CallbackOnEnd), "error", err)
	}

	s.viewMu.Lock()
	s.listeners = nil
	s.viewMu.Unlock()

	s.logger.Info("engine.session.ended", "experience", id)
	return nil
}

func (s *Session) setState(ctx context.Context, to State) {
	s.viewMu.Lock()
	from := s.state
	if from == to {
		s.viewMu.Unlock()
		return
	}
	s.state = to
	listeners := append([]Listener(nil), s.listeners...)
	s.viewMu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}

	cbCtx := s.callbackContext()
	cbCtx.From, cbCtx.To = from, to
	if err := s.callbacks.ExecuteCallbacks(ctx, CallbackOnStateChange, cbCtx); err != nil {
		s.logger.Warn("engine.callback.failed", "type", string(CallbackOnStateChange), "error", err)
	}
	s.logger.Debug("engine.state.changed", "from", string(from), "to", string(to))
}

// publish refreshes the snapshot served by Experience. Caller must hold mu.
func (s *Session) publish() {
	var snap *core.Experience
	if s.exp != nil {
		snap = s.exp.Clone()
	}
	s.viewMu.Lock()
	s.snapshot = snap
	s.viewMu.Unlock()
}

func (s *Session) callbackContext() *CallbackContext {
	cbCtx := &CallbackContext{SessionID: s.id}
	if s.exp != nil {
		cbCtx.ExperienceID = s.exp.ID
	}
	return cbCtx
}

// fail reports err to OnError callbacks and returns it.
func (s *Session) fail(ctx context.Context, op string, started time.Time, err error) error {
	if errors.Is(err, context.Canceled) {
		s.logger.Info("engine.operation.cancelled", "operation", op)
	} else {
		s.logger.Warn("engine.operation.failed", "operation", op, "kind", string(core.KindOf(err)), "error", err)
	}
	cbCtx := s.callbackContext()
	cbCtx.Operation, cbCtx.Err, cbCtx.Elapsed = op, err, time.Since(started)
	if cbErr := s.callbacks.ExecuteCallbacks(ctx, CallbackOnError, cbCtx); cbErr != nil {
		s.logger.Warn("engine.callback.failed", "type", string(CallbackOnError), "error", cbErr)
	}
	return err
}
