package wsrender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/logging"
	"github.com/hupe1980/playback/render"
)

// ErrClosed is returned by every blocking call once the connection is gone.
var ErrClosed = errors.New("wsrender: connection closed")

var _ core.Renderer = (*Renderer)(nil)

// Options configures a Renderer.
type Options struct {
	// WriteWait bounds a single websocket write.
	WriteWait time.Duration
	// PongWait is how long the peer may stay silent before the read fails.
	PongWait time.Duration
	// PingPeriod must be shorter than PongWait.
	PingPeriod time.Duration
	// MaxMessageSize limits inbound frames.
	MaxMessageSize int64
	// SendBuffer is the capacity of the outbound queue.
	SendBuffer int
	// ControlBuffer is the capacity of the Control channel. Control messages
	// arriving while it is full are dropped.
	ControlBuffer int
	Logger        logging.Logger
}

// Renderer drives a browser over a websocket connection.
type Renderer struct {
	conn    *websocket.Conn
	board   *render.Board
	opts    Options
	logger  logging.Logger
	send    chan []byte
	control chan Message

	gestures  *signal[core.Gesture]
	continues *signal[struct{}]

	mu          sync.Mutex
	nextID      uint64
	transitions map[uint64]*transition
	inputs      map[core.Backdrop]string

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps conn. Run must be called to start the pumps.
func New(conn *websocket.Conn, optFns ...func(o *Options)) *Renderer {
	opts := Options{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBuffer:     256,
		ControlBuffer:  16,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Renderer{
		conn:        conn,
		board:       render.NewBoard(),
		opts:        opts,
		logger:      opts.Logger,
		send:        make(chan []byte, opts.SendBuffer),
		control:     make(chan Message, opts.ControlBuffer),
		gestures:    newSignal[core.Gesture](),
		continues:   newSignal[struct{}](),
		transitions: make(map[uint64]*transition),
		inputs:      make(map[core.Backdrop]string),
		closed:      make(chan struct{}),
	}
}

// Board exposes the renderer's view of the mounted surfaces.
func (r *Renderer) Board() *render.Board { return r.board }

// Control delivers browser messages the renderer does not handle itself.
// It is closed when the connection ends.
func (r *Renderer) Control() <-chan Message { return r.control }

// Done is closed once the connection has ended.
func (r *Renderer) Done() <-chan struct{} { return r.closed }

// Send queues cmd for the browser.
func (r *Renderer) Send(ctx context.Context, cmd Command) error {
	return r.sendJSON(ctx, cmd)
}

// SendJSON queues an arbitrary JSON value for the browser.
func (r *Renderer) SendJSON(ctx context.Context, v any) error {
	return r.sendJSON(ctx, v)
}

// Run pumps the connection until the peer disconnects or ctx is done. It
// always closes the connection before returning.
func (r *Renderer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		r.writePump(ctx)
	}()

	err := r.readPump()
	cancel()
	<-writeDone
	r.shutdown()
	return err
}

func (r *Renderer) readPump() error {
	r.conn.SetReadLimit(r.opts.MaxMessageSize)
	_ = r.conn.SetReadDeadline(time.Now().Add(r.opts.PongWait))
	r.conn.SetPongHandler(func(string) error {
		return r.conn.SetReadDeadline(time.Now().Add(r.opts.PongWait))
	})

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				r.logger.Warn("wsrender.read.failed", "error", err)
				return fmt.Errorf("read: %w", err)
			}
			return nil
		}
		r.dispatch(data)
	}
}

func (r *Renderer) writePump(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = r.conn.Close()
	}()

	for {
		select {
		case msg := <-r.send:
			_ = r.conn.SetWriteDeadline(time.Now().Add(r.opts.WriteWait))
			if err := r.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				r.logger.Warn("wsrender.write.failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = r.conn.SetWriteDeadline(time.Now().Add(r.opts.WriteWait))
			if err := r.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = r.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(r.opts.WriteWait),
			)
			return
		}
	}
}

func (r *Renderer) dispatch(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		r.logger.Warn("wsrender.message.invalid", "error", err)
		return
	}

	switch msg.Type {
	case MessageTransitionEnd:
		r.finish(msg.ID, msg.Error)
	case MessageGesture:
		if msg.Gesture == nil {
			return
		}
		if !r.gestures.offer(*msg.Gesture) {
			r.logger.Debug("wsrender.gesture.dropped", "kind", string(msg.Gesture.Kind))
		}
	case MessageContinue:
		if !r.continues.offer(struct{}{}) {
			r.logger.Debug("wsrender.continue.dropped")
		}
	case MessageInput:
		r.mu.Lock()
		r.inputs[msg.Backdrop] = msg.Value
		r.mu.Unlock()
	default:
		msg.Payload = data
		select {
		case r.control <- msg:
		default:
			r.logger.Warn("wsrender.control.dropped", "type", msg.Type)
		}
	}
}

func (r *Renderer) finish(id uint64, errMsg string) {
	r.mu.Lock()
	t, ok := r.transitions[id]
	delete(r.transitions, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	var err error
	if errMsg != "" {
		err = fmt.Errorf("transition %d: %s", id, errMsg)
	}
	t.complete(err)
}

func (r *Renderer) shutdown() {
	r.closeOnce.Do(func() {
		close(r.closed)
		r.mu.Lock()
		pending := r.transitions
		r.transitions = make(map[uint64]*transition)
		r.mu.Unlock()
		for _, t := range pending {
			t.complete(ErrClosed)
		}
		close(r.control)
	})
}

func (r *Renderer) sendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	select {
	case <-r.closed:
		return ErrClosed
	default:
	}
	select {
	case r.send <- data:
		return nil
	case <-r.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Lookup implements core.Surfaces.
func (r *Renderer) Lookup(target core.ActionTarget) (core.Surface, bool) {
	return r.board.Lookup(target)
}

// VisibleLanes implements core.Surfaces.
func (r *Renderer) VisibleLanes() []core.Surface { return r.board.VisibleLanes() }

// Animate implements core.Animator. The transition completes when the
// browser reports transition_end for its id. A dismissable transition
// accepts gestures from the moment its command is queued until it
// completes.
func (r *Renderer) Animate(ctx context.Context, s core.Surface, a core.Action) (core.Transition, error) {
	r.mu.Lock()
	r.nextID++
	t := &transition{id: r.nextID, renderer: r, window: a.Dismissable, done: make(chan struct{})}
	r.transitions[t.id] = t
	r.mu.Unlock()
	if t.window {
		r.gestures.arm()
	}

	target := s.Target()
	cmd := Command{Type: CommandAnimate, ID: t.id, Element: target.ElementID(), Target: &target, Action: &a}
	if err := r.sendJSON(ctx, cmd); err != nil {
		r.mu.Lock()
		delete(r.transitions, t.id)
		r.mu.Unlock()
		t.complete(err)
		return nil, fmt.Errorf("animate %s: %w", target.ElementID(), err)
	}
	r.board.SetVisible(target, a.Action != core.ActionDisappear)
	return t, nil
}

// Hide implements core.Animator.
func (r *Renderer) Hide(ctx context.Context, s core.Surface) error {
	target := s.Target()
	r.board.SetVisible(target, false)
	return r.sendJSON(ctx, Command{Type: CommandHide, Element: target.ElementID(), Target: &target})
}

// NextGesture implements core.Gestures. Only gestures that arrive while it
// waits, or while a dismissable transition is pending, are returned.
func (r *Renderer) NextGesture(ctx context.Context) (core.Gesture, error) {
	r.gestures.arm()
	defer r.gestures.disarm()

	select {
	case g := <-r.gestures.ch:
		return g, nil
	case <-r.closed:
		return core.Gesture{}, ErrClosed
	case <-ctx.Done():
		return core.Gesture{}, ctx.Err()
	}
}

// AwaitContinue implements core.Gestures. It opens a gate, announces it
// with await_continue and waits for the next continue message.
func (r *Renderer) AwaitContinue(ctx context.Context) error {
	r.continues.arm()
	defer r.continues.disarm()

	if err := r.sendJSON(ctx, Command{Type: CommandAwaitContinue}); err != nil {
		return err
	}
	select {
	case <-r.continues.ch:
		return nil
	case <-r.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MountLane implements core.Backstage.
func (r *Renderer) MountLane(ctx context.Context, c core.Character, container core.Container) error {
	r.board.MountLane(c.ID, container)
	return r.sendJSON(ctx, Command{Type: CommandMount, Character: &c, Container: container})
}

// UnmountLanes implements core.Backstage.
func (r *Renderer) UnmountLanes(ctx context.Context, container core.Container) error {
	removed := r.board.UnmountLanes(container)
	if len(removed) == 0 {
		return nil
	}
	return r.sendJSON(ctx, Command{Type: CommandUnmount, Container: container, Characters: removed})
}

// ClearModerator implements core.Backstage.
func (r *Renderer) ClearModerator(ctx context.Context) error {
	r.board.HideModerator()
	return r.sendJSON(ctx, Command{Type: CommandClear, Scope: ScopeModerator})
}

// HideBackstage implements core.Backstage.
func (r *Renderer) HideBackstage(ctx context.Context) error {
	return r.sendJSON(ctx, Command{Type: CommandHide, Stage: StageBackstage})
}

// RevealMainstage implements core.Backstage.
func (r *Renderer) RevealMainstage(ctx context.Context) error {
	return r.sendJSON(ctx, Command{Type: CommandReveal, Stage: StageMainstage})
}

// RevealChat implements core.Backstage.
func (r *Renderer) RevealChat(ctx context.Context, sidebar bool) error {
	return r.sendJSON(ctx, Command{Type: CommandReveal, Stage: StageChat, Sidebar: sidebar})
}

// ShowWelcome implements core.Chrome.
func (r *Renderer) ShowWelcome(ctx context.Context, summary core.ExperienceSummary) error {
	return r.sendJSON(ctx, Command{Type: CommandWelcome, Experience: &summary})
}

// ShowReady implements core.Chrome.
func (r *Renderer) ShowReady(ctx context.Context) error {
	return r.sendJSON(ctx, Command{Type: CommandReady})
}

// ToggleMemberInput implements core.Chrome. Delivery is best effort.
func (r *Renderer) ToggleMemberInput(display, hidden bool) {
	cmd := Command{Type: CommandMemberInput, Display: &display, Hidden: &hidden}
	if err := r.sendJSON(context.Background(), cmd); err != nil {
		r.logger.Debug("wsrender.member_input.dropped", "error", err)
	}
}

// InputValue implements core.Chrome.
func (r *Renderer) InputValue(backdrop core.Backdrop) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inputs[backdrop]
}

// Clear implements core.Chrome.
func (r *Renderer) Clear(ctx context.Context, experienceID string) error {
	r.board.Reset()
	r.mu.Lock()
	r.inputs = make(map[core.Backdrop]string)
	r.mu.Unlock()
	return r.sendJSON(ctx, Command{Type: CommandClear, Scope: ScopeExperience, ExperienceID: experienceID})
}

type transition struct {
	id       uint64
	renderer *Renderer
	// window is set for dismissable transitions, which keep the gesture
	// signal armed until they complete.
	window bool

	once sync.Once
	done chan struct{}
	mu   sync.Mutex
	err  error
}

func (t *transition) Done() <-chan struct{} { return t.done }

func (t *transition) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Cancel asks the browser to snap the surface to its final state and
// completes the transition without waiting for an acknowledgement.
func (t *transition) Cancel() {
	r := t.renderer
	r.mu.Lock()
	_, pending := r.transitions[t.id]
	delete(r.transitions, t.id)
	r.mu.Unlock()
	if pending {
		if err := r.sendJSON(context.Background(), Command{Type: CommandSnap, ID: t.id}); err != nil {
			r.logger.Debug("wsrender.snap.dropped", "id", t.id, "error", err)
		}
	}
	t.complete(nil)
}

func (t *transition) complete(err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		if t.window {
			t.renderer.gestures.disarm()
		}
		close(t.done)
	})
}
