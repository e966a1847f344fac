package stage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/logging"
)

// State is the backdrop currently mounted. The zero value is Uninitialized.
type State = core.Backdrop

// Uninitialized means no backdrop has been prepared since the last Reset.
const Uninitialized State = core.BackdropNone

// Manager tracks the mounted backdrop and drives the backstage through
// transitions. It is safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	backstage core.Backstage
	logger    logging.Logger
	current   State
	stale     bool
}

// Options configures a Manager.
type Options struct {
	Logger logging.Logger
}

// New returns a manager in the Uninitialized state.
func New(backstage core.Backstage, optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{backstage: backstage, logger: opts.Logger}
}

// State returns the mounted backdrop.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Prepare mounts backdrop for exp. Invalid backdrops are treated as chat.
// It reports whether a transition ran; preparing the mounted backdrop again
// is a no-op unless Invalidate was called in between.
//
// A failed transition leaves the manager Uninitialized so the next call
// retries it from scratch.
func (m *Manager) Prepare(ctx context.Context, exp *core.Experience, backdrop core.Backdrop) (bool, error) {
	if !backdrop.Valid() {
		backdrop = core.BackdropChat
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == backdrop && !m.stale {
		return false, nil
	}

	from := m.current
	m.current = Uninitialized
	if err := m.transition(ctx, exp, backdrop); err != nil {
		return false, fmt.Errorf("prepare %s backdrop: %w", backdrop, err)
	}
	m.current = backdrop
	m.stale = false

	m.logger.Info("stage.backdrop.prepared", "experience", exp.ID, "from", string(from), "to", string(backdrop))
	return true, nil
}

// Invalidate forces the next Prepare to run its transition even when the
// backdrop is unchanged.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = true
}

// Reset returns the manager to Uninitialized without touching the renderer.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Uninitialized
	m.stale = false
}

func (m *Manager) transition(ctx context.Context, exp *core.Experience, backdrop core.Backdrop) error {
	for _, c := range []core.Container{core.ContainerChatLane, core.ContainerSceneStage} {
		if err := m.backstage.UnmountLanes(ctx, c); err != nil {
			return err
		}
	}

	container := ContainerFor(backdrop)
	for _, c := range CastFor(exp, backdrop) {
		if err := m.backstage.MountLane(ctx, *c, container); err != nil {
			return fmt.Errorf("mount lane %s: %w", c.ID, err)
		}
	}

	if err := m.backstage.ClearModerator(ctx); err != nil {
		return err
	}

	if backdrop == core.BackdropFull {
		if err := m.backstage.HideBackstage(ctx); err != nil {
			return err
		}
		return m.backstage.RevealMainstage(ctx)
	}
	return m.backstage.RevealChat(ctx, backdrop == core.BackdropInterface)
}

// ContainerFor returns where lanes mount for backdrop.
func ContainerFor(backdrop core.Backdrop) core.Container {
	if backdrop == core.BackdropFull {
		return core.ContainerSceneStage
	}
	return core.ContainerChatLane
}

// CastFor returns the cast members that get a lane on backdrop: everyone but
// the member, and on the full backdrop also everyone but the avatar.
func CastFor(exp *core.Experience, backdrop core.Backdrop) []*core.Character {
	var out []*core.Character
	for _, c := range exp.Cast {
		if c.IsMember() {
			continue
		}
		if backdrop == core.BackdropFull && c.IsAvatar() {
			continue
		}
		out = append(out, c)
	}
	return out
}
