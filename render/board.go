package render

import (
	"sort"
	"sync"

	"github.com/hupe1980/playback/core"
)

type slot struct {
	container core.Container
	visible   bool
	seq       int
}

// Board tracks mounted surfaces and their visibility. It is safe for
// concurrent access. The moderator surfaces and the continue affordance are
// always mounted; lanes and dialogs exist only while their character is
// mounted.
type Board struct {
	mu    sync.RWMutex
	slots map[core.ActionTarget]*slot
	seq   int
}

var fixedTargets = []core.TargetKind{
	core.TargetModerator,
	core.TargetModeratorPrompt,
	core.TargetModeratorIcon,
	core.TargetContinue,
}

// NewBoard returns a board with only the fixed surfaces mounted.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset unmounts every lane and hides the fixed surfaces.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots = make(map[core.ActionTarget]*slot)
	for _, k := range fixedTargets {
		b.mountLocked(core.FixedTarget(k), "")
	}
}

// MountLane creates the lane and dialog surfaces for characterID in
// container, or moves them there when already mounted. Visibility is kept.
func (b *Board) MountLane(characterID string, container core.Container) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range []core.ActionTarget{core.LaneTarget(characterID), core.DialogTarget(characterID)} {
		if s, ok := b.slots[t]; ok {
			s.container = container
			continue
		}
		b.mountLocked(t, container)
	}
}

// UnmountLanes removes every lane and dialog mounted into container and
// returns the character ids that were removed.
func (b *Board) UnmountLanes(container core.Container) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var removed []string
	for t, s := range b.slots {
		if s.container != container || container == "" {
			continue
		}
		if t.Kind == core.TargetCharacterLane {
			removed = append(removed, t.CharacterID)
		}
		delete(b.slots, t)
	}
	return removed
}

// SetVisible records the visibility of target. Unknown targets are ignored.
func (b *Board) SetVisible(target core.ActionTarget, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.slots[target]; ok {
		s.visible = visible
	}
}

// HideModerator hides every moderator surface.
func (b *Board) HideModerator() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range []core.TargetKind{core.TargetModerator, core.TargetModeratorPrompt, core.TargetModeratorIcon} {
		if s, ok := b.slots[core.FixedTarget(k)]; ok {
			s.visible = false
		}
	}
}

// Lookup implements core.Surfaces.
func (b *Board) Lookup(target core.ActionTarget) (core.Surface, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.slots[target]; !ok {
		return nil, false
	}
	return &Surface{board: b, target: target}, true
}

// VisibleLanes implements core.Surfaces. Lanes are returned in mount order.
func (b *Board) VisibleLanes() []core.Surface {
	b.mu.RLock()
	defer b.mu.RUnlock()
	type entry struct {
		target core.ActionTarget
		seq    int
	}
	var lanes []entry
	for t, s := range b.slots {
		if t.Kind == core.TargetCharacterLane && s.visible {
			lanes = append(lanes, entry{t, s.seq})
		}
	}
	sort.Slice(lanes, func(i, j int) bool { return lanes[i].seq < lanes[j].seq })
	out := make([]core.Surface, 0, len(lanes))
	for _, l := range lanes {
		out = append(out, &Surface{board: b, target: l.target})
	}
	return out
}

// Container reports where target is mounted.
func (b *Board) Container(target core.ActionTarget) (core.Container, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.slots[target]
	if !ok {
		return "", false
	}
	return s.container, true
}

func (b *Board) visible(target core.ActionTarget) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.slots[target]
	return ok && s.visible
}

func (b *Board) mountLocked(t core.ActionTarget, container core.Container) {
	b.seq++
	b.slots[t] = &slot{container: container, seq: b.seq}
}

// Surface is a live handle onto a board slot.
type Surface struct {
	board  *Board
	target core.ActionTarget
}

// Target implements core.Surface.
func (s *Surface) Target() core.ActionTarget { return s.target }

// Visible implements core.Surface; it reflects the board's current state.
func (s *Surface) Visible() bool { return s.board.visible(s.target) }
