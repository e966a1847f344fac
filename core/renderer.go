package core

import "context"

// Surface is a resolved render target.
type Surface interface {
	Target() ActionTarget
	Visible() bool
}

// Surfaces resolves action targets against what is currently mounted.
type Surfaces interface {
	// Lookup returns the surface for target, or false when it is not mounted.
	Lookup(target ActionTarget) (Surface, bool)
	// VisibleLanes returns every character lane that is currently shown.
	VisibleLanes() []Surface
}

// Transition is an in-flight visual change on one surface.
//
// Done is closed when the transition reaches its natural end; Err reports
// the failure, if any, after Done is closed. Cancel snaps the surface to its
// final state and closes Done; it is safe to call more than once.
type Transition interface {
	Done() <-chan struct{}
	Err() error
	Cancel()
}

// Animator performs visual changes.
type Animator interface {
	// Animate starts the transition described by action on surface.
	Animate(ctx context.Context, surface Surface, action Action) (Transition, error)
	// Hide removes surface from view immediately, without a transition.
	Hide(ctx context.Context, surface Surface) error
}

// GestureKind distinguishes pointer from keyboard gestures.
type GestureKind string

const (
	GesturePointer GestureKind = "pointer"
	GestureKey     GestureKind = "key"
)

// Gesture is one user action reported by the renderer.
type Gesture struct {
	Kind GestureKind `json:"kind"`
	Key  string      `json:"key,omitempty"`
}

// dismissKeys is the fixed key set that dismisses a transition.
var dismissKeys = map[string]bool{" ": true, "Space": true, "Escape": true, "Enter": true}

// Dismisses reports whether the gesture qualifies to cancel a dismissable
// transition: any pointer click, or one of Space, Escape, Enter.
func (g Gesture) Dismisses() bool {
	switch g.Kind {
	case GesturePointer:
		return true
	case GestureKey:
		return dismissKeys[g.Key]
	default:
		return false
	}
}

// Gestures delivers user signals.
type Gestures interface {
	// NextGesture blocks until the next user gesture or ctx is done.
	NextGesture(ctx context.Context) (Gesture, error)
	// AwaitContinue blocks until the explicit "continue" signal or ctx is done.
	// It is a gate between steps, distinct from per-action dismissal.
	AwaitContinue(ctx context.Context) error
}

// Container names the place character lanes are mounted into.
type Container string

const (
	ContainerChatLane   Container = "chat_lane"
	ContainerSceneStage Container = "scene_stage"
)

// Backstage mounts cast lanes and switches the visible stage.
type Backstage interface {
	// MountLane creates or moves the lane (and its dialog) for c into container.
	MountLane(ctx context.Context, c Character, container Container) error
	// UnmountLanes removes every lane mounted into container.
	UnmountLanes(ctx context.Context, container Container) error
	// ClearModerator resets the moderator slot.
	ClearModerator(ctx context.Context) error
	// HideBackstage hides the welcome surface.
	HideBackstage(ctx context.Context) error
	// RevealMainstage animates the full-stage surface into view.
	RevealMainstage(ctx context.Context) error
	// RevealChat shows the chat container, keeping the sidebar when sidebar is true.
	RevealChat(ctx context.Context, sidebar bool) error
}

// Chrome covers the surfaces around playback: welcome, member input, teardown.
type Chrome interface {
	// ShowWelcome displays the title surface of an experience.
	ShowWelcome(ctx context.Context, summary ExperienceSummary) error
	// ShowReady exposes the affordance that starts playback.
	ShowReady(ctx context.Context) error
	// ToggleMemberInput shows or hides the ambient member-chat affordance.
	ToggleMemberInput(display, hidden bool)
	// InputValue returns the current text of the input surface active for backdrop.
	InputValue(backdrop Backdrop) string
	// Clear removes lanes and chat history belonging to experienceID.
	Clear(ctx context.Context, experienceID string) error
}

// Renderer is the full render collaborator a playback session drives.
type Renderer interface {
	Surfaces
	Animator
	Gestures
	Backstage
	Chrome
}
