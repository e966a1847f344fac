package core

// Backdrop is the rendering mode that decides where cast and dialog mount.
type Backdrop string

const (
	// BackdropNone is the zero value: no surface has been prepared yet.
	BackdropNone      Backdrop = ""
	BackdropChat      Backdrop = "chat"
	BackdropInterface Backdrop = "interface"
	BackdropFull      Backdrop = "full"
)

// Valid reports whether b is one of the mountable backdrops.
func (b Backdrop) Valid() bool {
	switch b {
	case BackdropChat, BackdropInterface, BackdropFull:
		return true
	default:
		return false
	}
}

// SharesChatLane reports whether the backdrop renders cast in the shared
// chat lane (chat and interface) rather than the dedicated scene stage.
func (b Backdrop) SharesChatLane() bool {
	return b == BackdropChat || b == BackdropInterface
}

// SceneNode is one node of an experience's navigation graph.
type SceneNode struct {
	ID        string   `json:"id" validate:"required"`
	Title     string   `json:"title,omitempty"`
	Backdrop  Backdrop `json:"backdrop,omitempty"`
	Skippable bool     `json:"skippable,omitempty"`
}

// BackdropOrDefault returns the scene's backdrop, falling back to chat.
func (n SceneNode) BackdropOrDefault() Backdrop {
	if n.Backdrop.Valid() {
		return n.Backdrop
	}
	return BackdropChat
}
