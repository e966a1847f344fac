package wsrender

import "github.com/hupe1980/playback/core"

// Command types sent to the browser.
const (
	CommandAnimate     = "animate"
	CommandSnap        = "snap"
	CommandHide        = "hide"
	CommandMount       = "mount"
	CommandUnmount     = "unmount"
	CommandReveal      = "reveal"
	CommandWelcome     = "welcome"
	CommandReady       = "ready"
	CommandMemberInput = "member_input"
	CommandClear       = "clear"
	// CommandAwaitContinue tells the browser playback waits at a continue
	// gate. Continue messages are only accepted while a gate is open.
	CommandAwaitContinue = "await_continue"
)

// Message types received from the browser.
const (
	MessageTransitionEnd = "transition_end"
	MessageGesture       = "gesture"
	MessageContinue      = "continue"
	MessageInput         = "input"
)

// Stages addressed by hide and reveal commands that do not target a surface.
const (
	StageBackstage = "backstage"
	StageMainstage = "mainstage"
	StageChat      = "chat"
)

// Clear scopes.
const (
	ScopeModerator  = "moderator"
	ScopeExperience = "experience"
)

// Command is one instruction to the browser. Only the fields relevant to
// Type are set.
type Command struct {
	Type         string                  `json:"type"`
	ID           uint64                  `json:"id,omitempty"`
	Element      string                  `json:"element,omitempty"`
	Target       *core.ActionTarget      `json:"target,omitempty"`
	Action       *core.Action            `json:"action,omitempty"`
	Character    *core.Character         `json:"character,omitempty"`
	Characters   []string                `json:"characters,omitempty"`
	Container    core.Container          `json:"container,omitempty"`
	Stage        string                  `json:"stage,omitempty"`
	Sidebar      bool                    `json:"sidebar,omitempty"`
	Experience   *core.ExperienceSummary `json:"experience,omitempty"`
	ExperienceID string                  `json:"experienceId,omitempty"`
	Scope        string                  `json:"scope,omitempty"`
	Display      *bool                   `json:"display,omitempty"`
	Hidden       *bool                   `json:"hidden,omitempty"`
}

// Message is one report from the browser. Payload carries the raw body of
// control messages the renderer does not interpret itself.
type Message struct {
	Type     string        `json:"type"`
	ID       uint64        `json:"id,omitempty"`
	Error    string        `json:"error,omitempty"`
	Gesture  *core.Gesture `json:"gesture,omitempty"`
	Backdrop core.Backdrop `json:"backdrop,omitempty"`
	Value    string        `json:"value,omitempty"`

	Payload []byte `json:"-"`
}
