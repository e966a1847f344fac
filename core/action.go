package core

import (
	"strings"
	"time"
)

// ActionKind is the visual transition an Action requests.
type ActionKind string

const (
	ActionAppear    ActionKind = "appear"
	ActionDisappear ActionKind = "disappear"
	ActionClick     ActionKind = "click"
	ActionEnd       ActionKind = "end"
)

// ActionType groups actions by the surface family they address. End markers
// carry the originating event type instead (see EventTypeExperience).
type ActionType string

const (
	TypeCharacter ActionType = "character"
	TypeDialog    ActionType = "dialog"
	TypeModerator ActionType = "moderator"
	TypeStage     ActionType = "stage"
)

// TargetKind tags which render surface an ActionTarget references.
type TargetKind string

const (
	TargetNone            TargetKind = ""
	TargetCharacterLane   TargetKind = "character"
	TargetDialog          TargetKind = "dialog"
	TargetModerator       TargetKind = "moderator"
	TargetModeratorPrompt TargetKind = "moderator_prompt"
	TargetModeratorIcon   TargetKind = "moderator_icon"
	TargetContinue        TargetKind = "continue"
)

// ActionTarget references a render surface by kind and, for per-character
// surfaces, the cast member id. Renderers resolve targets structurally; the
// element id is only a stable name for logs and wire messages.
type ActionTarget struct {
	Kind        TargetKind `json:"kind"`
	CharacterID string     `json:"characterId,omitempty"`
}

// LaneTarget addresses a character's lane.
func LaneTarget(characterID string) ActionTarget {
	return ActionTarget{Kind: TargetCharacterLane, CharacterID: characterID}
}

// DialogTarget addresses the dialog container inside a character's lane.
func DialogTarget(characterID string) ActionTarget {
	return ActionTarget{Kind: TargetDialog, CharacterID: characterID}
}

// FixedTarget addresses one of the singleton surfaces (moderator, continue).
func FixedTarget(kind TargetKind) ActionTarget { return ActionTarget{Kind: kind} }

// ElementID returns the logical element name of the target.
func (t ActionTarget) ElementID() string {
	switch t.Kind {
	case TargetCharacterLane:
		return "char-" + t.CharacterID
	case TargetDialog:
		return "char-dialog-" + t.CharacterID
	case TargetModerator:
		return "moderator-dialog"
	case TargetModeratorPrompt:
		return "moderator-prompt"
	case TargetModeratorIcon:
		return "moderator-icon"
	case TargetContinue:
		return "continue-button"
	default:
		return ""
	}
}

// Animation describes a CSS-like transition. Delay and Duration are Go
// duration strings ("500ms", "1s"); empty means zero.
type Animation struct {
	Class          string `json:"class,omitempty"`
	Delay          string `json:"delay,omitempty"`
	Duration       string `json:"duration,omitempty"`
	Direction      string `json:"direction,omitempty"`
	IterationCount string `json:"iterationCount,omitempty"`
}

// Timing parses delay and duration, treating malformed values as zero.
func (a *Animation) Timing() (delay, duration time.Duration) {
	if a == nil {
		return 0, 0
	}
	return parseDuration(a.Delay), parseDuration(a.Duration)
}

func parseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Content is the payload a surface displays when it appears.
type Content struct {
	Text        string `json:"text,omitempty"`
	Effect      string `json:"effect,omitempty"`
	InputType   string `json:"inputType,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Sfx         string `json:"sfx,omitempty"`
}

// Action is a compiled instruction to transition one surface. Actions are
// produced by the compiler and consumed exactly once by the sequencer.
//
// A disappear action without Animation is an immediate unmount.
type Action struct {
	Action      ActionKind   `json:"action"`
	Target      ActionTarget `json:"target"`
	Animation   *Animation   `json:"animation,omitempty"`
	Content     *Content     `json:"content,omitempty"`
	Dismissable bool         `json:"dismissable"`
	Halt        bool         `json:"halt"`
	Type        ActionType   `json:"type"`
	SceneID     string       `json:"sceneId,omitempty"`
}

// ElementID is shorthand for a.Target.ElementID().
func (a Action) ElementID() string { return a.Target.ElementID() }

// IsEnd reports whether the action is a terminal boundary marker.
func (a Action) IsEnd() bool { return a.Action == ActionEnd }

// EndsExperience reports whether a terminal marker closes the experience.
func (a Action) EndsExperience() bool {
	return a.IsEnd() && string(a.Type) == EventTypeExperience
}
