package core

// StageCue is the stage facet of an event.
type StageCue struct {
	Backdrop Backdrop `json:"backdrop,omitempty"`
	Click    bool     `json:"click,omitempty"`
	Type     string   `json:"type,omitempty"`
}

// StageTypeScript is the only stage type the compiler understands.
const StageTypeScript = "script"

// StageDirection tells the compiler what a character does on stage.
type StageDirection string

const (
	DirectionAppear    StageDirection = "appear"
	DirectionDisappear StageDirection = "disappear"
	DirectionMove      StageDirection = "move"
	DirectionAction    StageDirection = "action"
)

// CharacterCue is the character facet of an event. Role and Name, when set,
// are written back onto the matching cast member.
type CharacterCue struct {
	CharacterID    string         `json:"characterId" validate:"required"`
	Role           string         `json:"role,omitempty"`
	Name           string         `json:"name,omitempty"`
	Animation      *Animation     `json:"animation,omitempty"`
	StageDirection StageDirection `json:"stageDirection,omitempty"`
	Sfx            string         `json:"sfx,omitempty"`
}

// DialogCue is the spoken line of the event's character.
type DialogCue struct {
	Dialog    string     `json:"dialog"`
	Animation *Animation `json:"animation,omitempty"`
	Effect    string     `json:"effect,omitempty"`
}

// InputCue asks the member for input. Complete inputs were already answered
// and are never rendered again.
type InputCue struct {
	InputID           string `json:"inputId,omitempty"`
	InputType         string `json:"inputType,omitempty"`
	InputPlaceholder  string `json:"inputPlaceholder,omitempty"`
	InputVariableName string `json:"inputVariableName,omitempty"`
	Variable          string `json:"variable,omitempty"`
	Complete          bool   `json:"complete,omitempty"`
}

// VariableName returns the payload key a member response is submitted under.
func (in *InputCue) VariableName() string {
	switch {
	case in == nil:
		return "input"
	case in.InputVariableName != "":
		return in.InputVariableName
	case in.Variable != "":
		return in.Variable
	default:
		return "input"
	}
}

// EventActionEnd marks a scene or experience boundary.
const EventActionEnd = "end"

// EventTypeExperience is the event type whose end marker terminates the
// whole experience rather than the current scene.
const EventTypeExperience = "experience"

// Event is one atomic script record belonging to a scene. After receipt it
// should be treated as immutable.
type Event struct {
	ID        string        `json:"id" validate:"required"`
	Order     int           `json:"order"`
	Type      string        `json:"type,omitempty"`
	Action    string        `json:"action,omitempty"`
	SceneID   string        `json:"sceneId,omitempty"`
	Stage     *StageCue     `json:"stage,omitempty"`
	Character *CharacterCue `json:"character,omitempty"`
	Dialog    *DialogCue    `json:"dialog,omitempty"`
	Input     *InputCue     `json:"input,omitempty"`
}

// IsEnd reports whether the event closes a scene or the experience.
func (e Event) IsEnd() bool { return e.Action == EventActionEnd }

// AwaitsInput reports whether the event carries an unanswered input prompt.
func (e Event) AwaitsInput() bool { return e.Input != nil && !e.Input.Complete }
