package compiler

import (
	"fmt"

	"github.com/hupe1980/playback/core"
)

// StageReader compiles the stage facet and the end-of-scene marker.
type StageReader struct{}

// NewStageReader creates a new stage reader.
func NewStageReader() *StageReader { return &StageReader{} }

// Name returns the reader's identifier.
func (r *StageReader) Name() string { return "stage" }

// Read rejects stage types other than script, emits a halting click on the
// continue affordance when requested, and appends the terminal marker for
// end events.
func (r *StageReader) Read(ev core.Event, _ *State) ([]core.Action, error) {
	var actions []core.Action
	if s := ev.Stage; s != nil {
		if s.Type != "" && s.Type != core.StageTypeScript {
			return nil, core.Errorf(core.ErrUnsupportedStageType, "%q", s.Type)
		}
		if s.Click {
			actions = append(actions, core.Action{
				Action:      core.ActionClick,
				Target:      core.FixedTarget(core.TargetContinue),
				Dismissable: true,
				Halt:        true,
				Type:        core.TypeStage,
				SceneID:     ev.SceneID,
			})
		}
	}
	if ev.IsEnd() {
		actions = append(actions, core.Action{
			Action:  core.ActionEnd,
			Type:    core.ActionType(ev.Type),
			SceneID: ev.SceneID,
		})
	}
	return actions, nil
}

// CharacterReader compiles stage directions for cast members.
type CharacterReader struct{}

// NewCharacterReader creates a new character reader.
func NewCharacterReader() *CharacterReader { return &CharacterReader{} }

// Name returns the reader's identifier.
func (r *CharacterReader) Name() string { return "character" }

// Read validates the referenced cast member, writes role and name back onto
// it, and compiles its stage direction. A bare speaker reference (no
// direction, no animation) emits nothing.
func (r *CharacterReader) Read(ev core.Event, st *State) ([]core.Action, error) {
	cue := ev.Character
	if cue == nil {
		return nil, nil
	}
	c, ok := st.Experience.FindCharacter(cue.CharacterID)
	if !ok {
		return nil, core.Errorf(core.ErrCharacterNotFound, "%q", cue.CharacterID)
	}
	if cue.Role != "" {
		c.Role = cue.Role
	}
	if cue.Name != "" {
		c.Name = cue.Name
	}

	switch cue.StageDirection {
	case "", core.DirectionAppear:
		if cue.StageDirection == "" && cue.Animation == nil {
			return nil, nil
		}
		return []core.Action{{
			Action:    core.ActionAppear,
			Target:    core.LaneTarget(c.ID),
			Animation: firstAnimation(cue.Animation, c.Animation, characterAnimation(st.Backdrop)),
			Content:   sfxContent(cue.Sfx),
			Type:      core.TypeCharacter,
			SceneID:   ev.SceneID,
		}}, nil
	case core.DirectionDisappear:
		return []core.Action{{
			Action:  core.ActionDisappear,
			Target:  core.LaneTarget(c.ID),
			Type:    core.TypeCharacter,
			SceneID: ev.SceneID,
		}}, nil
	default:
		return nil, core.Errorf(core.ErrUnsupportedStageDirection, "%q", cue.StageDirection)
	}
}

func sfxContent(sfx string) *core.Content {
	if sfx == "" {
		return nil
	}
	return &core.Content{Sfx: sfx}
}

// DialogReader compiles spoken lines.
type DialogReader struct{}

// NewDialogReader creates a new dialog reader.
func NewDialogReader() *DialogReader { return &DialogReader{} }

// Name returns the reader's identifier.
func (r *DialogReader) Name() string { return "dialog" }

// Read emits a halting, dismissable appear on the speaker's dialog container.
func (r *DialogReader) Read(ev core.Event, st *State) ([]core.Action, error) {
	d := ev.Dialog
	if d == nil {
		return nil, nil
	}
	if ev.Character == nil || ev.Character.CharacterID == "" {
		return nil, fmt.Errorf("%w: event %s has no speaker", core.ErrDialogContainerMissing, ev.ID)
	}
	target := core.DialogTarget(ev.Character.CharacterID)
	if st.Surfaces != nil {
		if _, ok := st.Surfaces.Lookup(target); !ok {
			return nil, core.Errorf(core.ErrDialogContainerMissing, "%s", target.ElementID())
		}
	}
	return []core.Action{{
		Action:      core.ActionAppear,
		Target:      target,
		Animation:   firstAnimation(d.Animation, dialogAnimation()),
		Content:     &core.Content{Text: d.Dialog, Effect: d.Effect},
		Dismissable: true,
		Halt:        true,
		Type:        core.TypeDialog,
		SceneID:     ev.SceneID,
	}}, nil
}

// InputReader compiles member input prompts.
type InputReader struct{}

// NewInputReader creates a new input reader.
func NewInputReader() *InputReader { return &InputReader{} }

// Name returns the reader's identifier.
func (r *InputReader) Name() string { return "input" }

// Read emits the moderator prompt for unanswered inputs; on the full
// backdrop the prompt text and icon get their own actions.
func (r *InputReader) Read(ev core.Event, st *State) ([]core.Action, error) {
	in := ev.Input
	if in == nil || in.Complete {
		return nil, nil
	}
	actions := []core.Action{{
		Action:      core.ActionAppear,
		Target:      core.FixedTarget(core.TargetModerator),
		Animation:   moderatorAnimation(),
		Content:     &core.Content{InputType: in.InputType, Placeholder: in.InputPlaceholder},
		Dismissable: true,
		Type:        core.TypeModerator,
		SceneID:     ev.SceneID,
	}}
	if st.Backdrop == core.BackdropFull {
		actions = append(actions,
			core.Action{
				Action:      core.ActionAppear,
				Target:      core.FixedTarget(core.TargetModeratorPrompt),
				Animation:   moderatorAnimation(),
				Content:     &core.Content{Text: promptText(ev)},
				Dismissable: true,
				Type:        core.TypeModerator,
				SceneID:     ev.SceneID,
			},
			core.Action{
				Action:      core.ActionAppear,
				Target:      core.FixedTarget(core.TargetModeratorIcon),
				Animation:   moderatorAnimation(),
				Dismissable: true,
				Type:        core.TypeModerator,
				SceneID:     ev.SceneID,
			},
		)
	}
	return actions, nil
}

func promptText(ev core.Event) string {
	if ev.Dialog != nil && ev.Dialog.Dialog != "" {
		return ev.Dialog.Dialog
	}
	return ev.Input.InputPlaceholder
}
