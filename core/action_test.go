package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActionTarget_ElementID(t *testing.T) {
	cases := map[string]struct {
		target ActionTarget
		want   string
	}{
		"lane":      {LaneTarget("c1"), "char-c1"},
		"dialog":    {DialogTarget("c1"), "char-dialog-c1"},
		"moderator": {FixedTarget(TargetModerator), "moderator-dialog"},
		"prompt":    {FixedTarget(TargetModeratorPrompt), "moderator-prompt"},
		"icon":      {FixedTarget(TargetModeratorIcon), "moderator-icon"},
		"continue":  {FixedTarget(TargetContinue), "continue-button"},
		"none":      {ActionTarget{}, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.target.ElementID())
		})
	}
}

func TestAnimation_Timing(t *testing.T) {
	d, dur := (&Animation{Delay: "250ms", Duration: "1s"}).Timing()
	assert.Equal(t, 250*time.Millisecond, d)
	assert.Equal(t, time.Second, dur)

	d, dur = (&Animation{Delay: "soon", Duration: "-1s"}).Timing()
	assert.Zero(t, d)
	assert.Zero(t, dur)

	var nilAnim *Animation
	d, dur = nilAnim.Timing()
	assert.Zero(t, d + dur)
}

func TestAction_EndMarkers(t *testing.T) {
	scene := Action{Action: ActionEnd, Type: TypeStage}
	exp := Action{Action: ActionEnd, Type: ActionType(EventTypeExperience)}

	assert.True(t, scene.IsEnd())
	assert.False(t, scene.EndsExperience())
	assert.True(t, exp.EndsExperience())
	assert.False(t, Action{Action: ActionAppear}.IsEnd())
}

func TestGesture_Dismisses(t *testing.T) {
	assert.True(t, Gesture{Kind: GesturePointer}.Dismisses())
	for _, key := range []string{" ", "Space", "Escape", "Enter"} {
		assert.True(t, Gesture{Kind: GestureKey, Key: key}.Dismisses(), key)
	}
	assert.False(t, Gesture{Kind: GestureKey, Key: "a"}.Dismisses())
	assert.False(t, Gesture{}.Dismisses())
}

func TestInputCue_VariableName(t *testing.T) {
	var missing *InputCue
	assert.Equal(t, "input", missing.VariableName())
	assert.Equal(t, "input", (&InputCue{}).VariableName())
	assert.Equal(t, "nick", (&InputCue{Variable: "nick"}).VariableName())
	assert.Equal(t, "name", (&InputCue{InputVariableName: "name", Variable: "nick"}).VariableName())

	assert.True(t, Event{Input: &InputCue{}}.AwaitsInput())
	assert.False(t, Event{Input: &InputCue{Complete: true}}.AwaitsInput())
}

func TestErrors_KindOf(t *testing.T) {
	wrapped := fmt.Errorf("play: %w", Errorf(ErrEmptyEventBatch, "scene %s", "s1"))

	assert.ErrorIs(t, wrapped, ErrEmptyEventBatch)
	assert.Equal(t, KindData, KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), "scene s1")
	assert.Equal(t, KindValidation, KindOf(ErrNotSkippable))
	assert.Equal(t, KindAnimation, KindOf(fmt.Errorf("%w: %w", ErrPlaybackFailed, errors.New("boom"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
}
