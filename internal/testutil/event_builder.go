package testutil

import (
	"github.com/hupe1980/playback/core"
)

// EventBuilder provides a fluent helper for constructing events in tests.
// Example:
//
//	ev := NewEventBuilder("e1").Order(1).Scene("s1").Character("c1").Dialog("hi").Build()
//
// Chain only the facets you need.
type EventBuilder struct {
	ev core.Event
}

// NewEventBuilder creates a builder for an event with the given id.
func NewEventBuilder(id string) *EventBuilder {
	return &EventBuilder{ev: core.Event{ID: id}}
}

// Order sets the event's position in its batch (chainable).
func (b *EventBuilder) Order(n int) *EventBuilder { b.ev.Order = n; return b }

// Scene sets the scene the event belongs to (chainable).
func (b *EventBuilder) Scene(id string) *EventBuilder { b.ev.SceneID = id; return b }

// Type sets the event type (chainable).
func (b *EventBuilder) Type(t string) *EventBuilder { b.ev.Type = t; return b }

// End marks the event as a boundary of the given type, e.g. "scene" or
// core.EventTypeExperience (chainable).
func (b *EventBuilder) End(eventType string) *EventBuilder {
	b.ev.Action = core.EventActionEnd
	b.ev.Type = eventType
	return b
}

func (b *EventBuilder) stage() *core.StageCue {
	if b.ev.Stage == nil {
		b.ev.Stage = &core.StageCue{}
	}
	return b.ev.Stage
}

// Backdrop sets the stage backdrop (chainable).
func (b *EventBuilder) Backdrop(bd core.Backdrop) *EventBuilder { b.stage().Backdrop = bd; return b }

// Click requests the continue affordance (chainable).
func (b *EventBuilder) Click() *EventBuilder { b.stage().Click = true; return b }

// StageType sets the stage type (chainable).
func (b *EventBuilder) StageType(t string) *EventBuilder { b.stage().Type = t; return b }

func (b *EventBuilder) character() *core.CharacterCue {
	if b.ev.Character == nil {
		b.ev.Character = &core.CharacterCue{}
	}
	return b.ev.Character
}

// Character references a cast member (chainable).
func (b *EventBuilder) Character(id string) *EventBuilder { b.character().CharacterID = id; return b }

// Direction sets the character's stage direction (chainable).
func (b *EventBuilder) Direction(d core.StageDirection) *EventBuilder {
	b.character().StageDirection = d
	return b
}

// Appear is shorthand for Character(id).Direction(core.DirectionAppear) (chainable).
func (b *EventBuilder) Appear(id string) *EventBuilder {
	return b.Character(id).Direction(core.DirectionAppear)
}

// Disappear is shorthand for Character(id).Direction(core.DirectionDisappear) (chainable).
func (b *EventBuilder) Disappear(id string) *EventBuilder {
	return b.Character(id).Direction(core.DirectionDisappear)
}

// CharacterAnimation sets the character facet's animation (chainable).
func (b *EventBuilder) CharacterAnimation(a core.Animation) *EventBuilder {
	b.character().Animation = &a
	return b
}

// Role sets the role written back onto the cast member (chainable).
func (b *EventBuilder) Role(r string) *EventBuilder { b.character().Role = r; return b }

// Name sets the name written back onto the cast member (chainable).
func (b *EventBuilder) Name(n string) *EventBuilder { b.character().Name = n; return b }

// Dialog sets the spoken line (chainable).
func (b *EventBuilder) Dialog(text string) *EventBuilder {
	if b.ev.Dialog == nil {
		b.ev.Dialog = &core.DialogCue{}
	}
	b.ev.Dialog.Dialog = text
	return b
}

func (b *EventBuilder) input() *core.InputCue {
	if b.ev.Input == nil {
		b.ev.Input = &core.InputCue{}
	}
	return b.ev.Input
}

// Input asks for member input stored under variable (chainable).
func (b *EventBuilder) Input(variable string) *EventBuilder {
	b.input().InputVariableName = variable
	return b
}

// InputType sets the input's type (chainable).
func (b *EventBuilder) InputType(t string) *EventBuilder { b.input().InputType = t; return b }

// Placeholder sets the input's placeholder (chainable).
func (b *EventBuilder) Placeholder(p string) *EventBuilder { b.input().InputPlaceholder = p; return b }

// Complete marks the input as already answered (chainable).
func (b *EventBuilder) Complete() *EventBuilder { b.input().Complete = true; return b }

// Build returns the event.
func (b *EventBuilder) Build() core.Event { return b.ev }
