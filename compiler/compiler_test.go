package compiler

import (
	"testing"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/internal/testutil"
	"github.com/hupe1980/playback/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(bd core.Backdrop) *State {
	exp := testutil.NewExperienceBuilder("x1").
		Cast("c1", core.CharacterNarrative).
		Cast("c2", core.CharacterNarrative).
		Scene("s1", bd).
		Build()
	return &State{Experience: exp, Backdrop: bd}
}

func TestCompileEvent_FixedReaderOrder(t *testing.T) {
	c := New()
	ev := testutil.NewEventBuilder("e1").
		Scene("s1").
		Input("answer").
		Dialog("hello").
		Appear("c1").
		Click().
		Build()

	actions, err := c.CompileEvent(ev, newState(core.BackdropChat))

	require.NoError(t, err)
	require.Len(t, actions, 4)
	assert.Equal(t, core.TypeStage, actions[0].Type)
	assert.Equal(t, core.TypeCharacter, actions[1].Type)
	assert.Equal(t, core.TypeDialog, actions[2].Type)
	assert.Equal(t, core.TypeModerator, actions[3].Type)
}

func TestCompileEvent_EndMarker(t *testing.T) {
	c := New()
	ev := testutil.NewEventBuilder("e9").Scene("s2").End("scene").Build()

	actions, err := c.CompileEvent(ev, newState(core.BackdropChat))

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.True(t, actions[0].IsEnd())
	assert.False(t, actions[0].EndsExperience())
	assert.Equal(t, "s2", actions[0].SceneID)
}

func TestCompileEvent_ExperienceEndMarker(t *testing.T) {
	c := New()
	ev := testutil.NewEventBuilder("e9").End(core.EventTypeExperience).Build()

	actions, err := c.CompileEvent(ev, newState(core.BackdropChat))

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.True(t, actions[0].EndsExperience())
}

func TestStageReader(t *testing.T) {
	r := NewStageReader()

	t.Run("rejects unknown stage type", func(t *testing.T) {
		_, err := r.Read(testutil.NewEventBuilder("e").StageType("video").Build(), newState(core.BackdropChat))
		assert.ErrorIs(t, err, core.ErrUnsupportedStageType)
		assert.Equal(t, core.KindValidation, core.KindOf(err))
	})

	t.Run("script type is accepted", func(t *testing.T) {
		actions, err := r.Read(testutil.NewEventBuilder("e").StageType(core.StageTypeScript).Build(), newState(core.BackdropChat))
		require.NoError(t, err)
		assert.Empty(t, actions)
	})

	t.Run("click halts on the continue affordance", func(t *testing.T) {
		actions, err := r.Read(testutil.NewEventBuilder("e").Click().Build(), newState(core.BackdropChat))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, core.ActionClick, actions[0].Action)
		assert.Equal(t, "continue-button", actions[0].ElementID())
		assert.True(t, actions[0].Dismissable)
		assert.True(t, actions[0].Halt)
	})
}

func TestCharacterReader(t *testing.T) {
	r := NewCharacterReader()

	t.Run("unknown cast member", func(t *testing.T) {
		_, err := r.Read(testutil.NewEventBuilder("e").Appear("ghost").Build(), newState(core.BackdropChat))
		assert.ErrorIs(t, err, core.ErrCharacterNotFound)
	})

	t.Run("appear uses backdrop default animation", func(t *testing.T) {
		actions, err := r.Read(testutil.NewEventBuilder("e").Appear("c1").Build(), newState(core.BackdropFull))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		a := actions[0]
		assert.Equal(t, core.ActionAppear, a.Action)
		assert.Equal(t, "char-c1", a.ElementID())
		assert.False(t, a.Halt)
		assert.False(t, a.Dismissable)
		require.NotNil(t, a.Animation)
		assert.Equal(t, "slide-in", a.Animation.Class)
	})

	t.Run("event animation wins over defaults", func(t *testing.T) {
		ev := testutil.NewEventBuilder("e").Appear("c1").CharacterAnimation(core.Animation{Class: "bounce"}).Build()
		actions, err := r.Read(ev, newState(core.BackdropChat))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, "bounce", actions[0].Animation.Class)
	})

	t.Run("cast animation wins over backdrop default", func(t *testing.T) {
		st := newState(core.BackdropChat)
		c, _ := st.Experience.FindCharacter("c1")
		c.Animation = &core.Animation{Class: "wave"}
		actions, err := r.Read(testutil.NewEventBuilder("e").Appear("c1").Build(), st)
		require.NoError(t, err)
		assert.Equal(t, "wave", actions[0].Animation.Class)
	})

	t.Run("disappear is immediate", func(t *testing.T) {
		actions, err := r.Read(testutil.NewEventBuilder("e").Disappear("c1").Build(), newState(core.BackdropChat))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, core.ActionDisappear, actions[0].Action)
		assert.Nil(t, actions[0].Animation)
	})

	for _, d := range []core.StageDirection{core.DirectionMove, core.DirectionAction, "dance"} {
		t.Run("rejects "+string(d), func(t *testing.T) {
			_, err := r.Read(testutil.NewEventBuilder("e").Character("c1").Direction(d).Build(), newState(core.BackdropChat))
			assert.ErrorIs(t, err, core.ErrUnsupportedStageDirection)
		})
	}

	t.Run("bare speaker reference emits nothing", func(t *testing.T) {
		actions, err := r.Read(testutil.NewEventBuilder("e").Character("c1").Build(), newState(core.BackdropChat))
		require.NoError(t, err)
		assert.Empty(t, actions)
	})

	t.Run("role and name are written back", func(t *testing.T) {
		st := newState(core.BackdropChat)
		ev := testutil.NewEventBuilder("e").Character("c1").Role("guide").Name("Ada").Build()
		_, err := r.Read(ev, st)
		require.NoError(t, err)
		_, err = r.Read(ev, st)
		require.NoError(t, err)

		c, _ := st.Experience.FindCharacter("c1")
		assert.Equal(t, "guide", c.Role)
		assert.Equal(t, "Ada", c.Name)
	})
}

func TestDialogReader(t *testing.T) {
	r := NewDialogReader()

	t.Run("halting dismissable appear", func(t *testing.T) {
		actions, err := r.Read(testutil.NewEventBuilder("e").Character("c1").Dialog("hi").Build(), newState(core.BackdropChat))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		a := actions[0]
		assert.Equal(t, "char-dialog-c1", a.ElementID())
		assert.True(t, a.Halt)
		assert.True(t, a.Dismissable)
		assert.Equal(t, "hi", a.Content.Text)
	})

	t.Run("missing container", func(t *testing.T) {
		st := newState(core.BackdropChat)
		st.Surfaces = render.NewBoard()
		_, err := r.Read(testutil.NewEventBuilder("e").Character("c1").Dialog("hi").Build(), st)
		assert.ErrorIs(t, err, core.ErrDialogContainerMissing)
		assert.Equal(t, core.KindAnimation, core.KindOf(err))
	})

	t.Run("mounted container", func(t *testing.T) {
		st := newState(core.BackdropChat)
		board := render.NewBoard()
		board.MountLane("c1", core.ContainerChatLane)
		st.Surfaces = board
		actions, err := r.Read(testutil.NewEventBuilder("e").Character("c1").Dialog("hi").Build(), st)
		require.NoError(t, err)
		assert.Len(t, actions, 1)
	})

	t.Run("no speaker", func(t *testing.T) {
		_, err := r.Read(testutil.NewEventBuilder("e").Dialog("hi").Build(), newState(core.BackdropChat))
		assert.ErrorIs(t, err, core.ErrDialogContainerMissing)
	})
}

func TestInputReader(t *testing.T) {
	r := NewInputReader()

	t.Run("complete input emits nothing", func(t *testing.T) {
		actions, err := r.Read(testutil.NewEventBuilder("e").Input("name").Complete().Build(), newState(core.BackdropChat))
		require.NoError(t, err)
		assert.Empty(t, actions)
	})

	t.Run("chat backdrop shows the moderator only", func(t *testing.T) {
		ev := testutil.NewEventBuilder("e").Input("name").InputType("text").Placeholder("Your name").Build()
		actions, err := r.Read(ev, newState(core.BackdropChat))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, "moderator-dialog", actions[0].ElementID())
		assert.False(t, actions[0].Halt)
		assert.True(t, actions[0].Dismissable)
		assert.Equal(t, "Your name", actions[0].Content.Placeholder)
	})

	t.Run("full backdrop adds prompt and icon", func(t *testing.T) {
		ev := testutil.NewEventBuilder("e").Input("name").Placeholder("Your name").Build()
		actions, err := r.Read(ev, newState(core.BackdropFull))
		require.NoError(t, err)
		require.Len(t, actions, 3)
		assert.Equal(t, "moderator-prompt", actions[1].ElementID())
		assert.Equal(t, "Your name", actions[1].Content.Text)
		assert.Equal(t, "moderator-icon", actions[2].ElementID())
	})
}

func TestCompileBatch_SortsByOrderStably(t *testing.T) {
	c := New()
	st := newState(core.BackdropFull)
	events := []core.Event{
		testutil.NewEventBuilder("late").Order(2).Appear("c2").Build(),
		testutil.NewEventBuilder("tie-a").Order(1).Appear("c1").Build(),
		testutil.NewEventBuilder("tie-b").Order(1).Disappear("c1").Build(),
	}

	actions, err := c.CompileBatch(events, st)

	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, core.ActionAppear, actions[0].Action)
	assert.Equal(t, "char-c1", actions[0].ElementID())
	assert.Equal(t, core.ActionDisappear, actions[1].Action)
	assert.Equal(t, "char-c2", actions[2].ElementID())
	assert.Equal(t, "late", events[0].ID, "input slice must not be reordered")
}

func TestCompileBatch_FirstErrorAborts(t *testing.T) {
	c := New()
	events := []core.Event{
		testutil.NewEventBuilder("ok").Order(1).Appear("c1").Build(),
		testutil.NewEventBuilder("bad").Order(2).Appear("ghost").Build(),
	}

	actions, err := c.CompileBatch(events, newState(core.BackdropChat))

	assert.Nil(t, actions)
	assert.ErrorIs(t, err, core.ErrCharacterNotFound)
	assert.Contains(t, err.Error(), "bad")
}

func TestCompileEvent_DialogScenario(t *testing.T) {
	c := New()
	st := newState(core.BackdropChat)
	events := []core.Event{
		testutil.NewEventBuilder("e1").Order(1).Scene("s1").Appear("c1").Build(),
		testutil.NewEventBuilder("e2").Order(2).Scene("s1").Character("c1").Dialog("hi").Build(),
	}

	actions, err := c.CompileBatch(events, st)

	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "char-c1", actions[0].ElementID())
	assert.Equal(t, "char-dialog-c1", actions[1].ElementID())
}

func TestNew_CustomReaders(t *testing.T) {
	c := New(func(o *Options) { o.Readers = []Reader{NewDialogReader()} })

	actions, err := c.CompileEvent(testutil.NewEventBuilder("e").Appear("c1").Click().Build(), newState(core.BackdropChat))

	require.NoError(t, err)
	assert.Empty(t, actions)
}
