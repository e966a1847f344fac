package stage

import (
	"context"
	"testing"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func experience() *core.Experience {
	return testutil.NewExperienceBuilder("x1").
		Cast("member", core.CharacterMember).
		Cast("avatar", core.CharacterAvatar).
		Cast("guide", core.CharacterNarrative).
		Build()
}

func TestManager_Prepare_Chat(t *testing.T) {
	r := testutil.NewRenderer()
	m := New(r)

	changed, err := m.Prepare(context.Background(), experience(), core.BackdropChat)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, core.BackdropChat, m.State())
	assert.Equal(t, []string{
		"mount avatar chat_lane",
		"mount guide chat_lane",
		"reveal chat sidebar=false",
	}, r.Calls())
	_, ok := r.Lookup(core.LaneTarget("member"))
	assert.False(t, ok)
}

func TestManager_Prepare_Interface(t *testing.T) {
	r := testutil.NewRenderer()
	m := New(r)

	_, err := m.Prepare(context.Background(), experience(), core.BackdropInterface)

	require.NoError(t, err)
	assert.Contains(t, r.Calls(), "reveal chat sidebar=true")
}

func TestManager_Prepare_Full(t *testing.T) {
	r := testutil.NewRenderer()
	m := New(r)

	_, err := m.Prepare(context.Background(), experience(), core.BackdropFull)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"mount guide scene_stage",
		"hide backstage",
		"reveal mainstage",
	}, r.Calls())
}

func TestManager_Prepare_Idempotent(t *testing.T) {
	r := testutil.NewRenderer()
	m := New(r)
	exp := experience()

	_, err := m.Prepare(context.Background(), exp, core.BackdropChat)
	require.NoError(t, err)
	calls := len(r.Calls())

	changed, err := m.Prepare(context.Background(), exp, core.BackdropChat)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, r.Calls(), calls)
}

func TestManager_Prepare_SwitchMovesLanes(t *testing.T) {
	r := testutil.NewRenderer()
	m := New(r)
	exp := experience()

	_, err := m.Prepare(context.Background(), exp, core.BackdropChat)
	require.NoError(t, err)
	_, err = m.Prepare(context.Background(), exp, core.BackdropFull)
	require.NoError(t, err)

	container, ok := r.Board().Container(core.LaneTarget("guide"))
	require.True(t, ok)
	assert.Equal(t, core.ContainerSceneStage, container)
	_, ok = r.Lookup(core.LaneTarget("avatar"))
	assert.False(t, ok, "avatar has no lane on the full backdrop")
}

func TestManager_InvalidateAndReset(t *testing.T) {
	r := testutil.NewRenderer()
	m := New(r)
	exp := experience()

	_, err := m.Prepare(context.Background(), exp, core.BackdropChat)
	require.NoError(t, err)

	m.Invalidate()
	changed, err := m.Prepare(context.Background(), exp, core.BackdropChat)
	require.NoError(t, err)
	assert.True(t, changed)

	m.Reset()
	assert.Equal(t, Uninitialized, m.State())
}

func TestManager_Prepare_InvalidBackdropFallsBackToChat(t *testing.T) {
	m := New(testutil.NewRenderer())

	_, err := m.Prepare(context.Background(), experience(), core.Backdrop("cinema"))

	require.NoError(t, err)
	assert.Equal(t, core.BackdropChat, m.State())
}

func TestCastFor(t *testing.T) {
	exp := experience()

	assert.Len(t, CastFor(exp, core.BackdropChat), 2)
	assert.Len(t, CastFor(exp, core.BackdropFull), 1)
}
