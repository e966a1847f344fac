package playback

import (
	"context"
	"testing"

	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/engine"
	"github.com/hupe1980/playback/internal/testutil"
	"github.com/hupe1980/playback/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const experienceID = "5f1c3d2a-9b7e-4c1d-8a6f-2e3b4c5d6e7f"

func newData() *testutil.DataService {
	b := testutil.NewExperienceBuilder(experienceID).
		Cast("c1", core.CharacterNarrative).
		Scene("s1", core.BackdropChat)
	return testutil.NewDataService().
		WithExperiences(b.Summary(), testutil.NewExperienceBuilder("sys").System().Summary()).
		WithManifest(b.Manifest()).
		QueueEvents(testutil.NewEventBuilder("e1").Order(1).Scene("s1").Appear("c1").Build())
}

func TestNew_RequiresDataService(t *testing.T) {
	_, err := New()

	assert.ErrorIs(t, err, ErrNoDataService)
}

func TestNew_BuildsHTTPClientFromURL(t *testing.T) {
	p, err := New(func(o *Options) { o.DataServiceURL = "http://data.local" })

	require.NoError(t, err)
	assert.NotNil(t, p.Engine())
	assert.NotNil(t, p.Metrics())
}

func TestNew_DisableMetrics(t *testing.T) {
	p, err := New(func(o *Options) {
		o.DataService = newData()
		o.DisableMetrics = true
	})

	require.NoError(t, err)
	assert.Nil(t, p.Metrics())
}

func TestPlayer_Catalog(t *testing.T) {
	p, err := New(func(o *Options) { o.DataService = newData() })
	require.NoError(t, err)

	all, err := p.Catalog(context.Background(), registry.ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	system, err := p.Catalog(context.Background(), registry.ScopeSystem)
	require.NoError(t, err)
	require.Len(t, system, 1)
	assert.Equal(t, "sys", system[0].ID)
}

func TestPlayer_LaunchAndShutdown(t *testing.T) {
	data := newData()
	var ended int
	p, err := New(func(o *Options) {
		o.DataService = data
		o.Callbacks = []engine.Callback{
			engine.NewFunctionCallback(engine.CallbackOnEnd, func(context.Context, *engine.CallbackContext) error {
				ended++
				return nil
			}),
		}
	})
	require.NoError(t, err)

	s, err := p.Launch(context.Background(), testutil.NewRenderer(), experienceID)

	require.NoError(t, err)
	assert.Equal(t, engine.StateWaitingForInput, s.State())
	assert.Equal(t, 1, p.Engine().Sessions())

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, 0, p.Engine().Sessions())
	assert.Equal(t, 1, ended)
	assert.Equal(t, 1, data.Count("end"))
}

func TestPlayer_LaunchUnknownExperience(t *testing.T) {
	p, err := New(func(o *Options) { o.DataService = newData() })
	require.NoError(t, err)

	s, err := p.Launch(context.Background(), testutil.NewRenderer(), "00000000-0000-4000-8000-000000000000")

	require.ErrorIs(t, err, core.ErrNotFound)
	require.NotNil(t, s)
	assert.Equal(t, engine.StateIdle, s.State())
	assert.NoError(t, p.Close(context.Background(), s.ID()))
}
