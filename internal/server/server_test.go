package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/engine"
	"github.com/hupe1980/playback/internal/testutil"
	"github.com/hupe1980/playback/metrics"
	"github.com/hupe1980/playback/render/wsrender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const experienceID = "5f1c3d2a-9b7e-4c1d-8a6f-2e3b4c5d6e7f"

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	engine  *engine.Engine
	data    *testutil.DataService
	metrics *metrics.Collector
	server  *Server
}

func newFixture(t *testing.T, optFns ...func(o *Options)) *fixture {
	t.Helper()
	intro := testutil.NewExperienceBuilder(experienceID).
		Title("Intro").
		Cast("c1", core.CharacterNarrative).
		Scene("s1", core.BackdropChat)
	onboarding := testutil.NewExperienceBuilder("0b3c8e9a-1d2f-4a5b-9c6d-7e8f9a0b1c2d").System()

	ds := testutil.NewDataService().
		WithExperiences(intro.Summary(), onboarding.Summary()).
		WithManifest(intro.Manifest()).
		QueueEvents(
			testutil.NewEventBuilder("e1").Order(1).Scene("s1").Appear("c1").Build(),
			testutil.NewEventBuilder("e2").Order(2).Scene("s1").Character("c1").Dialog("hi").Build(),
		)
	m := metrics.New()
	eng := engine.New(ds)
	for _, cb := range m.Callbacks() {
		eng.RegisterCallback(cb)
	}
	opts := append([]func(o *Options){func(o *Options) { o.Metrics = m }}, optFns...)
	srv := New(eng, opts...)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })
	return &fixture{engine: eng, data: ds, metrics: m, server: srv}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, rec.Body.String())
}

func TestServer_Experiences(t *testing.T) {
	f := newFixture(t)

	all := f.get(t, "/experiences")
	require.Equal(t, http.StatusOK, all.Code)
	assert.Contains(t, all.Body.String(), experienceID)

	system := f.get(t, "/experiences?scope=system")
	require.Equal(t, http.StatusOK, system.Code)
	assert.NotContains(t, system.Body.String(), experienceID)
	assert.Contains(t, system.Body.String(), "0b3c8e9a-1d2f-4a5b-9c6d-7e8f9a0b1c2d")

	assert.Equal(t, 1, f.data.Count("experiences"))
}

func TestServer_ExperiencesUnavailable(t *testing.T) {
	f := newFixture(t)
	f.data.WithCatalog(core.Catalog{Status: core.Failed("down")})

	rec := f.get(t, "/experiences")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_RateLimit(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.RateLimit = 1
		o.RatePeriod = time.Hour
	})

	assert.Equal(t, http.StatusOK, f.get(t, "/experiences").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.get(t, "/experiences").Code)
	assert.Equal(t, http.StatusOK, f.get(t, "/healthz").Code)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "playback_active_sessions")
}

func TestServer_CORS(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.AllowedOrigins = []string{"https://app.example"} })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

type client struct {
	conn *websocket.Conn
}

func dial(t *testing.T, f *fixture, header http.Header) (*client, *http.Response, error) {
	t.Helper()
	ts := httptest.NewServer(f.server.Handler())
	t.Cleanup(ts.Close)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", header)
	if err != nil {
		return nil, resp, err
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &client{conn: conn}, resp, nil
}

func (c *client) send(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, c.conn.WriteJSON(v))
}

// until reads messages, acknowledging every animation and opening every
// continue gate, until match accepts one.
func (c *client) until(t *testing.T, match func(msg map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, c.conn.SetReadDeadline(deadline))
		var msg map[string]any
		require.NoError(t, c.conn.ReadJSON(&msg))
		switch msg["type"] {
		case wsrender.CommandAnimate:
			c.send(t, map[string]any{"type": "transition_end", "id": msg["id"]})
		case wsrender.CommandAwaitContinue:
			c.send(t, map[string]any{"type": "continue"})
		}
		if match(msg) {
			return msg
		}
	}
}

func reply(op string) func(map[string]any) bool {
	return func(msg map[string]any) bool {
		return (msg["type"] == ReplyState || msg["type"] == ReplyError) && msg["operation"] == op
	}
}

func TestServer_WebsocketSession(t *testing.T) {
	f := newFixture(t)
	c, _, err := dial(t, f, nil)
	require.NoError(t, err)

	c.send(t, Request{Type: OpStart, ExperienceID: experienceID})
	welcome := c.until(t, func(msg map[string]any) bool { return msg["type"] == "welcome" })
	assert.Equal(t, "Intro", welcome["experience"].(map[string]any)["title"])
	started := c.until(t, reply(OpStart))
	assert.Equal(t, string(engine.StateWelcomeDisplayed), started["state"])

	c.send(t, Request{Type: OpPlay})
	played := c.until(t, reply(OpPlay))
	assert.Equal(t, ReplyState, played["type"], played["message"])
	assert.Equal(t, string(engine.StateWaitingForInput), played["state"])

	c.send(t, Request{Type: OpSkip, SceneID: "s1"})
	skipped := c.until(t, reply(OpSkip))
	assert.Equal(t, ReplyError, skipped["type"])
	assert.Equal(t, string(core.KindValidation), skipped["kind"])

	c.send(t, Request{Type: OpEnd})
	ended := c.until(t, reply(OpEnd))
	assert.Equal(t, string(engine.StateEnded), ended["state"])
	assert.Equal(t, 1, f.data.Count("end"))
}

func TestServer_WebsocketRejectsUnknownRequests(t *testing.T) {
	f := newFixture(t)
	c, _, err := dial(t, f, nil)
	require.NoError(t, err)

	c.send(t, Request{Type: "rewind"})
	msg := c.until(t, reply("rewind"))

	assert.Equal(t, ReplyError, msg["type"])
	assert.Contains(t, msg["message"], "unknown request type")
}

func TestServer_WebsocketTracksSessions(t *testing.T) {
	f := newFixture(t)
	c, _, err := dial(t, f, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return f.engine.Sessions() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Eventually(t, func() bool { return f.engine.Sessions() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_WebsocketOriginCheck(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.AllowedOrigins = []string{"https://app.example"} })

	_, resp, err := dial(t, f, http.Header{"Origin": []string{"https://evil.example"}})

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
