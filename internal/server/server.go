package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/engine"
	"github.com/hupe1980/playback/logging"
	"github.com/hupe1980/playback/metrics"
	"github.com/hupe1980/playback/registry"
	"github.com/hupe1980/playback/render/wsrender"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures a Server.
type Options struct {
	// AllowedOrigins restricts CORS and websocket origins. Empty allows all.
	AllowedOrigins []string
	// RateLimit caps catalog requests per client IP and RatePeriod. Zero
	// disables limiting.
	RateLimit  uint
	RatePeriod time.Duration
	// MaxMessageSize limits inbound websocket frames.
	MaxMessageSize int64
	// CloseTimeout bounds ending a session after its connection dropped.
	CloseTimeout time.Duration
	// Metrics, when set, is exposed on /metrics and tracks open sessions.
	Metrics *metrics.Collector
	Logger  logging.Logger
}

// Server routes HTTP requests and websocket sessions to an engine.
type Server struct {
	engine   *engine.Engine
	opts     Options
	logger   logging.Logger
	upgrader websocket.Upgrader
	router   *gin.Engine

	ctx    context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup
}

// New creates a server for eng.
func New(eng *engine.Engine, optFns ...func(o *Options)) *Server {
	opts := Options{
		RatePeriod:     time.Minute,
		MaxMessageSize: 64 * 1024,
		CloseTimeout:   5 * time.Second,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		engine: eng,
		opts:   opts,
		logger: opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Close disconnects every websocket, waits for their sessions to end and
// then ends whatever the engine still tracks.
func (s *Server) Close(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.engine.Shutdown(ctx)
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(s.opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", s.health)
	if s.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	catalog := router.Group("/experiences")
	if s.opts.RateLimit > 0 {
		store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  s.opts.RatePeriod,
			Limit: s.opts.RateLimit,
		})
		catalog.Use(ratelimit.RateLimiter(store, &ratelimit.Options{
			ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
				s.logger.Warn("server.ratelimit.exceeded", "client", c.ClientIP(), "path", c.Request.URL.Path)
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, retry in " + time.Until(info.ResetTime).Round(time.Second).String()})
			},
			KeyFunc: func(c *gin.Context) string { return c.ClientIP() },
		}))
	}
	catalog.GET("", s.listExperiences)

	router.GET("/ws", s.serveWS)
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("server.request.done",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(started),
		)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.engine.Sessions()})
}

func (s *Server) listExperiences(c *gin.Context) {
	if err := s.engine.LoadCatalog(c.Request.Context()); err != nil {
		s.logger.Warn("server.catalog.unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	scope := registry.ParseScope(c.Query("scope"))
	c.JSON(http.StatusOK, gin.H{"experiences": s.engine.Registry().List(scope)})
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("server.ws.upgrade_failed", "error", err)
		return
	}

	s.conns.Add(1)
	defer s.conns.Done()

	r := wsrender.New(conn, func(o *wsrender.Options) {
		o.MaxMessageSize = s.opts.MaxMessageSize
		o.Logger = s.logger
	})
	sess := s.engine.Open(r)
	logger := logging.With(s.logger, "session", sess.ID())
	logger.Info("server.ws.connected", "remote", c.ClientIP())
	if s.opts.Metrics != nil {
		s.opts.Metrics.SessionOpened()
		defer s.opts.Metrics.SessionClosed()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	served := make(chan struct{})
	go func() {
		defer close(served)
		s.serveSession(ctx, r, sess, logger)
	}()

	if err := r.Run(ctx); err != nil {
		logger.Warn("server.ws.closed", "error", err)
	}
	cancel()
	<-served

	closeCtx, closeCancel := context.WithTimeout(context.Background(), s.opts.CloseTimeout)
	defer closeCancel()
	if err := s.engine.Close(closeCtx, sess.ID()); err != nil {
		logger.Warn("server.session.close_failed", "error", err)
	}
	logger.Info("server.ws.disconnected")
}

// serveSession applies session commands in arrival order. End bypasses the
// queue so that it can interrupt a Play in flight.
func (s *Server) serveSession(ctx context.Context, r *wsrender.Renderer, sess *engine.Session, logger logging.Logger) {
	queue := make(chan Request, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for req := range queue {
			s.apply(ctx, r, sess, req, logger)
		}
	}()

	for msg := range r.Control() {
		var req Request
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.reply(ctx, r, Reply{Type: ReplyError, Message: "invalid request: " + err.Error()})
			continue
		}
		if req.Type == OpEnd {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.apply(ctx, r, sess, req, logger)
			}()
			continue
		}
		select {
		case queue <- req:
		default:
			s.reply(ctx, r, Reply{Type: ReplyError, Operation: req.Type, Message: "session busy"})
		}
	}
	close(queue)
	wg.Wait()
}

func (s *Server) apply(ctx context.Context, r *wsrender.Renderer, sess *engine.Session, req Request, logger logging.Logger) {
	var err error
	switch req.Type {
	case OpStart:
		if err = s.engine.LoadCatalog(ctx); err == nil {
			err = sess.Start(ctx, req.ExperienceID)
		}
		if err == nil {
			if exp := sess.Experience(); exp != nil && exp.Autoplay {
				err = sess.Play(ctx, nil)
			}
		}
	case OpPlay:
		err = sess.Play(ctx, req.Input)
	case OpSubmit:
		sess.SubmitInput(ctx)
	case OpSkip:
		err = sess.Skip(ctx, req.SceneID)
	case OpEnd:
		err = sess.End(ctx)
	default:
		err = fmt.Errorf("unknown request type %q", req.Type)
	}

	if err != nil {
		logger.Debug("server.request.failed", "operation", req.Type, "error", err)
		s.reply(ctx, r, Reply{
			Type:      ReplyError,
			Operation: req.Type,
			Session:   sess.ID(),
			Kind:      string(core.KindOf(err)),
			Message:   err.Error(),
		})
		return
	}
	s.reply(ctx, r, Reply{Type: ReplyState, Operation: req.Type, Session: sess.ID(), State: string(sess.State())})
}

func (s *Server) reply(ctx context.Context, r *wsrender.Renderer, reply Reply) {
	if err := r.SendJSON(ctx, reply); err != nil {
		s.logger.Debug("server.reply.dropped", "type", reply.Type, "error", err)
	}
}
