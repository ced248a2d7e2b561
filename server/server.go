package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/membuf"
)

// Defaults for Config.
const (
	DefaultAddr         = ":8080"
	DefaultSessionTTL   = 5 * time.Minute
	DefaultMaxReadBytes = 1 << 20
	DefaultBodyLimit    = "64M"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	Addr string
	// SessionTTL is how long an idle session keeps its handle open.
	SessionTTL time.Duration
	// MaxReadBytes bounds the len parameter of a read.
	MaxReadBytes int
	// BodyLimit bounds request bodies, e.g. "64M".
	BodyLimit string
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.MaxReadBytes <= 0 {
		c.MaxReadBytes = DefaultMaxReadBytes
	}
	if c.BodyLimit == "" {
		c.BodyLimit = DefaultBodyLimit
	}
	return c
}

// Server serves a pool over HTTP.
type Server struct {
	cfg      Config
	pool     *membuf.Pool
	echo     *echo.Echo
	sessions *sessionStore
	logger   *membuf.Logger
}

// New creates a server for pool. gatherer backs GET /metrics; nil disables
// the route. A nil logger discards output.
func New(pool *membuf.Pool, cfg Config, gatherer prometheus.Gatherer, logger *membuf.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = membuf.NoopLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		cfg:      cfg,
		pool:     pool,
		echo:     e,
		sessions: newSessionStore(cfg.SessionTTL, cfg.SessionTTL/2),
		logger:   logger,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(s.requestLogger())

	s.routes(gatherer)
	return s
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	sys := s.echo.Group("/sys/membuf")
	sys.GET("/count", s.getCount)
	sys.PUT("/count", s.putCount)
	sys.GET("/default_size", s.getDefaultSize)
	sys.GET("/stats", s.getStats)
	sys.GET("/:id/size", s.getSize)
	sys.PUT("/:id/size", s.putSize)

	s.echo.POST("/dev/:id/open", s.openSession)

	sessions := s.echo.Group("/sessions")
	sessions.GET("/:sid", s.readSession)
	sessions.PUT("/:sid", s.writeSession)
	sessions.POST("/:sid/seek", s.seekSession)
	sessions.DELETE("/:sid", s.closeSession)

	if gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			s.logger.LogAttrs(c.Request().Context(), slog.LevelDebug, "request", attrs...)
			return nil
		},
	})
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int { return s.sessions.count() }

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// is done. It then stops the session janitor and closes all session handles.
// Every Server must be shut down, started or not.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.sessions.closeAll()
	s.logger.Info("http server stopped", "error", err)
	return err
}
