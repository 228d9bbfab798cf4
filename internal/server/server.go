// Package server exposes the mediation layer to UI surfaces over
// HTTP: cached entity reads, mutations, the live session state, and a
// tick stream for the countdown display.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
	"github.com/Andriiklymiuk/ung-sub008/internal/config"
	"github.com/Andriiklymiuk/ung-sub008/internal/observability/logger"
	"github.com/Andriiklymiuk/ung-sub008/internal/observability/metrics"
	"github.com/Andriiklymiuk/ung-sub008/internal/session"
	"github.com/Andriiklymiuk/ung-sub008/internal/snapshot"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// Server holds the handler dependencies.
type Server struct {
	cfg       config.Config
	svc       domain.Service
	monitor   *session.Monitor
	snapshots *snapshot.Store
	log       *zap.Logger
	limiter   *rateLimiter
}

type Params struct {
	fx.In

	Config    config.Config
	Service   domain.Service
	Monitor   *session.Monitor
	Snapshots *snapshot.Store `optional:"true"`
	Clock     clock.Clock
	Log       *zap.Logger
}

func NewServer(p Params) *Server {
	limit := p.Config.HTTP.MutationLimit
	if limit <= 0 {
		limit = 30
	}
	return &Server{
		cfg:       p.Config,
		svc:       p.Service,
		monitor:   p.Monitor,
		snapshots: p.Snapshots,
		log:       p.Log.Named("server"),
		limiter:   newRateLimiter(limit, time.Minute, p.Clock),
	}
}

// NewEngine builds the gin engine with the shared middleware stack.
func NewEngine(cfg config.Config, log *zap.Logger) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/api/session/stream"},
	}))

	httpMetrics, err := metrics.NewHTTPMetrics(metrics.Config{
		ServiceName: "ungd",
		Environment: cfg.Environment,
	})
	if err != nil {
		return nil, err
	}
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine, nil
}

// RegisterRoutes attaches every UI-facing endpoint.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.GET("/entities/:type", s.ListEntities)
	api.GET("/views/:view", s.View)
	api.POST("/refresh", s.Refresh)
	api.POST("/mutations", s.Mutate)
	api.GET("/session/active", s.ActiveSession)
	api.GET("/session/stream", s.StreamTicks)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server, engine *gin.Engine) {
		s.RegisterRoutes(engine)
	}),
	fx.Invoke(RunHTTP),
)
