package http

import (
	"log/slog"

	"net/http"

	"github.com/codefreela/userhub/internal/cache"
	"github.com/codefreela/userhub/internal/config"
	"github.com/codefreela/userhub/internal/http/handlers"
	"github.com/codefreela/userhub/internal/http/middlewares"
	"github.com/codefreela/userhub/internal/observability"
	"github.com/codefreela/userhub/internal/redisclient"
	"github.com/codefreela/userhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router wires together; optional fields
// may be nil and their middleware/route is skipped.
type Deps struct {
	Cfg       config.Config
	Log       *slog.Logger
	Users     *service.Users
	Ping      func() error
	Registry  *prometheus.Registry
	Prom      *observability.Prom
	Redis     *redisclient.Client
	ListCache *cache.Cache
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware, outermost first

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if d.Cfg.TracingEnabled {
		r.Use(otelgin.Middleware("userhub"))
	}

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// shared window via redis when configured, else per-process
	if d.Cfg.RateLimit > 0 {
		if d.Redis != nil {
			r.Use(middlewares.NewRedisRateLimiter(d.Redis, d.Cfg.RateLimit, d.Cfg.RateLimitWindow).Middleware())
		} else {
			r.Use(middlewares.NewRateLimiter(d.Cfg.RateLimit, d.Cfg.RateLimitWindow).Middleware())
		}
	}

	// health + metrics

	health := handlers.NewHealthHandler(d.Ping)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// users resource

	usersHandler := handlers.NewUsersHandler(d.Users, !d.Cfg.IsProd())

	if d.ListCache != nil {
		usersHandler = usersHandler.WithCache(d.ListCache)
	}

	api := r.Group("/api")
	{
		api.GET("/users", usersHandler.List)
		api.POST("/users", usersHandler.Create)
		api.GET("/users/:id", usersHandler.GetByID)
		api.PATCH("/users/:id", usersHandler.Update)
		api.DELETE("/users/:id", usersHandler.Delete)
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}
