package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meblomat/meblomat/internal/auth"
	"github.com/meblomat/meblomat/internal/cache"
	"github.com/meblomat/meblomat/internal/config"
	"github.com/meblomat/meblomat/internal/dashboard"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/http/handlers"
	"github.com/meblomat/meblomat/internal/http/middlewares"
	"github.com/meblomat/meblomat/internal/observability"
	"github.com/meblomat/meblomat/internal/queue/redisclient"
	"github.com/meblomat/meblomat/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Deps carries everything the router wires together. The redis client is
// optional; without it the rate limiter falls back to its in-process store.
type Deps struct {
	Cfg          config.Config
	Log          *slog.Logger
	Pool         *pgxpool.Pool
	Prom         *observability.Prom
	PromRegistry *prometheus.Registry
	Redis        *redisclient.Client
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("meblomat-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware([]string{d.Cfg.SiteURL}))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// repositories
	usersRepo := postgres.NewUsersRepo(d.Pool, d.Prom)
	sessionsRepo := postgres.NewSessionsRepo(d.Pool, d.Prom)
	recordsRepo := postgres.NewRecordsRepo(d.Pool, d.Prom)
	jobsRepo := postgres.NewJobsRepo(d.Pool, d.Prom)

	sessions := auth.NewManager(sessionsRepo, auth.Options{
		CookieName:           d.Cfg.SessionCookieName,
		TTL:                  d.Cfg.SessionTTL,
		Secure:               d.Cfg.SessionCookieSecure,
		SingleSessionPerUser: d.Cfg.SingleSessionPerUser,
	})

	dashboardSvc := dashboard.NewService(recordsRepo, d.Log, d.Prom)

	// handlers
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	healthHandler := handlers.NewHealthHandler(ping)
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, sessions)
	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc)
	ordersHandler := handlers.NewOrdersHandler(recordsRepo, cache.New(5*time.Second), d.Log)
	invitesHandler := handlers.NewInvitesHandler(jobsRepo)

	authmw := middlewares.NewAuthMiddleware(sessions)

	var counterStore middlewares.CounterStore

	if d.Redis != nil {
		counterStore = d.Redis
	}

	authLimiter := middlewares.NewRateLimiter(counterStore, d.Cfg.AuthRateLimit, time.Minute)

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	if d.PromRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.PromRegistry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())
	api.Use(authmw.Attach())

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Register)
	authGroup.POST("/login", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authmw.RequireAuth(), authHandler.Me)

	api.GET("/dashboard", authmw.RequireAuth(), dashboardHandler.Get)
	api.GET("/orders", authmw.RequireAuth(), ordersHandler.List)
	api.POST("/invites",
		authmw.RequireAuth(),
		authmw.RequireRole(user.RoleCarpenter, user.RoleAdmin),
		authLimiter.Middleware(middlewares.KeyByUserOrIP),
		invitesHandler.Create,
	)

	return r
}
