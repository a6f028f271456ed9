package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/handlers"
	"github.com/monocle-dev/timetrack/internal/middleware"
	"github.com/monocle-dev/timetrack/internal/observability/metrics"
)

// Limiters are the rate limiters a router was built with; callers stop them on shutdown.
type Limiters struct {
	General *middleware.RateLimiter
	Auth    *middleware.RateLimiter
}

func (l Limiters) Stop() {
	l.General.Stop()
	l.Auth.Stop()
}

func NewRouter(cfg *config.Config, log *slog.Logger) (*gin.Engine, Limiters) {
	handlers.Configure(cfg)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.GinMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiters := Limiters{
		General: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Auth:    middleware.NewRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst),
	}

	r.GET("/health", handlers.HealthCheck)
	r.GET("/ready", handlers.Ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Token and registration endpoints never read the Authorization header.
	public := r.Group("/", limiters.General.LimitMiddleware(), limiters.Auth.LimitMiddleware())
	{
		public.POST("/token/", handlers.ObtainToken)
		public.POST("/token/refresh/", handlers.RefreshToken)
		public.POST("/token/blacklist/", handlers.BlacklistToken)
		public.POST("/users/", handlers.RegisterUser)
	}

	api := r.Group("/", limiters.General.LimitMiddleware(), middleware.Authenticate())
	{
		api.GET("/ws/activity", middleware.RequireAuth(), handlers.ActivityFeed)

		api.GET("/users/", middleware.RequireStaff(), handlers.ListUsers)
		api.GET("/users/me/", middleware.RequireAuth(), handlers.Me)

		user := api.Group("/users/:user_id", middleware.RequireAuth())
		{
			user.GET("/", handlers.GetUser)
			user.PUT("/", handlers.UpdateUser)
			user.PATCH("/", handlers.UpdateUser)
			user.DELETE("/", handlers.DeleteUser)

			scoped := user.Group("", middleware.RequireUserScope("user_id"))
			scoped.GET("/contracts/", handlers.ListUserContracts)
			scoped.POST("/contracts/", handlers.CreateUserContract)
			scoped.GET("/logs/", handlers.ListUserTimelogs)
			scoped.POST("/logs/", handlers.CreateUserTimelog)
		}

		projects := api.Group("/projects", middleware.RequireProjectAccess())
		{
			projects.GET("/", handlers.ListProjects)
			projects.POST("/", handlers.CreateProject)
			projects.GET("/:project_id/", handlers.GetProject)
			projects.PUT("/:project_id/", handlers.UpdateProject)
			projects.PATCH("/:project_id/", handlers.UpdateProject)
			projects.DELETE("/:project_id/", handlers.DeleteProject)
		}

		contracts := api.Group("/contracts", middleware.RequireAuth())
		{
			contracts.GET("/", handlers.ListContracts)
			contracts.GET("/:contract_id/", handlers.GetContract)
			contracts.PUT("/:contract_id/", handlers.UpdateContract)
			contracts.PATCH("/:contract_id/", handlers.UpdateContract)
			contracts.DELETE("/:contract_id/", handlers.DeleteContract)
			contracts.GET("/:contract_id/logs/", handlers.ListContractTimelogs)
		}

		logs := api.Group("/logs", middleware.RequireAuth())
		{
			logs.GET("/", handlers.ListTimelogs)
			logs.GET("/:timelog_id/", handlers.GetTimelog)
			logs.PUT("/:timelog_id/", handlers.UpdateTimelog)
			logs.PATCH("/:timelog_id/", handlers.UpdateTimelog)
			logs.DELETE("/:timelog_id/", handlers.DeleteTimelog)
		}
	}

	return r, limiters
}
