package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/handler"
	"github.com/stemsi/srms/internal/metrics"
	"github.com/stemsi/srms/internal/middleware"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/response"
	"github.com/stemsi/srms/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Info      *handler.InfoHandler
	Auth      *handler.AuthHandler
	Student   *handler.StudentHandler
	Course    *handler.CourseHandler
	Result    *handler.ResultHandler
	Dashboard *handler.DashboardHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work owned by the router, such as rate limiter
// cleanup.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.HandleMethodNotAllowed = true

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Prometheus())

	compression := middleware.DefaultCompression
	compression.MinLength = cfg.BrotliMinLength
	router.Use(middleware.Brotli(compression))

	router.NoRoute(handlers.Info.NotFound)
	router.NoMethod(handlers.Info.MethodNotAllowed)

	// ─── 0. Service info (No Auth) ─────────────────────────────────────
	router.GET("/", middleware.CacheControl(300), handlers.Info.Root)
	router.GET("/health", handlers.Info.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := []gin.HandlerFunc{
		middleware.RequireAuth(authService),
		middleware.CheckSession(authService),
	}
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	selfOrAdmin := middleware.RequireSelfOrAdmin("id")

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(ctx, cfg.LoginRatePerMinute)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)

		auth.GET("/verify", append(requireAuth, handlers.Auth.Verify)...)
		auth.POST("/logout", append(requireAuth, handlers.Auth.Logout)...)
	}

	// ─── 2. Students ───────────────────────────────────────────────────
	students := api.Group("/students")
	students.Use(requireAuth...)
	{
		students.GET("", adminOnly, handlers.Student.List)
		students.GET("/dropdown", adminOnly, handlers.Student.Dropdown)
		students.POST("", adminOnly, handlers.Student.Create)
		students.GET("/results/:id", selfOrAdmin, handlers.Student.Results)
		students.GET("/statistics/:id", selfOrAdmin, handlers.Student.Statistics)
		students.GET("/:id", selfOrAdmin, handlers.Student.Get)
		students.PUT("/:id", selfOrAdmin, handlers.Student.Update)
		students.DELETE("/:id", adminOnly, handlers.Student.Delete)
		students.POST("/:id/approve", adminOnly, handlers.Student.Approve)
	}

	// ─── 3. Courses ────────────────────────────────────────────────────
	courses := api.Group("/courses")
	courses.Use(requireAuth...)
	{
		courses.GET("", handlers.Course.List)
		courses.GET("/dropdown", handlers.Course.Dropdown)
		courses.GET("/statistics/:id", adminOnly, handlers.Course.Statistics)
		courses.GET("/:id", handlers.Course.Get)
		courses.POST("", adminOnly, handlers.Course.Create)
		courses.PUT("/:id", adminOnly, handlers.Course.Update)
		courses.DELETE("/:id", adminOnly, handlers.Course.Delete)
	}

	// ─── 4. Results ────────────────────────────────────────────────────
	results := api.Group("/results")
	results.Use(requireAuth...)
	{
		results.GET("", adminOnly, handlers.Result.List)
		results.GET("/dashboard", adminOnly, handlers.Dashboard.Stats)
		results.GET("/student", middleware.RequireRole(model.RoleStudent), handlers.Result.Mine)
		results.POST("/bulk", adminOnly, handlers.Result.Bulk)
		results.GET("/:id", handlers.Result.Get)
		results.POST("", adminOnly, handlers.Result.Create)
		results.PUT("/:id", adminOnly, handlers.Result.Update)
		results.DELETE("/:id", adminOnly, handlers.Result.Delete)
	}

	// ─── 5. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/results/stream", handlers.WS.ResultStream)
	}

	return router
}
