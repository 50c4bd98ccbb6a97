package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/pkg/logger"
)

// Options controls the optional parts of the middleware chain.
type Options struct {
	Development bool
	EnableCORS  bool
	// RateLimiter may be nil.
	RateLimiter *middleware.RateLimiter
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	systemHandler *handler.SystemHandler,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	if opts.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logger.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log, opts.Development))
	if opts.EnableCORS {
		router.Use(cors.Default())
	}
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Handler())
	}

	router.NoRoute(middleware.NotFound())

	router.GET("/", systemHandler.Welcome)
	router.GET("/health", systemHandler.Health)
	router.GET("/ready", systemHandler.Ready)

	users := router.Group("/api/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}
