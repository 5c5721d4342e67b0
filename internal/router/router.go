package router

import (
	"github.com/gin-gonic/gin"

	"workwise/internal/handler"
	"workwise/internal/middleware"
	"workwise/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	docH *handler.DocumentHandler,
	analysisH *handler.AnalysisHandler,
	gostH *handler.GOSTHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Document routes
	docs := protected.Group("/documents")
	docs.POST("", docH.Upload)
	docs.GET("", docH.List)
	docs.GET("/:id", docH.Get)
	docs.GET("/:id/download", docH.Download)
	docs.DELETE("/:id", docH.Delete)
	docs.POST("/:id/analyses", analysisH.Request)
	docs.GET("/:id/analyses", analysisH.ListByDocument)

	// Analysis routes
	analyses := protected.Group("/analyses")
	analyses.GET("/:id", analysisH.Get)
	analyses.GET("/:id/export", analysisH.Export)

	// GOST standard catalog
	protected.GET("/gosts", gostH.List)

	return r
}
