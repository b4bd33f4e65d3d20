// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/container"
	"github.com/pulsekit/pulse-go/internal/presentation/http/handlers"
	"github.com/pulsekit/pulse-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.Logger, container.PerfTracker)
	sessionHandlers := handlers.NewSessionHandlers(container.SessionService, container.CaptureService, container.Logger, container.PerfTracker)
	eventHandlers := handlers.NewEventHandlers(container.CaptureService, container.Logger, container.PerfTracker)
	engagementHandlers := handlers.NewEngagementHandlers(container.EngagementService, container.TrendService, container.Logger, container.PerfTracker)
	recommendationHandlers := handlers.NewRecommendationHandlers(
		container.RecommendationService,
		container.FeedbackService,
		container.PersonalizationService,
		container.Logger,
		container.PerfTracker,
	)
	catalogHandlers := handlers.NewCatalogHandlers(container.PersonalizationService, container.Logger)
	metricsHandlers := handlers.NewMetricsHandlers(
		container.DeliveryService,
		container.CaptureService,
		container.Broadcaster,
		container.Logger,
		container.PerfTracker,
	)
	reengagementHandlers := handlers.NewReengagementHandlers(container.ReengagementService, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.DB, container.PerfTracker)

	r.GET("/health", healthHandlers.GetHealth)

	api := r.Group("/api/v1")
	{
		// Authentication
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.GET("/status", authHandlers.GetAuthStatus)
		}

		// Session lifecycle (public; the tracking snippet has no credentials)
		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionHandlers.PostSession)
			sessions.GET("/:id", sessionHandlers.GetSession)
			sessions.POST("/:id/end", sessionHandlers.PostSessionEnd)
			sessions.GET("/:id/metrics", sessionHandlers.GetSessionMetrics)
		}

		// Event capture
		api.POST("/events", eventHandlers.PostEvent)

		// Pipeline metrics and live stream
		api.GET("/metrics", metricsHandlers.GetMetrics)
		api.GET("/metrics/stream", metricsHandlers.StreamMetrics)

		// Reporting endpoints (protected)
		users := api.Group("/users")
		users.Use(middleware.AuthMiddleware())
		{
			users.GET("/:id/engagement", engagementHandlers.GetEngagement)
			users.GET("/:id/segment", engagementHandlers.GetSegment)
			users.GET("/:id/trends", engagementHandlers.GetTrends)
			users.GET("/:id/breakdown", engagementHandlers.GetBreakdown)
			users.GET("/:id/comparison", engagementHandlers.GetComparison)
			users.GET("/:id/patterns", engagementHandlers.GetPatterns)
			users.GET("/:id/ltv", engagementHandlers.GetLifetimeValue)

			users.GET("/:id/recommendations", recommendationHandlers.GetRecommendations)
			users.GET("/:id/recommendations/:contentId/explain", recommendationHandlers.GetRecommendationExplanation)
			users.GET("/:id/score/:contentId", recommendationHandlers.GetContentScore)
			users.POST("/:id/feedback", recommendationHandlers.PostFeedback)
			users.GET("/:id/feedback", recommendationHandlers.GetFeedback)
			users.GET("/:id/preferences", recommendationHandlers.GetPreferences)
			users.PUT("/:id/preferences", recommendationHandlers.PutPreferences)
		}

		// Catalog administration (admin only)
		catalog := api.Group("/catalog")
		catalog.Use(middleware.AuthMiddleware(), middleware.AdminOnlyMiddleware())
		{
			catalog.PUT("/:id", catalogHandlers.PutContent)
			catalog.POST("/:id/popularity", catalogHandlers.PostPopularity)
		}

		// Performance diagnostics (admin only)
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminOnlyMiddleware())
		{
			admin.GET("/performance", metricsHandlers.GetPerformance)
			admin.POST("/reengagement", reengagementHandlers.PostReengagementCheck)
			admin.GET("/reengagement/candidates", reengagementHandlers.GetReengagementCandidates)
		}
	}

	return r
}
