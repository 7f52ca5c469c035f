package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/api/handlers"
	"github.com/leadscout/techscan/api/middleware"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Health check and status endpoints (no custom context needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(s, repos))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-TECHSCAN-API-KEY",
		ValidAPIKey: apikey,
	})

	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.CustomContextMiddleware("techscan"))
	api.Use(middleware.TracingMiddleware())
	{
		scans := api.Group("/scans")
		{
			scans.POST("", handlers.CreateScanBatch(s.PipelineService))
			scans.GET("", handlers.ListScans(repos))
			scans.GET("/:domain", handlers.GetScansByDomain(repos))
		}

		stats := api.Group("/stats")
		{
			stats.GET("/variants", handlers.VariantStats(repos))
			stats.GET("/bookings", handlers.BookingAnalytics(s.CalendlyService))
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", handlers.ListBookings(repos))
		}

		calendly := api.Group("/calendly")
		{
			calendly.POST("/sync", handlers.TriggerCalendlySync(s.CalendlyService))
		}
	}
}
