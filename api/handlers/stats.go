package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/repository"
)

// VariantStats exposes the send counters per (variant, persona, tech)
// triple, the raw material for A/B comparisons.
func VariantStats(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		stats, err := repos.EmailStatRepository.ListAll(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		total, err := repos.EmailStatRepository.TotalSends(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalSends": total,
			"stats":      stats,
		})
	}
}

// BookingAnalytics reports conversion outcomes aggregated by persona,
// variant and technology.
func BookingAnalytics(calendly interfaces.CalendlyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if calendly == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendly is not configured"})
			return
		}

		analytics, err := calendly.Analytics(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, analytics)
	}
}
