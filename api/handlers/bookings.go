package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/repository"
)

// ListBookings returns every synced calendly booking.
func ListBookings(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := repos.CalendlyBookingRepository.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

// TriggerCalendlySync runs a booking sync on demand.
func TriggerCalendlySync(calendly interfaces.CalendlyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if calendly == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendly is not configured"})
			return
		}

		stats, err := calendly.Sync(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
