package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/services"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status reports the runtime shape of the scanner: catalog size, inbox
// roster and how many domains have been seen so far.
func Status(s *services.Services, repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		domainsSeen, err := repos.DomainSeenRepository.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		totalSends, err := repos.EmailStatRepository.TotalSends(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"catalogSize":     s.Catalog.Len(),
			"inboxes":         s.SenderService.InboxCount(),
			"sendingEnabled":  s.SenderService.SendingEnabled(),
			"domainsSeen":     domainsSeen,
			"totalSends":      totalSends,
			"calendlyEnabled": s.CalendlyService != nil,
		})
	}
}
