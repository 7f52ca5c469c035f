package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leadscout/techscan/dto"
	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
)

const maxBatchSize = 500

// CreateScanBatch runs a scan batch synchronously and returns per-domain
// outcomes.
func CreateScanBatch(pipeline interfaces.PipelineService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "CreateScanBatch")
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request dto.ScanBatchRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(request.Domains) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "domains must not be empty"})
			return
		}
		if len(request.Domains) > maxBatchSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
			return
		}

		outcomes := pipeline.ProcessDomains(ctx, request.Domains, request.Send)
		c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
	}
}

// ListScans returns the most recent scans, newest first.
func ListScans(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}

		scans, err := repos.TechScanRepository.ListRecent(ctx, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"scans": scans})
	}
}

// GetScansByDomain returns the full scan history of one domain.
func GetScansByDomain(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		domain := utils.NormalizeDomain(c.Param("domain"))
		if domain == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain"})
			return
		}

		scans, err := repos.TechScanRepository.ListByDomain(ctx, domain)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(scans) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "domain never scanned"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"domain": domain, "scans": scans})
	}
}
