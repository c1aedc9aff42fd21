package handlers

import (
	"net/http"

	"scrape-client-go/pkg/services"

	"github.com/gin-gonic/gin"
)

// SearchDocuments searches processed archives with an optional query parameter
func SearchDocuments(service *services.ScrapeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.SearchArchives(c.Request.Context(), c.Query("query")))
	}
}

// HealthCheck reports service liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
