package api

import (
	"log/slog"

	"scrape-client-go/pkg/api/handlers"
	"scrape-client-go/pkg/api/middleware"
	"scrape-client-go/pkg/services"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the scraping service HTTP contract onto a gin engine
func NewRouter(service *services.ScrapeService, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler())

	router.GET("/api/health", handlers.HealthCheck)

	scrape := router.Group("/api/scrape")
	{
		scrape.GET("", handlers.ListJobs(service))
		scrape.POST("/website", handlers.SubmitJob(service))
		scrape.GET("/status/:id", handlers.GetJobStatus(service))
		scrape.GET("/processed/:id", handlers.GetProcessedResults(service))
	}

	router.GET("/api/documents", handlers.SearchDocuments(service))

	return router
}
