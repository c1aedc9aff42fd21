package handlers

import (
	"errors"
	"net/http"

	"scrape-client-go/pkg/models"
	"scrape-client-go/pkg/services"

	"github.com/gin-gonic/gin"
)

// SubmitJob starts a new scrape job
func SubmitJob(service *services.ScrapeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SubmitJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}

		job, err := service.CreateJob(c.Request.Context(), req.URL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.SubmitJobResponse{JobID: job.ID, Status: job.Status})
	}
}

// ListJobs lists every scrape job
func ListJobs(service *services.ScrapeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.ListJobs(c.Request.Context()))
	}
}

// GetJobStatus returns a single job
func GetJobStatus(service *services.ScrapeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := service.GetJob(c.Request.Context(), c.Param("id"))
		if errors.Is(err, services.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Job not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, job)
	}
}

// GetProcessedResults lists the archives produced by a job
func GetProcessedResults(service *services.ScrapeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.ProcessedForJob(c.Request.Context(), c.Param("id")))
	}
}
