package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"scrape-client-go/pkg/models"
)

// SubmitJob starts a new scrape job for the given URL
func (c *Client) SubmitJob(ctx context.Context, targetURL string) (*models.SubmitJobResponse, error) {
	var resp models.SubmitJobResponse
	payload := models.SubmitJobRequest{URL: targetURL}
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/scrape/website", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListJobs retrieves every scrape job known to the service
func (c *Client) ListJobs(ctx context.Context) ([]models.ScrapeJob, error) {
	jobs := []models.ScrapeJob{}
	if err := c.doGetRequest(ctx, "/api/scrape", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobStatus retrieves the current state of a single job
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*models.ScrapeJob, error) {
	var job models.ScrapeJob
	path := fmt.Sprintf("/api/scrape/status/%s", url.PathEscape(jobID))
	if err := c.doGetRequest(ctx, path, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetProcessedResults retrieves the processed archives produced by a job
func (c *Client) GetProcessedResults(ctx context.Context, jobID string) ([]models.ProcessedArchive, error) {
	archives := []models.ProcessedArchive{}
	path := fmt.Sprintf("/api/scrape/processed/%s", url.PathEscape(jobID))
	if err := c.doGetRequest(ctx, path, &archives); err != nil {
		return nil, err
	}
	return archives, nil
}
