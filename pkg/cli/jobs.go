package cli

import (
	"context"
	"fmt"

	"scrape-client-go/pkg/cli/display"
	"scrape-client-go/pkg/utils"
)

// ListJobs prints every scrape job as a table.
func (a *App) ListJobs(ctx context.Context) error {
	apiClient, err := a.getClient()
	if err != nil {
		return err
	}

	jobs, err := apiClient.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("error fetching jobs: %w", err)
	}
	return display.WriteJobsTable(a.out, jobs)
}

// SubmitJob starts a scrape job for rawURL.
func (a *App) SubmitJob(ctx context.Context, rawURL string) error {
	target, err := utils.ValidateURL(rawURL)
	if err != nil {
		return err
	}

	apiClient, err := a.getClient()
	if err != nil {
		return err
	}

	resp, err := apiClient.SubmitJob(ctx, target)
	if err != nil {
		return fmt.Errorf("error starting scrape job: %w", err)
	}

	_, err = fmt.Fprint(a.out, display.FormatSubmitSuccess(resp, target))
	return err
}

// ShowJob prints the current state of one job.
func (a *App) ShowJob(ctx context.Context, jobID string) error {
	apiClient, err := a.getClient()
	if err != nil {
		return err
	}

	job, err := apiClient.GetJobStatus(ctx, jobID)
	if err != nil {
		return fmt.Errorf("error fetching job %s: %w", jobID, err)
	}
	return display.WriteJobDetails(a.out, *job)
}

// ShowResults prints the processed documents of one job.
func (a *App) ShowResults(ctx context.Context, jobID string) error {
	apiClient, err := a.getClient()
	if err != nil {
		return err
	}

	archives, err := apiClient.GetProcessedResults(ctx, jobID)
	if err != nil {
		return fmt.Errorf("error fetching processed results for %s: %w", jobID, err)
	}

	if len(archives) == 0 {
		_, err := fmt.Fprintln(a.out, display.EmptyResultsMessage)
		return err
	}
	for _, archive := range archives {
		if err := display.WriteArchiveDetails(a.out, archive); err != nil {
			return err
		}
	}
	return nil
}
