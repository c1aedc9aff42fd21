package models

// JobStatus is the server-owned lifecycle state of a scrape job.
// Unknown values are kept verbatim so newer server states still render.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Finished reports whether the job reached a terminal state and may have
// processed results attached.
func (s JobStatus) Finished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ScrapeJob is a server-tracked unit of work ("fetch and process this URL").
// Timestamps are the ISO-8601 strings produced by the service.
type ScrapeJob struct {
	ID        string    `json:"_id"`
	URL       string    `json:"url"`
	Status    JobStatus `json:"status"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SubmitJobRequest is the payload for starting a new scrape job
type SubmitJobRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// SubmitJobResponse is returned by the service when a job has been queued
type SubmitJobResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}
