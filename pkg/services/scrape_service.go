package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"scrape-client-go/pkg/models"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned when a job id is unknown
var ErrJobNotFound = errors.New("job not found")

// timestampLayout matches the naive ISO-8601 timestamps the real service emits.
const timestampLayout = "2006-01-02T15:04:05.000000"

// ScrapeService is an in-memory stand-in for the scraping backend. It keeps
// jobs and processed archives and lets jobs move through their lifecycle,
// but it never fetches anything.
type ScrapeService struct {
	mu       sync.RWMutex
	jobs     map[string]*models.ScrapeJob
	order    []string
	archives []models.ProcessedArchive
	now      func() time.Time
}

// NewScrapeService creates an empty service
func NewScrapeService() *ScrapeService {
	return &ScrapeService{
		jobs: make(map[string]*models.ScrapeJob),
		now:  time.Now,
	}
}

func (s *ScrapeService) timestamp() string {
	return s.now().Format(timestampLayout)
}

// CreateJob registers a new pending job for the given URL
func (s *ScrapeService) CreateJob(ctx context.Context, targetURL string) (*models.ScrapeJob, error) {
	if strings.TrimSpace(targetURL) == "" {
		return nil, fmt.Errorf("URL is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := &models.ScrapeJob{
		ID:        uuid.NewString(),
		URL:       targetURL,
		Status:    models.JobStatusPending,
		CreatedAt: s.timestamp(),
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	copied := *job
	return &copied, nil
}

// ListJobs returns every job in creation order
func (s *ScrapeService) ListJobs(ctx context.Context) []models.ScrapeJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]models.ScrapeJob, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, *s.jobs[id])
	}
	return jobs
}

// GetJob returns a single job
func (s *ScrapeService) GetJob(ctx context.Context, id string) (*models.ScrapeJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

// UpdateJobStatus moves a job to the given status. errMsg is recorded for
// failed jobs.
func (s *ScrapeService) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = s.timestamp()
	return nil
}

// DeleteJob removes a job and its archives
func (s *ScrapeService) DeleteJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(s.jobs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	kept := s.archives[:0]
	for _, a := range s.archives {
		if a.JobID != id {
			kept = append(kept, a)
		}
	}
	s.archives = kept
	return nil
}

// AddArchive stores a processed archive for an existing job
func (s *ScrapeService) AddArchive(ctx context.Context, archive models.ProcessedArchive) (*models.ProcessedArchive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[archive.JobID]; !ok {
		return nil, ErrJobNotFound
	}
	if archive.ID == "" {
		archive.ID = uuid.NewString()
	}
	if archive.Subjects == nil {
		archive.Subjects = []string{}
	}
	if archive.ExtractedLinks == nil {
		archive.ExtractedLinks = models.ExtractedLinks{}
	}
	ts := s.timestamp()
	if archive.CreatedAt == "" {
		archive.CreatedAt = ts
	}
	archive.UpdatedAt = ts

	s.archives = append(s.archives, archive)
	return &archive, nil
}

// ProcessedForJob returns the archives produced by a job
func (s *ScrapeService) ProcessedForJob(ctx context.Context, jobID string) []models.ProcessedArchive {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ProcessedArchive{}
	for _, a := range s.archives {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out
}

// SearchArchives matches the query case-insensitively against title,
// description, author and subjects. An empty query returns everything.
func (s *ScrapeService) SearchArchives(ctx context.Context, query string) []models.ProcessedArchive {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	out := []models.ProcessedArchive{}
	for _, a := range s.archives {
		if needle == "" || archiveMatches(a, needle) {
			out = append(out, a)
		}
	}
	return out
}

func archiveMatches(a models.ProcessedArchive, needle string) bool {
	if strings.Contains(strings.ToLower(a.Title), needle) ||
		strings.Contains(strings.ToLower(a.Description), needle) ||
		strings.Contains(strings.ToLower(a.Author), needle) {
		return true
	}
	for _, subject := range a.Subjects {
		if strings.Contains(strings.ToLower(subject), needle) {
			return true
		}
	}
	return false
}

// Advance moves every unfinished job one step through its lifecycle:
// pending -> processing -> completed. A completed job gets a placeholder
// archive describing its URL. It returns the number of jobs that changed.
func (s *ScrapeService) Advance(ctx context.Context) int {
	s.mu.Lock()
	var completed []*models.ScrapeJob
	changed := 0
	for _, id := range s.order {
		job := s.jobs[id]
		switch job.Status {
		case models.JobStatusPending:
			job.Status = models.JobStatusProcessing
		case models.JobStatusProcessing:
			job.Status = models.JobStatusCompleted
			completed = append(completed, job)
		default:
			continue
		}
		job.UpdatedAt = s.timestamp()
		changed++
	}
	s.mu.Unlock()

	for _, job := range completed {
		if _, err := s.AddArchive(ctx, placeholderArchive(job)); err != nil {
			continue
		}
	}
	return changed
}

func placeholderArchive(job *models.ScrapeJob) models.ProcessedArchive {
	host := job.URL
	if u, err := url.Parse(job.URL); err == nil && u.Host != "" {
		host = u.Host
	}
	return models.ProcessedArchive{
		URL:            job.URL,
		Title:          fmt.Sprintf("Snapshot of %s", host),
		Description:    fmt.Sprintf("Placeholder result generated by the dev service for %s.", job.URL),
		ExtractedLinks: models.ExtractedLinks{job.URL},
		Author:         models.AuthorUnknown,
		Subjects:       []string{},
		JobID:          job.ID,
	}
}
