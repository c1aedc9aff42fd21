package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"scrape-client-go/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	jobs      []models.ScrapeJob
	results   map[string][]models.ProcessedArchive
	submitID  string
	submitErr error
	listErr   error
	listHook  func(ctx context.Context, call int) ([]models.ScrapeJob, error)
	calls     map[string]int
}

func newFakeAPI(jobs ...models.ScrapeJob) *fakeAPI {
	return &fakeAPI{
		jobs:    jobs,
		results: map[string][]models.ProcessedArchive{},
		calls:   map[string]int{},
	}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) setStatus(id string, status models.JobStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			f.jobs[i].Status = status
		}
	}
}

func (f *fakeAPI) SubmitJob(_ context.Context, url string) (*models.SubmitJobResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["submit"]++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.jobs = append([]models.ScrapeJob{{
		ID:        f.submitID,
		URL:       url,
		Status:    models.JobStatusPending,
		CreatedAt: "2024-03-01T10:00:00",
	}}, f.jobs...)
	return &models.SubmitJobResponse{JobID: f.submitID, Status: models.JobStatusPending}, nil
}

func (f *fakeAPI) ListJobs(ctx context.Context) ([]models.ScrapeJob, error) {
	f.mu.Lock()
	f.calls["list"]++
	n := f.calls["list"]
	hook := f.listHook
	jobs := slices.Clone(f.jobs)
	err := f.listErr
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, n)
	}
	return jobs, err
}

func (f *fakeAPI) GetJobStatus(_ context.Context, id string) (*models.ScrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["status"]++
	for _, job := range f.jobs {
		if job.ID == id {
			return &job, nil
		}
	}
	return nil, errors.New("Job not found")
}

func (f *fakeAPI) GetProcessedResults(_ context.Context, id string) ([]models.ProcessedArchive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["results"]++
	return slices.Clone(f.results[id]), nil
}

func newTestMonitor(api API) *Monitor {
	return New(api, Options{
		Interval: time.Hour,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func job(id string, status models.JobStatus) models.ScrapeJob {
	return models.ScrapeJob{ID: id, URL: "https://" + id + ".example.com", Status: status, CreatedAt: "2024-03-01T10:00:00"}
}

func TestLoadAllJobsReplacesList(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending), job("b", models.JobStatusCompleted), job("c", models.JobStatusFailed))
	m := newTestMonitor(api)

	assert.Equal(t, PhaseIdle, m.Snapshot().Phase)
	require.NoError(t, m.LoadAllJobs(context.Background(), true))

	s := m.Snapshot()
	assert.Equal(t, PhaseLoaded, s.Phase)
	assert.Len(t, s.Jobs, 3)
	assert.False(t, s.Loading)
}

func TestLoadAllJobsFailureKeepsState(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending))
	m := newTestMonitor(api)
	ctx := context.Background()
	require.NoError(t, m.LoadAllJobs(ctx, true))

	api.mu.Lock()
	api.listErr = errors.New("connection refused")
	api.mu.Unlock()

	require.Error(t, m.LoadAllJobs(ctx, true))
	s := m.Snapshot()
	assert.Len(t, s.Jobs, 1)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
}

func TestSubmitJobSuccess(t *testing.T) {
	api := newFakeAPI(job("old", models.JobStatusCompleted))
	api.submitID = "abc123"
	m := newTestMonitor(api)

	resp, err := m.SubmitJob(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.JobID)

	s := m.Snapshot()
	assert.Equal(t, 1, api.count("list"))
	assert.Equal(t, "abc123", s.Selected.MustGet())
	require.NotNil(t, s.SelectedJob)
	assert.Equal(t, "https://example.com", s.SelectedJob.URL)
	assert.Len(t, s.Jobs, 2)
	assert.False(t, s.Submitting)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
}

func TestSubmitJobFailure(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending))
	api.submitErr = errors.New("500 Internal Server Error")
	m := newTestMonitor(api)
	ctx := context.Background()
	require.NoError(t, m.LoadAllJobs(ctx, false))
	m.SelectJob("a")

	_, err := m.SubmitJob(ctx, "https://example.com")
	require.Error(t, err)

	s := m.Snapshot()
	assert.Equal(t, SubmitErrorMessage, s.Error)
	assert.Len(t, s.Jobs, 1)
	assert.Equal(t, "a", s.Selected.MustGet())
	assert.Equal(t, 1, api.count("list"))
	assert.False(t, s.Submitting)

	// a new attempt clears the previous error
	api.mu.Lock()
	api.submitErr = nil
	api.submitID = "b"
	api.mu.Unlock()
	_, err = m.SubmitJob(ctx, "https://example.org")
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot().Error)
}

func TestSubmitJobRejectsInvalidURL(t *testing.T) {
	api := newFakeAPI()
	m := newTestMonitor(api)

	for _, input := range []string{"", "   ", "example.com", "/relative/path"} {
		_, err := m.SubmitJob(context.Background(), input)
		require.Error(t, err, input)
	}
	assert.Equal(t, 0, api.count("submit"))
	assert.Equal(t, InvalidURLMessage, m.Snapshot().Error)
}

func TestRefreshAllIgnoresConcurrentTrigger(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending))
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api.listHook = func(ctx context.Context, call int) ([]models.ScrapeJob, error) {
		entered <- struct{}{}
		<-release
		return []models.ScrapeJob{job("a", models.JobStatusPending)}, nil
	}
	m := newTestMonitor(api)
	ctx := context.Background()

	type result struct {
		ran bool
		err error
	}
	first := make(chan result, 1)
	go func() {
		ran, err := m.RefreshAll(ctx)
		first <- result{ran, err}
	}()
	<-entered
	assert.True(t, m.Snapshot().Refreshing)

	ran, err := m.RefreshAll(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, 1, api.count("list"))

	close(release)
	r := <-first
	require.NoError(t, r.err)
	assert.True(t, r.ran)
	assert.False(t, m.Snapshot().Refreshing)
	assert.Equal(t, 1, api.count("list"))
}

func TestRefreshAllUpdatesTimestampOnlyOnSuccess(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending))
	var tick int
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := New(api, Options{
		Interval: time.Hour,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
	})
	ctx := context.Background()

	_, err := m.RefreshAll(ctx)
	require.NoError(t, err)
	before := m.Snapshot().LastUpdated

	api.mu.Lock()
	api.listErr = errors.New("timeout")
	api.mu.Unlock()

	ran, err := m.RefreshAll(ctx)
	assert.True(t, ran)
	require.Error(t, err)
	assert.Equal(t, before, m.Snapshot().LastUpdated)
}

func TestPollTracksStatusTransitions(t *testing.T) {
	api := newFakeAPI(job("j1", models.JobStatusPending))
	api.results["j1"] = []models.ProcessedArchive{{ID: "doc1", JobID: "j1", Title: "Snapshot"}}
	m := newTestMonitor(api)
	ctx := context.Background()

	require.NoError(t, m.LoadAllJobs(ctx, true))
	m.SelectJob("j1")

	for _, status := range []models.JobStatus{models.JobStatusPending, models.JobStatusProcessing, models.JobStatusCompleted} {
		api.setStatus("j1", status)
		m.poll(ctx)

		s := m.Snapshot()
		require.NotNil(t, s.SelectedJob)
		assert.Equal(t, status, s.SelectedJob.Status)
		assert.False(t, s.Loading, "background refresh must not show loading")
		if status == models.JobStatusCompleted {
			assert.Equal(t, 1, api.count("results"))
			require.Len(t, s.Results, 1)
			assert.Equal(t, "doc1", s.Results[0].ID)
		} else {
			assert.Equal(t, 0, api.count("results"))
			assert.Empty(t, s.Results)
		}
	}
}

func TestFailedJobFetchesResults(t *testing.T) {
	api := newFakeAPI(job("j1", models.JobStatusFailed))
	m := newTestMonitor(api)
	ctx := context.Background()
	require.NoError(t, m.LoadAllJobs(ctx, true))
	m.SelectJob("j1")

	require.NoError(t, m.RefreshSelected(ctx))
	assert.Equal(t, 1, api.count("status"))
	assert.Equal(t, 1, api.count("results"))
}

func TestStaleJobListIsDropped(t *testing.T) {
	api := newFakeAPI()
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api.listHook = func(ctx context.Context, call int) ([]models.ScrapeJob, error) {
		if call == 1 {
			entered <- struct{}{}
			<-release
			return []models.ScrapeJob{job("old", models.JobStatusPending)}, nil
		}
		return []models.ScrapeJob{job("new", models.JobStatusProcessing)}, nil
	}
	m := newTestMonitor(api)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- m.LoadAllJobs(ctx, false) }()
	<-entered

	require.NoError(t, m.LoadAllJobs(ctx, false))
	close(release)
	require.NoError(t, <-errCh)

	s := m.Snapshot()
	require.Len(t, s.Jobs, 1)
	assert.Equal(t, "new", s.Jobs[0].ID)
}

func TestJobDetailsDoNotMakeListStale(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending))
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api.listHook = func(ctx context.Context, call int) ([]models.ScrapeJob, error) {
		if call == 2 {
			entered <- struct{}{}
			<-release
			return []models.ScrapeJob{job("new", models.JobStatusPending), job("a", models.JobStatusProcessing)}, nil
		}
		return []models.ScrapeJob{job("a", models.JobStatusPending)}, nil
	}
	m := newTestMonitor(api)
	ctx := context.Background()
	require.NoError(t, m.LoadAllJobs(ctx, false))

	errCh := make(chan error, 1)
	go func() { errCh <- m.LoadAllJobs(ctx, false) }()
	<-entered

	// a detail issued after the list lands first
	api.setStatus("a", models.JobStatusProcessing)
	require.NoError(t, m.LoadJobDetails(ctx, "a", false))
	assert.Equal(t, models.JobStatusProcessing, m.Snapshot().Jobs[0].Status)

	close(release)
	require.NoError(t, <-errCh)

	s := m.Snapshot()
	require.Len(t, s.Jobs, 2)
	assert.Equal(t, "new", s.Jobs[0].ID)
	assert.Equal(t, "a", s.Jobs[1].ID)
}

func TestSelectionOfVanishedJob(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending))
	m := newTestMonitor(api)
	ctx := context.Background()
	require.NoError(t, m.LoadAllJobs(ctx, false))

	m.SelectJob("gone")
	s := m.Snapshot()
	assert.Equal(t, "gone", s.Selected.MustGet())
	assert.Nil(t, s.SelectedJob)

	// details for an unlisted job leave the list alone
	api.jobs = append(api.jobs, job("gone", models.JobStatusCompleted))
	require.NoError(t, m.LoadJobDetails(ctx, "gone", false))
	assert.Len(t, m.Snapshot().Jobs, 1)
}

func TestSelectingAnotherJobClearsResults(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusCompleted), job("b", models.JobStatusPending))
	api.results["a"] = []models.ProcessedArchive{{ID: "doc-a", JobID: "a"}}
	m := newTestMonitor(api)
	ctx := context.Background()
	require.NoError(t, m.LoadAllJobs(ctx, false))

	m.SelectJob("a")
	require.NoError(t, m.RefreshSelected(ctx))
	require.Len(t, m.Snapshot().Results, 1)

	m.SelectJob("a")
	assert.Len(t, m.Snapshot().Results, 1)

	m.SelectJob("b")
	assert.Empty(t, m.Snapshot().Results)

	m.ClearSelection()
	assert.True(t, m.Snapshot().Selected.IsAbsent())
}

func TestResponsesAfterCloseAreDropped(t *testing.T) {
	api := newFakeAPI()
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api.listHook = func(ctx context.Context, call int) ([]models.ScrapeJob, error) {
		entered <- struct{}{}
		<-release
		return []models.ScrapeJob{job("a", models.JobStatusPending)}, nil
	}
	m := newTestMonitor(api)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- m.LoadAllJobs(ctx, true) }()
	<-entered

	m.Close()
	close(release)
	require.NoError(t, <-errCh)

	s := m.Snapshot()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Empty(t, s.Jobs)

	_, err := m.RefreshAll(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	select {
	case <-m.Done():
	default:
		t.Fatal("Done not closed")
	}
	// Close is idempotent
	m.Close()
}

func TestStartPollsUntilClosed(t *testing.T) {
	api := newFakeAPI(job("a", models.JobStatusPending))
	m := New(api, Options{
		Interval: 5 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, PhaseLoaded, m.Snapshot().Phase)
	assert.Eventually(t, func() bool { return api.count("list") >= 3 }, time.Second, time.Millisecond)

	m.Close()
	calls := api.count("list")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, api.count("list"))
}

func TestUpdatesSignalsChanges(t *testing.T) {
	m := newTestMonitor(newFakeAPI())
	m.SelectJob("x")

	select {
	case <-m.Updates():
	case <-time.After(time.Second):
		t.Fatal("no update signal")
	}
}
