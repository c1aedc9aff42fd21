// Package monitor holds the job monitor state machine: the list of scrape
// jobs, the selected job and its processed results, refreshed on demand and
// on a fixed interval while the view is open.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"scrape-client-go/pkg/models"
	"scrape-client-go/pkg/poll"
	"scrape-client-go/pkg/utils"

	"github.com/samber/mo"
)

// SubmitErrorMessage is shown when the service refuses or cannot take a job.
const SubmitErrorMessage = "Error starting scrape job. Please check the URL and try again."

// InvalidURLMessage is shown when the URL input does not hold an absolute URL.
const InvalidURLMessage = "Please enter a valid URL, e.g. https://example.com"

// ErrClosed is returned by operations started after Close.
var ErrClosed = errors.New("monitor closed")

// API is the part of the scraping service client the monitor needs.
type API interface {
	SubmitJob(ctx context.Context, url string) (*models.SubmitJobResponse, error)
	ListJobs(ctx context.Context) ([]models.ScrapeJob, error)
	GetJobStatus(ctx context.Context, jobID string) (*models.ScrapeJob, error)
	GetProcessedResults(ctx context.Context, jobID string) ([]models.ProcessedArchive, error)
}

// Phase is the coarse state of the monitor.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is an immutable snapshot for rendering.
type State struct {
	Phase       Phase
	Jobs        []models.ScrapeJob
	Selected    mo.Option[string]
	SelectedJob *models.ScrapeJob // nil when nothing is selected or the job left the list
	Results     []models.ProcessedArchive
	Loading     bool
	Refreshing  bool
	Submitting  bool
	Error       string
	LastUpdated time.Time
}

// Options configures a Monitor.
type Options struct {
	Interval time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Monitor is safe for concurrent use. Network calls never hold the lock;
// each response replaces its slice of state atomically.
type Monitor struct {
	api      API
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu          sync.Mutex
	phase       Phase
	jobs        []models.ScrapeJob
	selected    mo.Option[string]
	results     []models.ProcessedArchive
	loading     int
	refreshing  bool
	submitting  bool
	errMsg      string
	lastUpdated time.Time

	// Responses older than the last applied one for the same resource are
	// dropped, so a slow refresh cannot overwrite a newer one. Lists and
	// single-job details share one counter; a detail never makes a list stale.
	jobsIssued     uint64
	jobsApplied    uint64
	detailsApplied map[string]uint64
	resultsIssued  uint64
	resultsApplied uint64

	poller    *poll.Poller
	closed    bool
	updates   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a monitor in the idle phase.
func New(api API, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = poll.DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Monitor{
		api:            api,
		logger:         opts.Logger.With("component", "job_monitor"),
		interval:       opts.Interval,
		now:            opts.Now,
		selected:       mo.None[string](),
		detailsApplied: map[string]uint64{},
		lastUpdated:    opts.Now(),
		updates:        make(chan struct{}, 1),
		done:           make(chan struct{}),
	}
}

// Updates delivers a signal whenever the state changed. Signals coalesce.
func (m *Monitor) Updates() <-chan struct{} {
	return m.updates
}

// Done is closed by Close.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

func (m *Monitor) notify() {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}

// Start performs the initial visible load and arms the background refresh.
// Calling Start twice does not create a second poller.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.poller == nil {
		m.poller = poll.Start(ctx, m.interval, m.poll)
	}
	m.mu.Unlock()

	return m.LoadAllJobs(ctx, true)
}

// Close cancels the background refresh. Responses that land afterwards are
// dropped without touching state.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		p := m.poller
		m.poller = nil
		m.mu.Unlock()

		p.Stop()
		close(m.done)
	})
}

// Snapshot returns a copy of the current state.
func (m *Monitor) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Phase:       m.phase,
		Jobs:        slices.Clone(m.jobs),
		Selected:    m.selected,
		Results:     slices.Clone(m.results),
		Loading:     m.loading > 0,
		Refreshing:  m.refreshing,
		Submitting:  m.submitting,
		Error:       m.errMsg,
		LastUpdated: m.lastUpdated,
	}
	if id, ok := m.selected.Get(); ok {
		if job := m.findLocked(id); job != nil {
			copied := *job
			s.SelectedJob = &copied
		}
	}
	return s
}

// Selected returns the selected job id, if any.
func (m *Monitor) Selected() mo.Option[string] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

func (m *Monitor) findLocked(id string) *models.ScrapeJob {
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			return &m.jobs[i]
		}
	}
	return nil
}

// SelectJob sets the selection without fetching anything. Selecting another
// job drops the results held for the previous one.
func (m *Monitor) SelectJob(id string) {
	m.mu.Lock()
	m.selectLocked(id)
	m.mu.Unlock()
	m.notify()
}

// ClearSelection removes the selection and its results.
func (m *Monitor) ClearSelection() {
	m.mu.Lock()
	m.selected = mo.None[string]()
	m.results = nil
	m.resultsApplied = m.resultsIssued
	m.mu.Unlock()
	m.notify()
}

func (m *Monitor) selectLocked(id string) {
	if current, ok := m.selected.Get(); ok && current == id {
		return
	}
	m.selected = mo.Some(id)
	m.results = nil
	m.resultsApplied = m.resultsIssued
}

// begin registers a request under the lock and returns its sequence number.
func (m *Monitor) begin(counter *uint64, showLoading bool) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	*counter++
	if showLoading {
		m.loading++
	}
	return *counter, nil
}

// LoadAllJobs fetches the job list and replaces the held list wholesale.
func (m *Monitor) LoadAllJobs(ctx context.Context, showLoading bool) error {
	seq, err := m.begin(&m.jobsIssued, showLoading)
	if err != nil {
		return err
	}
	m.notify()
	defer m.notify()

	jobs, err := m.api.ListJobs(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if showLoading {
		m.loading--
	}
	if m.closed {
		return nil
	}
	if err != nil {
		m.logger.Error("failed to fetch jobs", "error", err)
		return fmt.Errorf("list jobs: %w", err)
	}
	if seq < m.jobsApplied {
		m.logger.Debug("dropping stale job list", "seq", seq, "applied", m.jobsApplied)
		return nil
	}

	if jobs == nil {
		jobs = []models.ScrapeJob{}
	}
	m.jobsApplied = seq
	m.jobs = jobs
	m.phase = PhaseLoaded
	m.lastUpdated = m.now()
	return nil
}

// LoadJobDetails refreshes one job and replaces its entry in the list by id.
// Nothing changes when the job is no longer listed.
func (m *Monitor) LoadJobDetails(ctx context.Context, id string, showLoading bool) error {
	seq, err := m.begin(&m.jobsIssued, showLoading)
	if err != nil {
		return err
	}
	m.notify()
	defer m.notify()

	job, err := m.api.GetJobStatus(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if showLoading {
		m.loading--
	}
	if m.closed {
		return nil
	}
	if err != nil {
		m.logger.Error("failed to fetch job details", "job_id", id, "error", err)
		return fmt.Errorf("get job %s: %w", id, err)
	}
	if seq < m.jobsApplied || seq < m.detailsApplied[id] {
		m.logger.Debug("dropping stale job details", "job_id", id, "seq", seq, "applied", m.jobsApplied)
		return nil
	}

	existing := m.findLocked(id)
	if existing == nil {
		return nil
	}
	*existing = *job
	m.detailsApplied[id] = seq
	m.lastUpdated = m.now()
	return nil
}

// LoadProcessedResults fetches the processed archives of a job and replaces
// the held results wholesale.
func (m *Monitor) LoadProcessedResults(ctx context.Context, id string, showLoading bool) error {
	seq, err := m.begin(&m.resultsIssued, showLoading)
	if err != nil {
		return err
	}
	m.notify()
	defer m.notify()

	archives, err := m.api.GetProcessedResults(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if showLoading {
		m.loading--
	}
	if m.closed {
		return nil
	}
	if err != nil {
		m.logger.Error("failed to fetch processed results", "job_id", id, "error", err)
		return fmt.Errorf("get processed results %s: %w", id, err)
	}
	if current, ok := m.selected.Get(); ok && current != id {
		return nil
	}
	if seq < m.resultsApplied {
		m.logger.Debug("dropping stale processed results", "job_id", id, "seq", seq, "applied", m.resultsApplied)
		return nil
	}

	m.resultsApplied = seq
	m.results = archives
	m.lastUpdated = m.now()
	return nil
}

// SubmitJob posts a new job. On success the list is reloaded and the new job
// selected; on failure only the error message changes.
func (m *Monitor) SubmitJob(ctx context.Context, rawURL string) (*models.SubmitJobResponse, error) {
	target, err := utils.ValidateURL(rawURL)
	if err != nil {
		m.mu.Lock()
		m.errMsg = InvalidURLMessage
		m.mu.Unlock()
		m.notify()
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.submitting = true
	m.loading++
	m.errMsg = ""
	m.mu.Unlock()
	m.notify()

	finish := func(apply func()) {
		m.mu.Lock()
		m.submitting = false
		m.loading--
		if !m.closed {
			apply()
		}
		m.mu.Unlock()
		m.notify()
	}

	resp, err := m.api.SubmitJob(ctx, target)
	if err != nil {
		m.logger.Error("failed to submit job", "url", target, "error", err)
		finish(func() { m.errMsg = SubmitErrorMessage })
		return nil, fmt.Errorf("submit job: %w", err)
	}

	m.logger.Info("job submitted", "job_id", resp.JobID, "url", target)
	_ = m.LoadAllJobs(ctx, false)
	finish(func() { m.selectLocked(resp.JobID) })
	return resp, nil
}

// RefreshAll is the manual refresh. A call made while another manual refresh
// is running returns false without touching the network.
func (m *Monitor) RefreshAll(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, ErrClosed
	}
	if m.refreshing {
		m.mu.Unlock()
		return false, nil
	}
	m.refreshing = true
	m.mu.Unlock()
	m.notify()

	err := m.refresh(ctx, true)

	m.mu.Lock()
	m.refreshing = false
	if err == nil && !m.closed {
		m.lastUpdated = m.now()
	}
	m.mu.Unlock()
	m.notify()

	return true, err
}

// RefreshSelected reloads the selected job and, when it has finished, its
// processed results.
func (m *Monitor) RefreshSelected(ctx context.Context) error {
	id, ok := m.Selected().Get()
	if !ok {
		return nil
	}
	return m.refreshJob(ctx, id, true)
}

// refresh runs jobs -> selected job -> processed results, each awaited. A
// failing step is logged and the sequence goes on.
func (m *Monitor) refresh(ctx context.Context, showLoading bool) error {
	var errs []error
	if err := m.LoadAllJobs(ctx, showLoading); err != nil {
		errs = append(errs, err)
	}
	if id, ok := m.Selected().Get(); ok {
		if err := m.refreshJob(ctx, id, showLoading); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Monitor) refreshJob(ctx context.Context, id string, showLoading bool) error {
	var errs []error
	if err := m.LoadJobDetails(ctx, id, showLoading); err != nil {
		errs = append(errs, err)
	}

	m.mu.Lock()
	job := m.findLocked(id)
	finished := job != nil && job.Status.Finished()
	m.mu.Unlock()

	if finished {
		if err := m.LoadProcessedResults(ctx, id, showLoading); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// poll is the background refresh: the manual sequence without the in-flight
// guard or loading indicator.
func (m *Monitor) poll(ctx context.Context) {
	if err := m.refresh(ctx, false); err != nil && !errors.Is(err, ErrClosed) {
		m.logger.Warn("background refresh failed", "error", err)
	}
}
