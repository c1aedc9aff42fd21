// Package search holds the document search state machine.
package search

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
)

// ErrClosed is returned by operations started after Close.
var ErrClosed = errors.New("search closed")

// Searcher runs a document search. An empty query lists every document.
type Searcher interface {
	SearchDocuments(ctx context.Context, query string) ([]models.ProcessedArchive, error)
}

// State is an immutable snapshot for rendering.
type State struct {
	Searched    bool
	Query       string
	Results     []models.ProcessedArchive
	Loading     bool
	Refreshing  bool
	AutoRefresh bool
	LastUpdated time.Time
}

type Options struct {
	Interval time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Search tracks the last submitted query and its results. The background
// refresh runs only after a successful search with a non-empty query.
type Search struct {
	api      Searcher
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu          sync.Mutex
	searched    bool
	query       string
	results     []models.ProcessedArchive
	loading     int
	refreshing  bool
	lastUpdated time.Time
	// Sequence numbers order responses. A search only competes with other
	// searches; a refresh loses to any search issued after it read the query.
	issued        uint64
	applied       uint64
	searchIssued  uint64
	searchApplied uint64

	parent    context.Context
	poller    *poll.Poller
	closed    bool
	updates   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New(api Searcher, opts Options) *Search {
	if opts.Interval <= 0 {
		opts.Interval = poll.DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Search{
		api:         api,
		logger:      opts.Logger.With("component", "document_search"),
		interval:    opts.Interval,
		now:         opts.Now,
		lastUpdated: opts.Now(),
		parent:      context.Background(),
		updates:     make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// Updates delivers a coalesced signal whenever the state changed.
func (s *Search) Updates() <-chan struct{} {
	return s.updates
}

// Done is closed by Close.
func (s *Search) Done() <-chan struct{} {
	return s.done
}

func (s *Search) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Bind sets the context the background refresh is derived from.
func (s *Search) Bind(ctx context.Context) {
	s.mu.Lock()
	s.parent = ctx
	s.mu.Unlock()
}

// Close stops the background refresh. Responses that land afterwards are
// dropped.
func (s *Search) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		p := s.poller
		s.poller = nil
		s.mu.Unlock()

		p.Stop()
		close(s.done)
	})
}

func (s *Search) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Searched:    s.searched,
		Query:       s.query,
		Results:     slices.Clone(s.results),
		Loading:     s.loading > 0,
		Refreshing:  s.refreshing,
		AutoRefresh: s.poller != nil,
		LastUpdated: s.lastUpdated,
	}
}

// Search runs query and replaces the results wholesale. A successful search
// with a non-empty query arms the background refresh; an empty one disarms it.
func (s *Search) Search(ctx context.Context, query string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.issued++
	seq := s.issued
	s.searchIssued = seq
	s.loading++
	s.mu.Unlock()
	s.notify()

	docs, err := s.api.SearchDocuments(ctx, query)

	s.mu.Lock()
	s.loading--
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.mu.Unlock()
		s.notify()
		s.logger.Error("error searching documents", "query", query, "error", err)
		return fmt.Errorf("search documents: %w", err)
	}
	if seq < s.searchApplied {
		s.mu.Unlock()
		s.notify()
		s.logger.Debug("dropping stale search results", "query", query, "seq", seq)
		return nil
	}

	s.searchApplied = seq
	s.applied = max(s.applied, seq)
	s.results = docs
	s.query = query
	s.searched = true
	s.lastUpdated = s.now()

	old := s.poller
	s.poller = nil
	if query != "" {
		s.poller = poll.Start(s.parent, s.interval, s.poll)
	}
	s.mu.Unlock()

	// Stop waits for a running refresh, which takes the lock.
	old.Stop()
	s.notify()
	return nil
}

// Refresh re-issues the last submitted query. It does nothing before a
// non-empty search, and a visible refresh is skipped while another runs.
func (s *Search) Refresh(ctx context.Context, showRefreshing bool) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	query := s.query
	searchSeen := s.searchIssued
	if query == "" || (showRefreshing && s.refreshing) {
		s.mu.Unlock()
		return false, nil
	}
	if showRefreshing {
		s.refreshing = true
	}
	s.issued++
	seq := s.issued
	s.mu.Unlock()
	s.notify()
	defer s.notify()

	docs, err := s.api.SearchDocuments(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if showRefreshing {
		s.refreshing = false
	}
	if s.closed {
		return true, nil
	}
	if err != nil {
		s.logger.Error("error refreshing search", "query", query, "error", err)
		return true, fmt.Errorf("refresh search: %w", err)
	}
	if seq < s.applied || query != s.query || s.searchIssued != searchSeen {
		s.logger.Debug("dropping stale search refresh", "query", query, "seq", seq)
		return true, nil
	}

	s.applied = seq
	s.results = docs
	s.lastUpdated = s.now()
	return true, nil
}

func (s *Search) poll(ctx context.Context) {
	if _, err := s.Refresh(ctx, false); err != nil && !errors.Is(err, ErrClosed) {
		s.logger.Warn("background search refresh failed", "error", err)
	}
}
