package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"scrape-client-go/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu      sync.Mutex
	docs    []models.ProcessedArchive
	err     error
	queries []string
	hook    func(call int)
}

func (f *fakeSearcher) SearchDocuments(_ context.Context, query string) ([]models.ProcessedArchive, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	n := len(f.queries)
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ProcessedArchive
	for _, d := range f.docs {
		if query == "" || strings.Contains(strings.ToLower(d.Title), strings.ToLower(query)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newTestSearch(api Searcher, interval time.Duration) *Search {
	s := New(api, Options{
		Interval: interval,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return s
}

func TestSearchEmptyResult(t *testing.T) {
	api := &fakeSearcher{docs: []models.ProcessedArchive{{ID: "1", Title: "Cooking with cast iron"}}}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)

	before := s.Snapshot()
	assert.False(t, before.Searched)

	require.NoError(t, s.Search(context.Background(), "machine learning"))
	st := s.Snapshot()
	assert.True(t, st.Searched)
	assert.Empty(t, st.Results)
	assert.Equal(t, "machine learning", st.Query)
	assert.False(t, st.Loading)
	assert.True(t, st.AutoRefresh)
}

func TestEmptyQueryListsEverythingWithoutAutoRefresh(t *testing.T) {
	api := &fakeSearcher{docs: []models.ProcessedArchive{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)

	require.NoError(t, s.Search(context.Background(), "a"))
	assert.True(t, s.Snapshot().AutoRefresh)

	require.NoError(t, s.Search(context.Background(), ""))
	st := s.Snapshot()
	assert.True(t, st.Searched)
	assert.Len(t, st.Results, 2)
	assert.False(t, st.AutoRefresh)

	ran, err := s.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, []string{"a", ""}, api.calls())
}

func TestSearchFailureKeepsResults(t *testing.T) {
	api := &fakeSearcher{docs: []models.ProcessedArchive{{ID: "1", Title: "Go concurrency"}}}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.Search(ctx, "go"))
	api.mu.Lock()
	api.err = errors.New("502 Bad Gateway")
	api.mu.Unlock()

	require.Error(t, s.Search(ctx, "rust"))
	st := s.Snapshot()
	assert.Equal(t, "go", st.Query)
	assert.Len(t, st.Results, 1)
	assert.False(t, st.Loading)
}

func TestRefreshWithoutQueryIsNoop(t *testing.T) {
	api := &fakeSearcher{}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)

	ran, err := s.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, api.calls())
}

func TestVisibleRefreshGuard(t *testing.T) {
	api := &fakeSearcher{docs: []models.ProcessedArchive{{ID: "1", Title: "Go"}}}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)
	ctx := context.Background()
	require.NoError(t, s.Search(ctx, "go"))

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api.mu.Lock()
	api.hook = func(call int) {
		if call == 2 {
			entered <- struct{}{}
			<-release
		}
	}
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx, true)
		done <- err
	}()
	<-entered
	assert.True(t, s.Snapshot().Refreshing)

	ran, err := s.Refresh(ctx, true)
	require.NoError(t, err)
	assert.False(t, ran)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Snapshot().Refreshing)
	assert.Len(t, api.calls(), 2)
}

func TestBackgroundRefreshReissuesQuery(t *testing.T) {
	api := &fakeSearcher{docs: []models.ProcessedArchive{{ID: "1", Title: "Go"}}}
	s := newTestSearch(api, 5*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, s.Search(ctx, "go"))
	api.mu.Lock()
	api.docs = append(api.docs, models.ProcessedArchive{ID: "2", Title: "Go generics"})
	api.mu.Unlock()

	assert.Eventually(t, func() bool { return len(s.Snapshot().Results) == 2 }, time.Second, time.Millisecond)
	for _, q := range api.calls() {
		assert.Equal(t, "go", q)
	}
	assert.False(t, s.Snapshot().Refreshing)

	s.Close()
	n := len(api.calls())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, api.calls(), n)
}

func TestResultsAfterCloseAreDropped(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api := &fakeSearcher{
		docs: []models.ProcessedArchive{{ID: "1", Title: "Go"}},
		hook: func(int) {
			entered <- struct{}{}
			<-release
		},
	}
	s := newTestSearch(api, time.Hour)

	done := make(chan error, 1)
	go func() { done <- s.Search(context.Background(), "go") }()
	<-entered
	s.Close()
	close(release)

	require.NoError(t, <-done)
	st := s.Snapshot()
	assert.False(t, st.Searched)
	assert.Empty(t, st.Results)
	assert.False(t, st.AutoRefresh)

	assert.ErrorIs(t, s.Search(context.Background(), "go"), ErrClosed)
}

func TestSearchWinsOverRefreshOfOlderQuery(t *testing.T) {
	api := &fakeSearcher{docs: []models.ProcessedArchive{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)
	ctx := context.Background()
	require.NoError(t, s.Search(ctx, "a"))

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api.mu.Lock()
	api.hook = func(call int) {
		if call == 2 {
			entered <- struct{}{}
			<-release
		}
	}
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.Search(ctx, "b") }()
	<-entered

	// the refresh still reads "a" and resolves before the search
	ran, err := s.Refresh(ctx, true)
	require.NoError(t, err)
	assert.True(t, ran)

	close(release)
	require.NoError(t, <-done)

	st := s.Snapshot()
	assert.Equal(t, "b", st.Query)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "2", st.Results[0].ID)
	assert.True(t, st.AutoRefresh)
	assert.Equal(t, []string{"a", "b", "a"}, api.calls())
}

func TestRefreshLandingAfterNewSearchIsDropped(t *testing.T) {
	api := &fakeSearcher{docs: []models.ProcessedArchive{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)
	ctx := context.Background()
	require.NoError(t, s.Search(ctx, "a"))

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	api.mu.Lock()
	api.hook = func(call int) {
		if call == 2 {
			entered <- struct{}{}
			<-release
		}
	}
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx, true)
		done <- err
	}()
	<-entered

	require.NoError(t, s.Search(ctx, "b"))
	close(release)
	require.NoError(t, <-done)

	st := s.Snapshot()
	assert.Equal(t, "b", st.Query)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "2", st.Results[0].ID)
	assert.False(t, st.Refreshing)
}

func TestWhitespaceQueryRefreshesLikeAnyQuery(t *testing.T) {
	api := &fakeSearcher{}
	s := newTestSearch(api, time.Hour)
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.Search(ctx, "  "))
	assert.True(t, s.Snapshot().AutoRefresh)

	ran, err := s.Refresh(ctx, true)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{"  ", "  "}, api.calls())
}
