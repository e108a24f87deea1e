package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogsearch/internal/search"
)

// fakeSearcher records every call and answers from a fixed table.
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []search.Params
	results map[string]*search.Collection
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, p search.Params) (*search.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[p.Query]; ok {
		return r, nil
	}
	return &search.Collection{Items: []search.Item{}}, nil
}

func (f *fakeSearcher) Calls() []search.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]search.Params(nil), f.calls...)
}

var catsResult = &search.Collection{
	Meta: search.Meta{TotalCount: 1, PageableCount: 1, IsEnd: true},
	Items: []search.Item{
		{Title: "<b>Cats</b>", BlogName: "A", Contents: "c1", URL: "http://x", Thumbnail: "http://t"},
	},
}

func TestNavigate_FetchesOncePerKeyword(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Collection{"cats": catsResult}}
	v := New(fs)

	require.NoError(t, v.Navigate(context.Background(), "cats"))

	calls := fs.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, search.Params{Query: "cats", Sort: search.SortAccuracy, Page: 1, Size: 10}, calls[0])

	st := v.Snapshot()
	assert.Equal(t, StatusLoaded, st.Status)
	assert.Equal(t, "cats", st.Keyword)
	assert.Equal(t, catsResult.Items, st.Results)
	assert.Equal(t, catsResult.Meta, st.Meta)
	assert.False(t, st.Empty())
}

func TestNavigate_EmptyKeywordClearsWithoutCall(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Collection{"cats": catsResult}}
	v := New(fs)

	require.NoError(t, v.Navigate(context.Background(), "cats"))
	require.NoError(t, v.Navigate(context.Background(), ""))

	assert.Len(t, fs.Calls(), 1)
	st := v.Snapshot()
	assert.Equal(t, StatusIdle, st.Status)
	assert.Empty(t, st.Results)
	assert.Equal(t, "", st.Keyword)
}

func TestSetText_NoSideEffect(t *testing.T) {
	fs := &fakeSearcher{}
	v := New(fs)

	for _, s := range []string{"c", "ca", "cat", "cats"} {
		v.SetText(s)
	}
	assert.Empty(t, fs.Calls())
	assert.Equal(t, "cats", v.Snapshot().Text)
	assert.Equal(t, "", v.Snapshot().Keyword)
}

func TestSubmit_NavigatesToKeywordPath(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Collection{"cats": catsResult}}

	var pushed []string
	v := New(fs, WithNavigator(func(path string) {
		pushed = append(pushed, path)
	}))

	v.SetText("cats")
	assert.Equal(t, "/search/cats", v.Submit())
	assert.Empty(t, fs.Calls(), "submit alone does not fetch")

	v.SetText("")
	assert.Equal(t, "/", v.Submit())
	assert.Equal(t, []string{"/search/cats", "/"}, pushed)
}

func TestResubmitSameKeyword(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Collection{"cats": catsResult}}
	v := New(fs)

	require.NoError(t, v.Navigate(context.Background(), "cats"))
	first := v.Snapshot()
	require.NoError(t, v.Navigate(context.Background(), "cats"))
	second := v.Snapshot()

	assert.Len(t, fs.Calls(), 2)
	assert.Equal(t, first.Results, second.Results)
}

func TestNavigate_FailureIsExplicit(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Collection{"cats": catsResult}}
	v := New(fs)
	require.NoError(t, v.Navigate(context.Background(), "cats"))

	boom := &search.TransportError{Op: "do", Err: errors.New("network unreachable")}
	fs.err = boom

	err := v.Navigate(context.Background(), "dogs")
	require.ErrorIs(t, err, boom)

	st := v.Snapshot()
	assert.Equal(t, StatusFailed, st.Status)
	assert.Empty(t, st.Results, "stale results must be dropped")
	assert.ErrorIs(t, st.Err, boom)
	assert.False(t, st.Empty())
}

func TestNavigate_EmptyResultIsNotIdle(t *testing.T) {
	v := New(&fakeSearcher{})
	require.NoError(t, v.Navigate(context.Background(), "zzz"))

	st := v.Snapshot()
	assert.Equal(t, StatusLoaded, st.Status)
	assert.True(t, st.Empty())
}

// blockingSearcher lets the test decide when each query answers.
type blockingSearcher struct {
	release map[string]chan struct{}
	started chan string
}

func (b *blockingSearcher) Search(ctx context.Context, p search.Params) (*search.Collection, error) {
	b.started <- p.Query
	<-b.release[p.Query]
	return &search.Collection{Items: []search.Item{{Title: p.Query}}}, nil
}

func TestNavigate_StaleResponseDiscarded(t *testing.T) {
	bs := &blockingSearcher{
		release: map[string]chan struct{}{"old": make(chan struct{}), "new": make(chan struct{})},
		started: make(chan string, 2),
	}
	v := New(bs)

	oldErr := make(chan error, 1)
	go func() { oldErr <- v.Navigate(context.Background(), "old") }()
	require.Equal(t, "old", <-bs.started)

	newErr := make(chan error, 1)
	go func() { newErr <- v.Navigate(context.Background(), "new") }()
	require.Equal(t, "new", <-bs.started)

	// newer answers first, then the older one arrives late
	close(bs.release["new"])
	require.NoError(t, <-newErr)
	close(bs.release["old"])
	assert.ErrorIs(t, <-oldErr, ErrSuperseded)

	st := v.Snapshot()
	assert.Equal(t, "new", st.Keyword)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "new", st.Results[0].Title)
}

func TestNavigate_CancelsSupersededRequest(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{}, 1)
	s := search.SearcherFunc(func(ctx context.Context, p search.Params) (*search.Collection, error) {
		if p.Query == "slow" {
			started <- struct{}{}
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return &search.Collection{Items: []search.Item{}}, nil
	})
	v := New(s)

	done := make(chan error, 1)
	go func() { done <- v.Navigate(context.Background(), "slow") }()
	<-started

	require.NoError(t, v.Navigate(context.Background(), ""))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, StatusIdle, v.Snapshot().Status)
}

func TestOnChange_ReportsTransitions(t *testing.T) {
	var mu sync.Mutex
	var seen []Status
	v := New(&fakeSearcher{}, OnChange(func(st State) {
		mu.Lock()
		seen = append(seen, st.Status)
		mu.Unlock()
	}))

	require.NoError(t, v.Navigate(context.Background(), "cats"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusLoading, StatusLoaded}, seen)
}

func TestNavigate_NormalizesKeyword(t *testing.T) {
	fs := &fakeSearcher{}
	v := New(fs)
	require.NoError(t, v.Navigate(context.Background(), "  cats  "))
	assert.Equal(t, "cats", fs.Calls()[0].Query)
}

func TestSetText_DoesNotNotify(t *testing.T) {
	calls := 0
	v := New(&fakeSearcher{}, OnChange(func(State) { calls++ }))
	v.SetText("cats")
	assert.Zero(t, calls)
}

func TestOnChange_DropsOlderNavigation(t *testing.T) {
	var seen []string
	v := New(&fakeSearcher{}, OnChange(func(st State) { seen = append(seen, st.Keyword) }))

	// a late delivery from navigation 1 arrives after navigation 2 was shown
	v.notify(2, State{Keyword: "dogs", Status: StatusLoading})
	v.notify(1, State{Keyword: "cats", Status: StatusLoaded})
	v.notify(2, State{Keyword: "dogs", Status: StatusLoaded})

	assert.Equal(t, []string{"dogs", "dogs"}, seen)
}

func TestOnChange_LastStateIsNewestKeyword(t *testing.T) {
	release := make(chan struct{})
	s := search.SearcherFunc(func(ctx context.Context, p search.Params) (*search.Collection, error) {
		if p.Query == "cats" {
			<-release
		}
		return &search.Collection{Items: []search.Item{{Title: p.Query}}}, nil
	})

	var mu sync.Mutex
	var last State
	v := New(s, OnChange(func(st State) {
		mu.Lock()
		last = st
		mu.Unlock()
	}))

	done := make(chan error, 1)
	go func() { done <- v.Navigate(context.Background(), "cats") }()
	require.Eventually(t, func() bool { return v.Snapshot().Status == StatusLoading }, time.Second, time.Millisecond)

	require.NoError(t, v.Navigate(context.Background(), "dogs"))
	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "dogs", last.Keyword)
	assert.Equal(t, StatusLoaded, last.Status)
}
