// Package view holds the state of one search screen: the draft text, the
// committed keyword, and what the last search for that keyword produced.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"blogsearch/internal/metrics"
	"blogsearch/internal/route"
	"blogsearch/internal/search"
)

// ErrSuperseded is returned by Navigate when a newer navigation replaced the
// keyword before the response arrived; the response was dropped.
var ErrSuperseded = errors.New("search superseded by a newer keyword")

type Status int

const (
	// StatusIdle: no keyword, nothing requested.
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// State is an immutable copy of the view for rendering.
type State struct {
	Text    string
	Keyword string
	Status  Status
	Meta    search.Meta
	Results []search.Item
	Err     error
}

// Empty reports a finished search that found nothing.
func (s State) Empty() bool {
	return s.Status == StatusLoaded && len(s.Results) == 0
}

// Navigator pushes a new path, the way a submission changes the URL.
type Navigator func(path string)

type Option func(*SearchView)

func WithNavigator(n Navigator) Option {
	return func(v *SearchView) { v.navigate = n }
}

// OnChange registers a callback invoked (outside the state lock) after every
// navigation-driven state change. Calls are serialized, and a state from an
// older navigation is never delivered after one from a newer navigation.
func OnChange(fn func(State)) Option {
	return func(v *SearchView) { v.onChange = fn }
}

func WithLogger(l *logrus.Logger) Option {
	return func(v *SearchView) { v.log = l }
}

type SearchView struct {
	searcher search.Searcher
	navigate Navigator
	onChange func(State)
	log      *logrus.Logger

	mu      sync.Mutex
	text    string
	keyword string
	status  Status
	meta    search.Meta
	results []search.Item
	err     error
	seq     uint64
	cancel  context.CancelFunc

	notifyMu sync.Mutex
	notified uint64
}

func New(searcher search.Searcher, opts ...Option) *SearchView {
	v := &SearchView{searcher: searcher, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// SetText updates the draft only; observers are not notified.
func (v *SearchView) SetText(text string) {
	v.mu.Lock()
	v.text = text
	v.mu.Unlock()
}

// Submit commits the draft: it computes the path for the draft text and hands
// it to the navigator. The keyword itself changes when the navigation lands
// in Navigate.
func (v *SearchView) Submit() string {
	v.mu.Lock()
	path := route.PathFor(v.text)
	v.mu.Unlock()

	if v.navigate != nil {
		v.navigate(path)
	}
	return path
}

// Navigate reacts to a keyword change coming from the URL. A non-empty keyword
// issues exactly one search; an empty one clears the results without a call.
// Any search still in flight for an older keyword is cancelled and its
// response discarded.
func (v *SearchView) Navigate(ctx context.Context, keyword string) error {
	keyword = search.NormalizeKeyword(keyword)

	v.mu.Lock()
	prev := v.keyword
	effect := Watch(prev, keyword)

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.seq++
	seq := v.seq
	v.keyword = keyword
	v.text = keyword
	v.err = nil

	if effect.Kind != EffectFetch {
		v.status = StatusIdle
		v.results = nil
		v.meta = search.Meta{}
		st := v.snapshotLocked()
		v.mu.Unlock()
		v.notify(seq, st)
		return nil
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.status = StatusLoading
	st := v.snapshotLocked()
	v.mu.Unlock()
	v.notify(seq, st)

	res, err := v.searcher.Search(fetchCtx, effect.Params)

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		cancel()
		metrics.SupersededTotal.Inc()
		v.log.WithFields(logrus.Fields{"keyword": keyword}).Debug("view.superseded")
		return ErrSuperseded
	}
	v.cancel = nil
	cancel()

	if err != nil {
		// stale results must not look current
		v.status = StatusFailed
		v.results = nil
		v.meta = search.Meta{}
		v.err = err
		v.log.WithError(err).WithField("keyword", keyword).Warn("view.search.failed")
	} else {
		v.status = StatusLoaded
		v.results, v.meta = []search.Item{}, search.Meta{}
		if res != nil {
			v.results, v.meta = res.Items, res.Meta
		}
	}
	st = v.snapshotLocked()
	v.mu.Unlock()
	v.notify(seq, st)
	return err
}

// Snapshot returns a copy of the current state.
func (v *SearchView) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Close cancels any search still in flight.
func (v *SearchView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.seq++
}

func (v *SearchView) snapshotLocked() State {
	var results []search.Item
	if v.results != nil {
		results = make([]search.Item, len(v.results))
		copy(results, v.results)
	}
	return State{
		Text:    v.text,
		Keyword: v.keyword,
		Status:  v.status,
		Meta:    v.meta,
		Results: results,
		Err:     v.err,
	}
}

// notify delivers st, taken during navigation seq, unless a newer navigation
// has already been delivered.
func (v *SearchView) notify(seq uint64, st State) {
	if v.onChange == nil {
		return
	}
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()
	if seq < v.notified {
		return
	}
	v.notified = seq
	v.onChange(st)
}
