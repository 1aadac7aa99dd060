package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/anbar/internal/adapter/api"
	"github.com/mmcdole/anbar/internal/domain"
)

// fakeClock runs callbacks only when the test advances it
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// fakeFetcher records queries; gated queries block until released
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]domain.Item
	err     error
	gates   map[string]chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		results: make(map[string][]domain.Item),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeFetcher) gate(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeFetcher) Fetch(ctx context.Context, query string) ([]domain.Item, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	items := f.results[query]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return items, err
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestOrchestrator(f *fakeFetcher) (*Orchestrator, *fakeClock) {
	clock := &fakeClock{}
	o := NewOrchestrator(f.Fetch, Options{Clock: clock})
	return o, clock
}

func waitSettled(t *testing.T, o *Orchestrator) domain.SearchState {
	t.Helper()
	require.Eventually(t, func() bool {
		return o.Phase() == PhaseSettled
	}, time.Second, 5*time.Millisecond)
	return o.State()
}

func TestSetQuery_BelowMinimumLengthIssuesNoRequest(t *testing.T) {
	f := newFakeFetcher()
	o, clock := newTestOrchestrator(f)

	o.SetQuery("a")
	assert.Equal(t, PhasePendingDebounce, o.Phase())

	clock.Advance(DefaultDebounce)

	assert.Empty(t, f.Calls())
	assert.Equal(t, PhaseIdle, o.Phase())
	state := o.State()
	assert.False(t, state.Loading)
	assert.False(t, state.HasSearched)
}

func TestSetQuery_DebouncedSearch(t *testing.T) {
	f := newFakeFetcher()
	f.results["ab"] = []domain.Item{{ID: 1, Name: "Widget"}}
	o, clock := newTestOrchestrator(f)

	o.SetQuery("ab")
	clock.Advance(DefaultDebounce - time.Millisecond)
	assert.Empty(t, f.Calls(), "no request before the quiet period")

	clock.Advance(time.Millisecond)
	state := waitSettled(t, o)

	assert.Equal(t, []string{"ab"}, f.Calls())
	require.Len(t, state.Results, 1)
	assert.Equal(t, int64(1), state.Results[0].ID)
	assert.False(t, state.Loading)
	assert.True(t, state.HasSearched)
	assert.Empty(t, state.Error)
}

func TestSetQuery_CoalescesRapidInput(t *testing.T) {
	f := newFakeFetcher()
	o, clock := newTestOrchestrator(f)

	for _, q := range []string{"w", "wi", "wid", "widg", "widget"} {
		o.SetQuery(q)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, f.Calls())
	assert.Equal(t, 1, clock.Pending(), "previous timers are stopped, not left running")

	clock.Advance(DefaultDebounce)
	waitSettled(t, o)

	assert.Equal(t, []string{"widget"}, f.Calls())
}

func TestSetQuery_TrimsQuery(t *testing.T) {
	f := newFakeFetcher()
	o, clock := newTestOrchestrator(f)

	o.SetQuery("  ab  ")
	clock.Advance(DefaultDebounce)
	waitSettled(t, o)

	assert.Equal(t, []string{"ab"}, f.Calls())
	assert.Equal(t, "  ab  ", o.State().Query)
}

func TestSetQuery_CountsRunesNotBytes(t *testing.T) {
	f := newFakeFetcher()
	o, clock := newTestOrchestrator(f)

	// One Persian letter is two bytes but a single character
	o.SetQuery("ک")
	clock.Advance(DefaultDebounce)
	assert.Empty(t, f.Calls())

	o.SetQuery("کا")
	clock.Advance(DefaultDebounce)
	waitSettled(t, o)
	assert.Equal(t, []string{"کا"}, f.Calls())
}

func TestSetQuery_EmptyBeforeTimerFires(t *testing.T) {
	f := newFakeFetcher()
	o, clock := newTestOrchestrator(f)

	o.SetQuery("ab")
	o.SetQuery("")
	assert.Equal(t, PhaseIdle, o.Phase())
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Second)

	assert.Empty(t, f.Calls())
	state := o.State()
	assert.Empty(t, state.Results)
	assert.NotNil(t, state.Results)
	assert.False(t, state.HasSearched)
}

func TestSetQuery_EmptyClearsPreviousResults(t *testing.T) {
	f := newFakeFetcher()
	f.results["ab"] = []domain.Item{{ID: 1, Name: "Widget"}}
	o, clock := newTestOrchestrator(f)

	o.SetQuery("ab")
	clock.Advance(DefaultDebounce)
	waitSettled(t, o)

	o.SetQuery("   ")
	state := o.State()
	assert.Empty(t, state.Results)
	assert.False(t, state.HasSearched)
	assert.Equal(t, PhaseIdle, o.Phase())
}

func TestSetQuery_ShortQueryKeepsPriorResults(t *testing.T) {
	f := newFakeFetcher()
	f.results["ab"] = []domain.Item{{ID: 1, Name: "Widget"}}
	o, clock := newTestOrchestrator(f)

	o.SetQuery("ab")
	clock.Advance(DefaultDebounce)
	waitSettled(t, o)

	o.SetQuery("a")
	clock.Advance(DefaultDebounce)

	assert.Equal(t, PhaseIdle, o.Phase())
	assert.Len(t, o.State().Results, 1)
	assert.Equal(t, []string{"ab"}, f.Calls())
}

func TestSearch_BelowMinimumLengthIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "whitespace", query: "    "},
		{name: "one_char", query: "x"},
		{name: "one_char_padded", query: " x "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			o, _ := newTestOrchestrator(f)

			o.SetQuery(tt.query)
			before := o.State()
			o.Search()

			assert.Empty(t, f.Calls())
			assert.Equal(t, before, o.State())
		})
	}
}

func TestSearch_BypassesDebounce(t *testing.T) {
	f := newFakeFetcher()
	f.results["bolt"] = []domain.Item{{ID: 7, Name: "Bolt M8"}}
	o, clock := newTestOrchestrator(f)

	o.SetQuery("bolt")
	o.Search()
	state := waitSettled(t, o)

	assert.Equal(t, []string{"bolt"}, f.Calls())
	assert.Len(t, state.Results, 1)

	// The pending debounce was consumed by the manual search
	clock.Advance(DefaultDebounce)
	assert.Equal(t, []string{"bolt"}, f.Calls())
}

func TestSearch_SetsLoadingWhileInFlight(t *testing.T) {
	f := newFakeFetcher()
	gate := f.gate("ab")
	o, _ := newTestOrchestrator(f)

	o.SetQuery("ab")
	o.Search()

	state := o.State()
	assert.True(t, state.Loading)
	assert.True(t, state.HasSearched)
	assert.Equal(t, PhaseLoading, o.Phase())

	close(gate)
	state = waitSettled(t, o)
	assert.False(t, state.Loading)
}

func TestSupersession_LateResultIsDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.results["xx"] = []domain.Item{{ID: 1, Name: "from x"}}
	f.results["yy"] = []domain.Item{{ID: 2, Name: "from y"}}
	gateX := f.gate("xx")
	gateY := f.gate("yy")
	o, clock := newTestOrchestrator(f)

	o.SetQuery("xx")
	clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(f.Calls()) == 1 }, time.Second, time.Millisecond)

	o.SetQuery("yy")
	assert.False(t, o.State().Loading, "loading only tracks a request for the current query")
	clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(f.Calls()) == 2 }, time.Second, time.Millisecond)

	close(gateY)
	state := waitSettled(t, o)
	require.Len(t, state.Results, 1)
	assert.Equal(t, int64(2), state.Results[0].ID)

	close(gateX)
	assert.Never(t, func() bool {
		st := o.State()
		return len(st.Results) != 1 || st.Results[0].ID != 2
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestSupersession_CancelsInFlightContext(t *testing.T) {
	cancelled := make(chan struct{})
	fetch := func(ctx context.Context, query string) ([]domain.Item, error) {
		if query == "slow" {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return []domain.Item{{ID: 3}}, nil
	}
	clock := &fakeClock{}
	o := NewOrchestrator(fetch, Options{Clock: clock})

	o.SetQuery("slow")
	o.Search()
	o.SetQuery("fast")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight request was not cancelled")
	}

	clock.Advance(DefaultDebounce)
	state := waitSettled(t, o)
	assert.Empty(t, state.Error, "the cancelled request must not surface an error")
	assert.Len(t, state.Results, 1)
}

func TestFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "offline", err: domain.ErrServerOffline, want: "Could not reach the warehouse server"},
		{name: "auth", err: fmt.Errorf("search: %w", domain.ErrAuthFailed), want: "Access denied, reopen the app from Telegram"},
		{name: "other", err: errors.New("boom"), want: "Search failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			f.results["ab"] = []domain.Item{{ID: 1}}
			o, clock := newTestOrchestrator(f)

			o.SetQuery("ab")
			clock.Advance(DefaultDebounce)
			waitSettled(t, o)

			f.mu.Lock()
			f.err = tt.err
			f.results["abc"] = []domain.Item{{ID: 9}}
			f.mu.Unlock()

			o.SetQuery("abc")
			clock.Advance(DefaultDebounce)
			require.Eventually(t, func() bool {
				return o.Phase() == PhaseSettled && o.State().Error != ""
			}, time.Second, 5*time.Millisecond)

			state := o.State()
			assert.Empty(t, state.Results)
			assert.NotNil(t, state.Results)
			assert.False(t, state.Loading)
			assert.Equal(t, tt.want, state.Error)
		})
	}
}

func TestClear(t *testing.T) {
	f := newFakeFetcher()
	f.results["ab"] = []domain.Item{{ID: 1}}
	o, clock := newTestOrchestrator(f)

	o.SetQuery("ab")
	clock.Advance(DefaultDebounce)
	waitSettled(t, o)

	o.SetQuery("abc")
	o.Clear()
	assert.Zero(t, clock.Pending())

	once := o.State()
	assert.Equal(t, "", once.Query)
	assert.Empty(t, once.Results)
	assert.False(t, once.HasSearched)
	assert.Equal(t, PhaseIdle, o.Phase())

	var notified int
	unsubscribe := o.Subscribe(domain.SearchObserverFunc(func(domain.SearchState) { notified++ }))
	defer unsubscribe()

	o.Clear()
	assert.Equal(t, once, o.State())
	assert.Zero(t, notified, "second clear changes nothing")

	clock.Advance(time.Second)
	assert.Equal(t, []string{"ab"}, f.Calls())
}

func TestClear_DiscardsInFlightResult(t *testing.T) {
	f := newFakeFetcher()
	f.results["ab"] = []domain.Item{{ID: 1}}
	gate := f.gate("ab")
	o, _ := newTestOrchestrator(f)

	o.SetQuery("ab")
	o.Search()
	o.Clear()
	close(gate)

	assert.Never(t, func() bool {
		return len(o.State().Results) > 0
	}, 100*time.Millisecond, 5*time.Millisecond)
	assert.False(t, o.State().HasSearched)
}

func TestClose_StopsTimerAndIgnoresLaterCalls(t *testing.T) {
	f := newFakeFetcher()
	o, clock := newTestOrchestrator(f)

	var notified int
	o.Subscribe(domain.SearchObserverFunc(func(domain.SearchState) { notified++ }))

	o.SetQuery("ab")
	o.Close()
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Second)
	o.SetQuery("abc")
	o.Search()
	clock.Advance(time.Second)

	assert.Empty(t, f.Calls())
	assert.Equal(t, 1, notified)
}

func TestSubscribe_DeliversTransitionsInOrder(t *testing.T) {
	f := newFakeFetcher()
	f.results["ab"] = []domain.Item{{ID: 1}}
	o, clock := newTestOrchestrator(f)

	var mu sync.Mutex
	var seen []domain.SearchState
	o.Subscribe(domain.SearchObserverFunc(func(s domain.SearchState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))

	o.SetQuery("ab")
	clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, seen[0].Loading)
	assert.True(t, seen[1].Loading)
	assert.False(t, seen[2].Loading)
	assert.Len(t, seen[2].Results, 1)
}

func TestUnsubscribe(t *testing.T) {
	o, _ := newTestOrchestrator(newFakeFetcher())

	var notified int
	unsubscribe := o.Subscribe(domain.SearchObserverFunc(func(domain.SearchState) { notified++ }))
	o.SetQuery("a")
	unsubscribe()
	o.SetQuery("ab")

	assert.Equal(t, 1, notified)
}

func TestOrchestrator_RealClockAndAPIClient(t *testing.T) {
	var mu sync.Mutex
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.URL.RequestURI())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":1,"name":"Widget"}],"total":1}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, "/api")
	o := NewOrchestrator(client.SearchItems, Options{Debounce: 20 * time.Millisecond})
	defer o.Close()

	o.SetQuery("a")
	o.SetQuery("ab")
	state := waitSettled(t, o)

	mu.Lock()
	assert.Equal(t, []string{"/api/items/search?q=ab"}, requests)
	mu.Unlock()

	require.Len(t, state.Results, 1)
	assert.Equal(t, int64(1), state.Results[0].ID)
	assert.Equal(t, "Widget", state.Results[0].Name)
	assert.False(t, state.Loading)
	assert.True(t, state.HasSearched)
}
