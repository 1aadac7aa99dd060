package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/anbar/internal/domain"
)

// Defaults for the search box
const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultMinQueryLength = 2
)

// Phase is the orchestrator state machine position
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePendingDebounce
	PhaseLoading
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePendingDebounce:
		return "pending"
	case PhaseLoading:
		return "loading"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Options configures an Orchestrator
type Options struct {
	Debounce       time.Duration
	MinQueryLength int
	Clock          Clock
	Logger         *slog.Logger
}

// Orchestrator owns one search session: the query text, the debounce timer,
// the in-flight request and the derived view state. All transitions happen
// under mu, so timer and fetch callbacks are applied one at a time.
type Orchestrator struct {
	fetch    domain.SearchFunc
	debounce time.Duration
	minLen   int
	clock    Clock
	logger   *slog.Logger

	mu    sync.Mutex
	state domain.SearchState
	phase Phase

	timer    Timer
	timerGen uint64

	// seq tags every outbound request; only the current one may commit
	seq      uint64
	inflight context.CancelFunc

	observers map[int]domain.SearchObserver
	nextObsID int
	closed    bool

	// notifyMu keeps observer deliveries in transition order
	notifyMu sync.Mutex
}

// NewOrchestrator creates an orchestrator that searches with fetch
func NewOrchestrator(fetch domain.SearchFunc, opts Options) *Orchestrator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		fetch:     fetch,
		debounce:  opts.Debounce,
		minLen:    opts.MinQueryLength,
		clock:     opts.Clock,
		logger:    opts.Logger,
		state:     domain.SearchState{Results: []domain.Item{}},
		observers: make(map[int]domain.SearchObserver),
	}
}

// State returns a snapshot of the current view state
func (o *Orchestrator) State() domain.SearchState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Phase returns the current state machine position
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Subscribe registers an observer and returns a function that removes it
func (o *Orchestrator) Subscribe(obs domain.SearchObserver) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return func() {}
	}
	id := o.nextObsID
	o.nextObsID++
	o.observers[id] = obs
	return func() {
		o.mu.Lock()
		delete(o.observers, id)
		o.mu.Unlock()
	}
}

// SetQuery updates the query and restarts the debounce timer.
// An empty (after trimming) query clears the results immediately.
func (o *Orchestrator) SetQuery(text string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}

	o.state.Query = text
	o.stopTimerLocked()
	o.supersedeLocked()

	if strings.TrimSpace(text) == "" {
		o.state.Results = []domain.Item{}
		o.state.HasSearched = false
		o.state.Error = ""
		o.phase = PhaseIdle
		o.commitLocked()
		return
	}

	o.phase = PhasePendingDebounce
	o.timerGen++
	gen := o.timerGen
	o.timer = o.clock.AfterFunc(o.debounce, func() { o.fire(gen) })
	o.commitLocked()
}

// Search runs the current query immediately, bypassing the debounce.
// Queries shorter than the minimum length are ignored.
func (o *Orchestrator) Search() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if !o.validLocked() {
		o.mu.Unlock()
		o.logger.Debug("search skipped", "reason", domain.ErrQueryTooShort)
		return
	}
	o.stopTimerLocked()
	launch := o.startLocked()
	o.commitLocked()
	launch()
}

// Clear resets the session to an empty query with no results
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}

	before := o.state
	wasIdle := o.phase == PhaseIdle

	o.stopTimerLocked()
	o.supersedeLocked()
	o.state = domain.SearchState{Results: []domain.Item{}}
	o.phase = PhaseIdle

	if wasIdle && before.Query == "" && len(before.Results) == 0 &&
		!before.HasSearched && !before.Loading && before.Error == "" {
		o.mu.Unlock()
		return
	}
	o.commitLocked()
}

// Close tears the session down. Pending timers are stopped, in-flight
// requests cancelled, observers dropped; later calls do nothing.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.stopTimerLocked()
	o.supersedeLocked()
	o.observers = nil
}

// fire runs when the debounce timer elapses
func (o *Orchestrator) fire(gen uint64) {
	o.mu.Lock()
	if o.closed || gen != o.timerGen || o.timer == nil {
		// Stopped after the callback was already scheduled
		o.mu.Unlock()
		return
	}
	o.timer = nil

	if !o.validLocked() {
		o.phase = PhaseIdle
		o.mu.Unlock()
		o.logger.Debug("debounced search skipped", "reason", domain.ErrQueryTooShort)
		return
	}

	launch := o.startLocked()
	o.commitLocked()
	launch()
}

// startLocked marks the session loading and returns the function that
// performs the request. The caller runs it after releasing the lock.
func (o *Orchestrator) startLocked() func() {
	o.supersedeLocked()

	o.seq++
	token := o.seq
	query := strings.TrimSpace(o.state.Query)

	ctx, cancel := context.WithCancel(context.Background())
	o.inflight = cancel

	o.state.Loading = true
	o.state.HasSearched = true
	o.state.Error = ""
	o.phase = PhaseLoading

	o.logger.Debug("search started", "query", query, "seq", token)

	return func() {
		go func() {
			items, err := o.fetch(ctx, query)
			o.complete(token, query, items, err)
		}()
	}
}

// complete commits a finished request unless it has been superseded
func (o *Orchestrator) complete(token uint64, query string, items []domain.Item, err error) {
	o.mu.Lock()
	if o.closed || token != o.seq || !o.state.Loading {
		o.mu.Unlock()
		o.logger.Debug("discarding stale search result", "query", query, "seq", token)
		return
	}

	if o.inflight != nil {
		o.inflight()
		o.inflight = nil
	}

	o.state.Loading = false
	o.phase = PhaseSettled
	if err != nil {
		o.logger.Warn("search failed", "query", query, "error", err)
		o.state.Results = []domain.Item{}
		o.state.Error = ErrorMessage(err)
	} else {
		if items == nil {
			items = []domain.Item{}
		}
		o.state.Results = items
		o.state.Error = ""
		o.logger.Debug("search complete", "query", query, "results", len(items))
	}
	o.commitLocked()
}

// supersedeLocked invalidates any in-flight request
func (o *Orchestrator) supersedeLocked() {
	if o.inflight != nil {
		o.inflight()
		o.inflight = nil
	}
	if o.state.Loading {
		o.seq++
		o.state.Loading = false
	}
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.timerGen++
}

func (o *Orchestrator) validLocked() bool {
	return utf8.RuneCountInString(strings.TrimSpace(o.state.Query)) >= o.minLen
}

// commitLocked releases mu and notifies observers of the new state.
// notifyMu is taken before mu is released so deliveries keep their order.
func (o *Orchestrator) commitLocked() {
	snapshot := o.state.Clone()
	observers := make([]domain.SearchObserver, 0, len(o.observers))
	for _, obs := range o.observers {
		observers = append(observers, obs)
	}

	o.notifyMu.Lock()
	o.mu.Unlock()
	defer o.notifyMu.Unlock()

	for _, obs := range observers {
		obs.OnSearchState(snapshot.Clone())
	}
}

// ErrorMessage turns a fetch error into the text shown to the user
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrServerOffline):
		return "Could not reach the warehouse server"
	case errors.Is(err, domain.ErrAuthFailed):
		return "Access denied, reopen the app from Telegram"
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many searches, try again in a moment"
	case errors.Is(err, context.DeadlineExceeded):
		return "The search timed out"
	default:
		return "Search failed: " + err.Error()
	}
}
