package domain

import "context"

// SearchFunc fetches items matching a query. It is the only thing the
// search orchestrator knows about the backend.
type SearchFunc func(ctx context.Context, query string) ([]Item, error)

// SearchState is the view state of one search session
type SearchState struct {
	Query       string
	Results     []Item
	Loading     bool
	HasSearched bool
	Error       string
}

// Clone returns a copy that does not share the results slice
func (s SearchState) Clone() SearchState {
	c := s
	if s.Results != nil {
		c.Results = make([]Item, len(s.Results))
		copy(c.Results, s.Results)
	}
	return c
}

// SearchObserver receives a snapshot after every search state change.
// Implementations must not call back into the orchestrator synchronously.
type SearchObserver interface {
	OnSearchState(state SearchState)
}

// SearchObserverFunc adapts a function to SearchObserver
type SearchObserverFunc func(SearchState)

func (f SearchObserverFunc) OnSearchState(state SearchState) { f(state) }
