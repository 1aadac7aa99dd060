package tui

import "github.com/mmcdole/anbar/internal/domain"

// ChannelObserver adapts domain.SearchObserver to a channel for Bubble Tea.
// The channel should have a buffer of one; when the UI hasn't picked up the
// previous snapshot yet it is replaced, so the reader always sees the latest.
type ChannelObserver struct {
	ch chan domain.SearchState
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan domain.SearchState) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnSearchState pushes the snapshot without blocking the orchestrator.
func (o *ChannelObserver) OnSearchState(state domain.SearchState) {
	for {
		select {
		case o.ch <- state:
			return
		default:
		}
		// Full: drop the stale snapshot and retry
		select {
		case <-o.ch:
		default:
		}
	}
}
