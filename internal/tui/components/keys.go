package components

import "github.com/charmbracelet/bubbles/key"

// ListKeyMap defines key bindings for scrollable lists
type ListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Escape   key.Binding
	Enter    key.Binding
	Filter   key.Binding
}

// DefaultListKeyMap returns the default list key bindings
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
	}
}

// SearchBoxKeyMap defines key bindings while the search input has focus
type SearchBoxKeyMap struct {
	Submit  key.Binding
	Clear   key.Binding
	Results key.Binding
}

// DefaultSearchBoxKeyMap returns the default search box key bindings
func DefaultSearchBoxKeyMap() SearchBoxKeyMap {
	return SearchBoxKeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search now"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Results: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "results"),
		),
	}
}

// DetailKeyMap defines key bindings on the item detail screen
type DetailKeyMap struct {
	Back      key.Binding
	EditStock key.Binding
	OpenImage key.Binding
	OpenVideo key.Binding
}

// DefaultDetailKeyMap returns the default item detail key bindings
func DefaultDetailKeyMap() DetailKeyMap {
	return DetailKeyMap{
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "h"),
			key.WithHelp("esc", "back"),
		),
		EditStock: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit stock"),
		),
		OpenImage: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open image"),
		),
		OpenVideo: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "open video"),
		),
	}
}

// Package-level key map instances
var (
	ListKeys      = DefaultListKeyMap()
	SearchBoxKeys = DefaultSearchBoxKeyMap()
	DetailKeys    = DefaultDetailKeyMap()
)
