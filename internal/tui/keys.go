package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application-wide key bindings
type KeyMap struct {
	NextScreen key.Binding
	PrevScreen key.Binding
	Home       key.Binding
	Search     key.Binding
	LowStock   key.Binding
	Brands     key.Binding
	Categories key.Binding
	Back       key.Binding
	Refresh    key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextScreen: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next screen"),
		),
		PrevScreen: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous screen"),
		),
		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		Search: key.NewBinding(
			key.WithKeys("2", "s"),
			key.WithHelp("2/s", "search"),
		),
		LowStock: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "low stock"),
		),
		Brands: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "brands"),
		),
		Categories: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "categories"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

var keys = DefaultKeyMap()
