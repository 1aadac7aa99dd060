package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/anbar/internal/tui/styles"
)

// SearchPlaceholder is shown while the search input is empty
const SearchPlaceholder = "نام کالا، کد سفارشی یا توضیحات..."

// SearchAction is what a key press in the search box asks the screen to do
type SearchAction int

const (
	SearchNone SearchAction = iota
	SearchChanged
	SearchSubmit
	SearchClear
	SearchFocusResults
)

// SearchBox is the query input of the search screen
type SearchBox struct {
	input     textinput.Model
	prevQuery string
	width     int
}

// NewSearchBox creates a focused search input
func NewSearchBox() SearchBox {
	ti := textinput.New()
	ti.Placeholder = SearchPlaceholder
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "🔍 "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.Focus()

	return SearchBox{input: ti}
}

// Focus gives the input the cursor
func (s *SearchBox) Focus() tea.Cmd {
	return s.input.Focus()
}

// Blur removes the cursor
func (s *SearchBox) Blur() {
	s.input.Blur()
}

// Focused reports whether the input has the cursor
func (s SearchBox) Focused() bool {
	return s.input.Focused()
}

// Value returns the raw text in the input
func (s SearchBox) Value() string {
	return s.input.Value()
}

// Reset empties the input without reporting a change
func (s *SearchBox) Reset() {
	s.input.SetValue("")
	s.prevQuery = ""
}

// SetWidth updates the input width
func (s *SearchBox) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-6, 10)
}

// Update handles key presses and reports what the screen should do
func (s SearchBox) Update(msg tea.Msg) (SearchBox, tea.Cmd, SearchAction) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && s.input.Focused() {
		switch {
		case key.Matches(keyMsg, SearchBoxKeys.Submit):
			return s, nil, SearchSubmit
		case key.Matches(keyMsg, SearchBoxKeys.Clear):
			s.Reset()
			return s, nil, SearchClear
		case key.Matches(keyMsg, SearchBoxKeys.Results):
			return s, nil, SearchFocusResults
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if current := s.input.Value(); current != s.prevQuery {
		s.prevQuery = current
		return s, cmd, SearchChanged
	}
	return s, cmd, SearchNone
}

// View renders the input inside a border that lights up when focused
func (s SearchBox) View() string {
	border := styles.InactiveBorder
	if s.input.Focused() {
		border = styles.ActiveBorder
	}
	if s.width > 0 {
		border = border.Width(max(s.width-2, 10))
	}
	return border.Render(s.input.View())
}
