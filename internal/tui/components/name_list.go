package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/anbar/internal/domain"
	"github.com/mmcdole/anbar/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Entry is one row of a NameList
type Entry struct {
	ID   int64
	Name string
	Note string // dimmed after the name, e.g. a code
}

// BrandEntries maps brands to list rows
func BrandEntries(brands []domain.Brand) []Entry {
	out := make([]Entry, len(brands))
	for i, b := range brands {
		out[i] = Entry{ID: b.ID, Name: b.Name, Note: b.Code}
	}
	return out
}

// CategoryEntries maps categories to list rows
func CategoryEntries(categories []domain.Category) []Entry {
	out := make([]Entry, len(categories))
	for i, c := range categories {
		out[i] = Entry{ID: c.ID, Name: c.Name, Note: c.Code}
	}
	return out
}

// SubcategoryEntries maps subcategories to list rows, after any leading rows
func SubcategoryEntries(subs []domain.Subcategory, leading ...Entry) []Entry {
	out := append(make([]Entry, 0, len(leading)+len(subs)), leading...)
	for _, s := range subs {
		out = append(out, Entry{ID: s.ID, Name: s.Name, Note: s.Code})
	}
	return out
}

// NameList is a scrollable, fuzzy-filterable list of named entries
type NameList struct {
	entries     []Entry
	filteredIdx []int // indices into entries; nil when unfiltered

	cursor int
	offset int
	height int
	width  int

	filterActive bool
	filterInput  textinput.Model

	emptyText string
}

// NewNameList creates an empty list showing emptyText when it has no entries
func NewNameList(emptyText string) NameList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.AccentStyle
	return NameList{filterInput: ti, emptyText: emptyText}
}

// SetEntries replaces the list contents
func (l *NameList) SetEntries(entries []Entry) {
	l.entries = entries
	l.cursor = 0
	l.offset = 0
	l.applyFilter()
}

// SetSize updates the component dimensions
func (l *NameList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.ensureVisible()
}

// Len returns the number of visible entries
func (l NameList) Len() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.entries)
}

// Filtering reports whether the filter input is capturing keys
func (l NameList) Filtering() bool {
	return l.filterActive && l.filterInput.Focused()
}

// FilterActive reports whether a filter is applied
func (l NameList) FilterActive() bool {
	return l.filterActive
}

func (l NameList) at(i int) Entry {
	if l.filteredIdx != nil {
		return l.entries[l.filteredIdx[i]]
	}
	return l.entries[i]
}

// Selected returns the entry under the cursor, or nil
func (l NameList) Selected() *Entry {
	if l.cursor < 0 || l.cursor >= l.Len() {
		return nil
	}
	e := l.at(l.cursor)
	return &e
}

// Update handles key presses. The bool result reports that Enter chose an entry.
func (l NameList) Update(msg tea.Msg) (NameList, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil, false
	}

	if l.Filtering() {
		switch {
		case key.Matches(keyMsg, ListKeys.Escape):
			l.clearFilter()
			return l, nil, false
		case key.Matches(keyMsg, ListKeys.Enter):
			l.filterInput.Blur()
			return l, nil, false
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(keyMsg)
		l.applyFilter()
		return l, cmd, false
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Up):
		l.move(-1)
	case key.Matches(keyMsg, ListKeys.Down):
		l.move(1)
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
		l.ensureVisible()
	case key.Matches(keyMsg, ListKeys.End):
		l.cursor = max(l.Len()-1, 0)
		l.ensureVisible()
	case key.Matches(keyMsg, ListKeys.PageUp):
		l.move(-max(l.maxVisible()-1, 1))
	case key.Matches(keyMsg, ListKeys.PageDown):
		l.move(max(l.maxVisible()-1, 1))
	case key.Matches(keyMsg, ListKeys.Filter):
		l.filterActive = true
		return l, l.filterInput.Focus(), false
	case key.Matches(keyMsg, ListKeys.Escape):
		if l.filterActive {
			l.clearFilter()
		}
	case key.Matches(keyMsg, ListKeys.Enter):
		return l, nil, l.Selected() != nil
	}
	return l, nil, false
}

func (l *NameList) move(delta int) {
	if l.Len() == 0 {
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), l.Len()-1)
	l.ensureVisible()
}

func (l NameList) maxVisible() int {
	h := l.height
	if l.filterActive {
		h -= 2
	}
	return max(h, 1)
}

func (l *NameList) ensureVisible() {
	if l.height <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible() {
		l.offset = l.cursor - l.maxVisible() + 1
	}
}

func (l *NameList) clearFilter() {
	l.filterActive = false
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.applyFilter()
}

func (l *NameList) applyFilter() {
	query := ""
	if l.filterActive {
		query = l.filterInput.Value()
	}
	if query == "" {
		l.filteredIdx = nil
		l.cursor = min(l.cursor, max(len(l.entries)-1, 0))
		return
	}

	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = strings.ToLower(e.Name)
	}

	matches := fuzzy.Find(strings.ToLower(query), names)
	l.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
	}

	l.cursor = 0
	l.offset = 0
}

// View renders the list
func (l NameList) View() string {
	var b strings.Builder

	if l.filterActive {
		b.WriteString(l.filterInput.View())
		b.WriteString("\n\n")
	}

	if l.Len() == 0 {
		b.WriteString(styles.DimStyle.Render(l.emptyText))
		return b.String()
	}

	end := min(l.offset+l.maxVisible(), l.Len())
	for i := l.offset; i < end; i++ {
		e := l.at(i)
		if i == l.cursor {
			b.WriteString(styles.SelectedItemStyle.Render(styles.Pad(e.Name, max(l.width-4, 0))))
		} else {
			label := e.Name
			if e.Note != "" {
				label += "  " + styles.DimStyle.Render(e.Note)
			}
			b.WriteString(styles.NormalItemStyle.Render(label))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
