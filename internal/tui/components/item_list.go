package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/anbar/internal/domain"
	"github.com/mmcdole/anbar/internal/service"
	"github.com/mmcdole/anbar/internal/tui/styles"
)

// Each item card takes two lines plus a blank separator
const itemCardHeight = 3

// ItemList is a scrollable, filterable list of item cards
type ItemList struct {
	items    []domain.Item
	filtered []domain.Item

	cursor int
	offset int

	width   int
	height  int
	focused bool

	filterActive bool
	filterInput  textinput.Model

	emptyTitle string
	emptyBody  string
}

// NewItemList creates an empty list. The empty texts are shown when it has no items.
func NewItemList(emptyTitle, emptyBody string) ItemList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.AccentStyle

	return ItemList{
		filterInput: ti,
		emptyTitle:  emptyTitle,
		emptyBody:   emptyBody,
		focused:     true,
	}
}

// SetItems replaces the list contents and re-applies any active filter
func (l *ItemList) SetItems(items []domain.Item) {
	l.items = items
	l.cursor = 0
	l.offset = 0
	l.applyFilter()
}

// Patch sets the available count of the item with the given ID, keeping the
// cursor in place. It reports whether the item is in the list.
func (l *ItemList) Patch(id int64, available float64) bool {
	idx := slices.IndexFunc(l.items, func(it domain.Item) bool { return it.ID == id })
	if idx < 0 {
		return false
	}

	items := slices.Clone(l.items)
	items[idx].AvailableCount = &available

	cursor, offset := l.cursor, l.offset
	l.items = items
	l.applyFilter()
	l.cursor = min(cursor, max(len(l.filtered)-1, 0))
	l.offset = offset
	l.ensureVisible()
	return true
}

// Items returns the visible (filtered) items
func (l ItemList) Items() []domain.Item {
	return l.filtered
}

// Len returns the number of visible items
func (l ItemList) Len() int {
	return len(l.filtered)
}

// SetSize updates the component dimensions
func (l *ItemList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.filterInput.Width = max(width-4, 10)
	l.ensureVisible()
}

// SetFocused controls whether key presses move the cursor
func (l *ItemList) SetFocused(focused bool) {
	l.focused = focused
}

// Focused reports whether the list has focus
func (l ItemList) Focused() bool {
	return l.focused
}

// Filtering reports whether the filter input is capturing keys
func (l ItemList) Filtering() bool {
	return l.filterActive && l.filterInput.Focused()
}

// FilterActive reports whether a filter is applied, typing or not
func (l ItemList) FilterActive() bool {
	return l.filterActive
}

// Cursor returns the selected index into Items
func (l ItemList) Cursor() int {
	return l.cursor
}

// AtTop reports whether the cursor is on the first item
func (l ItemList) AtTop() bool {
	return l.cursor == 0
}

// Selected returns the item under the cursor, or nil
func (l ItemList) Selected() *domain.Item {
	if l.cursor < 0 || l.cursor >= len(l.filtered) {
		return nil
	}
	item := l.filtered[l.cursor]
	return &item
}

// Update handles key presses. The bool result reports that Enter chose an item.
func (l ItemList) Update(msg tea.Msg) (ItemList, tea.Cmd, bool) {
	if !l.focused {
		return l, nil, false
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if l.Filtering() {
			var cmd tea.Cmd
			l.filterInput, cmd = l.filterInput.Update(msg)
			return l, cmd, false
		}
		return l, nil, false
	}

	if l.Filtering() {
		switch {
		case key.Matches(keyMsg, ListKeys.Escape):
			l.clearFilter()
			return l, nil, false
		case key.Matches(keyMsg, ListKeys.Enter):
			// Accept filter, keep it applied and return keys to navigation
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
		l.cursor = max(len(l.filtered)-1, 0)
		l.ensureVisible()
	case key.Matches(keyMsg, ListKeys.PageUp):
		l.move(-l.pageSize())
	case key.Matches(keyMsg, ListKeys.PageDown):
		l.move(l.pageSize())
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

func (l *ItemList) move(delta int) {
	if len(l.filtered) == 0 {
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), len(l.filtered)-1)
	l.ensureVisible()
}

// visibleCards returns how many cards fit, leaving room for the filter line
func (l ItemList) visibleCards() int {
	h := l.height
	if l.filterActive {
		h -= 2
	}
	return max(h/itemCardHeight, 1)
}

func (l ItemList) pageSize() int {
	return max(l.visibleCards()-1, 1)
}

func (l *ItemList) ensureVisible() {
	if l.height <= 0 {
		return
	}
	visible := l.visibleCards()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
}

func (l *ItemList) clearFilter() {
	l.filterActive = false
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.applyFilter()
}

func (l *ItemList) applyFilter() {
	query := ""
	if l.filterActive {
		query = l.filterInput.Value()
	}
	l.filtered = service.FilterItems(query, l.items)

	if l.cursor >= len(l.filtered) {
		l.cursor = max(len(l.filtered)-1, 0)
	}
	if query != "" {
		l.cursor = 0
		l.offset = 0
	}
	l.ensureVisible()
}

// View renders the list
func (l ItemList) View() string {
	var b strings.Builder

	if l.filterActive {
		b.WriteString(l.filterInput.View())
		b.WriteString("\n\n")
	}

	if len(l.filtered) == 0 {
		if l.filterActive && l.filterInput.Value() != "" {
			b.WriteString(styles.DimStyle.Render("No matches"))
			return b.String()
		}
		b.WriteString(EmptyState(l.emptyTitle, l.emptyBody, l.width))
		return b.String()
	}

	visible := l.visibleCards()
	end := min(l.offset+visible, len(l.filtered))
	for i := l.offset; i < end; i++ {
		b.WriteString(RenderItemCard(l.filtered[i], l.focused && i == l.cursor, l.width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	if len(l.filtered) > visible {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d/%d", l.cursor+1, len(l.filtered))))
	}

	return b.String()
}
