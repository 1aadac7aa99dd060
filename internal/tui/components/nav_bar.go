package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/anbar/internal/tui/styles"
)

// NavBar renders the bottom navigation with numbered tabs
func NavBar(tabs []string, active, width int) string {
	parts := make([]string, len(tabs))
	for i, tab := range tabs {
		label := fmt.Sprintf("%d %s", i+1, tab)
		if i == active {
			parts[i] = styles.NavActiveStyle.Render(label)
		} else {
			parts[i] = styles.NavItemStyle.Render(label)
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	style := styles.NavBarStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(bar)
}

// HelpLine renders "key desc" pairs separated by dots
func HelpLine(pairs ...string) string {
	var items []string
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, styles.HelpKeyStyle.Render(pairs[i])+" "+styles.HelpDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(items, styles.HelpDescStyle.Render(" · "))
}
