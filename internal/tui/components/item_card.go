package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/anbar/internal/domain"
	"github.com/mmcdole/anbar/internal/tui/styles"
)

// Badge labels
const (
	LowStockLabel   = "کم موجودی"
	OutOfStockLabel = "ناموجود"
)

// StockBadge returns the rendered stock badge for an item, or "" when stock is fine
func StockBadge(item domain.Item) string {
	switch {
	case item.IsOutOfStock():
		return styles.OutOfStockBadge.Render(OutOfStockLabel)
	case item.IsLowStock():
		return styles.LowStockBadge.Render(LowStockLabel)
	}
	return ""
}

// RenderItemCard renders an item as two lines: name with badges, then
// breadcrumb and stock count
func RenderItemCard(item domain.Item, selected bool, width int) string {
	badges := make([]string, 0, 2)
	if code := item.DisplayCode(); code != "" {
		badges = append(badges, styles.CodeBadge.Render(code))
	}
	if badge := StockBadge(item); badge != "" {
		badges = append(badges, badge)
	}
	badgeStr := strings.Join(badges, " ")

	nameWidth := width - lipgloss.Width(badgeStr) - 4
	name := styles.Truncate(item.Name, max(nameWidth, 8))

	titleStyle := styles.NormalItemStyle.Foreground(styles.White)
	if selected {
		titleStyle = styles.SelectedItemStyle
	}
	title := titleStyle.Render(name)
	if badgeStr != "" {
		title += " " + badgeStr
	}

	var meta []string
	if crumb := item.Breadcrumb(); crumb != "" {
		meta = append(meta, crumb)
	}
	if count := item.FormattedCount(); count != "" {
		meta = append(meta, count)
	}
	subtitle := styles.NormalItemStyle.Foreground(styles.DimGray).
		Render(styles.Truncate(strings.Join(meta, " · "), max(width-2, 8)))

	if selected {
		marker := styles.AccentStyle.Render("▌")
		return marker + title + "\n" + marker + subtitle
	}
	return " " + title + "\n " + subtitle
}

// EmptyState renders a centered title and explanation
func EmptyState(title, body string, width int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render(title),
		"",
		styles.SubtitleStyle.Render(body),
	)
	style := styles.EmptyStateStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(content)
}
