package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/anbar/internal/domain"
	"github.com/mmcdole/anbar/internal/tui/components"
	"github.com/mmcdole/anbar/internal/tui/styles"
)

// Home screen texts
const (
	welcomeTitle    = "خوش آمدید"
	welcomeBody     = "به سیستم مدیریت انبار بازار دقیق"
	labelTotalItems = "کل کالاها"
	labelLowStock   = "کم موجودی"
	labelCategories = "دسته‌بندی‌ها"
	labelBrands     = "برندها"
	thresholdsLabel = "آستانه کم موجودی: "
	searchingText   = "در حال جستجو..."
	loadingText     = "در حال بارگذاری..."
)

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	body := m.renderBody()
	if m.stockModal.IsVisible() {
		body = lipgloss.Place(m.width-4, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.stockModal.View())
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.ScreenStyle.Padding(0, 2).Render(body),
		components.NavBar(screenTabs, int(m.screen), m.width),
		" "+m.renderHelp(),
	)
}

func (m Model) renderHeader() string {
	title := styles.AccentStyle.Bold(true).Render("انبار")
	status := ""
	if m.status != "" {
		if m.statusIsErr {
			status = styles.ErrorStyle.Render(m.status)
		} else {
			status = styles.SuccessStyle.Render(m.status)
		}
	}
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(status)-4, 1)
	return "  " + title + strings.Repeat(" ", gap) + status + "\n"
}

func (m Model) renderBody() string {
	if m.detail != nil {
		return m.renderDetail()
	}

	switch m.screen {
	case ScreenSearch:
		return m.renderSearch()
	case ScreenLowStock:
		return m.renderLowStock()
	case ScreenBrands:
		return m.renderBrands()
	case ScreenCategories:
		return m.renderCategories()
	default:
		return m.renderHome()
	}
}

func (m Model) renderHome() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(welcomeTitle))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(welcomeBody))
	b.WriteString("\n\n")

	if m.stats == nil {
		if m.statsLoading {
			b.WriteString(m.spinner.View() + " " + styles.DimStyle.Render(loadingText))
		}
		return b.String()
	}

	lowValue := styles.StatValueStyle
	if m.stats.LowStockItems > 0 {
		lowValue = styles.StatWarnValueStyle
	}

	cards := []string{
		statCard(labelTotalItems, styles.StatValueStyle.Render(strconv.Itoa(m.stats.TotalItems))),
		statCard(labelLowStock, lowValue.Render(strconv.Itoa(m.stats.LowStockItems))),
		statCard(labelCategories, styles.StatValueStyle.Render(strconv.Itoa(m.stats.TotalCategories))),
		statCard(labelBrands, styles.StatValueStyle.Render(strconv.Itoa(m.stats.TotalBrands))),
	}

	// Two per row on narrow terminals
	if m.width < 4*26 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1]))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3]))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return b.String()
}

func statCard(label, value string) string {
	return styles.StatCardStyle.Render(styles.DimStyle.Render(label) + "\n" + value)
}

func (m Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.searchBox.View())
	b.WriteString("\n\n")

	state := m.searchState
	switch {
	case state.Error != "":
		b.WriteString(styles.ErrorStyle.Render(state.Error))
	case state.Loading:
		b.WriteString(m.spinner.View() + " " + styles.DimStyle.Render(searchingText))
	case !state.HasSearched && len(state.Results) == 0:
		b.WriteString(components.EmptyState(noSearchTitle, noSearchBody, m.width-4))
	default:
		// The list renders the no-results state itself
		b.WriteString(m.searchResults.View())
	}
	return b.String()
}

func (m Model) renderLowStock() string {
	if m.lowStockLoading && !m.lowStockLoaded {
		return m.spinner.View() + " " + styles.DimStyle.Render(loadingText)
	}
	return thresholdLine(m.measureTypes) + "\n\n" + m.lowStock.View()
}

// thresholdLine lists each unit's low-stock threshold, e.g. "عدد ≤ 5 · متر ≤ 10"
func thresholdLine(types []domain.MeasureType) string {
	if len(types) == 0 {
		return styles.DimStyle.Render(thresholdsLabel + "-")
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.Name + " ≤ " + strconv.FormatFloat(t.LowStockThreshold, 'f', -1, 64)
	}
	return styles.DimStyle.Render(thresholdsLabel + strings.Join(parts, " · "))
}

func (m Model) renderBrands() string {
	if m.brand != nil {
		header := styles.TitleStyle.Render(m.brand.Name) + "\n\n"
		if m.brandItemsLoading {
			return header + m.spinner.View() + " " + styles.DimStyle.Render(loadingText)
		}
		return header + m.brandItems.View()
	}
	if m.brandsLoading && !m.brandsLoaded {
		return m.spinner.View() + " " + styles.DimStyle.Render(loadingText)
	}
	return m.brands.View()
}

func (m Model) renderCategories() string {
	loading := m.spinner.View() + " " + styles.DimStyle.Render(loadingText)

	switch {
	case m.subcategory != nil:
		header := styles.TitleStyle.Render(m.category.Name+" › "+m.subcategory.Name) + "\n\n"
		if m.subcategory.ID == 0 {
			header = styles.TitleStyle.Render(m.subcategory.Name) + "\n\n"
		}
		if m.categoryItemsLoading {
			return header + loading
		}
		return header + m.categoryItems.View()

	case m.category != nil:
		header := styles.TitleStyle.Render(m.category.Name) + "\n\n"
		if m.subcategoriesLoading {
			return header + loading
		}
		return header + m.subcategories.View()
	}

	if m.categoriesLoading && !m.categoriesLoaded {
		return loading
	}
	return m.categories.View()
}

func (m Model) renderDetail() string {
	out := components.RenderItemDetail(*m.detail, m.apiBase, m.width-4)
	if m.detailLoading {
		out += "\n" + m.spinner.View()
	}
	return out
}

func (m Model) renderHelp() string {
	switch {
	case m.stockModal.IsVisible():
		return components.HelpLine("enter", "save", "esc", "cancel")
	case m.detail != nil:
		return components.HelpLine("esc", "back", "e", "edit stock", "o", "image", "v", "video")
	case m.screen == ScreenSearch && m.searchBox.Focused():
		return components.HelpLine("enter", "search now", "esc", "clear", "↓", "results", "tab", "next screen")
	case m.screen == ScreenSearch:
		return components.HelpLine("enter", "open", "↑", "query", "/", "filter", "q", "quit")
	case m.screen == ScreenHome:
		return components.HelpLine("1-5", "screens", "r", "refresh", "q", "quit")
	}
	return components.HelpLine("enter", "open", "/", "filter", "r", "refresh", "esc", "back", "q", "quit")
}
