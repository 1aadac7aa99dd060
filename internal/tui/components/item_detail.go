package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/anbar/internal/domain"
	"github.com/mmcdole/anbar/internal/tui/styles"
)

// Detail labels
const (
	labelCode        = "کد"
	labelCustomCode  = "کد سفارشی"
	labelBrand       = "برند"
	labelCategory    = "دسته‌بندی"
	labelSubcategory = "زیردسته"
	labelAvailable   = "موجودی"
	labelThreshold   = "حد هشدار"
	labelImage       = "تصویر"
	labelVideo       = "ویدیو"
	labelUpdated     = "آخرین تغییر"
)

// RenderItemDetail renders everything known about an item
func RenderItemDetail(item domain.Item, apiBase string, width int) string {
	var b strings.Builder

	title := styles.TitleStyle.Render(item.Name)
	if badge := StockBadge(item); badge != "" {
		title += " " + badge
	}
	b.WriteString(title)
	b.WriteString("\n")
	if crumb := item.Breadcrumb(); crumb != "" {
		b.WriteString(styles.SubtitleStyle.Render(crumb))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := [][2]string{
		{labelCode, item.Code},
		{labelCustomCode, item.CustomCode},
		{labelBrand, item.BrandName},
		{labelCategory, item.CategoryName},
		{labelSubcategory, item.SubcategoryName},
		{labelAvailable, item.FormattedCount()},
	}
	if item.LowStockThreshold != nil {
		threshold := item
		threshold.AvailableCount = item.LowStockThreshold
		rows = append(rows, [2]string{labelThreshold, threshold.FormattedCount()})
	}
	rows = append(rows,
		[2]string{labelImage, item.ImageURL(apiBase)},
		[2]string{labelVideo, item.VideoURL},
		[2]string{labelUpdated, item.UpdatedAt},
	)

	labelWidth := 0
	for _, row := range rows {
		if row[1] != "" {
			labelWidth = max(labelWidth, lipgloss.Width(row[0]))
		}
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		value := styles.Truncate(row[1], max(width-labelWidth-4, 10))
		b.WriteString(styles.DimStyle.Render(styles.Pad(row[0], labelWidth)))
		b.WriteString("  ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	if item.Description != "" {
		b.WriteString("\n")
		desc := lipgloss.NewStyle().Width(max(width-2, 20)).Render(item.Description)
		b.WriteString(styles.SubtitleStyle.Render(desc))
		b.WriteString("\n")
	}

	return b.String()
}
