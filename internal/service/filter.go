package service

import (
	"strings"

	"github.com/mmcdole/anbar/internal/domain"
	"github.com/sahilm/fuzzy"
)

// itemSource implements sahilm/fuzzy.Source over pre-lowered item text
type itemSource struct {
	text []string
}

func (s itemSource) String(i int) string { return s.text[i] }
func (s itemSource) Len() int            { return len(s.text) }

func filterText(item domain.Item) string {
	parts := []string{item.Name}
	if item.CustomCode != "" {
		parts = append(parts, item.CustomCode)
	}
	if item.BrandName != "" {
		parts = append(parts, item.BrandName)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// FilterItems fuzzy-filters an already loaded list by name, custom code and brand.
// Best matches come first; an empty query returns the list unchanged.
func FilterItems(query string, items []domain.Item) []domain.Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	src := itemSource{text: make([]string, len(items))}
	for i, item := range items {
		src.text[i] = filterText(item)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), src)
	filtered := make([]domain.Item, len(matches))
	for i, m := range matches {
		filtered[i] = items[m.Index]
	}
	return filtered
}
