package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/anbar/internal/domain"
)

// Command factories for async operations

const requestTimeout = 30 * time.Second

// WaitForSearchStateCmd blocks until the orchestrator publishes a snapshot.
// The model re-issues it after every SearchStateMsg.
func WaitForSearchStateCmd(ch <-chan domain.SearchState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return nil
		}
		return SearchStateMsg{State: state}
	}
}

// LoadStatsCmd loads the home screen stats
func LoadStatsCmd(svc Catalog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stats, err := svc.Stats(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading stats"}
		}
		return StatsLoadedMsg{Stats: stats}
	}
}

// LoadLowStockCmd loads items at or below their threshold, along with the
// per-unit thresholds shown above the list
func LoadLowStockCmd(svc Catalog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		items, err := svc.LowStock(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading low stock items"}
		}
		// Thresholds are informational; the list is shown without them
		types, _ := svc.MeasureTypes(ctx)
		return LowStockLoadedMsg{Items: items, MeasureTypes: types}
	}
}

// LoadBrandsCmd loads the brand list
func LoadBrandsCmd(svc Catalog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		brands, err := svc.Brands(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading brands"}
		}
		return BrandsLoadedMsg{Brands: brands}
	}
}

// LoadBrandItemsCmd loads the items of one brand
func LoadBrandItemsCmd(svc Catalog, brand domain.Brand) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		items, err := svc.ItemsByBrand(ctx, brand.ID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading brand items"}
		}
		return BrandItemsLoadedMsg{Brand: brand, Items: items}
	}
}

// LoadCategoriesCmd loads the category list
func LoadCategoriesCmd(svc Catalog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		categories, err := svc.Categories(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading categories"}
		}
		return CategoriesLoadedMsg{Categories: categories}
	}
}

// LoadSubcategoriesCmd loads the subcategories of one category
func LoadSubcategoriesCmd(svc Catalog, category domain.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		subs, err := svc.Subcategories(ctx, category.ID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading subcategories"}
		}
		return SubcategoriesLoadedMsg{Category: category, Subcategories: subs}
	}
}

// LoadCategoryItemsCmd loads a subcategory's items, or the whole category's
// when subcategoryID is zero
func LoadCategoryItemsCmd(svc Catalog, categoryID, subcategoryID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var items []domain.Item
		var err error
		if subcategoryID == 0 {
			items, err = svc.ItemsByCategory(ctx, categoryID)
		} else {
			items, err = svc.ItemsBySubcategory(ctx, subcategoryID)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "loading category items"}
		}
		return CategoryItemsLoadedMsg{CategoryID: categoryID, SubcategoryID: subcategoryID, Items: items}
	}
}

// LoadItemCmd loads an item with its images
func LoadItemCmd(svc Catalog, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		item, err := svc.Item(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading item"}
		}
		return ItemLoadedMsg{Item: item}
	}
}

// UpdateStockCmd saves a new stock count
func UpdateStockCmd(svc Catalog, id int64, available float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := svc.UpdateStock(ctx, id, available); err != nil {
			return ErrMsg{Err: err, Context: "updating stock"}
		}
		return StockUpdatedMsg{ItemID: id, Available: available}
	}
}

// OpenURLCmd opens a URL in the external viewer
func OpenURLCmd(l URLLauncher, url string) tea.Cmd {
	return func() tea.Msg {
		if err := l.Launch(url); err != nil {
			return ErrMsg{Err: err, Context: "opening"}
		}
		return URLOpenedMsg{URL: url}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
