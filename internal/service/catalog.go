package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mmcdole/anbar/internal/domain"
)

const (
	DefaultItemTTL  = 5 * time.Minute
	DefaultItemSize = 256
)

// CatalogBackend is everything the catalog service needs from the API
type CatalogBackend interface {
	domain.ItemRepository
	domain.CatalogRepository
	domain.StockRepository
}

// CatalogOptions configures a CatalogService
type CatalogOptions struct {
	ItemTTL  time.Duration
	ItemSize int
	Logger   *slog.Logger
}

// CatalogService handles item lookups and catalog lists.
// Items by ID live in a short-lived LRU; catalog lists go through the store.
type CatalogService struct {
	repo   CatalogBackend
	store  domain.CatalogStore
	items  *expirable.LRU[int64, *domain.Item]
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo CatalogBackend, store domain.CatalogStore, opts CatalogOptions) *CatalogService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ItemTTL <= 0 {
		opts.ItemTTL = DefaultItemTTL
	}
	if opts.ItemSize <= 0 {
		opts.ItemSize = DefaultItemSize
	}

	return &CatalogService{
		repo:   repo,
		store:  store,
		items:  expirable.NewLRU[int64, *domain.Item](opts.ItemSize, nil, opts.ItemTTL),
		logger: opts.Logger,
	}
}

// Item returns a single item with its images
func (s *CatalogService) Item(ctx context.Context, id int64) (*domain.Item, error) {
	if item, ok := s.items.Get(id); ok {
		s.logger.Debug("item cache hit", "id", id)
		return item, nil
	}

	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	s.items.Add(id, item)
	return item, nil
}

// AllItems pages through the full item list, reporting progress after each page
func (s *CatalogService) AllItems(ctx context.Context, onProgress func(loaded, total int)) ([]domain.Item, error) {
	items, err := collectPages(ctx, itemPageSize, func(ctx context.Context, offset, limit int) ([]domain.Item, int, error) {
		page, err := s.repo.ListItems(ctx, offset, limit)
		if err != nil {
			return nil, 0, err
		}
		return page.Items, page.Total, nil
	}, onProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	s.logger.Info("loaded items", "count", len(items))
	return items, nil
}

// LowStock returns items at or below their threshold. Never cached.
func (s *CatalogService) LowStock(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.LowStockItems(ctx)
	if err != nil {
		s.logger.Error("failed to get low stock items", "error", err)
		return nil, err
	}
	return items, nil
}

func (s *CatalogService) ItemsByBrand(ctx context.Context, brandID int64) ([]domain.Item, error) {
	return s.repo.ItemsByBrand(ctx, brandID)
}

func (s *CatalogService) ItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error) {
	return s.repo.ItemsByCategory(ctx, categoryID)
}

func (s *CatalogService) ItemsBySubcategory(ctx context.Context, subcategoryID int64) ([]domain.Item, error) {
	return s.repo.ItemsBySubcategory(ctx, subcategoryID)
}

// Brands returns the brand list, from the store when cached
func (s *CatalogService) Brands(ctx context.Context) ([]domain.Brand, error) {
	return cachedList(ctx, s, "brands", s.store.GetBrands, s.repo.GetBrands, s.store.SaveBrands)
}

// Categories returns the category list, from the store when cached
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return cachedList(ctx, s, "categories", s.store.GetCategories, s.repo.GetCategories, s.store.SaveCategories)
}

// Subcategories returns the subcategories of one category
func (s *CatalogService) Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	return cachedList(ctx, s, "subcategories",
		func() ([]domain.Subcategory, bool) { return s.store.GetSubcategories(categoryID) },
		func(ctx context.Context) ([]domain.Subcategory, error) { return s.repo.GetSubcategories(ctx, categoryID) },
		func(subs []domain.Subcategory) error { return s.store.SaveSubcategories(categoryID, subs) },
	)
}

// MeasureTypes returns the measure type list, from the store when cached
func (s *CatalogService) MeasureTypes(ctx context.Context) ([]domain.MeasureType, error) {
	return cachedList(ctx, s, "measure_types", s.store.GetMeasureTypes, s.repo.GetMeasureTypes, s.store.SaveMeasureTypes)
}

// Stats fetches the warehouse summary. When the server can't be reached the
// last stored snapshot is returned instead.
func (s *CatalogService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		if cached, ok := s.store.GetStats(); ok {
			s.logger.Warn("using cached stats", "error", err)
			return cached, nil
		}
		return nil, err
	}

	if err := s.store.SaveStats(stats); err != nil {
		s.logger.Warn("failed to cache stats", "error", err)
	}
	return stats, nil
}

// UpdateStock sets an item's available count and drops what it made stale
func (s *CatalogService) UpdateStock(ctx context.Context, id int64, available float64) error {
	if available < 0 {
		return fmt.Errorf("available count must not be negative: %v", available)
	}
	if err := s.repo.UpdateStock(ctx, id, available); err != nil {
		return err
	}

	s.items.Remove(id)
	if err := s.store.SaveStats(nil); err != nil {
		s.logger.Warn("failed to drop cached stats", "error", err)
	}
	s.logger.Info("updated stock", "id", id, "available", available)
	return nil
}

// Refresh forgets every cached item and catalog list. The stats snapshot
// stays in the store for offline use.
func (s *CatalogService) Refresh() {
	s.items.Purge()
	if err := s.store.InvalidateAll(); err != nil {
		s.logger.Warn("failed to clear catalog store", "error", err)
	}
	s.logger.Debug("catalog caches cleared")
}

// RefreshCategory forgets the category list and one category's subcategories
func (s *CatalogService) RefreshCategory(categoryID int64) {
	if err := s.store.InvalidateCategory(categoryID); err != nil {
		s.logger.Warn("failed to clear category", "category", categoryID, "error", err)
	}
}

func cachedList[T any](
	ctx context.Context,
	s *CatalogService,
	name string,
	load func() ([]T, bool),
	fetch func(ctx context.Context) ([]T, error),
	save func([]T) error,
) ([]T, error) {
	if cached, ok := load(); ok {
		s.logger.Debug("store hit", "list", name)
		return cached, nil
	}

	list, err := fetch(ctx)
	if err != nil {
		s.logger.Error("failed to fetch catalog list", "list", name, "error", err)
		return nil, err
	}

	if err := save(list); err != nil {
		s.logger.Warn("failed to cache catalog list", "list", name, "error", err)
	}
	s.logger.Info("loaded catalog list", "list", name, "count", len(list))
	return list, nil
}
