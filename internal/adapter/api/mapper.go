package api

import (
	"github.com/mmcdole/anbar/internal/domain"
)

// MapItems converts API items to domain items, preserving order
func MapItems(dtos []ItemDTO) []domain.Item {
	items := make([]domain.Item, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, MapItem(d))
	}
	return items
}

// MapItem converts a single API item to a domain item
func MapItem(d ItemDTO) domain.Item {
	item := domain.Item{
		ID:                d.ID,
		Name:              d.Name,
		Code:              deref(d.Code),
		CustomCode:        deref(d.CustomCode),
		Description:       deref(d.Description),
		ImagePath:         deref(d.ImagePath),
		VideoURL:          deref(d.VideoURL),
		BrandID:           d.BrandID,
		BrandName:         firstNonEmpty(d.BrandName, d.Brand),
		CategoryID:        d.CategoryID,
		CategoryName:      firstNonEmpty(d.CategoryName, d.Category),
		SubcategoryID:     d.SubcategoryID,
		SubcategoryName:   firstNonEmpty(d.SubcatName, d.Subcategory),
		MeasureTypeID:     d.MeasureTypeID,
		MeasureTypeName:   firstNonEmpty(d.MeasureName, d.MeasureType),
		AvailableCount:    d.AvailableCount,
		LowStockThreshold: d.LowStockThreshold,
		CreatedAt:         deref(d.CreatedAt),
		UpdatedAt:         deref(d.UpdatedAt),
	}

	if len(d.Images) > 0 {
		item.Images = make([]domain.ItemImage, len(d.Images))
		for i, img := range d.Images {
			item.Images[i] = domain.ItemImage{
				ID:        img.ID,
				Path:      img.Path,
				CreatedAt: deref(img.CreatedAt),
			}
		}
		if item.ImagePath == "" {
			item.ImagePath = item.Images[0].Path
		}
	}

	return item
}

// MapBrands converts API brands to domain brands
func MapBrands(dtos []BrandDTO) []domain.Brand {
	brands := make([]domain.Brand, len(dtos))
	for i, d := range dtos {
		brands[i] = domain.Brand{ID: d.ID, Code: deref(d.Code), Name: d.Name, CreatedAt: deref(d.CreatedAt)}
	}
	return brands
}

// MapCategories converts API categories to domain categories
func MapCategories(dtos []BrandDTO) []domain.Category {
	categories := make([]domain.Category, len(dtos))
	for i, d := range dtos {
		categories[i] = domain.Category{ID: d.ID, Code: deref(d.Code), Name: d.Name, CreatedAt: deref(d.CreatedAt)}
	}
	return categories
}

// MapSubcategories converts API subcategories, tagging each with its parent
func MapSubcategories(categoryID int64, dtos []BrandDTO) []domain.Subcategory {
	subs := make([]domain.Subcategory, len(dtos))
	for i, d := range dtos {
		subs[i] = domain.Subcategory{
			ID:         d.ID,
			CategoryID: categoryID,
			Code:       deref(d.Code),
			Name:       d.Name,
			CreatedAt:  deref(d.CreatedAt),
		}
	}
	return subs
}

// MapMeasureTypes converts API measure types to domain measure types
func MapMeasureTypes(dtos []MeasureTypeDTO) []domain.MeasureType {
	types := make([]domain.MeasureType, len(dtos))
	for i, d := range dtos {
		types[i] = domain.MeasureType{
			ID:        d.ID,
			Code:      deref(d.Code),
			Name:      d.Name,
			CreatedAt: deref(d.CreatedAt),
		}
		if d.LowStockThreshold != nil {
			types[i].LowStockThreshold = *d.LowStockThreshold
		}
	}
	return types
}

// MapStats converts the stats payload
func MapStats(r StatsResponse) *domain.Stats {
	return &domain.Stats{
		TotalItems:      r.TotalItems,
		TotalCategories: r.TotalCategories,
		TotalBrands:     r.TotalBrands,
		LowStockItems:   r.LowStockItems,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
