package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/anbar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiskStore(t *testing.T, dir string) *CatalogStore {
	t.Helper()
	s, err := NewCatalogStore(dir, "http://warehouse.local:8000/")
	require.NoError(t, err)
	return s
}

func TestNewCatalogStore_MemoryOnly(t *testing.T) {
	s, err := NewCatalogStore("", "http://warehouse.local")
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Persistent())

	_, ok := s.GetBrands()
	assert.False(t, ok)

	require.NoError(t, s.SaveBrands([]domain.Brand{{ID: 1, Name: "Bosch"}}))
	brands, ok := s.GetBrands()
	require.True(t, ok)
	assert.Equal(t, "Bosch", brands[0].Name)
}

func TestNewCatalogStore_NamespacedPerServer(t *testing.T) {
	dir := t.TempDir()
	s := newDiskStore(t, dir)
	defer s.Close()

	assert.True(t, s.Persistent())
	_, err := os.Stat(filepath.Join(dir, hashServerURL("http://warehouse.local:8000"), "anbar.db"))
	assert.NoError(t, err)
}

func TestHashServerURL_Normalizes(t *testing.T) {
	assert.Equal(t, hashServerURL("http://Warehouse.local/"), hashServerURL("http://warehouse.local"))
	assert.NotEqual(t, hashServerURL("http://a.local"), hashServerURL("http://b.local"))
	assert.Len(t, hashServerURL("http://a.local"), 12)
}

func TestCatalogStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s := newDiskStore(t, dir)
	require.NoError(t, s.SaveBrands([]domain.Brand{{ID: 1, Name: "Bosch"}, {ID: 2, Name: "Makita"}}))
	require.NoError(t, s.SaveCategories([]domain.Category{{ID: 3, Name: "ابزار"}}))
	require.NoError(t, s.SaveSubcategories(3, []domain.Subcategory{{ID: 7, CategoryID: 3, Name: "دریل"}}))
	require.NoError(t, s.SaveMeasureTypes([]domain.MeasureType{{ID: 1, Name: "عدد", LowStockThreshold: 5}}))
	require.NoError(t, s.SaveStats(&domain.Stats{TotalItems: 120, LowStockItems: 4}))
	require.NoError(t, s.Close())

	reopened := newDiskStore(t, dir)
	defer reopened.Close()

	brands, ok := reopened.GetBrands()
	require.True(t, ok)
	assert.Len(t, brands, 2)

	categories, ok := reopened.GetCategories()
	require.True(t, ok)
	assert.Equal(t, "ابزار", categories[0].Name)

	subs, ok := reopened.GetSubcategories(3)
	require.True(t, ok)
	assert.Equal(t, int64(3), subs[0].CategoryID)

	_, ok = reopened.GetSubcategories(4)
	assert.False(t, ok)

	types, ok := reopened.GetMeasureTypes()
	require.True(t, ok)
	assert.Equal(t, 5.0, types[0].LowStockThreshold)

	stats, ok := reopened.GetStats()
	require.True(t, ok)
	assert.Equal(t, 120, stats.TotalItems)
	assert.Equal(t, 4, stats.LowStockItems)
}

func TestCatalogStore_SaveNilStatsDeletes(t *testing.T) {
	s := newDiskStore(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.SaveStats(&domain.Stats{TotalItems: 1}))
	require.NoError(t, s.SaveStats(nil))

	_, ok := s.GetStats()
	assert.False(t, ok)
}

func TestCatalogStore_InvalidateCategory(t *testing.T) {
	s := newDiskStore(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.SaveCategories([]domain.Category{{ID: 1}, {ID: 2}}))
	require.NoError(t, s.SaveSubcategories(1, []domain.Subcategory{{ID: 10, CategoryID: 1}}))
	require.NoError(t, s.SaveSubcategories(2, []domain.Subcategory{{ID: 20, CategoryID: 2}}))
	require.NoError(t, s.SaveBrands([]domain.Brand{{ID: 5}}))

	require.NoError(t, s.InvalidateCategory(1))

	_, ok := s.GetSubcategories(1)
	assert.False(t, ok)
	_, ok = s.GetCategories()
	assert.False(t, ok)

	_, ok = s.GetSubcategories(2)
	assert.True(t, ok)
	_, ok = s.GetBrands()
	assert.True(t, ok)
}

func TestCatalogStore_InvalidateAll(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
	}{
		{name: "memory", dir: func(*testing.T) string { return "" }},
		{name: "disk", dir: func(t *testing.T) string { return t.TempDir() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewCatalogStore(tt.dir(t), "http://warehouse.local")
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.SaveBrands([]domain.Brand{{ID: 1}}))
			require.NoError(t, s.SaveSubcategories(1, []domain.Subcategory{{ID: 2}}))
			require.NoError(t, s.SaveSubcategories(2, []domain.Subcategory{{ID: 3}}))
			require.NoError(t, s.SaveStats(&domain.Stats{TotalItems: 9}))

			require.NoError(t, s.InvalidateAll())

			_, ok := s.GetBrands()
			assert.False(t, ok)
			_, ok = s.GetSubcategories(1)
			assert.False(t, ok)
			_, ok = s.GetSubcategories(2)
			assert.False(t, ok)

			// The offline stats snapshot survives a wipe
			stats, ok := s.GetStats()
			require.True(t, ok)
			assert.Equal(t, 9, stats.TotalItems)

			// Still writable after the wipe
			require.NoError(t, s.SaveBrands([]domain.Brand{{ID: 4}}))
			brands, ok := s.GetBrands()
			require.True(t, ok)
			assert.Equal(t, int64(4), brands[0].ID)
		})
	}
}

func TestCatalogStore_InvalidateAllKeepsStatsOnDisk(t *testing.T) {
	dir := t.TempDir()
	s := newDiskStore(t, dir)
	require.NoError(t, s.SaveStats(&domain.Stats{TotalItems: 42}))
	require.NoError(t, s.SaveBrands([]domain.Brand{{ID: 1}}))
	require.NoError(t, s.InvalidateAll())
	require.NoError(t, s.Close())

	reopened := newDiskStore(t, dir)
	defer reopened.Close()

	stats, ok := reopened.GetStats()
	require.True(t, ok)
	assert.Equal(t, 42, stats.TotalItems)
	_, ok = reopened.GetBrands()
	assert.False(t, ok)
}

func TestCatalogStore_WriteErrorsSurface(t *testing.T) {
	s := newDiskStore(t, t.TempDir())
	require.NoError(t, s.Close())

	assert.Error(t, s.SaveStats(nil))
	assert.Error(t, s.InvalidateCategory(1))
	assert.Error(t, s.InvalidateAll())
}
