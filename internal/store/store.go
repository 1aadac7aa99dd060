package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/anbar/internal/domain"
	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

// Bucket names
var (
	bucketBrands        = []byte("brands")
	bucketCategories    = []byte("categories")
	bucketSubcategories = []byte("subcategories")
	bucketMeasureTypes  = []byte("measure_types")
	bucketStats         = []byte("stats")
)

var allBuckets = [][]byte{bucketBrands, bucketCategories, bucketSubcategories, bucketMeasureTypes, bucketStats}

// listBuckets are wiped by InvalidateAll. The stats snapshot survives so it
// can still stand in when the server is offline.
var listBuckets = [][]byte{bucketBrands, bucketCategories, bucketSubcategories, bucketMeasureTypes}

// CatalogStore implements domain.CatalogStore using BoltDB.
type CatalogStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// Reads are promoted here so list screens don't hit disk twice
	cache map[string][]byte
}

// NewCatalogStore opens (or creates) the catalog database for a server.
// An empty baseCacheDir gives a memory-only store.
func NewCatalogStore(baseCacheDir, serverURL string) (*CatalogStore, error) {
	if baseCacheDir == "" {
		return &CatalogStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "anbar.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CatalogStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// Persistent reports whether the store is backed by a file
func (s *CatalogStore) Persistent() bool {
	return s.db != nil
}

func (s *CatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func cacheKey(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

func (s *CatalogStore) get(bucket []byte, key string, dest any) bool {
	ck := cacheKey(bucket, key)

	s.mu.RLock()
	data, ok := s.cache[ck]
	s.mu.RUnlock()
	if ok {
		return json.Unmarshal(data, dest) == nil
	}

	if s.db == nil {
		return false
	}

	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CatalogStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[cacheKey(bucket, key)] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *CatalogStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, cacheKey(bucket, key))
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", cacheKey(bucket, key), err)
	}
	return nil
}

// === Brands ===

func (s *CatalogStore) GetBrands() ([]domain.Brand, bool) {
	var brands []domain.Brand
	ok := s.get(bucketBrands, "list", &brands)
	return brands, ok
}

func (s *CatalogStore) SaveBrands(brands []domain.Brand) error {
	return s.set(bucketBrands, "list", brands)
}

// === Categories ===

func (s *CatalogStore) GetCategories() ([]domain.Category, bool) {
	var categories []domain.Category
	ok := s.get(bucketCategories, "list", &categories)
	return categories, ok
}

func (s *CatalogStore) SaveCategories(categories []domain.Category) error {
	return s.set(bucketCategories, "list", categories)
}

// === Subcategories (key: cat:{categoryID}) ===

func subcategoryKey(categoryID int64) string {
	return "cat:" + strconv.FormatInt(categoryID, 10)
}

func (s *CatalogStore) GetSubcategories(categoryID int64) ([]domain.Subcategory, bool) {
	var subs []domain.Subcategory
	ok := s.get(bucketSubcategories, subcategoryKey(categoryID), &subs)
	return subs, ok
}

func (s *CatalogStore) SaveSubcategories(categoryID int64, subs []domain.Subcategory) error {
	return s.set(bucketSubcategories, subcategoryKey(categoryID), subs)
}

// === Measure types ===

func (s *CatalogStore) GetMeasureTypes() ([]domain.MeasureType, bool) {
	var types []domain.MeasureType
	ok := s.get(bucketMeasureTypes, "list", &types)
	return types, ok
}

func (s *CatalogStore) SaveMeasureTypes(types []domain.MeasureType) error {
	return s.set(bucketMeasureTypes, "list", types)
}

// === Stats ===

func (s *CatalogStore) GetStats() (*domain.Stats, bool) {
	var stats domain.Stats
	if !s.get(bucketStats, "summary", &stats) {
		return nil, false
	}
	return &stats, true
}

func (s *CatalogStore) SaveStats(stats *domain.Stats) error {
	if stats == nil {
		return s.delete(bucketStats, "summary")
	}
	return s.set(bucketStats, "summary", stats)
}

// === Invalidation ===

// InvalidateCategory drops a category's subcategories and the category list itself
func (s *CatalogStore) InvalidateCategory(categoryID int64) error {
	return errors.Join(
		s.delete(bucketSubcategories, subcategoryKey(categoryID)),
		s.delete(bucketCategories, "list"),
	)
}

// InvalidateAll drops every cached catalog list. The stats snapshot is kept.
func (s *CatalogStore) InvalidateAll() error {
	statsPrefix := string(bucketStats) + ":"

	s.mu.Lock()
	for ck := range s.cache {
		if !strings.HasPrefix(ck, statsPrefix) {
			delete(s.cache, ck)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range listBuckets {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolterrors.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear catalog lists: %w", err)
	}
	return nil
}

var _ domain.CatalogStore = (*CatalogStore)(nil)
