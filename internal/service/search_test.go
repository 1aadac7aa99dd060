package service

import (
	"context"
	"testing"

	"github.com/mmcdole/anbar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func TestSearchService_EmptyQuerySkipsBackend(t *testing.T) {
	backend := newFakeBackend()
	svc := NewSearchService(backend, false, nil)

	results, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Equal(t, 0, backend.count("search"))
}

func TestSearchService_PreservesBackendOrder(t *testing.T) {
	backend := newFakeBackend()
	backend.search = []domain.Item{{Name: "rotary drill"}, {Name: "drill"}, {Name: "drill bit"}}
	svc := NewSearchService(backend, false, nil)

	results, err := svc.Search(context.Background(), "drill")
	require.NoError(t, err)
	assert.Equal(t, []string{"rotary drill", "drill", "drill bit"}, names(results))
}

func TestSearchService_RanksWhenEnabled(t *testing.T) {
	backend := newFakeBackend()
	backend.search = []domain.Item{
		{Name: "hammer", Description: "mentions drill"},
		{Name: "rotary drill"},
		{Name: "Drill bit"},
		{Name: "drill"},
	}
	svc := NewSearchService(backend, true, nil)

	results, err := svc.Search(context.Background(), "drill")
	require.NoError(t, err)
	assert.Equal(t, []string{"drill", "Drill bit", "rotary drill", "hammer"}, names(results))
}

func TestSearchService_Error(t *testing.T) {
	backend := newFakeBackend()
	backend.err = domain.ErrServerOffline
	svc := NewSearchService(backend, true, nil)

	_, err := svc.Search(context.Background(), "drill")
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestCalculateMatchScore(t *testing.T) {
	tests := []struct {
		name   string
		target string
		query  string
		want   int
	}{
		{name: "exact", target: "drill", query: "drill", want: 0},
		{name: "prefix", target: "drill bit", query: "drill", want: 10},
		{name: "contains", target: "rotary drill", query: "drill", want: 50},
		{name: "levenshtein", target: "dril", query: "drill", want: 101},
		{name: "persian_prefix", target: "پیچ گوشتی", query: "پیچ", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateMatchScore(tt.target, tt.query))
		})
	}
}

func TestRankResults_UsesCustomCode(t *testing.T) {
	items := []domain.Item{
		{Name: "Cable", CustomCode: "X-100"},
		{Name: "Clamp", CustomCode: "AB-12"},
	}
	ranked := rankResults(items, "ab-12")
	assert.Equal(t, []string{"Clamp", "Cable"}, names(ranked))
}
