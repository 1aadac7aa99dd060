package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/anbar/internal/domain"
)

// SearchService forwards item searches to the backend
type SearchService struct {
	repo   domain.ItemRepository
	rank   bool
	logger *slog.Logger
}

// NewSearchService creates a new search service. With rank set, backend
// results are re-ordered locally by how well they match the query.
func NewSearchService(repo domain.ItemRepository, rank bool, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{repo: repo, rank: rank, logger: logger}
}

// Search runs a server-side search. It satisfies domain.SearchFunc.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.Item, error) {
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching", "query", query)

	results, err := s.repo.SearchItems(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.rank {
		results = rankResults(results, query)
	}
	s.logger.Debug("search complete", "query", query, "results", len(results))

	return results, nil
}

// rankResults orders items by match score; ties keep backend order
func rankResults(items []domain.Item, query string) []domain.Item {
	if len(items) < 2 {
		return items
	}

	query = strings.ToLower(query)

	type rankedItem struct {
		item  domain.Item
		score int
	}

	ranked := make([]rankedItem, len(items))
	for i, item := range items {
		score := calculateMatchScore(strings.ToLower(item.Name), query)
		if code := strings.ToLower(item.CustomCode); code != "" {
			score = min(score, calculateMatchScore(code, query))
		}
		ranked[i] = rankedItem{item: item, score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	results := make([]domain.Item, len(ranked))
	for i, r := range ranked {
		results[i] = r.item
	}
	return results
}

// calculateMatchScore scores target against query. Lower is better.
func calculateMatchScore(target, query string) int {
	if target == query {
		return 0
	}
	if strings.HasPrefix(target, query) {
		return 10
	}
	if strings.Contains(target, query) {
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, target)
}
