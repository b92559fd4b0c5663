// Package search ranks media items against a query. Server results are
// re-ranked locally; when the server is unreachable the same ranking runs
// against the accumulated collections instead.
package search

import (
	"log/slog"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mjpeters/reel/internal/domain"
)

// index implements fuzzy.Source over pre-lowered titles so ranking does
// not re-allocate per comparison.
type index struct {
	items       []domain.MediaItem
	lowerTitles []string
}

func (idx *index) String(i int) string { return idx.lowerTitles[i] }
func (idx *index) Len() int            { return len(idx.items) }

func buildIndex(items []domain.MediaItem) *index {
	idx := &index{
		items:       items,
		lowerTitles: make([]string, len(items)),
	}
	for i, item := range items {
		idx.lowerTitles[i] = strings.ToLower(item.Title)
	}
	return idx
}

// Service ranks items for search queries.
type Service struct {
	logger *slog.Logger
}

// NewService creates a search service
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Rank orders items by match quality against the query. Items that do not
// match at all are dropped. An empty query returns nil.
func (s *Service) Rank(query string, items []domain.MediaItem) []domain.MediaItem {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" || len(items) == 0 {
		return nil
	}

	idx := buildIndex(items)
	matches := fuzzy.FindFrom(query, idx)

	ranked := make([]domain.MediaItem, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, idx.items[m.Index])
	}
	s.logger.Debug("ranked search results", "query", query, "in", len(items), "out", len(ranked))
	return ranked
}

// Local searches the accumulated collections directly. A cheap normalized
// substring pass narrows the candidates before the ranked pass, which
// keeps large libraries responsive.
func (s *Service) Local(query string, items []domain.MediaItem) []domain.MediaItem {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 {
		return nil
	}

	candidates := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if lfuzzy.MatchNormalizedFold(query, item.Title) {
			candidates = append(candidates, item)
		}
	}
	if len(candidates) == 0 {
		// Substring pass found nothing; let the ranked matcher try typo
		// tolerance over the full set.
		candidates = items
	}
	return s.Rank(query, candidates)
}
