package coordinator

import (
	"context"

	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/state"
)

// Search runs a server-side search and re-ranks the results locally. When
// the server search fails it falls back to a local fuzzy search over the
// accumulated collections. A newer query supersedes an older in-flight
// one: stale results are dropped instead of overwriting the fresher state.
func (c *Coordinator) Search(ctx context.Context, query string) error {
	if query == "" {
		c.ClearSearch()
		return nil
	}

	c.mu.Lock()
	c.searchSeq++
	seq := c.searchSeq
	c.mu.Unlock()

	c.update(func(s *state.AppState) {
		s.Search = state.SearchState{Query: query, InProgress: true}
	})

	if err := c.ensureSession(ctx); err != nil {
		c.finishSearch(seq, query, nil)
		return err
	}

	results, err := c.gateway.Search(ctx, query, c.searchLimit)
	if err != nil {
		if domain.IsCancelled(err) {
			c.finishSearch(seq, query, nil)
			return err
		}
		c.logger.Warn("server search failed, falling back to local", "error", err)
		local := c.searcher.Local(query, c.Snapshot().AllItems())
		c.finishSearch(seq, query, local)
		return nil
	}

	c.finishSearch(seq, query, c.searcher.Rank(query, results))
	return nil
}

// finishSearch publishes results unless a newer search has started.
func (c *Coordinator) finishSearch(seq uint64, query string, results []domain.MediaItem) {
	c.mu.Lock()
	stale := seq != c.searchSeq
	c.mu.Unlock()
	if stale {
		return
	}
	c.update(func(s *state.AppState) {
		s.Search = state.SearchState{Query: query, Results: results}
	})
}

// ClearSearch resets the search state.
func (c *Coordinator) ClearSearch() {
	c.mu.Lock()
	c.searchSeq++
	c.mu.Unlock()
	c.update(func(s *state.AppState) { s.Search = state.SearchState{} })
}
