package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/merge"
	"github.com/mjpeters/reel/internal/state"
)

// LoadInitialData fetches the library list and the recently-added rows in
// one joined operation, publishing a single combined snapshot rather than
// several partially-filled intermediate ones. Concurrent calls while one
// is pending collapse to a no-op.
func (c *Coordinator) LoadInitialData(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.initialPending {
		c.mu.Unlock()
		return nil
	}
	c.initialPending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.initialPending = false
		c.mu.Unlock()
	}()

	c.update(func(s *state.AppState) { s.IsLoading = true })

	if err := c.ensureSession(ctx); err != nil {
		c.update(func(s *state.AppState) { s.IsLoading = false })
		return err
	}

	var (
		libs         []domain.Library
		recent       []domain.MediaItem
		recentMovies []domain.MediaItem
		recentShows  []domain.MediaItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := c.catalog.Refresh(gctx, force)
		if err != nil {
			return err
		}
		libs = l
		return nil
	})
	g.Go(func() error {
		r, err := c.gateway.RecentlyAdded(gctx, "", c.recentLimit)
		if err != nil {
			return err
		}
		recent = r
		return nil
	})
	g.Go(func() error {
		r, err := c.gateway.RecentlyAdded(gctx, domain.CollectionMovies.ItemKindFilter(), c.recentLimit)
		if err != nil {
			return err
		}
		recentMovies = r
		return nil
	})
	g.Go(func() error {
		r, err := c.gateway.RecentlyAdded(gctx, domain.CollectionTV.ItemKindFilter(), c.recentLimit)
		if err != nil {
			return err
		}
		recentShows = r
		return nil
	})

	if err := g.Wait(); err != nil {
		c.update(func(s *state.AppState) { s.IsLoading = false })
		c.fail(err)
		return err
	}

	c.update(func(s *state.AppState) {
		s.IsLoading = false
		s.Libraries = libs
		s.RecentlyAdded = recent
		s.RecentByKind[domain.CollectionMovies] = recentMovies
		s.RecentByKind[domain.CollectionTV] = recentShows
	})

	if c.store != nil {
		if err := c.store.SaveLibraries(libs); err != nil {
			c.logger.Error("failed to cache libraries", "error", err)
		}
	}

	c.logger.Debug("initial data loaded",
		"libraries", len(libs), "recent", len(recent))
	return nil
}

// LoadLibraryKindData loads the first page for the library serving a
// collection kind. A load that already completed this session is skipped
// unless force is set; a load already pending for the same kind collapses
// to a no-op. Loads for different kinds run independently.
func (c *Coordinator) LoadLibraryKindData(ctx context.Context, kind domain.CollectionKind, force bool) error {
	c.mu.Lock()
	switch c.kinds[kind] {
	case kindPending:
		c.mu.Unlock()
		return nil
	case kindLoaded:
		if !force {
			c.mu.Unlock()
			return nil
		}
	}
	c.kinds[kind] = kindPending
	c.mu.Unlock()

	phase := kindIdle
	defer func() {
		c.mu.Lock()
		c.kinds[kind] = phase
		c.mu.Unlock()
	}()

	c.update(func(s *state.AppState) { s.LoadingKinds[kind] = true })
	clearLoading := func(s *state.AppState) { delete(s.LoadingKinds, kind) }

	if err := c.ensureSession(ctx); err != nil {
		c.update(clearLoading)
		return err
	}

	libs, err := c.catalog.Refresh(ctx, false)
	if err != nil {
		c.update(clearLoading)
		c.fail(err)
		return err
	}

	lib, ok := c.catalog.FindByKind(kind)
	if !ok {
		// Nothing serves this kind; remember that so repeated requests do
		// not re-resolve every time. A force refresh retries.
		phase = kindLoaded
		err := domain.NewError(domain.ErrKindNotFound, "no %s library found", kind)
		c.update(clearLoading)
		c.fail(err)
		return err
	}

	// The first page shares the per-library in-flight flag with
	// LoadMoreItems: only one fetch per library id, whoever flips the flag
	// first wins. Losing here leaves the kind idle so a later call retries.
	c.mu.Lock()
	if c.snapshot.Pages[lib.ID].IsLoadingMore {
		c.mu.Unlock()
		c.update(clearLoading)
		return nil
	}
	c.snapshot = c.snapshot.With(func(s *state.AppState) {
		p := s.Pages[lib.ID]
		p.IsLoadingMore = true
		s.SetPage(lib.ID, p)
	})
	c.publishLocked(c.snapshot)
	c.mu.Unlock()

	items, rawCount, err := c.fetchLibraryPage(ctx, lib, kind, 0)
	if err != nil {
		c.update(func(s *state.AppState) {
			delete(s.LoadingKinds, kind)
			clearPageFlag(s, lib.ID)
		})
		c.fail(err)
		return err
	}

	phase = kindLoaded
	c.update(func(s *state.AppState) {
		delete(s.LoadingKinds, kind)
		s.Libraries = libs
		merged := items
		if !force {
			merged = merge.Items(s.Items(lib.ID), items)
		}
		s.SetItems(lib.ID, merged)
		s.SetPage(lib.ID, state.PageState{
			LoadedCount: len(merged),
			HasMore:     rawCount >= c.pageSize,
		})
	})

	c.saveItems(lib.ID)
	c.logger.Debug("library kind loaded", "kind", kind, "libID", lib.ID, "count", len(items))
	return nil
}

// LoadMoreItems fetches the next page for a library. It is a no-op while
// a fetch for that library is in flight or when no more pages exist; this
// is the back-pressure rule that keeps page requests sequential per
// library. Fetches for different libraries run concurrently.
func (c *Coordinator) LoadMoreItems(ctx context.Context, libraryID string) error {
	c.mu.Lock()
	page, tracked := c.snapshot.Pages[libraryID]
	if tracked && (page.IsLoadingMore || !page.HasMore) {
		c.mu.Unlock()
		return nil
	}
	offset := page.LoadedCount
	// Flip the in-flight flag inside the same critical section as the
	// check, and publish immediately so the UI can show a spinner.
	c.snapshot = c.snapshot.With(func(s *state.AppState) {
		p := s.Pages[libraryID]
		p.IsLoadingMore = true
		s.SetPage(libraryID, p)
	})
	c.publishLocked(c.snapshot)
	c.mu.Unlock()

	clearInFlight := func(s *state.AppState) { clearPageFlag(s, libraryID) }

	if err := c.ensureSession(ctx); err != nil {
		c.update(clearInFlight)
		return err
	}

	lib, kind := c.resolveLibrary(libraryID)
	items, rawCount, err := c.fetchLibraryPage(ctx, lib, kind, offset)
	if err != nil {
		// Accumulated items stay untouched; only the flag and the error
		// channel change. Cancellations stay silent.
		c.update(clearInFlight)
		c.fail(err)
		return err
	}

	c.update(func(s *state.AppState) {
		merged := merge.Items(s.Items(libraryID), items)
		s.SetItems(libraryID, merged)
		s.SetPage(libraryID, state.PageState{
			LoadedCount: len(merged),
			HasMore:     rawCount >= c.pageSize,
		})
	})

	c.saveItems(libraryID)
	c.logger.Debug("page loaded", "libID", libraryID, "offset", offset, "count", len(items))
	return nil
}

// clearPageFlag drops the in-flight flag for a library. A tracker that
// never accumulated anything is removed entirely, so a failed first page
// leaves the library untracked and a later request starts over.
func clearPageFlag(s *state.AppState, libraryID string) {
	p := s.Pages[libraryID]
	p.IsLoadingMore = false
	if p.LoadedCount == 0 && !p.HasMore {
		delete(s.Pages, libraryID)
		return
	}
	s.SetPage(libraryID, p)
}

// fetchLibraryPage performs one paged fetch. When a first-page fetch with
// a type filter comes back empty, it retries once without the filter and
// filters client-side: some servers mishandle type filters for certain
// collection kinds. The retry happens at most once so a misbehaving
// server cannot cause a request loop. The returned rawCount is the
// pre-filter page size used for the has-more heuristic.
func (c *Coordinator) fetchLibraryPage(ctx context.Context, lib domain.Library, kind domain.CollectionKind, offset int) ([]domain.MediaItem, int, error) {
	filter := kind.ItemKindFilter()
	page, err := c.gateway.FetchItems(ctx, lib.ID, filter, offset, c.pageSize)
	if err != nil {
		return nil, 0, err
	}
	if len(page.Items) > 0 || filter == "" || offset > 0 {
		return page.Items, len(page.Items), nil
	}

	c.logger.Warn("filtered fetch returned nothing, retrying unfiltered",
		"libID", lib.ID, "filter", filter)
	page, err = c.gateway.FetchItems(ctx, lib.ID, "", offset, c.pageSize)
	if err != nil {
		return nil, 0, err
	}
	return filterByKind(page.Items, kind), len(page.Items), nil
}

// resolveLibrary finds the library and its kind for a pagination request.
// An unknown id still paginates, just without a server-side type filter.
func (c *Coordinator) resolveLibrary(libraryID string) (domain.Library, domain.CollectionKind) {
	for _, lib := range c.catalog.Libraries() {
		if lib.ID == libraryID {
			return lib, lib.Kind
		}
	}
	return domain.Library{ID: libraryID}, domain.CollectionUnknown
}

// ensureSession validates the session before a fetch. Failures surface as
// a single "please log in again" error and never touch accumulated data.
func (c *Coordinator) ensureSession(ctx context.Context) error {
	if err := c.session.EnsureValid(ctx); err != nil {
		if domain.IsCancelled(err) {
			return err
		}
		authErr := domain.WrapError(domain.ErrKindAuthRequired, err, "please log in again")
		c.fail(authErr)
		return authErr
	}
	return nil
}

// saveItems persists a library's accumulated collection (best effort).
func (c *Coordinator) saveItems(libraryID string) {
	if c.store == nil {
		return
	}
	items := c.Snapshot().Items(libraryID)
	if err := c.store.SaveItems(libraryID, items); err != nil {
		c.logger.Error("failed to cache items", "error", err, "libID", libraryID)
	}
}

// filterByKind keeps only items matching a collection kind.
func filterByKind(items []domain.MediaItem, kind domain.CollectionKind) []domain.MediaItem {
	var want map[domain.MediaKind]bool
	switch kind {
	case domain.CollectionMovies:
		want = map[domain.MediaKind]bool{domain.MediaKindMovie: true}
	case domain.CollectionTV:
		want = map[domain.MediaKind]bool{domain.MediaKindSeries: true, domain.MediaKindEpisode: true}
	case domain.CollectionMusic:
		want = map[domain.MediaKind]bool{domain.MediaKindAudio: true}
	default:
		return items
	}
	out := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if want[item.Kind] {
			out = append(out, item)
		}
	}
	return out
}
