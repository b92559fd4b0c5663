// Package coordinator is the single entry point for loading library data.
// It owns the application state snapshot, the per-kind duplicate-load
// guard, and the per-library pagination trackers; the UI only reads
// snapshots and issues commands.
package coordinator

import (
	"log/slog"
	"sync"

	"github.com/mjpeters/reel/internal/catalog"
	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/search"
	"github.com/mjpeters/reel/internal/state"
)

const (
	defaultPageSize    = 100
	defaultRecentLimit = 20
	defaultSearchLimit = 50
	subscriberBuffer   = 16
)

// kindPhase tracks where a per-kind load stands within the session.
type kindPhase int

const (
	kindIdle kindPhase = iota
	kindPending
	kindLoaded
)

// Options tunes the coordinator. Zero values pick the defaults.
type Options struct {
	PageSize    int // Items per page (canonical for the whole session)
	RecentLimit int // Items fetched for the recently-added rows
	SearchLimit int // Max server-side search results
}

// Coordinator orchestrates loads and owns all shared mutable state.
type Coordinator struct {
	gateway  domain.LibraryGateway
	session  domain.SessionGuard
	catalog  *catalog.Catalog
	store    domain.Store // optional warm-start cache
	searcher *search.Service
	logger   *slog.Logger

	pageSize    int
	recentLimit int
	searchLimit int

	mu             sync.Mutex
	snapshot       state.AppState
	kinds          map[domain.CollectionKind]kindPhase
	initialPending bool
	searchSeq      uint64
	subs           map[int]chan state.AppState
	nextSubID      int
}

// New creates a coordinator. When a store is supplied, cached libraries
// and items are loaded into the initial snapshot so the UI has content
// before the first fetch completes; cached data never marks a kind loaded,
// so the next load still goes to the server.
func New(gateway domain.LibraryGateway, session domain.SessionGuard, cat *catalog.Catalog, st domain.Store, logger *slog.Logger, opts Options) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = defaultSearchLimit
	}

	c := &Coordinator{
		gateway:     gateway,
		session:     session,
		catalog:     cat,
		store:       st,
		searcher:    search.NewService(logger),
		logger:      logger,
		pageSize:    opts.PageSize,
		recentLimit: opts.RecentLimit,
		searchLimit: opts.SearchLimit,
		snapshot:    state.New(),
		kinds:       map[domain.CollectionKind]kindPhase{},
		subs:        map[int]chan state.AppState{},
	}
	c.warmStart()
	return c
}

// warmStart seeds the snapshot from the on-disk cache.
func (c *Coordinator) warmStart() {
	if c.store == nil {
		return
	}
	libs, ok := c.store.GetLibraries()
	if !ok {
		return
	}
	c.catalog.Seed(libs)
	c.snapshot = c.snapshot.With(func(s *state.AppState) {
		s.Libraries = libs
		for _, lib := range libs {
			items, ok := c.store.GetItems(lib.ID)
			if !ok || len(items) == 0 {
				continue
			}
			s.SetItems(lib.ID, items)
			s.SetPage(lib.ID, state.PageState{LoadedCount: len(items), HasMore: true})
		}
	})
	c.logger.Debug("warm start from cache", "libraries", len(libs))
}

// Snapshot returns the current state. The returned value is immutable.
func (c *Coordinator) Snapshot() state.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Subscribe registers a state observer. The channel is buffered and
// updates are dropped rather than blocking the coordinator; observers
// should treat a receive as "state changed" and read the latest value.
// The returned func cancels the subscription.
func (c *Coordinator) Subscribe() (<-chan state.AppState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan state.AppState, subscriberBuffer)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// update applies fn to the snapshot under the lock and publishes the new
// snapshot to all subscribers. Observers never see partial state: the
// whole aggregate is replaced in one step.
func (c *Coordinator) update(fn func(*state.AppState)) state.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = c.snapshot.With(fn)
	c.publishLocked(c.snapshot)
	return c.snapshot
}

// publishLocked fans a snapshot out to subscribers without blocking.
// Callers hold mu, so snapshots arrive on each channel in version order.
func (c *Coordinator) publishLocked(snap state.AppState) {
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default: // Slow observer; it will pick up a later snapshot
		}
	}
}

// fail records a user-visible error. Cancellations are silent: they never
// set or overwrite the error field.
func (c *Coordinator) fail(err error) {
	if err == nil || domain.IsCancelled(err) {
		return
	}
	msg := err.Error()
	c.logger.Error("operation failed", "error", err, "kind", domain.KindOf(err))
	c.update(func(s *state.AppState) { s.Err = msg })
}

// ClearError clears the error field. Safe to call repeatedly.
func (c *Coordinator) ClearError() {
	c.update(func(s *state.AppState) { s.Err = "" })
}

// ClearState resets everything to the empty session state (logout). The
// catalog, the duplicate-load guard, and the on-disk cache are all wiped.
func (c *Coordinator) ClearState() {
	c.mu.Lock()
	c.kinds = map[domain.CollectionKind]kindPhase{}
	c.initialPending = false
	c.searchSeq++
	c.mu.Unlock()

	c.catalog.Clear()
	if c.store != nil {
		c.store.InvalidateAll()
	}
	c.update(func(s *state.AppState) {
		*s = state.New()
	})
	c.logger.Info("state cleared")
}
