// Package catalog holds the authoritative list of libraries for the
// session.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mjpeters/reel/internal/domain"
)

// Catalog is the in-memory registry of known libraries. Populated once
// per session via Refresh; reads never hit the network.
type Catalog struct {
	gateway domain.LibraryGateway
	logger  *slog.Logger

	mu        sync.RWMutex
	libraries []domain.Library
	populated bool
}

// New creates an empty catalog backed by the gateway
func New(gateway domain.LibraryGateway, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{gateway: gateway, logger: logger}
}

// Refresh fetches the library list. When force is false and the catalog
// is already populated, the stored list is returned without a network
// call. On failure the previous list stays intact.
func (c *Catalog) Refresh(ctx context.Context, force bool) ([]domain.Library, error) {
	c.mu.RLock()
	if c.populated && !force {
		libs := c.libraries
		c.mu.RUnlock()
		return libs, nil
	}
	c.mu.RUnlock()

	libs, err := c.gateway.ListLibraries(ctx)
	if err != nil {
		c.logger.Error("failed to refresh libraries", "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.libraries = libs
	c.populated = true
	c.mu.Unlock()

	c.logger.Debug("refreshed libraries", "count", len(libs))
	return libs, nil
}

// Libraries returns the stored list (nil before the first Refresh)
func (c *Catalog) Libraries() []domain.Library {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.libraries
}

// Seed installs a previously cached list without marking the catalog
// populated, so the next Refresh still goes to the server.
func (c *Catalog) Seed(libs []domain.Library) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.populated {
		c.libraries = libs
	}
}

// Clear forgets the stored list (logout)
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.libraries = nil
	c.populated = false
}

// FindByKind selects the library serving a collection kind. Selection is
// deterministic: first exact declared-kind match, then (for "other") the
// first library outside movies/tv/music, then a case-insensitive name
// match against the kind's canonical name. The name match exists for
// servers that omit the kind field entirely; it is a narrow last resort,
// not general guessing.
func (c *Catalog) FindByKind(kind domain.CollectionKind) (domain.Library, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, lib := range c.libraries {
		if lib.Kind == kind {
			return lib, true
		}
	}
	if kind == domain.CollectionOther {
		for _, lib := range c.libraries {
			if lib.MatchesKind(domain.CollectionOther) {
				return lib, true
			}
		}
	}
	for _, lib := range c.libraries {
		if lib.NameMatchesKind(kind) {
			return lib, true
		}
	}
	return domain.Library{}, false
}
