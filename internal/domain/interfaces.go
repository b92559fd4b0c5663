package domain

import "context"

// ItemPage is one page of a paged fetch. Total is the server-reported
// total when available (0 when the server omits it); pagination decisions
// are made from page fullness, not Total.
type ItemPage struct {
	Items []MediaItem
	Total int
}

// LibraryGateway is the remote fetch surface consumed by the coordinator.
// Implemented by media server clients (Jellyfin).
type LibraryGateway interface {
	// ListLibraries returns all library sections visible to the user
	ListLibraries(ctx context.Context) ([]Library, error)

	// FetchItems returns one page of items for a library. kindFilter is a
	// server-side item type filter ("" for none); offset/limit control
	// pagination.
	FetchItems(ctx context.Context, libraryID, kindFilter string, offset, limit int) (ItemPage, error)

	// RecentlyAdded returns the newest items, optionally filtered by item
	// type.
	RecentlyAdded(ctx context.Context, kindFilter string, limit int) ([]MediaItem, error)

	// Search performs a server-side title search across all libraries
	Search(ctx context.Context, query string, limit int) ([]MediaItem, error)

	// SetFavorite flags or unflags an item as favorite
	SetFavorite(ctx context.Context, itemID string, favorite bool) error

	// SetPlayed marks an item watched or unwatched
	SetPlayed(ctx context.Context, itemID string, played bool) error

	// DeleteItem removes an item from the server
	DeleteItem(ctx context.Context, itemID string) error
}

// SessionGuard validates the session before any fetch. EnsureValid may
// perform a network round trip to re-authenticate.
type SessionGuard interface {
	IsAuthenticated() bool
	EnsureValid(ctx context.Context) error
}

// Store is the warm-start cache. Reads return (value, ok) and never hit
// the network; writes are best-effort (a failed save is logged, not fatal).
type Store interface {
	GetLibraries() ([]Library, bool)
	SaveLibraries(libs []Library) error

	GetItems(libraryID string) ([]MediaItem, bool)
	SaveItems(libraryID string, items []MediaItem) error

	InvalidateLibrary(libraryID string)
	InvalidateAll()

	Close() error
}
