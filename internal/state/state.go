// Package state defines the immutable application state snapshot observed
// by the UI. Snapshots are replaced wholesale on every mutation; a
// snapshot handed to an observer is never written to again.
package state

import (
	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/merge"
)

// PageState tracks pagination progress for a single library.
type PageState struct {
	LoadedCount   int  // Items accumulated so far; always equals len(ItemsByLibrary[id])
	HasMore       bool // Whether the last page was full (heuristic, not server total)
	IsLoadingMore bool // True only while one fetch is in flight for this library
}

// SearchState carries the current search query, its results, and whether
// a search is still running.
type SearchState struct {
	Query      string
	Results    []domain.MediaItem
	InProgress bool
}

// AppState is the root aggregate the UI observes. Created empty at
// session start, populated by successive loads, fully reset on logout.
type AppState struct {
	Version uint64 // Monotonic snapshot counter

	Libraries      []domain.Library
	ItemsByLibrary map[string][]domain.MediaItem
	Pages          map[string]PageState

	RecentlyAdded []domain.MediaItem
	RecentByKind  map[domain.CollectionKind][]domain.MediaItem
	Favorites     []domain.MediaItem

	LoadingKinds map[domain.CollectionKind]bool // Per-kind first-load flags
	IsLoading    bool                           // Initial-data load in flight

	Search SearchState

	Err string // Last user-visible error ("" when clear)
}

// New returns an empty snapshot
func New() AppState {
	return AppState{
		ItemsByLibrary: map[string][]domain.MediaItem{},
		Pages:          map[string]PageState{},
		LoadingKinds:   map[domain.CollectionKind]bool{},
		RecentByKind:   map[domain.CollectionKind][]domain.MediaItem{},
	}
}

// clone produces a shallow copy with fresh maps so the mutation helpers
// never write through to a published snapshot. Slices are replaced, not
// appended to, by every helper, so sharing them is safe.
func (s AppState) clone() AppState {
	next := s
	next.ItemsByLibrary = make(map[string][]domain.MediaItem, len(s.ItemsByLibrary))
	for k, v := range s.ItemsByLibrary {
		next.ItemsByLibrary[k] = v
	}
	next.Pages = make(map[string]PageState, len(s.Pages))
	for k, v := range s.Pages {
		next.Pages[k] = v
	}
	next.LoadingKinds = make(map[domain.CollectionKind]bool, len(s.LoadingKinds))
	for k, v := range s.LoadingKinds {
		next.LoadingKinds[k] = v
	}
	next.RecentByKind = make(map[domain.CollectionKind][]domain.MediaItem, len(s.RecentByKind))
	for k, v := range s.RecentByKind {
		next.RecentByKind[k] = v
	}
	return next
}

// With returns a new snapshot with fn applied and the version bumped.
// fn may use the mutation helpers freely; the receiver is untouched.
func (s AppState) With(fn func(*AppState)) AppState {
	next := s.clone()
	fn(&next)
	next.Version = s.Version + 1
	return next
}

// Page returns the page state for a library (zero value when untracked)
func (s AppState) Page(libraryID string) PageState {
	return s.Pages[libraryID]
}

// Items returns the accumulated collection for a library
func (s AppState) Items(libraryID string) []domain.MediaItem {
	return s.ItemsByLibrary[libraryID]
}

// AllItems returns every accumulated item across libraries, in library
// order then accumulation order.
func (s AppState) AllItems() []domain.MediaItem {
	var all []domain.MediaItem
	for _, lib := range s.Libraries {
		all = append(all, s.ItemsByLibrary[lib.ID]...)
	}
	return all
}

// LibraryByID finds a library in the snapshot
func (s AppState) LibraryByID(id string) (domain.Library, bool) {
	for _, lib := range s.Libraries {
		if lib.ID == id {
			return lib, true
		}
	}
	return domain.Library{}, false
}

// --- Mutation helpers (used inside With callbacks only) ---

// SetItems replaces a library's accumulated collection and keeps
// LoadedCount in lockstep with its length.
func (s *AppState) SetItems(libraryID string, items []domain.MediaItem) {
	s.ItemsByLibrary[libraryID] = items
	page := s.Pages[libraryID]
	page.LoadedCount = len(items)
	s.Pages[libraryID] = page
}

// SetPage replaces a library's page state
func (s *AppState) SetPage(libraryID string, page PageState) {
	s.Pages[libraryID] = page
}

// ApplyItem propagates an updated item into every collection that holds a
// copy of it, so the same logical item never shows stale status in two
// lists.
func (s *AppState) ApplyItem(updated domain.MediaItem) {
	for libID, items := range s.ItemsByLibrary {
		s.ItemsByLibrary[libID] = merge.Replace(items, updated)
	}
	s.RecentlyAdded = merge.Replace(s.RecentlyAdded, updated)
	for kind, items := range s.RecentByKind {
		s.RecentByKind[kind] = merge.Replace(items, updated)
	}
	s.Search.Results = merge.Replace(s.Search.Results, updated)
	s.Favorites = merge.Replace(s.Favorites, updated)
	if updated.IsFavorite && !containsKey(s.Favorites, updated.Key()) {
		s.Favorites = append(append([]domain.MediaItem(nil), s.Favorites...), updated)
	} else if !updated.IsFavorite {
		s.Favorites = merge.Remove(s.Favorites, updated.Key())
	}
}

// RemoveItem drops a deleted item from every collection and keeps the
// affected page counters consistent.
func (s *AppState) RemoveItem(key string) {
	for libID, items := range s.ItemsByLibrary {
		trimmed := merge.Remove(items, key)
		if len(trimmed) != len(items) {
			s.SetItems(libID, trimmed)
		}
	}
	s.RecentlyAdded = merge.Remove(s.RecentlyAdded, key)
	for kind, items := range s.RecentByKind {
		s.RecentByKind[kind] = merge.Remove(items, key)
	}
	s.Search.Results = merge.Remove(s.Search.Results, key)
	s.Favorites = merge.Remove(s.Favorites, key)
}

func containsKey(items []domain.MediaItem, key string) bool {
	for _, item := range items {
		if item.Key() == key {
			return true
		}
	}
	return false
}
