// Package merge folds freshly fetched pages into accumulated collections
// without duplicating items or disturbing their order.
package merge

import "github.com/mjpeters/reel/internal/domain"

// Items merges a new page into an existing accumulated collection.
//
// Identity is domain.MediaItem.Key(): the server ID when present, a
// composite (title, sort title, kind) key otherwise. Existing items keep
// their positions; a new item with a known key replaces the existing entry
// in place (picking up updated fields), unseen items append in page order.
// The in-place replacement keeps scroll position stable when a page is
// re-fetched. Runs in O(existing + new).
func Items(existing, fresh []domain.MediaItem) []domain.MediaItem {
	if len(fresh) == 0 {
		return existing
	}
	if len(existing) == 0 {
		return dedupe(fresh)
	}

	merged := make([]domain.MediaItem, len(existing), len(existing)+len(fresh))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, item := range merged {
		index[item.Key()] = i
	}

	for _, item := range fresh {
		key := item.Key()
		if i, ok := index[key]; ok {
			merged[i] = item
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

// Replace applies an updated item across a collection by identity,
// returning the original slice untouched when the item is absent.
func Replace(items []domain.MediaItem, updated domain.MediaItem) []domain.MediaItem {
	key := updated.Key()
	replaced := false
	for i, item := range items {
		if item.Key() == key {
			if !replaced {
				items = append([]domain.MediaItem(nil), items...)
				replaced = true
			}
			items[i] = updated
		}
	}
	return items
}

// Remove drops an item from a collection by identity, returning the
// original slice untouched when the item is absent.
func Remove(items []domain.MediaItem, key string) []domain.MediaItem {
	for i, item := range items {
		if item.Key() == key {
			out := make([]domain.MediaItem, 0, len(items)-1)
			out = append(out, items[:i]...)
			for _, rest := range items[i+1:] {
				if rest.Key() != key {
					out = append(out, rest)
				}
			}
			return out
		}
	}
	return items
}

// dedupe removes duplicate keys from a single page, keeping the last
// occurrence's fields at the first occurrence's position.
func dedupe(items []domain.MediaItem) []domain.MediaItem {
	out := make([]domain.MediaItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		key := item.Key()
		if i, ok := index[key]; ok {
			out[i] = item
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}
