package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjpeters/reel/internal/domain"
)

func item(id, title string) domain.MediaItem {
	return domain.MediaItem{ID: id, Title: title, Kind: domain.MediaKindMovie}
}

func ids(items []domain.MediaItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestItems_AppendsNewInPageOrder(t *testing.T) {
	existing := []domain.MediaItem{item("a", "A"), item("b", "B")}
	fresh := []domain.MediaItem{item("c", "C"), item("d", "D")}

	merged := Items(existing, fresh)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(merged))
}

func TestItems_DuplicateReplacesInPlace(t *testing.T) {
	existing := []domain.MediaItem{item("a", "A"), item("b", "B"), item("c", "C")}
	fresh := []domain.MediaItem{item("b", "B updated"), item("d", "D")}

	merged := Items(existing, fresh)
	require.Equal(t, []string{"a", "b", "c", "d"}, ids(merged))
	assert.Equal(t, "B updated", merged[1].Title, "duplicate keeps its position but picks up new fields")
}

func TestItems_EmptyPageReturnsExisting(t *testing.T) {
	existing := []domain.MediaItem{item("a", "A")}
	assert.Equal(t, existing, Items(existing, nil))
}

func TestItems_FirstPageDedupes(t *testing.T) {
	fresh := []domain.MediaItem{item("a", "A"), item("b", "B"), item("a", "A again")}

	merged := Items(nil, fresh)
	require.Equal(t, []string{"a", "b"}, ids(merged))
	assert.Equal(t, "A again", merged[0].Title)
}

func TestItems_DoesNotMutateExisting(t *testing.T) {
	existing := []domain.MediaItem{item("a", "A")}
	fresh := []domain.MediaItem{item("a", "A updated"), item("b", "B")}

	Items(existing, fresh)
	assert.Equal(t, "A", existing[0].Title, "the accumulated slice is never written through")
}

func TestItems_CompositeKeyForIDLessItems(t *testing.T) {
	a := domain.MediaItem{Title: "Alpha", Kind: domain.MediaKindMovie}
	b := domain.MediaItem{Title: "Beta", Kind: domain.MediaKindMovie}

	merged := Items([]domain.MediaItem{a}, []domain.MediaItem{a, b})
	assert.Len(t, merged, 2, "distinct id-less items never collapse")

	merged = Items(merged, []domain.MediaItem{a})
	assert.Len(t, merged, 2, "the same id-less item never duplicates")
}

func TestReplace(t *testing.T) {
	items := []domain.MediaItem{item("a", "A"), item("b", "B")}

	updated := item("b", "B watched")
	updated.IsPlayed = true
	out := Replace(items, updated)

	require.Equal(t, []string{"a", "b"}, ids(out))
	assert.True(t, out[1].IsPlayed)
	assert.False(t, items[1].IsPlayed, "original slice untouched")

	same := Replace(items, item("zz", "missing"))
	assert.Equal(t, items, same)
}

func TestRemove(t *testing.T) {
	items := []domain.MediaItem{item("a", "A"), item("b", "B"), item("c", "C")}

	out := Remove(items, "b")
	assert.Equal(t, []string{"a", "c"}, ids(out))
	assert.Len(t, items, 3, "original slice untouched")

	same := Remove(items, "zz")
	assert.Equal(t, items, same)
}
