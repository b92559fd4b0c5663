package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjpeters/reel/internal/domain"
)

func testLibraries() []domain.Library {
	return []domain.Library{
		{ID: "lib1", Name: "Movies", Kind: domain.CollectionMovies},
		{ID: "lib2", Name: "Shows", Kind: domain.CollectionTV},
	}
}

func testItems() []domain.MediaItem {
	return []domain.MediaItem{
		{ID: "m1", Title: "The Thing", Kind: domain.MediaKindMovie, LibraryID: "lib1"},
		{ID: "m2", Title: "Alien", Kind: domain.MediaKindMovie, LibraryID: "lib1", IsFavorite: true},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir(), "http://server:8096")
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.GetLibraries()
	assert.False(t, ok, "empty cache misses")

	require.NoError(t, s.SaveLibraries(testLibraries()))
	require.NoError(t, s.SaveItems("lib1", testItems()))

	libs, ok := s.GetLibraries()
	require.True(t, ok)
	assert.Equal(t, testLibraries(), libs)

	items, ok := s.GetItems("lib1")
	require.True(t, ok)
	assert.Equal(t, testItems(), items)

	_, ok = s.GetItems("lib2")
	assert.False(t, ok)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir, "http://server:8096")
	require.NoError(t, err)
	require.NoError(t, s.SaveLibraries(testLibraries()))
	require.NoError(t, s.Close())

	reopened, err := New(dir, "http://server:8096")
	require.NoError(t, err)
	defer reopened.Close()

	libs, ok := reopened.GetLibraries()
	require.True(t, ok)
	assert.Len(t, libs, 2)
}

func TestStore_NamespacedByServer(t *testing.T) {
	dir := t.TempDir()

	a, err := New(dir, "http://server-a:8096")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.SaveLibraries(testLibraries()))

	b, err := New(dir, "http://server-b:8096")
	require.NoError(t, err)
	defer b.Close()

	_, ok := b.GetLibraries()
	assert.False(t, ok, "caches for different servers never mix")
}

func TestStore_InvalidateLibrary(t *testing.T) {
	s, err := New(t.TempDir(), "http://server:8096")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveItems("lib1", testItems()))
	s.InvalidateLibrary("lib1")

	_, ok := s.GetItems("lib1")
	assert.False(t, ok)
}

func TestStore_InvalidateAll(t *testing.T) {
	s, err := New(t.TempDir(), "http://server:8096")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveLibraries(testLibraries()))
	require.NoError(t, s.SaveItems("lib1", testItems()))

	s.InvalidateAll()

	_, ok := s.GetLibraries()
	assert.False(t, ok)
	_, ok = s.GetItems("lib1")
	assert.False(t, ok)
}

func TestStore_MemoryOnlyMode(t *testing.T) {
	s, err := New("", "")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveLibraries(testLibraries()))
	libs, ok := s.GetLibraries()
	require.True(t, ok)
	assert.Len(t, libs, 2)
}

func TestHashServerURL_Normalizes(t *testing.T) {
	assert.Equal(t, hashServerURL("http://Server:8096/"), hashServerURL("http://server:8096"))
	assert.NotEqual(t, hashServerURL("http://a:8096"), hashServerURL("http://b:8096"))
}
