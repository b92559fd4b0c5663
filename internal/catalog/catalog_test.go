package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/log"
)

type fakeGateway struct {
	libs  []domain.Library
	err   error
	calls int
}

func (g *fakeGateway) ListLibraries(ctx context.Context) ([]domain.Library, error) {
	g.calls++
	return g.libs, g.err
}

func (g *fakeGateway) FetchItems(ctx context.Context, libraryID, kindFilter string, offset, limit int) (domain.ItemPage, error) {
	return domain.ItemPage{}, nil
}

func (g *fakeGateway) RecentlyAdded(ctx context.Context, kindFilter string, limit int) ([]domain.MediaItem, error) {
	return nil, nil
}

func (g *fakeGateway) Search(ctx context.Context, query string, limit int) ([]domain.MediaItem, error) {
	return nil, nil
}

func (g *fakeGateway) SetFavorite(ctx context.Context, itemID string, favorite bool) error {
	return nil
}
func (g *fakeGateway) SetPlayed(ctx context.Context, itemID string, played bool) error { return nil }
func (g *fakeGateway) DeleteItem(ctx context.Context, itemID string) error             { return nil }

func TestRefresh_CachesUntilForced(t *testing.T) {
	gw := &fakeGateway{libs: []domain.Library{{ID: "1", Name: "Movies", Kind: domain.CollectionMovies}}}
	c := New(gw, log.Null())

	libs, err := c.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, libs, 1)

	_, err = c.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls, "populated catalog answers without a network call")

	_, err = c.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.calls)
}

func TestRefresh_FailureKeepsPreviousList(t *testing.T) {
	gw := &fakeGateway{libs: []domain.Library{{ID: "1", Name: "Movies", Kind: domain.CollectionMovies}}}
	c := New(gw, log.Null())

	_, err := c.Refresh(context.Background(), false)
	require.NoError(t, err)

	gw.err = domain.NewError(domain.ErrKindNetwork, "unreachable")
	_, err = c.Refresh(context.Background(), true)
	require.Error(t, err)

	assert.Len(t, c.Libraries(), 1, "a failed refresh never wipes the stored list")
}

func TestSeed_DoesNotMarkPopulated(t *testing.T) {
	gw := &fakeGateway{libs: []domain.Library{{ID: "fresh", Name: "Movies", Kind: domain.CollectionMovies}}}
	c := New(gw, log.Null())

	c.Seed([]domain.Library{{ID: "cached", Name: "Movies", Kind: domain.CollectionMovies}})
	assert.Equal(t, "cached", c.Libraries()[0].ID)

	libs, err := c.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "fresh", libs[0].ID, "seeded data never suppresses the first real refresh")
	assert.Equal(t, 1, gw.calls)
}

func TestFindByKind_ExactMatchWins(t *testing.T) {
	c := New(&fakeGateway{}, log.Null())
	c.Seed([]domain.Library{
		{ID: "1", Name: "Films", Kind: domain.CollectionMovies},
		{ID: "2", Name: "Movies", Kind: domain.CollectionTV},
	})

	lib, ok := c.FindByKind(domain.CollectionMovies)
	require.True(t, ok)
	assert.Equal(t, "1", lib.ID, "declared kind beats a matching name")
}

func TestFindByKind_OtherMatchesUndeclaredLibraries(t *testing.T) {
	c := New(&fakeGateway{}, log.Null())
	c.Seed([]domain.Library{
		{ID: "1", Name: "Movies", Kind: domain.CollectionMovies},
		{ID: "2", Name: "Home Videos", Kind: domain.CollectionUnknown},
	})

	lib, ok := c.FindByKind(domain.CollectionOther)
	require.True(t, ok)
	assert.Equal(t, "2", lib.ID)
}

func TestFindByKind_NameFallbackWhenKindMissing(t *testing.T) {
	c := New(&fakeGateway{}, log.Null())
	c.Seed([]domain.Library{
		{ID: "1", Name: "tv shows", Kind: domain.CollectionUnknown},
	})

	lib, ok := c.FindByKind(domain.CollectionTV)
	require.True(t, ok)
	assert.Equal(t, "1", lib.ID)

	_, ok = c.FindByKind(domain.CollectionMusic)
	assert.False(t, ok)
}

func TestFindByKind_Deterministic(t *testing.T) {
	c := New(&fakeGateway{}, log.Null())
	c.Seed([]domain.Library{
		{ID: "first", Name: "Movies A", Kind: domain.CollectionMovies},
		{ID: "second", Name: "Movies B", Kind: domain.CollectionMovies},
	})

	for i := 0; i < 10; i++ {
		lib, ok := c.FindByKind(domain.CollectionMovies)
		require.True(t, ok)
		assert.Equal(t, "first", lib.ID)
	}
}

func TestClear(t *testing.T) {
	gw := &fakeGateway{libs: []domain.Library{{ID: "1", Name: "Movies", Kind: domain.CollectionMovies}}}
	c := New(gw, log.Null())

	_, err := c.Refresh(context.Background(), false)
	require.NoError(t, err)

	c.Clear()
	assert.Empty(t, c.Libraries())

	_, err = c.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.calls, "a cleared catalog refreshes from the server again")
}
