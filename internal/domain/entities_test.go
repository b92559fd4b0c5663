package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMediaItemKey(t *testing.T) {
	withID := MediaItem{ID: "abc123", Title: "The Thing"}
	assert.Equal(t, "abc123", withID.Key())

	noID := MediaItem{Title: "The Thing", SortTitle: "Thing, The", Kind: MediaKindMovie}
	assert.Equal(t, "The Thing|Thing, The|movie", noID.Key())

	// Same title, different kind: the composite key keeps them distinct.
	series := noID
	series.Kind = MediaKindSeries
	assert.NotEqual(t, noID.Key(), series.Key())
}

func TestEpisodeCode(t *testing.T) {
	ep := MediaItem{Kind: MediaKindEpisode, SeasonNum: 1, EpisodeNum: 5}
	assert.Equal(t, "S01E05", ep.EpisodeCode())

	special := MediaItem{Kind: MediaKindEpisode, SeasonNum: 0, EpisodeNum: 12}
	assert.Equal(t, "S00E12", special.EpisodeCode())

	movie := MediaItem{Kind: MediaKindMovie}
	assert.Empty(t, movie.EpisodeCode())
}

func TestFormattedDuration(t *testing.T) {
	assert.Equal(t, "2h 15m", MediaItem{Duration: 2*time.Hour + 15*time.Minute}.FormattedDuration())
	assert.Equal(t, "45m", MediaItem{Duration: 45 * time.Minute}.FormattedDuration())
}

func TestCollectionKindItemFilter(t *testing.T) {
	assert.Equal(t, "Movie", CollectionMovies.ItemKindFilter())
	assert.Equal(t, "Series", CollectionTV.ItemKindFilter())
	assert.Equal(t, "MusicAlbum,Audio", CollectionMusic.ItemKindFilter())
	assert.Empty(t, CollectionOther.ItemKindFilter())
	assert.Empty(t, CollectionUnknown.ItemKindFilter())
}

func TestLibraryMatchesKind(t *testing.T) {
	movies := Library{ID: "1", Name: "Movies", Kind: CollectionMovies}
	assert.True(t, movies.MatchesKind(CollectionMovies))
	assert.False(t, movies.MatchesKind(CollectionTV))
	assert.False(t, movies.MatchesKind(CollectionOther))

	photos := Library{ID: "2", Name: "Photos", Kind: CollectionUnknown}
	assert.True(t, photos.MatchesKind(CollectionOther))
	assert.False(t, photos.MatchesKind(CollectionMovies))
}

func TestLibraryNameMatchesKind(t *testing.T) {
	lib := Library{Name: "tv shows"}
	assert.True(t, lib.NameMatchesKind(CollectionTV))
	assert.False(t, lib.NameMatchesKind(CollectionMovies))

	// "Other" has no canonical name; the fallback never matches it.
	anything := Library{Name: "Other"}
	assert.False(t, anything.NameMatchesKind(CollectionOther))
}
