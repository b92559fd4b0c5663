package domain

import (
	"fmt"
	"strings"
	"time"
)

// MediaKind distinguishes item content types
type MediaKind int

const (
	MediaKindMovie MediaKind = iota
	MediaKindSeries
	MediaKindEpisode
	MediaKindAudio
	MediaKindOther
)

// String returns the server-facing type name for the media kind
func (k MediaKind) String() string {
	switch k {
	case MediaKindMovie:
		return "movie"
	case MediaKindSeries:
		return "series"
	case MediaKindEpisode:
		return "episode"
	case MediaKindAudio:
		return "audio"
	default:
		return "other"
	}
}

// MediaItem represents a single library item (movie, series, episode, track).
// Items are value objects: watched/favorite toggles produce a new item that
// replaces the old one by identifier, never an in-place mutation.
type MediaItem struct {
	ID         string        // Server-assigned unique identifier
	Title      string        // Display title
	SortTitle  string        // Title used for sorting
	Kind       MediaKind     // Movie, Series, Episode, Audio
	LibraryID  string        // Parent library ID
	Summary    string        // Plot synopsis
	Year       int           // Release year
	AddedAt    int64         // Unix timestamp when added to library
	Duration   time.Duration // Total runtime
	IsPlayed   bool          // Whether item is marked as watched
	IsFavorite bool          // Whether item is marked as favorite

	// Episode-specific fields (empty otherwise)
	SeriesID    string // Parent series ID
	SeriesTitle string // Parent series name
	SeasonNum   int    // Season number (0 = specials)
	EpisodeNum  int    // Episode number within season

	// Image URLs
	ThumbURL string // Poster/thumbnail image URL
}

// Key returns the identity used for de-duplication. Items from malformed
// server records may lack an ID; those fall back to a composite key so a
// merge never collapses distinct id-less items.
func (m MediaItem) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return fmt.Sprintf("%s|%s|%s", m.Title, m.SortTitle, m.Kind)
}

// DisplaySortTitle returns the sort title, falling back to the title
func (m MediaItem) DisplaySortTitle() string {
	if m.SortTitle != "" {
		return m.SortTitle
	}
	return m.Title
}

// EpisodeCode returns the formatted episode code (e.g., "S01E05")
func (m MediaItem) EpisodeCode() string {
	if m.Kind != MediaKindEpisode {
		return ""
	}
	return fmt.Sprintf("S%02dE%02d", m.SeasonNum, m.EpisodeNum)
}

// FormattedDuration returns the duration in a human-readable format
func (m MediaItem) FormattedDuration() string {
	h := int(m.Duration.Hours())
	mins := int(m.Duration.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// CollectionKind identifies what a library declares itself to contain
type CollectionKind string

const (
	CollectionMovies  CollectionKind = "movies"
	CollectionTV      CollectionKind = "tv"
	CollectionMusic   CollectionKind = "music"
	CollectionOther   CollectionKind = "other"
	CollectionUnknown CollectionKind = ""
)

// CanonicalName returns the display name used for the last-resort
// name-match fallback when a server omits the collection kind field.
func (c CollectionKind) CanonicalName() string {
	switch c {
	case CollectionMovies:
		return "Movies"
	case CollectionTV:
		return "TV Shows"
	case CollectionMusic:
		return "Music"
	default:
		return ""
	}
}

// ItemKindFilter returns the server-side item type filter used when
// fetching items of this collection kind, or "" for no filter.
func (c CollectionKind) ItemKindFilter() string {
	switch c {
	case CollectionMovies:
		return "Movie"
	case CollectionTV:
		return "Series"
	case CollectionMusic:
		return "MusicAlbum,Audio"
	default:
		return ""
	}
}

// Library represents a media server library section. Immutable once
// fetched; the set of libraries may be refreshed wholesale.
type Library struct {
	ID   string         // Server-assigned unique identifier
	Name string         // Display name
	Kind CollectionKind // Declared collection kind
}

// MatchesKind reports whether this library satisfies a load request for
// the given kind. "Other" matches any library outside the three primary
// collection kinds.
func (l Library) MatchesKind(kind CollectionKind) bool {
	if l.Kind == kind {
		return true
	}
	if kind == CollectionOther {
		switch l.Kind {
		case CollectionMovies, CollectionTV, CollectionMusic:
			return false
		default:
			return true
		}
	}
	return false
}

// NameMatchesKind is the narrow fallback for servers that omit the kind
// field: a case-insensitive comparison against the kind's canonical name.
func (l Library) NameMatchesKind(kind CollectionKind) bool {
	canonical := kind.CanonicalName()
	return canonical != "" && strings.EqualFold(l.Name, canonical)
}
