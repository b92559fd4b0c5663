package jellyfin

import (
	"fmt"
	"time"

	"github.com/mjpeters/reel/internal/domain"
)

// Jellyfin reports durations in 100-nanosecond ticks
const ticksPerSecond = 10000000

// MapLibraries converts Jellyfin views to domain libraries
func MapLibraries(items []Item) []domain.Library {
	libraries := make([]domain.Library, 0, len(items))
	for _, item := range items {
		libraries = append(libraries, domain.Library{
			ID:   item.ID,
			Name: item.Name,
			Kind: mapCollectionKind(item.CollectionType),
		})
	}
	return libraries
}

func mapCollectionKind(collectionType string) domain.CollectionKind {
	switch collectionType {
	case "movies":
		return domain.CollectionMovies
	case "tvshows":
		return domain.CollectionTV
	case "music":
		return domain.CollectionMusic
	case "":
		// Some servers omit the collection type entirely; the catalog's
		// name-match fallback handles these.
		return domain.CollectionUnknown
	default:
		return domain.CollectionOther
	}
}

// MapItems converts Jellyfin items to domain media items
func MapItems(items []Item, serverURL string) []domain.MediaItem {
	mapped := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, mapItem(item, serverURL))
	}
	return mapped
}

func mapItem(item Item, serverURL string) domain.MediaItem {
	mi := domain.MediaItem{
		ID:          item.ID,
		Title:       item.Name,
		SortTitle:   item.SortName,
		Kind:        mapMediaKind(item.Type),
		Summary:     item.Overview,
		Year:        item.ProductionYear,
		Duration:    time.Duration(item.RunTimeTicks/ticksPerSecond) * time.Second,
		SeriesID:    item.SeriesID,
		SeriesTitle: item.SeriesName,
		SeasonNum:   item.ParentIndexNumber,
		EpisodeNum:  item.IndexNumber,
	}

	if mi.SortTitle == "" {
		mi.SortTitle = mi.Title
	}

	if item.DateCreated != "" {
		if t, err := time.Parse(time.RFC3339, item.DateCreated); err == nil {
			mi.AddedAt = t.Unix()
		}
	}

	if item.UserData != nil {
		mi.IsPlayed = item.UserData.Played
		mi.IsFavorite = item.UserData.IsFavorite
	}

	if item.ImageTags.Primary != "" {
		mi.ThumbURL = fmt.Sprintf("%s/Items/%s/Images/Primary?tag=%s", serverURL, item.ID, item.ImageTags.Primary)
	}

	return mi
}

func mapMediaKind(itemType string) domain.MediaKind {
	switch itemType {
	case "Movie":
		return domain.MediaKindMovie
	case "Series":
		return domain.MediaKindSeries
	case "Episode":
		return domain.MediaKindEpisode
	case "Audio", "MusicAlbum", "MusicVideo":
		return domain.MediaKindAudio
	default:
		return domain.MediaKindOther
	}
}
