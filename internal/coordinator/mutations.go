package coordinator

import (
	"context"

	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/state"
)

// ToggleFavorite flips an item's favorite flag. Local state changes only
// after the server confirms, so the UI never shows a status the server
// rejected.
func (c *Coordinator) ToggleFavorite(ctx context.Context, item domain.MediaItem) error {
	target := !item.IsFavorite
	if err := c.gateway.SetFavorite(ctx, item.ID, target); err != nil {
		c.fail(err)
		return err
	}
	updated := item
	updated.IsFavorite = target
	c.update(func(s *state.AppState) { s.ApplyItem(updated) })
	c.logger.Debug("favorite toggled", "itemID", item.ID, "favorite", target)
	return nil
}

// MarkWatched marks an item watched everywhere it appears.
func (c *Coordinator) MarkWatched(ctx context.Context, item domain.MediaItem) error {
	return c.setPlayed(ctx, item, true)
}

// MarkUnwatched marks an item unwatched everywhere it appears.
func (c *Coordinator) MarkUnwatched(ctx context.Context, item domain.MediaItem) error {
	return c.setPlayed(ctx, item, false)
}

func (c *Coordinator) setPlayed(ctx context.Context, item domain.MediaItem, played bool) error {
	if err := c.gateway.SetPlayed(ctx, item.ID, played); err != nil {
		c.fail(err)
		return err
	}
	updated := item
	updated.IsPlayed = played
	c.update(func(s *state.AppState) { s.ApplyItem(updated) })
	c.logger.Debug("watched status changed", "itemID", item.ID, "played", played)
	return nil
}

// DeleteItem removes an item from the server and from every collection in
// the snapshot.
func (c *Coordinator) DeleteItem(ctx context.Context, item domain.MediaItem) error {
	if err := c.gateway.DeleteItem(ctx, item.ID); err != nil {
		c.fail(err)
		return err
	}
	c.update(func(s *state.AppState) { s.RemoveItem(item.Key()) })
	if item.LibraryID != "" {
		c.saveItems(item.LibraryID)
	}
	c.logger.Info("item deleted", "itemID", item.ID, "title", item.Title)
	return nil
}
