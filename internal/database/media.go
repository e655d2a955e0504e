package database

import (
	"context"

	"github.com/nusaiba/backend/internal/models"
)

// SaveMediaItems appends records to the generic media bucket, assigning ids
// and timestamps where missing. The bucket keeps no relational integrity to
// other entities.
func (s *Service) SaveMediaItems(ctx context.Context, items []models.MediaItem) ([]models.MediaItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	saved := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = s.newID()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = s.now()
		}
		saved = append(saved, item)
	}

	media := getCollection[models.MediaItem](ctx, s, keyMedia)
	media = append(media, saved...)
	setCollection(ctx, s, keyMedia, media)

	return saved, nil
}

// ListUserMedia returns every media item owned by the user.
func (s *Service) ListUserMedia(ctx context.Context, userID string) ([]models.MediaItem, error) {
	var result []models.MediaItem
	for _, item := range getCollection[models.MediaItem](ctx, s, keyMedia) {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	return result, nil
}

// BlockUser records that userID no longer wants contact with blockedID.
// Blocking twice is a no-op.
func (s *Service) BlockUser(ctx context.Context, userID, blockedID string) error {
	blocks := getCollection[models.Block](ctx, s, keyBlocked)
	for _, b := range blocks {
		if b.UserID == userID && b.BlockedID == blockedID {
			return nil
		}
	}

	blocks = append(blocks, models.Block{
		UserID:    userID,
		BlockedID: blockedID,
		CreatedAt: s.now(),
	})
	setCollection(ctx, s, keyBlocked, blocks)
	return nil
}

// ListBlocked returns the ids of users blocked by userID.
func (s *Service) ListBlocked(ctx context.Context, userID string) ([]string, error) {
	var result []string
	for _, b := range getCollection[models.Block](ctx, s, keyBlocked) {
		if b.UserID == userID {
			result = append(result, b.BlockedID)
		}
	}
	return result, nil
}
