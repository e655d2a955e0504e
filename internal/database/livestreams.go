package database

import (
	"context"

	"github.com/nusaiba/backend/internal/models"
)

// CreateLiveStreamInput carries the fields of a new broadcast.
type CreateLiveStreamInput struct {
	UserID      string
	Title       string
	Description string
	StreamURL   string
}

// CreateLiveStream starts a broadcast for an existing user, embedding an
// owner snapshot the same way CreateVideo does.
func (s *Service) CreateLiveStream(ctx context.Context, input CreateLiveStreamInput) (models.LiveStream, error) {
	owner, err := s.GetUserByID(ctx, input.UserID)
	if err != nil {
		return models.LiveStream{}, err
	}

	stream := models.LiveStream{
		ID:          s.newID(),
		UserID:      input.UserID,
		User:        owner,
		Title:       input.Title,
		Description: input.Description,
		StreamURL:   input.StreamURL,
		IsActive:    true,
		StartedAt:   s.now(),
	}

	streams := getCollection[models.LiveStream](ctx, s, keyLiveStreams)
	streams = append(streams, stream)
	setCollection(ctx, s, keyLiveStreams, streams)

	return stream, nil
}

// GetActiveLiveStreams returns every broadcast still marked active.
func (s *Service) GetActiveLiveStreams(ctx context.Context) ([]models.LiveStream, error) {
	var result []models.LiveStream
	for _, stream := range getCollection[models.LiveStream](ctx, s, keyLiveStreams) {
		if stream.IsActive {
			result = append(result, stream)
		}
	}
	return result, nil
}

// EndLiveStream marks a broadcast inactive.
func (s *Service) EndLiveStream(ctx context.Context, id string) error {
	return s.updateStream(ctx, id, func(stream *models.LiveStream) {
		stream.IsActive = false
	})
}

// SetViewerCount records the current viewer count for a broadcast.
func (s *Service) SetViewerCount(ctx context.Context, id string, viewers int) error {
	if viewers < 0 {
		viewers = 0
	}
	return s.updateStream(ctx, id, func(stream *models.LiveStream) {
		stream.Viewers = viewers
	})
}

func (s *Service) updateStream(ctx context.Context, id string, apply func(*models.LiveStream)) error {
	streams := getCollection[models.LiveStream](ctx, s, keyLiveStreams)
	for i := range streams {
		if streams[i].ID != id {
			continue
		}
		apply(&streams[i])
		setCollection(ctx, s, keyLiveStreams, streams)
		return nil
	}
	return ErrStreamNotFound
}
