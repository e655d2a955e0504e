// Package live exposes broadcast operations over the database adapter.
package live

import (
	"context"
	"log/slog"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/models"
)

// Service wraps the adapter's live-stream operations. Broadcast state lives
// entirely in the store; there is no in-memory cache to go stale.
type Service struct {
	db     *database.Service
	logger *slog.Logger
}

// NewService constructs a live-stream service.
func NewService(db *database.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, logger: logger}
}

// Start opens a broadcast for the given user.
func (s *Service) Start(ctx context.Context, input database.CreateLiveStreamInput) (models.LiveStream, error) {
	stream, err := s.db.CreateLiveStream(ctx, input)
	if err != nil {
		return models.LiveStream{}, err
	}
	s.logger.Info("live stream started", "streamId", stream.ID, "userId", stream.UserID)
	return stream, nil
}

// Active lists broadcasts still on air.
func (s *Service) Active(ctx context.Context) ([]models.LiveStream, error) {
	return s.db.GetActiveLiveStreams(ctx)
}

// End takes a broadcast off air. Ending an already ended stream is fine.
func (s *Service) End(ctx context.Context, id string) error {
	if err := s.db.EndLiveStream(ctx, id); err != nil {
		return err
	}
	s.logger.Info("live stream ended", "streamId", id)
	return nil
}

// SetViewers records the viewer count for a broadcast.
func (s *Service) SetViewers(ctx context.Context, id string, viewers int) error {
	return s.db.SetViewerCount(ctx, id, viewers)
}
