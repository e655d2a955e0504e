package database

import (
	"context"
	"sort"

	"github.com/nusaiba/backend/internal/models"
)

// CreateVideoInput carries the fields of a new video record.
type CreateVideoInput struct {
	UserID       string
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
	Duration     int
	IsShort      bool
	Hashtags     []string
	Status       string
}

// CreateVideo stores a new video. The owning user must exist; a snapshot of
// it is embedded in the record and can drift from the live user afterwards.
func (s *Service) CreateVideo(ctx context.Context, input CreateVideoInput) (models.Video, error) {
	owner, err := s.GetUserByID(ctx, input.UserID)
	if err != nil {
		return models.Video{}, err
	}

	now := s.now()
	video := models.Video{
		ID:           s.newID(),
		UserID:       input.UserID,
		User:         owner,
		Title:        input.Title,
		Description:  input.Description,
		URL:          input.URL,
		ThumbnailURL: input.ThumbnailURL,
		Duration:     input.Duration,
		IsShort:      input.IsShort,
		Hashtags:     input.Hashtags,
		Status:       input.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	videos := getCollection[models.Video](ctx, s, keyVideos)
	videos = append(videos, video)
	setCollection(ctx, s, keyVideos, videos)

	return video, nil
}

// VideoFilters narrows GetVideos results. A nil IsShort means "either".
type VideoFilters struct {
	UserID  string
	IsShort *bool
	Limit   int
}

// GetVideos returns videos matching the filters, newest first.
func (s *Service) GetVideos(ctx context.Context, filters VideoFilters) ([]models.Video, error) {
	videos := getCollection[models.Video](ctx, s, keyVideos)

	filtered := videos[:0:0]
	for _, v := range videos {
		if filters.UserID != "" && v.UserID != filters.UserID {
			continue
		}
		if filters.IsShort != nil && v.IsShort != *filters.IsShort {
			continue
		}
		filtered = append(filtered, v)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	if filters.Limit > 0 && len(filtered) > filters.Limit {
		filtered = filtered[:filters.Limit]
	}

	return filtered, nil
}

// GetVideoByID fetches a single video.
func (s *Service) GetVideoByID(ctx context.Context, id string) (models.Video, error) {
	for _, v := range getCollection[models.Video](ctx, s, keyVideos) {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Video{}, ErrVideoNotFound
}

// UpdateVideo replaces the stored record matching video.ID, refreshing
// UpdatedAt and preserving the creation time.
func (s *Service) UpdateVideo(ctx context.Context, video models.Video) (models.Video, error) {
	videos := getCollection[models.Video](ctx, s, keyVideos)
	for i := range videos {
		if videos[i].ID != video.ID {
			continue
		}
		video.CreatedAt = videos[i].CreatedAt
		video.UpdatedAt = s.now()
		videos[i] = video
		setCollection(ctx, s, keyVideos, videos)
		return video, nil
	}
	return models.Video{}, ErrVideoNotFound
}

// MarkVideoReady finalises an upload: the blob location is recorded and the
// record leaves the processing state.
func (s *Service) MarkVideoReady(ctx context.Context, id, url, thumbnailURL string) error {
	return s.setVideoStatus(ctx, id, func(v *models.Video) {
		v.URL = url
		if thumbnailURL != "" {
			v.ThumbnailURL = thumbnailURL
		}
		v.Status = models.VideoStatusReady
	})
}

// AddVideoLike increments a video's like counter.
func (s *Service) AddVideoLike(ctx context.Context, id string) error {
	return s.setVideoStatus(ctx, id, func(v *models.Video) {
		v.Likes++
	})
}

// AddVideoShare increments a video's share counter.
func (s *Service) AddVideoShare(ctx context.Context, id string) error {
	return s.setVideoStatus(ctx, id, func(v *models.Video) {
		v.Shares++
	})
}

// AddVideoView increments a video's view counter.
func (s *Service) AddVideoView(ctx context.Context, id string) error {
	return s.setVideoStatus(ctx, id, func(v *models.Video) {
		v.Views++
	})
}

// MarkVideoFailed records a failed upload attempt.
func (s *Service) MarkVideoFailed(ctx context.Context, id string) error {
	return s.setVideoStatus(ctx, id, func(v *models.Video) {
		v.Status = models.VideoStatusFailed
	})
}

func (s *Service) setVideoStatus(ctx context.Context, id string, apply func(*models.Video)) error {
	videos := getCollection[models.Video](ctx, s, keyVideos)
	for i := range videos {
		if videos[i].ID != id {
			continue
		}
		apply(&videos[i])
		videos[i].UpdatedAt = s.now()
		setCollection(ctx, s, keyVideos, videos)
		return nil
	}
	return ErrVideoNotFound
}
