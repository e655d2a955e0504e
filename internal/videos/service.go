// Package videos holds the video feed store and the background upload
// pipeline that moves raw content into blob storage.
package videos

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/models"
)

// State is a snapshot of the feed store.
type State struct {
	Videos  []models.Video
	Loading bool
	Err     string
}

// Service is the video feed store. It keeps the last fetched feed in memory,
// applies like and share counts optimistically, and notifies subscribers on
// every change. Persistence goes through the database adapter.
type Service struct {
	db       *database.Service
	uploader *Uploader
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewService constructs an empty feed store. The uploader is optional; when
// nil, Upload stores records without blob processing.
func NewService(db *database.Service, uploader *Uploader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		uploader: uploader,
		logger:   logger,
		subs:     make(map[int]func(State)),
	}
}

// State returns the current snapshot. The videos slice is a copy.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Subscribe registers fn for state-change notifications and returns an
// unsubscribe func.
func (s *Service) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// FetchVideos loads the feed matching the filters into the store, newest
// first. A read failure keeps the previous feed and sets Err.
func (s *Service) FetchVideos(ctx context.Context, filters database.VideoFilters) ([]models.Video, error) {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	feed, err := s.db.GetVideos(ctx, filters)
	if err != nil {
		s.logger.Error("fetch videos", "error", err)
		s.update(func(st *State) {
			st.Loading = false
			st.Err = "Failed to load videos"
		})
		return nil, err
	}

	s.update(func(st *State) {
		st.Videos = feed
		st.Loading = false
	})
	return feed, nil
}

// LikeVideo bumps the like counter locally, then persists it. The local
// count is kept even when the persist fails.
func (s *Service) LikeVideo(ctx context.Context, id string) error {
	s.update(func(st *State) {
		for i := range st.Videos {
			if st.Videos[i].ID == id {
				st.Videos[i].Likes++
			}
		}
	})

	if err := s.db.AddVideoLike(ctx, id); err != nil {
		s.logger.Warn("like not persisted", "videoId", id, "error", err)
		return err
	}
	return nil
}

// ShareVideo bumps the share counter locally, then persists it.
func (s *Service) ShareVideo(ctx context.Context, id string) error {
	s.update(func(st *State) {
		for i := range st.Videos {
			if st.Videos[i].ID == id {
				st.Videos[i].Shares++
			}
		}
	})

	if err := s.db.AddVideoShare(ctx, id); err != nil {
		s.logger.Warn("share not persisted", "videoId", id, "error", err)
		return err
	}
	return nil
}

// RecordView bumps the view counter for a watched video.
func (s *Service) RecordView(ctx context.Context, id string) error {
	return s.db.AddVideoView(ctx, id)
}

// UploadInput carries a new video plus its raw content.
type UploadInput struct {
	Meta      database.CreateVideoInput
	FileName  string
	Content   []byte
	ThumbName string
	Thumbnail []byte
}

// Upload stores the video record in the processing state and hands the
// content to the background uploader. The record is returned immediately;
// its status flips to ready or failed once the blobs are persisted.
func (s *Service) Upload(ctx context.Context, input UploadInput) (models.Video, error) {
	input.Meta.Status = models.VideoStatusProcessing
	video, err := s.db.CreateVideo(ctx, input.Meta)
	if err != nil {
		return models.Video{}, err
	}

	if s.uploader == nil || len(input.Content) == 0 {
		if err := s.db.MarkVideoReady(ctx, video.ID, video.URL, video.ThumbnailURL); err != nil {
			return models.Video{}, err
		}
		video.Status = models.VideoStatusReady
		return video, nil
	}

	job := UploadJob{
		VideoID:   video.ID,
		FileName:  input.FileName,
		Content:   input.Content,
		ThumbName: input.ThumbName,
		Thumbnail: input.Thumbnail,
	}
	if err := s.uploader.Enqueue(ctx, job); err != nil {
		s.logger.Error("enqueue upload", "videoId", video.ID, "error", err)
		if markErr := s.db.MarkVideoFailed(ctx, video.ID); markErr != nil {
			s.logger.Error("mark video failed", "videoId", video.ID, "error", markErr)
		}
		return models.Video{}, err
	}

	return video, nil
}

func (s *Service) update(apply func(*State)) {
	s.mu.Lock()
	apply(&s.state)
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	snapshot := cloneState(s.state)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func cloneState(state State) State {
	if state.Videos != nil {
		state.Videos = append([]models.Video(nil), state.Videos...)
	}
	return state
}
