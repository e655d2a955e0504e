package database

import (
	"context"
	"sort"

	"github.com/nusaiba/backend/internal/models"
)

// CreateCommentInput carries the fields of a new video comment.
type CreateCommentInput struct {
	UserID  string
	VideoID string
	Content string
}

// CreateComment attaches a comment to an existing video, embedding an
// author snapshot, and bumps the video's comment counter.
func (s *Service) CreateComment(ctx context.Context, input CreateCommentInput) (models.Comment, error) {
	author, err := s.GetUserByID(ctx, input.UserID)
	if err != nil {
		return models.Comment{}, err
	}
	if _, err := s.GetVideoByID(ctx, input.VideoID); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:        s.newID(),
		UserID:    input.UserID,
		User:      author,
		VideoID:   input.VideoID,
		Content:   input.Content,
		CreatedAt: s.now(),
	}

	comments := getCollection[models.Comment](ctx, s, keyComments)
	comments = append(comments, comment)
	setCollection(ctx, s, keyComments, comments)

	if err := s.setVideoStatus(ctx, input.VideoID, func(v *models.Video) {
		v.Comments++
	}); err != nil {
		s.logger.Warn("bump comment counter failed", "videoId", input.VideoID, "error", err)
	}

	return comment, nil
}

// ListVideoComments returns a video's comments, newest first.
func (s *Service) ListVideoComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	var result []models.Comment
	for _, c := range getCollection[models.Comment](ctx, s, keyComments) {
		if c.VideoID == videoID {
			result = append(result, c)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
