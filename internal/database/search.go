package database

import (
	"context"
	"strings"

	"github.com/nusaiba/backend/internal/models"
)

// SearchUsers matches the query as a case-insensitive substring of a user's
// name, username, or email. No ranking, no pagination.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	query = strings.ToLower(query)

	var result []models.User
	for _, u := range getCollection[models.User](ctx, s, keyUsers) {
		if containsFold(u.Name, query) || containsFold(u.Username, query) || containsFold(u.Email, query) {
			result = append(result, u)
		}
	}
	return result, nil
}

// SearchVideos matches the query against a video's title, description, or
// hashtags.
func (s *Service) SearchVideos(ctx context.Context, query string) ([]models.Video, error) {
	query = strings.ToLower(query)

	var result []models.Video
	for _, v := range getCollection[models.Video](ctx, s, keyVideos) {
		if containsFold(v.Title, query) || containsFold(v.Description, query) || anyTagContains(v.Hashtags, query) {
			result = append(result, v)
		}
	}
	return result, nil
}

func containsFold(value, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(value), loweredQuery)
}

func anyTagContains(tags []string, loweredQuery string) bool {
	for _, tag := range tags {
		if containsFold(tag, loweredQuery) {
			return true
		}
	}
	return false
}
