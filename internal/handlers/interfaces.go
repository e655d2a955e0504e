package handlers

import (
	"context"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/models"
	"github.com/nusaiba/backend/internal/videos"
)

// Authenticator drives the session state machine behind the auth endpoints.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, input database.CreateUserInput) error
	LoginWithUser(ctx context.Context, user models.User)
	Logout(ctx context.Context)
	CurrentUser() (models.User, bool)
}

// UserStore captures the persistence operations required by the auth and
// search handlers.
type UserStore interface {
	SocialSignInOrRegister(ctx context.Context, profile database.SocialProfile) (models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

// SessionManager issues and refreshes authentication tokens for users.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// VideoService captures the feed and upload workflows.
type VideoService interface {
	Upload(ctx context.Context, input videos.UploadInput) (models.Video, error)
	FetchVideos(ctx context.Context, filters database.VideoFilters) ([]models.Video, error)
	LikeVideo(ctx context.Context, id string) error
	ShareVideo(ctx context.Context, id string) error
	RecordView(ctx context.Context, id string) error
}

// VideoSearcher resolves free-text queries against stored videos.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string) ([]models.Video, error)
}

// MessagingStore captures the chat workflows bound to the signed-in user.
type MessagingStore interface {
	FetchChats(ctx context.Context) ([]models.Chat, error)
	CreateChat(ctx context.Context, peerIDs ...string) (models.Chat, error)
	OpenChat(ctx context.Context, chatID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID, content string, msgType models.MessageType) (models.Message, error)
	MarkMessagesAsRead(ctx context.Context, chatID string) error
	DeleteMessage(ctx context.Context, messageID string) error
	BlockUser(ctx context.Context, blockedID string) error
}

// LiveService captures broadcast lifecycle operations.
type LiveService interface {
	Start(ctx context.Context, input database.CreateLiveStreamInput) (models.LiveStream, error)
	Active(ctx context.Context) ([]models.LiveStream, error)
	End(ctx context.Context, id string) error
	SetViewers(ctx context.Context, id string, viewers int) error
}
