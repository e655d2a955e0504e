package models

import "time"

// Visibility controls who can see a profile field.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

// Provider identifies how a credential was established.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderApple    Provider = "apple"
)

// PrivacySettings holds per-field visibility choices for a profile.
type PrivacySettings struct {
	ProfileVisibility  Visibility `json:"profileVisibility"`
	BioVisibility      Visibility `json:"bioVisibility"`
	LocationVisibility Visibility `json:"locationVisibility"`
	WebsiteVisibility  Visibility `json:"websiteVisibility"`
}

// SocialLinks collects optional profile URLs per platform.
type SocialLinks struct {
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// User represents an account within the Nusaiba platform. The follower and
// following fields are plain counters, not edge lists.
type User struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	ProfilePicture  string          `json:"profilePicture,omitempty"`
	CoverPhoto      string          `json:"coverPhoto,omitempty"`
	Bio             string          `json:"bio,omitempty"`
	Website         string          `json:"website,omitempty"`
	Location        string          `json:"location,omitempty"`
	Gender          string          `json:"gender"`
	IsVerified      bool            `json:"isVerified"`
	IsPrivate       bool            `json:"isPrivate"`
	Followers       int             `json:"followers"`
	Following       int             `json:"following"`
	TotalViews      int             `json:"totalViews"`
	TotalUploads    int             `json:"totalUploads"`
	PrivacySettings PrivacySettings `json:"privacySettings"`
	SocialLinks     SocialLinks     `json:"socialLinks"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Credential associates a user with a password hash and an auth provider.
// Social sign-in may create a credential with an empty hash.
type Credential struct {
	UserID       string   `json:"userId"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"passwordHash"`
	Provider     Provider `json:"provider"`
}

// Asset processing states for uploaded videos.
const (
	VideoStatusProcessing = "processing"
	VideoStatusReady      = "ready"
	VideoStatusFailed     = "failed"
)

// Video is a published clip. User is a snapshot of the owner embedded at
// write time; it can drift from the live user record.
type Video struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	User         User      `json:"user"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     int       `json:"duration"`
	Views        int       `json:"views"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	Shares       int       `json:"shares"`
	IsShort      bool      `json:"isShort"`
	Hashtags     []string  `json:"hashtags"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MessageType distinguishes the payload carried by a chat message.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
	MessageTypeVoice MessageType = "voice"
)

// Message belongs to exactly one chat.
type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chatId"`
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	IsRead    bool        `json:"isRead"`
}

// Chat groups a set of participants. Participant order is irrelevant.
// LastMessage is a cached copy maintained on message creation.
type Chat struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LiveStream is an active or finished broadcast. User is an owner snapshot.
type LiveStream struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	User        User      `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StreamURL   string    `json:"streamUrl"`
	Viewers     int       `json:"viewers"`
	IsActive    bool      `json:"isActive"`
	StartedAt   time.Time `json:"startedAt"`
}

// MediaType tags entries in the generic media bucket.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeGIF   MediaType = "gif"
	MediaTypeStory MediaType = "story"
)

// MediaItem is a loosely-typed attachment record with no relational
// integrity to other entities.
type MediaItem struct {
	ID        string    `json:"id"`
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is attached to a video and carries an author snapshot.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	User      User      `json:"user"`
	VideoID   string    `json:"videoId"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Block records that one user no longer wants contact with another.
type Block struct {
	UserID    string    `json:"userId"`
	BlockedID string    `json:"blockedId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
