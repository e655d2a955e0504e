package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nusaiba/backend/internal/config"
	"github.com/nusaiba/backend/internal/database"
)

type seedUser struct {
	username   string
	name       string
	email      string
	picture    string
	gender     string
	verified   bool
	followers  int
	following  int
}

type seedVideo struct {
	owner        string
	title        string
	description  string
	url          string
	thumbnailURL string
	duration     int
	views        int
	likes        int
	comments     int
	shares       int
	isShort      bool
	hashtags     []string
}

var seedUsers = []seedUser{
	{
		username:  "creator1",
		name:      "Amazing Creator",
		email:     "creator1@example.com",
		picture:   "https://images.unsplash.com/photo-1494790108755-2616b332c6a8?w=50&h=50&fit=crop&crop=face",
		gender:    "female",
		verified:  true,
		followers: 10500,
		following: 234,
	},
	{
		username:  "techguru",
		name:      "Tech Guru",
		email:     "tech@example.com",
		picture:   "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=50&h=50&fit=crop&crop=face",
		gender:    "male",
		verified:  true,
		followers: 45600,
		following: 567,
	},
	{
		username:  "travelvlogger",
		name:      "Travel Vlogger",
		email:     "travel@example.com",
		picture:   "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=50&h=50&fit=crop&crop=face",
		gender:    "male",
		followers: 12300,
		following: 456,
	},
	{
		username:  "cookingmaster",
		name:      "Cooking Master",
		email:     "cooking@example.com",
		picture:   "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=50&h=50&fit=crop&crop=face",
		gender:    "female",
		verified:  true,
		followers: 34100,
		following: 321,
	},
}

var seedVideos = []seedVideo{
	{
		owner:        "creator1@example.com",
		title:        "Amazing Dance Performance",
		description:  "Check out this incredible dance routine!",
		url:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		thumbnailURL: "https://images.unsplash.com/photo-1508700115892-45ecd05ae2ad?w=400&h=300&fit=crop",
		duration:     120,
		views:        15420,
		likes:        1240,
		comments:     89,
		shares:       156,
		isShort:      true,
		hashtags:     []string{"dance", "performance", "viral"},
	},
	{
		owner:        "tech@example.com",
		title:        "AI Revolution in 2024",
		description:  "Exploring the latest AI trends and how they will change our world",
		url:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
		thumbnailURL: "https://images.unsplash.com/photo-1485827404703-89b55fcc595e?w=400&h=300&fit=crop",
		duration:     480,
		views:        89320,
		likes:        3450,
		comments:     234,
		shares:       890,
		hashtags:     []string{"ai", "technology", "future"},
	},
	{
		owner:        "travel@example.com",
		title:        "Beautiful Sunset in Bali",
		description:  "Capturing the magical moments of sunset in paradise",
		url:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
		thumbnailURL: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=400&h=300&fit=crop",
		duration:     180,
		views:        23400,
		likes:        890,
		comments:     67,
		shares:       123,
		isShort:      true,
		hashtags:     []string{"travel", "bali", "sunset", "paradise"},
	},
}

// runSeed loads the demo accounts and feed into the configured store. It is
// idempotent: users that already exist are left alone and their demo videos
// are skipped.
func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	deps := &dependencies{}
	kv, err := openKV(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer deps.close()

	db := database.New(kv, nil, logger)

	ownersByEmail := make(map[string]string)
	for _, su := range seedUsers {
		if existing, err := db.GetUserByEmail(ctx, su.email); err == nil {
			ownersByEmail[su.email] = existing.ID
			continue
		}

		user, err := db.CreateUser(ctx, database.CreateUserInput{
			Username:       su.username,
			Name:           su.name,
			Email:          su.email,
			Password:       "password123",
			ProfilePicture: su.picture,
			Gender:         su.gender,
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}

		user.IsVerified = su.verified
		user.Followers = su.followers
		user.Following = su.following
		if _, err := db.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}

		ownersByEmail[su.email] = user.ID
		fmt.Printf("seeded user %s\n", su.email)
	}

	existing, err := db.GetVideos(ctx, database.VideoFilters{})
	if err != nil {
		return fmt.Errorf("inspect videos: %w", err)
	}
	seededTitles := make(map[string]bool)
	for _, v := range existing {
		seededTitles[v.Title] = true
	}

	for _, sv := range seedVideos {
		if seededTitles[sv.title] {
			continue
		}
		ownerID, ok := ownersByEmail[sv.owner]
		if !ok {
			return fmt.Errorf("seed video %q: owner %s missing", sv.title, sv.owner)
		}

		video, err := db.CreateVideo(ctx, database.CreateVideoInput{
			UserID:       ownerID,
			Title:        sv.title,
			Description:  sv.description,
			URL:          sv.url,
			ThumbnailURL: sv.thumbnailURL,
			Duration:     sv.duration,
			IsShort:      sv.isShort,
			Hashtags:     sv.hashtags,
		})
		if err != nil {
			return fmt.Errorf("seed video %q: %w", sv.title, err)
		}

		video.Views = sv.views
		video.Likes = sv.likes
		video.Comments = sv.comments
		video.Shares = sv.shares
		if _, err := db.UpdateVideo(ctx, video); err != nil {
			return fmt.Errorf("seed video %q: %w", sv.title, err)
		}

		fmt.Printf("seeded video %q\n", sv.title)
	}

	return nil
}
