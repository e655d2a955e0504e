package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nusaiba/backend/internal/auth"
	"github.com/nusaiba/backend/internal/config"
	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/handlers"
	"github.com/nusaiba/backend/internal/kvstore"
	"github.com/nusaiba/backend/internal/live"
	"github.com/nusaiba/backend/internal/messaging"
	"github.com/nusaiba/backend/internal/middleware"
	"github.com/nusaiba/backend/internal/storage"
	"github.com/nusaiba/backend/internal/videos"
)

// dependencies holds the wired application graph plus its cleanup hooks.
type dependencies struct {
	handlers handlers.Dependencies
	uploader *videos.Uploader
	closers  []func()
}

func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	kv, err := openKV(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	db := database.New(kv, nil, logger)

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploader := videos.NewUploader(blobs, db, videos.UploaderConfig{
		QueueSize: cfg.UploadQueueSize,
		Workers:   cfg.UploadWorkers,
	}, logger)
	deps.uploader = uploader

	authSvc := auth.NewService(db, logger)
	authSvc.Resume(ctx)

	videoSvc := videos.NewService(db, uploader, logger)
	messagingSvc := messaging.NewService(db, authSvc.CurrentUser, logger)
	liveSvc := live.NewService(db, logger)

	sessions := auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, auth.NewKVSessionStore(kv))
	limiter := middleware.NewIPRateLimiter(cfg.AuthRateRequests, cfg.AuthRateWindow, cfg.AuthRateBurst, 10*time.Minute)

	deps.handlers = handlers.Dependencies{
		Auth:        authSvc,
		Users:       db,
		Sessions:    sessions,
		AuthLimiter: limiter,
		Videos:      videoSvc,
		VideoSearch: db,
		Messaging:   messagingSvc,
		Live:        liveSvc,
	}

	return deps, nil
}

func openKV(ctx context.Context, cfg config.Config, deps *dependencies) (kvstore.KV, error) {
	switch cfg.StoreBackend {
	case "memory":
		return kvstore.NewMemory(), nil
	case "file":
		return kvstore.OpenFile(cfg.StorePath)
	case "postgres":
		pool, err := kvstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, pool.Close)
		return kvstore.NewPostgres(ctx, pool)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func openBlobStore(ctx context.Context, cfg config.Config) (videos.BlobStore, error) {
	switch cfg.MediaBackend {
	case "local":
		return storage.NewLocalStorage(cfg.MediaDir, cfg.MediaBaseURL)
	case "s3":
		return storage.NewS3Storage(ctx, cfg.ObjectStore)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}
