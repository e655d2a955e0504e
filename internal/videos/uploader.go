package videos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"
)

// BlobStore persists raw media content and returns a public location.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ErrBlobStoreUnavailable indicates no blob backend is configured.
var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

// VideoStatusUpdater persists upload outcomes on video records.
type VideoStatusUpdater interface {
	MarkVideoReady(ctx context.Context, id, url, thumbnailURL string) error
	MarkVideoFailed(ctx context.Context, id string) error
}

// UploaderConfig controls the concurrency characteristics of the uploader.
type UploaderConfig struct {
	QueueSize int
	Workers   int
}

// UploadJob is one video's content waiting for blob persistence.
type UploadJob struct {
	VideoID   string
	FileName  string
	Content   []byte
	ThumbName string
	Thumbnail []byte
}

// Uploader asynchronously pushes video content into blob storage and flips
// the owning record to ready or failed.
type Uploader struct {
	storage BlobStore
	updater VideoStatusUpdater
	logger  *slog.Logger

	jobs   chan UploadJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errUploaderClosed = errors.New("uploader closed")

// NewUploader constructs a background worker pool over the blob store.
func NewUploader(storage BlobStore, updater VideoStatusUpdater, cfg UploaderConfig, logger *slog.Logger) *Uploader {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	u := &Uploader{
		storage: storage,
		updater: updater,
		logger:  logger,
		jobs:    make(chan UploadJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	u.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go u.worker()
	}

	return u
}

// Enqueue schedules blob persistence for the supplied job.
func (u *Uploader) Enqueue(ctx context.Context, job UploadJob) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-u.ctx.Done():
		return errUploaderClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-u.ctx.Done():
		return errUploaderClosed
	case u.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (u *Uploader) Shutdown(ctx context.Context) error {
	u.once.Do(func() {
		u.cancel()
		close(u.jobs)
	})

	done := make(chan struct{})
	go func() {
		u.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (u *Uploader) worker() {
	defer u.wg.Done()

	for {
		select {
		case <-u.ctx.Done():
			return
		case job, ok := <-u.jobs:
			if !ok {
				return
			}
			u.handleJob(job)
		}
	}
}

func (u *Uploader) handleJob(job UploadJob) {
	if u.storage == nil || u.updater == nil {
		u.logger.Error("uploader missing dependencies", "hasStorage", u.storage != nil, "hasUpdater", u.updater != nil)
		return
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	location, err := u.save(saveCtx, job.VideoID, job.FileName, job.Content)
	if err != nil {
		u.logger.Error("video upload failed", "videoId", job.VideoID, "error", err)
		u.recordFailure(job.VideoID)
		return
	}

	thumbLocation := ""
	if len(job.Thumbnail) > 0 {
		thumbLocation, err = u.save(saveCtx, job.VideoID, job.ThumbName, job.Thumbnail)
		if err != nil {
			u.logger.Error("thumbnail upload failed", "videoId", job.VideoID, "error", err)
			u.recordFailure(job.VideoID)
			return
		}
	}

	if err := u.recordSuccess(job.VideoID, location, thumbLocation); err != nil {
		u.logger.Error("mark video ready", "videoId", job.VideoID, "error", err)
		u.recordFailure(job.VideoID)
	}
}

func (u *Uploader) save(ctx context.Context, videoID, name string, content []byte) (string, error) {
	key := path.Join(videoID, name)
	if strings.TrimSpace(key) == "" || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("upload %s: empty key", videoID)
	}
	return u.storage.Save(ctx, key, bytes.NewReader(content))
}

func (u *Uploader) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := u.updater.MarkVideoFailed(ctx, videoID); err != nil {
		u.logger.Error("record upload failure", "videoId", videoID, "error", err)
	}
}

func (u *Uploader) recordSuccess(videoID, location, thumbLocation string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return u.updater.MarkVideoReady(ctx, videoID, location, thumbLocation)
}
