package avatars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

// Storage persists fetched avatar images and returns their public location.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ProfileUpdater records ingestion outcomes on the owning profile.
type ProfileUpdater interface {
	MarkAvatarReady(ctx context.Context, id, url string) error
	MarkAvatarFailed(ctx context.Context, id string) error
}

// IngestorConfig controls the concurrency and safety limits of the ingestor.
type IngestorConfig struct {
	QueueSize    int
	Workers      int
	MaxBytes     int64
	FetchTimeout time.Duration
}

var (
	// ErrIngestorClosed indicates the worker pool has been shut down.
	ErrIngestorClosed = errors.New("avatar ingestor closed")
	// ErrQueueFull indicates the ingest queue has no room for another job.
	ErrQueueFull  = errors.New("avatar ingest queue full")
	errNotAnImage = errors.New("source is not an image")
	errTooLarge   = errors.New("image exceeds size limit")
)

// Ingestor asynchronously fetches avatar images from user-supplied URLs and
// persists them to object storage, updating the profile's avatar status.
type Ingestor struct {
	client  *http.Client
	storage Storage
	updater ProfileUpdater
	logger  *slog.Logger

	maxBytes     int64
	fetchTimeout time.Duration

	jobs   chan ingestJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type ingestJob struct {
	profileID string
	sourceURL string
}

// NewIngestor constructs a background worker pool that ingests avatars.
func NewIngestor(storage Storage, updater ProfileUpdater, cfg IngestorConfig, logger *slog.Logger) *Ingestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 * 1024 * 1024
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &Ingestor{
		client:       &http.Client{Timeout: cfg.FetchTimeout},
		storage:      storage,
		updater:      updater,
		logger:       logger,
		maxBytes:     cfg.MaxBytes,
		fetchTimeout: cfg.FetchTimeout,
		jobs:         make(chan ingestJob, cfg.QueueSize),
		ctx:          ctx,
		cancel:       cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules avatar ingestion for the supplied profile. It never
// blocks: a full queue is reported to the caller instead of waited out.
func (i *Ingestor) Enqueue(ctx context.Context, profileID, sourceURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return ErrIngestorClosed
	}

	select {
	case i.jobs <- ingestJob{profileID: profileID, sourceURL: sourceURL}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown closes the queue and waits for the workers to finish every job
// already accepted. If ctx expires first, in-flight fetches are aborted and
// the remaining jobs are marked failed rather than left pending.
func (i *Ingestor) Shutdown(ctx context.Context) error {
	i.mu.Lock()
	if !i.closed {
		i.closed = true
		close(i.jobs)
	}
	i.mu.Unlock()

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		i.cancel()
		return nil
	case <-ctx.Done():
		i.cancel()
		return ctx.Err()
	}
}

func (i *Ingestor) worker() {
	defer i.wg.Done()

	for job := range i.jobs {
		if i.ctx.Err() != nil {
			// The drain was abandoned; fail fast instead of fetching.
			i.recordFailure(job.profileID)
			continue
		}
		i.handleJob(job)
	}
}

func (i *Ingestor) handleJob(job ingestJob) {
	if i.storage == nil || i.updater == nil {
		i.logger.Error("avatar ingestor missing dependencies", "hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}

	fetchCtx, cancel := context.WithTimeout(i.ctx, 2*i.fetchTimeout)
	defer cancel()

	location, err := i.fetchAndStore(fetchCtx, job)
	if err != nil {
		i.logger.Error("avatar ingestion failed", "profileId", job.profileID, "url", job.sourceURL, "error", err)
		i.recordFailure(job.profileID)
		return
	}

	if err := i.recordSuccess(job.profileID, location); err != nil {
		i.logger.Error("mark avatar ready", "profileId", job.profileID, "error", err)
		i.recordFailure(job.profileID)
	}
}

func (i *Ingestor) fetchAndStore(ctx context.Context, job ingestJob) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build avatar request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch avatar: unexpected status %d", resp.StatusCode)
	}

	ext, err := imageExtension(resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	if resp.ContentLength > i.maxBytes {
		return "", errTooLarge
	}

	// LimitReader with one extra byte distinguishes "exactly at the limit"
	// from "over it" for servers that omit Content-Length.
	body := &countingReader{r: io.LimitReader(resp.Body, i.maxBytes+1), limit: i.maxBytes}

	key := path.Join(job.profileID, "avatar"+ext)
	location, err := i.storage.Save(ctx, key, body)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	if body.exceeded {
		return "", errTooLarge
	}

	return location, nil
}

func (i *Ingestor) recordFailure(profileID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkAvatarFailed(ctx, profileID); err != nil {
		i.logger.Error("record avatar failure", "profileId", profileID, "error", err)
	}
}

func (i *Ingestor) recordSuccess(profileID, location string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkAvatarReady(ctx, profileID, location)
}

type countingReader struct {
	r        io.Reader
	limit    int64
	read     int64
	exceeded bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.limit {
		c.exceeded = true
	}
	return n, err
}

func imageExtension(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", errNotAnImage, contentType)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: %q", errNotAnImage, mediaType)
	}

	switch mediaType {
	case "image/jpeg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return ".img", nil
	}
}
