package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/socialcal/backend/internal/models"
)

// ErrDirectoryUnavailable indicates the directory has no backing profile source.
var ErrDirectoryUnavailable = errors.New("profile directory unavailable")

// ProfileSource loads profiles by id. Satisfied by the profile repository.
type ProfileSource interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
}

type directoryEntry struct {
	summary models.ProfileSummary
	expires time.Time
}

// ProfileDirectory resolves profile summaries with a TTL-based in-memory
// cache. Only the name/avatar decoration is cached; availability and
// friendship reads always go to the store.
type ProfileDirectory struct {
	source ProfileSource
	ttl    time.Duration

	mu    sync.RWMutex
	items map[string]directoryEntry
}

// NewProfileDirectory returns a directory caching summaries for the provided TTL.
func NewProfileDirectory(source ProfileSource, ttl time.Duration) *ProfileDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ProfileDirectory{
		source: source,
		ttl:    ttl,
		items:  make(map[string]directoryEntry),
	}
}

// Summaries returns a summary per requested id. Ids without a profile row are
// omitted from the result rather than treated as an error.
func (d *ProfileDirectory) Summaries(ctx context.Context, ids []string) (map[string]models.ProfileSummary, error) {
	if d == nil || d.source == nil {
		return nil, ErrDirectoryUnavailable
	}

	now := time.Now()
	out := make(map[string]models.ProfileSummary, len(ids))
	var missing []string

	d.mu.RLock()
	for _, id := range ids {
		if entry, ok := d.items[id]; ok && now.Before(entry.expires) {
			out[id] = entry.summary
		} else {
			missing = append(missing, id)
		}
	}
	d.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	profiles, err := d.source.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	for _, profile := range profiles {
		summary := profile.Summary()
		d.items[profile.ID] = directoryEntry{summary: summary, expires: now.Add(d.ttl)}
		out[profile.ID] = summary
	}
	d.mu.Unlock()

	return out, nil
}
