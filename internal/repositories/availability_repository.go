package repositories

import (
	"context"

	"github.com/socialcal/backend/internal/models"
)

// AvailabilityRepository defines data access for per-day availability.
type AvailabilityRepository interface {
	// GetRange returns records for the given users between from and to,
	// both bounds inclusive. An empty statusFilter returns all statuses.
	GetRange(ctx context.Context, userIDs []string, from, to models.Date, statusFilter string) ([]models.AvailabilityRecord, error)
	// SetStatus upserts the record for (userID, date); a nil status deletes
	// it. Concurrent writes for the same key resolve to the last one.
	SetStatus(ctx context.Context, userID string, date models.Date, status *string) error
}
