package repositories

import (
	"context"

	"github.com/socialcal/backend/internal/models"
)

// ProfileRepository defines the data access contract for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile models.Profile) error
	FindByID(ctx context.Context, id string) (models.Profile, error)
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	SetAvatarPending(ctx context.Context, id string) error
	MarkAvatarReady(ctx context.Context, id, url string) error
	MarkAvatarFailed(ctx context.Context, id string) error
}
