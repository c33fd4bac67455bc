package repositories

import (
	"context"

	"github.com/socialcal/backend/internal/models"
)

// FriendshipRepository defines data access for friendship edges. Lookups and
// deletes that take two user ids are direction-agnostic: the stored edge may
// point either way between the pair.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship models.Friendship) error
	FindByID(ctx context.Context, id string) (models.Friendship, error)
	FindBetween(ctx context.Context, userA, userB string) (models.Friendship, error)
	ListForUser(ctx context.Context, userID, status string) ([]models.Friendship, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	DeleteBetween(ctx context.Context, userA, userB string) error
}
