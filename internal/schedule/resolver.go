package schedule

import (
	"context"
	"fmt"
	"sort"

	"github.com/socialcal/backend/internal/models"
)

// FriendshipLister is the slice of the friendship repository the resolver needs.
type FriendshipLister interface {
	ListForUser(ctx context.Context, userID, status string) ([]models.Friendship, error)
}

// FriendGraphResolver computes the set of accepted friends for a user from
// the directed pending/accepted edges in the store.
type FriendGraphResolver struct {
	Friendships FriendshipLister
}

// NewFriendGraphResolver constructs a resolver over the friendship repository.
func NewFriendGraphResolver(friendships FriendshipLister) *FriendGraphResolver {
	return &FriendGraphResolver{Friendships: friendships}
}

// FriendIDs returns the ids of every user with an accepted edge to or from
// userID, deduplicated and sorted. A duplicate edge in the store must not
// double-count, and the user is never their own friend. An empty result is
// valid and means "no friends".
func (r *FriendGraphResolver) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	edges, err := r.Friendships.ListForUser(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, fmt.Errorf("list accepted friendships: %w", err)
	}

	seen := make(map[string]struct{}, len(edges))
	ids := make([]string, 0, len(edges))
	for _, edge := range edges {
		friendID := edge.Other(userID)
		if friendID == userID || friendID == "" {
			continue
		}
		if _, ok := seen[friendID]; ok {
			continue
		}
		seen[friendID] = struct{}{}
		ids = append(ids, friendID)
	}

	sort.Strings(ids)
	return ids, nil
}
