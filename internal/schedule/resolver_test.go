package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/socialcal/backend/internal/models"
)

func TestFriendGraphResolverSymmetry(t *testing.T) {
	friendships := &fakeFriendships{edges: []models.Friendship{
		acceptedEdge("alice", "bob"),
	}}
	resolver := NewFriendGraphResolver(friendships)

	aliceFriends, err := resolver.FriendIDs(context.Background(), "alice")
	if err != nil {
		t.Fatalf("resolve alice: %v", err)
	}
	bobFriends, err := resolver.FriendIDs(context.Background(), "bob")
	if err != nil {
		t.Fatalf("resolve bob: %v", err)
	}

	if len(aliceFriends) != 1 || aliceFriends[0] != "bob" {
		t.Fatalf("expected alice's friends to be [bob], got %v", aliceFriends)
	}
	if len(bobFriends) != 1 || bobFriends[0] != "alice" {
		t.Fatalf("expected bob's friends to be [alice], got %v", bobFriends)
	}
}

func TestFriendGraphResolverUnionsBothDirections(t *testing.T) {
	friendships := &fakeFriendships{edges: []models.Friendship{
		acceptedEdge("alice", "bob"),
		acceptedEdge("carol", "alice"),
		{ID: "p", RequesterID: "alice", TargetID: "dave", Status: models.FriendshipPending},
	}}
	resolver := NewFriendGraphResolver(friendships)

	friends, err := resolver.FriendIDs(context.Background(), "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(friends) != 2 || friends[0] != "bob" || friends[1] != "carol" {
		t.Fatalf("expected [bob carol], got %v", friends)
	}
}

func TestFriendGraphResolverDeduplicates(t *testing.T) {
	// A pathological duplicate edge must not double-count the friend.
	friendships := &fakeFriendships{edges: []models.Friendship{
		acceptedEdge("alice", "bob"),
		acceptedEdge("bob", "alice"),
	}}
	resolver := NewFriendGraphResolver(friendships)

	friends, err := resolver.FriendIDs(context.Background(), "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(friends) != 1 || friends[0] != "bob" {
		t.Fatalf("expected [bob], got %v", friends)
	}
}

func TestFriendGraphResolverEmpty(t *testing.T) {
	resolver := NewFriendGraphResolver(&fakeFriendships{})

	friends, err := resolver.FriendIDs(context.Background(), "loner")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("expected no friends, got %v", friends)
	}
}

func TestFriendGraphResolverPropagatesErrors(t *testing.T) {
	storeErr := errors.New("store unreachable")
	resolver := NewFriendGraphResolver(&fakeFriendships{err: storeErr})

	if _, err := resolver.FriendIDs(context.Background(), "alice"); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
