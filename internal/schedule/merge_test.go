package schedule

import (
	"context"
	"testing"

	"github.com/socialcal/backend/internal/models"
)

func TestMergeEngineEmptyWhenNoSignals(t *testing.T) {
	engine := NewMergeEngine(
		NewFriendGraphResolver(&fakeFriendships{edges: []models.Friendship{acceptedEdge("alice", "bob")}}),
		&fakeAvailability{},
		newDirectory(nil),
	)

	views, err := engine.RangeView(context.Background(), "alice", mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))
	if err != nil {
		t.Fatalf("range view: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty mapping, got %v", views)
	}
}

func TestMergeEngineCombinesOwnAndFriendDays(t *testing.T) {
	availability := &fakeAvailability{records: append(
		[]models.AvailabilityRecord{
			{UserID: "alice", Date: mustDate(t, "2024-06-10"), Status: models.StatusBusy},
			{UserID: "alice", Date: mustDate(t, "2024-06-11"), Status: models.StatusAvailable},
		},
		availableOn(t, "bob", "2024-06-11", "2024-06-12")...,
	)}

	engine := NewMergeEngine(
		NewFriendGraphResolver(&fakeFriendships{edges: []models.Friendship{acceptedEdge("alice", "bob")}}),
		availability,
		newDirectory(map[string]models.Profile{
			"bob": {ID: "bob", FullName: "Bob Jones", AvatarURL: "https://img.example/bob.png"},
		}),
	)

	views, err := engine.RangeView(context.Background(), "alice", mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))
	if err != nil {
		t.Fatalf("range view: %v", err)
	}

	if len(views) != 3 {
		t.Fatalf("expected 3 day views, got %d: %v", len(views), views)
	}

	busy := views[mustDate(t, "2024-06-10")]
	if busy.OwnStatus != models.StatusBusy || len(busy.AvailableFriends) != 0 {
		t.Fatalf("unexpected view for 06-10: %+v", busy)
	}

	both := views[mustDate(t, "2024-06-11")]
	if both.OwnStatus != models.StatusAvailable {
		t.Fatalf("expected own status available on 06-11, got %q", both.OwnStatus)
	}
	if len(both.AvailableFriends) != 1 || both.AvailableFriends[0].FullName != "Bob Jones" {
		t.Fatalf("unexpected friends on 06-11: %+v", both.AvailableFriends)
	}

	// A day where only a friend is available appears with own status unspecified.
	friendOnly := views[mustDate(t, "2024-06-12")]
	if friendOnly.OwnStatus != models.StatusUnspecified {
		t.Fatalf("expected unspecified own status on 06-12, got %q", friendOnly.OwnStatus)
	}
	if len(friendOnly.AvailableFriends) != 1 || friendOnly.AvailableFriends[0].ID != "bob" {
		t.Fatalf("unexpected friends on 06-12: %+v", friendOnly.AvailableFriends)
	}
}

func TestMergeEngineNeverListsRequestingUser(t *testing.T) {
	// Even if the store hands back the user's own rows in the friend fetch,
	// the merge must not list the user among their friends.
	friendships := &fakeFriendships{edges: []models.Friendship{
		acceptedEdge("alice", "bob"),
		acceptedEdge("alice", "alice"),
	}}
	availability := &fakeAvailability{records: append(
		availableOn(t, "alice", "2024-06-11"),
		availableOn(t, "bob", "2024-06-11")...,
	)}

	engine := NewMergeEngine(
		NewFriendGraphResolver(friendships),
		availability,
		newDirectory(map[string]models.Profile{
			"bob": {ID: "bob", FullName: "Bob Jones"},
		}),
	)

	views, err := engine.RangeView(context.Background(), "alice", mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))
	if err != nil {
		t.Fatalf("range view: %v", err)
	}

	view := views[mustDate(t, "2024-06-11")]
	for _, friend := range view.AvailableFriends {
		if friend.ID == "alice" {
			t.Fatalf("requesting user listed as their own friend: %+v", view)
		}
	}
	if len(view.AvailableFriends) != 1 {
		t.Fatalf("expected only bob, got %+v", view.AvailableFriends)
	}
}

func TestMergeEngineDeduplicatesFriendRows(t *testing.T) {
	// A store handing back the same friend row twice must not produce a
	// doubled friend entry for that date.
	availability := &fakeAvailability{records: append(
		availableOn(t, "bob", "2024-06-11", "2024-06-11"),
		availableOn(t, "carol", "2024-06-11")...,
	)}
	engine := NewMergeEngine(
		NewFriendGraphResolver(&fakeFriendships{edges: []models.Friendship{
			acceptedEdge("alice", "bob"),
			acceptedEdge("alice", "carol"),
		}}),
		availability,
		newDirectory(nil),
	)

	views, err := engine.RangeView(context.Background(), "alice", mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))
	if err != nil {
		t.Fatalf("range view: %v", err)
	}

	friends := views[mustDate(t, "2024-06-11")].AvailableFriends
	if len(friends) != 2 {
		t.Fatalf("expected bob and carol exactly once, got %+v", friends)
	}
	if friends[0].ID != "bob" || friends[1].ID != "carol" {
		t.Fatalf("unexpected friend ordering: %+v", friends)
	}
}

func TestMergeEngineFriendOrderDeterministic(t *testing.T) {
	availability := &fakeAvailability{records: append(
		append(
			availableOn(t, "zed", "2024-06-11"),
			availableOn(t, "bob", "2024-06-11")...,
		),
		availableOn(t, "carol", "2024-06-11")...,
	)}
	engine := NewMergeEngine(
		NewFriendGraphResolver(&fakeFriendships{edges: []models.Friendship{
			acceptedEdge("alice", "zed"),
			acceptedEdge("alice", "bob"),
			acceptedEdge("carol", "alice"),
		}}),
		availability,
		newDirectory(nil),
	)

	views, err := engine.RangeView(context.Background(), "alice", mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))
	if err != nil {
		t.Fatalf("range view: %v", err)
	}

	friends := views[mustDate(t, "2024-06-11")].AvailableFriends
	if len(friends) != 3 {
		t.Fatalf("expected 3 friends, got %+v", friends)
	}
	if friends[0].ID != "bob" || friends[1].ID != "carol" || friends[2].ID != "zed" {
		t.Fatalf("expected friends sorted by id, got %+v", friends)
	}
}
