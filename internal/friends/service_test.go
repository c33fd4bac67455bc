package friends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialcal/backend/internal/models"
	"github.com/socialcal/backend/internal/repositories"
)

type inMemoryProfiles struct {
	byEmail map[string]models.Profile
}

func (s *inMemoryProfiles) FindByEmail(_ context.Context, email string) (models.Profile, error) {
	profile, ok := s.byEmail[email]
	if !ok {
		return models.Profile{}, repositories.ErrNotFound
	}
	return profile, nil
}

func (s *inMemoryProfiles) FindByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	var out []models.Profile
	for _, profile := range s.byEmail {
		for _, id := range ids {
			if profile.ID == id {
				out = append(out, profile)
			}
		}
	}
	return out, nil
}

type inMemoryEdges struct {
	edges map[string]models.Friendship
}

func newInMemoryEdges() *inMemoryEdges {
	return &inMemoryEdges{edges: make(map[string]models.Friendship)}
}

func (s *inMemoryEdges) Create(_ context.Context, friendship models.Friendship) error {
	for _, existing := range s.edges {
		if samePair(existing, friendship) {
			return repositories.ErrConflict
		}
	}
	s.edges[friendship.ID] = friendship
	return nil
}

func (s *inMemoryEdges) FindByID(_ context.Context, id string) (models.Friendship, error) {
	edge, ok := s.edges[id]
	if !ok {
		return models.Friendship{}, repositories.ErrNotFound
	}
	return edge, nil
}

func (s *inMemoryEdges) FindBetween(_ context.Context, userA, userB string) (models.Friendship, error) {
	probe := models.Friendship{RequesterID: userA, TargetID: userB}
	for _, edge := range s.edges {
		if samePair(edge, probe) {
			return edge, nil
		}
	}
	return models.Friendship{}, repositories.ErrNotFound
}

func (s *inMemoryEdges) ListForUser(_ context.Context, userID, status string) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, edge := range s.edges {
		if edge.RequesterID != userID && edge.TargetID != userID {
			continue
		}
		if status != "" && edge.Status != status {
			continue
		}
		out = append(out, edge)
	}
	return out, nil
}

func (s *inMemoryEdges) UpdateStatus(_ context.Context, id, status string) error {
	edge, ok := s.edges[id]
	if !ok {
		return repositories.ErrNotFound
	}
	edge.Status = status
	now := time.Now().UTC()
	edge.RespondedAt = &now
	s.edges[id] = edge
	return nil
}

func (s *inMemoryEdges) Delete(_ context.Context, id string) error {
	if _, ok := s.edges[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.edges, id)
	return nil
}

func samePair(a, b models.Friendship) bool {
	return (a.RequesterID == b.RequesterID && a.TargetID == b.TargetID) ||
		(a.RequesterID == b.TargetID && a.TargetID == b.RequesterID)
}

func newTestService() (*Service, *inMemoryEdges) {
	profiles := &inMemoryProfiles{byEmail: map[string]models.Profile{
		"alice@example.com": {ID: "alice", Email: "alice@example.com", FullName: "Alice"},
		"bob@example.com":   {ID: "bob", Email: "bob@example.com", FullName: "Bob"},
	}}
	edges := newInMemoryEdges()
	return NewService(profiles, edges), edges
}

func TestServiceRequestAndAccept(t *testing.T) {
	service, edges := newTestService()
	ctx := context.Background()

	request, err := service.Request(ctx, "alice", "bob@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if request.Status != models.FriendshipPending || request.RequesterID != "alice" || request.TargetID != "bob" {
		t.Fatalf("unexpected request: %+v", request)
	}

	accepted, err := service.Accept(ctx, request.ID, "bob")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != models.FriendshipAccepted {
		t.Fatalf("expected accepted status, got %q", accepted.Status)
	}
	if edges.edges[request.ID].Status != models.FriendshipAccepted {
		t.Fatalf("expected stored edge to be accepted")
	}
}

func TestServiceRequestUnknownEmail(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Request(context.Background(), "alice", "ghost@example.com"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceRequestSelf(t *testing.T) {
	service, edges := newTestService()

	if _, err := service.Request(context.Background(), "alice", "alice@example.com"); !errors.Is(err, ErrSelfRequest) {
		t.Fatalf("expected ErrSelfRequest, got %v", err)
	}
	if len(edges.edges) != 0 {
		t.Fatalf("expected no edge to be created")
	}
}

func TestServiceRequestDuplicateEitherDirection(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	if _, err := service.Request(ctx, "alice", "bob@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}

	// Repeating the request conflicts, as does the mirror request from the
	// other side while the first is still pending.
	if _, err := service.Request(ctx, "alice", "bob@example.com"); !errors.Is(err, repositories.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := service.Request(ctx, "bob", "alice@example.com"); !errors.Is(err, repositories.ErrConflict) {
		t.Fatalf("expected ErrConflict for mirrored request, got %v", err)
	}
}

func TestServiceAcceptRequiresTarget(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	request, err := service.Request(ctx, "alice", "bob@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := service.Accept(ctx, request.ID, "alice"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed for requester accepting own request, got %v", err)
	}
}

func TestServiceRejectDeletesEdge(t *testing.T) {
	service, edges := newTestService()
	ctx := context.Background()

	request, err := service.Request(ctx, "alice", "bob@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if err := service.Reject(ctx, request.ID, "bob"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if len(edges.edges) != 0 {
		t.Fatalf("expected edge to be deleted after rejection")
	}

	// The pair is back to "none": a fresh request succeeds.
	if _, err := service.Request(ctx, "alice", "bob@example.com"); err != nil {
		t.Fatalf("request after rejection: %v", err)
	}
}

func TestServiceCancelRequiresRequester(t *testing.T) {
	service, edges := newTestService()
	ctx := context.Background()

	request, err := service.Request(ctx, "alice", "bob@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if err := service.Cancel(ctx, request.ID, "bob"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
	if err := service.Cancel(ctx, request.ID, "alice"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(edges.edges) != 0 {
		t.Fatalf("expected edge to be deleted after cancel")
	}
}

func TestServiceUnfriendEitherDirection(t *testing.T) {
	service, edges := newTestService()
	ctx := context.Background()

	// Edge stored as bob→alice; alice unfriends bob.
	request, err := service.Request(ctx, "bob", "alice@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := service.Accept(ctx, request.ID, "alice"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := service.Unfriend(ctx, "alice", "bob"); err != nil {
		t.Fatalf("unfriend: %v", err)
	}
	if len(edges.edges) != 0 {
		t.Fatalf("expected edge to be deleted after unfriend")
	}
}

func TestServiceUnfriendPendingEdge(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	if _, err := service.Request(ctx, "alice", "bob@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}

	if err := service.Unfriend(ctx, "alice", "bob"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for pending edge, got %v", err)
	}
}

func TestServiceListSplitsByRole(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	outgoing, err := service.Request(ctx, "alice", "bob@example.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	overview, err := service.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(overview.Outgoing) != 1 || overview.Outgoing[0].ID != outgoing.ID || overview.Outgoing[0].Profile.ID != "bob" {
		t.Fatalf("unexpected outgoing: %+v", overview.Outgoing)
	}
	if len(overview.Incoming) != 0 || len(overview.Friends) != 0 {
		t.Fatalf("unexpected overview: %+v", overview)
	}

	bobView, err := service.List(ctx, "bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bobView.Incoming) != 1 || bobView.Incoming[0].Profile.ID != "alice" {
		t.Fatalf("unexpected incoming for bob: %+v", bobView.Incoming)
	}

	if _, err := service.Accept(ctx, outgoing.ID, "bob"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	overview, err = service.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list after accept: %v", err)
	}
	if len(overview.Friends) != 1 || overview.Friends[0].ID != "bob" {
		t.Fatalf("expected bob as friend, got %+v", overview)
	}
}
