package friends

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/socialcal/backend/internal/models"
	"github.com/socialcal/backend/internal/repositories"
)

var (
	// ErrSelfRequest indicates a user tried to befriend themselves.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
	// ErrNotAllowed indicates the acting user is not a party to the edge in
	// the required role for the transition.
	ErrNotAllowed = errors.New("not allowed to act on this request")
)

// ProfileFinder is the slice of the profile repository the service needs.
type ProfileFinder interface {
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
}

// EdgeStore is the slice of the friendship repository the service needs.
type EdgeStore interface {
	Create(ctx context.Context, friendship models.Friendship) error
	FindByID(ctx context.Context, id string) (models.Friendship, error)
	FindBetween(ctx context.Context, userA, userB string) (models.Friendship, error)
	ListForUser(ctx context.Context, userID, status string) ([]models.Friendship, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// Service implements the friendship state machine: none, pending (directed)
// and accepted, with deletion returning an edge to none.
type Service struct {
	Profiles ProfileFinder
	Edges    EdgeStore
	NowFunc  func() time.Time
}

// NewService constructs a friendship service.
func NewService(profiles ProfileFinder, edges EdgeStore) *Service {
	return &Service{Profiles: profiles, Edges: edges}
}

// Request sends a friend request from requesterID to the profile registered
// under targetEmail. It fails with ErrConflict when any edge already exists
// between the pair, in either direction; the database's pair uniqueness
// backstops the check against races.
func (s *Service) Request(ctx context.Context, requesterID, targetEmail string) (models.Friendship, error) {
	target, err := s.Profiles.FindByEmail(ctx, targetEmail)
	if err != nil {
		return models.Friendship{}, fmt.Errorf("find request target: %w", err)
	}

	if target.ID == requesterID {
		return models.Friendship{}, ErrSelfRequest
	}

	if _, err := s.Edges.FindBetween(ctx, requesterID, target.ID); err == nil {
		return models.Friendship{}, repositories.ErrConflict
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.Friendship{}, fmt.Errorf("check existing edge: %w", err)
	}

	friendship := models.Friendship{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		TargetID:    target.ID,
		Status:      models.FriendshipPending,
		CreatedAt:   s.now(),
	}

	if err := s.Edges.Create(ctx, friendship); err != nil {
		return models.Friendship{}, err
	}

	return friendship, nil
}

// Accept transitions a pending-incoming request to accepted. Only the target
// of the edge may accept.
func (s *Service) Accept(ctx context.Context, requestID, userID string) (models.Friendship, error) {
	edge, err := s.pendingEdge(ctx, requestID)
	if err != nil {
		return models.Friendship{}, err
	}
	if edge.TargetID != userID {
		return models.Friendship{}, ErrNotAllowed
	}

	if err := s.Edges.UpdateStatus(ctx, edge.ID, models.FriendshipAccepted); err != nil {
		return models.Friendship{}, err
	}

	edge.Status = models.FriendshipAccepted
	now := s.now()
	edge.RespondedAt = &now
	return edge, nil
}

// Reject deletes a pending-incoming request. Only the target may reject.
func (s *Service) Reject(ctx context.Context, requestID, userID string) error {
	edge, err := s.pendingEdge(ctx, requestID)
	if err != nil {
		return err
	}
	if edge.TargetID != userID {
		return ErrNotAllowed
	}
	return s.Edges.Delete(ctx, edge.ID)
}

// Cancel deletes a pending-outgoing request. Only the requester may cancel.
func (s *Service) Cancel(ctx context.Context, requestID, userID string) error {
	edge, err := s.pendingEdge(ctx, requestID)
	if err != nil {
		return err
	}
	if edge.RequesterID != userID {
		return ErrNotAllowed
	}
	return s.Edges.Delete(ctx, edge.ID)
}

// Unfriend deletes an accepted edge between the user and friendID, no matter
// which of the two originally sent the request.
func (s *Service) Unfriend(ctx context.Context, userID, friendID string) error {
	edge, err := s.Edges.FindBetween(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if edge.Status != models.FriendshipAccepted {
		return repositories.ErrNotFound
	}
	return s.Edges.Delete(ctx, edge.ID)
}

// RequestView describes a pending request together with the other party.
type RequestView struct {
	ID        string                `json:"id"`
	Profile   models.ProfileSummary `json:"profile"`
	CreatedAt time.Time             `json:"createdAt"`
}

// Overview groups a user's accepted friends with their pending traffic.
type Overview struct {
	Friends  []models.ProfileSummary `json:"friends"`
	Incoming []RequestView           `json:"incoming"`
	Outgoing []RequestView           `json:"outgoing"`
}

// List returns the user's accepted friends plus incoming and outgoing
// pending requests, each decorated with the counterpart's profile summary.
func (s *Service) List(ctx context.Context, userID string) (Overview, error) {
	edges, err := s.Edges.ListForUser(ctx, userID, "")
	if err != nil {
		return Overview{}, fmt.Errorf("list friendships: %w", err)
	}

	others := make([]string, 0, len(edges))
	for _, edge := range edges {
		others = append(others, edge.Other(userID))
	}

	profiles, err := s.Profiles.FindByIDs(ctx, others)
	if err != nil {
		return Overview{}, fmt.Errorf("load counterpart profiles: %w", err)
	}
	summaries := make(map[string]models.ProfileSummary, len(profiles))
	for _, profile := range profiles {
		summaries[profile.ID] = profile.Summary()
	}

	overview := Overview{
		Friends:  []models.ProfileSummary{},
		Incoming: []RequestView{},
		Outgoing: []RequestView{},
	}
	for _, edge := range edges {
		other := edge.Other(userID)
		summary, ok := summaries[other]
		if !ok {
			summary = models.ProfileSummary{ID: other}
		}

		switch {
		case edge.Status == models.FriendshipAccepted:
			overview.Friends = append(overview.Friends, summary)
		case edge.TargetID == userID:
			overview.Incoming = append(overview.Incoming, RequestView{ID: edge.ID, Profile: summary, CreatedAt: edge.CreatedAt})
		default:
			overview.Outgoing = append(overview.Outgoing, RequestView{ID: edge.ID, Profile: summary, CreatedAt: edge.CreatedAt})
		}
	}

	return overview, nil
}

func (s *Service) pendingEdge(ctx context.Context, requestID string) (models.Friendship, error) {
	edge, err := s.Edges.FindByID(ctx, requestID)
	if err != nil {
		return models.Friendship{}, err
	}
	if edge.Status != models.FriendshipPending {
		return models.Friendship{}, repositories.ErrNotFound
	}
	return edge, nil
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}
