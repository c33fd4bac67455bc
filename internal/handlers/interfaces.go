package handlers

import (
	"context"

	"github.com/socialcal/backend/internal/friends"
	"github.com/socialcal/backend/internal/models"
)

// ProfileStore captures the persistence operations required by the auth and
// profile handlers.
type ProfileStore interface {
	Create(ctx context.Context, profile models.Profile) error
	FindByID(ctx context.Context, id string) (models.Profile, error)
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	SetAvatarPending(ctx context.Context, id string) error
}

// SessionManager issues, refreshes and resolves authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Resolve(accessToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string)
}

// FriendService drives the friendship state machine for the friend handlers.
type FriendService interface {
	Request(ctx context.Context, requesterID, targetEmail string) (models.Friendship, error)
	Accept(ctx context.Context, requestID, userID string) (models.Friendship, error)
	Reject(ctx context.Context, requestID, userID string) error
	Cancel(ctx context.Context, requestID, userID string) error
	Unfriend(ctx context.Context, userID, friendID string) error
	List(ctx context.Context, userID string) (friends.Overview, error)
}

// AvailabilityWriter records or clears a user's status for a day.
type AvailabilityWriter interface {
	SetStatus(ctx context.Context, userID string, date models.Date, status *string) error
}

// CalendarEngine computes the merged per-day calendar view.
type CalendarEngine interface {
	RangeView(ctx context.Context, userID string, from, to models.Date) (map[models.Date]models.DayView, error)
}

// SuggestionEngine ranks upcoming dates for meetups.
type SuggestionEngine interface {
	Suggest(ctx context.Context, userID string, today models.Date, windowDays int) ([]models.MeetupCandidate, error)
}

// AvatarIngestor schedules background ingestion of avatar images.
type AvatarIngestor interface {
	Enqueue(ctx context.Context, profileID, sourceURL string) error
}
