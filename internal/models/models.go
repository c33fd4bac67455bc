package models

import "time"

// Profile represents an account within the SocialCal platform.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	AvatarURL    string
	AvatarStatus string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	AvatarStatusNone    = ""
	AvatarStatusPending = "pending"
	AvatarStatusReady   = "ready"
	AvatarStatusFailed  = "failed"
)

// ProfileSummary is the subset of a profile shown next to calendar data.
type ProfileSummary struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Summary projects a profile onto its public summary.
func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL}
}

// Friendship is a directed edge between two profiles. Once accepted the
// relation is symmetric in meaning: either endpoint counts as the other's
// friend regardless of who requested.
type Friendship struct {
	ID          string
	RequesterID string
	TargetID    string
	Status      string
	CreatedAt   time.Time
	RespondedAt *time.Time
}

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Other returns the endpoint of the edge that is not userID.
func (f Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.TargetID
	}
	return f.RequesterID
}

// AvailabilityRecord is one user's status for one calendar day. Absence of a
// record means "unspecified", which is distinct from both statuses below.
type AvailabilityRecord struct {
	UserID string
	Date   Date
	Status string
}

const (
	StatusAvailable   = "available"
	StatusBusy        = "busy"
	StatusUnspecified = "unspecified"
)

// ValidStatus reports whether s is a storable availability status.
func ValidStatus(s string) bool {
	return s == StatusAvailable || s == StatusBusy
}

// DayView is the computed per-date merge of a user's own status with the
// friends marked available that day. Never persisted.
type DayView struct {
	Date             Date             `json:"date"`
	OwnStatus        string           `json:"ownStatus"`
	AvailableFriends []ProfileSummary `json:"availableFriends"`
}

// MeetupCandidate is a future date where the user and at least one friend
// are both available. Never persisted.
type MeetupCandidate struct {
	Date    Date             `json:"date"`
	Friends []ProfileSummary `json:"friends"`
	Count   int              `json:"count"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
