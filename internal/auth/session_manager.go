package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/socialcal/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// SessionStore persists issued refresh tokens so they can survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Find(ctx context.Context, refreshToken string) (Session, error)
	Delete(ctx context.Context, refreshToken string) error
}

// Session represents a refresh token issued to a user.
type Session struct {
	RefreshToken string
	UserID       string
	ExpiresAt    time.Time
}

// SessionEventType enumerates the session changes subscribers can observe.
type SessionEventType string

const (
	SessionIssued  SessionEventType = "issued"
	SessionRevoked SessionEventType = "revoked"
)

// SessionEvent notifies subscribers about session lifecycle changes. It is
// the server-side analog of the auth-state subscription a UI registers.
type SessionEvent struct {
	Type   SessionEventType
	UserID string
}

// Manager manages the lifecycle of issued session tokens. Refresh tokens are
// backed by the persistent store; access tokens live in process and expire on
// their own, so a restart only forces clients through a refresh.
type Manager struct {
	accessTTL  time.Duration
	refreshTTL time.Duration

	store SessionStore

	mu          sync.RWMutex
	access      map[string]accessEntry
	subscribers []func(SessionEvent)

	nowFunc func() time.Time
}

type accessEntry struct {
	userID    string
	expiresAt time.Time
}

// NewManager constructs a Manager that issues access and refresh tokens with the provided TTLs.
func NewManager(accessTTL, refreshTTL time.Duration, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	return &Manager{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		access:     make(map[string]accessEntry),
		nowFunc:    func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers a callback invoked on every session change. Callbacks
// run synchronously on the mutating goroutine and must not block.
func (m *Manager) Subscribe(fn func(SessionEvent)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

// Issue creates a new pair of access and refresh tokens for the provided user identifier.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.nowFunc()
	accessToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(m.accessTTL),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, Session{
		RefreshToken: refreshToken,
		UserID:       userID,
		ExpiresAt:    tokens.RefreshExpiresAt,
	}); err != nil {
		return models.SessionTokens{}, err
	}

	m.mu.Lock()
	m.access[accessToken] = accessEntry{userID: userID, expiresAt: tokens.AccessExpiresAt}
	m.pruneAccessLocked(now)
	m.mu.Unlock()

	m.notify(SessionEvent{Type: SessionIssued, UserID: userID})

	return tokens, nil
}

// Resolve maps an access token to the user it was issued for. This is the
// current-session lookup used by the HTTP layer.
func (m *Manager) Resolve(accessToken string) (string, error) {
	if accessToken == "" {
		return "", ErrSessionNotFound
	}

	m.mu.RLock()
	entry, ok := m.access[accessToken]
	m.mu.RUnlock()

	if !ok || m.nowFunc().After(entry.expiresAt) {
		return "", ErrSessionNotFound
	}
	return entry.userID, nil
}

// Refresh exchanges a refresh token for a new session token pair.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	session, err := m.store.Find(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if m.nowFunc().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, refreshToken)
		return models.SessionTokens{}, ErrRefreshTokenExpired
	}

	if err := m.store.Delete(ctx, refreshToken); err != nil {
		return models.SessionTokens{}, err
	}

	return m.Issue(ctx, session.UserID)
}

// Revoke removes the refresh token and any access tokens issued to the same
// user, signing that user out.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	session, err := m.store.Find(ctx, refreshToken)
	_ = m.store.Delete(ctx, refreshToken)
	if err != nil {
		return
	}

	m.mu.Lock()
	for token, entry := range m.access {
		if entry.userID == session.UserID {
			delete(m.access, token)
		}
	}
	m.mu.Unlock()

	m.notify(SessionEvent{Type: SessionRevoked, UserID: session.UserID})
}

func (m *Manager) notify(event SessionEvent) {
	m.mu.RLock()
	subs := make([]func(SessionEvent), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

func (m *Manager) pruneAccessLocked(now time.Time) {
	for token, entry := range m.access {
		if now.After(entry.expiresAt) {
			delete(m.access, token)
		}
	}
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
