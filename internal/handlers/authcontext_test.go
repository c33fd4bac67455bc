package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireUserRejectsMissingToken(t *testing.T) {
	manager := newTestSessionManager()

	called := false
	handler := RequireUser(manager, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Fatal("expected downstream handler not to be called")
	}
}

func TestRequireUserRejectsUnknownToken(t *testing.T) {
	manager := newTestSessionManager()

	handler := RequireUser(manager, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("downstream handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer bogus-token")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireUserPassesUserID(t *testing.T) {
	manager := newTestSessionManager()
	tokens, err := manager.Issue(context.Background(), "user-77")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	var seen string
	handler := RequireUser(manager, func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if seen != "user-77" {
		t.Fatalf("expected user-77 on context, got %q", seen)
	}
}
