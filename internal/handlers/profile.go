package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/socialcal/backend/internal/logging"
	"github.com/socialcal/backend/internal/models"
	"github.com/socialcal/backend/internal/repositories"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	Profiles ProfileStore
	Ingestor AvatarIngestor
}

// Me handles GET /api/v1/profile.
func (h ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Profiles == nil {
		logger.Error("profile store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "profile service unavailable"})
		return
	}

	profile, err := h.Profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "profile not found"})
			return
		}
		logger.Error("profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileResponse{
		ID:           profile.ID,
		Email:        profile.Email,
		FullName:     profile.FullName,
		AvatarURL:    profile.AvatarURL,
		AvatarStatus: profile.AvatarStatus,
		CreatedAt:    profile.CreatedAt,
	})
}

// Avatar handles POST /api/v1/profile/avatar. Ingestion is asynchronous: the
// profile's avatar status moves to pending and a background worker fetches
// and stores the image.
func (h ProfileHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Profiles == nil || h.Ingestor == nil {
		logger.Error("avatar dependencies unavailable", "hasProfiles", h.Profiles != nil, "hasIngestor", h.Ingestor != nil)
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "avatar uploads are not enabled"})
		return
	}

	var req avatarPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid avatar payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.SourceURL = strings.TrimSpace(req.SourceURL)
	if !validAvatarURL(req.SourceURL) {
		logger.Warn("invalid avatar source url", "userId", userID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "sourceUrl must be an http or https URL"})
		return
	}

	if err := h.Profiles.SetAvatarPending(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "profile not found"})
			return
		}
		logger.Error("mark avatar pending failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update avatar"})
		return
	}

	if err := h.Ingestor.Enqueue(ctx, userID, req.SourceURL); err != nil {
		logger.Error("enqueue avatar ingestion failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "avatar processing is unavailable"})
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, map[string]string{"avatarStatus": models.AvatarStatusPending})
}

func validAvatarURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

type avatarPayload struct {
	SourceURL string `json:"sourceUrl"`
}

type profileResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	AvatarStatus string    `json:"avatarStatus,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
