package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/socialcal/backend/internal/friends"
	"github.com/socialcal/backend/internal/logging"
	"github.com/socialcal/backend/internal/repositories"
)

// FriendHandler exposes the friendship endpoints.
type FriendHandler struct {
	Friends FriendService
	Limiter RateLimiter
}

// List handles GET /api/v1/friends.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Friends == nil {
		logger.Error("friend service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend service unavailable"})
		return
	}

	overview, err := h.Friends.List(ctx, userID)
	if err != nil {
		logger.Error("list friends failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list friends"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, overview)
}

// Request handles POST /api/v1/friends/request.
func (h FriendHandler) Request(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if !allowRequest(h.Limiter, r, "friend-request") {
		logger.Warn("friend request rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts, slow down"})
		return
	}

	if h.Friends == nil {
		logger.Error("friend service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend service unavailable"})
		return
	}

	var req friendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend request payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		logger.Warn("friend request missing email", "userId", userID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	edge, err := h.Friends.Request(ctx, userID, req.Email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		logger.Warn("friend request target not found", "userId", userID)
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "no account with that email"})
		return
	case errors.Is(err, friends.ErrSelfRequest):
		logger.Warn("friend request to self", "userId", userID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "cannot send a friend request to yourself"})
		return
	case errors.Is(err, repositories.ErrConflict):
		logger.Warn("friend request duplicate", "userId", userID)
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "a request or friendship already exists"})
		return
	case err != nil:
		logger.Error("friend request failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to send friend request"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, friendEdgeResponse{ID: edge.ID, Status: edge.Status})
}

// Respond handles POST /api/v1/friends/respond with action accept or reject.
func (h FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Friends == nil {
		logger.Error("friend service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend service unavailable"})
		return
	}

	var req friendRespondPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend respond payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RequestID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "requestId is required"})
		return
	}

	switch req.Action {
	case "accept":
		edge, err := h.Friends.Accept(ctx, req.RequestID, userID)
		if err != nil {
			h.respondEdgeError(w, r, err, "accept friend request")
			return
		}
		respondJSON(ctx, w, http.StatusOK, friendEdgeResponse{ID: edge.ID, Status: edge.Status})
	case "reject":
		if err := h.Friends.Reject(ctx, req.RequestID, userID); err != nil {
			h.respondEdgeError(w, r, err, "reject friend request")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		logger.Warn("unknown respond action", "action", req.Action)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "action must be accept or reject"})
	}
}

// Cancel handles POST /api/v1/friends/cancel for pending outgoing requests.
func (h FriendHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Friends == nil {
		logger.Error("friend service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend service unavailable"})
		return
	}

	var req friendRespondPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend cancel payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RequestID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "requestId is required"})
		return
	}

	if err := h.Friends.Cancel(ctx, req.RequestID, userID); err != nil {
		h.respondEdgeError(w, r, err, "cancel friend request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove handles POST /api/v1/friends/remove for accepted friendships.
func (h FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Friends == nil {
		logger.Error("friend service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend service unavailable"})
		return
	}

	var req friendRemovePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend remove payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FriendID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "friendId is required"})
		return
	}

	if err := h.Friends.Unfriend(ctx, userID, req.FriendID); err != nil {
		h.respondEdgeError(w, r, err, "remove friend")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h FriendHandler) respondEdgeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		logger.Warn(op+" target missing", "error", err)
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "request not found"})
	case errors.Is(err, friends.ErrNotAllowed):
		logger.Warn(op+" not allowed", "error", err)
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "not allowed to act on this request"})
	default:
		logger.Error(op+" failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update friendship"})
	}
}

type friendRequestPayload struct {
	Email string `json:"email"`
}

type friendRespondPayload struct {
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
}

type friendRemovePayload struct {
	FriendID string `json:"friendId"`
}

type friendEdgeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
