package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/socialcal/backend/internal/logging"
	"github.com/socialcal/backend/internal/models"
)

// defaultSuggestionWindowDays bounds how far ahead suggestions look when the
// caller does not say.
const defaultSuggestionWindowDays = 7

// maxSuggestionWindowDays caps the look-ahead a caller may request.
const maxSuggestionWindowDays = 90

// SuggestionHandler serves ranked meetup suggestions.
type SuggestionHandler struct {
	Engine  SuggestionEngine
	NowFunc func() time.Time
}

// Suggest handles GET /api/v1/meetups/suggestions?days=N.
func (h SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Engine == nil {
		logger.Error("suggestion engine unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "suggestion service unavailable"})
		return
	}

	days := defaultSuggestionWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			logger.Warn("invalid suggestion window", "days", raw)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "days must be a non-negative integer"})
			return
		}
		if parsed > maxSuggestionWindowDays {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "days is too large"})
			return
		}
		days = parsed
	}

	today := models.DateOf(h.now())
	candidates, err := h.Engine.Suggest(ctx, userID, today, days)
	if err != nil {
		logger.Error("meetup suggestion failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to compute suggestions"})
		return
	}

	if candidates == nil {
		candidates = []models.MeetupCandidate{}
	}

	respondJSON(ctx, w, http.StatusOK, suggestionResponse{Suggestions: candidates})
}

type suggestionResponse struct {
	Suggestions []models.MeetupCandidate `json:"suggestions"`
}

func (h SuggestionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
