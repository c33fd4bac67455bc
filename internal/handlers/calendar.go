package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/socialcal/backend/internal/logging"
	"github.com/socialcal/backend/internal/models"
	"github.com/socialcal/backend/internal/repositories"
)

// maxCalendarRangeDays caps a single calendar query to keep result sets bounded.
const maxCalendarRangeDays = 366

// CalendarHandler serves the merged calendar view and availability updates.
type CalendarHandler struct {
	Engine       CalendarEngine
	Availability AvailabilityWriter
}

// Range handles GET /api/v1/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h CalendarHandler) Range(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Engine == nil {
		logger.Error("calendar engine unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "calendar service unavailable"})
		return
	}

	query := r.URL.Query()
	from, err := models.ParseDate(query.Get("from"))
	if err != nil {
		logger.Warn("invalid calendar from parameter", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "from must be a YYYY-MM-DD date"})
		return
	}
	to, err := models.ParseDate(query.Get("to"))
	if err != nil {
		logger.Warn("invalid calendar to parameter", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "to must be a YYYY-MM-DD date"})
		return
	}

	if to.Before(from) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "to must not precede from"})
		return
	}
	if from.AddDays(maxCalendarRangeDays).Before(to) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "date range is too large"})
		return
	}

	views, err := h.Engine.RangeView(ctx, userID, from, to)
	if err != nil {
		logger.Error("calendar range failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to compute calendar"})
		return
	}

	days := make([]models.DayView, 0, len(views))
	for _, view := range views {
		days = append(days, view)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	respondJSON(ctx, w, http.StatusOK, calendarResponse{Days: days})
}

// SetAvailability handles POST /api/v1/availability. A null or "unspecified"
// status clears the record for that day.
func (h CalendarHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID, _ := UserIDFrom(ctx)

	if h.Availability == nil {
		logger.Error("availability store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "availability service unavailable"})
		return
	}

	var req availabilityPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid availability payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Date.IsZero() {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}

	var status *string
	if req.Status != nil && *req.Status != models.StatusUnspecified {
		if !models.ValidStatus(*req.Status) {
			logger.Warn("invalid availability status", "status", *req.Status)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "status must be available, busy or unspecified"})
			return
		}
		status = req.Status
	}

	if err := h.Availability.SetStatus(ctx, userID, req.Date, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("availability update for unknown user", "userId", userID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		logger.Error("availability update failed", "error", err, "userId", userID, "date", req.Date.String())
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update availability"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type calendarResponse struct {
	Days []models.DayView `json:"days"`
}

type availabilityPayload struct {
	Date   models.Date `json:"date"`
	Status *string     `json:"status"`
}
