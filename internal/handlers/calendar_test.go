package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socialcal/backend/internal/models"
)

type stubCalendarEngine struct {
	views map[models.Date]models.DayView
	err   error

	lastFrom models.Date
	lastTo   models.Date
}

func (s *stubCalendarEngine) RangeView(_ context.Context, _ string, from, to models.Date) (map[models.Date]models.DayView, error) {
	s.lastFrom, s.lastTo = from, to
	return s.views, s.err
}

type stubAvailabilityWriter struct {
	err error

	lastDate   models.Date
	lastStatus *string
	calls      int
}

func (s *stubAvailabilityWriter) SetStatus(_ context.Context, _ string, date models.Date, status *string) error {
	s.calls++
	s.lastDate = date
	s.lastStatus = status
	return s.err
}

func mustParseDate(t *testing.T, value string) models.Date {
	t.Helper()
	date, err := models.ParseDate(value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return date
}

func TestCalendarHandlerRangeSortsDays(t *testing.T) {
	d1 := mustParseDate(t, "2025-06-10")
	d2 := mustParseDate(t, "2025-06-11")
	engine := &stubCalendarEngine{views: map[models.Date]models.DayView{
		d2: {Date: d2, OwnStatus: models.StatusBusy},
		d1: {Date: d1, OwnStatus: models.StatusAvailable},
	}}
	handler := CalendarHandler{Engine: engine}

	req := authedRequest(t, http.MethodGet, "/api/v1/calendar?from=2025-06-01&to=2025-06-30", nil)
	rec := httptest.NewRecorder()

	handler.Range(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if engine.lastFrom != mustParseDate(t, "2025-06-01") || engine.lastTo != mustParseDate(t, "2025-06-30") {
		t.Fatalf("unexpected range: %s..%s", engine.lastFrom, engine.lastTo)
	}

	var resp calendarResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Days) != 2 || resp.Days[0].Date != d1 || resp.Days[1].Date != d2 {
		t.Fatalf("expected days sorted by date, got %+v", resp.Days)
	}
}

func TestCalendarHandlerRangeValidation(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{"missing from", "/api/v1/calendar?to=2025-06-30"},
		{"malformed from", "/api/v1/calendar?from=June-1&to=2025-06-30"},
		{"missing to", "/api/v1/calendar?from=2025-06-01"},
		{"inverted range", "/api/v1/calendar?from=2025-06-30&to=2025-06-01"},
		{"oversized range", "/api/v1/calendar?from=2020-01-01&to=2025-06-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := CalendarHandler{Engine: &stubCalendarEngine{}}

			req := authedRequest(t, http.MethodGet, tc.target, nil)
			rec := httptest.NewRecorder()

			handler.Range(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestCalendarHandlerSetAvailability(t *testing.T) {
	writer := &stubAvailabilityWriter{}
	handler := CalendarHandler{Availability: writer}

	status := models.StatusBusy
	req := authedRequest(t, http.MethodPost, "/api/v1/availability", availabilityPayload{
		Date:   mustParseDate(t, "2025-06-10"),
		Status: &status,
	})
	rec := httptest.NewRecorder()

	handler.SetAvailability(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d got %d: %s", http.StatusNoContent, rec.Code, rec.Body.String())
	}
	if writer.lastStatus == nil || *writer.lastStatus != models.StatusBusy {
		t.Fatalf("expected busy status, got %v", writer.lastStatus)
	}
	if writer.lastDate != mustParseDate(t, "2025-06-10") {
		t.Fatalf("unexpected date: %s", writer.lastDate)
	}
}

func TestCalendarHandlerClearAvailability(t *testing.T) {
	cases := []struct {
		name   string
		status *string
	}{
		{"null status", nil},
		{"unspecified status", func() *string { s := models.StatusUnspecified; return &s }()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writer := &stubAvailabilityWriter{}
			handler := CalendarHandler{Availability: writer}

			req := authedRequest(t, http.MethodPost, "/api/v1/availability", availabilityPayload{
				Date:   mustParseDate(t, "2025-06-10"),
				Status: tc.status,
			})
			rec := httptest.NewRecorder()

			handler.SetAvailability(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Fatalf("expected status %d got %d", http.StatusNoContent, rec.Code)
			}
			if writer.lastStatus != nil {
				t.Fatalf("expected nil status to clear the record, got %v", *writer.lastStatus)
			}
		})
	}
}

func TestCalendarHandlerSetAvailabilityRejectsBadInput(t *testing.T) {
	bogus := "sleeping"
	cases := []struct {
		name    string
		payload availabilityPayload
	}{
		{"missing date", availabilityPayload{Status: &bogus}},
		{"unknown status", availabilityPayload{Date: mustParseDate(t, "2025-06-10"), Status: &bogus}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writer := &stubAvailabilityWriter{}
			handler := CalendarHandler{Availability: writer}

			req := authedRequest(t, http.MethodPost, "/api/v1/availability", tc.payload)
			rec := httptest.NewRecorder()

			handler.SetAvailability(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
			}
			if writer.calls != 0 {
				t.Fatal("expected store not to be touched")
			}
		})
	}
}
