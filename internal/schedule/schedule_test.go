package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/socialcal/backend/internal/models"
)

type fakeFriendships struct {
	edges []models.Friendship
	err   error
	calls int
}

func (f *fakeFriendships) ListForUser(_ context.Context, userID, status string) ([]models.Friendship, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Friendship
	for _, edge := range f.edges {
		if edge.RequesterID != userID && edge.TargetID != userID {
			continue
		}
		if status != "" && edge.Status != status {
			continue
		}
		out = append(out, edge)
	}
	return out, nil
}

type fakeAvailability struct {
	records []models.AvailabilityRecord
	err     error
	calls   int
}

func (f *fakeAvailability) GetRange(_ context.Context, userIDs []string, from, to models.Date, statusFilter string) ([]models.AvailabilityRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	allowed := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = struct{}{}
	}
	var out []models.AvailabilityRecord
	for _, record := range f.records {
		if _, ok := allowed[record.UserID]; !ok {
			continue
		}
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		if statusFilter != "" && record.Status != statusFilter {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

type fakeProfiles struct {
	profiles map[string]models.Profile
}

func (f *fakeProfiles) FindByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	var out []models.Profile
	for _, id := range ids {
		if profile, ok := f.profiles[id]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}

func acceptedEdge(requester, target string) models.Friendship {
	return models.Friendship{
		ID:          requester + "-" + target,
		RequesterID: requester,
		TargetID:    target,
		Status:      models.FriendshipAccepted,
		CreatedAt:   time.Now().UTC(),
	}
}

func availableOn(t *testing.T, userID string, dates ...string) []models.AvailabilityRecord {
	t.Helper()
	out := make([]models.AvailabilityRecord, 0, len(dates))
	for _, date := range dates {
		out = append(out, models.AvailabilityRecord{
			UserID: userID,
			Date:   mustDate(t, date),
			Status: models.StatusAvailable,
		})
	}
	return out
}

func newDirectory(profiles map[string]models.Profile) *ProfileDirectory {
	return NewProfileDirectory(&fakeProfiles{profiles: profiles}, time.Minute)
}
