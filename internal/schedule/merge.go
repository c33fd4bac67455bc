package schedule

import (
	"context"
	"fmt"
	"sort"

	"github.com/socialcal/backend/internal/logging"
	"github.com/socialcal/backend/internal/models"
)

// AvailabilityReader is the slice of the availability repository the engines need.
type AvailabilityReader interface {
	GetRange(ctx context.Context, userIDs []string, from, to models.Date, statusFilter string) ([]models.AvailabilityRecord, error)
}

// MergeEngine combines a user's own statuses with friends' available days
// into per-date views. The multi-step read is intentionally untransacted: a
// status changing between fetches yields a view consistent with some
// interleaving, which is acceptable.
type MergeEngine struct {
	Resolver     *FriendGraphResolver
	Availability AvailabilityReader
	Directory    *ProfileDirectory
}

// NewMergeEngine constructs a merge engine over the resolver, availability
// store and profile directory.
func NewMergeEngine(resolver *FriendGraphResolver, availability AvailabilityReader, directory *ProfileDirectory) *MergeEngine {
	return &MergeEngine{Resolver: resolver, Availability: availability, Directory: directory}
}

// RangeView returns a DayView for every date in [from, to] that carries any
// signal: an own status, or at least one available friend. Days with no
// signal are absent, which downstream reads as "unspecified".
func (e *MergeEngine) RangeView(ctx context.Context, userID string, from, to models.Date) (map[models.Date]models.DayView, error) {
	ctx, span := logging.StartSpan(ctx, "schedule.merge")
	defer span.End()

	friendIDs, err := e.Resolver.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	own, err := e.Availability.GetRange(ctx, []string{userID}, from, to, "")
	if err != nil {
		return nil, fmt.Errorf("fetch own availability: %w", err)
	}

	views := make(map[models.Date]models.DayView, len(own))
	for _, record := range own {
		views[record.Date] = models.DayView{
			Date:      record.Date,
			OwnStatus: record.Status,
		}
	}

	if len(friendIDs) == 0 {
		return views, nil
	}

	friendRecords, err := e.Availability.GetRange(ctx, friendIDs, from, to, models.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("fetch friend availability: %w", err)
	}

	involved := make(map[string]struct{})
	for _, record := range friendRecords {
		involved[record.UserID] = struct{}{}
	}
	summaries, err := e.Directory.Summaries(ctx, keys(involved))
	if err != nil {
		return nil, fmt.Errorf("resolve friend profiles: %w", err)
	}

	seen := make(map[models.Date]map[string]struct{})
	for _, record := range friendRecords {
		// Never list the requesting user among their own friends, even
		// if the resolver result was polluted upstream.
		if record.UserID == userID {
			continue
		}
		// One entry per friend per date, even if the store repeats rows.
		if _, ok := seen[record.Date][record.UserID]; ok {
			continue
		}
		if seen[record.Date] == nil {
			seen[record.Date] = make(map[string]struct{})
		}
		seen[record.Date][record.UserID] = struct{}{}

		summary, ok := summaries[record.UserID]
		if !ok {
			summary = models.ProfileSummary{ID: record.UserID}
		}

		view, ok := views[record.Date]
		if !ok {
			view = models.DayView{
				Date:      record.Date,
				OwnStatus: models.StatusUnspecified,
			}
		}
		view.AvailableFriends = append(view.AvailableFriends, summary)
		views[record.Date] = view
	}

	for date, view := range views {
		sort.Slice(view.AvailableFriends, func(i, j int) bool {
			return view.AvailableFriends[i].ID < view.AvailableFriends[j].ID
		})
		views[date] = view
	}

	return views, nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
