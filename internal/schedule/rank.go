package schedule

import (
	"context"
	"fmt"
	"sort"

	"github.com/socialcal/backend/internal/logging"
	"github.com/socialcal/backend/internal/models"
)

// RankingEngine produces meetup suggestions: upcoming dates where the user
// and at least one friend are both marked available, best overlap first.
type RankingEngine struct {
	Resolver     *FriendGraphResolver
	Availability AvailabilityReader
	Directory    *ProfileDirectory
}

// NewRankingEngine constructs a ranking engine over the resolver,
// availability store and profile directory.
func NewRankingEngine(resolver *FriendGraphResolver, availability AvailabilityReader, directory *ProfileDirectory) *RankingEngine {
	return &RankingEngine{Resolver: resolver, Availability: availability, Directory: directory}
}

// Suggest ranks the dates in [today, today+windowDays] where the user and at
// least one friend overlap as available. The reference date comes from the
// caller so results are reproducible. Candidates sort by descending overlap
// count, ties by ascending date; friends within a candidate sort by name.
func (e *RankingEngine) Suggest(ctx context.Context, userID string, today models.Date, windowDays int) ([]models.MeetupCandidate, error) {
	ctx, span := logging.StartSpan(ctx, "schedule.rank")
	defer span.End()

	if windowDays < 0 {
		return nil, fmt.Errorf("window must not be negative: %d", windowDays)
	}

	until := today.AddDays(windowDays)

	own, err := e.Availability.GetRange(ctx, []string{userID}, today, until, models.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("fetch own availability: %w", err)
	}
	if len(own) == 0 {
		return nil, nil
	}

	candidateDates := make(map[models.Date]struct{}, len(own))
	first, last := own[0].Date, own[0].Date
	for _, record := range own {
		candidateDates[record.Date] = struct{}{}
		if record.Date.Before(first) {
			first = record.Date
		}
		if record.Date.After(last) {
			last = record.Date
		}
	}

	friendIDs, err := e.Resolver.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return nil, nil
	}

	friendRecords, err := e.Availability.GetRange(ctx, friendIDs, first, last, models.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("fetch friend availability: %w", err)
	}

	overlaps := make(map[models.Date][]string)
	involved := make(map[string]struct{})
	for _, record := range friendRecords {
		if _, ok := candidateDates[record.Date]; !ok {
			continue
		}
		if record.UserID == userID {
			continue
		}
		overlaps[record.Date] = append(overlaps[record.Date], record.UserID)
		involved[record.UserID] = struct{}{}
	}

	if len(overlaps) == 0 {
		return nil, nil
	}

	summaries, err := e.Directory.Summaries(ctx, keys(involved))
	if err != nil {
		return nil, fmt.Errorf("resolve friend profiles: %w", err)
	}

	candidates := make([]models.MeetupCandidate, 0, len(overlaps))
	for date, ids := range overlaps {
		friends := make([]models.ProfileSummary, 0, len(ids))
		dedup := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := dedup[id]; ok {
				continue
			}
			dedup[id] = struct{}{}
			if summary, ok := summaries[id]; ok {
				friends = append(friends, summary)
			} else {
				friends = append(friends, models.ProfileSummary{ID: id})
			}
		}

		sort.Slice(friends, func(i, j int) bool {
			if friends[i].FullName != friends[j].FullName {
				return friends[i].FullName < friends[j].FullName
			}
			return friends[i].ID < friends[j].ID
		})

		candidates = append(candidates, models.MeetupCandidate{
			Date:    date,
			Friends: friends,
			Count:   len(friends),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}
		return candidates[i].Date.Before(candidates[j].Date)
	})

	return candidates, nil
}
