package notify

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/calendar"
	"github.com/meeting-reminder-bot/bot/internal/storage"
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// Engine compares freshly fetched meetings against the stored snapshot and
// classifies each one as new, updated or unchanged. The fetched set then
// becomes the new baseline.
type Engine struct {
	gateway  calendar.Gateway
	meetings *storage.MeetingRepository
	loc      *time.Location

	// seeded flips once a baseline has been established. Until then every
	// fetch seeds silently, so a failed startup seed cannot turn the whole
	// backlog into "new" on the first fetch that succeeds.
	seeded atomic.Bool
}

// NewEngine creates a diff engine operating in the given timezone.
func NewEngine(gateway calendar.Gateway, meetings *storage.MeetingRepository, loc *time.Location) *Engine {
	return &Engine{
		gateway:  gateway,
		meetings: meetings,
		loc:      loc,
	}
}

// Refresh fetches the polling window, replaces the snapshot and returns the
// meetings classified as new and updated. On a fetch or store failure the
// previous snapshot stays authoritative and the error is returned for the
// caller to log; the next scheduled tick is the retry.
func (e *Engine) Refresh(ctx context.Context, now time.Time) (newMeetings, updatedMeetings []models.Meeting, err error) {
	newMeetings, updatedMeetings, err = e.refresh(ctx, now)
	if err != nil {
		return nil, nil, err
	}
	if !e.seeded.Swap(true) {
		// This fetch established the baseline; there is nothing to diff
		// against, so nothing is reported.
		return nil, nil, nil
	}
	return newMeetings, updatedMeetings, nil
}

// Seed performs the same fetch-and-replace but reports nothing, so the very
// first run after startup establishes a baseline without a notification
// storm.
func (e *Engine) Seed(ctx context.Context, now time.Time) error {
	_, _, err := e.refresh(ctx, now)
	if err == nil {
		e.seeded.Store(true)
	}
	return err
}

func (e *Engine) refresh(ctx context.Context, now time.Time) ([]models.Meeting, []models.Meeting, error) {
	start, end := calendar.RefreshWindow(now, e.loc)

	fetched, err := e.gateway.FetchMeetings(ctx, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching meetings: %w", err)
	}

	// Guard against duplicate IDs in one fetch; the snapshot is keyed by ID.
	deduped := fetched[:0]
	seen := make(map[string]bool, len(fetched))
	for _, m := range fetched {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		deduped = append(deduped, m)
	}

	// The previous snapshot is read and replaced inside one transaction, so
	// concurrent readers only ever see a complete baseline.
	prev, err := e.meetings.ReplaceSnapshot(ctx, deduped)
	if err != nil {
		return nil, nil, fmt.Errorf("replacing snapshot: %w", err)
	}

	var newMeetings, updatedMeetings []models.Meeting
	for _, m := range deduped {
		prevUpdated, known := prev[m.ID]
		switch {
		case !known:
			newMeetings = append(newMeetings, m)
		case m.Updated != prevUpdated:
			// Only the source's own last-modified marker decides "changed";
			// field-by-field comparison is fragile to null-vs-empty noise.
			updatedMeetings = append(updatedMeetings, m)
		}
	}

	// Meetings present in prev but absent from the fetch were removed from
	// the calendar. They are already gone from the snapshot; no removal
	// notification is sent.

	return newMeetings, updatedMeetings, nil
}
