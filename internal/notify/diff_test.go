package notify

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage"
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// fakeGateway serves a fixed meeting list, or fails when err is set.
type fakeGateway struct {
	meetings []models.Meeting
	err      error
}

func (g *fakeGateway) FetchMeetings(ctx context.Context, start, end time.Time) ([]models.Meeting, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.meetings, nil
}

func newTestRepos(t *testing.T) (*storage.MeetingRepository, *storage.SettingsRepository) {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewMeetingRepository(db), storage.NewSettingsRepository(db)
}

func calendarMeeting(id, updated string, start time.Time) models.Meeting {
	return models.Meeting{
		ID:      id,
		Title:   "Meeting " + id,
		Start:   start,
		End:     start.Add(time.Hour),
		Updated: updated,
	}
}

func TestRefreshClassifiesNewAndUpdated(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	start := now.Add(2 * time.Hour)

	gateway := &fakeGateway{meetings: []models.Meeting{
		calendarMeeting("a", "v1", start),
		calendarMeeting("b", "v1", start.Add(time.Hour)),
	}}
	repo, _ := newTestRepos(t)
	engine := NewEngine(gateway, repo, time.UTC)

	if err := engine.Seed(ctx, now); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Unchanged fetch: nothing to report.
	newM, updM, err := engine.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(newM) != 0 || len(updM) != 0 {
		t.Errorf("unchanged fetch reported %d new, %d updated", len(newM), len(updM))
	}

	// One meeting changes its marker, one appears, one disappears.
	gateway.meetings = []models.Meeting{
		calendarMeeting("a", "v2", start),
		calendarMeeting("c", "v1", start.Add(3*time.Hour)),
	}

	newM, updM, err = engine.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(newM) != 1 || newM[0].ID != "c" {
		t.Errorf("new = %+v, want [c]", newM)
	}
	if len(updM) != 1 || updM[0].ID != "a" {
		t.Errorf("updated = %+v, want [a]", updM)
	}

	// The removed meeting is gone from the snapshot.
	m, err := repo.GetByID(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m != nil {
		t.Errorf("removed meeting still stored: %+v", m)
	}
}

func TestRefreshIgnoresNonMarkerChanges(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	start := now.Add(2 * time.Hour)

	gateway := &fakeGateway{meetings: []models.Meeting{calendarMeeting("a", "v1", start)}}
	repo, _ := newTestRepos(t)
	engine := NewEngine(gateway, repo, time.UTC)

	if err := engine.Seed(ctx, now); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Same marker, different content: the source did not bump its
	// last-modified stamp, so nothing is reported.
	changed := calendarMeeting("a", "v1", start)
	changed.Title = "Renamed"
	gateway.meetings = []models.Meeting{changed}

	newM, updM, err := engine.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(newM) != 0 || len(updM) != 0 {
		t.Errorf("reported %d new, %d updated for an untouched marker", len(newM), len(updM))
	}

	// The stored copy still follows the fetch.
	m, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m == nil || m.Title != "Renamed" {
		t.Errorf("stored meeting = %+v", m)
	}
}

func TestRefreshFailureLeavesSnapshotUntouched(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	start := now.Add(2 * time.Hour)

	gateway := &fakeGateway{meetings: []models.Meeting{calendarMeeting("a", "v1", start)}}
	repo, _ := newTestRepos(t)
	engine := NewEngine(gateway, repo, time.UTC)

	if err := engine.Seed(ctx, now); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gateway.err = errors.New("calendar unreachable")
	if _, _, err := engine.Refresh(ctx, now); err == nil {
		t.Fatal("expected refresh error")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("snapshot size = %d after failed fetch, want 1", count)
	}

	// Recovery: the next successful fetch diffs against the kept baseline,
	// so the surviving meeting is not re-announced.
	gateway.err = nil
	newM, updM, err := engine.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(newM) != 0 || len(updM) != 0 {
		t.Errorf("reported %d new, %d updated after recovery", len(newM), len(updM))
	}
}

func TestRefreshDeduplicatesFetchedIDs(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	start := now.Add(2 * time.Hour)

	gateway := &fakeGateway{}
	repo, _ := newTestRepos(t)
	engine := NewEngine(gateway, repo, time.UTC)

	if err := engine.Seed(ctx, now); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gateway.meetings = []models.Meeting{
		calendarMeeting("a", "v1", start),
		calendarMeeting("a", "v2", start),
	}

	newM, _, err := engine.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(newM) != 1 {
		t.Errorf("new = %d, want 1", len(newM))
	}

	m, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m == nil || m.Updated != "v1" {
		t.Errorf("first occurrence should win, got %+v", m)
	}
}

func TestRefreshAfterFailedSeedSuppressesBacklog(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	start := now.Add(2 * time.Hour)

	gateway := &fakeGateway{err: errors.New("calendar unreachable")}
	repo, _ := newTestRepos(t)
	engine := NewEngine(gateway, repo, time.UTC)

	// The gateway is down at boot, so no baseline exists yet.
	if err := engine.Seed(ctx, now); err == nil {
		t.Fatal("expected seed error")
	}

	// The first fetch that succeeds holds the pre-existing backlog; it must
	// become the baseline, not a wave of "new" meetings.
	gateway.err = nil
	gateway.meetings = []models.Meeting{
		calendarMeeting("old-1", "v1", start),
		calendarMeeting("old-2", "v1", start.Add(time.Hour)),
	}

	newM, updM, err := engine.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(newM) != 0 || len(updM) != 0 {
		t.Errorf("reported %d new, %d updated for the pre-existing backlog", len(newM), len(updM))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("snapshot size = %d, want 2", count)
	}

	// Once a baseline exists, later refreshes report normally.
	gateway.meetings = append(gateway.meetings, calendarMeeting("fresh", "v1", start.Add(2*time.Hour)))
	newM, _, err = engine.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(newM) != 1 || newM[0].ID != "fresh" {
		t.Errorf("new = %+v, want [fresh]", newM)
	}
}

func TestSeedReportsNothing(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	gateway := &fakeGateway{meetings: []models.Meeting{
		calendarMeeting("a", "v1", now.Add(time.Hour)),
		calendarMeeting("b", "v1", now.Add(2*time.Hour)),
	}}
	repo, _ := newTestRepos(t)
	engine := NewEngine(gateway, repo, time.UTC)

	if err := engine.Seed(ctx, now); err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("snapshot size = %d, want 2", count)
	}
}
