package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage"
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

type testEnv struct {
	db       *storage.DB
	meetings *storage.MeetingRepository
	settings *storage.SettingsRepository
	server   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	meetings := storage.NewMeetingRepository(db)
	settings := storage.NewSettingsRepository(db)

	hub := NewHub()
	go hub.Run()

	router := NewRouter(db, hub, meetings, settings, time.UTC)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{db: db, meetings: meetings, settings: settings, server: server}
}

func (e *testEnv) get(t *testing.T, path string, out any) int {
	t.Helper()

	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) patch(t *testing.T, path, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodPatch, e.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var health HealthResponse
	if status := env.get(t, "/api/health", &health); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if health.Status != "healthy" || !health.DBConnected {
		t.Errorf("health = %+v", health)
	}
}

func TestMeetingsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 0, 0, 0, time.UTC)
	_, err := env.meetings.ReplaceSnapshot(ctx, []models.Meeting{
		{ID: "today", Title: "Today", Start: today, End: today.Add(time.Hour), Attendants: []string{"@alice"}},
		{ID: "later", Title: "Later", Start: today.AddDate(0, 0, 2), End: today.AddDate(0, 0, 2).Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("seeding meetings: %v", err)
	}

	var all []MeetingResponse
	if status := env.get(t, "/api/meetings", &all); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(all) != 2 {
		t.Errorf("all meetings = %d, want 2", len(all))
	}

	var todayOnly []MeetingResponse
	if status := env.get(t, "/api/meetings?period=today", &todayOnly); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(todayOnly) != 1 || todayOnly[0].ID != "today" {
		t.Errorf("today meetings = %+v", todayOnly)
	}

	if status := env.get(t, "/api/meetings?period=fortnight", nil); status != http.StatusBadRequest {
		t.Errorf("unknown period status = %d", status)
	}
}

func TestMeetingsEndpointAttendanceFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour)
	_, err := env.meetings.ReplaceSnapshot(ctx, []models.Meeting{
		{ID: "mine", Title: "Mine", Start: start, End: start.Add(time.Hour), Attendants: []string{"@alice"}},
		{ID: "other", Title: "Other", Start: start, End: start.Add(time.Hour), Attendants: []string{"@bob"}},
	})
	if err != nil {
		t.Fatalf("seeding meetings: %v", err)
	}

	if err := env.settings.SetUserInfo(ctx, 1, "alice", "Alice"); err != nil {
		t.Fatalf("set user info: %v", err)
	}
	if err := env.settings.SetFilter(ctx, 1, models.FilterMine); err != nil {
		t.Fatalf("set filter: %v", err)
	}

	var list []MeetingResponse
	if status := env.get(t, "/api/meetings?user_id=1", &list); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(list) != 1 || list[0].ID != "mine" {
		t.Errorf("filtered meetings = %+v", list)
	}
}

func TestMeetingsEndpointUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour)
	_, err := env.meetings.ReplaceSnapshot(ctx, []models.Meeting{
		{ID: "m", Title: "Meeting", Start: start, End: start.Add(time.Hour), Attendants: []string{"@alice"}},
	})
	if err != nil {
		t.Fatalf("seeding meetings: %v", err)
	}

	// A user the bot has never seen gets the default unfiltered view, and
	// the lookup must not create a settings row.
	var list []MeetingResponse
	if status := env.get(t, "/api/meetings?user_id=999", &list); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(list) != 1 {
		t.Errorf("meetings = %+v", list)
	}

	var users []SettingsResponse
	if status := env.get(t, "/api/users", &users); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(users) != 0 {
		t.Errorf("read endpoint created settings rows: %+v", users)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	// First read lazily creates the row with defaults.
	var s SettingsResponse
	if status := env.get(t, "/api/users/5/settings", &s); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if s.UserID != 5 || s.FilterType != models.FilterAll || s.Notify15m {
		t.Errorf("default settings = %+v", s)
	}

	// Partial update: only the touched fields change.
	status := env.patch(t, "/api/users/5/settings",
		`{"filter_type":"mine","notify_15m":true}`, &s)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if s.FilterType != models.FilterMine || !s.Notify15m || s.Notify1h {
		t.Errorf("updated settings = %+v", s)
	}

	if status := env.patch(t, "/api/users/5/settings", `{"filter_type":"bogus"}`, nil); status != http.StatusBadRequest {
		t.Errorf("invalid filter status = %d", status)
	}

	if status := env.patch(t, "/api/users/abc/settings", `{}`, nil); status != http.StatusBadRequest {
		t.Errorf("invalid user id status = %d", status)
	}

	var users []SettingsResponse
	if status := env.get(t, "/api/users", &users); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(users) != 1 {
		t.Errorf("users = %+v", users)
	}
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var status StatusResponse
	if code := env.get(t, "/api/status", &status); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if status.MeetingsCount != 0 || status.UsersCount != 0 {
		t.Errorf("status = %+v", status)
	}
}
