package notify

import (
	"testing"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

func meetingStartingIn(id string, now time.Time, in time.Duration) models.Meeting {
	return models.Meeting{
		ID:    id,
		Title: "Meeting " + id,
		Start: now.Add(in),
		End:   now.Add(in + time.Hour),
	}
}

func TestDueReminders(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	tol := time.Minute

	tests := []struct {
		name    string
		in      time.Duration
		windows []time.Duration
	}{
		{"exactly 60m", 60 * time.Minute, []time.Duration{60 * time.Minute}},
		{"exactly 15m", 15 * time.Minute, []time.Duration{15 * time.Minute}},
		{"exactly 5m", 5 * time.Minute, []time.Duration{5 * time.Minute}},
		{"17m is not due", 17 * time.Minute, nil},
		{"14m40s rounds to 15m", 14*time.Minute + 40*time.Second, []time.Duration{15 * time.Minute}},
		{"15m20s rounds to 15m", 15*time.Minute + 20*time.Second, []time.Duration{15 * time.Minute}},
		{"just below band edge", 14*time.Minute + 29*time.Second, nil},
		{"upper band edge excluded", 15*time.Minute + 30*time.Second, nil},
		{"lower band edge included", 4*time.Minute + 30*time.Second, []time.Duration{5 * time.Minute}},
		{"already started", -time.Minute, nil},
		{"starting this instant", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meetings := []models.Meeting{meetingStartingIn("m", now, tt.in)}
			due := DueReminders(meetings, now, tol)

			if len(due) != len(tt.windows) {
				t.Fatalf("due = %d windows, want %d", len(due), len(tt.windows))
			}
			for i, w := range tt.windows {
				if due[i].Window != w {
					t.Errorf("due[%d].Window = %v, want %v", i, due[i].Window, w)
				}
			}
		})
	}
}

func TestDueRemindersFiresOncePerWindow(t *testing.T) {
	// Simulate a minute-by-minute tick over the 70 minutes leading up to a
	// meeting; each window must match on exactly one tick.
	start := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{{ID: "m", Start: start, End: start.Add(time.Hour)}}

	fired := make(map[time.Duration]int)
	for tick := start.Add(-70 * time.Minute); tick.Before(start); tick = tick.Add(time.Minute) {
		for _, d := range DueReminders(meetings, tick, time.Minute) {
			fired[d.Window]++
		}
	}

	for _, w := range ReminderWindows {
		if fired[w] != 1 {
			t.Errorf("window %v fired %d times, want 1", w, fired[w])
		}
	}
}

func TestDueRemindersMultipleMeetings(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{
		meetingStartingIn("soon", now, 5*time.Minute),
		meetingStartingIn("later", now, 60*time.Minute),
		meetingStartingIn("quiet", now, 30*time.Minute),
	}

	due := DueReminders(meetings, now, time.Minute)
	if len(due) != 2 {
		t.Fatalf("due = %d, want 2", len(due))
	}
	if due[0].Meeting.ID != "soon" || due[0].Window != 5*time.Minute {
		t.Errorf("due[0] = %s/%v", due[0].Meeting.ID, due[0].Window)
	}
	if due[1].Meeting.ID != "later" || due[1].Window != 60*time.Minute {
		t.Errorf("due[1] = %s/%v", due[1].Meeting.ID, due[1].Window)
	}
}

func TestDueRemindersZeroToleranceDefaults(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{meetingStartingIn("m", now, 15*time.Minute)}

	if due := DueReminders(meetings, now, 0); len(due) != 1 {
		t.Errorf("due = %d, want 1 with default tolerance", len(due))
	}
}
