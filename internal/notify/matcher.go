package notify

import (
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// Due pairs a meeting with the reminder window it currently falls in.
type Due struct {
	Meeting models.Meeting
	Window  time.Duration
}

// DueReminders returns, for each meeting, the reminder windows whose band
// the time-until-start currently falls in. The band around each window is
// one tolerance wide, centered on the window: [W - tol/2, W + tol/2). With
// the tolerance equal to the matcher's tick interval every meeting crosses
// each band on exactly one tick, so reminders fire once without any sent-set
// bookkeeping.
//
// Pure function of its inputs; callers pass the snapshot content and the
// current instant.
func DueReminders(meetings []models.Meeting, now time.Time, tolerance time.Duration) []Due {
	if tolerance <= 0 {
		tolerance = time.Minute
	}

	var due []Due
	for _, m := range meetings {
		untilStart := m.Start.Sub(now)
		if untilStart < 0 {
			continue
		}
		// Windows close enough to overlap may both match; callers must not
		// assume mutual exclusivity.
		for _, w := range ReminderWindows {
			if untilStart >= w-tolerance/2 && untilStart < w+tolerance/2 {
				due = append(due, Due{Meeting: m, Window: w})
			}
		}
	}

	return due
}
