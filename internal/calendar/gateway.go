// Package calendar provides the Google Calendar gateway and the time-window
// helpers used for refresh cycles and digest commands.
package calendar

import (
	"context"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// Gateway fetches raw calendar events for a time window, normalized into
// Meeting records. The refresh cycle treats it as a black box so tests can
// substitute fixtures.
type Gateway interface {
	FetchMeetings(ctx context.Context, start, end time.Time) ([]models.Meeting, error)
}
