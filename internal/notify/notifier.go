package notify

import (
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// Notifier delivers a rendered message to a user. The delivery channel is
// opaque to the core; failures are logged per user and never abort the rest
// of a batch or the cycle that produced it.
type Notifier interface {
	Notify(userID int64, text string) error
}

// Renderer turns a meeting into localized notification text.
type Renderer interface {
	RenderNewMeeting(m models.Meeting) string
	RenderReminder(m models.Meeting, window time.Duration) string
}

// Broadcaster receives cycle outcomes for observers such as the web
// dashboard. Implementations must not block.
type Broadcaster interface {
	RefreshCompleted(result models.RefreshResult)
	ReminderSent(meeting models.Meeting, window time.Duration, recipients int)
}
