package notify

import (
	"context"
	"log"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage"
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// Service runs the two periodic cycles: refresh-and-diff with new/updated
// notifications, and the reminder window matcher. It never returns an error
// to its caller; every failure is cycle-scoped, logged, and healed by the
// next tick.
type Service struct {
	engine    *Engine
	meetings  *storage.MeetingRepository
	settings  *storage.SettingsRepository
	notifier  Notifier
	renderer  Renderer
	tolerance time.Duration

	broadcaster Broadcaster // optional
}

// NewService wires the core cycles together. The tolerance should equal the
// reminder tick interval.
func NewService(
	engine *Engine,
	meetings *storage.MeetingRepository,
	settings *storage.SettingsRepository,
	notifier Notifier,
	renderer Renderer,
	tolerance time.Duration,
) *Service {
	return &Service{
		engine:    engine,
		meetings:  meetings,
		settings:  settings,
		notifier:  notifier,
		renderer:  renderer,
		tolerance: tolerance,
	}
}

// SetBroadcaster attaches an observer for cycle outcomes.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Seed establishes the initial snapshot without sending notifications.
func (s *Service) Seed(ctx context.Context) error {
	now := time.Now()
	if err := s.engine.Seed(ctx, now); err != nil {
		return err
	}

	if s.broadcaster != nil {
		count, _ := s.meetings.Count(ctx)
		s.broadcaster.RefreshCompleted(models.RefreshResult{
			MeetingsFound: count,
			Seeded:        true,
			RefreshedAt:   now.UTC(),
		})
	}
	return nil
}

// RunRefresh performs one refresh cycle and notifies subscribers about new
// and updated meetings.
func (s *Service) RunRefresh(ctx context.Context) {
	now := time.Now()

	newMeetings, updatedMeetings, err := s.engine.Refresh(ctx, now)
	if err != nil {
		log.Printf("Refresh cycle failed: %v", err)
		if s.broadcaster != nil {
			s.broadcaster.RefreshCompleted(models.RefreshResult{RefreshedAt: now.UTC(), Error: err})
		}
		return
	}

	if len(newMeetings)+len(updatedMeetings) > 0 {
		users, err := s.settings.List(ctx)
		if err != nil {
			log.Printf("Refresh cycle: listing user settings failed: %v", err)
		} else {
			for _, m := range append(newMeetings, updatedMeetings...) {
				s.deliver(m, SubscribersFor(m, KindNewOrUpdated, users), s.renderer.RenderNewMeeting(m))
			}
		}
	}

	count, _ := s.meetings.Count(ctx)
	log.Printf("Refresh cycle completed: %d meetings, %d new, %d updated",
		count, len(newMeetings), len(updatedMeetings))

	if s.broadcaster != nil {
		s.broadcaster.RefreshCompleted(models.RefreshResult{
			MeetingsFound: count,
			NewCount:      len(newMeetings),
			UpdatedCount:  len(updatedMeetings),
			RefreshedAt:   now.UTC(),
		})
	}
}

// RunReminders performs one matcher cycle: reads the snapshot, finds
// meetings inside a reminder window and notifies their subscribers.
func (s *Service) RunReminders(ctx context.Context) {
	now := time.Now()

	meetings, err := s.meetings.List(ctx)
	if err != nil {
		log.Printf("Reminder cycle: listing meetings failed: %v", err)
		return
	}

	due := DueReminders(meetings, now, s.tolerance)
	if len(due) == 0 {
		return
	}

	users, err := s.settings.List(ctx)
	if err != nil {
		log.Printf("Reminder cycle: listing user settings failed: %v", err)
		return
	}

	for _, d := range due {
		kind, ok := KindForWindow(d.Window)
		if !ok {
			continue
		}
		subscribers := SubscribersFor(d.Meeting, kind, users)
		sent := s.deliver(d.Meeting, subscribers, s.renderer.RenderReminder(d.Meeting, d.Window))
		if sent > 0 {
			log.Printf("Reminder sent: meeting=%s window=%dm recipients=%d",
				d.Meeting.ID, Minutes(d.Window), sent)
		}
		if s.broadcaster != nil {
			s.broadcaster.ReminderSent(d.Meeting, d.Window, sent)
		}
	}
}

// deliver sends text to every user in the list. One failed delivery never
// prevents the rest of the batch.
func (s *Service) deliver(m models.Meeting, userIDs []int64, text string) int {
	sent := 0
	for _, userID := range userIDs {
		if err := s.notifier.Notify(userID, text); err != nil {
			log.Printf("Delivery failed: user=%d meeting=%s err=%v", userID, m.ID, err)
			continue
		}
		sent++
	}
	return sent
}
