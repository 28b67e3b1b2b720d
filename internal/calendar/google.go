package calendar

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// GoogleGateway fetches meetings from a single Google Calendar using a
// service account.
type GoogleGateway struct {
	service    *gcal.Service
	calendarID string
	loc        *time.Location // zone for all-day event boundaries
}

// NewGoogleGateway builds a gateway from raw service-account JSON.
func NewGoogleGateway(ctx context.Context, serviceAccountJSON []byte, calendarID string, loc *time.Location) (*GoogleGateway, error) {
	service, err := gcal.NewService(ctx,
		option.WithCredentialsJSON(serviceAccountJSON),
		option.WithScopes(gcal.CalendarReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("building calendar service: %w", err)
	}

	return &GoogleGateway{
		service:    service,
		calendarID: calendarID,
		loc:        loc,
	}, nil
}

// FetchMeetings lists events within [start, end) with recurring events
// expanded to single instances. Events with an empty ID or an unparsable
// start time are skipped; they never reach the snapshot or the diff.
func (g *GoogleGateway) FetchMeetings(ctx context.Context, start, end time.Time) ([]models.Meeting, error) {
	events, err := g.service.Events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	meetings := make([]models.Meeting, 0, len(events.Items))
	for _, e := range events.Items {
		m, err := g.meetingFromEvent(e)
		if err != nil {
			log.Printf("Skipping malformed event %q: %v", e.Id, err)
			continue
		}
		meetings = append(meetings, m)
	}

	return meetings, nil
}

func (g *GoogleGateway) meetingFromEvent(e *gcal.Event) (models.Meeting, error) {
	if e.Id == "" {
		return models.Meeting{}, fmt.Errorf("event has no id")
	}

	start, err := parseEventTime(e.Start, g.loc)
	if err != nil {
		return models.Meeting{}, fmt.Errorf("parsing start: %w", err)
	}
	end, err := parseEventTime(e.End, g.loc)
	if err != nil {
		// An event without a usable end still has a defined start; give it
		// the calendar's conventional one-hour slot.
		end = start.Add(time.Hour)
	}

	return models.Meeting{
		ID:          e.Id,
		Title:       e.Summary,
		Start:       start.UTC(),
		End:         end.UTC(),
		Attendants:  attendantHandles(e.Attendees),
		Location:    e.Location,
		HangoutLink: e.HangoutLink,
		Description: e.Description,
		Updated:     e.Updated,
	}, nil
}

func parseEventTime(t *gcal.EventDateTime, loc *time.Location) (time.Time, error) {
	if t == nil {
		return time.Time{}, fmt.Errorf("missing time")
	}
	if t.DateTime != "" {
		return time.Parse(time.RFC3339, t.DateTime)
	}
	if t.Date != "" {
		// All-day events carry a bare date, interpreted in the calendar zone.
		return time.ParseInLocation("2006-01-02", t.Date, loc)
	}
	return time.Time{}, fmt.Errorf("missing time")
}

func attendantHandles(attendees []*gcal.EventAttendee) []string {
	var handles []string
	for _, a := range attendees {
		if h := HandleFromEmail(a.Email); h != "" {
			handles = append(handles, h)
		}
	}
	return handles
}

// HandleFromEmail derives the display handle from an attendee email:
// the portion after "@", prefixed with "@". Returns "" when the value
// does not look like an email address.
func HandleFromEmail(email string) string {
	idx := strings.Index(email, "@")
	if idx == -1 {
		return ""
	}
	domain := email[idx+1:]
	if domain == "" {
		return ""
	}
	return "@" + domain
}
