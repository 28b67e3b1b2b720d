package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/notify"
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// Period selects the digest header style.
type Period int

const (
	PeriodToday Period = iota
	PeriodTomorrow
	PeriodWeek
)

// Formatter renders meetings into localized message text with times in both
// display zones. It implements notify.Renderer.
type Formatter struct {
	locUA *time.Location
	locTH *time.Location
}

// NewFormatter creates a formatter for the given display zones.
func NewFormatter(locUA, locTH *time.Location) *Formatter {
	return &Formatter{locUA: locUA, locTH: locTH}
}

// RenderNewMeeting renders the new-or-updated meeting notification.
func (f *Formatter) RenderNewMeeting(m models.Meeting) string {
	return fmt.Sprintf(msgNewMeeting, f.Meeting(m))
}

// RenderReminder renders a before-meeting reminder for the given window.
func (f *Formatter) RenderReminder(m models.Meeting, window time.Duration) string {
	return fmt.Sprintf(msgBeforeMeeting, notify.Minutes(window), f.Meeting(m))
}

// Meeting renders the details block: title, times in both zones and the
// optional fields that are present.
func (f *Formatter) Meeting(m models.Meeting) string {
	lines := []string{
		m.Title,
		fmt.Sprintf(lblThailandTime, m.Start.In(f.locTH).Format("15:04"), m.End.In(f.locTH).Format("15:04")),
		fmt.Sprintf(lblUkraineTime, m.Start.In(f.locUA).Format("15:04"), m.End.In(f.locUA).Format("15:04")),
	}
	if len(m.Attendants) > 0 {
		lines = append(lines, fmt.Sprintf(lblAttendants, strings.Join(m.Attendants, ", ")))
	}
	if m.HangoutLink != "" {
		lines = append(lines, fmt.Sprintf(lblLink, m.HangoutLink))
	}
	if m.Location != "" {
		lines = append(lines, fmt.Sprintf(lblLocation, m.Location))
	}
	if m.Description != "" {
		lines = append(lines, fmt.Sprintf(lblDescription, m.Description))
	}
	return strings.Join(lines, "\n")
}

// MeetingsList renders a digest: meetings grouped by day in the operating
// zone, each day under its header, in start order.
func (f *Formatter) MeetingsList(meetings []models.Meeting, period Period) string {
	if len(meetings) == 0 {
		return msgNoMeetings
	}

	var b strings.Builder
	var currentDay string
	for _, m := range meetings {
		startTH := m.Start.In(f.locTH)
		day := startTH.Format("02.01.2006")
		if day != currentDay {
			if currentDay != "" {
				b.WriteString("\n")
			}
			b.WriteString(f.dayHeader(startTH, period))
			b.WriteString("\n\n")
			currentDay = day
		}
		b.WriteString(f.Meeting(m))
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (f *Formatter) dayHeader(day time.Time, period Period) string {
	date := day.Format("02.01.2006")
	switch period {
	case PeriodToday:
		return fmt.Sprintf(msgMeetingsToday, date)
	case PeriodTomorrow:
		return fmt.Sprintf(msgMeetingsTomorrow, date)
	default:
		weekday := weekdayNames[(int(day.Weekday())+6)%7]
		return fmt.Sprintf(msgMeetingsForDay, strings.ToUpper(weekday), date)
	}
}
