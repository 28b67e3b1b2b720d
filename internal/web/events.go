package web

import (
	"encoding/json"
	"log"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// MessageType identifies the type of dashboard event.
type MessageType string

const (
	TypeRefreshCompleted MessageType = "refresh.completed"
	TypeRefreshError     MessageType = "refresh.error"
	TypeReminderSent     MessageType = "reminder.sent"
)

// Message is the event envelope sent to dashboard clients.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// RefreshPayload is the payload for refresh.completed events.
type RefreshPayload struct {
	MeetingsFound int       `json:"meetings_found"`
	NewCount      int       `json:"new_count"`
	UpdatedCount  int       `json:"updated_count"`
	Seeded        bool      `json:"seeded"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}

// RefreshErrorPayload is the payload for refresh.error events.
type RefreshErrorPayload struct {
	Message     string    `json:"message"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// ReminderPayload is the payload for reminder.sent events.
type ReminderPayload struct {
	MeetingID     string    `json:"meeting_id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	WindowMinutes int       `json:"window_minutes"`
	Recipients    int       `json:"recipients"`
}

// Broadcaster publishes core cycle outcomes to the hub. It implements
// notify.Broadcaster.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a broadcaster for the given hub.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// RefreshCompleted publishes the outcome of one refresh cycle.
func (b *Broadcaster) RefreshCompleted(result models.RefreshResult) {
	if result.Error != nil {
		b.send(NewMessage(TypeRefreshError, RefreshErrorPayload{
			Message:     result.Error.Error(),
			RefreshedAt: result.RefreshedAt,
		}))
		return
	}

	b.send(NewMessage(TypeRefreshCompleted, RefreshPayload{
		MeetingsFound: result.MeetingsFound,
		NewCount:      result.NewCount,
		UpdatedCount:  result.UpdatedCount,
		Seeded:        result.Seeded,
		RefreshedAt:   result.RefreshedAt,
	}))
}

// ReminderSent publishes one fired reminder.
func (b *Broadcaster) ReminderSent(meeting models.Meeting, window time.Duration, recipients int) {
	b.send(NewMessage(TypeReminderSent, ReminderPayload{
		MeetingID:     meeting.ID,
		Title:         meeting.Title,
		Start:         meeting.Start,
		WindowMinutes: int(window / time.Minute),
		Recipients:    recipients,
	}))
}

func (b *Broadcaster) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Encoding dashboard message failed: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
