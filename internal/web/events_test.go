package web

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

func nextBroadcast(t *testing.T, hub *Hub) Message {
	t.Helper()

	select {
	case data := <-hub.broadcast:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding broadcast: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
		return Message{}
	}
}

func TestBroadcasterRefreshCompleted(t *testing.T) {
	hub := NewHub()
	b := NewBroadcaster(hub)

	b.RefreshCompleted(models.RefreshResult{
		MeetingsFound: 3,
		NewCount:      1,
		RefreshedAt:   time.Now().UTC(),
	})

	msg := nextBroadcast(t, hub)
	if msg.Type != TypeRefreshCompleted {
		t.Errorf("type = %q", msg.Type)
	}

	payload := msg.Payload.(map[string]any)
	if payload["meetings_found"].(float64) != 3 || payload["new_count"].(float64) != 1 {
		t.Errorf("payload = %v", payload)
	}
}

func TestBroadcasterRefreshError(t *testing.T) {
	hub := NewHub()
	b := NewBroadcaster(hub)

	b.RefreshCompleted(models.RefreshResult{
		RefreshedAt: time.Now().UTC(),
		Error:       errors.New("calendar unreachable"),
	})

	msg := nextBroadcast(t, hub)
	if msg.Type != TypeRefreshError {
		t.Errorf("type = %q", msg.Type)
	}

	payload := msg.Payload.(map[string]any)
	if payload["message"] != "calendar unreachable" {
		t.Errorf("payload = %v", payload)
	}
}

func TestBroadcasterReminderSent(t *testing.T) {
	hub := NewHub()
	b := NewBroadcaster(hub)

	b.ReminderSent(models.Meeting{ID: "m", Title: "Standup"}, 15*time.Minute, 2)

	msg := nextBroadcast(t, hub)
	if msg.Type != TypeReminderSent {
		t.Errorf("type = %q", msg.Type)
	}

	payload := msg.Payload.(map[string]any)
	if payload["meeting_id"] != "m" || payload["window_minutes"].(float64) != 15 ||
		payload["recipients"].(float64) != 2 {
		t.Errorf("payload = %v", payload)
	}
}

func TestHubDeliversToRegisteredClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient()
	hub.Register(client)

	hub.Broadcast([]byte(`{"type":"refresh.completed"}`))

	select {
	case data := <-client.Send():
		if string(data) != `{"type":"refresh.completed"}` {
			t.Errorf("message = %s", data)
		}
	case <-time.After(time.Second):
		t.Fatal("client received nothing")
	}

	hub.Unregister(client)
	if _, open := <-client.Send(); open {
		t.Error("send channel still open after unregister")
	}
}
