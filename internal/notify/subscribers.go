package notify

import (
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// SubscribersFor returns the IDs of users who should receive the given
// notification kind for the given meeting: the matching toggle must be on,
// and users with the "mine" filter must appear in the meeting's attendants
// under their display identifier.
//
// Pure function of the meeting and the settings list.
func SubscribersFor(meeting models.Meeting, kind Kind, users []models.UserSettings) []int64 {
	var subscribers []int64
	for _, u := range users {
		if !toggleEnabled(u, kind) {
			continue
		}
		if u.FiltersMine() && !meeting.HasAttendant(u.DisplayID()) {
			continue
		}
		subscribers = append(subscribers, u.UserID)
	}
	return subscribers
}

func toggleEnabled(u models.UserSettings, kind Kind) bool {
	switch kind {
	case KindNewOrUpdated:
		return u.NotifyNew
	case KindBefore1h:
		return u.Notify1h
	case KindBefore15m:
		return u.Notify15m
	case KindBefore5m:
		return u.Notify5m
	}
	return false
}
