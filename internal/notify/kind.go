// Package notify implements the core of the bot: the refresh-and-diff
// engine, the reminder window matcher, the subscriber resolver and the
// scheduler that drives them.
package notify

import "time"

// Kind identifies a notification category a user can subscribe to.
type Kind int

const (
	// KindNewOrUpdated covers meetings that appeared or changed since the
	// previous snapshot.
	KindNewOrUpdated Kind = iota
	// KindBefore1h, KindBefore15m and KindBefore5m are the reminder windows.
	KindBefore1h
	KindBefore15m
	KindBefore5m
)

// ReminderWindows are the lead times before a meeting's start at which a
// reminder fires, largest first.
var ReminderWindows = []time.Duration{60 * time.Minute, 15 * time.Minute, 5 * time.Minute}

// KindForWindow maps a reminder lead time to its notification kind.
func KindForWindow(window time.Duration) (Kind, bool) {
	switch window {
	case 60 * time.Minute:
		return KindBefore1h, true
	case 15 * time.Minute:
		return KindBefore15m, true
	case 5 * time.Minute:
		return KindBefore5m, true
	}
	return 0, false
}

// Minutes returns the window's lead time in whole minutes, for logging and
// message rendering.
func Minutes(window time.Duration) int {
	return int(window / time.Minute)
}
