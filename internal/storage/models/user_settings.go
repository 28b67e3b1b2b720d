package models

import (
	"fmt"
	"time"
)

// Attendance filter values.
const (
	FilterAll  = "all"
	FilterMine = "mine"
)

// UserSettings holds a user's notification preferences, keyed by the
// Telegram user ID. Rows are created lazily on first access with every
// toggle off and filter "all".
type UserSettings struct {
	UserID     int64     `json:"user_id"`
	FilterType string    `json:"filter_type"`
	Notify1h   bool      `json:"notify_1h"`
	Notify15m  bool      `json:"notify_15m"`
	Notify5m   bool      `json:"notify_5m"`
	NotifyNew  bool      `json:"notify_new"`
	Username   string    `json:"username,omitempty"`
	FullName   string    `json:"full_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DisplayID returns the identifier used for attendance-filter membership:
// "@username" when known, otherwise "@{user_id}".
func (s UserSettings) DisplayID() string {
	if s.Username != "" {
		return "@" + s.Username
	}
	return fmt.Sprintf("@%d", s.UserID)
}

// FiltersMine reports whether the user restricted notifications to
// meetings they attend.
func (s UserSettings) FiltersMine() bool {
	return s.FilterType == FilterMine
}
