package web

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/meeting-reminder-bot/bot/internal/storage"
)

// NewRouter creates and configures the HTTP router for the dashboard API.
func NewRouter(
	db *storage.DB,
	hub *Hub,
	meetings *storage.MeetingRepository,
	settings *storage.SettingsRepository,
	loc *time.Location,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(Logging)
	r.Use(ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", HealthCheck(db)).Methods("GET")
	api.HandleFunc("/status", Status(meetings, settings, hub)).Methods("GET")

	api.HandleFunc("/ws", WebSocketUpgrade(hub)).Methods("GET")

	api.HandleFunc("/meetings", ListMeetings(meetings, settings, loc)).Methods("GET")

	api.HandleFunc("/users", ListUsers(settings)).Methods("GET")
	api.HandleFunc("/users/{id}/settings", GetUserSettings(settings)).Methods("GET")
	api.HandleFunc("/users/{id}/settings", UpdateUserSettings(settings)).Methods("PATCH")

	return r
}
