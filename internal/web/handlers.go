package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/meeting-reminder-bot/bot/internal/calendar"
	"github.com/meeting-reminder-bot/bot/internal/storage"
	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		if status != "healthy" {
			WriteJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		WriteJSON(w, http.StatusOK, response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	MeetingsCount    int `json:"meetings_count"`
	UsersCount       int `json:"users_count"`
	DashboardClients int `json:"dashboard_clients"`
}

// Status returns a handler that provides system status information.
func Status(meetings *storage.MeetingRepository, settings *storage.SettingsRepository, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		meetingsCount, err := meetings.Count(ctx)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to count meetings")
			return
		}

		users, err := settings.List(ctx)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to list users")
			return
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			MeetingsCount:    meetingsCount,
			UsersCount:       len(users),
			DashboardClients: hub.ClientCount(),
		})
	}
}

// MeetingResponse represents a meeting in API responses.
type MeetingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendants  []string  `json:"attendants"`
	Location    string    `json:"location,omitempty"`
	HangoutLink string    `json:"hangout_link,omitempty"`
	Description string    `json:"description,omitempty"`
}

func meetingResponse(m models.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:          m.ID,
		Title:       m.Title,
		Start:       m.Start,
		End:         m.End,
		Attendants:  m.Attendants,
		Location:    m.Location,
		HangoutLink: m.HangoutLink,
		Description: m.Description,
	}
}

// ListMeetings returns the stored meetings, optionally restricted to a
// period (today, tomorrow, rest_week, next_week) and to a user's own
// meetings via the user_id query parameter.
func ListMeetings(meetings *storage.MeetingRepository, settings *storage.SettingsRepository, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now()

		var (
			list []models.Meeting
			err  error
		)

		switch period := r.URL.Query().Get("period"); period {
		case "", "all":
			list, err = meetings.List(ctx)
		case "today":
			from, to := calendar.TodayRange(now, loc)
			list, err = meetings.ListBetween(ctx, from, to)
		case "tomorrow":
			from, to := calendar.TomorrowRange(now, loc)
			list, err = meetings.ListBetween(ctx, from, to)
		case "rest_week":
			from, to := calendar.RestOfWeekRange(now, loc)
			list, err = meetings.ListBetween(ctx, from, to)
		case "next_week":
			from, to := calendar.NextWeekRange(now, loc)
			list, err = meetings.ListBetween(ctx, from, to)
		default:
			WriteError(w, http.StatusBadRequest, ErrValidation, "Unknown period: "+period)
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to query meetings")
			return
		}

		if rawID := r.URL.Query().Get("user_id"); rawID != "" {
			userID, parseErr := strconv.ParseInt(rawID, 10, 64)
			if parseErr != nil {
				WriteError(w, http.StatusBadRequest, ErrValidation, "Invalid user_id")
				return
			}
			// A read must not create settings rows; unknown users get the
			// default "all" behavior.
			user, getErr := settings.Find(ctx, userID)
			if getErr != nil {
				WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to load user settings")
				return
			}
			if user != nil && user.FiltersMine() {
				filtered := list[:0]
				for _, m := range list {
					if m.HasAttendant(user.DisplayID()) {
						filtered = append(filtered, m)
					}
				}
				list = filtered
			}
		}

		response := make([]MeetingResponse, 0, len(list))
		for _, m := range list {
			response = append(response, meetingResponse(m))
		}

		WriteJSON(w, http.StatusOK, response)
	}
}

// SettingsResponse represents user settings in API responses.
type SettingsResponse struct {
	UserID     int64  `json:"user_id"`
	FilterType string `json:"filter_type"`
	Notify1h   bool   `json:"notify_1h"`
	Notify15m  bool   `json:"notify_15m"`
	Notify5m   bool   `json:"notify_5m"`
	NotifyNew  bool   `json:"notify_new"`
	Username   string `json:"username,omitempty"`
	FullName   string `json:"full_name,omitempty"`
}

func settingsResponse(s *models.UserSettings) SettingsResponse {
	return SettingsResponse{
		UserID:     s.UserID,
		FilterType: s.FilterType,
		Notify1h:   s.Notify1h,
		Notify15m:  s.Notify15m,
		Notify5m:   s.Notify5m,
		NotifyNew:  s.NotifyNew,
		Username:   s.Username,
		FullName:   s.FullName,
	}
}

// ListUsers returns settings for every known user.
func ListUsers(settings *storage.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := settings.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to list users")
			return
		}

		response := make([]SettingsResponse, 0, len(users))
		for i := range users {
			response = append(response, settingsResponse(&users[i]))
		}

		WriteJSON(w, http.StatusOK, response)
	}
}

// GetUserSettings returns one user's settings.
func GetUserSettings(settings *storage.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromPath(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrValidation, "Invalid user ID")
			return
		}

		user, err := settings.Get(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to load user settings")
			return
		}

		WriteJSON(w, http.StatusOK, settingsResponse(user))
	}
}

// UpdateSettingsRequest represents a settings update. Omitted fields keep
// their current value.
type UpdateSettingsRequest struct {
	FilterType *string `json:"filter_type,omitempty"`
	Notify1h   *bool   `json:"notify_1h,omitempty"`
	Notify15m  *bool   `json:"notify_15m,omitempty"`
	Notify5m   *bool   `json:"notify_5m,omitempty"`
	NotifyNew  *bool   `json:"notify_new,omitempty"`
}

// UpdateUserSettings applies a partial settings update for one user.
func UpdateUserSettings(settings *storage.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := userIDFromPath(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrValidation, "Invalid user ID")
			return
		}

		var req UpdateSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, ErrBadRequest, "Invalid request body")
			return
		}

		if req.FilterType != nil {
			if err := settings.SetFilter(ctx, userID, *req.FilterType); err != nil {
				WriteError(w, http.StatusBadRequest, ErrValidation, err.Error())
				return
			}
		}

		if req.Notify1h != nil || req.Notify15m != nil || req.Notify5m != nil || req.NotifyNew != nil {
			err := settings.UpdateNotifications(ctx, userID, req.Notify1h, req.Notify15m, req.Notify5m, req.NotifyNew)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to update notifications")
				return
			}
		}

		updated, err := settings.Get(ctx, userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to load user settings")
			return
		}

		WriteJSON(w, http.StatusOK, settingsResponse(updated))
	}
}

func userIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
