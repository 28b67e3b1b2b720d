package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// SettingsRepository provides data access for per-user notification settings.
type SettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Get retrieves the settings for a user, creating a default row on first
// access: filter "all", every notification toggle off.
func (r *SettingsRepository) Get(ctx context.Context, userID int64) (*models.UserSettings, error) {
	s, err := r.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	now := r.Now()
	_, err = r.DB().ExecContext(ctx, `
		INSERT INTO user_settings (user_id, filter_type, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, models.FilterAll, now, now)
	if err != nil {
		return nil, fmt.Errorf("creating default settings: %w", err)
	}

	return r.get(ctx, userID)
}

// Find retrieves the settings for a user without creating a row, returning
// nil when the user has never interacted with the bot.
func (r *SettingsRepository) Find(ctx context.Context, userID int64) (*models.UserSettings, error) {
	return r.get(ctx, userID)
}

// List retrieves the settings of every known user.
func (r *SettingsRepository) List(ctx context.Context) ([]models.UserSettings, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT user_id, filter_type, notify_1h, notify_15m, notify_5m, notify_new,
		       username, full_name, created_at, updated_at
		FROM user_settings
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying user settings: %w", err)
	}
	defer rows.Close()

	var settings []models.UserSettings
	for rows.Next() {
		var s models.UserSettings
		if err := rows.Scan(
			&s.UserID, &s.FilterType, &s.Notify1h, &s.Notify15m, &s.Notify5m, &s.NotifyNew,
			&s.Username, &s.FullName, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning user settings: %w", err)
		}
		settings = append(settings, s)
	}

	return settings, rows.Err()
}

// SetFilter updates a user's attendance filter.
func (r *SettingsRepository) SetFilter(ctx context.Context, userID int64, filterType string) error {
	if filterType != models.FilterAll && filterType != models.FilterMine {
		return fmt.Errorf("unknown filter type: %s", filterType)
	}
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}

	_, err := r.DB().ExecContext(ctx, `
		UPDATE user_settings SET filter_type = ?, updated_at = ? WHERE user_id = ?
	`, filterType, r.Now(), userID)
	if err != nil {
		return fmt.Errorf("updating filter: %w", err)
	}

	return nil
}

// SetNotifications updates all four notification toggles at once.
func (r *SettingsRepository) SetNotifications(ctx context.Context, userID int64, n1h, n15m, n5m, nNew bool) error {
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}

	_, err := r.DB().ExecContext(ctx, `
		UPDATE user_settings SET
			notify_1h = ?, notify_15m = ?, notify_5m = ?, notify_new = ?, updated_at = ?
		WHERE user_id = ?
	`, n1h, n15m, n5m, nNew, r.Now(), userID)
	if err != nil {
		return fmt.Errorf("updating notifications: %w", err)
	}

	return nil
}

// UpdateNotifications sets the toggles whose pointers are non-nil and keeps
// the rest. The update is a single statement, so concurrent partial updates
// never overwrite each other's untouched toggles.
func (r *SettingsRepository) UpdateNotifications(ctx context.Context, userID int64, n1h, n15m, n5m, nNew *bool) error {
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}

	_, err := r.DB().ExecContext(ctx, `
		UPDATE user_settings SET
			notify_1h = COALESCE(?, notify_1h),
			notify_15m = COALESCE(?, notify_15m),
			notify_5m = COALESCE(?, notify_5m),
			notify_new = COALESCE(?, notify_new),
			updated_at = ?
		WHERE user_id = ?
	`, n1h, n15m, n5m, nNew, r.Now(), userID)
	if err != nil {
		return fmt.Errorf("updating notifications: %w", err)
	}

	return nil
}

// SetUserInfo records the user's Telegram username and full name, used for
// the attendance-filter display identifier.
func (r *SettingsRepository) SetUserInfo(ctx context.Context, userID int64, username, fullName string) error {
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}

	_, err := r.DB().ExecContext(ctx, `
		UPDATE user_settings SET username = ?, full_name = ?, updated_at = ? WHERE user_id = ?
	`, username, fullName, r.Now(), userID)
	if err != nil {
		return fmt.Errorf("updating user info: %w", err)
	}

	return nil
}

func (r *SettingsRepository) get(ctx context.Context, userID int64) (*models.UserSettings, error) {
	s := &models.UserSettings{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT user_id, filter_type, notify_1h, notify_15m, notify_5m, notify_new,
		       username, full_name, created_at, updated_at
		FROM user_settings WHERE user_id = ?
	`, userID).Scan(
		&s.UserID, &s.FilterType, &s.Notify1h, &s.Notify15m, &s.Notify5m, &s.NotifyNew,
		&s.Username, &s.FullName, &s.CreatedAt, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user settings: %w", err)
	}

	return s, nil
}
