package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/meeting-reminder-bot/bot/internal/storage/models"
)

// MeetingRepository provides data access for the meeting snapshot.
// The snapshot holds the last known state of every meeting in the polled
// window and is replaced wholesale each refresh cycle.
type MeetingRepository struct {
	BaseRepository
}

// NewMeetingRepository creates a new meeting repository.
func NewMeetingRepository(db *DB) *MeetingRepository {
	return &MeetingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// List retrieves all meetings in the current snapshot, ordered by start time.
func (r *MeetingRepository) List(ctx context.Context) ([]models.Meeting, error) {
	return r.list(ctx, `
		SELECT id, title, start_time, end_time, attendants, location, hangout_link, description, updated
		FROM meetings
		ORDER BY start_time
	`)
}

// ListBetween retrieves meetings starting within [from, to).
func (r *MeetingRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Meeting, error) {
	return r.list(ctx, `
		SELECT id, title, start_time, end_time, attendants, location, hangout_link, description, updated
		FROM meetings
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time
	`, from.UTC(), to.UTC())
}

// GetByID retrieves a single meeting, or nil when it is not in the snapshot.
func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT id, title, start_time, end_time, attendants, location, hangout_link, description, updated
		FROM meetings WHERE id = ?
	`, id)

	m, err := scanMeeting(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying meeting: %w", err)
	}

	return &m, nil
}

// ReplaceSnapshot atomically replaces the snapshot content with the given
// meetings and returns the previous snapshot as an id -> updated-marker map.
// The read and the replace happen inside one transaction, so callers never
// observe a half-updated snapshot and the returned baseline is exactly what
// the new content superseded.
func (r *MeetingRepository) ReplaceSnapshot(ctx context.Context, meetings []models.Meeting) (map[string]string, error) {
	prev := make(map[string]string)

	err := r.Transaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT id, updated FROM meetings")
		if err != nil {
			return fmt.Errorf("reading previous snapshot: %w", err)
		}
		for rows.Next() {
			var id, updated string
			if err := rows.Scan(&id, &updated); err != nil {
				rows.Close()
				return fmt.Errorf("scanning previous snapshot: %w", err)
			}
			prev[id] = updated
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		if _, err := tx.ExecContext(ctx, "DELETE FROM meetings"); err != nil {
			return fmt.Errorf("clearing snapshot: %w", err)
		}

		for _, m := range meetings {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO meetings (
					id, title, start_time, end_time, attendants, location, hangout_link, description, updated
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				m.ID, m.Title, m.Start.UTC(), m.End.UTC(),
				joinAttendants(m.Attendants), m.Location, m.HangoutLink, m.Description, m.Updated,
			)
			if err != nil {
				return fmt.Errorf("inserting meeting %s: %w", m.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return prev, nil
}

// Count returns the number of meetings in the current snapshot.
func (r *MeetingRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM meetings").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting meetings: %w", err)
	}
	return n, nil
}

func (r *MeetingRepository) list(ctx context.Context, query string, args ...any) ([]models.Meeting, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying meetings: %w", err)
	}
	defer rows.Close()

	var meetings []models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}
		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}

func scanMeeting(scan func(dest ...any) error) (models.Meeting, error) {
	var m models.Meeting
	var attendants string

	err := scan(
		&m.ID, &m.Title, &m.Start, &m.End,
		&attendants, &m.Location, &m.HangoutLink, &m.Description, &m.Updated,
	)
	if err != nil {
		return models.Meeting{}, err
	}

	m.Start = m.Start.UTC()
	m.End = m.End.UTC()
	m.Attendants = splitAttendants(attendants)
	return m, nil
}

func joinAttendants(attendants []string) string {
	return strings.Join(attendants, ",")
}

func splitAttendants(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
