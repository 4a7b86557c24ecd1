package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded by the viewer.
const (
	KindCrossedArms = "crossed-arms"
	KindCalibration = "calibration"
	KindSession     = "session"
	KindGesture     = "gesture"
)

// DefaultListLimit caps List results when no limit is given.
const DefaultListLimit = 100

// Event is a recorded pose or tracking event.
type Event struct {
	ID        string
	User      int
	Kind      string
	Name      string
	X         float64 // real-world position
	Y         float64
	ScreenX   float64
	ScreenY   float64
	Mode      string
	CreatedAt time.Time
}

// EventRepository provides access to recorded events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

const eventColumns = `id, user_id, kind, name, x, y, screen_x, screen_y, mode, created_at`

// Create inserts a new event, assigning an ID and creation time if they are
// unset. Times are stored in UTC.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO pose_events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.User, e.Kind, e.Name, e.X, e.Y, e.ScreenX, e.ScreenY, e.Mode, e.CreatedAt,
	)
	return err
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT `+eventColumns+` FROM pose_events WHERE id = ?`, id,
	).Scan(&e.ID, &e.User, &e.Kind, &e.Name, &e.X, &e.Y, &e.ScreenX, &e.ScreenY, &e.Mode, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns the most recent events, newest first.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return r.query(
		`SELECT `+eventColumns+` FROM pose_events ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
}

// ListByUser returns the most recent events of one user, newest first.
func (r *EventRepository) ListByUser(user int, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return r.query(
		`SELECT `+eventColumns+` FROM pose_events WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		user, limit,
	)
}

// Count returns the number of stored events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM pose_events`).Scan(&n)
	return n, err
}

// DeleteBefore removes events created before t and returns how many were
// deleted.
func (r *EventRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM pose_events WHERE created_at < ?`, t.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *EventRepository) query(q string, args ...any) ([]*Event, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.User, &e.Kind, &e.Name, &e.X, &e.Y, &e.ScreenX, &e.ScreenY, &e.Mode, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
