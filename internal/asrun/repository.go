// Package asrun provides access to the as_run table, the persistent log of
// what actually went to air during each playout session.
package asrun

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/rundown-core/internal/automation"
)

// timeLayout is fixed-width so that lexical order equals time order.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Entry is one as-run log row.
type Entry struct {
	ID         string               `json:"id"`
	SessionID  string               `json:"session_id"`
	ShowID     string               `json:"show_id,omitempty"`
	Event      automation.EventType `json:"event"`
	ItemID     string               `json:"item_id,omitempty"`
	Title      string               `json:"title,omitempty"`
	Detail     string               `json:"detail,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// Filter controls which entries to return.
type Filter struct {
	SessionID string
	ShowID    string
	Event     string
	ItemID    string
	Since     time.Time // inclusive, zero means unbounded
	Until     time.Time // exclusive, zero means unbounded
	Limit     int       // default 100, max 1000
	Offset    int
}

// ListResult contains the paginated as-run results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for as-run log operations.
type Repository interface {
	Record(ctx context.Context, sessionID, showID string, ev automation.Event) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores the as-run log in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

var _ automation.Recorder = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a new as-run repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts one playout event. It implements automation.Recorder.
func (r *SQLiteRepository) Record(ctx context.Context, sessionID, showID string, ev automation.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO as_run (id, session_id, show_id, event, item_id, title, detail, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"run-"+uuid.NewString(), sessionID, showID, string(ev.Type),
		ev.ItemID, ev.Title, nullableString(ev.Detail),
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting as-run entry: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) { //nolint:gocognit,gocyclo // dynamic query builder
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 { //nolint:mnd // max page size for as-run queries
		filter.Limit = 1000
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.ShowID != "" {
		conditions = append(conditions, "show_id = ?")
		args = append(args, filter.ShowID)
	}
	if filter.Event != "" {
		conditions = append(conditions, "event = ?")
		args = append(args, filter.Event)
	}
	if filter.ItemID != "" {
		conditions = append(conditions, "item_id = ?")
		args = append(args, filter.ItemID)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	if !filter.Until.IsZero() {
		conditions = append(conditions, "occurred_at < ?")
		args = append(args, filter.Until.UTC().Format(timeLayout))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM as_run %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting as-run entries: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, session_id, show_id, event, item_id, title, detail, occurred_at FROM as_run %s ORDER BY occurred_at DESC, rowid DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying as-run entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var event, occurredAt string
		var detail sql.NullString

		if err := rows.Scan(&e.ID, &e.SessionID, &e.ShowID, &event,
			&e.ItemID, &e.Title, &detail, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning as-run entry: %w", err)
		}
		e.Event = automation.EventType(event)
		if detail.Valid {
			e.Detail = detail.String
		}

		t, err := time.Parse(timeLayout, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing as-run timestamp %q: %w", occurredAt, err)
		}
		e.OccurredAt = t

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating as-run entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
