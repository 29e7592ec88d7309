package rundown

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository persists rundown documents as fetched, so the engine can be
// restarted from the last stored version.
type Repository interface {
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]Summary, error)
	Save(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id string) error
}

// Summary is a stored show without its tree.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves a show document by id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Document, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM shows WHERE id = ?`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrShowNotFound, id)
		}
		return nil, fmt.Errorf("querying show: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: stored document %s: %w", ErrInvalidShow, id, err)
	}
	return &doc, nil
}

// List returns all stored shows ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, item_count, created_at, updated_at FROM shows ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying shows: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s                    Summary
			createdAt, updatedAt string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Items, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning show: %w", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // written by Save in RFC3339
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // written by Save in RFC3339
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shows: %w", err)
	}
	return out, nil
}

// Save validates and stores a document, replacing any previous version
// with the same id.
func (r *SQLiteRepository) Save(ctx context.Context, doc *Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidShow)
	}
	show, err := Parse(doc)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO shows (id, name, document, item_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			item_count = excluded.item_count,
			updated_at = excluded.updated_at`,
		doc.ID, doc.Name, string(raw), Build(show).Len(), now, now,
	)
	if err != nil {
		return fmt.Errorf("storing show: %w", err)
	}
	return nil
}

// Delete removes a stored show.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting show: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrShowNotFound, id)
	}
	return nil
}
