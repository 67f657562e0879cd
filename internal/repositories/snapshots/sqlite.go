package snapshots

import (
	"context"
	"database/sql"
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
  slot       TEXT PRIMARY KEY,
  session_id TEXT NOT NULL DEFAULT '',
  saved_at   INTEGER NOT NULL,
  data       BLOB NOT NULL
)`

// SQLiteConfig holds the configuration for the SQLite repository
type SQLiteConfig struct {
	Path  string
	Clock clock.Clock
}

// Validate ensures all required fields are provided
func (c *SQLiteConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Path", c.Path, vb)
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

// SQLiteRepository persists snapshots in a local SQLite file
type SQLiteRepository struct {
	db    *sql.DB
	clock clock.Clock
}

var _ Repository = (*SQLiteRepository)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// NewSQLite opens the database file and creates the schema
func NewSQLite(ctx context.Context, cfg *SQLiteConfig) (*SQLiteRepository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	dsn := filepath.Clean(strings.TrimSpace(cfg.Path)) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite db")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to ping sqlite db")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &SQLiteRepository{db: db, clock: cfg.Clock}, nil
}

// Close closes the database handle
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Save upserts the slot
func (r *SQLiteRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	savedAt := fromMillis(toMillis(r.clock.Now()))
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (slot, session_id, saved_at, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   session_id = excluded.session_id,
		   saved_at = excluded.saved_at,
		   data = excluded.data`,
		input.Slot, input.SessionID, toMillis(savedAt), input.Data,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save slot %s", input.Slot)
	}

	return &SaveOutput{Summary: &Summary{
		Slot:      input.Slot,
		SessionID: input.SessionID,
		SavedAt:   savedAt,
		Size:      len(input.Data),
	}}, nil
}

// Load reads one slot
func (r *SQLiteRepository) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	rec := &Record{Slot: input.Slot}
	var savedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, saved_at, data FROM snapshots WHERE slot = ?`, input.Slot,
	).Scan(&rec.SessionID, &savedAt, &rec.Data)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundf("slot %s not found", input.Slot)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load slot %s", input.Slot)
	}
	rec.SavedAt = fromMillis(savedAt)

	return &LoadOutput{Record: rec}, nil
}

// List returns all slots, most recent first
func (r *SQLiteRepository) List(ctx context.Context, _ *ListInput) (*ListOutput, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slot, session_id, saved_at, length(data) FROM snapshots ORDER BY saved_at DESC, slot ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list slots")
	}
	defer rows.Close()

	summaries := []*Summary{}
	for rows.Next() {
		s := &Summary{}
		var savedAt int64
		if err := rows.Scan(&s.Slot, &s.SessionID, &savedAt, &s.Size); err != nil {
			return nil, errors.Wrap(err, "failed to scan slot")
		}
		s.SavedAt = fromMillis(savedAt)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list slots")
	}

	return &ListOutput{Summaries: summaries}, nil
}

// Delete removes one slot
func (r *SQLiteRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE slot = ?`, input.Slot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete slot %s", input.Slot)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete slot")
	}
	if n == 0 {
		return nil, errors.NotFoundf("slot %s not found", input.Slot)
	}

	return &DeleteOutput{}, nil
}
