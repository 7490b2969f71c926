// Package journal persists fault reports and system-state transitions to
// the SQLite journal table for later diagnosis.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/lightguard-core/internal/failsafe"
)

// EntryType distinguishes fault reports from state transitions.
type EntryType string

// EntryType constants.
const (
	EntryFault      EntryType = "FAULT"
	EntryTransition EntryType = "TRANSITION"
)

// Fixed-width UTC timestamps sort lexically in created_at.
const timeLayout = "2006-01-02T15:04:05.000Z"

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Entry is one journal row.
type Entry struct {
	ID        string            `json:"id"`
	VehicleID string            `json:"vehicle_id"`
	Tick      uint64            `json:"tick"`
	Type      EntryType         `json:"type"`
	Kind      failsafe.Kind     `json:"kind,omitempty"`
	Severity  failsafe.Severity `json:"severity,omitempty"`
	Message   string            `json:"message,omitempty"`
	Count     int               `json:"count,omitempty"`
	From      failsafe.State    `json:"from,omitempty"`
	To        failsafe.State    `json:"to,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// FromFault builds a journal entry for a fault raised on the given tick.
func FromFault(vehicleID string, tick uint64, f failsafe.Fault, at time.Time) Entry {
	return Entry{
		VehicleID: vehicleID,
		Tick:      tick,
		Type:      EntryFault,
		Kind:      f.Kind,
		Severity:  f.Severity,
		Message:   f.Message,
		Count:     f.Count,
		CreatedAt: at,
	}
}

// FromTransition builds a journal entry for a system-state change.
func FromTransition(vehicleID string, tick uint64, tr failsafe.Transition, at time.Time) Entry {
	return Entry{
		VehicleID: vehicleID,
		Tick:      tick,
		Type:      EntryTransition,
		Message:   tr.Reason,
		From:      tr.From,
		To:        tr.To,
		CreatedAt: at,
	}
}

// Filter controls which entries List returns. Zero fields match all.
type Filter struct {
	Type     EntryType
	Kind     failsafe.Kind
	Severity failsafe.Severity
	Since    time.Time
	Limit    int // default 50, max 500
	Offset   int
}

// ListResult is one page of entries, most recent first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the journal operations.
type Repository interface {
	Create(ctx context.Context, entries ...*Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores the journal in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a journal repository on a migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts entries in one transaction, in order. Missing IDs and
// timestamps are generated.
func (r *SQLiteRepository) Create(ctx context.Context, entries ...*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e.Type != EntryFault && e.Type != EntryTransition {
			return fmt.Errorf("%w: type %q", ErrInvalidEntry, e.Type)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting journal transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO journal (id, vehicle_id, tick, seq, entry_type, kind, severity, message, count, from_state, to_state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing journal insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if e.ID == "" {
			e.ID = "jnl-" + uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Millisecond)

		_, err := stmt.ExecContext(ctx,
			e.ID, e.VehicleID, int64(e.Tick), i, // #nosec G115 -- tick counts stay far below 2^63
			string(e.Type), string(e.Kind), string(e.Severity), e.Message, e.Count,
			string(e.From), string(e.To), e.CreatedAt.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("inserting journal entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing journal entries: %w", err)
	}
	return nil
}

// List returns entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Type != "" {
		conditions = append(conditions, "entry_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM journal " + where //nolint:gosec // WHERE built from parameterised conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting journal entries: %w", err)
	}

	query := `SELECT id, vehicle_id, tick, entry_type, kind, severity, message, count, from_state, to_state, created_at
		FROM journal ` + where + ` ORDER BY created_at DESC, tick DESC, seq DESC LIMIT ? OFFSET ?` //nolint:gosec // as above
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var tick int64
		var createdAt string
		if err := rows.Scan(&e.ID, &e.VehicleID, &tick, &e.Type, &e.Kind, &e.Severity,
			&e.Message, &e.Count, &e.From, &e.To, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.Tick = uint64(tick) // #nosec G115 -- written from a uint64
		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", createdAt, err)
		}
		e.CreatedAt = t
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
