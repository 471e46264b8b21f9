package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matt-steen/review-tracker/pkg/dates"

	// use the sqlite db driver.
	_ "github.com/mattn/go-sqlite3"
)

//go:embed base.sql
var baseSQL string

// Store persists the document to a sqlite file. Load returns a normalized
// document (seeding one on first run); Save replaces the whole document in a
// single transaction. The scheduler itself never touches the store: callers
// load once, apply operations, and re-persist the result.
type Store struct {
	conn *sql.DB
}

// Open connects to the sqlite database at the given filename and initializes
// the schema if it isn't there yet.
func Open(ctx context.Context, filename string) (*Store, error) {
	conn, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("error connecting to sqlite db at %s: %w", filename, err)
	}

	if _, err := conn.ExecContext(ctx, baseSQL); err != nil {
		conn.Close()

		return nil, fmt.Errorf("error running base sql: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Load reads the full document. A database with no interval sets counts as
// first run: the seed document is written and returned. The result is always
// normalized.
func (s *Store) Load(ctx context.Context) (Document, error) {
	sets, err := s.loadIntervalSets(ctx)
	if err != nil {
		return Document{}, err
	}

	if len(sets) == 0 {
		doc := Normalize(Seed())
		if err := s.Save(ctx, doc); err != nil {
			return Document{}, err
		}

		return doc, nil
	}

	items, err := s.loadItems(ctx)
	if err != nil {
		return Document{}, err
	}

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return Document{}, err
	}

	return Normalize(Document{IntervalSets: sets, Items: items, Sessions: sessions}), nil
}

// Save replaces the stored document with doc. The delete-and-rewrite runs in
// one transaction so a reader never sees a partial document.
func (s *Store) Save(ctx context.Context, doc Document) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting save transaction: %w", err)
	}

	// rollback is a no-op once the transaction commits
	defer tx.Rollback()

	for _, table := range []string{"interval_set", "item", "session"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	for pos, set := range doc.IntervalSets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO interval_set (id, name, days, is_default, created_at, position)
			     VALUES ($1, $2, $3, $4, $5, $6)`,
			set.ID, set.Name, joinDays(set.Days), boolToInt(set.IsDefault), string(set.CreatedAt), pos,
		)
		if err != nil {
			return fmt.Errorf("error saving interval set %s: %w", set.Name, err)
		}
	}

	for pos, it := range doc.Items {
		var undoStage sql.NullInt64

		var undoNextDue, undoLastDone sql.NullString

		if it.Undo != nil {
			undoStage = sql.NullInt64{Int64: int64(it.Undo.Stage), Valid: true}
			undoNextDue = sql.NullString{String: string(it.Undo.NextDue), Valid: true}
			undoLastDone = sql.NullString{String: string(it.Undo.LastDone), Valid: true}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO item (id, title, tags, stage, next_due, last_done, created_at, interval_set_id,
			                   undo_stage, undo_next_due, undo_last_done, priority, target_minutes, notes, position)
			     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			it.ID, it.Title, strings.Join(it.Tags, ","), it.Stage, string(it.NextDue), string(it.LastDone),
			string(it.CreatedAt), it.IntervalSetID, undoStage, undoNextDue, undoLastDone,
			it.Priority, it.TargetMinutes, it.Notes, pos,
		)
		if err != nil {
			return fmt.Errorf("error saving item '%s': %w", it.Title, err)
		}
	}

	for _, sess := range doc.Sessions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session (id, item_id, mode, planned_minutes, actual_seconds, started_at, ended_at, day)
			     VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sess.ID, sess.ItemID, sess.Mode, sess.PlannedMinutes, sess.ActualSeconds,
			sess.StartedAt.UTC().Format(time.RFC3339), sess.EndedAt.UTC().Format(time.RFC3339), string(sess.Date),
		)
		if err != nil {
			return fmt.Errorf("error saving session %s: %w", sess.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing save: %w", err)
	}

	return nil
}

func (s *Store) loadIntervalSets(ctx context.Context) ([]IntervalSet, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, days, is_default, created_at FROM interval_set ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("error loading interval sets: %w", err)
	}

	defer rows.Close()

	var sets []IntervalSet

	for rows.Next() {
		var set IntervalSet

		var days string

		var isDefault int

		var createdAt string

		if err := rows.Scan(&set.ID, &set.Name, &days, &isDefault, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning interval set: %w", err)
		}

		set.Days = splitDays(days)
		set.IsDefault = isDefault == 1
		set.CreatedAt = dates.Date(createdAt)
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning interval sets: %w", err)
	}

	return sets, nil
}

func (s *Store) loadItems(ctx context.Context) ([]Item, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, title, tags, stage, next_due, last_done, created_at, interval_set_id,
		        undo_stage, undo_next_due, undo_last_done, priority, target_minutes, notes
		   FROM item ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("error loading items: %w", err)
	}

	defer rows.Close()

	var items []Item

	for rows.Next() {
		var it Item

		var tags, nextDue, lastDone, createdAt string

		var undoStage sql.NullInt64

		var undoNextDue, undoLastDone sql.NullString

		err := rows.Scan(&it.ID, &it.Title, &tags, &it.Stage, &nextDue, &lastDone, &createdAt,
			&it.IntervalSetID, &undoStage, &undoNextDue, &undoLastDone,
			&it.Priority, &it.TargetMinutes, &it.Notes)
		if err != nil {
			return nil, fmt.Errorf("error scanning item: %w", err)
		}

		if tags != "" {
			it.Tags = strings.Split(tags, ",")
		}

		it.NextDue = dates.Date(nextDue)
		it.LastDone = dates.Date(lastDone)
		it.CreatedAt = dates.Date(createdAt)

		if undoStage.Valid {
			it.Undo = &UndoSnapshot{
				Stage:    int(undoStage.Int64),
				NextDue:  dates.Date(undoNextDue.String),
				LastDone: dates.Date(undoLastDone.String),
			}
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning items: %w", err)
	}

	return items, nil
}

func (s *Store) loadSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, item_id, mode, planned_minutes, actual_seconds, started_at, ended_at, day
		   FROM session ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("error loading sessions: %w", err)
	}

	defer rows.Close()

	var sessions []Session

	for rows.Next() {
		var sess Session

		var startedAt, endedAt, day string

		err := rows.Scan(&sess.ID, &sess.ItemID, &sess.Mode, &sess.PlannedMinutes,
			&sess.ActualSeconds, &startedAt, &endedAt, &day)
		if err != nil {
			return nil, fmt.Errorf("error scanning session: %w", err)
		}

		if parsed, err := time.Parse(time.RFC3339, startedAt); err == nil {
			sess.StartedAt = parsed
		}

		if parsed, err := time.Parse(time.RFC3339, endedAt); err == nil {
			sess.EndedAt = parsed
		}

		sess.Date = dates.Date(day)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning sessions: %w", err)
	}

	return sessions, nil
}

func joinDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}

	return strings.Join(parts, ",")
}

func splitDays(s string) []int {
	if s == "" {
		return []int{}
	}

	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))

	for _, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			days = append(days, n)
		}
	}

	return days
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
