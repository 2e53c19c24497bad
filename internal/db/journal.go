package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joeblew999/plat-tours/internal/service"
)

const journalSchema = `
CREATE SEQUENCE IF NOT EXISTS journal_seq;
CREATE TABLE IF NOT EXISTS journal (
	id          BIGINT DEFAULT nextval('journal_seq') PRIMARY KEY,
	at          TIMESTAMP NOT NULL,
	operation   VARCHAR NOT NULL,
	courier     BIGINT NOT NULL,
	outcome     VARCHAR NOT NULL,
	detail      VARCHAR NOT NULL,
	duration_ms BIGINT NOT NULL
);`

// Journal stores one row per mutation attempt.
type Journal struct {
	db *sql.DB
}

// NewJournal creates the journal table if needed.
func NewJournal(ctx context.Context, conn *sql.DB) (*Journal, error) {
	if _, err := conn.ExecContext(ctx, journalSchema); err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}
	return &Journal{db: conn}, nil
}

// Record appends an entry.
func (j *Journal) Record(ctx context.Context, e service.JournalEntry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO journal (at, operation, courier, outcome, detail, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		e.At, e.Operation, e.Courier, e.Outcome, e.Detail, e.DurationMS)
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Operation, err)
	}
	return nil
}

// Recent returns entries newest first, with the total row count.
func (j *Journal) Recent(ctx context.Context, limit, offset int) ([]service.JournalEntry, int, error) {
	var total int
	if err := j.db.QueryRowContext(ctx, `SELECT count(*) FROM journal`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count journal: %w", err)
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT at, operation, courier, outcome, detail, duration_ms FROM journal ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var out []service.JournalEntry
	for rows.Next() {
		var e service.JournalEntry
		if err := rows.Scan(&e.At, &e.Operation, &e.Courier, &e.Outcome, &e.Detail, &e.DurationMS); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Stats groups the journal by operation and outcome.
func (j *Journal) Stats(ctx context.Context) ([]service.JournalStat, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT operation, outcome, count(*), avg(duration_ms)
		FROM journal
		GROUP BY operation, outcome
		ORDER BY operation, outcome`)
	if err != nil {
		return nil, fmt.Errorf("journal stats: %w", err)
	}
	defer rows.Close()

	out := []service.JournalStat{}
	for rows.Next() {
		var s service.JournalStat
		if err := rows.Scan(&s.Operation, &s.Outcome, &s.Count, &s.AvgDurationMS); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
