// Package audit records migration attempts to an optional Postgres-backed
// history table, the way cmd/distri-checkupstream records upstream-version
// checks: a prepared INSERT ... ON CONFLICT statement per write, no-op when
// no DSN is configured.
package audit

import (
	"database/sql"
	"time"

	// PostgreSQL driver for database/sql:
	_ "github.com/lib/pq"

	"github.com/google/uuid"

	"github.com/distr1/archmigrate/internal/order"
)

// Log records migration transaction outcomes to Postgres; a nil *Log (as
// returned by Open with an empty DSN) is a valid no-op receiver so callers
// never need to branch on whether auditing is enabled.
type Log struct {
	db        *sql.DB
	recordRun *sql.Stmt
}

// Open connects to dsn and ensures the migration_runs table exists. An
// empty dsn disables auditing: Open returns (nil, nil) and every method on
// *Log becomes a no-op.
func Open(dsn string) (*Log, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS migration_runs (
	txn_id     uuid PRIMARY KEY,
	source     text NOT NULL,
	arch       text NOT NULL,
	accepted   boolean NOT NULL,
	recorded_at timestamptz NOT NULL
)`); err != nil {
		db.Close()
		return nil, err
	}
	stmt, err := db.Prepare(`
INSERT INTO migration_runs (txn_id, source, arch, accepted, recorded_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (txn_id) DO NOTHING
`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Log{db: db, recordRun: stmt}, nil
}

// RecordGroup logs one accepted or rejected order.Group attempt under txnID
// (typically the internal/txn.Transaction's own uuid.UUID).
func (l *Log) RecordGroup(txnID uuid.UUID, g order.Group, accepted bool) error {
	if l == nil {
		return nil
	}
	_, err := l.recordRun.Exec(txnID, g.Item.Name, g.Item.Arch, accepted, time.Now())
	return err
}

// Close releases the underlying database connection; a no-op on a nil Log.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}
