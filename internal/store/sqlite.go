package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kessan-lab/edinet-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	doc_id     TEXT NOT NULL UNIQUE,
	fetch_date TEXT NOT NULL,
	sec_code   TEXT NOT NULL,
	filer_name TEXT NOT NULL,
	record     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_records_fetch_date ON records(fetch_date);
CREATE INDEX IF NOT EXISTS idx_records_sec_code ON records(sec_code);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRecords upserts the batch by document ID inside one transaction.
func (s *SQLiteStore) SaveRecords(ctx context.Context, date string, records []*model.FinancialRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, rec := range records {
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal record %s", rec.DocID)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (id, doc_id, fetch_date, sec_code, filer_name, record, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(doc_id) DO UPDATE SET
			   fetch_date = excluded.fetch_date,
			   sec_code   = excluded.sec_code,
			   filer_name = excluded.filer_name,
			   record     = excluded.record,
			   updated_at = excluded.updated_at`,
			uuid.New().String(), rec.DocID, date, rec.SecCode, rec.FilerName, string(recordJSON), now, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert record %s", rec.DocID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

// ListRecords returns the date's records ordered by securities code.
func (s *SQLiteStore) ListRecords(ctx context.Context, date string) ([]*model.FinancialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM records WHERE fetch_date = ? ORDER BY sec_code`,
		date,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []*model.FinancialRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		rec := &model.FinancialRecord{}
		if err := json.Unmarshal([]byte(recordJSON), rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}
