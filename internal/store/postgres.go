package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kessan-lab/edinet-cli/internal/model"
)

// Pool is the slice of pgxpool.Pool the store uses. pgxmock satisfies it,
// which keeps the Postgres paths testable without a server.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"upsert_record": `INSERT INTO records (id, doc_id, fetch_date, sec_code, filer_name, record, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	 ON CONFLICT (doc_id) DO UPDATE SET
	   fetch_date = $3, sec_code = $4, filer_name = $5, record = $6, updated_at = $8`,
	"list_records": `SELECT record FROM records WHERE fetch_date = $1 ORDER BY sec_code`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	doc_id     TEXT NOT NULL UNIQUE,
	fetch_date TEXT NOT NULL,
	sec_code   TEXT NOT NULL,
	filer_name TEXT NOT NULL,
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_records_fetch_date ON records(fetch_date);
CREATE INDEX IF NOT EXISTS idx_records_sec_code ON records(sec_code);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveRecords upserts the batch by document ID.
func (s *PostgresStore) SaveRecords(ctx context.Context, date string, records []*model.FinancialRecord) error {
	now := time.Now().UTC()
	for _, rec := range records {
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal record %s", rec.DocID)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO records (id, doc_id, fetch_date, sec_code, filer_name, record, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (doc_id) DO UPDATE SET
			   fetch_date = $3, sec_code = $4, filer_name = $5, record = $6, updated_at = $8`,
			uuid.New().String(), rec.DocID, date, rec.SecCode, rec.FilerName, recordJSON, now, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert record %s", rec.DocID)
		}
	}
	return nil
}

// ListRecords returns the date's records ordered by securities code.
func (s *PostgresStore) ListRecords(ctx context.Context, date string) ([]*model.FinancialRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM records WHERE fetch_date = $1 ORDER BY sec_code`,
		date,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []*model.FinancialRecord
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		rec := &model.FinancialRecord{}
		if err := json.Unmarshal(recordJSON, rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}
