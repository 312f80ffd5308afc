// Package store persists extracted financial records. Three drivers share
// one interface: a JSON file per fetch date (the default, and the tool's
// long-standing output contract), SQLite for local incremental runs, and
// Postgres for shared deployments.
package store

import (
	"context"

	"github.com/kessan-lab/edinet-cli/internal/model"
)

// Store is the persistence interface for extracted records. Batches are
// keyed by fetch date (the date passed to the EDINET listing call) and
// upserted by document ID, so re-running a date never duplicates rows.
type Store interface {
	SaveRecords(ctx context.Context, date string, records []*model.FinancialRecord) error
	ListRecords(ctx context.Context, date string) ([]*model.FinancialRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}
