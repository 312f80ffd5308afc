package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kessan-lab/edinet-cli/internal/model"
)

// JSONStore writes one pretty-printed JSON array per fetch date:
// {dir}/{date}.json, two-space indent, UTF-8. Every key appears on every
// record, null when the metric is missing.
type JSONStore struct {
	dir string
}

// NewJSON builds a JSONStore rooted at dir.
func NewJSON(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

// Path returns the output file for a fetch date.
func (s *JSONStore) Path(date string) string {
	return filepath.Join(s.dir, date+".json")
}

// Migrate creates the output directory.
func (s *JSONStore) Migrate(ctx context.Context) error {
	return eris.Wrapf(os.MkdirAll(s.dir, 0o755), "store: create output dir %s", s.dir)
}

func (s *JSONStore) Close() error { return nil }

// SaveRecords replaces the date's file with the batch. A batch is the
// whole day's output, so the rewrite is the upsert.
func (s *JSONStore) SaveRecords(ctx context.Context, date string, records []*model.FinancialRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrapf(err, "store: create output dir %s", s.dir)
	}
	if records == nil {
		records = []*model.FinancialRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal records")
	}

	path := s.Path(date)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "store: write %s", path)
	}
	zap.L().Info("wrote records",
		zap.String("path", path),
		zap.Int("count", len(records)),
	)
	return nil
}

// ListRecords reads the date's file back. A missing file is an empty day,
// not an error.
func (s *JSONStore) ListRecords(ctx context.Context, date string) ([]*model.FinancialRecord, error) {
	data, err := os.ReadFile(s.Path(date))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: read %s", s.Path(date))
	}

	var records []*model.FinancialRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "store: parse %s", s.Path(date))
	}
	return records, nil
}
