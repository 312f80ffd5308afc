package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kessan-lab/edinet-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_SaveAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	in := testRecord("7203", "S100TR7I", fp(45e12))
	in.EPS = fp(365.94)
	require.NoError(t, st.SaveRecords(ctx, "2025-06-27", []*model.FinancialRecord{in}))

	out, err := st.ListRecords(ctx, "2025-06-27")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "7203", out[0].SecCode)
	assert.Equal(t, "S100TR7I", out[0].DocID)
	assert.Equal(t, "テスト株式会社", out[0].FilerName)
	require.NotNil(t, out[0].NetSales)
	assert.InDelta(t, 45e12, *out[0].NetSales, 1)
	require.NotNil(t, out[0].EPS)
	assert.InDelta(t, 365.94, *out[0].EPS, 0.001)
	assert.Nil(t, out[0].Debt)
}

func TestSQLite_UpsertByDocID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRecords(ctx, "2025-06-27", []*model.FinancialRecord{
		testRecord("7203", "S100TR7I", fp(1e9)),
	}))
	// Same document fetched again: the row is replaced, not duplicated.
	require.NoError(t, st.SaveRecords(ctx, "2025-06-28", []*model.FinancialRecord{
		testRecord("7203", "S100TR7I", fp(2e9)),
	}))

	old, err := st.ListRecords(ctx, "2025-06-27")
	require.NoError(t, err)
	assert.Empty(t, old)

	out, err := st.ListRecords(ctx, "2025-06-28")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 2e9, *out[0].NetSales, 1)
}

func TestSQLite_ListOrdersBySecCode(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRecords(ctx, "2025-06-27", []*model.FinancialRecord{
		testRecord("9984", "S100TXYZ", nil),
		testRecord("7203", "S100TR7I", nil),
		testRecord("8306", "S100TBBB", nil),
	}))

	out, err := st.ListRecords(ctx, "2025-06-27")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "7203", out[0].SecCode)
	assert.Equal(t, "8306", out[1].SecCode)
	assert.Equal(t, "9984", out[2].SecCode)
}

func TestSQLite_ListUnknownDate(t *testing.T) {
	st := newTestSQLiteStore(t)

	out, err := st.ListRecords(context.Background(), "1999-01-01")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSQLite_EmptyBatch(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.SaveRecords(context.Background(), "2025-06-27", nil))
}
