package edinet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createDirectoryXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("listings")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "exchanges.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestExchangeDirectory_Suffix(t *testing.T) {
	path := createDirectoryXLSX(t, [][]string{
		{"コード", "市場"},
		{"7950", "N"},
		{"8398", "F"},
		{"1449", "S"},
	})

	d := NewExchangeDirectory(path)
	require.NoError(t, d.Load())

	assert.Equal(t, "N", d.Suffix("7950"))
	assert.Equal(t, "F", d.Suffix("8398"))
	assert.Equal(t, "S", d.Suffix("1449"))
	// Anything not in the sheet is a Tokyo listing.
	assert.Equal(t, "T", d.Suffix("7203"))
}

func TestExchangeDirectory_NormalizesCodesAndCase(t *testing.T) {
	path := createDirectoryXLSX(t, [][]string{
		{"コード", "市場"},
		{"79500", "n"},
	})

	d := NewExchangeDirectory(path)
	assert.Equal(t, "N", d.Suffix("7950"))
}

func TestExchangeDirectory_SkipsBlankAndShortRows(t *testing.T) {
	path := createDirectoryXLSX(t, [][]string{
		{"コード", "市場"},
		{"7950"},
		{"", "N"},
		{"8398", ""},
		{"1449", "S"},
	})

	d := NewExchangeDirectory(path)
	require.NoError(t, d.Load())
	assert.Equal(t, "T", d.Suffix("7950"))
	assert.Equal(t, "T", d.Suffix("8398"))
	assert.Equal(t, "S", d.Suffix("1449"))
}

func TestExchangeDirectory_QuoteURL(t *testing.T) {
	path := createDirectoryXLSX(t, [][]string{
		{"コード", "市場"},
		{"8398", "F"},
	})

	d := NewExchangeDirectory(path)
	assert.Equal(t, "https://finance.yahoo.co.jp/quote/7203.T", d.QuoteURL("7203"))
	assert.Equal(t, "https://finance.yahoo.co.jp/quote/8398.F", d.QuoteURL("8398"))
}

func TestExchangeDirectory_EmptyPath(t *testing.T) {
	d := NewExchangeDirectory("")
	require.NoError(t, d.Load())
	assert.Equal(t, "T", d.Suffix("7203"))
}

func TestExchangeDirectory_MissingFile(t *testing.T) {
	d := NewExchangeDirectory(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, d.Load())
	// Lookups still answer with the Tokyo default.
	assert.Equal(t, "T", d.Suffix("7950"))
}
