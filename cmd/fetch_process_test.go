package main

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kessan-lab/edinet-cli/internal/edinet"
	"github.com/kessan-lab/edinet-cli/internal/resolve"
)

const toyotaInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance">
  <jppfs:NetSales contextRef="CurrentYearDuration_ConsolidatedMember">10,000,000,000</jppfs:NetSales>
  <jpcrp:NumberOfEmployees contextRef="CurrentYearInstant">37,000</jpcrp:NumberOfEmployees>
</xbrli:xbrl>`

const bankInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance">
  <jppfs:NetSales contextRef="CurrentYearDuration_ConsolidatedMember">5,000,000,000</jppfs:NetSales>
</xbrli:xbrl>`

// writeArchive builds an in-memory EDINET archive around one instance
// document, placed where the selector expects it.
func writeArchive(t *testing.T, instance string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("XBRL/PublicDoc/jpcrp030000-asr-001_E02144-000_2025-03-31_01_2025-06-27.xbrl")
	require.NoError(t, err)
	_, err = w.Write([]byte(instance))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// newArchiveServer serves pre-built archives by doc ID, 404 for the rest.
func newArchiveServer(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		docID := strings.TrimPrefix(r.URL.Path, "/documents/")
		data, ok := archives[docID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newProcessClient(baseURL string) *edinet.Client {
	return edinet.NewClient(edinet.Options{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		MaxRetries:        1,
		RequestsPerSecond: 100,
	})
}

func TestProcessFiling(t *testing.T) {
	srv := newArchiveServer(t, map[string][]byte{
		"S100TR7I": writeArchive(t, toyotaInstance),
	})
	client := newProcessClient(srv.URL)

	filing := edinet.Filing{
		DocID:     "S100TR7I",
		SecCode:   "72030",
		FilerName: "トヨタ自動車株式会社",
		PeriodEnd: "2025-03-31",
	}

	rec, warnings, err := processFiling(context.Background(), client, resolve.New(nil), filing)
	require.NoError(t, err)

	assert.Equal(t, "7203", rec.SecCode)
	assert.Equal(t, "S100TR7I", rec.DocID)
	assert.Equal(t, "https://finance.yahoo.co.jp/quote/7203.T", rec.YahooURL)
	require.NotNil(t, rec.NetSales)
	assert.InDelta(t, 10_000_000_000.0, *rec.NetSales, 1e-9)

	// Most metrics are absent from the minimal instance.
	assert.NotEmpty(t, warnings)
	assert.Nil(t, rec.Equity)
}

func TestProcessFiling_DownloadError(t *testing.T) {
	srv := newArchiveServer(t, nil)
	client := newProcessClient(srv.URL)

	_, _, err := processFiling(context.Background(), client, resolve.New(nil), edinet.Filing{DocID: "S100GONE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestProcessFiling_BadArchive(t *testing.T) {
	srv := newArchiveServer(t, map[string][]byte{
		"S100TR7I": []byte("this is not a zip file"),
	})
	client := newProcessClient(srv.URL)

	_, _, err := processFiling(context.Background(), client, resolve.New(nil), edinet.Filing{DocID: "S100TR7I"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open archive")
}

func TestFetchAll_SkipsFailures(t *testing.T) {
	srv := newArchiveServer(t, map[string][]byte{
		"S100TR7I": writeArchive(t, toyotaInstance),
	})
	client := newProcessClient(srv.URL)

	filings := []edinet.Filing{
		{DocID: "S100TR7I", SecCode: "72030", FilerName: "トヨタ自動車株式会社", PeriodEnd: "2025-03-31"},
		{DocID: "S100GONE", SecCode: "99840", FilerName: "存在しない株式会社", PeriodEnd: "2025-03-31"},
	}

	records, err := fetchAll(context.Background(), client, resolve.New(nil), edinet.NewExchangeDirectory(""), filings, 2)
	require.NoError(t, err, "individual failures must not abort the batch")
	require.Len(t, records, 1)
	assert.Equal(t, "7203", records[0].SecCode)
}

func TestFetchAll_SortsBySecCode(t *testing.T) {
	srv := newArchiveServer(t, map[string][]byte{
		"S100TR7I": writeArchive(t, toyotaInstance),
		"S100TBBB": writeArchive(t, bankInstance),
	})
	client := newProcessClient(srv.URL)

	// Listed out of order on purpose.
	filings := []edinet.Filing{
		{DocID: "S100TR7I", SecCode: "72030", FilerName: "トヨタ自動車株式会社", PeriodEnd: "2025-03-31"},
		{DocID: "S100TBBB", SecCode: "83060", FilerName: "株式会社三菱UFJフィナンシャル・グループ", PeriodEnd: "2025-03-31"},
	}

	records, err := fetchAll(context.Background(), client, resolve.New(nil), edinet.NewExchangeDirectory(""), filings, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	codes := []string{records[0].SecCode, records[1].SecCode}
	assert.True(t, sort.StringsAreSorted(codes), "records should be sorted by sec code, got %v", codes)
	assert.Equal(t, "7203", records[0].SecCode)
	assert.Equal(t, "8306", records[1].SecCode)
}
