package edinet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPayload = `{
	"results": [
		{"docID": "S100TR7I", "docTypeCode": "120", "secCode": "72030", "filerName": "トヨタ自動車株式会社", "periodEnd": "2025-03-31"},
		{"docID": "S100TXYZ", "docTypeCode": "120", "secCode": "", "filerName": "非上場ホールディングス株式会社", "periodEnd": "2025-03-31"},
		{"docID": "S100TAAA", "docTypeCode": "140", "secCode": "72030", "filerName": "トヨタ自動車株式会社", "periodEnd": ""},
		{"docID": "S100TBBB", "docTypeCode": "120", "secCode": "83060", "filerName": "株式会社三菱UFJフィナンシャル・グループ", "periodEnd": "2025-03-31"}
	]
}`

func newTestClient(baseURL string) *Client {
	return NewClient(Options{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		UserAgent:         "test-agent",
		MaxRetries:        3,
		RequestsPerSecond: 100,
	})
}

func TestListFilings_FiltersSecuritiesReports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents.json", r.URL.Path)
		assert.Equal(t, "2025-06-27", r.URL.Query().Get("date"))
		assert.Equal(t, "2", r.URL.Query().Get("type"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(listingPayload))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	filings, err := c.ListFilings(context.Background(), "2025-06-27")
	require.NoError(t, err)

	// The unlisted filer and the amendment (docTypeCode 140) drop out.
	require.Len(t, filings, 2)
	assert.Equal(t, "S100TR7I", filings[0].DocID)
	assert.Equal(t, "72030", filings[0].SecCode)
	assert.Equal(t, "トヨタ自動車株式会社", filings[0].FilerName)
	assert.Equal(t, "2025-03-31", filings[0].PeriodEnd)
	assert.Equal(t, "S100TBBB", filings[1].DocID)
}

func TestListFilings_SendsSubscriptionKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("Subscription-Key"))
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	filings, err := c.ListFilings(context.Background(), "2025-06-27")
	require.NoError(t, err)
	assert.Empty(t, filings)
}

func TestListFilings_NoKeyOmitsParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["Subscription-Key"]
		assert.False(t, present)
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, RequestsPerSecond: 100})
	_, err := c.ListFilings(context.Background(), "2025-06-27")
	require.NoError(t, err)
}

func TestListFilings_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ListFilings(context.Background(), "2025-06-27")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode documents listing")
}

func TestDownloadArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/S100TR7I", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("type"))
		w.Write([]byte("zip bytes here"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	data, err := c.DownloadArchive(context.Background(), "S100TR7I")
	require.NoError(t, err)
	assert.Equal(t, "zip bytes here", string(data))
}

func TestDownloadArchive_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.DownloadArchive(context.Background(), "S100MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestRetryOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ListFilings(context.Background(), "2025-06-27")
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Options{
		BaseURL:           srv.URL,
		MaxRetries:        2,
		RequestsPerSecond: 100,
	})
	_, err := c.ListFilings(context.Background(), "2025-06-27")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
}

func TestListFilings_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListFilings(ctx, "2025-06-27")
	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, defaultBaseURL, c.opts.BaseURL)
	assert.Equal(t, "edinet-cli/1.0", c.opts.UserAgent)
	assert.Equal(t, 3, c.opts.MaxRetries)
	assert.InDelta(t, 1.0, c.opts.RequestsPerSecond, 0.001)
	assert.InDelta(t, 1.0, float64(c.limiter.Limit()), 0.001)
	assert.Equal(t, downloadTimeout, c.opts.Timeout)
}

func TestIsSecuritiesReport(t *testing.T) {
	assert.True(t, Filing{DocTypeCode: "120", SecCode: "72030"}.IsSecuritiesReport())
	assert.False(t, Filing{DocTypeCode: "120", SecCode: ""}.IsSecuritiesReport())
	assert.False(t, Filing{DocTypeCode: "140", SecCode: "72030"}.IsSecuritiesReport())
	assert.False(t, Filing{DocTypeCode: "030", SecCode: "72030"}.IsSecuritiesReport())
}
