// Package model defines the financial record produced for one filing and
// the identity metadata that accompanies it.
package model

import (
	"fmt"
	"time"
)

// Identity carries the caller-supplied fields identifying one filing.
// Nothing in it is derived from document content.
type Identity struct {
	SecCode   string
	FilerName string
	DocID     string
	PeriodEnd string
}

// FinancialRecord is the flat output for one securities report. Optional
// metrics are pointers: nil means the value could not be resolved, while a
// zero value is a real figure (a debt-free company reports debt = 0). The
// JSON field names are the tool's long-standing output contract; every key
// appears on every record, null when missing.
type FinancialRecord struct {
	SecCode   string `json:"secCode"`
	FilerName string `json:"filerName"`
	DocID     string `json:"docID"`
	DocPDFURL string `json:"docPdfURL"`
	YahooURL  string `json:"yahooURL"`
	PeriodEnd string `json:"periodEnd"`

	Characteristic *string `json:"characteristic"`

	StockPrice           *float64 `json:"stockPrice"`
	NetSales             *float64 `json:"netSales"`
	Employees            *float64 `json:"employees"`
	OperatingIncome      *float64 `json:"operatingIncome"`
	OperatingIncomeRate  *float64 `json:"operatingIncomeRate"`
	Depreciation         *float64 `json:"depreciation"`
	EBITDA               *float64 `json:"ebitda"`
	EBITDAMargin         *float64 `json:"ebitdaMargin"`
	MarketCapitalization *float64 `json:"marketCapitalization"`
	PER                  *float64 `json:"per"`
	EV                   *float64 `json:"ev"`
	EVPerEBITDA          *float64 `json:"evPerEbitda"`
	PBR                  *float64 `json:"pbr"`
	BPS                  *float64 `json:"bps"`
	Equity               *float64 `json:"equity"`
	Debt                 *float64 `json:"debt"`
	OutstandingShares    *float64 `json:"outstandingShares"`
	NetIncome            *float64 `json:"netIncome"`
	EPS                  *float64 `json:"eps"`
	Cash                 *float64 `json:"cash"`

	RetrievedDate string `json:"retrievedDate"`
}

// NewRecord builds a record shell from caller identity: identity fields,
// the deterministic document URLs, the localized period label, and the
// retrieval date stamped from now. All metric fields start nil.
func NewRecord(id Identity, now time.Time) *FinancialRecord {
	return &FinancialRecord{
		SecCode:       id.SecCode,
		FilerName:     id.FilerName,
		DocID:         id.DocID,
		DocPDFURL:     fmt.Sprintf("https://disclosure2dl.edinet-fsa.go.jp/searchdocument/pdf/%s.pdf", id.DocID),
		YahooURL:      fmt.Sprintf("https://finance.yahoo.co.jp/quote/%s.T", id.SecCode),
		PeriodEnd:     FormatPeriodEnd(id.PeriodEnd),
		RetrievedDate: now.Format("2006-01-02"),
	}
}

// Warning reports a degradation during extraction: a metric that could not
// be resolved, or one filled by an approximation.
type Warning struct {
	Metric string `json:"metric"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return w.Metric + ": " + w.Reason
}
