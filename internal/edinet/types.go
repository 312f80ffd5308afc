package edinet

// Filing is one entry from the daily documents listing. Field names track
// the EDINET v2 JSON payload.
type Filing struct {
	DocID       string `json:"docID"`
	DocTypeCode string `json:"docTypeCode"`
	SecCode     string `json:"secCode"`
	FilerName   string `json:"filerName"`
	PeriodEnd   string `json:"periodEnd"`
}

// IsSecuritiesReport reports whether the filing is an annual securities
// report from a listed company. Everything else in the daily feed (large
// shareholding reports, amendments, unlisted filers) is skipped.
func (f Filing) IsSecuritiesReport() bool {
	return f.DocTypeCode == docTypeSecuritiesReport && f.SecCode != ""
}

type documentsResponse struct {
	Results []Filing `json:"results"`
}
