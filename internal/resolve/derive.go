package resolve

import (
	"math"

	"github.com/kessan-lab/edinet-cli/internal/model"
)

// Derive fills the computable metrics that resolution left empty. Steps
// run once in a fixed order, so a value derived by an earlier step feeds
// the later ones; a value the document itself supplied is never
// overwritten. Results that come out NaN or infinite are discarded.
func Derive(rec *model.FinancialRecord) []model.Warning {
	var warnings []model.Warning

	// Operating income rate (%).
	if rec.OperatingIncomeRate == nil && rec.OperatingIncome != nil && positive(rec.NetSales) {
		setFinite(&rec.OperatingIncomeRate, *rec.OperatingIncome / *rec.NetSales * 100)
	}

	// EBITDA.
	if rec.EBITDA == nil && rec.OperatingIncome != nil && rec.Depreciation != nil {
		setFinite(&rec.EBITDA, *rec.OperatingIncome+*rec.Depreciation)
	}

	// EBITDA margin (%).
	if rec.EBITDAMargin == nil && rec.EBITDA != nil && positive(rec.NetSales) {
		setFinite(&rec.EBITDAMargin, *rec.EBITDA / *rec.NetSales * 100)
	}

	// Stock price from EPS x PER.
	if rec.StockPrice == nil && rec.EPS != nil && rec.PER != nil {
		setFinite(&rec.StockPrice, *rec.EPS * *rec.PER)
	}

	// Market capitalization from shares x price.
	if rec.MarketCapitalization == nil && rec.OutstandingShares != nil && rec.StockPrice != nil {
		setFinite(&rec.MarketCapitalization, *rec.OutstandingShares * *rec.StockPrice)
	}

	// PBR from price / BPS.
	if rec.PBR == nil && rec.StockPrice != nil && positive(rec.BPS) {
		setFinite(&rec.PBR, *rec.StockPrice / *rec.BPS)
	}

	// Enterprise value. All three terms are required: a missing debt or
	// cash figure leaves EV unknown rather than assumed zero.
	if rec.EV == nil && rec.MarketCapitalization != nil && rec.Debt != nil && rec.Cash != nil {
		setFinite(&rec.EV, *rec.MarketCapitalization+*rec.Debt-*rec.Cash)
	}

	// EV/EBITDA.
	if rec.EVPerEBITDA == nil && rec.EV != nil && positive(rec.EBITDA) {
		setFinite(&rec.EVPerEBITDA, *rec.EV / *rec.EBITDA)
	}

	// EPS from net income / shares; operating income stands in for missing
	// net income at a 0.7 haircut, flagged as an approximation.
	if rec.EPS == nil && positive(rec.OutstandingShares) {
		switch {
		case rec.NetIncome != nil:
			setFinite(&rec.EPS, *rec.NetIncome / *rec.OutstandingShares)
		case rec.OperatingIncome != nil:
			if setFinite(&rec.EPS, *rec.OperatingIncome*0.7 / *rec.OutstandingShares) {
				warnings = append(warnings, model.Warning{
					Metric: string(MetricEPS),
					Reason: "approximated from operating income x 0.7",
				})
			}
		}
	}

	// PER from price / EPS.
	if rec.PER == nil && rec.StockPrice != nil && positive(rec.EPS) {
		setFinite(&rec.PER, *rec.StockPrice / *rec.EPS)
	}

	// BPS from equity / shares.
	if rec.BPS == nil && rec.Equity != nil && positive(rec.OutstandingShares) {
		setFinite(&rec.BPS, *rec.Equity / *rec.OutstandingShares)
	}

	return warnings
}

func positive(v *float64) bool { return v != nil && *v > 0 }

// setFinite stores v into dst unless it is NaN or infinite, reporting
// whether it stored.
func setFinite(dst **float64, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	*dst = &v
	return true
}
