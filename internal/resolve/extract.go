// Package resolve turns a parsed XBRL instance into a financial record:
// pattern-based tag resolution with context tiering, a scored fallback
// scan for metrics the known vocabulary misses, and derivation of the
// computable metrics.
package resolve

import (
	"time"

	"go.uber.org/zap"

	"github.com/kessan-lab/edinet-cli/internal/model"
	"github.com/kessan-lab/edinet-cli/internal/text"
	"github.com/kessan-lab/edinet-cli/internal/xbrl"
)

// Extractor resolves and derives every configured metric for a document.
// Safe for concurrent use once built.
type Extractor struct {
	specs *SpecSet
	now   func() time.Time
}

// New builds an Extractor over the given spec set, or over the builtin
// table when specs is nil.
func New(specs *SpecSet) *Extractor {
	if specs == nil {
		specs = DefaultSpecs()
	}
	return &Extractor{specs: specs, now: time.Now}
}

// Metrics returns the configured metric identifiers in extraction order.
func (e *Extractor) Metrics() []MetricID {
	return e.specs.IDs()
}

// Extract resolves every metric for one parsed document, derives the
// computed ones, and reports warnings: one per approximation applied and
// one per table metric that stayed empty.
func (e *Extractor) Extract(doc *xbrl.Document, id model.Identity) (*model.FinancialRecord, []model.Warning) {
	rec := model.NewRecord(id, e.now())

	var unresolved []MetricSpec
	for _, spec := range e.specs.All() {
		hit, ok := resolvePatterns(doc, spec)
		if !ok {
			unresolved = append(unresolved, spec)
			continue
		}
		e.assign(rec, spec, hit)
	}

	for metricID, cand := range fallbackSearch(doc, unresolved) {
		spec, ok := e.specs.Get(metricID)
		if !ok {
			continue
		}
		e.assign(rec, spec, hitFromCandidate(cand))
	}

	warnings := Derive(rec)
	warnings = append(warnings, e.missing(rec)...)
	return rec, warnings
}

// Resolve runs the resolution chain for a single metric and reports the
// winning observation, or ok=false when nothing usable was found.
func (e *Extractor) Resolve(doc *xbrl.Document, id MetricID) (Hit, bool) {
	spec, ok := e.specs.Get(id)
	if !ok {
		return Hit{}, false
	}
	if hit, ok := resolvePatterns(doc, spec); ok {
		return hit, true
	}
	for _, cand := range fallbackSearch(doc, []MetricSpec{spec}) {
		return hitFromCandidate(cand), true
	}
	return Hit{}, false
}

// Candidates returns the scored fallback candidates for one metric, best
// first. The inspect command uses this to show why a value won.
func (e *Extractor) Candidates(doc *xbrl.Document, id MetricID) []Candidate {
	spec, ok := e.specs.Get(id)
	if !ok {
		return nil
	}
	return collectCandidates(doc, spec)
}

// assign stores a hit into its record field and traces the provenance.
func (e *Extractor) assign(rec *model.FinancialRecord, spec MetricSpec, hit Hit) {
	if spec.Kind == KindText {
		body := text.FirstSentence(hit.Text)
		rec.Characteristic = &body
	} else {
		v := hit.Value
		switch spec.ID {
		case MetricStockPrice:
			rec.StockPrice = &v
		case MetricNetSales:
			rec.NetSales = &v
		case MetricEmployees:
			rec.Employees = &v
		case MetricOperatingIncome:
			rec.OperatingIncome = &v
		case MetricDepreciation:
			rec.Depreciation = &v
		case MetricMarketCap:
			rec.MarketCapitalization = &v
		case MetricPER:
			rec.PER = &v
		case MetricPBR:
			rec.PBR = &v
		case MetricEquity:
			rec.Equity = &v
		case MetricDebt:
			rec.Debt = &v
		case MetricOutstandingShares:
			rec.OutstandingShares = &v
		case MetricNetIncome:
			rec.NetIncome = &v
		case MetricEPS:
			rec.EPS = &v
		case MetricCash:
			rec.Cash = &v
		case MetricBPS:
			rec.BPS = &v
		}
	}

	zap.L().Debug("resolved metric",
		zap.String("metric", string(spec.ID)),
		zap.String("via", string(hit.Via)),
		zap.String("tag", hit.Fact.Name),
		zap.String("context", hit.Fact.ContextRef),
		zap.String("tier", hit.Tier.String()),
		zap.Int("score", hit.Score),
	)
}

// missing reports one warning per table metric still empty after
// derivation. Derived-only fields are implied by their inputs and carry no
// warning of their own.
func (e *Extractor) missing(rec *model.FinancialRecord) []model.Warning {
	var out []model.Warning
	for _, id := range e.specs.IDs() {
		empty := false
		switch id {
		case MetricCharacteristic:
			empty = rec.Characteristic == nil
		case MetricStockPrice:
			empty = rec.StockPrice == nil
		case MetricNetSales:
			empty = rec.NetSales == nil
		case MetricEmployees:
			empty = rec.Employees == nil
		case MetricOperatingIncome:
			empty = rec.OperatingIncome == nil
		case MetricDepreciation:
			empty = rec.Depreciation == nil
		case MetricMarketCap:
			empty = rec.MarketCapitalization == nil
		case MetricPER:
			empty = rec.PER == nil
		case MetricPBR:
			empty = rec.PBR == nil
		case MetricEquity:
			empty = rec.Equity == nil
		case MetricDebt:
			empty = rec.Debt == nil
		case MetricOutstandingShares:
			empty = rec.OutstandingShares == nil
		case MetricNetIncome:
			empty = rec.NetIncome == nil
		case MetricEPS:
			empty = rec.EPS == nil
		case MetricCash:
			empty = rec.Cash == nil
		case MetricBPS:
			empty = rec.BPS == nil
		}
		if empty {
			out = append(out, model.Warning{Metric: string(id), Reason: "not found in document"})
		}
	}
	return out
}

func hitFromCandidate(c Candidate) Hit {
	return Hit{
		Value: c.Value,
		Text:  c.Text,
		Fact:  xbrl.Fact{Name: c.TagName, ContextRef: c.ContextRef},
		Tier:  c.Tier,
		Via:   PathFallback,
		Score: c.Score,
	}
}
