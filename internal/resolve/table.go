package resolve

import (
	"strings"

	"github.com/rotisserie/eris"
)

// MetricID names one target metric. The values double as the record's JSON
// field names and as the CLI/override-file identifiers.
type MetricID string

const (
	MetricCharacteristic    MetricID = "characteristic"
	MetricStockPrice        MetricID = "stockPrice"
	MetricNetSales          MetricID = "netSales"
	MetricEmployees         MetricID = "employees"
	MetricOperatingIncome   MetricID = "operatingIncome"
	MetricDepreciation      MetricID = "depreciation"
	MetricMarketCap         MetricID = "marketCapitalization"
	MetricPER               MetricID = "per"
	MetricPBR               MetricID = "pbr"
	MetricEquity            MetricID = "equity"
	MetricDebt              MetricID = "debt"
	MetricOutstandingShares MetricID = "outstandingShares"
	MetricNetIncome         MetricID = "netIncome"
	MetricEPS               MetricID = "eps"
	MetricCash              MetricID = "cash"
	MetricBPS               MetricID = "bps"
)

// Kind separates numeric metrics from narrative ones.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// Range bounds plausible values, both ends inclusive. For numeric metrics
// the bounds apply to the parsed value on every resolution path. For text
// metrics they bound the sanitized body length in runes during the
// fallback scan; the pattern path takes any non-empty body.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// MetricSpec is the full resolution recipe for one metric: the ordered
// known-tag identifiers, an optional substring tag group tried after them,
// the fallback keywords, the plausibility range, and the scoring table.
// Metrics without keywords are pattern-only and never enter the fallback
// scan.
type MetricSpec struct {
	ID          MetricID `yaml:"-"`
	Kind        Kind     `yaml:"-"`
	Patterns    []string `yaml:"patterns"`
	TagContains []string `yaml:"tag_contains"`
	Keywords    []string `yaml:"keywords"`
	Range       Range    `yaml:"range"`
	Weights     Weights  `yaml:"weights"`
}

// SpecSet is the read-only metric configuration handed to an Extractor.
// Build one with DefaultSpecs, optionally re-tuned through LoadOverrides.
type SpecSet struct {
	order []MetricID
	specs map[MetricID]MetricSpec
}

// Get returns the spec for id.
func (s *SpecSet) Get(id MetricID) (MetricSpec, bool) {
	spec, ok := s.specs[id]
	return spec, ok
}

// All returns every spec in extraction order.
func (s *SpecSet) All() []MetricSpec {
	out := make([]MetricSpec, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.specs[id])
	}
	return out
}

// IDs returns the metric identifiers in extraction order.
func (s *SpecSet) IDs() []MetricID {
	return append([]MetricID(nil), s.order...)
}

// Context weight shapes. Statement items inherit the consolidated-first
// emphasis; per-share figures weigh recency higher but still must rank the
// consolidated current-year combination strictly above either part alone.
var (
	statementContext = Weights{Consolidated: 25, ConsolidatedCurrent: 20, CurrentYear: 15}
	perShareContext  = Weights{Consolidated: 5, ConsolidatedCurrent: 20, CurrentYear: 20, Current: 15}
)

func statementWeights(w Weights) Weights {
	w.Consolidated = statementContext.Consolidated
	w.ConsolidatedCurrent = statementContext.ConsolidatedCurrent
	w.CurrentYear = statementContext.CurrentYear
	w.Current = statementContext.Current
	return w
}

func perShareWeights(w Weights) Weights {
	w.Consolidated = perShareContext.Consolidated
	w.ConsolidatedCurrent = perShareContext.ConsolidatedCurrent
	w.CurrentYear = perShareContext.CurrentYear
	w.Current = perShareContext.Current
	return w
}

// DefaultSpecs builds the builtin metric table. The identifier lists track
// the EDINET jpcrp/jppfs/jpigp vocabularies; the weight constants are
// calibration and may be re-tuned per deployment through an override file
// as long as the context-ordering invariants hold (Validate enforces them).
func DefaultSpecs() *SpecSet {
	specs := []MetricSpec{
		{
			ID:       MetricCharacteristic,
			Kind:     KindText,
			Patterns: []string{"DescriptionOfBusiness", "BusinessDescription", "OutlineOfBusiness", "DescriptionOfBusinessTextBlock", "NatureOfBusiness"},
			Keywords: []string{"DescriptionOfBusiness", "BusinessDescription", "OutlineOfBusiness", "NatureOfBusiness", "BusinessContent", "CompanyProfile"},
			Range:    Range{Min: 10, Max: 5000},
			Weights: statementWeights(Weights{
				PrimaryTerms:   []string{"descriptionofbusiness", "businessdescription", "outlineofbusiness"},
				PrimaryBonus:   15,
				SecondaryTerms: []string{"business", "description", "outline", "profile"},
				SecondaryBonus: 12,
				LengthBands: []Band{
					{Min: 200, Max: 5000, Bonus: 10},
					{Min: 50, Max: 5000, Bonus: 5},
				},
				BodyTerms:     []string{"事業", "製造", "販売", "サービス", "開発", "提供", "business", "manufact", "service", "develop"},
				BodyTermBonus: 3,
			}),
		},
		{
			ID:       MetricStockPrice,
			Kind:     KindNumeric,
			Patterns: []string{"StockPrice", "SharePrice"},
			Range:    Range{Min: 1, Max: 10_000_000},
		},
		{
			ID:       MetricNetSales,
			Kind:     KindNumeric,
			Patterns: []string{"RevenueIFRSSummaryOfBusinessResults", "NetSalesSummaryOfBusinessResults", "NetSales"},
			Keywords: []string{"NetSales", "Revenue", "Sales", "TotalRevenue", "OperatingRevenue", "TotalSales", "TotalNetSales", "ConsolidatedNetSales", "ConsolidatedRevenue"},
			Range:    Range{Min: 1_000_000, Max: 100_000_000_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"netsales", "revenue", "totalrevenue"},
				PrimaryBonus:         15,
				SecondaryTerms:       []string{"sales"},
				SecondaryBonus:       12,
				ConsolidatedTagBonus: 10,
				Bands: []Band{
					{Min: 100_000_000, Max: 10_000_000_000_000, Bonus: 10},
					{Min: 10_000_000, Max: 100_000_000_000_000, Bonus: 5},
				},
			}),
		},
		{
			ID:       MetricEmployees,
			Kind:     KindNumeric,
			Patterns: []string{"NumberOfEmployees"},
			Keywords: []string{"NumberOfEmployees", "Employees", "TotalEmployees", "EmployeeCount", "ConsolidatedNumberOfEmployees", "ConsolidatedEmployees", "Staff", "Personnel", "WorkForce", "TotalPersonnel"},
			Range:    Range{Min: 1, Max: 1_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"numberofemployees"},
				PrimaryBonus:         15,
				SecondaryTerms:       []string{"employees"},
				SecondaryBonus:       12,
				ConsolidatedTagBonus: 10,
				Bands: []Band{
					{Min: 10, Max: 100_000, Bonus: 10},
					{Min: 1, Max: 500_000, Bonus: 5},
				},
			}),
		},
		{
			ID:          MetricOperatingIncome,
			Kind:        KindNumeric,
			Patterns:    []string{"OperatingIncome"},
			TagContains: []string{"OperatingProfitLoss", "OperatingIncome"},
			Keywords:    []string{"OperatingIncome", "OperatingProfit", "OperatingProfitLoss", "ProfitLossFromOperatingActivities"},
			Range:       Range{Min: -10_000_000_000_000, Max: 10_000_000_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"operatingincome", "operatingprofit"},
				PrimaryBonus:         15,
				SecondaryTerms:       []string{"income", "profit"},
				SecondaryBonus:       12,
				ConsolidatedTagBonus: 10,
				AbsValue:             true,
				Bands: []Band{
					{Min: 100_000_000, Max: 1_000_000_000_000, Bonus: 10},
					{Min: 10_000_000, Max: 10_000_000_000_000, Bonus: 5},
				},
			}),
		},
		{
			ID:       MetricDepreciation,
			Kind:     KindNumeric,
			Patterns: []string{"DepreciationAndAmortization"},
			Keywords: []string{"DepreciationAndAmortization", "Depreciation", "Amortization", "DepreciationExpenses", "ConsolidatedDepreciation", "ConsolidatedDepreciationAndAmortization", "DepreciationAndAmortizationExpenses", "DepreciationCosts", "AmortizationExpenses", "TangibleAssetsDepreciation", "IntangibleAssetsAmortization", "DepreciationOfProperty"},
			Range:    Range{Min: 10_000_000, Max: 1_000_000_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"depreciationandamortization", "depreciation"},
				PrimaryBonus:         15,
				SecondaryTerms:       []string{"amortization"},
				SecondaryBonus:       12,
				ConsolidatedTagBonus: 10,
				QualifierTerms:       []string{"expenses", "costs", "expense"},
				QualifierBonus:       8,
				ExtraTerms:           []string{"cashflow", "cf", "operatingcf"},
				ExtraBonus:           12,
				Bands: []Band{
					{Min: 100_000_000, Max: 100_000_000_000, Bonus: 10},
					{Min: 10_000_000, Max: 1_000_000_000_000, Bonus: 5},
				},
			}),
		},
		{
			ID:       MetricMarketCap,
			Kind:     KindNumeric,
			Patterns: []string{"MarketCapitalization"},
			Range:    Range{Min: 100_000_000, Max: 1_000_000_000_000_000},
		},
		{
			ID:       MetricPER,
			Kind:     KindNumeric,
			Patterns: []string{"PriceEarningsRatio"},
			Keywords: []string{"PriceEarningsRatio", "PriceToEarnings", "PER", "PE", "PEMultiple", "PriceEarnings", "StockPriceEarningsRatio", "SharePriceEarningsRatio"},
			Range:    Range{Min: 0.1, Max: 1000},
			Weights: perShareWeights(Weights{
				ExactNames:     []string{"per", "priceearningsratio", "pricetoearnings"},
				ExactNameBonus: 15,
				ComboTerms:     []string{"price", "earnings"},
				ComboBonus:     12,
				Bands: []Band{
					{Min: 5, Max: 50, Bonus: 10},
					{Min: 1, Max: 100, Bonus: 5},
					{Min: 0.1, Max: 200, Bonus: 2},
				},
			}),
		},
		{
			ID:       MetricPBR,
			Kind:     KindNumeric,
			Patterns: []string{"PriceBookValueRatio"},
			Range:    Range{Min: 0.01, Max: 100},
		},
		{
			ID:       MetricEquity,
			Kind:     KindNumeric,
			Patterns: []string{"EquityIFRS", "ShareholdersEquity"},
			Keywords: []string{"ShareholdersEquity", "Equity", "NetAssets", "TotalEquity", "OwnersEquity", "ConsolidatedEquity", "ConsolidatedShareholdersEquity", "NetWorth", "ShareholdersCapital", "StockholdersEquity", "TotalNetAssets", "EquityAttributableToOwnersOfParent", "ParentCompanyShareholdersEquity"},
			Range:    Range{Min: 100_000_000, Max: 100_000_000_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"shareholdersequity", "equity", "netassets"},
				PrimaryBonus:         15,
				ConsolidatedTagBonus: 10,
				QualifierTerms:       []string{"parent", "owners", "attributable"},
				QualifierBonus:       8,
				Bands: []Band{
					{Min: 1_000_000_000, Max: 10_000_000_000_000, Bonus: 10},
					{Min: 100_000_000, Max: 100_000_000_000_000, Bonus: 5},
				},
			}),
		},
		{
			ID:       MetricDebt,
			Kind:     KindNumeric,
			Patterns: []string{"InterestBearingDebt"},
			Keywords: []string{"InterestBearingDebt", "Borrowings", "LoansPayable", "BondsPayable", "TotalDebt"},
			Range:    Range{Min: 0, Max: 100_000_000_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"interestbearingdebt"},
				PrimaryBonus:         15,
				SecondaryTerms:       []string{"debt", "borrowings", "loanspayable", "bondspayable"},
				SecondaryBonus:       12,
				ConsolidatedTagBonus: 10,
				QualifierTerms:       []string{"total"},
				QualifierBonus:       8,
				PenaltyTerms:         []string{"shortterm", "current"},
				PenaltyGuardTerms:    []string{"total"},
				Penalty:              -5,
				Bands: []Band{
					{Min: 1_000_000_000, Max: 10_000_000_000_000, Bonus: 10},
					{Min: 10_000_000, Max: 100_000_000_000_000, Bonus: 5},
				},
			}),
		},
		{
			ID:       MetricOutstandingShares,
			Kind:     KindNumeric,
			Patterns: []string{"NumberOfIssuedAndOutstandingSharesAtTheEndOfFiscalYear", "NumberOfSharesIssuedAtTheEndOfFiscalYear", "NumberOfSharesOutstanding", "NumberOfIssuedShares", "SharesIssued", "TotalNumberOfIssuedShares", "NumberOfSharesIssuedCommonStock", "CommonStockNumberOfSharesIssued", "NumberOfSharesOutstandingAtFiscalYearEnd", "SharesOutstanding", "CapitalStockNumberOfShares", "NumberOfSharesCapitalStock"},
			Keywords: []string{"NumberOfShares", "SharesIssued", "SharesOutstanding", "IssuedShares", "NumberOfIssuedShares", "NumberOfOutstandingShares", "TotalShares", "CommonShares", "CapitalStock", "StockShares", "Outstanding", "Shares", "Stock"},
			Range:    Range{Min: 1_000, Max: 100_000_000_000},
			Weights: perShareWeights(Weights{
				PrimaryTerms:   []string{"outstanding"},
				PrimaryBonus:   15,
				SecondaryTerms: []string{"issued"},
				SecondaryBonus: 12,
				QualifierTerms: []string{"attheendof", "endof", "fiscal", "year"},
				QualifierBonus: 10,
				ExtraTerms:     []string{"common"},
				ExtraBonus:     8,
				PenaltyTerms:   []string{"treasury", "authorized"},
				Penalty:        -5,
				Bands: []Band{
					{Min: 10_000_000, Max: 10_000_000_000, Bonus: 5},
					{Min: 1_000_000, Max: 100_000_000_000, Bonus: 3},
				},
			}),
		},
		{
			ID:       MetricNetIncome,
			Kind:     KindNumeric,
			Patterns: []string{"ProfitLossAttributableToOwnersOfParent", "NetIncomeLossSummaryOfBusinessResults", "ProfitLoss", "NetIncome"},
			Keywords: []string{"ProfitLossAttributableToOwnersOfParent", "NetIncome", "ProfitLoss", "NetIncomeLoss"},
			Range:    Range{Min: -10_000_000_000_000, Max: 10_000_000_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"netincome", "profitloss"},
				PrimaryBonus:         15,
				SecondaryTerms:       []string{"profit", "income"},
				SecondaryBonus:       12,
				ConsolidatedTagBonus: 10,
				QualifierTerms:       []string{"parent", "owners", "attributable"},
				QualifierBonus:       8,
				AbsValue:             true,
				Bands: []Band{
					{Min: 100_000_000, Max: 1_000_000_000_000, Bonus: 10},
					{Min: 10_000_000, Max: 10_000_000_000_000, Bonus: 5},
				},
			}),
		},
		{
			ID:       MetricEPS,
			Kind:     KindNumeric,
			Patterns: []string{"DilutedEarningsPerShareSummaryOfBusinessResults", "DilutedNetIncomePerShare", "DilutedEarningsPerShare", "BasicEarningsPerShareSummaryOfBusinessResults", "BasicNetIncomePerShare", "NetIncomePerShare", "EarningsPerShare"},
			Keywords: []string{"EarningsPerShare", "NetIncomePerShare", "BasicEarnings", "DilutedEarnings", "ProfitPerShare", "IncomePerShare", "EarningsAttributable", "BasicNetIncomePerShare", "DilutedNetIncomePerShare"},
			Range:    Range{Min: -10_000, Max: 10_000},
			Weights: perShareWeights(Weights{
				PrimaryTerms:   []string{"diluted"},
				PrimaryBonus:   15,
				SecondaryTerms: []string{"basic"},
				SecondaryBonus: 12,
				QualifierTerms: []string{"pershare"},
				QualifierBonus: 10,
				ExtraTerms:     []string{"earnings", "income", "profit"},
				ExtraBonus:     8,
				AbsValue:       true,
				Bands: []Band{
					{Min: 0, Max: 1_000, Bonus: 5},
					{Min: 0, Max: 5_000, Bonus: 3},
				},
			}),
		},
		{
			ID:       MetricCash,
			Kind:     KindNumeric,
			Patterns: []string{"CashAndCashEquivalents", "CashAndCashEquivalentsIFRS", "CashAndDeposits"},
			Keywords: []string{"CashAndCashEquivalents", "CashAndDeposits", "CashEquivalents"},
			Range:    Range{Min: 0, Max: 100_000_000_000_000},
			Weights: statementWeights(Weights{
				PrimaryTerms:         []string{"cashandcashequivalents", "cashanddeposits"},
				PrimaryBonus:         15,
				SecondaryTerms:       []string{"cash"},
				SecondaryBonus:       12,
				ConsolidatedTagBonus: 10,
				Bands: []Band{
					{Min: 100_000_000, Max: 10_000_000_000_000, Bonus: 10},
					{Min: 1_000_000, Max: 100_000_000_000_000, Bonus: 5},
				},
			}),
		},
		{
			ID:       MetricBPS,
			Kind:     KindNumeric,
			Patterns: []string{"NetAssetsPerShareSummaryOfBusinessResults", "NetAssetsPerShare", "BookValuePerShare"},
			Keywords: []string{"NetAssetsPerShare", "BookValuePerShare", "EquityPerShare"},
			Range:    Range{Min: 0.1, Max: 1_000_000},
			Weights: perShareWeights(Weights{
				PrimaryTerms:   []string{"netassetspershare", "bookvaluepershare"},
				PrimaryBonus:   15,
				SecondaryTerms: []string{"netassets", "bookvalue"},
				SecondaryBonus: 12,
				QualifierTerms: []string{"pershare"},
				QualifierBonus: 10,
				Bands: []Band{
					{Min: 100, Max: 50_000, Bonus: 10},
					{Min: 10, Max: 100_000, Bonus: 5},
				},
			}),
		},
	}

	set := &SpecSet{specs: make(map[MetricID]MetricSpec, len(specs))}
	for _, spec := range specs {
		set.order = append(set.order, spec.ID)
		set.specs[spec.ID] = spec
	}
	return set
}

// Validate checks a spec set for internal consistency: every metric needs
// at least one resolution path, sane ranges, and context weights that keep
// the consolidated current-year combination strictly on top for scored
// families. Errors are collected so one pass reports everything.
func (s *SpecSet) Validate() error {
	var errs []string

	for _, id := range s.order {
		spec := s.specs[id]

		if len(spec.Patterns) == 0 && len(spec.TagContains) == 0 && len(spec.Keywords) == 0 {
			errs = append(errs, string(id)+": no patterns, tag groups, or keywords")
		}
		if spec.Range.Min > spec.Range.Max {
			errs = append(errs, string(id)+": range min exceeds max")
		}
		if spec.Kind == KindText && spec.Range.Max <= 0 {
			errs = append(errs, string(id)+": text metric needs a positive max length")
		}

		if len(spec.Keywords) == 0 {
			continue
		}
		w := spec.Weights
		both := w.Consolidated + w.ConsolidatedCurrent
		if both <= w.Consolidated || both <= w.CurrentYear || both <= w.Current {
			errs = append(errs, string(id)+": consolidated+current must outscore either alone")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("resolve: invalid metric specs: %s", strings.Join(errs, "; "))
	}
	return nil
}
