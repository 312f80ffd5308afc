package xbrl

import "strings"

// ContextTier orders a fact's context reference by how authoritative it is
// for current consolidated reporting. Lower values are better; TierExcluded
// marks non-consolidated (parent-only) contexts that must never be selected.
type ContextTier int

const (
	TierConsolidatedCurrent ContextTier = iota
	TierCurrent
	TierConsolidated
	TierOther
	TierExcluded
)

// String returns a short label for logs.
func (t ContextTier) String() string {
	switch t {
	case TierConsolidatedCurrent:
		return "consolidated-current"
	case TierCurrent:
		return "current"
	case TierConsolidated:
		return "consolidated"
	case TierOther:
		return "other"
	case TierExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Selectable reports whether facts in this tier may ever be chosen.
func (t ContextTier) Selectable() bool {
	return t != TierExcluded
}

// SelectableTiers lists the eligible tiers best-first, for resolvers that
// walk tier by tier.
var SelectableTiers = []ContextTier{
	TierConsolidatedCurrent,
	TierCurrent,
	TierConsolidated,
	TierOther,
}

// ClassifyContext labels a context reference by substring tests on the
// EDINET context naming tokens. The non-consolidated marker is checked
// first: "NonConsolidatedMember" itself contains "Consolidated", so order
// matters. Empty and unrecognized references classify as TierOther.
func ClassifyContext(ref string) ContextTier {
	if strings.Contains(ref, "NonConsolidatedMember") {
		return TierExcluded
	}
	consolidated := strings.Contains(ref, "Consolidated")
	current := strings.Contains(ref, "CurrentYear")
	switch {
	case consolidated && current:
		return TierConsolidatedCurrent
	case current:
		return TierCurrent
	case consolidated:
		return TierConsolidated
	default:
		return TierOther
	}
}
