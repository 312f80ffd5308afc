package resolve

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Band awards a bonus when a value falls inside [Min, Max]. Bands are
// evaluated in order and only the first match counts, so list the narrow
// typical band before the wide one.
type Band struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Bonus int     `yaml:"bonus"`
}

// Weights is the scoring table for one metric family. The shape is shared
// by every family; a family opts out of a term group by leaving it empty.
// Context bonuses are additive: a consolidated current-year context earns
// Consolidated plus ConsolidatedCurrent, which must exceed either the
// consolidated-only or the current-only score.
type Weights struct {
	Consolidated        int `yaml:"consolidated"`
	ConsolidatedCurrent int `yaml:"consolidated_current"`
	CurrentYear         int `yaml:"current_year"`
	Current             int `yaml:"current"`

	// ExactNames match the whole lowercased local name.
	ExactNames     []string `yaml:"exact_names"`
	ExactNameBonus int      `yaml:"exact_name_bonus"`

	// PrimaryTerms and SecondaryTerms are substring matches; the secondary
	// group is consulted only when no primary term hits.
	PrimaryTerms   []string `yaml:"primary_terms"`
	PrimaryBonus   int      `yaml:"primary_bonus"`
	SecondaryTerms []string `yaml:"secondary_terms"`
	SecondaryBonus int      `yaml:"secondary_bonus"`

	// ConsolidatedTagBonus rewards "consolidated" inside the tag name
	// itself, independent of the context bonuses above.
	ConsolidatedTagBonus int `yaml:"consolidated_tag_bonus"`

	QualifierTerms []string `yaml:"qualifier_terms"`
	QualifierBonus int      `yaml:"qualifier_bonus"`
	ExtraTerms     []string `yaml:"extra_terms"`
	ExtraBonus     int      `yaml:"extra_bonus"`

	// ComboTerms all have to be present to earn ComboBonus.
	ComboTerms []string `yaml:"combo_terms"`
	ComboBonus int      `yaml:"combo_bonus"`

	// PenaltyTerms add Penalty, normally negative, unless a guard term is
	// also present (short-term debt components are fine when the tag says
	// "total").
	PenaltyTerms      []string `yaml:"penalty_terms"`
	PenaltyGuardTerms []string `yaml:"penalty_guard_terms"`
	Penalty           int      `yaml:"penalty"`

	// Bands rate the numeric magnitude; AbsValue compares |v| for metrics
	// that are legitimately negative.
	Bands    []Band `yaml:"bands"`
	AbsValue bool   `yaml:"abs_value"`

	// Text families only: LengthBands rate the sanitized body length in
	// runes, BodyTerms award BodyTermBonus per distinct term found in the
	// body itself rather than the tag name.
	LengthBands   []Band   `yaml:"length_bands"`
	BodyTerms     []string `yaml:"body_terms"`
	BodyTermBonus int      `yaml:"body_term_bonus"`
}

// ScoreNumeric ranks one numeric candidate. Higher is better; scores are
// only comparable within a single metric family.
func (w Weights) ScoreNumeric(tagName, contextRef string, value float64) int {
	score := w.scoreContext(contextRef) + w.scoreName(strings.ToLower(tagName))

	v := value
	if w.AbsValue {
		v = math.Abs(v)
	}
	for _, b := range w.Bands {
		if b.Min <= v && v <= b.Max {
			score += b.Bonus
			break
		}
	}
	return score
}

// ScoreText ranks one narrative candidate by tag name, context, body
// length, and the density of business-activity terms inside the body.
func (w Weights) ScoreText(tagName, contextRef, body string) int {
	score := w.scoreContext(contextRef) + w.scoreName(strings.ToLower(tagName))

	length := float64(utf8.RuneCountInString(body))
	for _, b := range w.LengthBands {
		if b.Min <= length && length <= b.Max {
			score += b.Bonus
			break
		}
	}

	if w.BodyTermBonus != 0 {
		lowerBody := strings.ToLower(body)
		for _, term := range w.BodyTerms {
			if strings.Contains(lowerBody, term) {
				score += w.BodyTermBonus
			}
		}
	}
	return score
}

func (w Weights) scoreContext(contextRef string) int {
	consolidated := strings.Contains(contextRef, "Consolidated")
	currentYear := strings.Contains(contextRef, "CurrentYear")

	score := 0
	if consolidated {
		score += w.Consolidated
	}
	switch {
	case consolidated && currentYear:
		score += w.ConsolidatedCurrent
	case currentYear:
		score += w.CurrentYear
	case strings.Contains(contextRef, "Current"):
		score += w.Current
	}
	return score
}

func (w Weights) scoreName(lower string) int {
	score := 0

	for _, name := range w.ExactNames {
		if lower == name {
			score += w.ExactNameBonus
			break
		}
	}

	if anyTerm(lower, w.PrimaryTerms) {
		score += w.PrimaryBonus
	} else if anyTerm(lower, w.SecondaryTerms) {
		score += w.SecondaryBonus
	}

	if w.ConsolidatedTagBonus != 0 && strings.Contains(lower, "consolidated") {
		score += w.ConsolidatedTagBonus
	}

	if anyTerm(lower, w.QualifierTerms) {
		score += w.QualifierBonus
	}
	if anyTerm(lower, w.ExtraTerms) {
		score += w.ExtraBonus
	}

	if len(w.ComboTerms) > 0 && allTerms(lower, w.ComboTerms) {
		score += w.ComboBonus
	}

	if anyTerm(lower, w.PenaltyTerms) && !anyTerm(lower, w.PenaltyGuardTerms) {
		score += w.Penalty
	}
	return score
}

func anyTerm(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func allTerms(s string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}
