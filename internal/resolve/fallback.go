package resolve

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kessan-lab/edinet-cli/internal/text"
	"github.com/kessan-lab/edinet-cli/internal/xbrl"
)

// Candidate is one scored fallback observation. Besides driving the best
// pick, candidates surface through the inspect command so a mis-resolved
// metric can be diagnosed from the scores.
type Candidate struct {
	Metric     MetricID
	TagName    string
	ContextRef string
	Tier       xbrl.ContextTier
	Value      float64
	Text       string
	Score      int
}

// keywordIndex pairs a spec with its pre-lowered keywords so a batched scan
// does not re-lower them per fact.
type keywordIndex struct {
	spec     MetricSpec
	keywords []string
}

func buildKeywordIndex(specs []MetricSpec) []keywordIndex {
	idx := make([]keywordIndex, 0, len(specs))
	for _, spec := range specs {
		if len(spec.Keywords) == 0 {
			continue
		}
		lowered := make([]string, len(spec.Keywords))
		for i, kw := range spec.Keywords {
			lowered[i] = strings.ToLower(kw)
		}
		idx = append(idx, keywordIndex{spec: spec, keywords: lowered})
	}
	return idx
}

// fallbackSearch scans the document once for every given metric and keeps
// the best-scoring candidate per metric. Facts in excluded contexts are
// skipped outright. Ties keep the earliest fact in document order, which a
// strictly-greater replacement rule gives for free.
func fallbackSearch(doc *xbrl.Document, specs []MetricSpec) map[MetricID]Candidate {
	idx := buildKeywordIndex(specs)
	if len(idx) == 0 {
		return nil
	}

	best := make(map[MetricID]Candidate, len(idx))
	for _, f := range doc.Facts() {
		tier := xbrl.ClassifyContext(f.ContextRef)
		if !tier.Selectable() {
			continue
		}
		lower := strings.ToLower(f.Name)
		for _, entry := range idx {
			cand, ok := scoreFact(entry, f, lower, tier)
			if !ok {
				continue
			}
			if prev, seen := best[cand.Metric]; !seen || cand.Score > prev.Score {
				best[cand.Metric] = cand
			}
		}
	}
	return best
}

// collectCandidates returns every fallback candidate for one metric,
// ordered by descending score with document order breaking ties.
func collectCandidates(doc *xbrl.Document, spec MetricSpec) []Candidate {
	idx := buildKeywordIndex([]MetricSpec{spec})
	if len(idx) == 0 {
		return nil
	}
	entry := idx[0]

	var out []Candidate
	for _, f := range doc.Facts() {
		tier := xbrl.ClassifyContext(f.ContextRef)
		if !tier.Selectable() {
			continue
		}
		if cand, ok := scoreFact(entry, f, strings.ToLower(f.Name), tier); ok {
			out = append(out, cand)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// scoreFact checks one fact against one metric's keywords and, when it
// matches and survives the plausibility filter, scores it.
func scoreFact(entry keywordIndex, f xbrl.Fact, lowerName string, tier xbrl.ContextTier) (Candidate, bool) {
	matched := false
	for _, kw := range entry.keywords {
		if strings.Contains(lowerName, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return Candidate{}, false
	}

	spec := entry.spec
	cand := Candidate{
		Metric:     spec.ID,
		TagName:    f.Name,
		ContextRef: f.ContextRef,
		Tier:       tier,
	}
	if spec.Kind == KindText {
		body := text.Sanitize(f.Value)
		if !spec.Range.Contains(float64(utf8.RuneCountInString(body))) {
			return Candidate{}, false
		}
		cand.Text = body
		cand.Score = spec.Weights.ScoreText(f.Name, f.ContextRef, body)
		return cand, true
	}

	v, ok := ParseNumber(f.Value)
	if !ok || !spec.Range.Contains(v) {
		return Candidate{}, false
	}
	cand.Value = v
	cand.Score = spec.Weights.ScoreNumeric(f.Name, f.ContextRef, v)
	return cand, true
}
