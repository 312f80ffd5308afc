package resolve

import (
	"strings"

	"github.com/kessan-lab/edinet-cli/internal/text"
	"github.com/kessan-lab/edinet-cli/internal/xbrl"
)

// Path identifies which resolution stage produced a value.
type Path string

const (
	PathPattern  Path = "pattern"
	PathTagGroup Path = "tag-group"
	PathFallback Path = "fallback"
)

// Hit is one resolved observation: the usable value plus where it came
// from. Numeric metrics fill Value, text metrics fill Text.
type Hit struct {
	Value float64
	Text  string
	Fact  xbrl.Fact
	Tier  xbrl.ContextTier
	Via   Path
	Score int
}

// resolvePatterns walks the known identifiers in order, then the substring
// tag groups. Identifier order outranks context tier: a poorly-tiered match
// on an earlier identifier still beats a perfectly-tiered match on a later
// one, because the earlier identifier is the more specific vocabulary term.
func resolvePatterns(doc *xbrl.Document, spec MetricSpec) (Hit, bool) {
	for _, name := range spec.Patterns {
		if hit, ok := pickTiered(doc.Named(name), spec); ok {
			hit.Via = PathPattern
			return hit, true
		}
	}
	if len(spec.TagContains) > 0 {
		if hit, ok := pickTiered(factsContaining(doc, spec.TagContains), spec); ok {
			hit.Via = PathTagGroup
			return hit, true
		}
	}
	return Hit{}, false
}

// factsContaining returns, in document order, every fact whose local name
// contains one of the given case-sensitive fragments.
func factsContaining(doc *xbrl.Document, terms []string) []xbrl.Fact {
	var out []xbrl.Fact
	for _, f := range doc.Facts() {
		for _, term := range terms {
			if strings.Contains(f.Name, term) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// pickTiered partitions facts by context tier and returns the first usable
// fact from the best populated tier, falling through to worse tiers when a
// tier holds only unusable values. Excluded contexts never qualify.
func pickTiered(facts []xbrl.Fact, spec MetricSpec) (Hit, bool) {
	if len(facts) == 0 {
		return Hit{}, false
	}
	byTier := make(map[xbrl.ContextTier][]xbrl.Fact, len(xbrl.SelectableTiers))
	for _, f := range facts {
		tier := xbrl.ClassifyContext(f.ContextRef)
		if !tier.Selectable() {
			continue
		}
		byTier[tier] = append(byTier[tier], f)
	}
	for _, tier := range xbrl.SelectableTiers {
		for _, f := range byTier[tier] {
			if hit, ok := usable(f, spec); ok {
				hit.Tier = tier
				return hit, true
			}
		}
	}
	return Hit{}, false
}

// usable parses and range-checks one fact's value according to the metric
// kind. Out-of-range numbers are treated the same as unparseable ones: the
// walk moves on. Text facts only have to sanitize to something non-empty
// here; length bounds belong to the fallback scan.
func usable(f xbrl.Fact, spec MetricSpec) (Hit, bool) {
	if spec.Kind == KindText {
		body := text.Sanitize(f.Value)
		if body == "" {
			return Hit{}, false
		}
		return Hit{Text: body, Fact: f}, true
	}
	v, ok := ParseNumber(f.Value)
	if !ok || !spec.Range.Contains(v) {
		return Hit{}, false
	}
	return Hit{Value: v, Fact: f}, true
}
