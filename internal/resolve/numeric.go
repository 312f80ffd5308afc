package resolve

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ParseNumber parses a raw fact value as a float. Full-width digits and
// punctuation are narrowed first (filings mix both forms), thousands
// separators are dropped, and non-finite results are rejected. The bool
// reports whether a usable number was produced; failures are silent by
// design, the resolvers just move on.
func ParseNumber(raw string) (float64, bool) {
	s := width.Narrow.String(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
