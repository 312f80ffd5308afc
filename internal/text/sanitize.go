// Package text holds the stateless text transforms used on narrative
// fields extracted from filings: markup sanitization and lead-sentence
// extraction.
package text

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// entityReplacer decodes the fixed table of common markup entities that
// survive a first parse pass (double-escaped source text).
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
	"&copy;", "©",
	"&reg;", "®",
	"&trade;", "™",
)

var (
	entityResidueRe = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)
	tagRe           = regexp.MustCompile(`<[^>]*>`)
	// Includes NBSP and the ideographic space, which \s does not cover.
	whitespaceRe = regexp.MustCompile(`[\s\x{00A0}\x{3000}]+`)
)

// Sanitize strips markup from a narrative value: script/style blocks go
// first (content included), then all remaining tags, then the fixed entity
// table, then leftover entity residue, and finally whitespace is collapsed
// to single spaces. Sanitizing already-clean text is a no-op.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		doc.Find("script, style").Remove()
		text = doc.Text()
	} else {
		// html parsing accepts arbitrary input, so this path only covers a
		// reader failure; fall back to plain tag stripping.
		text = tagRe.ReplaceAllString(raw, " ")
	}

	text = entityReplacer.Replace(text)
	text = entityResidueRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
