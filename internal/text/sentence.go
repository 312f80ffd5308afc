package text

import (
	"strings"
	"unicode/utf8"
)

// sentenceTerminals covers both CJK and Latin sentence-ending marks.
const sentenceTerminals = "。！？.!?"

// truncateRunes bounds the fallback prefix when no terminal mark exists.
const truncateRunes = 100

// FirstSentence returns the prefix of s up to and including the earliest
// sentence-terminal mark. When no mark occurs, short text is returned
// unchanged and long text is cut at a fixed rune count with a truncation
// marker appended.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if idx := strings.IndexAny(s, sentenceTerminals); idx >= 0 {
		_, width := utf8.DecodeRuneInString(s[idx:])
		return s[:idx+width]
	}

	if utf8.RuneCountInString(s) <= truncateRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:truncateRunes]) + "..."
}
