package edinet

import "strings"

// NormalizeSecCode converts an EDINET securities code to the 4-character
// ticker: the feed pads listed codes to five digits with a trailing zero
// ("72030" → "7203"). Codes in any other shape, including the newer
// letter-bearing tickers ("259A"), pass through unchanged.
func NormalizeSecCode(code string) string {
	if len(code) == 5 && strings.HasSuffix(code, "0") {
		return code[:4]
	}
	return code
}
