package model

import (
	"fmt"
	"time"
)

// FormatPeriodEnd turns an ISO period-end date into the localized fiscal
// period label used in the output ("2025-03-31" → "2025年3月期"). Anything
// that does not parse as an ISO date passes through unchanged.
func FormatPeriodEnd(periodEnd string) string {
	t, err := time.Parse("2006-01-02", periodEnd)
	if err != nil {
		return periodEnd
	}
	return fmt.Sprintf("%d年%d月期", t.Year(), int(t.Month()))
}
