package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPeriodEnd(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "march fiscal year end", in: "2025-03-31", want: "2025年3月期"},
		{name: "december fiscal year end", in: "2024-12-31", want: "2024年12月期"},
		{name: "single digit month unpadded", in: "2025-06-30", want: "2025年6月期"},
		{name: "unparsable passes through", in: "2025/03/31", want: "2025/03/31"},
		{name: "already formatted passes through", in: "2025年3月期", want: "2025年3月期"},
		{name: "empty passes through", in: "", want: ""},
		{name: "garbage passes through", in: "not-a-date", want: "not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPeriodEnd(tt.in))
		})
	}
}
