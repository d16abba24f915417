package services

import (
	"math"
	"testing"
)

func TestFormatMW(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{28000, "28,000 MW"},
		{27999.6, "28,000 MW"},
		{1234567.5, "1,234,568 MW"},
		{2.5, "2 MW"},
		{3.5, "4 MW"},
		{0, "0 MW"},
		{999, "999 MW"},
		{-1500, "-1,500 MW"},
		{math.NaN(), "- MW"},
		{math.Inf(1), "- MW"},
	}

	for _, tt := range tests {
		if got := FormatMW(tt.in); got != tt.want {
			t.Errorf("FormatMW(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
