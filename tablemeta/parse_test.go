package tablemeta

import (
	"math"
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in       string
		want     float64
		ok       bool
		currency bool
		percent  bool
	}{
		{"$1,250,000", 1250000, true, true, false},
		{"1.250.000,50", 1250000.5, true, false, false},
		{"3,5", 3.5, true, false, false},
		{"0,5", 0.5, true, false, false},
		{"1,250", 1250, true, false, false},
		{"(1,234)", -1234, true, false, false},
		{"12.5%", 12.5, true, false, true},
		{"EUR 99", 99, true, true, false},
		{"99 USD", 99, true, true, false},
		{"€ 1.234,56", 1234.56, true, true, false},
		{"１２３", 123, true, false, false},
		{"1 250 000", 1250000, true, false, false},
		{"1'250", 1250, true, false, false},
		{"5k", 5000, true, false, false},
		{"-42", -42, true, false, false},
		{"42-", -42, true, false, false},
		{"+7", 7, true, false, false},
		{"2024", 2024, true, false, false},
		{"1.250.000", 1250000, true, false, false},
		{"1,234.56", 1234.56, true, false, false},
		{"15.03.2024", 0, false, false, false},
		{"1.2.3", 0, false, false, false},
		{"1,2,3", 0, false, false, false},
		{"12,34,5", 0, false, false, false},
		{"12.34,5", 0, false, false, false},
		{"Q1", 0, false, false, false},
		{"N/A", 0, false, false, false},
		{"", 0, false, false, false},
		{"2024-01-05", 0, false, false, false},
		{"abc", 0, false, false, false},
		{"$", 0, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := ParseNumber(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if math.Abs(n.Value-tt.want) > 1e-9 {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, n.Value, tt.want)
			}
			if n.Currency != tt.currency {
				t.Errorf("ParseNumber(%q).Currency = %v, want %v", tt.in, n.Currency, tt.currency)
			}
			if n.Percent != tt.percent {
				t.Errorf("ParseNumber(%q).Percent = %v, want %v", tt.in, n.Percent, tt.percent)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024/1/5", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"01/05/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"25/12/2024", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"24.12.2024", time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC), true},
		{"Jan 5, 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"5 January 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"March 2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024", time.Time{}, false},
		{"Q1 2024", time.Time{}, false},
		{"hello world", time.Time{}, false},
		{"2024-13-45", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
