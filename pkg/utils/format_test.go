package utils

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{2.41e12, "$2.41T"},
		{1927345000, "$1.93B"},
		{54750000, "$54.75M"},
		{4500, "$4.50K"},
		{999.99, "$999.99"},
		{0, "$0.00"},
		{-4500, "-$4.50K"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.want {
			t.Errorf("FormatUSD(%g) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{50123.4, "$50,123"},
		{1234567.8, "$1,234,568"},
		{42.5, "$42.50"},
		{0.0456, "$0.0456"},
		{0.0000234, "$2.34e-05"},
		{0, "$0.00"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%g) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{2.45, "+2.45%"},
		{-1.23, "-1.23%"},
		{0, "+0.00%"},
	}
	for _, tt := range tests {
		if got := FormatPct(tt.pct); got != tt.want {
			t.Errorf("FormatPct(%g) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
