package utils

import "testing"

func TestFormatIDR(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1_000, "Rp 1.000"},
		{50_000, "Rp 50.000"},
		{1_234_567, "Rp 1.234.567"},
		{16_000_000_000, "Rp 16.000.000.000"},
		{-200_000, "-Rp 200.000"},
	}
	for _, tt := range tests {
		if got := FormatIDR(tt.amount); got != tt.want {
			t.Errorf("FormatIDR(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestUSDToIDR(t *testing.T) {
	tests := []struct {
		usd  float64
		rate float64
		want int64
	}{
		{1, 16000, 16000},
		{2.5, 16000, 40000},
		{0.001, 16000, 16},
		{1.00003, 16000, 16000}, // 16000.48 rounds down
		{1.00004, 16000, 16001}, // 16000.64 rounds up
	}
	for _, tt := range tests {
		if got := USDToIDR(tt.usd, tt.rate); got != tt.want {
			t.Errorf("USDToIDR(%v, %v) = %d, want %d", tt.usd, tt.rate, got, tt.want)
		}
	}
}
