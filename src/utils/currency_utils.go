package utils

import (
	"math"
	"strconv"
)

// FormatIDR renders a whole-rupiah amount with Indonesian digit grouping,
// e.g. 1234567 -> "Rp 1.234.567". Stored values are always integer rupiah;
// formatting is a display concern only.
func FormatIDR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var grouped []byte
	for i, c := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, c)
	}

	out := "Rp " + string(grouped)
	if neg {
		out = "-" + out
	}
	return out
}

// USDToIDR converts a USD amount to whole rupiah at the given rate,
// rounding half away from zero. Conversion happens at input time only;
// stored values are always IDR.
func USDToIDR(amountUSD, rate float64) int64 {
	return RoundToInt64(amountUSD * rate)
}

// RoundToInt64 rounds a float to the nearest int64, half away from zero.
func RoundToInt64(x float64) int64 {
	return int64(math.Round(x))
}
