package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatCurrencyIDR formats amount as Indonesian Rupiah, e.g. 15000.5 -> "Rp 15.000,50".
// Whole amounts carry no decimal part: 299000 -> "Rp 299.000".
func FormatCurrencyIDR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "Rp " + sign + b.String()
	if frac := cents % 100; frac != 0 {
		out += "," + leftPad2(frac)
	}
	return out
}

func leftPad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
