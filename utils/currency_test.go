package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrencyIDR(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1000, "Rp 1.000"},
		{299000, "Rp 299.000"},
		{1500000, "Rp 1.500.000"},
		{15000.5, "Rp 15.000,50"},
		{99.99, "Rp 99,99"},
		{-2500, "Rp -2.500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrencyIDR(tt.amount), "amount %v", tt.amount)
	}
}
