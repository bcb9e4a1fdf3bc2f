package utils

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PricePlaces is the number of decimal places with which prices are rendered.
	PricePlaces = 4
)

func GetEnv(name string, def string) string {
	val := os.Getenv(name)
	if len(val) > 0 {
		return val
	} else {
		return def
	}
}

// FormatPrice renders the given price with PricePlaces decimal places.
//
// Prices greater than or equal to unknown are rendered as "unknown".
func FormatPrice(price decimal.Decimal, unknown decimal.Decimal) string {
	if price.GreaterThanOrEqual(unknown) {
		return "unknown"
	}

	return price.StringFixed(PricePlaces)
}

// SplitList splits a comma-separated list, trimming whitespace and dropping empty entries.
func SplitList(list string) []string {
	parts := strings.Split(list, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
