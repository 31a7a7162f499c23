package model

import "github.com/shopspring/decimal"

// FormatAmount renders an amount in minor units as a major-unit string, e.g. 99900 -> "999.00".
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
