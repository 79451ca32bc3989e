package common

import (
	"regexp"
	"strings"
)

// currencyNoise matches currency markers and grouping separators that OCR
// output and hand-typed amounts carry around the digits.
var currencyNoise = regexp.MustCompile(`(?i)(₹|rs\.?|inr|\$|,|\s)`)

// StripCurrency removes currency symbols, "Rs" prefixes and thousands
// separators so the remainder can be parsed as a plain decimal.
func StripCurrency(s string) string {
	return currencyNoise.ReplaceAllString(strings.TrimSpace(s), "")
}
