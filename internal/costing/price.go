package costing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const currencySymbol = "$"

var priceLiteral = regexp.MustCompile(`^\$([+-]?(?:\d+\.?\d*|\.\d+))$`)

// ParsePrice converts a currency string such as "$2.00" into its numeric amount.
// Thousands separators, exponents and locale formats are rejected.
func ParsePrice(raw string) (float64, error) {
	m := priceLiteral.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, &MalformedPriceError{Raw: raw}
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsInf(value, 0) {
		return 0, &MalformedPriceError{Raw: raw}
	}
	return value, nil
}

// FormatPrice renders an amount as a currency string that ParsePrice accepts,
// using the shortest decimal representation of the value.
func FormatPrice(amount float64) string {
	return currencySymbol + strconv.FormatFloat(amount, 'f', -1, 64)
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%s%.2f", currencySymbol, amount)
}

// maxFractional is the magnitude from which float64 values carry no fraction.
const maxFractional = 1 << 52

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if math.Abs(v) >= maxFractional {
		return v
	}
	return math.Round(v*100) / 100
}
