package currency

import (
	"fmt"
	"math"
)

// Convert applies a fixed exchange rate to an amount. Rate sourcing is the
// caller's concern; this package only does the arithmetic.
func Convert(amount, rate float64) float64 {
	return amount * rate
}

// Round rounds an amount to the nearest whole unit.
func Round(amount float64) float64 {
	return math.Round(amount)
}

// Format renders a rounded amount with its currency code and thousands
// separators, e.g. "ILS 1,449".
func Format(code string, amount float64) string {
	rounded := Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	formatted := addThousandsSeparator(fmt.Sprintf("%.0f", rounded), ",")

	result := code + " " + formatted
	if negative {
		result = "-" + result
	}
	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
