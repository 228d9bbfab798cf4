package parse

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "")

// Money extracts an amount and optional ISO currency code from a
// compound token such as "500.00 USD" or "$1,234.56". Parsing is
// locale-free: currency symbols and thousands separators are stripped
// before decimal parsing. An unparseable amount contributes zero
// rather than failing the row.
func Money(token string) (decimal.Decimal, string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return decimal.Zero, ""
	}

	currency := ""
	fields := strings.Fields(token)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if isCurrencyCode(last) {
			currency = strings.ToUpper(last)
			fields = fields[:len(fields)-1]
		}
	}

	cleaned := currencySymbols.Replace(strings.Join(fields, ""))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, currency
	}
	return amount, currency
}

// Amount parses a bare decimal token, defaulting to zero on failure.
func Amount(token string) decimal.Decimal {
	amount, _ := Money(token)
	return amount
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
