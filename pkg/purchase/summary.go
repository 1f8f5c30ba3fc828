package purchase

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Summary aggregates a set of records.
type Summary struct {
	Purchases int
	Items     int
	Free      int
	Unpriced  int // prices that could not be parsed as amounts
	Total     decimal.Decimal
	Currency  string // first currency symbol seen, e.g. "$"
}

// Summarize counts records and sums their prices. Records of the same
// transaction count once towards Purchases.
func Summarize(records []Record) Summary {
	s := Summary{Total: decimal.Zero}
	seen := make(map[string]bool)

	for _, r := range records {
		s.Items++
		if !seen[r.TransactionID] {
			seen[r.TransactionID] = true
			s.Purchases++
		}

		if r.Price == FreePrice {
			s.Free++
			continue
		}

		amount, symbol, ok := ParseAmount(r.Price)
		if !ok {
			s.Unpriced++
			continue
		}
		s.Total = s.Total.Add(amount)
		if s.Currency == "" {
			s.Currency = symbol
		}
	}
	return s
}

// FormatTotal renders the total with its currency symbol.
func (s Summary) FormatTotal() string {
	return s.Currency + s.Total.StringFixed(2)
}

// ParseAmount parses a display price such as "$1,234.50" or "12,99 €".
// It returns the amount, the non-numeric prefix or suffix, and whether
// parsing succeeded.
func ParseAmount(text string) (decimal.Decimal, string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, "", false
	}

	start := strings.IndexFunc(text, unicode.IsDigit)
	end := strings.LastIndexFunc(text, unicode.IsDigit)
	if start < 0 {
		return decimal.Zero, "", false
	}

	prefix := text[:start]
	negative := strings.Contains(prefix, "-")
	symbol := strings.TrimSpace(strings.ReplaceAll(prefix, "-", "") + text[end+1:])
	number := text[start : end+1]

	// A comma followed by exactly two digits at the end is a decimal comma.
	if i := strings.LastIndexByte(number, ','); i >= 0 && i == len(number)-3 && !strings.Contains(number, ".") {
		number = number[:i] + "." + number[i+1:]
	}
	number = strings.ReplaceAll(number, ",", "")

	amount, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Zero, "", false
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, symbol, true
}
