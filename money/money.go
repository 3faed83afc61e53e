// Package money holds the value types shared by the ledger: ISO-4217
// currency codes and amounts carried as arbitrary precision decimals.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrInvalidCurrency = errors.New("invalid currency")

// Currency is an upper-case ISO-4217 code such as "EUR".
type Currency string

// ParseCurrency validates s against the ISO-4217 table and returns its
// canonical form.
func ParseCurrency(s string) (Currency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	unit, err := currency.ParseISO(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	return Currency(unit.String()), nil
}

func (c Currency) String() string {
	return string(c)
}

// Amount is an immutable currency + decimal pair. Two amounts are equal when
// both the currency and the numeric value match, so 10 EUR equals 10.00 EUR.
type Amount struct {
	Currency Currency
	Value    decimal.Decimal
}

func NewAmount(c Currency, v decimal.Decimal) Amount {
	return Amount{Currency: c, Value: v}
}

func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

func (a Amount) IsPositive() bool {
	return a.Value.IsPositive()
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Currency)
}

// Sum adds the values of amounts that share c and ignores the rest.
func Sum(c Currency, amounts ...Amount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		if a.Currency == c {
			total = total.Add(a.Value)
		}
	}
	return total
}
