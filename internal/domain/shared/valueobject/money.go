package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 alphabetic code
type Currency string

// INR is the Indian Rupee, the storefront's trading currency
const INR Currency = "INR"

// DefaultCurrency is used when no currency is configured or supplied
const DefaultCurrency = INR

// ErrInvalidCurrency is returned for codes that are not three upper-case letters
var ErrInvalidCurrency = errors.New("currency must be a three-letter ISO 4217 code")

// Valid reports whether c has the shape of an ISO 4217 code. Whether the
// code is actually assigned is left to the presentation layer.
func (c Currency) Valid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

// Money is an immutable amount in one currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money, rejecting malformed currency codes
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.Valid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyINR creates Money in INR
func NewMoneyINR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: INR}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// StringFixed returns the amount rounded half away from zero to places decimals
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// String returns e.g. "157.00 INR"
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}
