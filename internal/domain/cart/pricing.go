package cart

import (
	"github.com/organicmart/storefront/internal/domain/shared"
	"github.com/organicmart/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Default charges applied to every order
var (
	DefaultDeliveryCharge     = decimal.NewFromInt(25)
	DefaultHandlingCharge     = decimal.NewFromInt(2)
	DefaultSmallCartThreshold = decimal.NewFromInt(100)
	DefaultSmallCartSurcharge = decimal.NewFromInt(20)
)

// PricingPolicy holds the flat charges added on top of the items subtotal
type PricingPolicy struct {
	DeliveryCharge     decimal.Decimal
	HandlingCharge     decimal.Decimal
	SmallCartThreshold decimal.Decimal // subtotals strictly below this pay the surcharge
	SmallCartSurcharge decimal.Decimal
	Currency           valueobject.Currency
}

// DefaultPricingPolicy returns the storefront's standard charges
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		DeliveryCharge:     DefaultDeliveryCharge,
		HandlingCharge:     DefaultHandlingCharge,
		SmallCartThreshold: DefaultSmallCartThreshold,
		SmallCartSurcharge: DefaultSmallCartSurcharge,
		Currency:           valueobject.DefaultCurrency,
	}
}

// Validate rejects negative charges and malformed currency codes
func (p PricingPolicy) Validate() error {
	switch {
	case p.DeliveryCharge.IsNegative():
		return shared.NewDomainError("INVALID_PRICING", "Delivery charge cannot be negative")
	case p.HandlingCharge.IsNegative():
		return shared.NewDomainError("INVALID_PRICING", "Handling charge cannot be negative")
	case p.SmallCartThreshold.IsNegative():
		return shared.NewDomainError("INVALID_PRICING", "Small cart threshold cannot be negative")
	case p.SmallCartSurcharge.IsNegative():
		return shared.NewDomainError("INVALID_PRICING", "Small cart surcharge cannot be negative")
	case !p.Currency.Valid():
		return shared.NewDomainError("INVALID_PRICING", "Currency must be a three-letter ISO code")
	}
	return nil
}

// PricingBreakdown is the bill for a given items subtotal
type PricingBreakdown struct {
	Subtotal           decimal.Decimal
	DeliveryCharge     decimal.Decimal
	HandlingCharge     decimal.Decimal
	SmallCartSurcharge decimal.Decimal // zero when the subtotal reaches the threshold
	GrandTotal         decimal.Decimal
	Currency           valueobject.Currency
}

// Breakdown computes the bill. It has no side effects; an empty cart
// (subtotal 0) still carries every charge.
func (p PricingPolicy) Breakdown(subtotal decimal.Decimal) PricingBreakdown {
	surcharge := decimal.Zero
	if subtotal.LessThan(p.SmallCartThreshold) {
		surcharge = p.SmallCartSurcharge
	}
	return PricingBreakdown{
		Subtotal:           subtotal,
		DeliveryCharge:     p.DeliveryCharge,
		HandlingCharge:     p.HandlingCharge,
		SmallCartSurcharge: surcharge,
		GrandTotal:         subtotal.Add(p.DeliveryCharge).Add(p.HandlingCharge).Add(surcharge),
		Currency:           p.Currency,
	}
}

// SmallCartApplied reports whether the surcharge is part of the bill
func (b PricingBreakdown) SmallCartApplied() bool {
	return b.SmallCartSurcharge.IsPositive()
}
