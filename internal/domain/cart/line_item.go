package cart

import (
	"strings"

	"github.com/organicmart/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultUnitLabel is shown when a line item has neither a variant nor a unit
const DefaultUnitLabel = "Standard"

// MaxQuantity is the largest quantity a single slot can hold. Merges and
// restores saturate at this value.
const MaxQuantity = 9999

// SlotKey identifies a cart slot. Two line items with the same key are merged.
type SlotKey struct {
	ProductID  string
	VariantKey string
}

// NewSlotKey normalizes the identifiers the same way NewLineItem does
func NewSlotKey(productID, variantKey string) SlotKey {
	return SlotKey{
		ProductID:  strings.TrimSpace(productID),
		VariantKey: strings.TrimSpace(variantKey),
	}
}

// Display carries rendering attributes captured from the catalog.
// Pricing and merge logic never read it.
type Display struct {
	Name     string
	ImageURL string
	Unit     string
	Brand    string
}

// LineItem is one slot of the cart
type LineItem struct {
	ProductID  string
	VariantKey string          // Empty string is the default variant
	UnitPrice  decimal.Decimal // Price snapshot taken when the item was first added
	Quantity   int             // 1..MaxQuantity while held in a cart
	Display    Display
}

// LineItemInput is the loosely-typed payload received from the catalog
// or from an API request. NewLineItem turns it into a LineItem.
type LineItemInput struct {
	ProductID  string
	VariantKey string
	UnitPrice  decimal.Decimal
	Quantity   *int // nil means 1
	Name       string
	ImageURL   string
	Images     []string // first entry wins over ImageURL
	Unit       string
	Brand      string
}

// NewLineItem validates the input and builds a LineItem
func NewLineItem(in LineItemInput) (LineItem, error) {
	key := NewSlotKey(in.ProductID, in.VariantKey)
	if key.ProductID == "" {
		return LineItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if in.UnitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if quantity < 1 {
		return LineItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if quantity > MaxQuantity {
		return LineItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot exceed 9999")
	}

	image := strings.TrimSpace(in.ImageURL)
	for _, candidate := range in.Images {
		if c := strings.TrimSpace(candidate); c != "" {
			image = c
			break
		}
	}

	return LineItem{
		ProductID:  key.ProductID,
		VariantKey: key.VariantKey,
		UnitPrice:  in.UnitPrice,
		Quantity:   quantity,
		Display: Display{
			Name:     strings.TrimSpace(in.Name),
			ImageURL: image,
			Unit:     strings.TrimSpace(in.Unit),
			Brand:    strings.TrimSpace(in.Brand),
		},
	}, nil
}

// Key returns the slot identity of the item
func (i LineItem) Key() SlotKey {
	return SlotKey{ProductID: i.ProductID, VariantKey: i.VariantKey}
}

// Subtotal returns UnitPrice * Quantity
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// UnitLabel returns the variant, falling back to the display unit and then
// to DefaultUnitLabel
func (i LineItem) UnitLabel() string {
	if i.VariantKey != "" {
		return i.VariantKey
	}
	if i.Display.Unit != "" {
		return i.Display.Unit
	}
	return DefaultUnitLabel
}
