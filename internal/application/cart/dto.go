package cart

import (
	"fmt"

	"github.com/organicmart/storefront/internal/domain/cart"
	"github.com/organicmart/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethodCashOnDelivery is the only payment method offered at checkout
const (
	PaymentMethodCashOnDelivery      = "cash_on_delivery"
	PaymentMethodCashOnDeliveryLabel = "Cash on Delivery"
)

// ==================== Requests ====================

// AddItemRequest carries a catalog product added to the cart
type AddItemRequest struct {
	ProductID  string           `json:"product_id" binding:"required,max=128"`
	VariantKey *string          `json:"variant_key" binding:"omitempty,max=64"` // null and "" both mean the default variant
	UnitPrice  *decimal.Decimal `json:"unit_price"`                            // required; 0 is a valid price
	Quantity   *int             `json:"quantity" binding:"omitempty,max=9999"` // defaults to 1
	Name       string           `json:"name" binding:"max=200"`
	ImageURL   string           `json:"image_url" binding:"max=2048"`
	Images     []string         `json:"images" binding:"max=20"`
	Unit       string           `json:"unit" binding:"max=50"`
	Brand      string           `json:"brand" binding:"max=100"`
}

// ToLineItem validates the request through cart.NewLineItem. A missing
// unit price is rejected rather than read as 0.
func (r AddItemRequest) ToLineItem() (cart.LineItem, error) {
	if r.UnitPrice == nil {
		return cart.LineItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price is required")
	}
	variant := ""
	if r.VariantKey != nil {
		variant = *r.VariantKey
	}
	return cart.NewLineItem(cart.LineItemInput{
		ProductID:  r.ProductID,
		VariantKey: variant,
		UnitPrice:  *r.UnitPrice,
		Quantity:   r.Quantity,
		Name:       r.Name,
		ImageURL:   r.ImageURL,
		Images:     r.Images,
		Unit:       r.Unit,
		Brand:      r.Brand,
	})
}

// UpdateQuantityRequest sets the absolute quantity of a slot. Values below 1 remove it.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=9999"`
}

// DrawerAction names a drawer toggle
type DrawerAction string

const (
	DrawerOpen   DrawerAction = "open"
	DrawerClose  DrawerAction = "close"
	DrawerToggle DrawerAction = "toggle"
)

// IsValid checks if the action is known
func (a DrawerAction) IsValid() bool {
	switch a {
	case DrawerOpen, DrawerClose, DrawerToggle:
		return true
	}
	return false
}

// ==================== Responses ====================

// LineItemResponse represents one cart slot
type LineItemResponse struct {
	ProductID  string          `json:"product_id"`
	VariantKey string          `json:"variant_key"`
	Name       string          `json:"name"`
	ImageURL   string          `json:"image_url"`
	Unit       string          `json:"unit"`
	UnitLabel  string          `json:"unit_label"`
	Brand      string          `json:"brand"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// PricingResponse is the bill for the cart
type PricingResponse struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DeliveryCharge     decimal.Decimal `json:"delivery_charge"`
	HandlingCharge     decimal.Decimal `json:"handling_charge"`
	SmallCartSurcharge decimal.Decimal `json:"small_cart_surcharge"`
	SmallCartApplied   bool            `json:"small_cart_applied"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	Currency           string          `json:"currency"`
}

// CartResponse represents the cart of one session
type CartResponse struct {
	SessionID  string             `json:"session_id"`
	Items      []LineItemResponse `json:"items"`
	ItemCount  int                `json:"item_count"`
	SlotCount  int                `json:"slot_count"`
	IsEmpty    bool               `json:"is_empty"`
	Pricing    PricingResponse    `json:"pricing"`
	DrawerOpen bool               `json:"drawer_open"`
	Revision   int64              `json:"revision"`
	Persisted  bool               `json:"persisted"`
}

// CheckoutSummaryResponse is the read-only order summary shown at checkout.
// No order is created.
type CheckoutSummaryResponse struct {
	SessionID          string             `json:"session_id"`
	Items              []LineItemResponse `json:"items"`
	ItemCount          int                `json:"item_count"`
	SlotCount          int                `json:"slot_count"`
	ShipmentLabel      string             `json:"shipment_label"`
	Pricing            PricingResponse    `json:"pricing"`
	PaymentMethod      string             `json:"payment_method"`
	PaymentMethodLabel string             `json:"payment_method_label"`
	CanPlaceOrder      bool               `json:"can_place_order"`
}

// ToLineItemResponse converts a domain line item
func ToLineItemResponse(item cart.LineItem) LineItemResponse {
	return LineItemResponse{
		ProductID:  item.ProductID,
		VariantKey: item.VariantKey,
		Name:       item.Display.Name,
		ImageURL:   item.Display.ImageURL,
		Unit:       item.Display.Unit,
		UnitLabel:  item.UnitLabel(),
		Brand:      item.Display.Brand,
		UnitPrice:  item.UnitPrice,
		Quantity:   item.Quantity,
		Subtotal:   item.Subtotal(),
	}
}

// ToPricingResponse converts a pricing breakdown
func ToPricingResponse(b cart.PricingBreakdown) PricingResponse {
	return PricingResponse{
		Subtotal:           b.Subtotal,
		DeliveryCharge:     b.DeliveryCharge,
		HandlingCharge:     b.HandlingCharge,
		SmallCartSurcharge: b.SmallCartSurcharge,
		SmallCartApplied:   b.SmallCartApplied(),
		GrandTotal:         b.GrandTotal,
		Currency:           string(b.Currency),
	}
}

// ToCartResponse converts an engine view
func ToCartResponse(sessionID string, v View) CartResponse {
	items := make([]LineItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, ToLineItemResponse(item))
	}
	return CartResponse{
		SessionID:  sessionID,
		Items:      items,
		ItemCount:  v.ItemCount,
		SlotCount:  v.SlotCount,
		IsEmpty:    v.SlotCount == 0,
		Pricing:    ToPricingResponse(v.Breakdown),
		DrawerOpen: v.DrawerOpen,
		Revision:   v.Revision,
		Persisted:  v.Persisted,
	}
}

// ToCheckoutSummaryResponse converts an engine view into the checkout summary
func ToCheckoutSummaryResponse(sessionID string, v View) CheckoutSummaryResponse {
	c := ToCartResponse(sessionID, v)
	return CheckoutSummaryResponse{
		SessionID:          sessionID,
		Items:              c.Items,
		ItemCount:          c.ItemCount,
		SlotCount:          c.SlotCount,
		ShipmentLabel:      ShipmentLabel(c.SlotCount),
		Pricing:            c.Pricing,
		PaymentMethod:      PaymentMethodCashOnDelivery,
		PaymentMethodLabel: PaymentMethodCashOnDeliveryLabel,
		CanPlaceOrder:      !c.IsEmpty,
	}
}

// ShipmentLabel describes a shipment by its number of distinct slots
func ShipmentLabel(slots int) string {
	if slots == 1 {
		return "Shipment of 1 item"
	}
	return fmt.Sprintf("Shipment of %d items", slots)
}
