package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appcart "github.com/organicmart/storefront/internal/application/cart"
	"github.com/organicmart/storefront/internal/interfaces/http/dto"
	"github.com/organicmart/storefront/internal/interfaces/http/middleware"
)

// CartService is the application service the cart handler drives
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*appcart.CartResponse, error)
	AddItem(ctx context.Context, sessionID string, req appcart.AddItemRequest) (*appcart.CartResponse, error)
	UpdateQuantity(ctx context.Context, sessionID, productID, variantKey string, req appcart.UpdateQuantityRequest) (*appcart.CartResponse, error)
	RemoveItem(ctx context.Context, sessionID, productID, variantKey string) (*appcart.CartResponse, error)
	Clear(ctx context.Context, sessionID string) (*appcart.CartResponse, error)
	Drawer(ctx context.Context, sessionID string, action appcart.DrawerAction) (*appcart.CartResponse, error)
	BuyNow(ctx context.Context, sessionID string, req appcart.AddItemRequest) (*appcart.CheckoutSummaryResponse, error)
	CheckoutSummary(ctx context.Context, sessionID string) (*appcart.CheckoutSummaryResponse, error)
	Abandon(ctx context.Context, sessionID string) error
}

var _ CartService = (*appcart.CartService)(nil)

// CartView is a cart plus its formatted bill
type CartView struct {
	*appcart.CartResponse
	Display PricingDisplay `json:"display"`
}

// CheckoutView is a checkout summary plus its formatted bill
type CheckoutView struct {
	*appcart.CheckoutSummaryResponse
	Display PricingDisplay `json:"display"`
}

// CartHandler handles cart-related API endpoints
type CartHandler struct {
	BaseHandler
	service   CartService
	presenter *MoneyPresenter
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(service CartService, presenter *MoneyPresenter) *CartHandler {
	if presenter == nil {
		presenter = NewMoneyPresenter(DefaultLocale.String())
	}
	return &CartHandler{
		service:   service,
		presenter: presenter,
	}
}

// GetCart returns the shopper's cart
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.service.GetCart(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartView(cart))
}

// AddItem merges a product into the cart
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cart, err := h.service.AddItem(c.Request.Context(), middleware.GetCartSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartView(cart))
}

// UpdateQuantity sets the quantity of a slot. Quantities below 1 remove it.
// PUT /api/v1/cart/items/:product_id/quantity?variant=
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	slot, ok := h.bindSlot(c)
	if !ok {
		return
	}
	var req appcart.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cart, err := h.service.UpdateQuantity(c.Request.Context(), middleware.GetCartSession(c), slot.productID, slot.variant, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartView(cart))
}

// RemoveItem removes a slot
// DELETE /api/v1/cart/items/:product_id?variant=
func (h *CartHandler) RemoveItem(c *gin.Context) {
	slot, ok := h.bindSlot(c)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(c.Request.Context(), middleware.GetCartSession(c), slot.productID, slot.variant)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartView(cart))
}

// Clear empties the cart
// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.service.Clear(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartView(cart))
}

// Drawer opens, closes or toggles the cart drawer
// POST /api/v1/cart/drawer/:action
func (h *CartHandler) Drawer(c *gin.Context) {
	action := appcart.DrawerAction(c.Param("action"))

	cart, err := h.service.Drawer(c.Request.Context(), middleware.GetCartSession(c), action)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.cartView(cart))
}

// BuyNow adds a product and returns the checkout summary
// POST /api/v1/cart/buy-now
func (h *CartHandler) BuyNow(c *gin.Context) {
	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	summary, err := h.service.BuyNow(c.Request.Context(), middleware.GetCartSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.checkoutView(summary))
}

// CheckoutSummary returns the read-only order summary
// GET /api/v1/cart/checkout
func (h *CartHandler) CheckoutSummary(c *gin.Context) {
	summary, err := h.service.CheckoutSummary(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.checkoutView(summary))
}

// Abandon forgets the session's cart in memory and in the store
// DELETE /api/v1/cart/session
func (h *CartHandler) Abandon(c *gin.Context) {
	if err := h.service.Abandon(c.Request.Context(), middleware.GetCartSession(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type slotRef struct {
	productID string
	variant   string
}

func (h *CartHandler) bindSlot(c *gin.Context) (slotRef, bool) {
	var path dto.SlotPathRequest
	if err := c.ShouldBindUri(&path); err != nil {
		middleware.HandleValidationError(c, err)
		return slotRef{}, false
	}
	var query dto.VariantQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return slotRef{}, false
	}
	return slotRef{productID: path.ProductID, variant: query.Variant}, true
}

func (h *CartHandler) cartView(cart *appcart.CartResponse) CartView {
	return CartView{CartResponse: cart, Display: h.presenter.FormatPricing(cart.Pricing)}
}

func (h *CartHandler) checkoutView(summary *appcart.CheckoutSummaryResponse) CheckoutView {
	return CheckoutView{CheckoutSummaryResponse: summary, Display: h.presenter.FormatPricing(summary.Pricing)}
}
