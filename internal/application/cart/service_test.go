package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/organicmart/storefront/internal/domain/cart"
	"github.com/organicmart/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*CartService, *memoryStore) {
	store := newMemoryStore()
	registry := NewSessionRegistry(RegistryConfig{Store: store, Pricing: cart.DefaultPricingPolicy()})
	return NewCartService(registry), store
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func pricePtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func addRequest(productID string, price int64) AddItemRequest {
	return AddItemRequest{
		ProductID: productID,
		UnitPrice: pricePtr(price),
		Name:      "Organic " + productID,
		Unit:      "kg",
	}
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and merges", func(t *testing.T) {
		svc, _ := newTestService()
		session := uuid.NewString()

		req := addRequest("apple", 50)
		req.Quantity = intPtr(2)
		_, err := svc.AddItem(ctx, session, req)
		require.NoError(t, err)

		resp, err := svc.AddItem(ctx, session, addRequest("apple", 55))
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 3, resp.Items[0].Quantity)
		assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, "kg", resp.Items[0].UnitLabel)
		assert.True(t, resp.Persisted)
	})

	t.Run("null and empty variant share a slot", func(t *testing.T) {
		svc, _ := newTestService()
		session := uuid.NewString()

		_, err := svc.AddItem(ctx, session, addRequest("rice", 80))
		require.NoError(t, err)
		req := addRequest("rice", 80)
		req.VariantKey = strPtr("")
		resp, err := svc.AddItem(ctx, session, req)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.SlotCount)
		assert.Equal(t, 2, resp.ItemCount)
	})

	t.Run("rejects invalid line items", func(t *testing.T) {
		svc, store := newTestService()
		req := addRequest("apple", -1)

		_, err := svc.AddItem(ctx, uuid.NewString(), req)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
		assert.Equal(t, 0, store.saveCount())
	})

	t.Run("rejects a missing unit price", func(t *testing.T) {
		svc, store := newTestService()
		session := uuid.NewString()
		req := addRequest("apple", 50)
		req.UnitPrice = nil

		_, err := svc.AddItem(ctx, session, req)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
		assert.Equal(t, 0, store.saveCount())

		resp, err := svc.GetCart(ctx, session)
		require.NoError(t, err)
		assert.True(t, resp.IsEmpty)
	})

	t.Run("accepts an explicit zero price", func(t *testing.T) {
		svc, _ := newTestService()
		resp, err := svc.AddItem(ctx, uuid.NewString(), addRequest("sample", 0))
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.True(t, resp.Items[0].UnitPrice.IsZero())
	})

	t.Run("repeated large adds saturate at the slot limit", func(t *testing.T) {
		svc, _ := newTestService()
		session := uuid.NewString()
		req := addRequest("rice", 80)
		req.Quantity = intPtr(cart.MaxQuantity)

		_, err := svc.AddItem(ctx, session, req)
		require.NoError(t, err)
		resp, err := svc.AddItem(ctx, session, req)
		require.NoError(t, err)
		assert.Equal(t, cart.MaxQuantity, resp.ItemCount)
		assert.True(t, resp.Pricing.Subtotal.IsPositive())
	})

	t.Run("rejects a quantity above the slot limit", func(t *testing.T) {
		svc, _ := newTestService()
		req := addRequest("rice", 80)
		req.Quantity = intPtr(math.MaxInt)

		_, err := svc.AddItem(ctx, uuid.NewString(), req)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("rejects invalid sessions", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.AddItem(ctx, "nope", addRequest("apple", 1))
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	session := uuid.NewString()

	req := addRequest("honey", 250)
	req.VariantKey = strPtr("500g")
	_, err := svc.AddItem(ctx, session, req)
	require.NoError(t, err)

	resp, err := svc.UpdateQuantity(ctx, session, "honey", "500g", UpdateQuantityRequest{Quantity: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.ItemCount)

	resp, err = svc.UpdateQuantity(ctx, session, "honey", "", UpdateQuantityRequest{Quantity: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.ItemCount, "other variants are untouched")

	resp, err = svc.UpdateQuantity(ctx, session, "honey", "500g", UpdateQuantityRequest{Quantity: intPtr(0)})
	require.NoError(t, err)
	assert.True(t, resp.IsEmpty)

	_, err = svc.UpdateQuantity(ctx, session, "honey", "500g", UpdateQuantityRequest{})
	assert.Error(t, err)

	_, err = svc.AddItem(ctx, session, req)
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, session, "honey", "500g", UpdateQuantityRequest{Quantity: intPtr(math.MaxInt)})
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	resp, err = svc.RemoveItem(ctx, session, "honey", "500g")
	require.NoError(t, err)
	assert.True(t, resp.IsEmpty)

	_, err = svc.AddItem(ctx, session, addRequest("ghee", 400))
	require.NoError(t, err)
	resp, err = svc.RemoveItem(ctx, session, "ghee", "")
	require.NoError(t, err)
	assert.True(t, resp.IsEmpty)
}

func TestCartService_ClearAndDrawer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	session := uuid.NewString()

	_, _ = svc.AddItem(ctx, session, addRequest("apple", 50))
	resp, err := svc.Clear(ctx, session)
	require.NoError(t, err)
	assert.True(t, resp.IsEmpty)
	assert.True(t, resp.Pricing.GrandTotal.Equal(decimal.NewFromInt(47)))

	resp, err = svc.Drawer(ctx, session, DrawerToggle)
	require.NoError(t, err)
	assert.True(t, resp.DrawerOpen)
	resp, err = svc.Drawer(ctx, session, DrawerClose)
	require.NoError(t, err)
	assert.False(t, resp.DrawerOpen)

	_, err = svc.Drawer(ctx, session, DrawerAction("flip"))
	assert.Error(t, err)
}

func TestCartService_Checkout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	session := uuid.NewString()

	summary, err := svc.CheckoutSummary(ctx, session)
	require.NoError(t, err)
	assert.False(t, summary.CanPlaceOrder)
	assert.Equal(t, "Shipment of 0 items", summary.ShipmentLabel)

	_, err = svc.Drawer(ctx, session, DrawerOpen)
	require.NoError(t, err)

	req := addRequest("apple", 50)
	req.Quantity = intPtr(2)
	_, err = svc.AddItem(ctx, session, req)
	require.NoError(t, err)

	summary, err = svc.BuyNow(ctx, session, addRequest("rice", 30))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, "Shipment of 2 items", summary.ShipmentLabel)
	assert.True(t, summary.Pricing.GrandTotal.Equal(decimal.NewFromInt(157)))
	assert.Equal(t, PaymentMethodCashOnDelivery, summary.PaymentMethod)
	assert.True(t, summary.CanPlaceOrder)

	view, err := svc.GetCart(ctx, session)
	require.NoError(t, err)
	assert.False(t, view.DrawerOpen, "buy now closes the drawer")
}

func TestCartService_Abandon(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	session := uuid.NewString()

	_, _ = svc.AddItem(ctx, session, addRequest("apple", 50))
	require.NoError(t, svc.Abandon(ctx, session))
	assert.Equal(t, 1, store.deletes)

	resp, err := svc.GetCart(ctx, session)
	require.NoError(t, err)
	assert.True(t, resp.IsEmpty)
}

func TestShipmentLabel(t *testing.T) {
	assert.Equal(t, "Shipment of 1 item", ShipmentLabel(1))
	assert.Equal(t, "Shipment of 3 items", ShipmentLabel(3))
}
