package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	appcart "github.com/organicmart/storefront/internal/application/cart"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockCartService is a mock implementation of CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*appcart.CartResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcart.CartResponse), args.Error(1)
}

func (m *MockCartService) summary(args mock.Arguments) (*appcart.CheckoutSummaryResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcart.CheckoutSummaryResponse), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, sessionID string) (*appcart.CartResponse, error) {
	return m.cart(m.Called(ctx, sessionID))
}

func (m *MockCartService) AddItem(ctx context.Context, sessionID string, req appcart.AddItemRequest) (*appcart.CartResponse, error) {
	return m.cart(m.Called(ctx, sessionID, req))
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, sessionID, productID, variantKey string, req appcart.UpdateQuantityRequest) (*appcart.CartResponse, error) {
	return m.cart(m.Called(ctx, sessionID, productID, variantKey, req))
}

func (m *MockCartService) RemoveItem(ctx context.Context, sessionID, productID, variantKey string) (*appcart.CartResponse, error) {
	return m.cart(m.Called(ctx, sessionID, productID, variantKey))
}

func (m *MockCartService) Clear(ctx context.Context, sessionID string) (*appcart.CartResponse, error) {
	return m.cart(m.Called(ctx, sessionID))
}

func (m *MockCartService) Drawer(ctx context.Context, sessionID string, action appcart.DrawerAction) (*appcart.CartResponse, error) {
	return m.cart(m.Called(ctx, sessionID, action))
}

func (m *MockCartService) BuyNow(ctx context.Context, sessionID string, req appcart.AddItemRequest) (*appcart.CheckoutSummaryResponse, error) {
	return m.summary(m.Called(ctx, sessionID, req))
}

func (m *MockCartService) CheckoutSummary(ctx context.Context, sessionID string) (*appcart.CheckoutSummaryResponse, error) {
	return m.summary(m.Called(ctx, sessionID))
}

func (m *MockCartService) Abandon(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

var _ CartService = (*MockCartService)(nil)

// stubPinger reports a fixed ping result
type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubCounter int

func (c stubCounter) Len() int { return int(c) }

var errStoreDown = errors.New("connection refused")
