package cart

import (
	"context"

	"github.com/organicmart/storefront/internal/domain/cart"
	"github.com/organicmart/storefront/internal/domain/shared"
	"github.com/organicmart/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

const spanService = "cart"

// CartService handles cart operations for shopper sessions
type CartService struct {
	registry *SessionRegistry
}

// NewCartService creates a new CartService
func NewCartService(registry *SessionRegistry) *CartService {
	return &CartService{registry: registry}
}

// Registry returns the underlying session registry
func (s *CartService) Registry() *SessionRegistry {
	return s.registry
}

// GetCart returns the cart of a session
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*CartResponse, error) {
	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.respond(sessionID, engine), nil
}

// AddItem validates the request and merges the item into the cart
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*CartResponse, error) {
	ctx, span := s.startSpan(ctx, "add_item", sessionID)
	defer span.End()

	item, err := req.ToLineItem()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, item.ProductID,
		telemetry.SpanAttrVariantKey, item.VariantKey,
		telemetry.SpanAttrQuantity, item.Quantity,
	)

	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrChanged, engine.AddItem(ctx, item))
	return s.respond(sessionID, engine), nil
}

// UpdateQuantity sets the quantity of a slot; below 1 removes it
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID, variantKey string, req UpdateQuantityRequest) (*CartResponse, error) {
	ctx, span := s.startSpan(ctx, "update_quantity", sessionID)
	defer span.End()

	if req.Quantity == nil {
		err := shared.NewDomainError("INVALID_QUANTITY", "Quantity is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if *req.Quantity > cart.MaxQuantity {
		err := shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot exceed 9999")
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrVariantKey, variantKey,
		telemetry.SpanAttrQuantity, *req.Quantity,
	)

	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrChanged, engine.UpdateQuantity(ctx, productID, variantKey, *req.Quantity))
	return s.respond(sessionID, engine), nil
}

// RemoveItem removes a slot
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID, variantKey string) (*CartResponse, error) {
	ctx, span := s.startSpan(ctx, "remove_item", sessionID)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrVariantKey, variantKey,
	)

	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrChanged, engine.RemoveItem(ctx, productID, variantKey))
	return s.respond(sessionID, engine), nil
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) (*CartResponse, error) {
	ctx, span := s.startSpan(ctx, "clear", sessionID)
	defer span.End()

	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrChanged, engine.Clear(ctx))
	return s.respond(sessionID, engine), nil
}

// Drawer applies a drawer action
func (s *CartService) Drawer(ctx context.Context, sessionID string, action DrawerAction) (*CartResponse, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_DRAWER_ACTION", "Drawer action must be open, close or toggle")
	}
	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch action {
	case DrawerOpen:
		engine.OpenDrawer()
	case DrawerClose:
		engine.CloseDrawer()
	case DrawerToggle:
		engine.ToggleDrawer()
	}
	return s.respond(sessionID, engine), nil
}

// BuyNow adds the item and returns the checkout summary
func (s *CartService) BuyNow(ctx context.Context, sessionID string, req AddItemRequest) (*CheckoutSummaryResponse, error) {
	ctx, span := s.startSpan(ctx, "buy_now", sessionID)
	defer span.End()

	item, err := req.ToLineItem()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	engine.AddItem(ctx, item)
	engine.CloseDrawer()

	summary := ToCheckoutSummaryResponse(sessionID, engine.View())
	telemetry.SetAttributes(span, telemetry.SpanAttrItemCount, summary.ItemCount)
	return &summary, nil
}

// CheckoutSummary returns the read-only order summary
func (s *CartService) CheckoutSummary(ctx context.Context, sessionID string) (*CheckoutSummaryResponse, error) {
	engine, err := s.registry.Engine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := ToCheckoutSummaryResponse(sessionID, engine.View())
	return &summary, nil
}

// Abandon drops the session's cart from memory and from the store
func (s *CartService) Abandon(ctx context.Context, sessionID string) error {
	ctx, span := s.startSpan(ctx, "abandon", sessionID)
	defer span.End()

	if err := s.registry.Discard(ctx, sessionID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

func (s *CartService) startSpan(ctx context.Context, method, sessionID string) (context.Context, trace.Span) {
	return telemetry.StartServiceSpan(ctx, spanService, method,
		telemetry.WithAttribute(telemetry.SpanAttrCartSession, sessionID),
	)
}

func (s *CartService) respond(sessionID string, engine *Engine) *CartResponse {
	response := ToCartResponse(sessionID, engine.View())
	return &response
}
