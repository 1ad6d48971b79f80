package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/organicmart/storefront/internal/domain/cart"
	"github.com/organicmart/storefront/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mutation operation names reported to Metrics
const (
	OpAdd            = "add"
	OpUpdateQuantity = "update_quantity"
	OpRemove         = "remove"
	OpClear          = "clear"
)

// Restore outcomes reported to Metrics
const (
	RestoreRestored    = "restored"
	RestoreUpgraded    = "upgraded"
	RestoreNotFound    = "not_found"
	RestoreLoadError   = "load_error"
	RestoreDecodeError = "decode_error"
)

// Metrics records cart engine activity
type Metrics interface {
	RecordMutation(ctx context.Context, operation string)
	RecordPersistFailure(ctx context.Context)
	RecordRestore(ctx context.Context, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordMutation(context.Context, string) {}
func (noopMetrics) RecordPersistFailure(context.Context)   {}
func (noopMetrics) RecordRestore(context.Context, string)  {}

// EngineConfig holds the collaborators of an Engine
type EngineConfig struct {
	Store   cart.Store
	Key     string
	Pricing cart.PricingPolicy
	Logger  *zap.Logger
	Metrics Metrics
	Clock   func() time.Time
}

// View is a consistent read of the cart state
type View struct {
	Items      []cart.LineItem
	ItemCount  int
	SlotCount  int
	Subtotal   decimal.Decimal
	Breakdown  cart.PricingBreakdown
	DrawerOpen bool
	Revision   int64
	Persisted  bool // false when the last write-through failed
}

// Engine owns one cart and writes every mutation through to its Store.
// The in-memory cart is authoritative: storage failures are logged and
// remembered but never undo a mutation. Engine is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	cart    *cart.Cart
	store   cart.Store
	key     string
	pricing cart.PricingPolicy
	logger  *zap.Logger
	metrics Metrics
	clock   func() time.Time

	revision       int64
	lastPersistErr error
	lastAccess     time.Time
}

// NewEngine creates an engine and restores the cart stored under cfg.Key.
// Restoration fails open: a missing, unreadable or undecodable snapshot
// yields an empty cart.
func NewEngine(ctx context.Context, cfg EngineConfig) *Engine {
	e := &Engine{
		store:   cfg.Store,
		key:     cfg.Key,
		pricing: cfg.Pricing,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		clock:   cfg.Clock,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.metrics == nil {
		e.metrics = noopMetrics{}
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.pricing.Currency == "" {
		e.pricing = cart.DefaultPricingPolicy()
	}
	e.lastAccess = e.clock()
	e.cart = e.restore(ctx)
	return e
}

func (e *Engine) restore(ctx context.Context) *cart.Cart {
	log := logger.WithLogger(ctx, e.logger)
	if e.store == nil {
		e.metrics.RecordRestore(ctx, RestoreNotFound)
		return cart.New()
	}

	data, err := e.store.Load(ctx, e.key)
	if err != nil {
		if errors.Is(err, cart.ErrSnapshotNotFound) {
			e.metrics.RecordRestore(ctx, RestoreNotFound)
			return cart.New()
		}
		log.Warn("Failed to load cart snapshot, starting empty",
			zap.String("key", e.key), zap.Error(err))
		e.metrics.RecordRestore(ctx, RestoreLoadError)
		return cart.New()
	}

	snap, err := cart.DecodeSnapshot(data)
	if err != nil {
		log.Warn("Discarding unreadable cart snapshot",
			zap.String("key", e.key), zap.Error(err))
		e.metrics.RecordRestore(ctx, RestoreDecodeError)
		return cart.New()
	}

	restored := cart.Restore(snap.Items)
	e.revision = snap.Revision
	outcome := RestoreRestored
	if snap.Legacy {
		outcome = RestoreUpgraded
	}
	e.metrics.RecordRestore(ctx, outcome)
	log.Debug("Cart restored",
		zap.String("key", e.key),
		zap.Int64("revision", snap.Revision),
		zap.Int("slots", restored.SlotCount()),
		zap.Bool("legacy", snap.Legacy))
	return restored
}

// Key returns the storage key of the cart
func (e *Engine) Key() string {
	return e.key
}

// AddItem merges item into the cart and writes through
func (e *Engine) AddItem(ctx context.Context, item cart.LineItem) bool {
	return e.mutate(ctx, OpAdd, func(c *cart.Cart) bool { return c.Add(item) })
}

// UpdateQuantity sets an absolute quantity; below 1 removes the slot
func (e *Engine) UpdateQuantity(ctx context.Context, productID, variantKey string, quantity int) bool {
	return e.mutate(ctx, OpUpdateQuantity, func(c *cart.Cart) bool {
		return c.UpdateQuantity(productID, variantKey, quantity)
	})
}

// RemoveItem deletes a slot
func (e *Engine) RemoveItem(ctx context.Context, productID, variantKey string) bool {
	return e.mutate(ctx, OpRemove, func(c *cart.Cart) bool { return c.Remove(productID, variantKey) })
}

// Clear empties the cart
func (e *Engine) Clear(ctx context.Context) bool {
	return e.mutate(ctx, OpClear, func(c *cart.Cart) bool { return c.Clear() })
}

// mutate applies fn and persists the full item list. Storage is written
// even when fn reports no change, but only changes are counted as mutations.
func (e *Engine) mutate(ctx context.Context, op string, fn func(*cart.Cart) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := fn(e.cart)
	e.lastAccess = e.clock()
	if changed {
		e.metrics.RecordMutation(ctx, op)
	}
	e.persist(ctx, op)
	return changed
}

func (e *Engine) persist(ctx context.Context, op string) {
	if e.store == nil {
		return
	}
	revision := e.revision + 1
	data, err := cart.EncodeSnapshot(e.cart.Items(), revision, e.clock())
	if err == nil {
		err = e.store.Save(ctx, e.key, data)
	}
	if err != nil {
		e.lastPersistErr = err
		e.metrics.RecordPersistFailure(ctx)
		logger.WithLogger(ctx, e.logger).Warn("Cart write-through failed, keeping in-memory state",
			zap.String("key", e.key),
			zap.String("operation", op),
			zap.Int64("revision", revision),
			zap.Error(err))
		return
	}
	e.revision = revision
	e.lastPersistErr = nil
}

// LastPersistError returns the error of the most recent write-through, or
// nil when it succeeded
func (e *Engine) LastPersistError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPersistErr
}

// Items returns the line items in insertion order
func (e *Engine) Items() []cart.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Items()
}

// ItemCount returns the total quantity across slots
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.ItemCount()
}

// ItemsSubtotal returns the sum of line subtotals
func (e *Engine) ItemsSubtotal() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.ItemsSubtotal()
}

// PricingBreakdown returns the bill for the current items
func (e *Engine) PricingBreakdown() cart.PricingBreakdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pricing.Breakdown(e.cart.ItemsSubtotal())
}

// View returns items, counts, bill and drawer flag read under one lock
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastAccess = e.clock()
	subtotal := e.cart.ItemsSubtotal()
	return View{
		Items:      e.cart.Items(),
		ItemCount:  e.cart.ItemCount(),
		SlotCount:  e.cart.SlotCount(),
		Subtotal:   subtotal,
		Breakdown:  e.pricing.Breakdown(subtotal),
		DrawerOpen: e.cart.DrawerOpen(),
		Revision:   e.revision,
		Persisted:  e.lastPersistErr == nil,
	}
}

// OpenDrawer shows the drawer. Drawer state is never persisted.
func (e *Engine) OpenDrawer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.OpenDrawer()
}

// CloseDrawer hides the drawer
func (e *Engine) CloseDrawer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.CloseDrawer()
}

// ToggleDrawer flips the drawer flag
func (e *Engine) ToggleDrawer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.ToggleDrawer()
}

// DrawerOpen reports whether the drawer is shown
func (e *Engine) DrawerOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.DrawerOpen()
}

// touch records an access without reading or changing the cart
func (e *Engine) touch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastAccess = e.clock()
}

// LastAccess returns when the engine was last read or mutated
func (e *Engine) LastAccess() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAccess
}
