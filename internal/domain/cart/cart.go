package cart

import (
	"github.com/shopspring/decimal"
)

// Cart is the shopping cart aggregate. It keeps line items in insertion
// order with at most one item per SlotKey. Cart is not safe for concurrent
// use; the application Engine serializes access.
type Cart struct {
	items      []LineItem
	drawerOpen bool
}

// New creates an empty cart
func New() *Cart {
	return &Cart{items: make([]LineItem, 0)}
}

// Restore rebuilds a cart from persisted items. Items go through the same
// merge rule as Add, and entries with a blank product id or a quantity
// below 1 are dropped, so a tampered snapshot still yields a valid cart.
// Quantities above MaxQuantity are clamped.
func Restore(items []LineItem) *Cart {
	c := New()
	for _, item := range items {
		key := NewSlotKey(item.ProductID, item.VariantKey)
		if key.ProductID == "" || item.Quantity < 1 || item.UnitPrice.IsNegative() {
			continue
		}
		item.ProductID = key.ProductID
		item.VariantKey = key.VariantKey
		c.Add(item)
	}
	return c
}

// Add merges the item into the cart. An existing slot keeps its price and
// display snapshot and only grows in quantity; otherwise the item is
// appended. The merged quantity saturates at MaxQuantity. Returns true when
// the cart changed.
func (c *Cart) Add(item LineItem) bool {
	if item.Quantity < 1 {
		return false
	}
	if idx := c.indexOf(item.Key()); idx >= 0 {
		current := c.items[idx].Quantity
		if current >= MaxQuantity {
			return false
		}
		// compare before summing so the addition cannot overflow
		if item.Quantity > MaxQuantity-current {
			c.items[idx].Quantity = MaxQuantity
		} else {
			c.items[idx].Quantity = current + item.Quantity
		}
		return true
	}
	item.Quantity = min(item.Quantity, MaxQuantity)
	c.items = append(c.items, item)
	return true
}

// UpdateQuantity sets the quantity of an existing slot. A quantity below 1
// removes the slot and one above MaxQuantity is clamped. Missing slots are
// left alone.
func (c *Cart) UpdateQuantity(productID, variantKey string, quantity int) bool {
	if quantity < 1 {
		return c.Remove(productID, variantKey)
	}
	quantity = min(quantity, MaxQuantity)
	idx := c.indexOf(NewSlotKey(productID, variantKey))
	if idx < 0 {
		return false
	}
	if c.items[idx].Quantity == quantity {
		return false
	}
	c.items[idx].Quantity = quantity
	return true
}

// Remove deletes the slot if present
func (c *Cart) Remove(productID, variantKey string) bool {
	idx := c.indexOf(NewSlotKey(productID, variantKey))
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// Clear empties the cart. Calling it on an empty cart is a no-op.
func (c *Cart) Clear() bool {
	if len(c.items) == 0 {
		return false
	}
	c.items = make([]LineItem, 0)
	return true
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the item in the given slot
func (c *Cart) Find(productID, variantKey string) (LineItem, bool) {
	idx := c.indexOf(NewSlotKey(productID, variantKey))
	if idx < 0 {
		return LineItem{}, false
	}
	return c.items[idx], true
}

// ItemCount returns the sum of quantities across all slots
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// SlotCount returns the number of distinct slots
func (c *Cart) SlotCount() int {
	return len(c.items)
}

// ItemsSubtotal returns the sum of UnitPrice * Quantity across all slots
func (c *Cart) ItemsSubtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart holds no items
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// OpenDrawer shows the cart drawer
func (c *Cart) OpenDrawer() { c.drawerOpen = true }

// CloseDrawer hides the cart drawer
func (c *Cart) CloseDrawer() { c.drawerOpen = false }

// ToggleDrawer flips the drawer flag
func (c *Cart) ToggleDrawer() { c.drawerOpen = !c.drawerOpen }

// DrawerOpen reports whether the drawer is shown
func (c *Cart) DrawerOpen() bool { return c.drawerOpen }

func (c *Cart) indexOf(key SlotKey) int {
	for i, item := range c.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}
