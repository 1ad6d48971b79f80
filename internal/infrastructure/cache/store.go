// Package cache provides the key-value backends for cart snapshots.
package cache

import (
	"context"

	"github.com/organicmart/storefront/internal/domain/cart"
)

// CartStore is a snapshot store that can also delete, be health-checked and be closed
type CartStore interface {
	cart.Store
	cart.Deleter
	Ping(ctx context.Context) error
	Close() error
}
