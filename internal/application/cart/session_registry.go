package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/organicmart/storefront/internal/domain/cart"
	"github.com/organicmart/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultKeyPrefix prefixes every session's storage key
const DefaultKeyPrefix = "cart:"

// ErrInvalidSession is returned for session ids that are not UUIDs
var ErrInvalidSession = shared.NewDomainError("INVALID_SESSION", "Cart session id must be a UUID")

// RegistryConfig configures a SessionRegistry
type RegistryConfig struct {
	Store       cart.Store
	Pricing     cart.PricingPolicy
	KeyPrefix   string
	IdleTimeout time.Duration // zero disables Sweep
	Logger      *zap.Logger
	Metrics     Metrics
	Clock       func() time.Time
}

// SessionRegistry maps shopper sessions to their cart engines. Engines are
// created on first use, restored from the store, and dropped from memory
// after IdleTimeout. Dropping an engine never deletes its snapshot.
type SessionRegistry struct {
	mu      sync.Mutex
	engines map[uuid.UUID]*Engine
	cfg     RegistryConfig
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry(cfg RegistryConfig) *SessionRegistry {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &SessionRegistry{
		engines: make(map[uuid.UUID]*Engine),
		cfg:     cfg,
	}
}

// ParseSessionID validates a session id
func ParseSessionID(sessionID string) (uuid.UUID, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidSession
	}
	return id, nil
}

// StorageKey returns the store key for a session
func (r *SessionRegistry) StorageKey(id uuid.UUID) string {
	return r.cfg.KeyPrefix + id.String()
}

// Engine returns the engine for sessionID, restoring it on first use. A
// cached engine is marked as accessed before the registry lock is released,
// so a concurrent Sweep never drops an engine that was just handed out.
func (r *SessionRegistry) Engine(ctx context.Context, sessionID string) (*Engine, error) {
	id, err := ParseSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	e, ok := r.engines[id]
	if ok {
		e.touch()
	}
	r.mu.Unlock()
	if ok {
		return e, nil
	}

	// Restore outside the lock; a concurrent first request for the same
	// session keeps whichever engine was registered first.
	restored := NewEngine(ctx, EngineConfig{
		Store:   r.cfg.Store,
		Key:     r.StorageKey(id),
		Pricing: r.cfg.Pricing,
		Logger:  r.cfg.Logger.With(zap.String("cart_session", id.String())),
		Metrics: r.cfg.Metrics,
		Clock:   r.cfg.Clock,
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.engines[id]; ok {
		e.touch()
		return e, nil
	}
	r.engines[id] = restored
	return restored, nil
}

// Evict drops the in-memory engine for sessionID
func (r *SessionRegistry) Evict(sessionID string) bool {
	id, err := ParseSessionID(sessionID)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[id]; !ok {
		return false
	}
	delete(r.engines, id)
	return true
}

// Discard evicts the session and deletes its persisted snapshot when the
// store supports deletion
func (r *SessionRegistry) Discard(ctx context.Context, sessionID string) error {
	id, err := ParseSessionID(sessionID)
	if err != nil {
		return err
	}
	r.Evict(sessionID)
	deleter, ok := r.cfg.Store.(cart.Deleter)
	if !ok {
		return nil
	}
	if err := deleter.Delete(ctx, r.StorageKey(id)); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}

// Len returns the number of live engines
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Sweep drops engines idle for longer than IdleTimeout and returns how
// many were dropped
func (r *SessionRegistry) Sweep(now time.Time) int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, e := range r.engines {
		if now.Sub(e.LastAccess()) > r.cfg.IdleTimeout {
			delete(r.engines, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle sessions every interval until ctx is done
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.cfg.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.cfg.Clock()); n > 0 {
				r.cfg.Logger.Debug("Swept idle cart sessions", zap.Int("dropped", n), zap.Int("live", r.Len()))
			}
		}
	}
}
