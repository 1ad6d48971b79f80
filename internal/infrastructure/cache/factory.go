package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/organicmart/storefront/internal/infrastructure/config"
	"github.com/organicmart/storefront/internal/infrastructure/logger"
	"github.com/organicmart/storefront/internal/infrastructure/persistence"
	"github.com/organicmart/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CartStoreFactory creates cart snapshot stores based on configuration
type CartStoreFactory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
	ttl                   time.Duration
	keyPrefix             string
}

// CartStoreFactoryOption is a functional option for configuring the factory
type CartStoreFactoryOption func(*CartStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store when Redis is unavailable
func WithInMemoryFallback(allow bool) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithTTL overrides the snapshot TTL for key-value backends
func WithTTL(ttl time.Duration) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.ttl = ttl
	}
}

// WithKeyPrefix sets the Redis namespace prepended to every cart key
func WithKeyPrefix(prefix string) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.keyPrefix = prefix
	}
}

// NewCartStoreFactory creates a new factory
func NewCartStoreFactory(cfg *config.Config, opts ...CartStoreFactoryOption) *CartStoreFactory {
	f := &CartStoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.Storage.AllowMemoryFallback,
		ttl:                   cfg.Storage.TTL,
		keyPrefix:             cfg.App.Name + ":",
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-backed store
func (f *CartStoreFactory) CreateRedisStore(ctx context.Context) (*RedisCartStore, error) {
	redisCfg := RedisConfig{
		Host:     f.cfg.Redis.Host,
		Port:     f.cfg.Redis.Port,
		Password: f.cfg.Redis.Password,
		DB:       f.cfg.Redis.DB,
	}

	store, err := NewRedisCartStore(ctx, redisCfg, f.keyPrefix, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cart store: %w", err)
	}
	return store, nil
}

// CreateSQLStore creates a GORM-backed store for postgres or sqlite
func (f *CartStoreFactory) CreateSQLStore(backend string) (*persistence.GormCartStore, error) {
	level := logger.MapGormLogLevel(f.cfg.Log.Level)

	var (
		db  *persistence.Database
		err error
	)
	switch backend {
	case config.StoragePostgres:
		db, err = persistence.NewDatabaseWithLogger(&f.cfg.Database, f.logger, level)
	case config.StorageSQLite:
		db, err = persistence.NewSQLiteDatabase(f.cfg.Storage.SQLitePath, f.logger, level)
	default:
		return nil, fmt.Errorf("unsupported SQL backend %q", backend)
	}
	if err != nil {
		return nil, err
	}

	system := "postgresql"
	if backend == config.StorageSQLite {
		system = "sqlite"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         f.cfg.Telemetry.DBTracing,
		DBSystem:        system,
		SlowQueryThresh: f.cfg.Telemetry.SlowQuery,
	}, f.logger)
	if err := tracing.Register(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	return persistence.NewGormCartStore(db), nil
}

// CreateInMemoryStore creates an in-memory store.
// WARNING: in-memory carts are lost on restart and are not shared across instances.
func (f *CartStoreFactory) CreateInMemoryStore() *InMemoryCartStore {
	return NewInMemoryCartStore(f.ttl)
}

// CreateStore creates the store for the configured backend. When Redis is
// unreachable and fallback is allowed, an in-memory store is returned instead.
func (f *CartStoreFactory) CreateStore(ctx context.Context) (CartStore, error) {
	backend := f.cfg.Storage.Backend

	switch backend {
	case config.StorageRedis:
		store, err := f.CreateRedisStore(ctx)
		if err == nil {
			f.logger.Info("using Redis cart store", zap.String("addr", f.cfg.Redis.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for cart storage but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory cart store. "+
			"Carts will not survive a restart.",
			zap.Error(err),
		)
		return f.CreateInMemoryStore(), nil

	case config.StoragePostgres, config.StorageSQLite:
		store, err := f.CreateSQLStore(backend)
		if err != nil {
			return nil, err
		}
		f.logger.Info("using SQL cart store", zap.String("backend", backend))
		return store, nil

	case config.StorageMemory, "":
		f.logger.Warn("using in-memory cart store; carts will not survive a restart")
		return f.CreateInMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

var _ CartStore = (*persistence.GormCartStore)(nil)
