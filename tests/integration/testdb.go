//go:build integration

// Package integration runs the storefront against real postgres and redis
// containers started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/organicmart/storefront/internal/infrastructure/cache"
	"github.com/organicmart/storefront/internal/infrastructure/config"
	"github.com/organicmart/storefront/internal/infrastructure/migration"
	"github.com/organicmart/storefront/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
)

var (
	postgresOnce sync.Once
	postgresCfg  config.DatabaseConfig
	postgresErr  error

	redisOnce sync.Once
	redisCfg  cache.RedisConfig
	redisErr  error
)

func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// sharedPostgres starts one migrated postgres container per test binary
func sharedPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	skipIfShort(t)

	postgresOnce.Do(func() {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx, postgresImage,
			tcpostgres.WithDatabase("storefront_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("storefront"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			postgresErr = fmt.Errorf("start postgres: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			postgresErr = err
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			postgresErr = err
			return
		}

		postgresCfg = config.DatabaseConfig{
			Host:            host,
			Port:            port.Int(),
			User:            "postgres",
			Password:        "storefront",
			DBName:          "storefront_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5,
			ConnMaxIdleTime: 1,
		}
		postgresErr = runMigrations(postgresCfg)
	})
	require.NoError(t, postgresErr)
	return postgresCfg
}

func runMigrations(cfg config.DatabaseConfig) error {
	db, err := persistence.NewDatabase(&cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, zap.NewNop())
	if err != nil {
		return err
	}
	return m.Up()
}

func openDatabase(t *testing.T, cfg config.DatabaseConfig) *persistence.Database {
	t.Helper()
	db, err := persistence.NewDatabaseWithLogger(&cfg, zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newPostgresStore opens a store on the shared container with an empty table
func newPostgresStore(t *testing.T) *persistence.GormCartStore {
	t.Helper()
	cfg := sharedPostgres(t)

	db, err := persistence.NewDatabaseWithLogger(&cfg, zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.DB.Exec("TRUNCATE TABLE cart_snapshots").Error)

	store := persistence.NewGormCartStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// sharedRedis starts one redis container per test binary
func sharedRedis(t *testing.T) cache.RedisConfig {
	t.Helper()
	skipIfShort(t)

	redisOnce.Do(func() {
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        redisImage,
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			redisErr = fmt.Errorf("start redis: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			redisErr = err
			return
		}
		port, err := container.MappedPort(ctx, "6379/tcp")
		if err != nil {
			redisErr = err
			return
		}
		redisCfg = cache.RedisConfig{Host: host, Port: port.Int()}
	})
	require.NoError(t, redisErr)
	return redisCfg
}

// newRedisStore opens a store in its own key namespace so tests stay isolated
func newRedisStore(t *testing.T, ttl time.Duration) *cache.RedisCartStore {
	t.Helper()
	cfg := sharedRedis(t)

	namespace := "test-" + strconv.FormatInt(time.Now().UnixNano(), 36) + ":"
	store, err := cache.NewRedisCartStore(context.Background(), cfg, namespace, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
