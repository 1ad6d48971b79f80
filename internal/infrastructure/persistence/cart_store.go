package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/organicmart/storefront/internal/domain/cart"
	"github.com/organicmart/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm/clause"
)

// GormCartStore persists cart snapshots in the cart_snapshots table
type GormCartStore struct {
	db  *Database
	now func() time.Time
}

// NewGormCartStore creates a new GormCartStore
func NewGormCartStore(db *Database) *GormCartStore {
	return &GormCartStore{db: db, now: time.Now}
}

// Load returns the snapshot stored under key
func (s *GormCartStore) Load(ctx context.Context, key string) ([]byte, error) {
	var rows []models.CartSnapshotModel
	if err := s.db.DB.WithContext(ctx).Where("cart_key = ?", key).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, cart.ErrSnapshotNotFound
	}
	return []byte(rows[0].Payload), nil
}

// Save upserts the snapshot stored under key
func (s *GormCartStore) Save(ctx context.Context, key string, data []byte) error {
	model := models.NewCartSnapshotModel(key, data, s.now())
	err := s.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "schema_version", "revision", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot stored under key
func (s *GormCartStore) Delete(ctx context.Context, key string) error {
	if err := s.db.DB.WithContext(ctx).Where("cart_key = ?", key).Delete(&models.CartSnapshotModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *GormCartStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the underlying database
func (s *GormCartStore) Close() error {
	return s.db.Close()
}

// Ensure GormCartStore implements the cart store ports
var (
	_ cart.Store   = (*GormCartStore)(nil)
	_ cart.Deleter = (*GormCartStore)(nil)
)
