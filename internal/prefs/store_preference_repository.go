package prefs

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
)

// ErrPreferenceNotFound is returned when a user has no stored preference.
var ErrPreferenceNotFound = errors.New("store preference not found")

// StorePreferenceRepository persists the selected-store preference, the
// single durable key the session layer keeps across reloads.
type StorePreferenceRepository interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, storeID string) error
	Delete(ctx context.Context, userID string) error
}

// OpenDatabase opens the preference database and migrates its one table.
// Supported drivers mirror the deployment profiles: sqlite for local and
// tests, postgres for shared environments.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported preference db driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open preference db: %w", err)
	}
	if err := db.AutoMigrate(&domain.StorePreference{}); err != nil {
		return nil, fmt.Errorf("migrate preference db: %w", err)
	}
	return db, nil
}

type GormStorePreferenceRepository struct{ db *gorm.DB }

func NewStorePreferenceRepository(db *gorm.DB) StorePreferenceRepository {
	return &GormStorePreferenceRepository{db: db}
}

func (r *GormStorePreferenceRepository) Get(ctx context.Context, userID string) (string, error) {
	var p domain.StorePreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "store_preference", "get", "not_found")
			return "", ErrPreferenceNotFound
		}
		observability.RecordRepositoryOperation(ctx, "store_preference", "get", "error")
		return "", err
	}
	observability.RecordRepositoryOperation(ctx, "store_preference", "get", "success")
	return p.StoreID, nil
}

func (r *GormStorePreferenceRepository) Set(ctx context.Context, userID, storeID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"store_id", "updated_at"}),
		}).
		Create(&domain.StorePreference{UserID: userID, StoreID: storeID}).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "store_preference", "set", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "store_preference", "set", "success")
	return nil
}

// Delete removes the preference; deleting an absent row is not an error so
// logout stays idempotent.
func (r *GormStorePreferenceRepository) Delete(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.StorePreference{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "store_preference", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "store_preference", "delete", "success")
	return nil
}
