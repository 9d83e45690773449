package subscriptions

import (
	"context"
	"errors"

	"github.com/mikakort/IAPserver/pkg/db/models"
	"github.com/mikakort/IAPserver/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for the subscription registry.
// Snapshots are never deleted; the only mutation path is Upsert through the
// ingestion pipeline.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserID(ctx context.Context, userID string) (*models.SubscriptionSnapshot, error)
	Upsert(ctx context.Context, snapshot *models.SubscriptionSnapshot) error
	CountByStatus(ctx context.Context, status enums.SubscriptionStatus) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a subscription repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByUserID(ctx context.Context, userID string) (*models.SubscriptionSnapshot, error) {
	var snapshot models.SubscriptionSnapshot
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *repositoryImpl) Upsert(ctx context.Context, snapshot *models.SubscriptionSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(snapshot).Error
}

func (r *repositoryImpl) CountByStatus(ctx context.Context, status enums.SubscriptionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubscriptionSnapshot{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
