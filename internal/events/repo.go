package events

import (
	"context"
	"errors"

	"github.com/mikakort/IAPserver/pkg/db/models"
	"github.com/mikakort/IAPserver/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for the append-only event store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.NotificationEvent) error
	FindByReceiptAndType(ctx context.Context, receiptID string, notificationType enums.NotificationType) (*models.NotificationEvent, error)
	CountAll(ctx context.Context) (int64, error)
	CountByType(ctx context.Context) (map[enums.NotificationType]int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an event repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, event *models.NotificationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) FindByReceiptAndType(ctx context.Context, receiptID string, notificationType enums.NotificationType) (*models.NotificationEvent, error) {
	var event models.NotificationEvent
	err := r.db.WithContext(ctx).
		Where("receipt_id = ? AND notification_type = ?", receiptID, notificationType).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationEvent{}).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountByType(ctx context.Context) (map[enums.NotificationType]int64, error) {
	type row struct {
		NotificationType enums.NotificationType
		Total            int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.NotificationEvent{}).
		Select("notification_type, COUNT(*) AS total").
		Group("notification_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.NotificationType]int64, len(rows))
	for _, r := range rows {
		counts[r.NotificationType] = r.Total
	}
	return counts, nil
}
