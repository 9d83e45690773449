package deliveries

import (
	"context"

	"github.com/mikakort/IAPserver/pkg/db/models"
	"github.com/mikakort/IAPserver/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for the append-only delivery log.
type Repository interface {
	Create(ctx context.Context, record *models.WebhookDelivery) error
	ListByEventID(ctx context.Context, eventID int64) ([]models.WebhookDelivery, error)
	CountByOutcome(ctx context.Context) (map[enums.DeliveryOutcome]int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a delivery log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, record *models.WebhookDelivery) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repositoryImpl) ListByEventID(ctx context.Context, eventID int64) ([]models.WebhookDelivery, error) {
	var records []models.WebhookDelivery
	err := r.db.WithContext(ctx).
		Where("notification_event_id = ?", eventID).
		Order("attempted_at ASC, id ASC").
		Find(&records).Error
	return records, err
}

func (r *repositoryImpl) CountByOutcome(ctx context.Context) (map[enums.DeliveryOutcome]int64, error) {
	type row struct {
		Outcome enums.DeliveryOutcome
		Total   int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.WebhookDelivery{}).
		Select("outcome, COUNT(*) AS total").
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.DeliveryOutcome]int64, len(rows))
	for _, r := range rows {
		counts[r.Outcome] = r.Total
	}
	return counts, nil
}
