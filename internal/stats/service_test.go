package stats

import (
	"context"
	"fmt"
	"testing"

	"github.com/mikakort/IAPserver/internal/events"
	"github.com/mikakort/IAPserver/internal/subscriptions"
	"github.com/mikakort/IAPserver/pkg/db/models"
	"github.com/mikakort/IAPserver/pkg/enums"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubEventsRepo struct {
	total    int64
	totalErr error
	byType   map[enums.NotificationType]int64
}

func (s *stubEventsRepo) WithTx(tx *gorm.DB) events.Repository { return s }

func (s *stubEventsRepo) Create(ctx context.Context, event *models.NotificationEvent) error {
	return nil
}

func (s *stubEventsRepo) FindByReceiptAndType(ctx context.Context, receiptID string, notificationType enums.NotificationType) (*models.NotificationEvent, error) {
	return nil, nil
}

func (s *stubEventsRepo) CountAll(ctx context.Context) (int64, error) {
	return s.total, s.totalErr
}

func (s *stubEventsRepo) CountByType(ctx context.Context) (map[enums.NotificationType]int64, error) {
	return s.byType, nil
}

type stubSnapshotsRepo struct {
	active int64
}

func (s *stubSnapshotsRepo) WithTx(tx *gorm.DB) subscriptions.Repository { return s }

func (s *stubSnapshotsRepo) FindByUserID(ctx context.Context, userID string) (*models.SubscriptionSnapshot, error) {
	return nil, nil
}

func (s *stubSnapshotsRepo) Upsert(ctx context.Context, snapshot *models.SubscriptionSnapshot) error {
	return nil
}

func (s *stubSnapshotsRepo) CountByStatus(ctx context.Context, status enums.SubscriptionStatus) (int64, error) {
	if status == enums.SubscriptionStatusActive {
		return s.active, nil
	}
	return 0, nil
}

type stubDeliveriesRepo struct {
	byOutcome map[enums.DeliveryOutcome]int64
}

func (s *stubDeliveriesRepo) Create(ctx context.Context, record *models.WebhookDelivery) error {
	return nil
}

func (s *stubDeliveriesRepo) ListByEventID(ctx context.Context, eventID int64) ([]models.WebhookDelivery, error) {
	return nil, nil
}

func (s *stubDeliveriesRepo) CountByOutcome(ctx context.Context) (map[enums.DeliveryOutcome]int64, error) {
	return s.byOutcome, nil
}

func TestSummary_AggregatesAllStores(t *testing.T) {
	svc, err := NewService(
		&stubEventsRepo{
			total: 5,
			byType: map[enums.NotificationType]int64{
				enums.NotificationTypeInitialBuy: 2,
				enums.NotificationTypeRenewal:    3,
			},
		},
		&stubSnapshotsRepo{active: 2},
		&stubDeliveriesRepo{
			byOutcome: map[enums.DeliveryOutcome]int64{
				enums.DeliveryOutcomeSuccess:   4,
				enums.DeliveryOutcomeHTTPError: 1,
			},
		},
	)
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), summary.TotalEvents)
	assert.Equal(t, int64(2), summary.ActiveSubscriptions)
	assert.Equal(t, map[string]int64{"INITIAL_BUY": 2, "RENEWAL": 3}, summary.EventsByType)
	assert.Equal(t, map[string]int64{"success": 4, "http_error": 1}, summary.DeliveriesByOutcome)
}

func TestSummary_EmptyStoresYieldEmptyMaps(t *testing.T) {
	svc, err := NewService(&stubEventsRepo{}, &stubSnapshotsRepo{}, &stubDeliveriesRepo{})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalEvents)
	assert.NotNil(t, summary.EventsByType)
	assert.Empty(t, summary.EventsByType)
	assert.NotNil(t, summary.DeliveriesByOutcome)
}

func TestSummary_RepoFailureWrapped(t *testing.T) {
	svc, err := NewService(&stubEventsRepo{totalErr: fmt.Errorf("db down")}, &stubSnapshotsRepo{}, &stubDeliveriesRepo{})
	require.NoError(t, err)

	_, err = svc.Summary(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewService_RequiresAllRepos(t *testing.T) {
	_, err := NewService(nil, &stubSnapshotsRepo{}, &stubDeliveriesRepo{})
	require.Error(t, err)

	_, err = NewService(&stubEventsRepo{}, nil, &stubDeliveriesRepo{})
	require.Error(t, err)

	_, err = NewService(&stubEventsRepo{}, &stubSnapshotsRepo{}, nil)
	require.Error(t, err)
}
