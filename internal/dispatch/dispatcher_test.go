package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikakort/IAPserver/pkg/config"
	"github.com/mikakort/IAPserver/pkg/db/models"
	"github.com/mikakort/IAPserver/pkg/enums"
	"github.com/mikakort/IAPserver/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	mu      sync.Mutex
	records []models.WebhookDelivery
}

func (r *recordingRepo) Create(ctx context.Context, record *models.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *recordingRepo) ListByEventID(ctx context.Context, eventID int64) ([]models.WebhookDelivery, error) {
	return nil, nil
}

func (r *recordingRepo) CountByOutcome(ctx context.Context) (map[enums.DeliveryOutcome]int64, error) {
	return nil, nil
}

func (r *recordingRepo) all() []models.WebhookDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WebhookDelivery(nil), r.records...)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func runOne(t *testing.T, cfg config.WebhookConfig, summary Summary) (*recordingRepo, models.WebhookDelivery) {
	t.Helper()

	repo := &recordingRepo{}
	dispatcher, err := New(Params{Config: cfg, Repo: repo, Logger: testLogger()})
	require.NoError(t, err)

	dispatcher.Start(context.Background())
	dispatcher.Enqueue(summary)
	require.NoError(t, dispatcher.Close())

	records := repo.all()
	require.Len(t, records, 1)
	return repo, records[0]
}

func TestDeliver_SuccessRecordsOutcome(t *testing.T) {
	var got Summary
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	summary := Summary{
		EventID:          42,
		NotificationType: "INITIAL_BUY",
		UserID:           "user-1",
		ProductID:        "premium",
		TransactionID:    "txn-1",
		OccurredAt:       time.Now().UTC(),
	}
	_, record := runOne(t, config.WebhookConfig{TargetURL: srv.URL, Workers: 1}, summary)

	assert.Equal(t, enums.DeliveryOutcomeSuccess, record.Outcome)
	assert.Equal(t, "status 200", record.ResponseSummary)
	assert.Equal(t, int64(42), record.NotificationEventID)
	assert.Equal(t, int64(42), got.EventID)
	assert.Equal(t, "user-1", got.UserID)
}

func TestDeliver_ServerErrorRecordsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, record := runOne(t, config.WebhookConfig{TargetURL: srv.URL, Workers: 1}, Summary{EventID: 7})

	assert.Equal(t, enums.DeliveryOutcomeHTTPError, record.Outcome)
	assert.Equal(t, "status 500", record.ResponseSummary)
}

func TestDeliver_SlowTargetRecordsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := config.WebhookConfig{TargetURL: srv.URL, Timeout: 50 * time.Millisecond, Workers: 1}
	_, record := runOne(t, cfg, Summary{EventID: 7})

	assert.Equal(t, enums.DeliveryOutcomeTimeout, record.Outcome)
	assert.Contains(t, record.ResponseSummary, "timeout after")
}

func TestDeliver_NoTargetRecordsNotConfiguredWithoutCalling(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, record := runOne(t, config.WebhookConfig{Workers: 1}, Summary{EventID: 7})

	assert.Equal(t, enums.DeliveryOutcomeNotConfigured, record.Outcome)
	assert.Equal(t, "webhook target not set", record.ResponseSummary)
	assert.Zero(t, calls.Load())
}

func TestDispatcher_DrainsQueueOnClose(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	repo := &recordingRepo{}
	dispatcher, err := New(Params{
		Config: config.WebhookConfig{TargetURL: srv.URL, Workers: 2, QueueSize: 8},
		Repo:   repo,
		Logger: testLogger(),
	})
	require.NoError(t, err)

	dispatcher.Start(context.Background())
	for i := int64(1); i <= 5; i++ {
		dispatcher.Enqueue(Summary{EventID: i})
	}
	require.NoError(t, dispatcher.Close())

	assert.Equal(t, int64(5), calls.Load())
	assert.Len(t, repo.all(), 5)
}

func TestNew_RequiresRepoAndLogger(t *testing.T) {
	_, err := New(Params{Logger: testLogger()})
	require.Error(t, err)

	_, err = New(Params{Repo: &recordingRepo{}})
	require.Error(t, err)
}
