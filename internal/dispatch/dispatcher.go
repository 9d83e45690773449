package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mikakort/IAPserver/internal/deliveries"
	"github.com/mikakort/IAPserver/pkg/config"
	"github.com/mikakort/IAPserver/pkg/enums"
	"github.com/mikakort/IAPserver/pkg/logger"
	"github.com/mikakort/IAPserver/pkg/metrics"
	"github.com/mikakort/IAPserver/pkg/db/models"
)

// Summary is the normalized event relayed to the downstream webhook consumer.
type Summary struct {
	EventID          int64     `json:"event_id"`
	NotificationType string    `json:"notification_type"`
	UserID           string    `json:"user_id"`
	ProductID        string    `json:"product_id"`
	TransactionID    string    `json:"transaction_id"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type Params struct {
	Config  config.WebhookConfig
	Repo    deliveries.Repository
	Logger  *logger.Logger
	Metrics *metrics.IngestMetrics
	Client  *http.Client
}

// Dispatcher relays event summaries to the configured webhook target through
// a bounded queue and a fixed worker pool. Each enqueued summary produces
// exactly one delivery record; attempts are never retried.
type Dispatcher struct {
	cfg     config.WebhookConfig
	repo    deliveries.Repository
	logg    *logger.Logger
	metrics *metrics.IngestMetrics
	client  *http.Client

	queue chan Summary
	wg    sync.WaitGroup
	once  sync.Once
}

func New(params Params) (*Dispatcher, error) {
	if params.Repo == nil {
		return nil, errors.New("deliveries repository is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	cfg := params.Config
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}

	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Dispatcher{
		cfg:     cfg,
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
		client:  client,
		queue:   make(chan Summary, cfg.QueueSize),
	}, nil
}

// Start launches the worker pool. Workers drain the queue until Close.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for summary := range d.queue {
				d.deliver(ctx, summary)
			}
		}()
	}
}

// Enqueue hands a summary to the worker pool. It blocks only while the
// bounded queue is at capacity; delivery outcome never reaches the caller.
func (d *Dispatcher) Enqueue(summary Summary) {
	d.queue <- summary
}

// Close stops accepting summaries and waits for in-flight deliveries.
func (d *Dispatcher) Close() error {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, summary Summary) {
	outcome, responseSummary := d.attempt(ctx, summary)

	record := &models.WebhookDelivery{
		NotificationEventID: summary.EventID,
		AttemptedAt:         time.Now().UTC(),
		Outcome:             outcome,
		ResponseSummary:     responseSummary,
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.Timeout)
	defer cancel()

	if err := d.repo.Create(recordCtx, record); err != nil {
		fields := map[string]any{"event_id": summary.EventID, "outcome": outcome.String()}
		d.logg.Error(d.logg.WithFields(ctx, fields), "failed to record webhook delivery", err)
		return
	}

	d.metrics.IncDelivery(outcome.String())

	if outcome != enums.DeliveryOutcomeSuccess && outcome != enums.DeliveryOutcomeNotConfigured {
		fields := map[string]any{
			"event_id": summary.EventID,
			"outcome":  outcome.String(),
			"summary":  responseSummary,
		}
		d.logg.Warn(d.logg.WithFields(ctx, fields), "webhook delivery failed")
	}
}

func (d *Dispatcher) attempt(ctx context.Context, summary Summary) (enums.DeliveryOutcome, string) {
	if !d.cfg.Enabled() {
		return enums.DeliveryOutcomeNotConfigured, "webhook target not set"
	}

	body, err := json.Marshal(summary)
	if err != nil {
		return enums.DeliveryOutcomeHTTPError, fmt.Sprintf("encode payload: %v", err)
	}

	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, d.cfg.TargetURL, bytes.NewReader(body))
	if err != nil {
		return enums.DeliveryOutcomeHTTPError, fmt.Sprintf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return enums.DeliveryOutcomeTimeout, fmt.Sprintf("timeout after %s", d.cfg.Timeout)
		}
		return enums.DeliveryOutcomeHTTPError, fmt.Sprintf("transport error: %T", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return enums.DeliveryOutcomeSuccess, fmt.Sprintf("status %d", resp.StatusCode)
	}
	return enums.DeliveryOutcomeHTTPError, fmt.Sprintf("status %d", resp.StatusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
