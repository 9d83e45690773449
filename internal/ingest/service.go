package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mikakort/IAPserver/internal/dispatch"
	"github.com/mikakort/IAPserver/internal/events"
	"github.com/mikakort/IAPserver/internal/subscriptions"
	"github.com/mikakort/IAPserver/internal/transitions"
	"github.com/mikakort/IAPserver/pkg/db"
	"github.com/mikakort/IAPserver/pkg/db/models"
	"github.com/mikakort/IAPserver/pkg/enums"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
	"github.com/mikakort/IAPserver/pkg/locks"
	"github.com/mikakort/IAPserver/pkg/logger"
	"github.com/mikakort/IAPserver/pkg/metrics"
	"gorm.io/gorm"
)

// Dispatcher is the async relay the pipeline hands accepted events to.
type Dispatcher interface {
	Enqueue(summary dispatch.Summary)
}

type ServiceParams struct {
	SharedSecret string
	Events       events.Repository
	Snapshots    subscriptions.Repository
	Dispatcher   Dispatcher
	TxRunner     db.TxRunner
	Logger       *logger.Logger
	Metrics      *metrics.IngestMetrics
}

// Service is the ingestion pipeline: it owns the write path for events,
// snapshots, and (via the dispatcher) the delivery log.
type Service struct {
	verifier   *Verifier
	events     events.Repository
	snapshots  subscriptions.Repository
	dispatcher Dispatcher
	txRunner   db.TxRunner
	logg       *logger.Logger
	metrics    *metrics.IngestMetrics
	userLocks  *locks.Keyed
}

// Result reports the pipeline decision for one notification.
type Result struct {
	EventID   int64 `json:"event_id"`
	Duplicate bool  `json:"duplicate"`
}

func NewService(params ServiceParams) (*Service, error) {
	verifier, err := NewVerifier(params.SharedSecret)
	if err != nil {
		return nil, err
	}
	if params.Events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "events repository required")
	}
	if params.Snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions repository required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dispatcher required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}

	return &Service{
		verifier:   verifier,
		events:     params.Events,
		snapshots:  params.Snapshots,
		dispatcher: params.Dispatcher,
		txRunner:   params.TxRunner,
		logg:       params.Logger,
		metrics:    params.Metrics,
		userLocks:  locks.NewKeyed(),
	}, nil
}

// Process runs one notification through verify, idempotency check,
// transactional persistence, and async dispatch. Rejections surface as a
// generic validation error so callers cannot distinguish a bad secret from a
// malformed payload; persistence failures surface as internal errors and the
// sender is expected to redeliver.
func (s *Service) Process(ctx context.Context, rawPayload []byte) (*Result, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveProcessDuration(time.Since(start))
	}()

	var req StatusUpdateRequest
	if err := json.Unmarshal(rawPayload, &req); err != nil {
		s.metrics.IncRejected("malformed_payload")
		return nil, s.reject(ctx, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed notification payload"))
	}

	if err := s.verifier.Verify(&req); err != nil {
		s.metrics.IncRejected(rejectionReason(err))
		return nil, s.reject(ctx, err)
	}

	notificationType := enums.NotificationType(req.NotificationType)
	info := req.LatestReceiptInfo
	userID := info.AppAccountToken

	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification_type": notificationType.String(),
		"user_id":           userID,
		"transaction_id":    info.TransactionID,
	})

	if !notificationType.IsValid() {
		s.logg.Warn(ctx, "unrecognized notification type, snapshot transition is a no-op")
	}

	existing, err := s.events.FindByReceiptAndType(ctx, info.TransactionID, notificationType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup")
	}
	if existing != nil {
		s.metrics.IncDuplicate()
		s.logg.Info(ctx, "duplicate notification, state re-application skipped")
		s.dispatcher.Enqueue(s.summaryFor(existing, &req))
		return &Result{EventID: existing.ID, Duplicate: true}, nil
	}

	now := time.Now().UTC()
	event := models.NotificationEvent{
		ReceiptID:        info.TransactionID,
		NotificationType: notificationType,
		UserID:           userID,
		RawPayload:       json.RawMessage(rawPayload),
		ReceivedAt:       now,
	}

	duplicate := false
	// Snapshot read-modify-write must not interleave for the same user. The
	// lock covers only the transaction, never the dispatch enqueue below.
	err = func() error {
		unlock := s.userLocks.Lock(userID)
		defer unlock()

		return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
			eventRepo := s.events.WithTx(tx)
			snapshotRepo := s.snapshots.WithTx(tx)

			if err := eventRepo.Create(ctx, &event); err != nil {
				if !db.IsUniqueViolation(err, "notification_events") {
					return err
				}
				// Lost a redelivery race after the lookup above.
				raced, ferr := eventRepo.FindByReceiptAndType(ctx, info.TransactionID, notificationType)
				if ferr != nil {
					return ferr
				}
				if raced == nil {
					return err
				}
				event = *raced
				duplicate = true
				return nil
			}

			prev, err := snapshotRepo.FindByUserID(ctx, userID)
			if err != nil {
				return err
			}
			next := transitions.Apply(transitionInput(notificationType, &req), prev, userID, now)
			return snapshotRepo.Upsert(ctx, &next)
		})
	}()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist notification")
	}

	if duplicate {
		s.metrics.IncDuplicate()
	} else {
		s.metrics.IncAccepted(notificationType.String())
		s.logg.Info(ctx, "notification accepted")
	}

	s.dispatcher.Enqueue(s.summaryFor(&event, &req))

	return &Result{EventID: event.ID, Duplicate: duplicate}, nil
}

// reject logs the real cause and returns the generic client-visible
// rejection. The sender only learns that the notification was invalid.
func (s *Service) reject(ctx context.Context, cause error) error {
	s.logg.Warn(s.logg.WithField(ctx, "reason", pkgerrors.Dump(cause).TopMessage), "notification rejected")
	return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, "invalid notification")
}

func rejectionReason(err error) string {
	if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		return "secret_mismatch"
	}
	return "malformed_payload"
}

func transitionInput(notificationType enums.NotificationType, req *StatusUpdateRequest) transitions.Input {
	in := transitions.Input{
		Type:               notificationType,
		ProductID:          req.LatestReceiptInfo.ProductID,
		AutoRenewProductID: req.AutoRenewProductID,
		AutoRenew:          req.AutoRenewStatus,
	}
	// The nested transaction block wins over the top-level fallback.
	if nested := req.LatestReceiptInfo.AutoRenewStatus; nested != nil {
		in.AutoRenew = nested
	}
	if ms := req.LatestReceiptInfo.ExpiresDateMS; ms != nil {
		expires := time.UnixMilli(*ms).UTC()
		in.ExpiresAt = &expires
	}
	return in
}

func (s *Service) summaryFor(event *models.NotificationEvent, req *StatusUpdateRequest) dispatch.Summary {
	return dispatch.Summary{
		EventID:          event.ID,
		NotificationType: event.NotificationType.String(),
		UserID:           event.UserID,
		ProductID:        req.LatestReceiptInfo.ProductID,
		TransactionID:    event.ReceiptID,
		OccurredAt:       event.ReceivedAt,
	}
}
