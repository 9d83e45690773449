package stats

import (
	"context"

	"github.com/mikakort/IAPserver/internal/deliveries"
	"github.com/mikakort/IAPserver/internal/events"
	"github.com/mikakort/IAPserver/internal/subscriptions"
	"github.com/mikakort/IAPserver/pkg/enums"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
)

// Summary aggregates committed rows across the three stores. All queries are
// read-only; in-flight pipeline writes are invisible until committed.
type Summary struct {
	TotalEvents         int64            `json:"total_events"`
	EventsByType        map[string]int64 `json:"events_by_type"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
	DeliveriesByOutcome map[string]int64 `json:"deliveries_by_outcome"`
}

// Service provides the read-only reporting queries.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	events     events.Repository
	snapshots  subscriptions.Repository
	deliveries deliveries.Repository
}

// NewService wires the aggregator's read-only dependencies.
func NewService(eventsRepo events.Repository, snapshotsRepo subscriptions.Repository, deliveriesRepo deliveries.Repository) (Service, error) {
	if eventsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "events repository required")
	}
	if snapshotsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	if deliveriesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "deliveries repository required")
	}
	return &service{
		events:     eventsRepo,
		snapshots:  snapshotsRepo,
		deliveries: deliveriesRepo,
	}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	total, err := s.events.CountAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count events")
	}

	byType, err := s.events.CountByType(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count events by type")
	}

	active, err := s.snapshots.CountByStatus(ctx, enums.SubscriptionStatusActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active snapshots")
	}

	byOutcome, err := s.deliveries.CountByOutcome(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count deliveries")
	}

	summary := &Summary{
		TotalEvents:         total,
		EventsByType:        make(map[string]int64, len(byType)),
		ActiveSubscriptions: active,
		DeliveriesByOutcome: make(map[string]int64, len(byOutcome)),
	}
	for notificationType, count := range byType {
		summary.EventsByType[notificationType.String()] = count
	}
	for outcome, count := range byOutcome {
		summary.DeliveriesByOutcome[outcome.String()] = count
	}
	return summary, nil
}
