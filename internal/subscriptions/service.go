package subscriptions

import (
	"context"

	"github.com/mikakort/IAPserver/pkg/db/models"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
)

// Service exposes read access to the subscription registry.
type Service interface {
	Get(ctx context.Context, userID string) (*models.SubscriptionSnapshot, error)
}

type service struct {
	repo Repository
}

// NewService wires the subscription lookup dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID string) (*models.SubscriptionSnapshot, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	snapshot, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription snapshot")
	}
	if snapshot == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription for user")
	}
	return snapshot, nil
}
