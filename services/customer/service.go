package customer

import (
	"context"
	"time"

	"reviewfunnel/pkg/errutil"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	repo *Repository
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo: NewRepository(RepositoryParams{DB: p.DB}),
	}
}

func (s *Service) Get(ctx context.Context, customerID string) (*Customer, error) {
	record, err := s.repo.FindOne(ctx, &Customer{CustomerID: customerID})
	if err != nil {
		zap.L().Error("failed query customer", zap.String("customer_id", customerID), zap.Error(err))
		return nil, errutil.Internal("failed to load customer", errutil.WithErr(err))
	}

	if record == nil {
		return nil, errutil.NotFound("customer not found")
	}

	return record, nil
}

// Provision writes the customer record with create-or-overwrite semantics
// keyed by customer id.
func (s *Service) Provision(ctx context.Context, record *Customer) error {
	if err := s.repo.Upsert(ctx, record); err != nil {
		zap.L().Error("failed to provision customer",
			zap.String("customer_id", record.CustomerID),
			zap.String("business_id", record.BusinessID),
			zap.Error(err),
		)
		return errutil.Internal("failed to provision customer", errutil.WithErr(err))
	}
	return nil
}

// Cancel marks an existing customer canceled. A cancellation for a record
// that does not exist is a data-integrity problem and is surfaced as such.
func (s *Service) Cancel(ctx context.Context, customerID string) error {
	affected, err := s.repo.UpdateStatus(ctx, customerID, Canceled)
	if err != nil {
		return errutil.Internal("failed to cancel customer", errutil.WithErr(err))
	}

	if affected == 0 {
		zap.L().Error("cancellation for unknown customer", zap.String("customer_id", customerID))
		return errutil.Internal("cancellation for unknown customer")
	}

	return nil
}

// CountInvite atomically increments the invite counter for an active
// customer. Returns false when the customer is missing or not active.
func (s *Service) CountInvite(ctx context.Context, customerID string) (bool, error) {
	affected, err := s.repo.IncrementInviteCount(ctx, customerID)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.repo.FindByEmail(ctx, email)
}

// ClaimRedemption records a physical-card refill request, at most one per
// calendar month.
func (s *Service) ClaimRedemption(ctx context.Context, customerID string, now time.Time) error {
	record, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}

	if last := record.LastRedemptionDate; last != nil {
		if last.Year() == now.Year() && last.Month() == now.Month() {
			return errutil.Conflict("redemption already claimed this month")
		}
	}

	affected, err := s.repo.SetRedemptionDate(ctx, customerID, now)
	if err != nil {
		return errutil.Internal("failed to record redemption", errutil.WithErr(err))
	}
	if affected == 0 {
		return errutil.Conflict("redemption already claimed this month")
	}

	return nil
}
