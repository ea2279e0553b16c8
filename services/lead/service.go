package lead

import (
	"context"

	"reviewfunnel/pkg/db/option"
	"reviewfunnel/pkg/errutil"
	"reviewfunnel/pkg/places"
	"reviewfunnel/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	node   *snowflake.Node
	lookup places.Lookup
	repo   repository.Repository[Lead]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Lookup places.Lookup
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node:   p.Node,
		lookup: p.Lookup,
		repo:   repository.ProvideStore[Lead](p.DB),
	}
}

type CreateSignupRequest struct {
	BusinessID            string `json:"business_id"`
	ContactEmail          string `json:"contact_email"`
	SubmittedBusinessName string `json:"business_name"`
}

// CreateSignup records a signup submission, snapshotting the business lookup
// data exactly once for this record.
func (s *Service) CreateSignup(ctx context.Context, req CreateSignupRequest) (*Lead, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("business_id", req.BusinessID),
	)

	if req.BusinessID == "" || req.ContactEmail == "" {
		return nil, errutil.BadRequest("business_id and contact_email are required")
	}

	snap, err := s.lookup.Lookup(ctx, req.BusinessID)
	if err != nil {
		zapLog.Error("business lookup failed", zap.Error(err))
		return nil, errutil.BadGateway("business lookup failed", errutil.WithErr(err))
	}

	rating := snap.Rating
	record := &Lead{
		ID:                    s.node.Generate().String(),
		BusinessID:            req.BusinessID,
		ContactEmail:          req.ContactEmail,
		SubmittedBusinessName: req.SubmittedBusinessName,
		LookupBusinessName:    snap.Name,
		LookupRating:          &rating,
		LookupReviewCount:     snap.ReviewCount,
		LookupReferenceURL:    snap.ReferenceURL,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zapLog.Error("failed to create lead", zap.Error(err))
		return nil, errutil.Internal("failed to create signup", errutil.WithErr(err))
	}

	return record, nil
}

// MostRecentByBusinessID returns the newest lead for a business id. Repeat
// signups for the same business are resolved by recency.
func (s *Service) MostRecentByBusinessID(ctx context.Context, businessID string) (*Lead, error) {
	record, err := s.repo.FindOne(ctx, &Lead{BusinessID: businessID},
		option.OrderBy("created_at DESC"),
	)
	if err != nil {
		zap.L().Error("failed query lead by business id", zap.String("business_id", businessID), zap.Error(err))
		return nil, errutil.Internal("failed to load signup", errutil.WithErr(err))
	}

	if record == nil {
		return nil, errutil.NotFound("signup not found")
	}

	return record, nil
}

// MostRecentByBusinessAndEmail is the stricter correlation variant used by
// checkout: the lead must match both keys.
func (s *Service) MostRecentByBusinessAndEmail(ctx context.Context, businessID, contactEmail string) (*Lead, error) {
	record, err := s.repo.FindOne(ctx, &Lead{BusinessID: businessID, ContactEmail: contactEmail},
		option.OrderBy("created_at DESC"),
	)
	if err != nil {
		return nil, errutil.Internal("failed to load signup", errutil.WithErr(err))
	}

	if record == nil {
		return nil, errutil.NotFound("signup not found")
	}

	return record, nil
}

type UpdateDetailsRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// UpdateSignupDetails applies only the supplied fields to the most recent
// lead for the business; unset optionals are never overwritten.
func (s *Service) UpdateSignupDetails(ctx context.Context, businessID string, req UpdateDetailsRequest) error {
	record, err := s.MostRecentByBusinessID(ctx, businessID)
	if err != nil {
		return err
	}

	patch := map[string]interface{}{}
	if req.DisplayName != nil {
		patch["custom_display_name"] = *req.DisplayName
	}
	if req.PhoneNumber != nil {
		patch["custom_phone_number"] = *req.PhoneNumber
	}

	if len(patch) == 0 {
		return nil
	}

	if err := s.repo.Update(ctx, record.ID, patch); err != nil {
		zap.L().Error("failed to update signup details", zap.String("lead_id", record.ID), zap.Error(err))
		return errutil.Internal("failed to update signup", errutil.WithErr(err))
	}

	return nil
}

// MarkWelcomeEmailSent flips the notification idempotency flag.
func (s *Service) MarkWelcomeEmailSent(ctx context.Context, leadID string) error {
	return s.repo.Update(ctx, leadID, map[string]interface{}{"welcome_email_sent": true})
}

// Get returns a lead by primary key, nil when absent.
func (s *Service) Get(ctx context.Context, leadID string) (*Lead, error) {
	return s.repo.FindOne(ctx, &Lead{ID: leadID})
}
