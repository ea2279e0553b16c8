package checkout

import (
	"context"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/errutil"
	"reviewfunnel/services/customer"
	"reviewfunnel/services/lead"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metadata keys attached to provider objects at checkout so the
// asynchronous confirmation event can be correlated back to its lead.
const (
	MetadataBusinessID   = "business_id"
	MetadataContactEmail = "contact_email"
)

type Service struct {
	provider  PaymentProvider
	leads     *lead.Service
	customers *customer.Service
	config    *config.Config
}

type ServiceParams struct {
	fx.In
	Provider  PaymentProvider
	Leads     *lead.Service
	Customers *customer.Service
	Config    *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		provider:  p.Provider,
		leads:     p.Leads,
		customers: p.Customers,
		config:    p.Config,
	}
}

type CreateCheckoutRequest struct {
	BusinessID   string `json:"business_id"`
	ContactEmail string `json:"contact_email"`
}

type CreateCheckoutResponse struct {
	ClientSecret string `json:"client_secret"`
}

// CreateCheckout sets up the provider-side customer and incomplete
// subscription for the most recent lead matching the business, stamping the
// correlation metadata on both the subscription and its payment intent.
//
// Each call creates a fresh provider customer; callers must not retry
// blindly without idempotency keys.
func (s *Service) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CreateCheckoutResponse, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("business_id", req.BusinessID),
	)

	if req.BusinessID == "" || req.ContactEmail == "" {
		return nil, errutil.BadRequest("business_id and contact_email are required")
	}

	record, err := s.leads.MostRecentByBusinessAndEmail(ctx, req.BusinessID, req.ContactEmail)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		MetadataBusinessID:   record.BusinessID,
		MetadataContactEmail: record.ContactEmail,
	}

	customerID, err := s.provider.CreateCustomer(ctx, record.ContactEmail, metadata)
	if err != nil {
		zapLog.Error("provider customer creation failed", zap.Error(err))
		return nil, errutil.BadGateway("payment setup failed", errutil.WithErr(err))
	}

	intent, err := s.provider.CreateSubscription(ctx, customerID, metadata)
	if err != nil {
		zapLog.Error("provider subscription creation failed", zap.String("customer_id", customerID), zap.Error(err))
		return nil, errutil.BadGateway("payment setup failed", errutil.WithErr(err))
	}

	if intent.PaymentIntentID == "" || intent.ClientSecret == "" {
		zapLog.Error("subscription returned no payment intent", zap.String("subscription_id", intent.SubscriptionID))
		return nil, errutil.BadGateway("payment setup failed")
	}

	// The confirmation webhook reads the metadata off the payment intent,
	// not the subscription, so stamp it there too.
	if err := s.provider.AttachIntentMetadata(ctx, intent.PaymentIntentID, metadata); err != nil {
		zapLog.Error("failed to attach intent metadata", zap.String("payment_intent_id", intent.PaymentIntentID), zap.Error(err))
		return nil, errutil.BadGateway("payment setup failed", errutil.WithErr(err))
	}

	return &CreateCheckoutResponse{ClientSecret: intent.ClientSecret}, nil
}

type PortalLinkRequest struct {
	CustomerID string `json:"customer_id"`
}

type PortalLinkResponse struct {
	PortalURL string `json:"portal_url"`
}

// CreatePortalLink hands back a provider-hosted billing portal URL for an
// existing customer.
func (s *Service) CreatePortalLink(ctx context.Context, req PortalLinkRequest) (*PortalLinkResponse, error) {
	if req.CustomerID == "" {
		return nil, errutil.BadRequest("customer_id is required")
	}

	record, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	url, err := s.provider.PortalSession(ctx, record.CustomerID, s.config.Links.PortalReturnURL)
	if err != nil {
		zap.L().Error("portal session failed", zap.String("customer_id", record.CustomerID), zap.Error(err))
		return nil, errutil.BadGateway("failed to create portal session", errutil.WithErr(err))
	}

	return &PortalLinkResponse{PortalURL: url}, nil
}
