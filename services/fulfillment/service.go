package fulfillment

import (
	"context"
	"encoding/json"
	"time"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/errutil"
	"reviewfunnel/pkg/repository"
	"reviewfunnel/pkg/task"
	"reviewfunnel/services/checkout"
	"reviewfunnel/services/customer"
	"reviewfunnel/services/lead"
	"reviewfunnel/services/notify"

	"github.com/bwmarrin/snowflake"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event types this state machine acts on. Anything else that authenticates
// is acknowledged and ignored so the provider stops redelivering it.
const (
	EventPaymentSucceeded    = "payment_intent.succeeded"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

type Service struct {
	secret    string
	leads     *lead.Service
	customers *customer.Service
	enqueue   task.Enqueuer
	node      *snowflake.Node
	events    repository.Repository[WebhookEvent]
}

type ServiceParams struct {
	fx.In
	DB        *gorm.DB
	Config    *config.Config
	Leads     *lead.Service
	Customers *customer.Service
	Enqueue   task.Enqueuer
	Node      *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		secret:    p.Config.Stripe.WebhookSecret,
		leads:     p.Leads,
		customers: p.Customers,
		enqueue:   p.Enqueue,
		node:      p.Node,
		events:    repository.ProvideStore[WebhookEvent](p.DB),
	}
}

// HandleEvent runs one inbound provider event through
// verify → correlate → provision (or the cancellation path). Verification is
// a hard precondition; an unverified payload touches nothing. Every handled
// branch is safe under redelivery.
func (s *Service) HandleEvent(ctx context.Context, body []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(
		body,
		sigHeader,
		s.secret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		zap.L().Warn("webhook signature verification failed", zap.Error(err))
		return errutil.Unauthorized("signature verification failed", errutil.WithErr(err))
	}

	s.recordEvent(ctx, event)

	switch event.Type {
	case EventPaymentSucceeded:
		err = s.provision(ctx, event)
	case EventSubscriptionDeleted:
		err = s.cancel(ctx, event)
	default:
		// Acknowledged, not handled.
		return nil
	}

	s.markProcessed(ctx, event.ID, err)
	return err
}

// provision promotes the correlated lead to a customer record. The write is
// a keyed create-or-overwrite, so replaying the identical event reproduces
// the same record; no counters are touched here.
func (s *Service) provision(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return errutil.BadRequest("invalid payment intent payload", errutil.WithErr(err))
	}

	businessID := intent.Metadata[checkout.MetadataBusinessID]
	contactEmail := intent.Metadata[checkout.MetadataContactEmail]
	if businessID == "" || contactEmail == "" {
		// Fail closed: without correlation metadata we refuse to guess.
		zap.L().Error("payment intent missing correlation metadata", zap.String("event_id", event.ID))
		return errutil.BadRequest("missing correlation metadata")
	}

	if intent.Customer == nil || intent.Customer.ID == "" {
		zap.L().Error("payment intent missing customer id", zap.String("event_id", event.ID))
		return errutil.BadRequest("missing customer id")
	}
	customerID := intent.Customer.ID

	zapLog := zap.L().With(
		zap.String("event_id", event.ID),
		zap.String("business_id", businessID),
		zap.String("customer_id", customerID),
	)

	record, err := s.leads.MostRecentByBusinessID(ctx, businessID)
	if err != nil {
		if errutil.Is(err, errutil.StatusNotFound) {
			// A confirmed payment with no lead on file is a correlation
			// bug, not a droppable event.
			zapLog.Error("no lead found for confirmed payment")
			return errutil.Internal("no lead found for confirmed payment")
		}
		return err
	}

	businessName := record.LookupBusinessName
	if record.CustomDisplayName != nil && *record.CustomDisplayName != "" {
		businessName = *record.CustomDisplayName
	}

	if err := s.customers.Provision(ctx, &customer.Customer{
		CustomerID:         customerID,
		ContactEmail:       contactEmail,
		BusinessID:         record.BusinessID,
		BusinessName:       businessName,
		ReviewCountInitial: record.LookupReviewCount,
		ReviewCountCurrent: record.LookupReviewCount,
		SubscriptionStatus: customer.Active,
		SignupTimestamp:    time.Unix(event.Created, 0),
	}); err != nil {
		return err
	}

	zapLog.Info("customer provisioned")

	// Fire-and-forget: a slow or failing email queue must not fail the
	// provisioning response.
	if !record.WelcomeEmailSent {
		_, err := s.enqueue.Enqueue(notify.NewWelcomeEmailTask(notify.WelcomeEmailPayload{
			LeadID:       record.ID,
			CustomerID:   customerID,
			ContactEmail: contactEmail,
			BusinessName: businessName,
		}))
		if err != nil {
			zapLog.Error("failed to enqueue welcome email", zap.Error(err))
		}
	}

	return nil
}

func (s *Service) cancel(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return errutil.BadRequest("invalid subscription payload", errutil.WithErr(err))
	}

	if sub.Customer == nil || sub.Customer.ID == "" {
		return errutil.BadRequest("missing customer id")
	}

	return s.customers.Cancel(ctx, sub.Customer.ID)
}

func (s *Service) recordEvent(ctx context.Context, event stripe.Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		raw = nil
	}

	record := &WebhookEvent{
		ID:              s.node.Generate().String(),
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		Payload:         raw,
	}

	if err := s.events.Create(ctx, record); err != nil {
		// Duplicate delivery or a storage hiccup; the audit trail is
		// best-effort.
		zap.L().Debug("webhook event not recorded", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func (s *Service) markProcessed(ctx context.Context, providerEventID string, handleErr error) {
	record, err := s.events.FindOne(ctx, &WebhookEvent{ProviderEventID: providerEventID})
	if err != nil || record == nil {
		return
	}

	now := time.Now()
	patch := map[string]interface{}{"processed_at": now}
	if handleErr != nil {
		patch["processing_error"] = handleErr.Error()
	}

	if err := s.events.Update(ctx, record.ID, patch); err != nil {
		zap.L().Debug("failed to mark webhook event processed", zap.Error(err))
	}
}
