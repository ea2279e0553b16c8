package checkout

import (
	"context"

	"reviewfunnel/pkg/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/fx"
)

// CheckoutIntent is what the orchestrator hands back after provider-side
// setup. The client secret goes to the original caller and nobody else.
type CheckoutIntent struct {
	CustomerID      string
	SubscriptionID  string
	PaymentIntentID string
	ClientSecret    string
}

// PaymentProvider abstracts the subscription provider so handlers receive an
// explicit collaborator instead of package-global client state.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error)
	CreateSubscription(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutIntent, error)
	AttachIntentMetadata(ctx context.Context, paymentIntentID string, metadata map[string]string) error
	PortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

var ProviderModule = fx.Module("checkout.provider",
	fx.Provide(NewStripeProvider),
)

type stripeProvider struct {
	api     *client.API
	priceID string
}

func NewStripeProvider(cfg *config.Config) PaymentProvider {
	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, nil)

	return &stripeProvider{
		api:     api,
		priceID: cfg.Stripe.PriceID,
	}
}

func (p *stripeProvider) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}

	return cust.ID, nil
}

func (p *stripeProvider) CreateSubscription(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutIntent, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(p.priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := p.api.Subscriptions.New(params)
	if err != nil {
		return nil, err
	}

	intent := &CheckoutIntent{
		CustomerID:     customerID,
		SubscriptionID: sub.ID,
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		intent.PaymentIntentID = sub.LatestInvoice.PaymentIntent.ID
		intent.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}

	return intent, nil
}

func (p *stripeProvider) AttachIntentMetadata(ctx context.Context, paymentIntentID string, metadata map[string]string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	_, err := p.api.PaymentIntents.Update(paymentIntentID, params)
	return err
}

func (p *stripeProvider) PortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", err
	}

	return sess.URL, nil
}
