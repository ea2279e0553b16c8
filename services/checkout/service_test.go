package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/errutil"
	"reviewfunnel/pkg/places"
	"reviewfunnel/services/customer"
	"reviewfunnel/services/lead"
	"reviewfunnel/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeLookup struct{}

func (fakeLookup) Lookup(ctx context.Context, businessID string) (*places.Snapshot, error) {
	return &places.Snapshot{Name: "Trattoria Uno", ReviewCount: 132}, nil
}

type mockProvider struct {
	createCustomerFn     func(ctx context.Context, email string, metadata map[string]string) (string, error)
	createSubscriptionFn func(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutIntent, error)
	attachFn             func(ctx context.Context, paymentIntentID string, metadata map[string]string) error
	portalFn             func(ctx context.Context, customerID, returnURL string) (string, error)
}

func (m *mockProvider) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	if m.createCustomerFn != nil {
		return m.createCustomerFn(ctx, email, metadata)
	}
	return "cus_1", nil
}

func (m *mockProvider) CreateSubscription(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutIntent, error) {
	if m.createSubscriptionFn != nil {
		return m.createSubscriptionFn(ctx, customerID, metadata)
	}
	return &CheckoutIntent{
		CustomerID:      customerID,
		SubscriptionID:  "sub_1",
		PaymentIntentID: "pi_1",
		ClientSecret:    "pi_1_secret",
	}, nil
}

func (m *mockProvider) AttachIntentMetadata(ctx context.Context, paymentIntentID string, metadata map[string]string) error {
	if m.attachFn != nil {
		return m.attachFn(ctx, paymentIntentID, metadata)
	}
	return nil
}

func (m *mockProvider) PortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if m.portalFn != nil {
		return m.portalFn(ctx, customerID, returnURL)
	}
	return "https://billing.example.com/session", nil
}

func newTestService(t *testing.T, provider PaymentProvider) (*Service, *lead.Service, *customer.Service) {
	db := testutil.NewTestDB(t, &lead.Lead{}, &customer.Customer{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	leads := lead.NewService(lead.ServiceParams{DB: db, Node: node, Lookup: fakeLookup{}})
	customers := customer.NewService(customer.ServiceParams{DB: db})

	cfg := &config.Config{}
	cfg.Links.PortalReturnURL = "https://example.com/account"

	return &Service{
		provider:  provider,
		leads:     leads,
		customers: customers,
		config:    cfg,
	}, leads, customers
}

func seedLead(t *testing.T, leads *lead.Service) {
	t.Helper()
	_, err := leads.CreateSignup(context.Background(), lead.CreateSignupRequest{
		BusinessID:   "biz-1",
		ContactEmail: "owner@example.com",
	})
	require.NoError(t, err)
}

func TestCreateCheckoutStampsMetadata(t *testing.T) {
	var customerMeta, subscriptionMeta, intentMeta map[string]string
	provider := &mockProvider{
		createCustomerFn: func(ctx context.Context, email string, metadata map[string]string) (string, error) {
			customerMeta = metadata
			return "cus_1", nil
		},
		createSubscriptionFn: func(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutIntent, error) {
			subscriptionMeta = metadata
			return &CheckoutIntent{CustomerID: customerID, SubscriptionID: "sub_1", PaymentIntentID: "pi_1", ClientSecret: "pi_1_secret"}, nil
		},
		attachFn: func(ctx context.Context, paymentIntentID string, metadata map[string]string) error {
			intentMeta = metadata
			return nil
		},
	}
	svc, leads, _ := newTestService(t, provider)
	seedLead(t, leads)

	resp, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{
		BusinessID:   "biz-1",
		ContactEmail: "owner@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "pi_1_secret", resp.ClientSecret)

	for _, meta := range []map[string]string{customerMeta, subscriptionMeta, intentMeta} {
		require.Equal(t, "biz-1", meta[MetadataBusinessID])
		require.Equal(t, "owner@example.com", meta[MetadataContactEmail])
	}
}

func TestCreateCheckoutNoLead(t *testing.T) {
	svc, _, _ := newTestService(t, &mockProvider{})

	_, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{
		BusinessID:   "biz-unknown",
		ContactEmail: "owner@example.com",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))
}

func TestCreateCheckoutMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t, &mockProvider{})

	_, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{BusinessID: "biz-1"})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadRequest, errutil.StatusOf(err))
}

func TestCreateCheckoutProviderFailure(t *testing.T) {
	provider := &mockProvider{
		createSubscriptionFn: func(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutIntent, error) {
			return nil, errors.New("provider down")
		},
	}
	svc, leads, _ := newTestService(t, provider)
	seedLead(t, leads)

	_, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{
		BusinessID:   "biz-1",
		ContactEmail: "owner@example.com",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadGateway, errutil.StatusOf(err))
}

func TestCreateCheckoutMissingClientSecret(t *testing.T) {
	provider := &mockProvider{
		createSubscriptionFn: func(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutIntent, error) {
			return &CheckoutIntent{CustomerID: customerID, SubscriptionID: "sub_1"}, nil
		},
	}
	svc, leads, _ := newTestService(t, provider)
	seedLead(t, leads)

	_, err := svc.CreateCheckout(context.Background(), CreateCheckoutRequest{
		BusinessID:   "biz-1",
		ContactEmail: "owner@example.com",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadGateway, errutil.StatusOf(err))
}

func TestCreatePortalLink(t *testing.T) {
	var gotReturnURL string
	provider := &mockProvider{
		portalFn: func(ctx context.Context, customerID, returnURL string) (string, error) {
			gotReturnURL = returnURL
			return "https://billing.example.com/session", nil
		},
	}
	svc, _, customers := newTestService(t, provider)

	require.NoError(t, customers.Provision(context.Background(), &customer.Customer{
		CustomerID:         "cus_1",
		ContactEmail:       "owner@example.com",
		BusinessID:         "biz-1",
		SubscriptionStatus: customer.Active,
		SignupTimestamp:    time.Now(),
	}))

	resp, err := svc.CreatePortalLink(context.Background(), PortalLinkRequest{CustomerID: "cus_1"})
	require.NoError(t, err)
	require.Equal(t, "https://billing.example.com/session", resp.PortalURL)
	require.Equal(t, "https://example.com/account", gotReturnURL)
}

func TestCreatePortalLinkUnknownCustomer(t *testing.T) {
	svc, _, _ := newTestService(t, &mockProvider{})

	_, err := svc.CreatePortalLink(context.Background(), PortalLinkRequest{CustomerID: "cus_ghost"})
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))
}
