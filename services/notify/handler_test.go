package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/mailer"
	"reviewfunnel/pkg/places"
	"reviewfunnel/services/lead"
	"reviewfunnel/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeLookup struct{}

func (fakeLookup) Lookup(ctx context.Context, businessID string) (*places.Snapshot, error) {
	return &places.Snapshot{Name: "Trattoria Uno"}, nil
}

type spyMailer struct {
	sent []mailer.Email
	err  error
}

func (s *spyMailer) Send(ctx context.Context, email mailer.Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

func newHandlers(t *testing.T, mail *spyMailer) (*Handlers, *lead.Service) {
	db := testutil.NewTestDB(t, &lead.Lead{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	leads := lead.NewService(lead.ServiceParams{DB: db, Node: node, Lookup: fakeLookup{}})

	cfg := &config.Config{}
	cfg.Links.DashboardURL = "https://dash.example.com"

	return NewHandlers(HandlersParams{Leads: leads, Mail: mail, Config: cfg}), leads
}

func TestHandleWelcomeEmail(t *testing.T) {
	mail := &spyMailer{}
	h, leads := newHandlers(t, mail)
	ctx := context.Background()

	record, err := leads.CreateSignup(ctx, lead.CreateSignupRequest{
		BusinessID:   "biz-1",
		ContactEmail: "owner@example.com",
	})
	require.NoError(t, err)

	task := NewWelcomeEmailTask(WelcomeEmailPayload{
		LeadID:       record.ID,
		CustomerID:   "cus_1",
		ContactEmail: "owner@example.com",
		BusinessName: "Trattoria Uno",
	})

	require.NoError(t, h.HandleWelcomeEmail(ctx, task))
	require.Len(t, mail.sent, 1)
	require.Equal(t, []string{"owner@example.com"}, mail.sent[0].To)

	got, err := leads.Get(ctx, record.ID)
	require.NoError(t, err)
	require.True(t, got.WelcomeEmailSent)

	// A redelivered task after a successful send is a no-op.
	require.NoError(t, h.HandleWelcomeEmail(ctx, task))
	require.Len(t, mail.sent, 1)
}

func TestHandleWelcomeEmailSendFailure(t *testing.T) {
	mail := &spyMailer{err: errors.New("smtp down")}
	h, leads := newHandlers(t, mail)
	ctx := context.Background()

	record, err := leads.CreateSignup(ctx, lead.CreateSignupRequest{
		BusinessID:   "biz-1",
		ContactEmail: "owner@example.com",
	})
	require.NoError(t, err)

	task := NewWelcomeEmailTask(WelcomeEmailPayload{
		LeadID:       record.ID,
		ContactEmail: "owner@example.com",
		BusinessName: "Trattoria Uno",
	})

	// The error propagates so the queue retries, and the flag stays unset.
	require.Error(t, h.HandleWelcomeEmail(ctx, task))

	got, err := leads.Get(ctx, record.ID)
	require.NoError(t, err)
	require.False(t, got.WelcomeEmailSent)
}

func TestHandleLoginLink(t *testing.T) {
	mail := &spyMailer{}
	h, _ := newHandlers(t, mail)

	task := NewLoginLinkTask(LoginLinkPayload{
		CustomerID:   "cus_1",
		ContactEmail: "owner@example.com",
		Token:        "secret-token",
	})

	require.NoError(t, h.HandleLoginLink(context.Background(), task))
	require.Len(t, mail.sent, 1)
	require.Contains(t, mail.sent[0].Text, "https://dash.example.com/login?token=secret-token")
}
