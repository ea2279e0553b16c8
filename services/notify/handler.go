package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/mailer"
	"reviewfunnel/services/lead"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Handlers consume notification tasks on the worker. Send failures are
// returned so asynq retries; they never reach a user-facing request.
type Handlers struct {
	leads  *lead.Service
	mail   mailer.Mailer
	config *config.Config
}

type HandlersParams struct {
	fx.In
	Leads  *lead.Service
	Mail   mailer.Mailer
	Config *config.Config
}

func NewHandlers(p HandlersParams) *Handlers {
	return &Handlers{
		leads:  p.Leads,
		mail:   p.Mail,
		config: p.Config,
	}
}

func (h *Handlers) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid welcome payload: %w", err)
	}

	record, err := h.leads.Get(ctx, p.LeadID)
	if err != nil {
		return err
	}

	// The flag is the idempotency guard: a redelivered task after a
	// successful send is a no-op.
	if record != nil && record.WelcomeEmailSent {
		return nil
	}

	err = h.mail.Send(ctx, mailer.Email{
		To:      []string{p.ContactEmail},
		Subject: fmt.Sprintf("Welcome to your %s review card", p.BusinessName),
		Text: fmt.Sprintf("Your review card for %s is active. Track your reviews at %s",
			p.BusinessName, h.config.Links.DashboardURL),
	})
	if err != nil {
		zap.L().Error("welcome email send failed", zap.String("customer_id", p.CustomerID), zap.Error(err))
		return err
	}

	if err := h.leads.MarkWelcomeEmailSent(ctx, p.LeadID); err != nil {
		zap.L().Error("failed to mark welcome email sent", zap.String("lead_id", p.LeadID), zap.Error(err))
		return err
	}

	return nil
}

func (h *Handlers) HandleLoginLink(ctx context.Context, t *asynq.Task) error {
	var p LoginLinkPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid login link payload: %w", err)
	}

	loginURL := fmt.Sprintf("%s/login?token=%s", h.config.Links.DashboardURL, p.Token)

	err := h.mail.Send(ctx, mailer.Email{
		To:      []string{p.ContactEmail},
		Subject: "Your dashboard login link",
		Text:    fmt.Sprintf("Open your review dashboard: %s", loginURL),
	})
	if err != nil {
		zap.L().Error("login link email send failed", zap.String("customer_id", p.CustomerID), zap.Error(err))
		return err
	}

	return nil
}

func RegisterHandlers(mux *asynq.ServeMux, h *Handlers) {
	mux.HandleFunc(TaskWelcomeEmail, h.HandleWelcomeEmail)
	mux.HandleFunc(TaskLoginLinkEmail, h.HandleLoginLink)
}

var Module = fx.Module("notify.module",
	fx.Provide(
		NewHandlers,
	),
)

var Worker = fx.Module("notify.worker",
	Module,
	fx.Invoke(RegisterHandlers),
)
