package portal

import (
	"context"
	"time"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/db/option"
	"reviewfunnel/pkg/errutil"
	"reviewfunnel/pkg/repository"
	"reviewfunnel/pkg/security"
	"reviewfunnel/pkg/task"
	"reviewfunnel/services/customer"
	"reviewfunnel/services/notify"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	node      *snowflake.Node
	customers *customer.Service
	tokens    repository.Repository[LoginToken]
	enqueuer  task.Enqueuer
	config    *config.Config
}

type ServiceParams struct {
	fx.In
	DB        *gorm.DB
	Node      *snowflake.Node
	Customers *customer.Service
	Enqueuer  task.Enqueuer
	Config    *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node:      p.Node,
		customers: p.Customers,
		tokens:    repository.ProvideStore[LoginToken](p.DB),
		enqueuer:  p.Enqueuer,
		config:    p.Config,
	}
}

// SendLoginLink issues a fresh single-use login token for the customer behind
// the given email and queues the delivery email. When no customer matches,
// it still reports success so the endpoint cannot be used to probe which
// addresses are subscribed.
func (s *Service) SendLoginLink(ctx context.Context, email string) error {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	if email == "" {
		return errutil.BadRequest("email is required")
	}

	record, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		zapLog.Error("login link lookup failed", zap.Error(err))
		return errutil.Internal("failed to issue login link", errutil.WithErr(err))
	}
	if record == nil {
		zapLog.Info("login link requested for unknown email")
		return nil
	}

	secret, err := security.GenerateBase64Secret(32)
	if err != nil {
		return errutil.Internal("failed to issue login link", errutil.WithErr(err))
	}
	hash, err := security.HashArgon2(secret)
	if err != nil {
		return errutil.Internal("failed to issue login link", errutil.WithErr(err))
	}

	token := &LoginToken{
		ID:         s.node.Generate().String(),
		CustomerID: record.CustomerID,
		TokenHash:  hash,
		ExpiresAt:  time.Now().Add(s.config.LoginLinkTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		zapLog.Error("failed to store login token", zap.Error(err))
		return errutil.Internal("failed to issue login link", errutil.WithErr(err))
	}

	if _, err := s.enqueuer.Enqueue(notify.NewLoginLinkTask(notify.LoginLinkPayload{
		CustomerID:   record.CustomerID,
		ContactEmail: record.ContactEmail,
		Token:        secret,
	})); err != nil {
		zapLog.Error("failed to enqueue login link email", zap.Error(err))
		return errutil.Internal("failed to issue login link", errutil.WithErr(err))
	}

	zapLog.Info("login link issued", zap.String("customer_id", record.CustomerID))
	return nil
}

// ConsumeToken validates a login token presented by the dashboard and burns
// it. Verification walks the customer's live tokens because only hashes are
// stored.
func (s *Service) ConsumeToken(ctx context.Context, customerID, secret string) (*customer.Customer, error) {
	if customerID == "" || secret == "" {
		return nil, errutil.BadRequest("customer_id and token are required")
	}

	candidates, err := s.tokens.Find(ctx, &LoginToken{CustomerID: customerID},
		option.OrderBy("created_at DESC"), option.Limit(5))
	if err != nil {
		return nil, errutil.Internal("failed to verify login token", errutil.WithErr(err))
	}

	now := time.Now()
	for _, t := range candidates {
		if t.UsedAt != nil || now.After(t.ExpiresAt) {
			continue
		}
		if !security.VerifyArgon2(secret, t.TokenHash) {
			continue
		}
		if err := s.tokens.Update(ctx, t.ID, map[string]any{"used_at": now}); err != nil {
			return nil, errutil.Internal("failed to consume login token", errutil.WithErr(err))
		}
		return s.customers.Get(ctx, customerID)
	}

	return nil, errutil.Unauthorized("invalid or expired login token")
}
