package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/db"
	"reviewfunnel/pkg/gen"
	"reviewfunnel/pkg/health"
	"reviewfunnel/pkg/logger"
	"reviewfunnel/pkg/mailer"
	"reviewfunnel/pkg/places"
	"reviewfunnel/pkg/redis"
	"reviewfunnel/pkg/server"
	"reviewfunnel/pkg/task"
	"reviewfunnel/services/checkout"
	"reviewfunnel/services/customer"
	"reviewfunnel/services/fulfillment"
	"reviewfunnel/services/gateway"
	"reviewfunnel/services/lead"
	"reviewfunnel/services/portal"
)

func main() {
	godotenv.Load()

	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		task.Client,
		gen.Module,
		places.Module,
		mailer.Module,
		health.Module,
		fx.Provide(provideTracerProvider),
		lead.Server,
		customer.Server,
		checkout.Server,
		fulfillment.Server,
		gateway.Server,
		portal.Server,
		fx.Invoke(migrate),
		fx.Invoke(registerHealthRoutes),
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideTracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

func registerHealthRoutes(r *gin.Engine, h health.HealthService) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&lead.Lead{},
		&customer.Customer{},
		&fulfillment.WebhookEvent{},
		&portal.LoginToken{},
	)
}
