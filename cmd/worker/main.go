package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/db"
	"reviewfunnel/pkg/gen"
	"reviewfunnel/pkg/logger"
	"reviewfunnel/pkg/mailer"
	"reviewfunnel/pkg/places"
	"reviewfunnel/pkg/redis"
	"reviewfunnel/pkg/task"
	"reviewfunnel/services/lead"
	"reviewfunnel/services/notify"
)

func main() {
	godotenv.Load()

	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		gen.Module,
		places.Module,
		mailer.Module,
		lead.Module,
		notify.Worker,
		task.Server,
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
