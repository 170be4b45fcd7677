package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mixhouse_backend/internal/email"
	"mixhouse_backend/internal/notify"
	"mixhouse_backend/platform/config"
	"mixhouse_backend/platform/logger"
)

// The worker consumes the notification queue and delivers email. It shares
// nothing with the API process except Redis and the job payload format, so
// both can be deployed and scaled independently.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting notification worker", "env", cfg.Env, "queue", cfg.QueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := email.NewSender(cfg)
	if !cfg.EmailEnabled {
		log.Warn("email delivery disabled; notifications will be dropped after processing")
	}

	dispatcher := notify.NewDispatcher(sender, cfg, log)

	worker, err := notify.NewWorker(cfg, dispatcher, log)
	if err != nil {
		log.Error("failed to initialize notification worker", "error", err)
		panic("failed to initialize notification worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("notification worker stopped")
}
