package notify

import (
	"context"
	"errors"
	"fmt"

	"mixhouse_backend/platform/config"
	"mixhouse_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker is the queue consumer process. It pulls notification jobs with
// bounded concurrency and hands each to the Dispatcher. A job whose every
// send failed is retried with backoff up to the enqueue-time retry budget,
// then archived by the queue backend (dead-letter).
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher *Dispatcher
	log        *logger.Logger
}

func NewWorker(cfg config.QueueConfig, dispatcher *Dispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetQueueConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		dispatcher: dispatcher,
		log:        log,
	}

	mux.HandleFunc(TaskEmailNotification, w.handleEmailNotification)

	return w, nil
}

func (w *Worker) handleEmailNotification(ctx context.Context, task *asynq.Task) error {
	job, err := ParseEmailNotificationJob(task)
	if err != nil {
		// Malformed payloads will never succeed; archive instead of retrying.
		return fmt.Errorf("parse notification job: %v: %w", err, asynq.SkipRetry)
	}

	w.log.QueueEvent("process", string(job.Type), job.Email)

	if err := w.dispatcher.Dispatch(ctx, job); err != nil {
		if errors.Is(err, ErrUnknownTrigger) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("notification worker stopped", "error", err)
	}
}
