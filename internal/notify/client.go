package notify

import (
	"context"
	"crypto/tls"
	"fmt"

	"mixhouse_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Enqueuer is the producer side of the notification queue. Lifecycle
// transitions depend on this interface rather than the concrete client.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Client enqueues notification jobs onto the Redis-backed queue. Enqueue
// returns once the job is durably stored; enqueue failure propagates to the
// caller and is never swallowed.
type Client struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

func NewClient(cfg config.QueueConfig) (*Client, error) {
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

	maxRetry := cfg.GetQueueMaxRetry()
	if maxRetry < 0 {
		maxRetry = 0
	}

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		maxRetry: maxRetry,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Enqueue appends the job to the queue. A job that exhausts its retries in
// the worker is archived by the queue backend for inspection.
func (c *Client) Enqueue(ctx context.Context, job Job) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("notification queue client not initialized")
	}
	if !IsKnownTrigger(job.Type) {
		return fmt.Errorf("unknown notification trigger %q", job.Type)
	}

	task, err := NewEmailNotificationTask(job)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(c.maxRetry))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
