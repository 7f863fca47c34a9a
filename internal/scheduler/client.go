// Package scheduler defers work through asynq: abandoning stale calls,
// sending queued outreach, and syncing the reply inbox.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/devvault2026/revampai/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleCallWatchdog enqueues a task that abandons the call if it is
// still live at runAt. A nil client is a no-op so telephony works without
// Redis.
func (c *Client) ScheduleCallWatchdog(ctx context.Context, callID string, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewCallWatchdogTask(CallWatchdogPayload{CallID: callID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// ScheduleOutreachSend defers an outreach email send to runAt.
func (c *Client) ScheduleOutreachSend(ctx context.Context, leadID string, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewOutreachSendTask(OutreachSendPayload{LeadID: leadID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// EnqueueInboxSync triggers an immediate IMAP poll.
func (c *Client) EnqueueInboxSync(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	_, err := c.client.EnqueueContext(ctx, NewInboxSyncTask(), asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
