package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/devvault2026/revampai/platform/apperr"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// CallAbandoner force-ends a call that outlived its watchdog deadline.
type CallAbandoner interface {
	Abandon(ctx context.Context, callID string)
}

// OutreachSender delivers a lead's stored outreach draft.
type OutreachSender interface {
	Send(ctx context.Context, leadID uuid.UUID) error
}

// InboxSyncer performs one IMAP poll cycle.
type InboxSyncer interface {
	Sync(ctx context.Context) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	calls    CallAbandoner
	outreach OutreachSender
	inbox    InboxSyncer
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, calls CallAbandoner, outreach OutreachSender, inbox InboxSyncer, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
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
		server:   server,
		mux:      mux,
		calls:    calls,
		outreach: outreach,
		inbox:    inbox,
		log:      log,
	}

	mux.HandleFunc(TaskCallWatchdog, w.handleCallWatchdog)
	mux.HandleFunc(TaskOutreachSend, w.handleOutreachSend)
	mux.HandleFunc(TaskInboxSync, w.handleInboxSync)

	return w, nil
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
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleCallWatchdog(ctx context.Context, task *asynq.Task) error {
	if w.calls == nil {
		return nil
	}

	payload, err := ParseCallWatchdogPayload(task)
	if err != nil {
		return err
	}
	if payload.CallID == "" {
		return nil
	}

	// Abandon is a no-op when the call already ended.
	w.calls.Abandon(ctx, payload.CallID)
	return nil
}

func (w *Worker) handleOutreachSend(ctx context.Context, task *asynq.Task) error {
	if w.outreach == nil {
		return nil
	}

	payload, err := ParseOutreachSendPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	if err := w.outreach.Send(ctx, leadID); err != nil {
		// Preconditions won't heal on retry: the lead lost its draft
		// or email since the task was enqueued.
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind != apperr.KindGateway {
			w.log.Warn("deferred outreach skipped", "lead_id", payload.LeadID, "error", err)
			return nil
		}
		return err
	}
	return nil
}

func (w *Worker) handleInboxSync(ctx context.Context, _ *asynq.Task) error {
	if w.inbox == nil {
		return nil
	}
	return w.inbox.Sync(ctx)
}
