package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type fakeSchedulerConfig struct {
	redisURL string
}

func (f fakeSchedulerConfig) GetRedisURL() string       { return f.redisURL }
func (f fakeSchedulerConfig) GetAsynqQueueName() string { return "revampai" }
func (f fakeSchedulerConfig) GetAsynqConcurrency() int  { return 2 }

func newTestClient(t *testing.T) (*Client, *asynq.Inspector) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := fakeSchedulerConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { inspector.Close() })

	return client, inspector
}

func TestScheduleCallWatchdog(t *testing.T) {
	client, inspector := newTestClient(t)

	runAt := time.Now().Add(10 * time.Minute)
	if err := client.ScheduleCallWatchdog(context.Background(), "CA123", runAt); err != nil {
		t.Fatalf("ScheduleCallWatchdog() error = %v", err)
	}

	tasks, err := inspector.ListScheduledTasks("revampai")
	if err != nil {
		t.Fatalf("ListScheduledTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("scheduled tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskCallWatchdog {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskCallWatchdog)
	}

	payload, err := ParseCallWatchdogPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.CallID != "CA123" {
		t.Errorf("call id = %q, want CA123", payload.CallID)
	}
}

func TestEnqueueInboxSync(t *testing.T) {
	client, inspector := newTestClient(t)

	if err := client.EnqueueInboxSync(context.Background()); err != nil {
		t.Fatalf("EnqueueInboxSync() error = %v", err)
	}

	tasks, err := inspector.ListPendingTasks("revampai")
	if err != nil {
		t.Fatalf("ListPendingTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Type != TaskInboxSync {
		t.Fatalf("pending tasks = %+v, want one %s task", tasks, TaskInboxSync)
	}
}

func TestNilClientIsNoOp(t *testing.T) {
	var client *Client
	if err := client.ScheduleOutreachSend(context.Background(), "lead-1", time.Now()); err != nil {
		t.Fatalf("nil client should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client Close() = %v", err)
	}
}
