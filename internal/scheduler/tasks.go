package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCallWatchdog = "calls.watchdog"

const TaskOutreachSend = "outreach.send"

const TaskInboxSync = "inbox.sync"

// CallWatchdogPayload names the call a watchdog task should abandon if it
// is still live when the task fires.
type CallWatchdogPayload struct {
	CallID string `json:"callId"`
}

type OutreachSendPayload struct {
	LeadID string `json:"leadId"`
}

func NewCallWatchdogTask(payload CallWatchdogPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCallWatchdog, data), nil
}

func ParseCallWatchdogPayload(task *asynq.Task) (CallWatchdogPayload, error) {
	var payload CallWatchdogPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CallWatchdogPayload{}, err
	}
	return payload, nil
}

func NewOutreachSendTask(payload OutreachSendPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOutreachSend, data), nil
}

func ParseOutreachSendPayload(task *asynq.Task) (OutreachSendPayload, error) {
	var payload OutreachSendPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OutreachSendPayload{}, err
	}
	return payload, nil
}

func NewInboxSyncTask() *asynq.Task {
	return asynq.NewTask(TaskInboxSync, nil)
}
