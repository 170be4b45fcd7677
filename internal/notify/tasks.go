package notify

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskEmailNotification = "notify.email"

// Job is the flat, fully-resolved notification payload. Everything the
// dispatcher needs to render an email is carried here; no lookups happen at
// send time. Optional fields render as empty strings.
type Job struct {
	Type        TriggerKind `json:"type"`
	Email       string      `json:"email"`
	Customer    string      `json:"customer,omitempty"`
	Engineer    string      `json:"engineer,omitempty"`
	Service     string      `json:"service,omitempty"`
	Project     string      `json:"project,omitempty"`
	AmountPaise int64       `json:"amount,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

func NewEmailNotificationTask(job Job) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEmailNotification, data), nil
}

func ParseEmailNotificationJob(task *asynq.Task) (Job, error) {
	var job Job
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return Job{}, err
	}
	return job, nil
}
