package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSeedBootstrap runs the store bootstrap.
	TaskSeedBootstrap = "seed:bootstrap"

	bootstrapUniqueTTL = time.Minute
)

// BootstrapPayload describes why a bootstrap run was requested.
type BootstrapPayload struct {
	Reason      string `json:"reason"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// NewBootstrapTask constructs an Asynq task. Identical tasks enqueued within
// a minute are rejected as duplicates.
func NewBootstrapTask(payload BootstrapPayload) (*asynq.Task, error) {
	if payload.Reason == "" {
		payload.Reason = "manual"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSeedBootstrap, data, asynq.MaxRetry(0), asynq.Unique(bootstrapUniqueTTL)), nil
}
