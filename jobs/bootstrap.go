package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/polizei-portal/intranet/internal/jobs"
	"github.com/polizei-portal/intranet/internal/laws"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/seed"
	"github.com/polizei-portal/intranet/internal/users"
)

// BootstrapRunner seeds the document store.
type BootstrapRunner interface {
	Run(ctx context.Context) (seed.Result, error)
}

// BootstrapJob executes TaskSeedBootstrap.
type BootstrapJob struct {
	Runner  BootstrapRunner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewBootstrapJob wires dependencies for the bootstrap handler.
func NewBootstrapJob(runner BootstrapRunner, logger *slog.Logger, metrics *jobmetrics.Metrics) *BootstrapJob {
	return &BootstrapJob{Runner: runner, Logger: logger, Metrics: metrics}
}

// Handle runs the bootstrap. Failures are logged and recorded but the task
// is acknowledged; the next run or restart retries naturally.
func (j *BootstrapJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Runner == nil {
		return errors.New("seed bootstrap: handler not configured")
	}
	var payload BootstrapPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	logger := j.logger().With(slog.String("reason", payload.Reason))
	if payload.RequestedBy != "" {
		logger = logger.With(slog.String("requested_by", payload.RequestedBy))
	}

	tracker := j.Metrics.Track(TaskSeedBootstrap)
	result, err := j.Runner.Run(ctx)
	j.Metrics.AddSeedWrites(rbac.RolesCollection, result.RolesCreated)
	if result.AdminCreated {
		j.Metrics.AddSeedWrites(users.Collection, 1)
	}
	j.Metrics.AddSeedWrites(laws.Collection, result.LawsCreated)
	if err := tracker.End(err); err != nil {
		logger.Error("seed bootstrap failed", slog.Int("writes", result.Writes()), slog.Any("error", err))
		return nil
	}
	logger.Info("seed bootstrap complete",
		slog.Int("roles_created", result.RolesCreated),
		slog.Bool("admin_created", result.AdminCreated),
		slog.Int("laws_created", result.LawsCreated),
	)
	return nil
}

func (j *BootstrapJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
