// Package sync reconciles the local mirror with the employee directory and
// the dashboard platform. Every public operation writes exactly one sync log
// row. Reconciliation is upsert-only: local rows missing remotely are kept.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal"
	"github.com/frahmantamala/grafana-sync/internal/core/events"
	"github.com/frahmantamala/grafana-sync/internal/directory"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	"github.com/frahmantamala/grafana-sync/internal/platform"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
	"github.com/frahmantamala/grafana-sync/internal/team"
	"github.com/frahmantamala/grafana-sync/internal/user"
	"github.com/google/uuid"
)

// Recorder appends sync log rows.
type Recorder interface {
	Record(ctx context.Context, logType, status string, details map[string]interface{}) (*synclog.Log, error)
}

type Dependencies struct {
	Directory     directory.Client
	Platform      platform.Client
	Users         user.RepositoryAPI
	Organizations organization.RepositoryAPI
	Teams         team.RepositoryAPI
	Recorder      Recorder
	// Publisher is optional.
	Publisher events.Publisher
	Logger    *slog.Logger
}

// Engine runs each sync sequentially, one record at a time. It holds no lock;
// callers that need single-flight use Pipeline.
type Engine struct {
	directory directory.Client
	platform  platform.Client
	users     user.RepositoryAPI
	orgs      organization.RepositoryAPI
	teams     team.RepositoryAPI
	recorder  Recorder
	publisher events.Publisher
	logger    *slog.Logger
}

func NewEngine(deps Dependencies) *Engine {
	return &Engine{
		directory: deps.Directory,
		platform:  deps.Platform,
		users:     deps.Users,
		orgs:      deps.Organizations,
		teams:     deps.Teams,
		recorder:  deps.Recorder,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

type DirectoryResult struct {
	CreatedCount int `json:"created_count"`
	TotalCount   int `json:"total_count"`
}

type FullSyncResult struct {
	OrgsCreated  int `json:"orgs_created"`
	UsersCreated int `json:"users_created"`
	TeamsCreated int `json:"teams_created"`
}

// run executes one logged operation: stage does the work and returns the
// success details, or the failing stage name with its error.
func (e *Engine) run(ctx context.Context, logType string, stage func(ctx context.Context, lg *slog.Logger) (map[string]interface{}, string, error)) error {
	lg := e.logger.With("run_id", uuid.New().String(), "type", logType, "triggered_by", triggeredBy(ctx))
	lg.Info("sync started")

	details, failedStage, err := stage(ctx, lg)
	if err != nil {
		return e.fail(ctx, lg, logType, failedStage, err)
	}

	// the log must be written even if the caller went away mid-run
	if _, err := e.recorder.Record(context.WithoutCancel(ctx), logType, synclog.StatusSuccess, details); err != nil {
		lg.Error("sync finished but the log could not be written", "error", err)
		return internal.NewInternalError("failed to record sync log", err)
	}
	lg.Info("sync completed", "details", details)
	e.publish(ctx, lg, events.NewSyncCompletedEvent(logType, details))
	return nil
}

func (e *Engine) fail(ctx context.Context, lg *slog.Logger, logType, stage string, cause error) error {
	details := map[string]interface{}{"error": cause.Error()}
	if stage != "" {
		details["stage"] = stage
	}
	lg.Error("sync failed", "stage", stage, "error", cause)

	if _, err := e.recorder.Record(context.WithoutCancel(ctx), logType, synclog.StatusError, details); err != nil {
		lg.Error("failed to record sync failure", "error", err)
	}
	e.publish(ctx, lg, events.NewSyncFailedEvent(logType, cause.Error()))

	msg := fmt.Sprintf("%s sync failed: %v", logType, cause)
	if stage != "" {
		msg = fmt.Sprintf("%s sync failed at %s: %v", logType, stage, cause)
	}
	return internal.NewExternalError(msg, internal.ErrCodeSyncFailed, cause)
}

func (e *Engine) publish(ctx context.Context, lg *slog.Logger, event events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		lg.Warn("failed to publish sync event", "event_type", event.EventType(), "error", err)
	}
}

// triggeredBy names the console operator for API runs and "scheduler" for
// runs without one (worker, CLI).
func triggeredBy(ctx context.Context) string {
	if op := internal.OperatorFromContext(ctx); op.Username != "" {
		return op.Username
	}
	return "scheduler"
}
