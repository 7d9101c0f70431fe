package sync

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal/synclog"
)

const (
	stageOrganizations = "organizations"
	stageUsers         = "users"
	stageTeams         = "teams"
)

// RunFullSync runs organizations, users and teams in that order. Teams need
// organizations with platform ids, so a failed stage stops the run. Only one
// log row is written: the summary, or the error naming the failed stage.
// Stages that already finished are not rolled back.
func (e *Engine) RunFullSync(ctx context.Context) (*FullSyncResult, error) {
	var result FullSyncResult
	err := e.run(ctx, synclog.TypeFullSync, func(ctx context.Context, lg *slog.Logger) (map[string]interface{}, string, error) {
		var err error
		if result.OrgsCreated, _, err = e.syncOrganizations(ctx, lg); err != nil {
			return nil, stageOrganizations, err
		}
		if result.UsersCreated, _, err = e.syncUsers(ctx, lg); err != nil {
			return nil, stageUsers, err
		}
		if result.TeamsCreated, _, err = e.syncTeams(ctx, lg); err != nil {
			return nil, stageTeams, err
		}
		return map[string]interface{}{
			"orgs":  result.OrgsCreated,
			"users": result.UsersCreated,
			"teams": result.TeamsCreated,
		}, "", nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
