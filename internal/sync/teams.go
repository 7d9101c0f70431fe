package sync

import (
	"context"
	"fmt"
	"log/slog"

	teamDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/team"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
)

// SyncTeams mirrors the teams of every organization that has a platform id.
// Organizations without one are skipped: there is no scope to query.
func (e *Engine) SyncTeams(ctx context.Context) (int, error) {
	var created int
	err := e.run(ctx, synclog.TypeTeams, func(ctx context.Context, lg *slog.Logger) (map[string]interface{}, string, error) {
		n, total, err := e.syncTeams(ctx, lg)
		if err != nil {
			return nil, "", err
		}
		created = n
		return map[string]interface{}{"created": n, "total": total}, "", nil
	})
	return created, err
}

func (e *Engine) syncTeams(ctx context.Context, lg *slog.Logger) (int, int, error) {
	orgs, err := e.orgs.ListAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list local organizations: %w", err)
	}

	created, total := 0, 0
	for _, org := range orgs {
		if org.GrafanaID == nil {
			lg.Debug("skipping organization without platform id", "org_id", org.ID)
			continue
		}

		remote, err := e.platform.ListTeams(ctx, *org.GrafanaID)
		if err != nil {
			return created, total, fmt.Errorf("list teams of organization %d: %w", org.ID, err)
		}
		total += len(remote)

		local, err := e.teams.ListByOrg(ctx, org.ID)
		if err != nil {
			return created, total, fmt.Errorf("list local teams of organization %d: %w", org.ID, err)
		}
		byPlatformID := make(map[int64]*teamDatamodel.Team, len(local))
		for _, t := range local {
			if t.GrafanaID != nil {
				byPlatformID[*t.GrafanaID] = t
			}
		}

		for _, r := range remote {
			if existing, ok := byPlatformID[r.ID]; ok {
				changed := existing.Name != r.Name
				existing.Name = r.Name
				changed = setOptional(&existing.Email, r.Email) || changed
				if !changed {
					continue
				}
				if err := e.teams.Update(ctx, existing); err != nil {
					return created, total, fmt.Errorf("update team %d: %w", existing.ID, err)
				}
				continue
			}

			platformID := r.ID
			t := &teamDatamodel.Team{Name: r.Name, OrgID: org.ID, GrafanaID: &platformID}
			setOptional(&t.Email, r.Email)
			if err := e.teams.Create(ctx, t); err != nil {
				return created, total, fmt.Errorf("create team %q: %w", r.Name, err)
			}
			byPlatformID[r.ID] = t
			created++
			lg.Debug("team created", "team_id", t.ID, "org_id", org.ID, "platform_id", r.ID)
		}
	}
	return created, total, nil
}
