package sync

import (
	"context"
	"fmt"
	"log/slog"

	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
)

// SyncOrganizations matches remote organizations to local ones by platform
// id, renaming matches and creating the rest. It returns the created count.
func (e *Engine) SyncOrganizations(ctx context.Context) (int, error) {
	var created int
	err := e.run(ctx, synclog.TypeOrganizations, func(ctx context.Context, lg *slog.Logger) (map[string]interface{}, string, error) {
		n, total, err := e.syncOrganizations(ctx, lg)
		if err != nil {
			return nil, "", err
		}
		created = n
		return map[string]interface{}{"created": n, "total": total}, "", nil
	})
	return created, err
}

func (e *Engine) syncOrganizations(ctx context.Context, lg *slog.Logger) (int, int, error) {
	remote, err := e.platform.ListOrgs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list platform organizations: %w", err)
	}
	local, err := e.orgs.ListAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list local organizations: %w", err)
	}

	byPlatformID := make(map[int64]*orgDatamodel.Organization, len(local))
	for _, org := range local {
		if org.GrafanaID != nil {
			byPlatformID[*org.GrafanaID] = org
		}
	}

	created := 0
	for _, r := range remote {
		if existing, ok := byPlatformID[r.ID]; ok {
			if existing.Name == r.Name {
				continue
			}
			existing.Name = r.Name
			if err := e.orgs.Update(ctx, existing); err != nil {
				return created, len(remote), fmt.Errorf("update organization %d: %w", existing.ID, err)
			}
			continue
		}

		platformID := r.ID
		org := &orgDatamodel.Organization{Name: r.Name, GrafanaID: &platformID}
		if err := e.orgs.Create(ctx, org); err != nil {
			return created, len(remote), fmt.Errorf("create organization %q: %w", r.Name, err)
		}
		byPlatformID[r.ID] = org
		created++
		lg.Debug("organization created", "org_id", org.ID, "platform_id", r.ID)
	}
	return created, len(remote), nil
}
