package sync

import (
	"context"
	"fmt"
	"log/slog"

	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
	"github.com/frahmantamala/grafana-sync/internal/directory"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
)

// SyncDirectoryUsers mirrors every employee into the local user table. New
// users start pending; they have no platform account until provisioned.
func (e *Engine) SyncDirectoryUsers(ctx context.Context) (*DirectoryResult, error) {
	var result DirectoryResult
	err := e.run(ctx, synclog.TypeDirectoryToLocal, func(ctx context.Context, lg *slog.Logger) (map[string]interface{}, string, error) {
		res, err := e.syncDirectoryUsers(ctx, lg)
		if err != nil {
			return nil, "", err
		}
		result = res
		return map[string]interface{}{"added": res.CreatedCount, "total": res.TotalCount}, "", nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *Engine) syncDirectoryUsers(ctx context.Context, lg *slog.Logger) (DirectoryResult, error) {
	employees, err := e.directory.ListEmployees(ctx)
	if err != nil {
		return DirectoryResult{}, fmt.Errorf("list employees: %w", err)
	}

	res := DirectoryResult{TotalCount: len(employees)}
	for _, emp := range employees {
		if emp.ID == "" {
			lg.Warn("skipping employee without id")
			continue
		}

		name := directory.DisplayName(emp)
		existing, err := e.users.GetByUserID(ctx, emp.ID)
		if err != nil {
			return res, fmt.Errorf("find user %s: %w", emp.ID, err)
		}

		if existing != nil {
			changed := setString(&existing.Name, name)
			changed = setNullable(&existing.Department, emp.OrgUnitName) || changed
			changed = setNullable(&existing.Position, emp.PositionName) || changed
			changed = setNullable(&existing.Company, emp.CompanyName) || changed
			if changed {
				if err := e.users.Update(ctx, existing); err != nil {
					return res, fmt.Errorf("update user %s: %w", emp.ID, err)
				}
			}
			continue
		}

		email := directory.PlaceholderEmail(emp.ID)
		login := emp.ID
		row := &userDatamodel.User{
			UserID:     emp.ID,
			Name:       &name,
			Email:      &email,
			Login:      &login,
			Department: emp.OrgUnitName,
			Position:   emp.PositionName,
			Company:    emp.CompanyName,
			Status:     userDatamodel.StatusPending,
		}
		if err := e.users.Create(ctx, row); err != nil {
			return res, fmt.Errorf("create user %s: %w", emp.ID, err)
		}
		res.CreatedCount++
		lg.Debug("user created from directory", "user_id", emp.ID)
	}
	return res, nil
}
