package sync

import (
	"context"
	"fmt"
	"log/slog"

	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
	"github.com/frahmantamala/grafana-sync/internal/platform"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
)

// SyncUsers mirrors platform accounts. A remote user matches a local one by
// platform id, then by login against the local user id, so an existing user
// id is linked rather than duplicated. A user id already linked to a different
// account is never re-pointed; that remote account is skipped. Mirrored
// platform users are active.
func (e *Engine) SyncUsers(ctx context.Context) (int, error) {
	var created int
	err := e.run(ctx, synclog.TypeUsers, func(ctx context.Context, lg *slog.Logger) (map[string]interface{}, string, error) {
		n, total, err := e.syncUsers(ctx, lg)
		if err != nil {
			return nil, "", err
		}
		created = n
		return map[string]interface{}{"created": n, "total": total}, "", nil
	})
	return created, err
}

func (e *Engine) syncUsers(ctx context.Context, lg *slog.Logger) (int, int, error) {
	remote, err := e.platform.ListUsers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list platform users: %w", err)
	}
	local, err := e.users.ListAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list local users: %w", err)
	}

	byPlatformID := make(map[int64]*userDatamodel.User, len(local))
	byUserID := make(map[string]*userDatamodel.User, len(local))
	for _, u := range local {
		if u.GrafanaID != nil {
			byPlatformID[*u.GrafanaID] = u
		}
		byUserID[u.UserID] = u
	}

	created := 0
	for _, r := range remote {
		existing, ok := byPlatformID[r.ID]
		if !ok {
			existing, ok = byUserID[platformUserID(r)]
			// a user id already linked to another account stays with that account
			if ok && existing.GrafanaID != nil && *existing.GrafanaID != r.ID {
				lg.Warn("skipping platform user whose login belongs to another linked account",
					"user_id", existing.UserID,
					"platform_id", r.ID,
					"linked_platform_id", *existing.GrafanaID)
				continue
			}
		}

		if ok {
			if applyPlatformUser(existing, r) {
				if err := e.users.Update(ctx, existing); err != nil {
					return created, len(remote), fmt.Errorf("update user %s: %w", existing.UserID, err)
				}
			}
			byPlatformID[r.ID] = existing
			continue
		}

		u := &userDatamodel.User{UserID: platformUserID(r)}
		applyPlatformUser(u, r)
		if err := e.users.Create(ctx, u); err != nil {
			return created, len(remote), fmt.Errorf("create user %s: %w", u.UserID, err)
		}
		byPlatformID[r.ID] = u
		byUserID[u.UserID] = u
		created++
		lg.Debug("user created from platform", "user_id", u.UserID, "platform_id", r.ID)
	}
	return created, len(remote), nil
}

// platformUserID is the natural key a platform account maps to.
func platformUserID(r platform.User) string {
	switch {
	case r.Login != "":
		return r.Login
	case r.Email != "":
		return r.Email
	default:
		return fmt.Sprintf("grafana-%d", r.ID)
	}
}

func applyPlatformUser(u *userDatamodel.User, r platform.User) bool {
	name := r.Name
	if name == "" {
		name = platformUserID(r)
	}
	changed := setString(&u.Name, name)
	changed = setOptional(&u.Email, r.Email) || changed
	changed = setOptional(&u.Login, r.Login) || changed
	changed = setID(&u.GrafanaID, r.ID) || changed
	changed = setTime(&u.LastLogin, r.LastSeenAt) || changed
	if u.Status != userDatamodel.StatusActive {
		u.Status = userDatamodel.StatusActive
		changed = true
	}
	return changed
}
