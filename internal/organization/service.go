package organization

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal"
	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
	"github.com/frahmantamala/grafana-sync/internal/platform"
	"github.com/frahmantamala/grafana-sync/internal/user"
)

// RepositoryAPI stores mirrored organizations and their memberships. Lookups
// return nil, nil when nothing matches.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*orgDatamodel.Organization, error)
	GetByGrafanaID(ctx context.Context, grafanaID int64) (*orgDatamodel.Organization, error)
	ListAll(ctx context.Context) ([]*orgDatamodel.Organization, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, org *orgDatamodel.Organization) error
	Update(ctx context.Context, org *orgDatamodel.Organization) error
	Delete(ctx context.Context, id int64) error

	GetMembership(ctx context.Context, userID, orgID int64) (*orgDatamodel.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID int64) ([]*orgDatamodel.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID int64) ([]*orgDatamodel.Membership, error)
	CreateMembership(ctx context.Context, m *orgDatamodel.Membership) error
	UpdateMembershipRole(ctx context.Context, userID, orgID int64, role string) error
	DeleteMembership(ctx context.Context, userID, orgID int64) error
	// SetDefaultMembership flags (userID, orgID) as default and clears the
	// flag on the user's other memberships in one transaction.
	SetDefaultMembership(ctx context.Context, userID, orgID int64) error
}

// UserFinder resolves mirrored users for membership changes.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
}

type Service struct {
	repo     RepositoryAPI
	users    UserFinder
	platform platform.Client
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, users UserFinder, platformClient platform.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		platform: platformClient,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Organization, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, internal.NewInternalError("failed to list organizations", err)
	}
	orgs := make([]*Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, FromDataModel(row))
	}
	return orgs, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to count organizations", err)
	}
	return n, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Organization, error) {
	row, err := s.getRow(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) getRow(ctx context.Context, id int64) (*orgDatamodel.Organization, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get organization", err)
	}
	if row == nil {
		return nil, internal.ErrOrganizationNotFound
	}
	return row, nil
}

func (s *Service) Create(ctx context.Context, req CreateOrganizationRequest) (*Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	row := &orgDatamodel.Organization{Name: req.Name}
	if req.CreateOnPlatform {
		platformID, err := s.platform.CreateOrg(ctx, req.Name)
		if err != nil {
			s.logger.Error("failed to create platform organization", "name", req.Name, "error", err)
			return nil, platformError("failed to create platform organization", err)
		}
		row.GrafanaID = &platformID
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create organization", err)
	}
	s.logger.Info("organization created", "id", row.ID, "name", row.Name, "platform_id", row.GrafanaID)
	return FromDataModel(row), nil
}

// Update renames the organization, on the platform first when it is linked.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrganizationRequest) (*Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	row, err := s.getRow(ctx, id)
	if err != nil {
		return nil, err
	}

	if row.GrafanaID != nil {
		if err := s.platform.UpdateOrg(ctx, *row.GrafanaID, req.Name); err != nil {
			s.logger.Error("failed to rename platform organization", "id", id, "platform_id", *row.GrafanaID, "error", err)
			return nil, platformError("failed to rename platform organization", err)
		}
	}

	row.Name = req.Name
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update organization", err)
	}
	return FromDataModel(row), nil
}

// Delete removes the local organization only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.getRow(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete organization", err)
	}
	s.logger.Info("organization deleted", "id", id)
	return nil
}

// ----------------- MEMBERSHIPS -----------------

func (s *Service) ListMembers(ctx context.Context, orgID int64) ([]*Membership, error) {
	if _, err := s.getRow(ctx, orgID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMembershipsByOrg(ctx, orgID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list memberships", err)
	}
	return membershipsFromRows(rows), nil
}

func (s *Service) ListUserMemberships(ctx context.Context, userID int64) ([]*Membership, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list memberships", err)
	}
	return membershipsFromRows(rows), nil
}

// AddMember adds a user to an organization. An existing membership is a
// conflict; nothing is written in that case.
func (s *Service) AddMember(ctx context.Context, orgID int64, req AddMemberRequest) (*Membership, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	org, u, err := s.resolve(ctx, orgID, req.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMembership(ctx, u.ID, org.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check membership", err)
	}
	if existing != nil {
		return nil, internal.ErrMembershipExists
	}

	if org.GrafanaID != nil && u.GrafanaID != nil {
		login := user.FromDataModel(u).LoginName()
		if err := s.platform.AddOrgUser(ctx, *org.GrafanaID, login, req.Role); err != nil {
			s.logger.Error("failed to add platform org user", "org_id", org.ID, "user_id", u.ID, "error", err)
			if errors.Is(err, platform.ErrConflict) {
				return nil, internal.ErrMembershipExists.WithCause(err)
			}
			return nil, platformError("failed to add user to platform organization", err)
		}
	}

	m := &orgDatamodel.Membership{UserID: u.ID, OrgID: org.ID, Role: req.Role}
	if err := s.repo.CreateMembership(ctx, m); err != nil {
		// a concurrent add may have won the unique index
		if again, lookupErr := s.repo.GetMembership(ctx, u.ID, org.ID); lookupErr == nil && again != nil {
			return nil, internal.ErrMembershipExists
		}
		return nil, internal.NewInternalError("failed to create membership", err)
	}

	if req.IsDefault {
		if err := s.repo.SetDefaultMembership(ctx, u.ID, org.ID); err != nil {
			return nil, internal.NewInternalError("failed to set default organization", err)
		}
		m.IsDefault = true
	}

	s.logger.Info("membership added", "org_id", org.ID, "user_id", u.ID, "role", m.Role)
	return MembershipFromDataModel(m), nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, orgID, userID int64, req UpdateMemberRequest) (*Membership, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	org, u, m, err := s.resolveMembership(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	if org.GrafanaID != nil && u.GrafanaID != nil {
		if err := s.platform.UpdateOrgUserRole(ctx, *org.GrafanaID, *u.GrafanaID, req.Role); err != nil {
			s.logger.Error("failed to update platform org role", "org_id", org.ID, "user_id", u.ID, "error", err)
			return nil, platformError("failed to update platform organization role", err)
		}
	}

	if err := s.repo.UpdateMembershipRole(ctx, u.ID, org.ID, req.Role); err != nil {
		return nil, internal.NewInternalError("failed to update membership", err)
	}
	m.Role = req.Role
	return MembershipFromDataModel(m), nil
}

func (s *Service) RemoveMember(ctx context.Context, orgID, userID int64) error {
	org, u, _, err := s.resolveMembership(ctx, orgID, userID)
	if err != nil {
		return err
	}

	if org.GrafanaID != nil && u.GrafanaID != nil {
		if err := s.platform.RemoveOrgUser(ctx, *org.GrafanaID, *u.GrafanaID); err != nil {
			s.logger.Error("failed to remove platform org user", "org_id", org.ID, "user_id", u.ID, "error", err)
			return platformError("failed to remove user from platform organization", err)
		}
	}

	if err := s.repo.DeleteMembership(ctx, u.ID, org.ID); err != nil {
		return internal.NewInternalError("failed to delete membership", err)
	}
	s.logger.Info("membership removed", "org_id", org.ID, "user_id", u.ID)
	return nil
}

// SetDefault makes orgID the user's only default organization.
func (s *Service) SetDefault(ctx context.Context, orgID, userID int64) (*Membership, error) {
	_, _, m, err := s.resolveMembership(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDefaultMembership(ctx, userID, orgID); err != nil {
		return nil, internal.NewInternalError("failed to set default organization", err)
	}
	m.IsDefault = true
	return MembershipFromDataModel(m), nil
}

func (s *Service) getUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) resolve(ctx context.Context, orgID, userID int64) (*orgDatamodel.Organization, *userDatamodel.User, error) {
	org, err := s.getRow(ctx, orgID)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return org, u, nil
}

func (s *Service) resolveMembership(ctx context.Context, orgID, userID int64) (*orgDatamodel.Organization, *userDatamodel.User, *orgDatamodel.Membership, error) {
	org, u, err := s.resolve(ctx, orgID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := s.repo.GetMembership(ctx, u.ID, org.ID)
	if err != nil {
		return nil, nil, nil, internal.NewInternalError("failed to get membership", err)
	}
	if m == nil {
		return nil, nil, nil, internal.ErrMembershipNotFound
	}
	return org, u, m, nil
}

func membershipsFromRows(rows []*orgDatamodel.Membership) []*Membership {
	out := make([]*Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, MembershipFromDataModel(row))
	}
	return out
}

func platformError(msg string, err error) error {
	return internal.NewExternalError(msg, internal.ErrCodePlatformRequestFailed, err)
}
