package team

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal"
	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	teamDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
	"github.com/frahmantamala/grafana-sync/internal/platform"
)

// RepositoryAPI stores mirrored teams and their memberships. Lookups return
// nil, nil when nothing matches.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*teamDatamodel.Team, error)
	GetByGrafanaIDInOrg(ctx context.Context, orgID, grafanaID int64) (*teamDatamodel.Team, error)
	ListAll(ctx context.Context) ([]*teamDatamodel.Team, error)
	ListByOrg(ctx context.Context, orgID int64) ([]*teamDatamodel.Team, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, t *teamDatamodel.Team) error
	Update(ctx context.Context, t *teamDatamodel.Team) error
	Delete(ctx context.Context, id int64) error

	GetMembership(ctx context.Context, userID, teamID int64) (*teamDatamodel.Membership, error)
	ListMembershipsByTeam(ctx context.Context, teamID int64) ([]*teamDatamodel.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID int64) ([]*teamDatamodel.Membership, error)
	CreateMembership(ctx context.Context, m *teamDatamodel.Membership) error
	DeleteMembership(ctx context.Context, userID, teamID int64) error
}

type OrganizationFinder interface {
	GetByID(ctx context.Context, id int64) (*orgDatamodel.Organization, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
}

type Service struct {
	repo     RepositoryAPI
	orgs     OrganizationFinder
	users    UserFinder
	platform platform.Client
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, orgs OrganizationFinder, users UserFinder, platformClient platform.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		orgs:     orgs,
		users:    users,
		platform: platformClient,
		logger:   logger,
	}
}

// List returns all teams, or those of one organization when orgID > 0.
func (s *Service) List(ctx context.Context, orgID int64) ([]*Team, error) {
	var (
		rows []*teamDatamodel.Team
		err  error
	)
	if orgID > 0 {
		rows, err = s.repo.ListByOrg(ctx, orgID)
	} else {
		rows, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		s.logger.Error("failed to list teams", "org_id", orgID, "error", err)
		return nil, internal.NewInternalError("failed to list teams", err)
	}
	teams := make([]*Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, FromDataModel(row))
	}
	return teams, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to count teams", err)
	}
	return n, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Team, error) {
	row, err := s.getRow(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, req CreateTeamRequest) (*Team, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	org, err := s.getOrg(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	row := &teamDatamodel.Team{Name: req.Name, OrgID: org.ID, Email: req.Email}
	if req.CreateOnPlatform {
		if org.GrafanaID == nil {
			return nil, internal.NewValidationFieldError("org_id", "organization is not linked to the platform", internal.ErrCodeValidationFailed)
		}
		platformReq := platform.TeamRequest{Name: req.Name}
		if req.Email != nil {
			platformReq.Email = *req.Email
		}
		platformID, err := s.platform.CreateTeam(ctx, *org.GrafanaID, platformReq)
		if err != nil {
			s.logger.Error("failed to create platform team", "org_id", org.ID, "name", req.Name, "error", err)
			return nil, platformError("failed to create platform team", err)
		}
		row.GrafanaID = &platformID
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create team", err)
	}
	s.logger.Info("team created", "id", row.ID, "org_id", row.OrgID, "platform_id", row.GrafanaID)
	return FromDataModel(row), nil
}

// Update changes name and email, on the platform first when the team is linked.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTeamRequest) (*Team, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	row, err := s.getRow(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		row.Name = *req.Name
	}
	if req.Email != nil {
		row.Email = req.Email
	}

	if row.GrafanaID != nil {
		org, err := s.getOrg(ctx, row.OrgID)
		if err != nil {
			return nil, err
		}
		if org.GrafanaID != nil {
			platformReq := platform.TeamRequest{Name: row.Name}
			if row.Email != nil {
				platformReq.Email = *row.Email
			}
			if err := s.platform.UpdateTeam(ctx, *org.GrafanaID, *row.GrafanaID, platformReq); err != nil {
				s.logger.Error("failed to update platform team", "id", id, "error", err)
				return nil, platformError("failed to update platform team", err)
			}
		}
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update team", err)
	}
	return FromDataModel(row), nil
}

// Delete removes the local team only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.getRow(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete team", err)
	}
	s.logger.Info("team deleted", "id", id)
	return nil
}

// ----------------- MEMBERSHIPS -----------------

func (s *Service) ListMembers(ctx context.Context, teamID int64) ([]*Membership, error) {
	if _, err := s.getRow(ctx, teamID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMembershipsByTeam(ctx, teamID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list team members", err)
	}
	return membershipsFromRows(rows), nil
}

func (s *Service) ListUserMemberships(ctx context.Context, userID int64) ([]*Membership, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list team memberships", err)
	}
	return membershipsFromRows(rows), nil
}

func (s *Service) AddMember(ctx context.Context, teamID int64, req AddMemberRequest) (*Membership, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, u, scope, err := s.resolve(ctx, teamID, req.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMembership(ctx, u.ID, t.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check team membership", err)
	}
	if existing != nil {
		return nil, internal.ErrTeamMembershipExists
	}

	if scope != nil {
		if err := s.platform.AddTeamMember(ctx, scope.orgID, scope.teamID, *u.GrafanaID); err != nil {
			s.logger.Error("failed to add platform team member", "team_id", t.ID, "user_id", u.ID, "error", err)
			if errors.Is(err, platform.ErrConflict) {
				return nil, internal.ErrTeamMembershipExists.WithCause(err)
			}
			return nil, platformError("failed to add user to platform team", err)
		}
	}

	m := &teamDatamodel.Membership{UserID: u.ID, TeamID: t.ID}
	if err := s.repo.CreateMembership(ctx, m); err != nil {
		if again, lookupErr := s.repo.GetMembership(ctx, u.ID, t.ID); lookupErr == nil && again != nil {
			return nil, internal.ErrTeamMembershipExists
		}
		return nil, internal.NewInternalError("failed to create team membership", err)
	}

	s.logger.Info("team member added", "team_id", t.ID, "user_id", u.ID)
	return MembershipFromDataModel(m), nil
}

func (s *Service) RemoveMember(ctx context.Context, teamID, userID int64) error {
	t, u, scope, err := s.resolve(ctx, teamID, userID)
	if err != nil {
		return err
	}
	existing, err := s.repo.GetMembership(ctx, u.ID, t.ID)
	if err != nil {
		return internal.NewInternalError("failed to get team membership", err)
	}
	if existing == nil {
		return internal.ErrMembershipNotFound
	}

	if scope != nil {
		if err := s.platform.RemoveTeamMember(ctx, scope.orgID, scope.teamID, *u.GrafanaID); err != nil {
			s.logger.Error("failed to remove platform team member", "team_id", t.ID, "user_id", u.ID, "error", err)
			return platformError("failed to remove user from platform team", err)
		}
	}

	if err := s.repo.DeleteMembership(ctx, u.ID, t.ID); err != nil {
		return internal.NewInternalError("failed to delete team membership", err)
	}
	s.logger.Info("team member removed", "team_id", t.ID, "user_id", u.ID)
	return nil
}

// platformScope holds the platform ids needed for a team member call.
type platformScope struct {
	orgID  int64
	teamID int64
}

// resolve loads the team and user. The scope is nil unless team, its
// organization and the user all carry platform ids.
func (s *Service) resolve(ctx context.Context, teamID, userID int64) (*teamDatamodel.Team, *userDatamodel.User, *platformScope, error) {
	t, err := s.getRow(ctx, teamID)
	if err != nil {
		return nil, nil, nil, err
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if t.GrafanaID == nil || u.GrafanaID == nil {
		return t, u, nil, nil
	}
	org, err := s.getOrg(ctx, t.OrgID)
	if err != nil {
		return nil, nil, nil, err
	}
	if org.GrafanaID == nil {
		return t, u, nil, nil
	}
	return t, u, &platformScope{orgID: *org.GrafanaID, teamID: *t.GrafanaID}, nil
}

func (s *Service) getRow(ctx context.Context, id int64) (*teamDatamodel.Team, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get team", err)
	}
	if row == nil {
		return nil, internal.ErrTeamNotFound
	}
	return row, nil
}

func (s *Service) getOrg(ctx context.Context, id int64) (*orgDatamodel.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get organization", err)
	}
	if org == nil {
		return nil, internal.ErrOrganizationNotFound
	}
	return org, nil
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

func membershipsFromRows(rows []*teamDatamodel.Membership) []*Membership {
	out := make([]*Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, MembershipFromDataModel(row))
	}
	return out
}

func platformError(msg string, err error) error {
	return internal.NewExternalError(msg, internal.ErrCodePlatformRequestFailed, err)
}
