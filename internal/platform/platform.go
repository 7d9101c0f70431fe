package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	platformDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/platform"
)

type (
	Org               = platformDatamodel.Org
	User              = platformDatamodel.User
	Team              = platformDatamodel.Team
	TeamMember        = platformDatamodel.TeamMember
	CreateUserRequest = platformDatamodel.CreateUserRequest
	UpdateUserRequest = platformDatamodel.UpdateUserRequest
	TeamRequest       = platformDatamodel.TeamRequest
)

// Client is the admin API of the dashboard platform. Team and team member
// calls are scoped to orgID; implementations switch the session to that
// organization and issue the call as one atomic step.
//
// List calls propagate failures. Get calls return nil, nil when the remote
// object does not exist.
type Client interface {
	ListOrgs(ctx context.Context) ([]Org, error)
	GetOrg(ctx context.Context, id int64) (*Org, error)
	CreateOrg(ctx context.Context, name string) (int64, error)
	UpdateOrg(ctx context.Context, id int64, name string) error
	DeleteOrg(ctx context.Context, id int64) error

	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (int64, error)
	UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) error
	DeleteUser(ctx context.Context, id int64) error

	AddOrgUser(ctx context.Context, orgID int64, loginOrEmail, role string) error
	UpdateOrgUserRole(ctx context.Context, orgID, userID int64, role string) error
	RemoveOrgUser(ctx context.Context, orgID, userID int64) error

	ListTeams(ctx context.Context, orgID int64) ([]Team, error)
	GetTeam(ctx context.Context, orgID, teamID int64) (*Team, error)
	CreateTeam(ctx context.Context, orgID int64, req TeamRequest) (int64, error)
	UpdateTeam(ctx context.Context, orgID, teamID int64, req TeamRequest) error
	DeleteTeam(ctx context.Context, orgID, teamID int64) error

	ListTeamMembers(ctx context.Context, orgID, teamID int64) ([]TeamMember, error)
	AddTeamMember(ctx context.Context, orgID, teamID, userID int64) error
	RemoveTeamMember(ctx context.Context, orgID, teamID, userID int64) error
}

var (
	ErrNotFound   = errors.New("platform: not found")
	ErrConflict   = errors.New("platform: conflict")
	ErrValidation = errors.New("platform: invalid request")
	ErrAuth       = errors.New("platform: authentication failed")
)

// APIError is a non-2xx answer from the platform.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("platform %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrAuth:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}
