package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal"
	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
	"github.com/frahmantamala/grafana-sync/internal/platform"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// RepositoryAPI is the local store of mirrored users. Lookups return nil, nil
// when nothing matches.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUserID(ctx context.Context, userID string) (*userDatamodel.User, error)
	GetByGrafanaID(ctx context.Context, grafanaID int64) (*userDatamodel.User, error)
	List(ctx context.Context, filter ListFilter) ([]*userDatamodel.User, int64, error)
	ListAll(ctx context.Context) ([]*userDatamodel.User, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo     RepositoryAPI
	platform platform.Client
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, platformClient platform.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		platform: platformClient,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListUsersResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return &ListUsersResponse{Users: users, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count users", err)
	}
	return counts, nil
}

// Create adds a pending user. The user id must not exist yet.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check user id", err)
	}
	if existing != nil {
		return nil, internal.ErrUserIDTaken
	}

	name := req.Name
	row := &userDatamodel.User{
		UserID:     req.UserID,
		Name:       &name,
		Email:      req.Email,
		Login:      req.Login,
		Company:    req.Company,
		Department: req.Department,
		Position:   req.Position,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "user_id", req.UserID, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "id", row.ID, "user_id", row.UserID)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}

	if req.Name != nil {
		row.Name = req.Name
	}
	if req.Email != nil {
		row.Email = req.Email
	}
	if req.Login != nil {
		row.Login = req.Login
	}
	if req.Company != nil {
		row.Company = req.Company
	}
	if req.Department != nil {
		row.Department = req.Department
	}
	if req.Position != nil {
		row.Position = req.Position
	}
	if req.Status != nil {
		row.Status = *req.Status
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update user", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to update user", err)
	}
	return FromDataModel(row), nil
}

// Delete removes the local record only. The platform account is left alone.
func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return internal.ErrUserNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}
	s.logger.Info("user deleted", "id", id, "user_id", row.UserID)
	return nil
}

// Provision creates the platform account for a user that does not have one
// yet, stores the platform id and marks the user active.
func (s *Service) Provision(ctx context.Context, id int64, req ProvisionRequest) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	u := FromDataModel(row)
	if u.IsProvisioned() {
		return nil, internal.ErrUserProvisioned
	}

	password := req.Password
	if password == "" {
		if password, err = randomPassword(); err != nil {
			return nil, internal.NewInternalError("failed to generate password", err)
		}
	}

	createReq := platform.CreateUserRequest{
		Login:    u.LoginName(),
		Password: password,
		OrgID:    req.OrgID,
	}
	if u.Name != nil {
		createReq.Name = *u.Name
	}
	if u.Email != nil {
		createReq.Email = *u.Email
	}

	platformID, err := s.platform.CreateUser(ctx, createReq)
	if err != nil {
		s.logger.Error("failed to provision platform user", "id", id, "user_id", u.UserID, "error", err)
		return nil, internal.NewExternalError("failed to create platform user", internal.ErrCodePlatformRequestFailed, err)
	}

	login := createReq.Login
	row.GrafanaID = &platformID
	row.Login = &login
	row.Status = StatusActive
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError(fmt.Sprintf("platform user %d created but local update failed", platformID), err)
	}

	s.logger.Info("user provisioned", "id", id, "user_id", u.UserID, "platform_id", platformID)
	return FromDataModel(row), nil
}

func randomPassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
