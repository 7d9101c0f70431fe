package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
)

const (
	StatusPending  = userDatamodel.StatusPending
	StatusActive   = userDatamodel.StatusActive
	StatusDisabled = userDatamodel.StatusDisabled
)

// User is a mirrored account. UserID is unique across all rows.
type User struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	Name       *string    `json:"name"`
	Email      *string    `json:"email"`
	Login      *string    `json:"login"`
	Company    *string    `json:"company"`
	Department *string    `json:"department"`
	Position   *string    `json:"position"`
	GrafanaID  *int64     `json:"grafana_id"`
	LastLogin  *time.Time `json:"last_login"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (u *User) IsProvisioned() bool {
	return u.GrafanaID != nil
}

// LoginName is the login used on the platform, defaulting to UserID.
func (u *User) LoginName() string {
	if u.Login != nil && *u.Login != "" {
		return *u.Login
	}
	return u.UserID
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:         u.ID,
		UserID:     u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Login:      u.Login,
		Company:    u.Company,
		Department: u.Department,
		Position:   u.Position,
		GrafanaID:  u.GrafanaID,
		LastLogin:  u.LastLogin,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:         u.ID,
		UserID:     u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Login:      u.Login,
		Company:    u.Company,
		Department: u.Department,
		Position:   u.Position,
		GrafanaID:  u.GrafanaID,
		LastLogin:  u.LastLogin,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
