package user

import (
	"github.com/frahmantamala/grafana-sync/internal"
	"github.com/frahmantamala/grafana-sync/internal/core/common/validation"
)

type CreateUserRequest struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Login      *string `json:"login,omitempty"`
	Company    *string `json:"company,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", r.UserID).Required().MaxLength(255)
	v.Field("name", r.Name).Required().MaxLength(255)
	v.Field("email", r.Email).NotBlank().MaxLength(255)
	return v.Validate()
}

// UpdateUserRequest applies only the fields that are present.
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Login      *string `json:"login,omitempty"`
	Company    *string `json:"company,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Status     *string `json:"status,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("name", r.Name).NotBlank().MaxLength(255)
	v.Field("status", r.Status).OneOf(internal.ErrCodeInvalidStatus, StatusPending, StatusActive, StatusDisabled)
	return v.Validate()
}

type ProvisionRequest struct {
	Password string `json:"password,omitempty"`
	OrgID    int64  `json:"org_id,omitempty"`
}

type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

type ListUsersResponse struct {
	Users  []*User `json:"users"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
