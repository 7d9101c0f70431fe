package organization

import (
	"strings"

	"github.com/frahmantamala/grafana-sync/internal"
	"github.com/frahmantamala/grafana-sync/internal/core/common/validation"
)

// CreateOrganizationRequest adds a local organization. With CreateOnPlatform
// the organization is created on the platform first and linked.
type CreateOrganizationRequest struct {
	Name             string `json:"name"`
	CreateOnPlatform bool   `json:"create_on_platform,omitempty"`
}

func (r *CreateOrganizationRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	v := validation.NewValidator()
	v.Field("name", r.Name).Required().MaxLength(255)
	return v.Validate()
}

type UpdateOrganizationRequest struct {
	Name string `json:"name"`
}

func (r *UpdateOrganizationRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	v := validation.NewValidator()
	v.Field("name", r.Name).Required().MaxLength(255)
	return v.Validate()
}

type AddMemberRequest struct {
	UserID    int64  `json:"user_id"`
	Role      string `json:"role,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

func (r *AddMemberRequest) Validate() error {
	if r.Role == "" {
		r.Role = RoleViewer
	}
	v := validation.NewValidator()
	v.Field("user_id", r.UserID).Required()
	v.Field("role", r.Role).OneOf(internal.ErrCodeInvalidRole, RoleAdmin, RoleEditor, RoleViewer)
	return v.Validate()
}

type UpdateMemberRequest struct {
	Role string `json:"role"`
}

func (r *UpdateMemberRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("role", r.Role).OneOf(internal.ErrCodeInvalidRole, RoleAdmin, RoleEditor, RoleViewer)
	return v.Validate()
}
