package team

import (
	"strings"

	"github.com/frahmantamala/grafana-sync/internal/core/common/validation"
)

type CreateTeamRequest struct {
	Name             string  `json:"name"`
	OrgID            int64   `json:"org_id"`
	Email            *string `json:"email,omitempty"`
	CreateOnPlatform bool    `json:"create_on_platform,omitempty"`
}

func (r *CreateTeamRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	v := validation.NewValidator()
	v.Field("name", r.Name).Required().MaxLength(255)
	v.Field("org_id", r.OrgID).Required()
	v.Field("email", r.Email).NotBlank()
	return v.Validate()
}

type UpdateTeamRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

func (r *UpdateTeamRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("name", r.Name).NotBlank().MaxLength(255)
	return v.Validate()
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id"`
}

func (r *AddMemberRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", r.UserID).Required()
	return v.Validate()
}
