package organization

import (
	"time"

	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
)

const (
	RoleAdmin  = orgDatamodel.RoleAdmin
	RoleEditor = orgDatamodel.RoleEditor
	RoleViewer = orgDatamodel.RoleViewer
)

type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GrafanaID *int64    `json:"grafana_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Organization) IsLinked() bool {
	return o.GrafanaID != nil
}

// Membership places a mirrored user in an organization with a role. A user
// has at most one default membership.
type Membership struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrgID     int64     `json:"org_id"`
	Role      string    `json:"role"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDataModel(o *Organization) *orgDatamodel.Organization {
	return &orgDatamodel.Organization{
		ID:        o.ID,
		Name:      o.Name,
		GrafanaID: o.GrafanaID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func FromDataModel(o *orgDatamodel.Organization) *Organization {
	return &Organization{
		ID:        o.ID,
		Name:      o.Name,
		GrafanaID: o.GrafanaID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func MembershipFromDataModel(m *orgDatamodel.Membership) *Membership {
	return &Membership{
		ID:        m.ID,
		UserID:    m.UserID,
		OrgID:     m.OrgID,
		Role:      m.Role,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
	}
}
