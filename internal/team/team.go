package team

import (
	"time"

	teamDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/team"
)

// Team always belongs to one local organization. GrafanaID is only unique
// within that organization's platform scope.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OrgID     int64     `json:"org_id"`
	GrafanaID *int64    `json:"grafana_id"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Membership struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TeamID    int64     `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDataModel(t *Team) *teamDatamodel.Team {
	return &teamDatamodel.Team{
		ID:        t.ID,
		Name:      t.Name,
		OrgID:     t.OrgID,
		GrafanaID: t.GrafanaID,
		Email:     t.Email,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromDataModel(t *teamDatamodel.Team) *Team {
	return &Team{
		ID:        t.ID,
		Name:      t.Name,
		OrgID:     t.OrgID,
		GrafanaID: t.GrafanaID,
		Email:     t.Email,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func MembershipFromDataModel(m *teamDatamodel.Membership) *Membership {
	return &Membership{
		ID:        m.ID,
		UserID:    m.UserID,
		TeamID:    m.TeamID,
		CreatedAt: m.CreatedAt,
	}
}
