package organization

import "time"

const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
)

type Organization struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	GrafanaID *int64    `gorm:"column:grafana_id;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Organization) TableName() string {
	return "grafana_organizations"
}

// Membership links a mirrored user to an organization. The (user_id, org_id)
// pair is unique.
type Membership struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:ux_user_org_membership"`
	OrgID     int64     `gorm:"column:org_id;not null;uniqueIndex:ux_user_org_membership"`
	Role      string    `gorm:"column:role;not null;default:Viewer"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Membership) TableName() string {
	return "user_organization_memberships"
}
