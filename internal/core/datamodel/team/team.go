package team

import "time"

type Team struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	OrgID     int64     `gorm:"column:org_id;not null;index"`
	GrafanaID *int64    `gorm:"column:grafana_id"`
	Email     *string   `gorm:"column:email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Team) TableName() string {
	return "grafana_teams"
}

type Membership struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:ux_user_team_membership"`
	TeamID    int64     `gorm:"column:team_id;not null;uniqueIndex:ux_user_team_membership"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Membership) TableName() string {
	return "user_team_memberships"
}
