package user

import "time"

const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is a directory or platform account mirrored locally. UserID is the
// natural key: the employee id for directory rows, the platform login otherwise.
type User struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     string     `gorm:"column:user_id;uniqueIndex;not null"`
	Name       *string    `gorm:"column:name"`
	Email      *string    `gorm:"column:email"`
	Login      *string    `gorm:"column:login"`
	Company    *string    `gorm:"column:company"`
	Department *string    `gorm:"column:department"`
	Position   *string    `gorm:"column:position"`
	GrafanaID  *int64     `gorm:"column:grafana_id;index"`
	LastLogin  *time.Time `gorm:"column:last_login"`
	Status     string     `gorm:"column:status;not null;default:pending"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "grafana_users"
}
