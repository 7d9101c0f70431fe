package synclog

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Log rows are append-only.
type Log struct {
	ID        int64             `gorm:"primaryKey"`
	Type      string            `gorm:"column:type;not null;index"`
	Status    string            `gorm:"column:status;not null"`
	Details   datatypes.JSONMap `gorm:"column:details"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}

func (Log) TableName() string {
	return "sync_logs"
}
