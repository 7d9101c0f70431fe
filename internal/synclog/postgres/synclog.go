package postgres

import (
	"context"
	"errors"

	synclogDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/synclog"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
	"gorm.io/gorm"
)

type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) synclog.RepositoryAPI {
	return &SyncLogRepository{db: db}
}

func (r *SyncLogRepository) Create(ctx context.Context, l *synclogDatamodel.Log) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *SyncLogRepository) List(ctx context.Context, limit int) ([]*synclogDatamodel.Log, error) {
	var logs []*synclogDatamodel.Log
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *SyncLogRepository) Latest(ctx context.Context, logType string) (*synclogDatamodel.Log, error) {
	q := r.db.WithContext(ctx)
	if logType != "" {
		q = q.Where("type = ?", logType)
	}
	var l synclogDatamodel.Log
	if err := q.Order("id DESC").First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
