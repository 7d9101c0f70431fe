package postgres

import (
	"context"
	"errors"

	settingDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/setting"
	"github.com/frahmantamala/grafana-sync/internal/setting"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) setting.RepositoryAPI {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*settingDatamodel.Setting, error) {
	var s settingDatamodel.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingRepository) List(ctx context.Context) ([]*settingDatamodel.Setting, error) {
	var settings []*settingDatamodel.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *SettingRepository) ListByPrefix(ctx context.Context, prefix string) ([]*settingDatamodel.Setting, error) {
	var settings []*settingDatamodel.Setting
	err := r.db.WithContext(ctx).Where("key LIKE ?", prefix+"%").Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *SettingRepository) Upsert(ctx context.Context, key, value string) (*settingDatamodel.Setting, error) {
	s := &settingDatamodel.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, key)
}
