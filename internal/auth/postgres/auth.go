package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/grafana-sync/internal/auth"
	accountDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/account"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.UserRepository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*accountDatamodel.ConsoleUser, error) {
	var u accountDatamodel.ConsoleUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*accountDatamodel.ConsoleUser, error) {
	var u accountDatamodel.ConsoleUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *accountDatamodel.ConsoleUser) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repository) Update(ctx context.Context, u *accountDatamodel.ConsoleUser) error {
	return r.db.WithContext(ctx).Save(u).Error
}
