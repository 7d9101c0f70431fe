package postgres

import (
	"context"
	"errors"

	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*orgDatamodel.Organization, error) {
	var org orgDatamodel.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) GetByGrafanaID(ctx context.Context, grafanaID int64) (*orgDatamodel.Organization, error) {
	var org orgDatamodel.Organization
	err := r.db.WithContext(ctx).Where("grafana_id = ?", grafanaID).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) ListAll(ctx context.Context) ([]*orgDatamodel.Organization, error) {
	var orgs []*orgDatamodel.Organization
	err := r.db.WithContext(ctx).Order("id ASC").Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&orgDatamodel.Organization{}).Count(&n).Error
	return n, err
}

func (r *OrganizationRepository) Create(ctx context.Context, org *orgDatamodel.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *OrganizationRepository) Update(ctx context.Context, org *orgDatamodel.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

func (r *OrganizationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", id).Delete(&orgDatamodel.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&orgDatamodel.Organization{}, id).Error
	})
}

func (r *OrganizationRepository) GetMembership(ctx context.Context, userID, orgID int64) (*orgDatamodel.Membership, error) {
	var m orgDatamodel.Membership
	err := r.db.WithContext(ctx).Where("user_id = ? AND org_id = ?", userID, orgID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *OrganizationRepository) ListMembershipsByOrg(ctx context.Context, orgID int64) ([]*orgDatamodel.Membership, error) {
	var ms []*orgDatamodel.Membership
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("id ASC").Find(&ms).Error
	return ms, err
}

func (r *OrganizationRepository) ListMembershipsByUser(ctx context.Context, userID int64) ([]*orgDatamodel.Membership, error) {
	var ms []*orgDatamodel.Membership
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&ms).Error
	return ms, err
}

func (r *OrganizationRepository) CreateMembership(ctx context.Context, m *orgDatamodel.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *OrganizationRepository) UpdateMembershipRole(ctx context.Context, userID, orgID int64, role string) error {
	return r.db.WithContext(ctx).Model(&orgDatamodel.Membership{}).
		Where("user_id = ? AND org_id = ?", userID, orgID).
		Update("role", role).Error
}

func (r *OrganizationRepository) DeleteMembership(ctx context.Context, userID, orgID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND org_id = ?", userID, orgID).
		Delete(&orgDatamodel.Membership{}).Error
}

func (r *OrganizationRepository) SetDefaultMembership(ctx context.Context, userID, orgID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&orgDatamodel.Membership{}).
			Where("user_id = ? AND org_id <> ?", userID, orgID).
			Update("is_default", false).Error
		if err != nil {
			return err
		}
		res := tx.Model(&orgDatamodel.Membership{}).
			Where("user_id = ? AND org_id = ?", userID, orgID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
