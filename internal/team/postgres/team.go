package postgres

import (
	"context"
	"errors"

	teamDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/team"
	"github.com/frahmantamala/grafana-sync/internal/team"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) team.RepositoryAPI {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*teamDatamodel.Team, error) {
	var t teamDatamodel.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) GetByGrafanaIDInOrg(ctx context.Context, orgID, grafanaID int64) (*teamDatamodel.Team, error) {
	var t teamDatamodel.Team
	err := r.db.WithContext(ctx).Where("org_id = ? AND grafana_id = ?", orgID, grafanaID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) ListAll(ctx context.Context) ([]*teamDatamodel.Team, error) {
	var teams []*teamDatamodel.Team
	err := r.db.WithContext(ctx).Order("id ASC").Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) ListByOrg(ctx context.Context, orgID int64) ([]*teamDatamodel.Team, error) {
	var teams []*teamDatamodel.Team
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("id ASC").Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&teamDatamodel.Team{}).Count(&n).Error
	return n, err
}

func (r *TeamRepository) Create(ctx context.Context, t *teamDatamodel.Team) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TeamRepository) Update(ctx context.Context, t *teamDatamodel.Team) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&teamDatamodel.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&teamDatamodel.Team{}, id).Error
	})
}

func (r *TeamRepository) GetMembership(ctx context.Context, userID, teamID int64) (*teamDatamodel.Membership, error) {
	var m teamDatamodel.Membership
	err := r.db.WithContext(ctx).Where("user_id = ? AND team_id = ?", userID, teamID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *TeamRepository) ListMembershipsByTeam(ctx context.Context, teamID int64) ([]*teamDatamodel.Membership, error) {
	var ms []*teamDatamodel.Membership
	err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id ASC").Find(&ms).Error
	return ms, err
}

func (r *TeamRepository) ListMembershipsByUser(ctx context.Context, userID int64) ([]*teamDatamodel.Membership, error) {
	var ms []*teamDatamodel.Membership
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&ms).Error
	return ms, err
}

func (r *TeamRepository) CreateMembership(ctx context.Context, m *teamDatamodel.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *TeamRepository) DeleteMembership(ctx context.Context, userID, teamID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		Delete(&teamDatamodel.Membership{}).Error
}
