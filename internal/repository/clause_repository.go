package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/model"
)

type ClauseRepository struct {
	db *gorm.DB
}

func NewClauseRepository(db *gorm.DB) *ClauseRepository {
	return &ClauseRepository{db: db}
}

func (r *ClauseRepository) WithTx(tx *gorm.DB) *ClauseRepository {
	return &ClauseRepository{db: tx}
}

// CompileClauses returns the text of every clause owned by one of serviceIDs
// whose duration equals durationMonths exactly. Output is ordered by
// sort_order, then service_id, then clause id, so repeated calls over the
// same data yield the same sequence. No match is an empty result, not an error.
func (r *ClauseRepository) CompileClauses(ctx context.Context, serviceIDs []uuid.UUID, durationMonths int) ([]string, error) {
	texts := []string{}
	if len(serviceIDs) == 0 {
		return texts, nil
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT clause_text
		FROM contract_clauses
		WHERE service_id IN ?
			AND duration_months = ?
		ORDER BY sort_order ASC, service_id ASC, id ASC
	`, serviceIDs, durationMonths).Scan(&texts).Error
	if err != nil {
		return nil, err
	}
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}

func (r *ClauseRepository) CreateClause(ctx context.Context, clause *model.Clause) error {
	return r.db.WithContext(ctx).Create(clause).Error
}

func (r *ClauseRepository) ListClauses(ctx context.Context) ([]model.Clause, error) {
	var clauses []model.Clause
	err := r.db.WithContext(ctx).
		Order("service_id ASC").
		Order("duration_months ASC").
		Order("sort_order ASC").
		Find(&clauses).Error
	if err != nil {
		return nil, err
	}
	return clauses, nil
}

func (r *ClauseRepository) ServiceExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Service{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ClauseRepository) GetClause(ctx context.Context, id uuid.UUID) (*model.Clause, error) {
	var clause model.Clause
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&clause).Error; err != nil {
		return nil, err
	}
	return &clause, nil
}

// UpdateClause applies updates to the clause row. Contracts keep the clause
// text they were created with, so nothing else is touched.
func (r *ClauseRepository) UpdateClause(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Clause{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ClauseRepository) DeleteClause(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Clause{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
