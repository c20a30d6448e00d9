package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type ContractTotal struct {
	Status      model.ContractStatus
	TotalAmount model.Money
	CreatedAt   time.Time
}

// ListContractTotals returns status, total and creation time of every
// contract owned by the agent, oldest first.
func (r *ReportRepository) ListContractTotals(ctx context.Context, agentID uuid.UUID) ([]ContractTotal, error) {
	var rows []ContractTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT status, total_amount, created_at
		FROM contracts
		WHERE sales_agent_id = ?
		ORDER BY created_at ASC, id ASC
	`, agentID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type CompanyTotal struct {
	CompanyID      uuid.UUID
	CompanyName    string
	AgentsCount    int
	TotalRevenue   model.Money
	TotalContracts int
}

// ListCompanyTotals aggregates every company over its active agents and
// their contracts in statuses, ordered by company name.
func (r *ReportRepository) ListCompanyTotals(ctx context.Context, statuses []model.ContractStatus) ([]CompanyTotal, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}

	var rows []CompanyTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id AS company_id,
			c.name AS company_name,
			COUNT(DISTINCT u.id) AS agents_count,
			COALESCE(SUM(k.total_amount), 0) AS total_revenue,
			COUNT(k.id) AS total_contracts
		FROM companies c
		LEFT JOIN users u
			ON u.company_id = c.id AND u.role = ? AND u.is_active = ?
		LEFT JOIN contracts k
			ON k.sales_agent_id = u.id AND k.status IN ?
		GROUP BY c.id, c.name
		ORDER BY c.name ASC, c.id ASC
	`, string(model.UserRoleAgent), true, values).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
