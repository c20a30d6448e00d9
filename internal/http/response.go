package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/salesops-contracts/internal/model"
)

type contractResponse struct {
	ID           uuid.UUID                 `json:"id"`
	ClientName   string                    `json:"client_name"`
	ClientEmail  *string                   `json:"client_email"`
	ClientPhone  *string                   `json:"client_phone"`
	TotalAmount  model.Money               `json:"total_amount"`
	Clauses      []string                  `json:"contract_clauses"`
	Status       model.ContractStatus      `json:"status"`
	SalesAgentID uuid.UUID                 `json:"sales_agent_id"`
	PackageID    uuid.UUID                 `json:"package_id"`
	CouponCode   *string                   `json:"coupon_code"`
	Addons       []model.ContractAddonView `json:"addons"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

func toContractResponse(contract *model.Contract) contractResponse {
	clauses := []string(contract.Clauses)
	if clauses == nil {
		clauses = []string{}
	}
	addons := contract.Addons
	if addons == nil {
		addons = []model.ContractAddonView{}
	}
	return contractResponse{
		ID:           contract.ID,
		ClientName:   contract.ClientName,
		ClientEmail:  contract.ClientEmail,
		ClientPhone:  contract.ClientPhone,
		TotalAmount:  contract.TotalAmount,
		Clauses:      clauses,
		Status:       contract.Status,
		SalesAgentID: contract.SalesAgentID,
		PackageID:    contract.PackageID,
		CouponCode:   contract.CouponCode,
		Addons:       addons,
		CreatedAt:    contract.CreatedAt,
		UpdatedAt:    contract.UpdatedAt,
	}
}

type auditEntryResponse struct {
	ID         int64     `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	UserID     uuid.UUID `json:"user_id"`
	UserName   string    `json:"user_name"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAuditEntryResponse(entry model.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:         entry.ID,
		ContractID: entry.ContractID,
		UserID:     entry.UserID,
		UserName:   entry.UserName,
		Action:     entry.Action,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt,
	}
}

type clauseResponse struct {
	ID             uuid.UUID `json:"id"`
	ServiceID      uuid.UUID `json:"service_id"`
	ClauseText     string    `json:"clause_text"`
	DurationMonths int       `json:"duration_months"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

func toClauseResponse(clause model.Clause) clauseResponse {
	return clauseResponse{
		ID:             clause.ID,
		ServiceID:      clause.ServiceID,
		ClauseText:     clause.ClauseText,
		DurationMonths: clause.DurationMonths,
		SortOrder:      clause.SortOrder,
		CreatedAt:      clause.CreatedAt,
	}
}

type monthlyResponse struct {
	Month          string      `json:"month"`
	Revenue        model.Money `json:"revenue"`
	ContractsCount int         `json:"contracts_count"`
}

type statusCountResponse struct {
	Status model.ContractStatus `json:"status"`
	Count  int                  `json:"count"`
}

type performanceResponse struct {
	UserID                uuid.UUID             `json:"user_id"`
	UserName              string                `json:"user_name"`
	UserEmail             string                `json:"user_email"`
	Role                  model.UserRole        `json:"role"`
	TotalRevenue          model.Money           `json:"total_revenue"`
	ContractsCount        int                   `json:"contracts_count"`
	TargetSales           model.Money           `json:"target_sales"`
	AchievementPercentage model.Money           `json:"achievement_percentage"`
	Monthly               []monthlyResponse     `json:"monthly_performance"`
	StatusDistribution    []statusCountResponse `json:"status_distribution"`
}

func toPerformanceResponse(report model.PerformanceReport) performanceResponse {
	resp := performanceResponse{
		UserID:                report.UserID,
		UserName:              report.UserName,
		UserEmail:             report.UserEmail,
		Role:                  report.Role,
		TotalRevenue:          report.TotalRevenue,
		ContractsCount:        report.ContractsCount,
		TargetSales:           report.TargetSales,
		AchievementPercentage: report.AchievementPercentage,
		Monthly:               make([]monthlyResponse, 0, len(report.Monthly)),
		StatusDistribution:    make([]statusCountResponse, 0, len(report.StatusDistribution)),
	}
	for _, m := range report.Monthly {
		resp.Monthly = append(resp.Monthly, monthlyResponse{Month: m.Month, Revenue: m.Revenue, ContractsCount: m.ContractsCount})
	}
	for _, s := range report.StatusDistribution {
		resp.StatusDistribution = append(resp.StatusDistribution, statusCountResponse{Status: s.Status, Count: s.Count})
	}
	return resp
}

type companyPerformanceResponse struct {
	CompanyID              uuid.UUID   `json:"company_id"`
	CompanyName            string      `json:"company_name"`
	AgentsCount            int         `json:"agents_count"`
	TotalRevenue           model.Money `json:"total_revenue"`
	TotalContracts         int         `json:"total_contracts"`
	AverageRevenuePerAgent model.Money `json:"average_revenue_per_agent"`
}

func toCompanyPerformanceResponse(company model.CompanyPerformance) companyPerformanceResponse {
	return companyPerformanceResponse{
		CompanyID:              company.CompanyID,
		CompanyName:            company.CompanyName,
		AgentsCount:            company.AgentsCount,
		TotalRevenue:           company.TotalRevenue,
		TotalContracts:         company.TotalContracts,
		AverageRevenuePerAgent: company.AverageRevenuePerAgent,
	}
}
