package model

import "github.com/google/uuid"

type MonthlyPerformance struct {
	Month          string
	Revenue        Money
	ContractsCount int
}

type StatusCount struct {
	Status ContractStatus
	Count  int
}

// PerformanceReport aggregates an agent's revenue. Only approved and
// completed contracts count towards revenue.
type PerformanceReport struct {
	UserID                uuid.UUID
	UserName              string
	UserEmail             string
	Role                  UserRole
	TotalRevenue          Money
	ContractsCount        int
	TargetSales           Money
	AchievementPercentage Money
	Monthly               []MonthlyPerformance
	StatusDistribution    []StatusCount
}

// CompanyPerformance rolls up the active agents of one company. Revenue and
// contract counts cover approved and completed contracts only.
type CompanyPerformance struct {
	CompanyID              uuid.UUID
	CompanyName            string
	AgentsCount            int
	TotalRevenue           Money
	TotalContracts         int
	AverageRevenuePerAgent Money
}

// ContractDocument is everything the printable contract needs.
type ContractDocument struct {
	Contract  Contract
	Package   Package
	AgentName string
	Currency  string
}
