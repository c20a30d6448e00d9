package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/model"
	"github.com/nurpe/salesops-contracts/internal/repository"
)

type ExcelGenerator interface {
	Generate(report model.PerformanceReport) ([]byte, error)
}

type ReportService struct {
	reports *repository.ReportRepository
	users   *repository.UserRepository
	excel   ExcelGenerator
}

var reportStatuses = []model.ContractStatus{
	model.ContractStatusPendingReview,
	model.ContractStatusApproved,
	model.ContractStatusRejected,
	model.ContractStatusCompleted,
}

func NewReportService(reports *repository.ReportRepository, users *repository.UserRepository, excel ExcelGenerator) *ReportService {
	return &ReportService{
		reports: reports,
		users:   users,
		excel:   excel,
	}
}

// PerformanceReport counts and sums approved and completed contracts and
// buckets them by creation month. Every contract counts towards the status
// distribution.
func (s *ReportService) PerformanceReport(ctx context.Context, userID uuid.UUID, principal model.Principal) (*model.PerformanceReport, error) {
	switch {
	case principal.IsAdmin():
	case principal.IsAgent() && principal.UserID == userID:
	default:
		return nil, ErrPermissionDenied
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	rows, err := s.reports.ListContractTotals(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &model.PerformanceReport{
		UserID:                user.ID,
		UserName:              user.Name,
		UserEmail:             user.Email,
		Role:                  user.Role,
		TotalRevenue:          model.ZeroMoney(),
		TargetSales:           user.TargetSales,
		AchievementPercentage: model.ZeroMoney(),
	}

	statusCounts := make(map[model.ContractStatus]int, len(reportStatuses))
	monthIndex := map[string]int{}
	for _, row := range rows {
		statusCounts[row.Status]++
		if !countsAsRevenue(row.Status) {
			continue
		}

		report.ContractsCount++
		report.TotalRevenue = report.TotalRevenue.Add(row.TotalAmount)

		month := row.CreatedAt.UTC().Format("2006-01")
		pos, ok := monthIndex[month]
		if !ok {
			report.Monthly = append(report.Monthly, model.MonthlyPerformance{Month: month, Revenue: model.ZeroMoney()})
			pos = len(report.Monthly) - 1
			monthIndex[month] = pos
		}
		report.Monthly[pos].ContractsCount++
		report.Monthly[pos].Revenue = report.Monthly[pos].Revenue.Add(row.TotalAmount)
	}
	sort.Slice(report.Monthly, func(i, j int) bool {
		return report.Monthly[i].Month < report.Monthly[j].Month
	})

	for _, status := range reportStatuses {
		report.StatusDistribution = append(report.StatusDistribution, model.StatusCount{
			Status: status,
			Count:  statusCounts[status],
		})
	}

	if user.TargetSales.Cmp(model.ZeroMoney()) > 0 {
		pct := report.TotalRevenue.Decimal().
			Mul(decimal.NewFromInt(100)).
			DivRound(user.TargetSales.Decimal(), model.MinorUnits)
		report.AchievementPercentage = model.NewMoney(pct)
	}
	return report, nil
}

// CompanyPerformance summarises every company over its active agents.
func (s *ReportService) CompanyPerformance(ctx context.Context, principal model.Principal) ([]model.CompanyPerformance, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	rows, err := s.reports.ListCompanyTotals(ctx, []model.ContractStatus{
		model.ContractStatusApproved,
		model.ContractStatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.CompanyPerformance, 0, len(rows))
	for _, row := range rows {
		item := model.CompanyPerformance{
			CompanyID:              row.CompanyID,
			CompanyName:            row.CompanyName,
			AgentsCount:            row.AgentsCount,
			TotalRevenue:           row.TotalRevenue.Round(),
			TotalContracts:         row.TotalContracts,
			AverageRevenuePerAgent: model.ZeroMoney(),
		}
		if row.AgentsCount > 0 {
			avg := row.TotalRevenue.Decimal().DivRound(decimal.NewFromInt(int64(row.AgentsCount)), model.MinorUnits)
			item.AverageRevenuePerAgent = model.NewMoney(avg)
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *ReportService) ExportPerformanceReport(ctx context.Context, userID uuid.UUID, principal model.Principal) (*FileResult, error) {
	report, err := s.PerformanceReport(ctx, userID, principal)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName: buildReportFileName(*report),
		Content:  content,
	}, nil
}

func countsAsRevenue(status model.ContractStatus) bool {
	return status == model.ContractStatusApproved || status == model.ContractStatusCompleted
}

func buildReportFileName(report model.PerformanceReport) string {
	name := sanitizeFileName(report.UserName)
	if name == "" {
		name = report.UserID.String()
	}
	return fmt.Sprintf("performance-%s.xlsx", strings.ToLower(name))
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
