package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/salesops-contracts/internal/model"
)

const (
	SummarySheet = "Summary"
	MonthlySheet = "Monthly"
	StatusSheet  = "Statuses"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.PerformanceReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	amountStyle, err := file.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := g.writeSummary(file, report, amountStyle); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(MonthlySheet); err != nil {
		return nil, err
	}
	if err := g.writeMonthly(file, report, amountStyle, headerStyle); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(StatusSheet); err != nil {
		return nil, err
	}
	if err := g.writeStatuses(file, report, headerStyle); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.PerformanceReport, amountStyle int) error {
	sheet := SummarySheet
	rows := [][]interface{}{
		{"Agent", report.UserName},
		{"Email", report.UserEmail},
		{"Role", string(report.Role)},
		{"Contracts", report.ContractsCount},
		{"Revenue", report.TotalRevenue.Float64()},
		{"Target", report.TargetSales.Float64()},
		{"Achievement, %", report.AchievementPercentage.Float64()},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := file.SetCellStyle(sheet, "B5", "B7", amountStyle); err != nil {
		return err
	}
	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	return nil
}

func (g *Generator) writeMonthly(file *excelize.File, report model.PerformanceReport, amountStyle, headerStyle int) error {
	sheet := MonthlySheet
	if err := file.SetSheetRow(sheet, "A1", &[]interface{}{"Month", "Contracts", "Revenue"}); err != nil {
		return err
	}
	_ = file.SetCellStyle(sheet, "A1", "C1", headerStyle)

	for i, month := range report.Monthly {
		row := i + 2
		values := []interface{}{month.Month, month.ContractsCount, month.Revenue.Float64()}
		if err := file.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
	}
	if len(report.Monthly) > 0 {
		last := len(report.Monthly) + 1
		if err := file.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", last), amountStyle); err != nil {
			return err
		}
	}
	_ = file.SetColWidth(sheet, "A", "C", 16)
	return nil
}

func (g *Generator) writeStatuses(file *excelize.File, report model.PerformanceReport, headerStyle int) error {
	sheet := StatusSheet
	if err := file.SetSheetRow(sheet, "A1", &[]interface{}{"Status", "Contracts"}); err != nil {
		return err
	}
	_ = file.SetCellStyle(sheet, "A1", "B1", headerStyle)

	for i, status := range report.StatusDistribution {
		values := []interface{}{statusLabel(status.Status), status.Count}
		if err := file.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "B", 12)
	return nil
}

func statusLabel(status model.ContractStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}
