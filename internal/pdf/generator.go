package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/salesops-contracts/internal/model"
)

const coreFont = "Helvetica"

type Generator struct {
	fontName string
	fontData []byte
}

// NewGenerator renders with the core Helvetica font unless fontPath points
// to a TTF file, which is then embedded as a UTF-8 font.
func NewGenerator(fontPath string) (*Generator, error) {
	if strings.TrimSpace(fontPath) == "" {
		return &Generator{fontName: coreFont}, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	return &Generator{fontName: "ContractSans", fontData: data}, nil
}

func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)

	text := func(s string) string { return s }
	if g.fontData != nil {
		pdf.AddUTF8FontFromBytes(g.fontName, "", g.fontData)
		pdf.AddUTF8FontFromBytes(g.fontName, "B", g.fontData)
	} else {
		text = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()

	contract := doc.Contract

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, text("Service Agreement"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, text(fmt.Sprintf("Contract %s dated %s", contract.ID.String(), formatDate(contract.CreatedAt))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, text(fmt.Sprintf("Status: %s", statusLabel(contract.Status))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, text("Client"))
	pdf.SetFont(g.fontName, "", 10)
	for _, line := range []string{
		contract.ClientName,
		fmt.Sprintf("Email: %s", safeValue(contract.ClientEmail)),
		fmt.Sprintf("Phone: %s", safeValue(contract.ClientPhone)),
	} {
		pdf.MultiCell(0, 5, text(line), "", "L", false)
	}
	pdf.Ln(2)

	section(pdf, g.fontName, text("Package"))
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, text(fmt.Sprintf("%s (%s), %d months", doc.Package.Name, doc.Package.Type, doc.Package.DurationMonths)), "", "L", false)
	pdf.Ln(2)

	section(pdf, g.fontName, text("Terms"))
	pdf.SetFont(g.fontName, "", 10)
	if len(contract.Clauses) == 0 {
		pdf.MultiCell(0, 5, text("No clauses apply to this package duration."), "", "L", false)
	}
	for i, clause := range contract.Clauses {
		pdf.MultiCell(0, 5, text(fmt.Sprintf("%d. %s", i+1, clause)), "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(2)

	section(pdf, g.fontName, text("Pricing"))
	colWidths := []float64{110, 30, 34}
	drawTableRow(pdf, g.fontName, []string{text("Item"), text("Approved"), text("Price")}, colWidths, true)
	drawTableRow(pdf, g.fontName, []string{text(doc.Package.Name), "", formatAmount(doc.Package.TotalPrice, doc.Currency)}, colWidths, false)
	for _, addon := range contract.Addons {
		approved := "no"
		if addon.IsApproved {
			approved = "yes"
		}
		drawTableRow(pdf, g.fontName, []string{text(addon.Name), approved, formatAmount(addon.Price, doc.Currency)}, colWidths, false)
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "", 10)
	if contract.CouponCode != nil {
		pdf.CellFormat(0, 6, text(fmt.Sprintf("Coupon applied: %s", *contract.CouponCode)), "", 1, "R", false, 0, "")
	}
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, text(fmt.Sprintf("Total: %s", formatAmount(contract.TotalAmount, doc.Currency))), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	section(pdf, g.fontName, text("Signatures"))
	signatureBlock(pdf, g.fontName, text("Client"), text(contract.ClientName))
	signatureBlock(pdf, g.fontName, text("Sales agent"), text(doc.AgentName))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, name string) {
	pdf.SetFont(fontName, "", 11)
	if strings.TrimSpace(name) == "" {
		name = "-"
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("%s: ______________________ /%s/", label, name), "", 1, "L", false, 0, "")
}

func statusLabel(status model.ContractStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}

func safeValue(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "-"
	}
	return *value
}

func formatAmount(value model.Money, currency string) string {
	if currency == "" {
		return value.String()
	}
	return fmt.Sprintf("%s %s", value.String(), currency)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
