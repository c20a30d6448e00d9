package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nurpe/salesops-contracts/internal/model"
)

func TestGenerateContract(t *testing.T) {
	generator, err := NewGenerator("")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	coupon := "ZIKOLA10"
	doc := model.ContractDocument{
		Contract: model.Contract{
			ID:          uuid.New(),
			ClientName:  "Café Acme",
			TotalAmount: model.MustParseMoney("119700"),
			Clauses:     datatypes.JSONSlice[string]{"Monthly reporting.", "Two revisions per deliverable."},
			Status:      model.ContractStatusPendingReview,
			CouponCode:  &coupon,
			CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Addons: []model.ContractAddonView{
				{AddonID: uuid.New(), Name: "Extra reel", Price: model.MustParseMoney("5000")},
			},
		},
		Package:   model.Package{Name: "Growth", Type: "marketing", DurationMonths: 6, TotalPrice: model.MustParseMoney("120000")},
		AgentName: "Sara Agent",
		Currency:  "SAR",
	}

	content, err := generator.Generate(doc)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Fatalf("content: want PDF header")
	}
}

func TestNewGeneratorMissingFont(t *testing.T) {
	if _, err := NewGenerator("/nonexistent/font.ttf"); err == nil {
		t.Fatalf("NewGenerator: want error for missing font")
	}
}

func TestFormatAmount(t *testing.T) {
	if got := formatAmount(model.MustParseMoney("119700"), "SAR"); got != "119700.00 SAR" {
		t.Fatalf("formatAmount: want=%q got=%q", "119700.00 SAR", got)
	}
	if got := formatAmount(model.MustParseMoney("5"), ""); got != "5.00" {
		t.Fatalf("formatAmount without currency: want=%q got=%q", "5.00", got)
	}
}
