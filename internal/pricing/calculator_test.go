package pricing

import (
	"testing"

	"github.com/nurpe/salesops-contracts/internal/model"
)

func money(raw string) model.Money { return model.MustParseMoney(raw) }

func TestComputeTotalWithoutExtras(t *testing.T) {
	base := money("120000")
	got := ComputeTotal(base, nil, nil)
	if !got.Equal(base) {
		t.Fatalf("total: want=%s got=%s", base, got)
	}
	got = ComputeTotal(base, []model.Money{}, nil)
	if !got.Equal(base) {
		t.Fatalf("total with empty add-ons: want=%s got=%s", base, got)
	}
}

func TestComputeTotalScenario(t *testing.T) {
	pct := money("10")
	got := ComputeTotal(money("120000"), []model.Money{money("5000"), money("8000")}, &pct)
	if want := money("119700"); !got.Equal(want) {
		t.Fatalf("total: want=%s got=%s", want, got)
	}
}

func TestComputeTotalAddonOrderIndependent(t *testing.T) {
	pct := money("12.5")
	addons := []model.Money{money("0.10"), money("1999.99"), money("0.20"), money("333.33")}
	reversed := make([]model.Money, len(addons))
	for i := range addons {
		reversed[len(addons)-1-i] = addons[i]
	}

	a := ComputeTotal(money("100.01"), addons, &pct)
	b := ComputeTotal(money("100.01"), reversed, &pct)
	if !a.Equal(b) {
		t.Fatalf("order dependent total: %s vs %s", a, b)
	}
}

func TestComputeTotalRoundsDiscountHalfUp(t *testing.T) {
	tests := []struct {
		name string
		base string
		pct  string
		want string
	}{
		// 10.05 * 50% = 5.025 -> 5.03 discount
		{"half rounds up", "10.05", "50", "5.02"},
		// 10.01 * 33% = 3.3033 -> 3.30 discount
		{"below half rounds down", "10.01", "33", "6.71"},
		{"zero percent", "99.99", "0", "99.99"},
		{"full discount", "99.99", "100", "0.00"},
		{"float drift free", "0.30", "10", "0.27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct := money(tt.pct)
			got := ComputeTotal(money(tt.base), nil, &pct)
			if !got.Equal(money(tt.want)) {
				t.Fatalf("total: want=%s got=%s", tt.want, got)
			}
		})
	}
}
