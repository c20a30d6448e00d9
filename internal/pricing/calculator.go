// Package pricing derives the final contract total from a package price,
// add-on prices and an optional coupon discount.
package pricing

import "github.com/nurpe/salesops-contracts/internal/model"

// ComputeTotal returns base + Σ addons, minus discountPercent of that sum
// when a discount is supplied. The discount amount is rounded half-up to
// model.MinorUnits before it is subtracted, so the result never carries more
// precision than the inputs plus two digits.
func ComputeTotal(base model.Money, addonPrices []model.Money, discountPercent *model.Money) model.Money {
	total := base
	for _, price := range addonPrices {
		total = total.Add(price)
	}
	if discountPercent == nil {
		return total
	}
	discount := total.Percent(*discountPercent).Round()
	return total.Sub(discount)
}
