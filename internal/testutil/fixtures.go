package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/model"
)

func SeedUser(tb testing.TB, database *gorm.DB, role model.UserRole, name string) *model.User {
	tb.Helper()
	u := &model.User{
		ID:          uuid.New(),
		Name:        name,
		Email:       uuid.NewString() + "@zikola.test",
		Role:        role,
		TargetSales: model.MoneyFromInt(500000),
		IsActive:    true,
	}
	create(tb, database, u, "user")
	return u
}

func SeedCompany(tb testing.TB, database *gorm.DB, name string) *model.Company {
	tb.Helper()
	c := &model.Company{ID: uuid.New(), Name: name}
	create(tb, database, c, "company")
	return c
}

// JoinCompany moves the user into the company.
func JoinCompany(tb testing.TB, database *gorm.DB, user *model.User, company *model.Company) {
	tb.Helper()
	if err := database.Model(&model.User{}).Where("id = ?", user.ID).Update("company_id", company.ID).Error; err != nil {
		tb.Fatalf("join company: %v", err)
	}
	user.CompanyID = &company.ID
}

func SeedService(tb testing.TB, database *gorm.DB, name string) *model.Service {
	tb.Helper()
	s := &model.Service{
		ID:          uuid.New(),
		Name:        name,
		MonthlyCost: model.MoneyFromInt(5000),
		Department:  "marketing",
	}
	create(tb, database, s, "service")
	return s
}

func SeedPackage(tb testing.TB, database *gorm.DB, durationMonths int, price string, services ...*model.Service) *model.Package {
	tb.Helper()
	p := &model.Package{
		ID:             uuid.New(),
		Name:           "package",
		Type:           "marketing",
		DurationMonths: durationMonths,
		TotalPrice:     model.MustParseMoney(price),
	}
	create(tb, database, p, "package")
	for i, s := range services {
		create(tb, database, &model.PackageService{PackageID: p.ID, ServiceID: s.ID, Position: i}, "package service")
		p.ServiceIDs = append(p.ServiceIDs, s.ID)
	}
	return p
}

func SeedClause(tb testing.TB, database *gorm.DB, serviceID uuid.UUID, durationMonths, sortOrder int, text string) *model.Clause {
	tb.Helper()
	c := &model.Clause{
		ID:             uuid.New(),
		ServiceID:      serviceID,
		ClauseText:     text,
		DurationMonths: durationMonths,
		SortOrder:      sortOrder,
	}
	create(tb, database, c, "clause")
	return c
}

func SeedAddon(tb testing.TB, database *gorm.DB, name, price string) *model.Addon {
	tb.Helper()
	a := &model.Addon{
		ID:    uuid.New(),
		Name:  name,
		Price: model.MustParseMoney(price),
	}
	create(tb, database, a, "addon")
	return a
}

type CouponOption func(*model.Coupon)

func WithUsageLimit(limit int) CouponOption {
	return func(c *model.Coupon) { c.UsageLimit = &limit }
}

func WithUsedCount(n int) CouponOption {
	return func(c *model.Coupon) { c.UsedCount = n }
}

func WithExpiry(at time.Time) CouponOption {
	return func(c *model.Coupon) { c.ExpiresAt = &at }
}

func Inactive() CouponOption {
	return func(c *model.Coupon) { c.IsActive = false }
}

func SeedCoupon(tb testing.TB, database *gorm.DB, code, percent string, opts ...CouponOption) *model.Coupon {
	tb.Helper()
	c := &model.Coupon{
		ID:              uuid.New(),
		Code:            code,
		DiscountPercent: model.MustParseMoney(percent),
		IsActive:        true,
	}
	for _, opt := range opts {
		opt(c)
	}
	create(tb, database, c, "coupon")
	return c
}

func ReloadCoupon(tb testing.TB, database *gorm.DB, code string) *model.Coupon {
	tb.Helper()
	var c model.Coupon
	if err := database.Where("code = ?", code).Take(&c).Error; err != nil {
		tb.Fatalf("reload coupon %s: %v", code, err)
	}
	return &c
}

func SeedContract(tb testing.TB, database *gorm.DB, agent *model.User, pkg *model.Package, total string, clauses ...string) *model.Contract {
	tb.Helper()
	if clauses == nil {
		clauses = []string{}
	}
	now := time.Now().UTC()
	c := &model.Contract{
		ID:           uuid.New(),
		ClientName:   "Acme Trading",
		TotalAmount:  model.MustParseMoney(total),
		Clauses:      datatypes.JSONSlice[string](clauses),
		Status:       model.ContractStatusPendingReview,
		SalesAgentID: agent.ID,
		PackageID:    pkg.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	create(tb, database, c, "contract")
	return c
}

func LinkAddon(tb testing.TB, database *gorm.DB, contract *model.Contract, addon *model.Addon) {
	tb.Helper()
	create(tb, database, &model.ContractAddon{ContractID: contract.ID, AddonID: addon.ID}, "contract addon")
}
