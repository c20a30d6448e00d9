package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/model"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon is inactive")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponLimitExceeded = errors.New("coupon usage limit exceeded")
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) WithTx(tx *gorm.DB) *CouponRepository {
	return &CouponRepository{db: tx}
}

// Redeem validates the coupon and increments its usage in one conditional
// UPDATE. The row counts as redeemed only when that statement touched it, so
// concurrent callers can never push used_count past usage_limit. The
// increment belongs to whatever transaction r is bound to.
func (r *CouponRepository) Redeem(ctx context.Context, code string, now time.Time) (model.Money, error) {
	code = strings.TrimSpace(code)
	db := r.db.WithContext(ctx)

	res := db.Model(&model.Coupon{}).
		Where("code = ?", code).
		Where("is_active = ?", true).
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		Where("(usage_limit IS NULL OR used_count < usage_limit)").
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return model.Money{}, res.Error
	}

	var coupon model.Coupon
	err := db.Where("code = ?", code).Take(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Money{}, ErrCouponNotFound
	}
	if err != nil {
		return model.Money{}, err
	}

	if res.RowsAffected == 1 {
		return coupon.DiscountPercent, nil
	}
	return model.Money{}, classifyRejection(coupon, now)
}

func classifyRejection(coupon model.Coupon, now time.Time) error {
	switch {
	case !coupon.IsActive:
		return ErrCouponInactive
	case coupon.ExpiresAt != nil && !now.Before(*coupon.ExpiresAt):
		return ErrCouponExpired
	case coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit:
		return ErrCouponLimitExceeded
	default:
		return fmt.Errorf("coupon %q changed during redemption: %w", coupon.Code, ErrCouponLimitExceeded)
	}
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).Take(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}
