package repository_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/model"
	"github.com/nurpe/salesops-contracts/internal/repository"
	"github.com/nurpe/salesops-contracts/internal/testutil"
)

func TestRedeemIncrementsUsage(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewCouponRepository(db)
	testutil.SeedCoupon(t, db, "ZIKOLA10", "10", testutil.WithUsageLimit(100))

	pct, err := repo.Redeem(context.Background(), "ZIKOLA10", time.Now().UTC())
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !pct.Equal(model.MustParseMoney("10")) {
		t.Fatalf("discount: want=10 got=%s", pct)
	}
	if got := testutil.ReloadCoupon(t, db, "ZIKOLA10").UsedCount; got != 1 {
		t.Fatalf("used_count: want=1 got=%d", got)
	}
}

func TestRedeemRejections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		code    string
		opts    []testutil.CouponOption
		wantErr error
	}{
		{"inactive", "OFF", []testutil.CouponOption{testutil.Inactive()}, repository.ErrCouponInactive},
		{"expired", "OLD", []testutil.CouponOption{testutil.WithExpiry(now.Add(-time.Hour))}, repository.ErrCouponExpired},
		{"expires now", "EDGE", []testutil.CouponOption{testutil.WithExpiry(now)}, repository.ErrCouponExpired},
		{"limit reached", "FULL", []testutil.CouponOption{testutil.WithUsageLimit(3), testutil.WithUsedCount(3)}, repository.ErrCouponLimitExceeded},
		{"inactive wins over expired", "BOTH", []testutil.CouponOption{testutil.Inactive(), testutil.WithExpiry(now.Add(-time.Hour))}, repository.ErrCouponInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.DB(t)
			repo := repository.NewCouponRepository(db)
			seeded := testutil.SeedCoupon(t, db, tt.code, "15", tt.opts...)

			_, err := repo.Redeem(context.Background(), tt.code, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Redeem: want=%v got=%v", tt.wantErr, err)
			}
			if got := testutil.ReloadCoupon(t, db, tt.code).UsedCount; got != seeded.UsedCount {
				t.Fatalf("used_count: want=%d got=%d", seeded.UsedCount, got)
			}
		})
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewCouponRepository(db)

	_, err := repo.Redeem(context.Background(), "NOPE", time.Now().UTC())
	if !errors.Is(err, repository.ErrCouponNotFound) {
		t.Fatalf("Redeem: want=%v got=%v", repository.ErrCouponNotFound, err)
	}
}

func TestRedeemFutureExpiryAndNoLimit(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewCouponRepository(db)
	now := time.Now().UTC()
	testutil.SeedCoupon(t, db, "OPEN", "5", testutil.WithExpiry(now.Add(24*time.Hour)))

	for i := 0; i < 3; i++ {
		if _, err := repo.Redeem(context.Background(), "OPEN", now); err != nil {
			t.Fatalf("Redeem %d: %v", i, err)
		}
	}
	if got := testutil.ReloadCoupon(t, db, "OPEN").UsedCount; got != 3 {
		t.Fatalf("used_count: want=3 got=%d", got)
	}
}

func TestRedeemRolledBackWithTransaction(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewCouponRepository(db)
	tx := repository.NewTransactor(db, testutil.Isolation)
	testutil.SeedCoupon(t, db, "ROLLBACK", "10", testutil.WithUsageLimit(5))

	boom := errors.New("later step failed")
	err := tx.Run(context.Background(), func(txDB *gorm.DB) error {
		if _, err := repo.WithTx(txDB).Redeem(context.Background(), "ROLLBACK", time.Now().UTC()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run: want=%v got=%v", boom, err)
	}
	if got := testutil.ReloadCoupon(t, db, "ROLLBACK").UsedCount; got != 0 {
		t.Fatalf("used_count: want=0 got=%d", got)
	}
}

func TestRedeemConcurrentNeverExceedsLimit(t *testing.T) {
	runConcurrentRedeem(t, testutil.DB(t), "RACE")
}

func TestRedeemConcurrentPostgres(t *testing.T) {
	db := testutil.PostgresDB(t)
	runConcurrentRedeem(t, db, "RACE-"+time.Now().UTC().Format("150405.000000000"))
}

func runConcurrentRedeem(t *testing.T, db *gorm.DB, code string) {
	t.Helper()
	const limit = 10
	const extra = 5

	repo := repository.NewCouponRepository(db)
	tx := repository.NewTransactor(db, testutil.Isolation)
	testutil.SeedCoupon(t, db, code, "10", testutil.WithUsageLimit(limit))

	var succeeded, rejected int64
	var g errgroup.Group
	for i := 0; i < limit+extra; i++ {
		g.Go(func() error {
			err := tx.Run(context.Background(), func(txDB *gorm.DB) error {
				_, err := repo.WithTx(txDB).Redeem(context.Background(), code, time.Now().UTC())
				return err
			})
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			case errors.Is(err, repository.ErrCouponLimitExceeded):
				atomic.AddInt64(&rejected, 1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	if succeeded != limit {
		t.Fatalf("successes: want=%d got=%d", limit, succeeded)
	}
	if rejected != extra {
		t.Fatalf("limit errors: want=%d got=%d", extra, rejected)
	}
	if got := testutil.ReloadCoupon(t, db, code).UsedCount; got != limit {
		t.Fatalf("used_count: want=%d got=%d", limit, got)
	}
}
