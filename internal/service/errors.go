package service

import (
	"errors"
	"fmt"

	"github.com/nurpe/salesops-contracts/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")

	ErrPackageNotFound  = fmt.Errorf("package %w", ErrNotFound)
	ErrAddonNotFound    = fmt.Errorf("addon %w", ErrNotFound)
	ErrClauseNotFound   = fmt.Errorf("clause %w", ErrNotFound)
	ErrContractNotFound = fmt.Errorf("contract %w", ErrNotFound)
	ErrCouponNotFound   = fmt.Errorf("coupon %w", ErrNotFound)
	ErrServiceNotFound  = fmt.Errorf("service %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrCouponInactive      = repository.ErrCouponInactive
	ErrCouponExpired       = repository.ErrCouponExpired
	ErrCouponLimitExceeded = repository.ErrCouponLimitExceeded

	// ErrTransactionFailure wraps storage-level aborts. Serialization
	// conflicts are already retried before it reaches the caller.
	ErrTransactionFailure = errors.New("transaction failed")
)

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrPermissionDenied,
		ErrInvalidInput,
		ErrCouponInactive,
		ErrCouponExpired,
		ErrCouponLimitExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func couponError(err error) error {
	if errors.Is(err, repository.ErrCouponNotFound) {
		return ErrCouponNotFound
	}
	return err
}
