package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Transactor runs a unit of work in a single database transaction. Nothing
// written inside fn is visible to other transactions until fn returns nil.
type Transactor struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
}

func NewTransactor(db *gorm.DB, isolation sql.IsolationLevel) *Transactor {
	return &Transactor{db: db, isolation: isolation}
}

func (t *Transactor) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if t.isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: t.isolation})
	}
	return t.db.WithContext(ctx).Transaction(fn, opts...)
}

// IsSerializationFailure reports whether err is a storage-level conflict
// after which the whole transaction may be replayed.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}
