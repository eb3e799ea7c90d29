// file: internals/features/college/ttable_versions/service/tx.go
package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kampusku_backend/internals/features/college/errs"
)

// forUpdate memasang row lock hanya di Postgres; sqlite (test) tidak
// mendukung FOR UPDATE — di sana index parsial yang menjaga invariant.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// runInTx: satu transaksi per mutasi multi-baris; retry sekali untuk
// serialization failure / deadlock (40001/40P01), setelah itu menyerah.
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err != nil && errs.IsRetryableTx(err) {
		err = db.WithContext(ctx).Transaction(fn)
	}
	return err
}

// classify membungkus error driver jadi StorageError; error taksonomi
// dilewatkan apa adanya.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrConflict):
		return err
	default:
		return errs.Storage(op, err)
	}
}
