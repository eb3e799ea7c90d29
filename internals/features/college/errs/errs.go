// file: internals/features/college/errs/errs.go
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Taksonomi hasil operasi engine. Konflik penjadwalan BUKAN bagian dari
// taksonomi ini — konflik adalah hasil bisnis yang dikembalikan sebagai
// nilai (SaveResult/CheckResult). ErrConflict di sini khusus race
// commit/save yang kalah di constraint unik.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

// StorageError: transaksi/koneksi gagal setelah retry; satu-satunya kelas
// yang fatal bagi pemanggil.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// HTTPStatus memetakan taksonomi ke kode transport.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// --- klasifikasi error driver ---

// 23505 = unique_violation; 40001 = serialization_failure; 40P01 = deadlock_detected
type pgSQLErr interface {
	SQLState() string
	Error() string
}

func IsUniqueViolation(err error) bool {
	var pgErr pgSQLErr
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	// sqlite (dipakai di test) tidak punya SQLState
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func IsRetryableTx(err error) bool {
	var pgErr pgSQLErr
	if errors.As(err, &pgErr) {
		switch pgErr.SQLState() {
		case "40001", "40P01":
			return true
		}
	}
	return false
}
