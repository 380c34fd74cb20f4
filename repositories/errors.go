// Package repositories holds the gorm-backed PostgreSQL repositories for the
// catalog. Store errors are translated into the sentinels of package common.
package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/basit/fileshare-catalog/common"
)

// SQLSTATE unique_violation.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err signals a duplicate key, either as
// gorm's translated error or as the raw PostgreSQL error code.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", common.ErrNotFound, err)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", common.ErrConflict, err)
	default:
		return err
	}
}

func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
