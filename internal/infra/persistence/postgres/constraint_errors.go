package postgres

import (
	"splitpay/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

func isUniqueConstraintViolation(err error) bool {
	// GORM reports it when TranslateError is on; otherwise the raw pgx error surfaces.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	return hasSQLState(err, pgUniqueViolation)
}

func isNotNullConstraintViolation(err error) bool {
	return hasSQLState(err, pgNotNullViolation)
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}

	return false
}
