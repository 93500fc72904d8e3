package database

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors for constraint violations surfaced by PostgreSQL. The
// schema carries the unique and foreign-key constraints, so these are the
// authoritative signal even when a service-level pre-check raced.
var (
	ErrDuplicate  = errors.New("duplicate key value")
	ErrForeignKey = errors.New("referenced row missing or still referenced")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// TranslateError maps driver-level constraint failures onto sentinel errors.
// Any other error is returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrDuplicate
		case pqForeignKeyViolation:
			return ErrForeignKey
		}
	}
	return err
}
