// Package pgerr maps PostgreSQL error codes onto the shared sentinel
// errors so handlers can branch with errors.Is.
package pgerr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"rosterkeeper/internal/common"
)

const (
	codeInvalidTextRepresentation = "22P02"
	codeForeignKeyViolation       = "23503"
	codeUniqueViolation           = "23505"
)

// Map translates a pgx error. Unique violations become ErrDuplicate;
// foreign key violations and malformed uuids in lookups become
// ErrNotFound, since both mean the referenced row cannot exist.
func Map(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("db error: %w", err)
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", common.ErrDuplicate, pgErr.ConstraintName)
	case codeForeignKeyViolation, codeInvalidTextRepresentation:
		return common.ErrNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
