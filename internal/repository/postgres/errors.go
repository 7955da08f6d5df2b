package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into domain errors
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique constraint violation, such as a taken
// subdomain or a duplicate tag name.
func IsPgDuplicateError(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsPgForeignKeyError reports a missing parent folder or site
func IsPgForeignKeyError(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// IsPgNoRowsError reports an empty single-row result
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsMissingRow reports errors that mean the addressed row does not exist:
// no rows, or an id that is not a valid uuid literal.
func IsMissingRow(err error) bool {
	return IsPgNoRowsError(err) || sqlState(err) == codeInvalidText
}
