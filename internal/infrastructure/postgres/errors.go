package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
)

// SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeInvalidTextRepr     = "22P02"
	codeUndefinedFunction   = "42883"
	codeUndefinedColumn     = "42703"
	codeUndefinedObject     = "42704"
	constraintUsernameKey   = "users_username_key"
	constraintEmailKey      = "users_email_key"
	resourceNotFoundMessage = "resource not found"
)

// classify maps a pgx error onto an AppError. notFound is the message used
// when the row is missing or the id is not a valid uuid.
func classify(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(notFound)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperror.Internal("database error", err)
	}
	switch pgErr.Code {
	case codeInvalidTextRepr:
		return apperror.NotFound(notFound)
	case codeUniqueViolation:
		switch {
		case pgErr.ConstraintName == constraintUsernameKey || strings.Contains(pgErr.Detail, "(username)"):
			return apperror.DuplicateKey("username")
		case pgErr.ConstraintName == constraintEmailKey || strings.Contains(pgErr.Detail, "(email)"):
			return apperror.DuplicateKey("email")
		}
		return apperror.DuplicateKey("record")
	case codeCheckViolation:
		return apperror.Validation("invalid resource", map[string]string{"payload": pgErr.ConstraintName + " violated"})
	}
	return apperror.Internal("database error", err)
}

// classifySearch additionally recognizes the errors PostgreSQL raises when
// PostGIS or the geography column is missing.
func classifySearch(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedFunction, codeUndefinedColumn, codeUndefinedObject:
			return apperror.GeoIndexMissing(err)
		}
	}
	return classify(err, resourceNotFoundMessage)
}
