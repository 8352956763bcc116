package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"alcyxob/fit-coach/internal/repository"

	"github.com/lib/pq"
)

// Postgres error codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02" // e.g. a malformed uuid in a path parameter
	codeTooManyConnections  = "53300"
)

// mapErr converts driver errors into repository sentinels, keeping the cause.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
		case codeForeignKeyViolation, codeInvalidText:
			return fmt.Errorf("%w: %s", repository.ErrNotFound, pqErr.Message)
		case codeTooManyConnections:
			return fmt.Errorf("%w: %s", repository.ErrUnavailable, pqErr.Message)
		}
	}
	return err
}
