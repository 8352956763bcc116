package service

import (
	"errors"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"
)

const (
	msgUnavailable = "Service temporarily unavailable, please retry"
	msgServerError = "Server error"
)

// storeErr converts a repository failure into a typed error. notFound is the
// message for a missing record; pass "" when absence is unexpected.
func storeErr(err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound) && notFound != "":
		return domain.NotFound(notFound)
	case errors.Is(err, repository.ErrUnavailable):
		return domain.Unavailable(msgUnavailable, err)
	}
	return domain.Internal(msgServerError, err)
}

// lookupErr separates "missing" from real failures: it returns nil for
// repository.ErrNotFound so the caller can hand a Missing resource to the
// access mediator.
func lookupErr(err error) error {
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return storeErr(err, "")
}
