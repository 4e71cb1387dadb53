package usecase

import (
	"context"
	"errors"
	"strings"

	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/logger"
)

// storeError maps repository failures onto the client-facing error taxonomy
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var dup *domain.DuplicateFieldError
	switch {
	case errors.As(err, &dup):
		fields := dup.Messages()
		msgs := make([]string, 0, len(dup.Fields))
		for _, f := range dup.Fields {
			msgs = append(msgs, fields[f])
		}
		e := apperror.Validation(strings.Join(msgs, " "), fields)
		e.Err = err
		return e
	case errors.Is(err, domain.ErrCandidateNotFound):
		return apperror.NotFoundWrap("Candidate not found", err)
	case errors.Is(err, domain.ErrInvalidStatus):
		return apperror.BadRequestWrap("Invalid status", err)
	case errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		logger.Log.Error("Store unavailable", "error", err)
		return apperror.Unavailable(err)
	default:
		return apperror.Internal(err)
	}
}

func fieldError(field, message string, cause error) *apperror.AppError {
	e := apperror.Validation(message, map[string]string{field: message})
	e.Err = cause
	return e
}
