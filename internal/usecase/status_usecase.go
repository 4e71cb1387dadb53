package usecase

import (
	"context"
	"fmt"
	"strings"

	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/logger"
	"go-hr-backend/pkg/validation"
)

type statusUsecase struct {
	repo     domain.CandidateRepository
	notifier domain.Notifier
	validate *validation.Validator
}

// NewStatusUsecase wires the transition service. A nil notifier disables notifications.
func NewStatusUsecase(repo domain.CandidateRepository, notifier domain.Notifier, validate *validation.Validator) domain.StatusUsecase {
	return &statusUsecase{repo: repo, notifier: notifier, validate: validate}
}

func (u *statusUsecase) Transition(ctx context.Context, actor domain.Actor, id string, req domain.StatusUpdateRequest) (*domain.Candidate, error) {
	if !actor.Admin {
		return nil, apperror.Forbidden("Admin access required")
	}

	// status is checked before anything touches the store
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, fieldError("status", fmt.Sprintf("%q is not a valid choice.", req.Status), err)
	}
	if fields := u.validate.Struct(req); fields != nil {
		return nil, apperror.Validation("Validation failed", fields)
	}

	var feedback *string
	if req.Feedback != nil {
		if trimmed := strings.TrimSpace(*req.Feedback); trimmed != "" {
			feedback = &trimmed
		}
	}
	adminInfo := actor.AdminInfo()

	updated, err := u.repo.AppendStatus(ctx, id, domain.StatusHistoryEntry{
		Status:    status,
		Feedback:  feedback,
		AdminInfo: &adminInfo,
	})
	if err != nil {
		return nil, storeError(err)
	}
	logger.Log.Info("Candidate status changed", "candidate_id", id, "status", status, "admin", adminInfo)

	u.notify(ctx, updated)
	return updated, nil
}

// notify is best-effort: the transition is already committed
func (u *statusUsecase) notify(ctx context.Context, c *domain.Candidate) {
	if u.notifier == nil || len(c.StatusHistory) == 0 {
		return
	}
	entry := c.StatusHistory[len(c.StatusHistory)-1]
	if err := u.notifier.NotifyStatusChanged(context.WithoutCancel(ctx), c, entry); err != nil {
		logger.Log.Warn("Status change notification failed", "candidate_id", c.ID, "error", err)
	}
}
