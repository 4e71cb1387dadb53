package queue

import (
	"context"

	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/logger"
)

// LogNotifier records notifications in the log when no broker is configured
type LogNotifier struct{}

func (LogNotifier) NotifyStatusChanged(ctx context.Context, c *domain.Candidate, entry domain.StatusHistoryEntry) error {
	logger.Log.Info("Status change notification",
		"candidate_id", c.ID,
		"status", entry.Status,
		"changed_at", entry.ChangedAt,
	)
	return nil
}
