package usecase

import (
	"context"
	"time"

	"go-hr-backend/internal/domain"
)

// Checker reports a dependency's health
type Checker func(ctx context.Context) error

type healthUsecase struct {
	store    domain.CandidateRepository
	optional map[string]Checker
}

// NewHealthUsecase checks the store plus any optional collaborators.
// Optional failures degrade the status but do not fail the check.
func NewHealthUsecase(store domain.CandidateRepository, optional map[string]Checker) domain.HealthUsecase {
	return &healthUsecase{store: store, optional: optional}
}

func (u *healthUsecase) Check(ctx context.Context) (*domain.HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res := &domain.HealthStatus{Status: "ok", Components: map[string]string{}}
	if err := u.store.Ping(ctx); err != nil {
		res.Status = "unavailable"
		res.Components["store"] = "down"
		return res, storeError(err)
	}
	res.Components["store"] = "up"

	for name, check := range u.optional {
		if err := check(ctx); err != nil {
			res.Components[name] = "down"
			res.Status = "degraded"
			continue
		}
		res.Components[name] = "up"
	}
	return res, nil
}
