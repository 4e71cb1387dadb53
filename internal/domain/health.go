package domain

import "context"

type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

type HealthUsecase interface {
	Check(ctx context.Context) (*HealthStatus, error)
}
