package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-hr-backend/internal/domain"
)

type uploadRepository struct {
	mu      sync.Mutex
	uploads map[string]*domain.TemporaryUpload
}

func NewUploadRepository() domain.UploadRepository {
	return &uploadRepository{uploads: make(map[string]*domain.TemporaryUpload)}
}

func (r *uploadRepository) Create(ctx context.Context, u *domain.TemporaryUpload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[u.FileID]; ok {
		return errors.New("memory: upload already exists")
	}
	stored := *u
	r.uploads[u.FileID] = &stored
	return nil
}

func (r *uploadRepository) GetByFileID(ctx context.Context, fileID string) (*domain.TemporaryUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[fileID]
	if !ok {
		return nil, domain.ErrUploadNotFound
	}
	out := *u
	return &out, nil
}

func (r *uploadRepository) Claim(ctx context.Context, fileID string, now time.Time) (*domain.TemporaryUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[fileID]
	switch {
	case !ok:
		return nil, domain.ErrUploadNotFound
	case u.IsUsed:
		return nil, domain.ErrUploadUsed
	case u.Expired(now):
		return nil, domain.ErrUploadExpired
	}
	usedAt := now
	u.IsUsed = true
	u.UsedAt = &usedAt
	out := *u
	return &out, nil
}

func (r *uploadRepository) Release(ctx context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[fileID]
	if !ok {
		return domain.ErrUploadNotFound
	}
	u.IsUsed = false
	u.UsedAt = nil
	return nil
}

// DeleteExpired drops unused uploads that expired before the cutoff
func (r *uploadRepository) DeleteExpired(ctx context.Context, before time.Time) ([]domain.TemporaryUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []domain.TemporaryUpload
	for id, u := range r.uploads {
		if !u.IsUsed && u.ExpiresAt.Before(before) {
			removed = append(removed, *u)
			delete(r.uploads, id)
		}
	}
	return removed, nil
}
