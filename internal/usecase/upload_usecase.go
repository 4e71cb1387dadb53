package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/logger"
	"go-hr-backend/pkg/security"
	"go-hr-backend/pkg/storage"

	"github.com/google/uuid"
)

// sniffLen is how much of the file the type check looks at
const sniffLen = 3072

type UploadConfig struct {
	MaxBytes int64
	TTL      time.Duration
	Now      func() time.Time
}

type uploadUsecase struct {
	repo  domain.UploadRepository
	files domain.FileStore
	cfg   UploadConfig
}

func NewUploadUsecase(repo domain.UploadRepository, files domain.FileStore, cfg UploadConfig) domain.UploadUsecase {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 << 20
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &uploadUsecase{repo: repo, files: files, cfg: cfg}
}

func (u *uploadUsecase) Upload(ctx context.Context, file domain.UploadFile) (*domain.UploadResult, error) {
	if file.Size <= 0 {
		return nil, fieldError("file", "The submitted file is empty.", nil)
	}
	if file.Size > u.cfg.MaxBytes {
		return nil, fieldError("file", fmt.Sprintf("File size cannot exceed %dMB.", u.cfg.MaxBytes>>20), nil)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.BadRequestWrap("Could not read uploaded file", err)
	}
	head = head[:n]

	checked, err := security.ValidateResume(file.Filename, head)
	if err != nil {
		logger.Log.Warn("Upload rejected", "filename", file.Filename, "detected", checked.DetectedMIME, "error", err)
		return nil, fieldError("file", "Only PDF and DOCX files are allowed.", err)
	}

	now := u.cfg.Now().UTC()
	fileID := uuid.NewString()
	key := storage.TempResumeKey(fileID, checked.Extension)

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), file.Content), u.cfg.MaxBytes)
	if err := u.files.Put(ctx, key, body, file.Size, checked.ContentType); err != nil {
		logger.Log.Error("Failed to store upload", "file_id", fileID, "error", err)
		return nil, apperror.Unavailable(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
	}

	record := &domain.TemporaryUpload{
		FileID:           fileID,
		OriginalFilename: truncate(file.Filename, 255),
		ContentType:      checked.ContentType,
		FileSize:         file.Size,
		StorageKey:       key,
		CreatedAt:        now,
		ExpiresAt:        now.Add(u.cfg.TTL),
	}
	if err := u.repo.Create(ctx, record); err != nil {
		if delErr := u.files.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, storeError(err)
	}

	return &domain.UploadResult{
		FileID:    fileID,
		Filename:  record.OriginalFilename,
		URL:       u.files.URL(key),
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (u *uploadUsecase) GetInfo(ctx context.Context, fileID string) (*domain.UploadInfo, error) {
	rec, err := u.repo.GetByFileID(ctx, fileID)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			return nil, apperror.NotFoundWrap("File not found", err)
		}
		return nil, storeError(err)
	}
	return &domain.UploadInfo{
		FileID:           rec.FileID,
		OriginalFilename: rec.OriginalFilename,
		ContentType:      rec.ContentType,
		FileSize:         rec.FileSize,
		URL:              u.files.URL(rec.StorageKey),
		CreatedAt:        rec.CreatedAt,
		ExpiresAt:        rec.ExpiresAt,
		IsExpired:        rec.Expired(u.cfg.Now()),
		IsUsed:           rec.IsUsed,
	}, nil
}

// PurgeExpired deletes unclaimed uploads past their expiry and their files
func (u *uploadUsecase) PurgeExpired(ctx context.Context) (int, error) {
	removed, err := u.repo.DeleteExpired(ctx, u.cfg.Now())
	if err != nil {
		return 0, storeError(err)
	}
	for _, rec := range removed {
		if err := u.files.Delete(ctx, rec.StorageKey); err != nil {
			logger.Log.Warn("Failed to delete expired upload", "file_id", rec.FileID, "error", err)
		}
	}
	return len(removed), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
