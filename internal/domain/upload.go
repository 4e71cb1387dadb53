package domain

import (
	"context"
	"io"
	"time"
)

// TemporaryUpload is a resume uploaded ahead of registration
type TemporaryUpload struct {
	FileID           string     `json:"file_id"`
	OriginalFilename string     `json:"original_filename"`
	ContentType      string     `json:"content_type"`
	FileSize         int64      `json:"file_size"`
	StorageKey       string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	IsUsed           bool       `json:"is_used"`
	UsedAt           *time.Time `json:"used_at"`
}

func (u *TemporaryUpload) Expired(now time.Time) bool {
	return !now.Before(u.ExpiresAt)
}

// UploadResult is returned right after an upload
type UploadResult struct {
	FileID    string    `json:"file_id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadInfo is the file info view
type UploadInfo struct {
	FileID           string    `json:"file_id"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	FileSize         int64     `json:"file_size"`
	URL              string    `json:"url"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	IsExpired        bool      `json:"is_expired"`
	IsUsed           bool      `json:"is_used"`
}

// UploadFile is the incoming multipart file handed to the usecase
type UploadFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type UploadRepository interface {
	Create(ctx context.Context, u *TemporaryUpload) error
	GetByFileID(ctx context.Context, fileID string) (*TemporaryUpload, error)
	// Claim atomically marks an unexpired, unused upload as used.
	// Returns ErrUploadNotFound, ErrUploadExpired or ErrUploadUsed otherwise.
	Claim(ctx context.Context, fileID string, now time.Time) (*TemporaryUpload, error)
	// Release undoes a Claim after a failed registration
	Release(ctx context.Context, fileID string) error
	// DeleteExpired removes records that expired before the given time and returns them
	DeleteExpired(ctx context.Context, before time.Time) ([]TemporaryUpload, error)
}

type UploadUsecase interface {
	Upload(ctx context.Context, file UploadFile) (*UploadResult, error)
	GetInfo(ctx context.Context, fileID string) (*UploadInfo, error)
	PurgeExpired(ctx context.Context) (int, error)
}

// FileStore holds resume bytes behind an opaque key
type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Move(ctx context.Context, from, to string) error
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	URL(key string) string
}

// SignedURLer is implemented by stores that can hand out temporary download links
type SignedURLer interface {
	SignedURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}
