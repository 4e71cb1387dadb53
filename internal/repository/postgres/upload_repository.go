package postgres

import (
	"context"
	"errors"
	"time"

	"go-hr-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type uploadRepository struct {
	db *pgxpool.Pool
}

func NewUploadRepository(db *pgxpool.Pool) domain.UploadRepository {
	return &uploadRepository{db: db}
}

const uploadColumns = `file_id, original_filename, content_type, file_size, storage_key,
	created_at, expires_at, is_used, used_at`

func scanUpload(row pgx.Row) (*domain.TemporaryUpload, error) {
	var u domain.TemporaryUpload
	err := row.Scan(&u.FileID, &u.OriginalFilename, &u.ContentType, &u.FileSize, &u.StorageKey,
		&u.CreatedAt, &u.ExpiresAt, &u.IsUsed, &u.UsedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *uploadRepository) Create(ctx context.Context, u *domain.TemporaryUpload) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO temporary_uploads (`+uploadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NULL)`,
		u.FileID, u.OriginalFilename, u.ContentType, u.FileSize, u.StorageKey, u.CreatedAt, u.ExpiresAt,
	)
	return storageErr(err)
}

func (r *uploadRepository) GetByFileID(ctx context.Context, fileID string) (*domain.TemporaryUpload, error) {
	u, err := scanUpload(r.db.QueryRow(ctx, `SELECT `+uploadColumns+` FROM temporary_uploads WHERE file_id = $1`, fileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUploadNotFound
		}
		if code, _ := pgCode(err); code == pgInvalidTextRep {
			return nil, domain.ErrUploadNotFound
		}
		return nil, storageErr(err)
	}
	return u, nil
}

// Claim is a single conditional UPDATE, so two registrations cannot both win
func (r *uploadRepository) Claim(ctx context.Context, fileID string, now time.Time) (*domain.TemporaryUpload, error) {
	u, err := scanUpload(r.db.QueryRow(ctx, `
		UPDATE temporary_uploads
		SET is_used = TRUE, used_at = $2
		WHERE file_id = $1 AND NOT is_used AND expires_at > $2
		RETURNING `+uploadColumns, fileID, now))
	if err == nil {
		return u, nil
	}
	if code, _ := pgCode(err); code == pgInvalidTextRep {
		return nil, domain.ErrUploadNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storageErr(err)
	}

	existing, err := r.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if existing.IsUsed {
		return nil, domain.ErrUploadUsed
	}
	return nil, domain.ErrUploadExpired
}

func (r *uploadRepository) Release(ctx context.Context, fileID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE temporary_uploads SET is_used = FALSE, used_at = NULL WHERE file_id = $1`, fileID)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUploadNotFound
	}
	return nil
}

func (r *uploadRepository) DeleteExpired(ctx context.Context, before time.Time) ([]domain.TemporaryUpload, error) {
	rows, err := r.db.Query(ctx, `
		DELETE FROM temporary_uploads
		WHERE NOT is_used AND expires_at < $1
		RETURNING `+uploadColumns, before)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var removed []domain.TemporaryUpload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		removed = append(removed, *u)
	}
	return removed, storageErr(rows.Err())
}
