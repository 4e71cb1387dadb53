package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-hr-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

const candidateColumns = `
	id, full_name, email, phone, date_of_birth, years_of_experience, department,
	COALESCE(resume_file_id::text, ''), resume_filename, resume_key,
	current_status, created_at, updated_at`

func scanCandidate(row pgx.Row, c *domain.Candidate) error {
	var dob time.Time
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &dob, &c.YearsOfExperience, &c.Department,
		&c.ResumeFileID, &c.ResumeFilename, &c.ResumeKey,
		&c.CurrentStatus, &c.CreatedAt, &c.UpdatedAt,
	)
	c.DateOfBirth = domain.NewDate(dob)
	return err
}

func (r *candidateRepository) Create(ctx context.Context, c *domain.Candidate, first domain.StatusHistoryEntry) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	var resumeFileID *string
	if c.ResumeFileID != "" {
		resumeFileID = &c.ResumeFileID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storageErr(err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candidates (
			id, full_name, email, phone, date_of_birth, years_of_experience, department,
			resume_file_id, resume_filename, resume_key, current_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		c.ID, c.FullName, c.Email, c.Phone, c.DateOfBirth.Time, c.YearsOfExperience, c.Department,
		resumeFileID, c.ResumeFilename, c.ResumeKey, first.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if code, pgErr := pgCode(err); code == pgUniqueViolation {
			return r.duplicateError(ctx, c, pgErr.ConstraintName)
		}
		return storageErr(err)
	}

	first.CandidateID = c.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO candidate_status_history (candidate_id, status, feedback, changed_at, admin_info)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.ID, first.Status, first.Feedback, c.CreatedAt, first.AdminInfo,
	).Scan(&first.ID)
	if err != nil {
		return storageErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr(err)
	}

	first.ChangedAt = c.CreatedAt
	c.CurrentStatus = first.Status
	c.StatusHistory = []domain.StatusHistoryEntry{first}
	return nil
}

// duplicateError reports every unique field already taken, not just the one
// whose constraint fired first
func (r *candidateRepository) duplicateError(ctx context.Context, c *domain.Candidate, constraint string) error {
	var emailTaken, phoneTaken bool
	err := r.db.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM candidates WHERE LOWER(email) = LOWER($1)),
			EXISTS (SELECT 1 FROM candidates WHERE phone = $2)`,
		c.Email, c.Phone,
	).Scan(&emailTaken, &phoneTaken)
	if err != nil {
		emailTaken = constraint == emailConstraintName
		phoneTaken = constraint == phoneConstraintName
	}

	var fields []string
	if emailTaken {
		fields = append(fields, domain.FieldEmail)
	}
	if phoneTaken {
		fields = append(fields, domain.FieldPhone)
	}
	if len(fields) == 0 {
		// the conflicting row was removed in between; report the constraint that fired
		switch constraint {
		case phoneConstraintName:
			fields = []string{domain.FieldPhone}
		default:
			fields = []string{domain.FieldEmail}
		}
	}
	return &domain.DuplicateFieldError{Fields: fields}
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := getCandidate(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	c.StatusHistory, err = listHistory(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func getCandidate(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var c domain.Candidate
	err := scanCandidate(q.QueryRow(ctx, query, id), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		// a malformed uuid cannot match any row
		if code, _ := pgCode(err); code == pgInvalidTextRep {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, storageErr(err)
	}
	return &c, nil
}

func listHistory(ctx context.Context, q querier, id string) ([]domain.StatusHistoryEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, candidate_id, status, feedback, changed_at, admin_info
		FROM candidate_status_history
		WHERE candidate_id = $1
		ORDER BY changed_at ASC, id ASC`, id)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	history := []domain.StatusHistoryEntry{}
	for rows.Next() {
		var e domain.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Status, &e.Feedback, &e.ChangedAt, &e.AdminInfo); err != nil {
			return nil, storageErr(err)
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return history, nil
}

func (r *candidateRepository) History(ctx context.Context, id string) ([]domain.StatusHistoryEntry, error) {
	// existence check so unknown ids are NotFound rather than an empty list
	if _, err := getCandidate(ctx, r.db, id, false); err != nil {
		return nil, err
	}
	return listHistory(ctx, r.db, id)
}

func (r *candidateRepository) List(ctx context.Context, f domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	var where []string
	var args []any
	if f.Department != "" {
		args = append(args, f.Department)
		where = append(where, fmt.Sprintf("department = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("current_status = $%d", len(args)))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, storageErr(err)
	}

	query := `SELECT ` + candidateColumns + ` FROM candidates` + whereSQL + orderClause(f)
	if f.PageSize > 0 {
		page := int64(f.Page)
		if page < 1 {
			page = 1
		}
		size := int64(f.PageSize)
		if page-1 >= (total+size-1)/size {
			return []domain.Candidate{}, total, nil
		}
		args = append(args, size, (page-1)*size)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	defer rows.Close()

	items := []domain.Candidate{}
	for rows.Next() {
		var c domain.Candidate
		if err := scanCandidate(rows, &c); err != nil {
			return nil, 0, storageErr(err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr(err)
	}
	return items, total, nil
}

// orderClause only ever sees whitelisted field names, quoted regardless
func orderClause(f domain.CandidateFilter) string {
	field := f.OrderBy
	switch field {
	case domain.OrderByCreatedAt, domain.OrderByFullName, domain.OrderByYearsOfExperience:
	default:
		field = domain.OrderByCreatedAt
	}
	expr := pq.QuoteIdentifier(field)
	if field == domain.OrderByFullName {
		expr = "LOWER(" + expr + ")"
	}
	dir := " ASC"
	if f.Descending {
		dir = " DESC"
	}
	return " ORDER BY " + expr + dir + ", id" + dir
}

func (r *candidateRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusHistoryEntry) (*domain.Candidate, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	defer tx.Rollback(ctx)

	// row lock serializes transitions on the same candidate
	c, err := getCandidate(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO candidate_status_history (candidate_id, status, feedback, changed_at, admin_info)
		VALUES ($1, $2, $3, GREATEST(clock_timestamp(), $4::timestamptz), $5)
		RETURNING id, changed_at`,
		id, entry.Status, entry.Feedback, c.UpdatedAt, entry.AdminInfo,
	).Scan(&entry.ID, &entry.ChangedAt)
	if err != nil {
		return nil, storageErr(err)
	}

	_, err = tx.Exec(ctx, `UPDATE candidates SET current_status = $1, updated_at = $2 WHERE id = $3`,
		entry.Status, entry.ChangedAt, id)
	if err != nil {
		return nil, storageErr(err)
	}

	history, err := listHistory(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr(err)
	}

	c.CurrentStatus = entry.Status
	c.UpdatedAt = entry.ChangedAt
	c.StatusHistory = history
	return c, nil
}

func (r *candidateRepository) Ping(ctx context.Context) error {
	return storageErr(r.db.Ping(ctx))
}
