package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/logger"
	"go-hr-backend/pkg/security"
	"go-hr-backend/pkg/storage"
	"go-hr-backend/pkg/validation"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// SubmittedFeedback is the feedback on every candidate's first history entry
const SubmittedFeedback = "Application submitted successfully"

// Minimum working age used to bound years of experience
const workingAge = 16

type CandidateConfig struct {
	PageSize   int
	PresignTTL time.Duration
	Now        func() time.Time
}

type candidateUsecase struct {
	repo     domain.CandidateRepository
	uploads  domain.UploadRepository
	files    domain.FileStore
	validate *validation.Validator
	cfg      CandidateConfig
}

func NewCandidateUsecase(
	repo domain.CandidateRepository,
	uploads domain.UploadRepository,
	files domain.FileStore,
	validate *validation.Validator,
	cfg CandidateConfig,
) domain.CandidateUsecase {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &candidateUsecase{
		repo:     repo,
		uploads:  uploads,
		files:    files,
		validate: validate,
		cfg:      cfg,
	}
}

func (u *candidateUsecase) Register(ctx context.Context, req domain.RegisterCandidateRequest) (*domain.Candidate, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.FileID = strings.TrimSpace(req.FileID)

	if fields := u.validate.Struct(req); fields != nil {
		return nil, apperror.Validation("Validation failed", fields)
	}

	dob, err := domain.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, fieldError("date_of_birth", "Date has wrong format. Use YYYY-MM-DD.", err)
	}
	now := u.cfg.Now()
	if fields := checkExperience(dob, *req.YearsOfExperience, now); fields != nil {
		return nil, apperror.Validation("Validation failed", fields)
	}

	upload, err := u.uploads.Claim(ctx, req.FileID, now)
	if err != nil {
		return nil, uploadClaimError(err)
	}

	candidate := &domain.Candidate{
		ID:                uuid.NewString(),
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		DateOfBirth:       dob,
		YearsOfExperience: *req.YearsOfExperience,
		Department:        domain.Department(req.Department),
		ResumeFileID:      upload.FileID,
		ResumeFilename:    upload.OriginalFilename,
	}
	candidate.ResumeKey = storage.ResumeKey(candidate.ID, upload.OriginalFilename)

	if err := u.files.Move(ctx, upload.StorageKey, candidate.ResumeKey); err != nil {
		u.releaseUpload(ctx, upload.FileID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fieldError("file_id", "Uploaded file could not be found. Please upload again.", err)
		}
		logger.Log.Error("Failed to promote resume", "file_id", upload.FileID, "error", err)
		return nil, apperror.Unavailable(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
	}

	feedback := SubmittedFeedback
	first := domain.StatusHistoryEntry{Status: domain.StatusSubmitted, Feedback: &feedback}
	if err := u.repo.Create(ctx, candidate, first); err != nil {
		// put the file back so the same upload can be retried
		if mvErr := u.files.Move(ctx, candidate.ResumeKey, upload.StorageKey); mvErr != nil {
			logger.Log.Warn("Failed to restore resume after failed registration",
				"file_id", upload.FileID, "error", mvErr)
		} else {
			u.releaseUpload(ctx, upload.FileID)
		}
		return nil, storeError(err)
	}

	logger.Log.Info("Candidate registered", "candidate_id", candidate.ID, "department", candidate.Department)
	return candidate, nil
}

func (u *candidateUsecase) releaseUpload(ctx context.Context, fileID string) {
	if err := u.uploads.Release(context.WithoutCancel(ctx), fileID); err != nil {
		logger.Log.Warn("Failed to release upload claim", "file_id", fileID, "error", err)
	}
}

// checkExperience bounds experience by the years since working age
func checkExperience(dob domain.Date, years int, now time.Time) map[string]string {
	today := domain.NewDate(now)
	if dob.After(today.Time) {
		return map[string]string{"date_of_birth": "Date of birth cannot be in the future."}
	}
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	maxYears := age - workingAge
	if maxYears < 0 {
		maxYears = 0
	}
	if years > maxYears {
		return map[string]string{
			"years_of_experience": fmt.Sprintf("Years of experience cannot exceed %d based on your age.", maxYears),
		}
	}
	return nil
}

func uploadClaimError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUploadNotFound):
		return fieldError("file_id", "Invalid file ID.", err)
	case errors.Is(err, domain.ErrUploadExpired):
		return fieldError("file_id", "File has expired. Please upload again.", err)
	case errors.Is(err, domain.ErrUploadUsed):
		return fieldError("file_id", "File has already been used.", err)
	default:
		return storeError(err)
	}
}

func (u *candidateUsecase) GetStatus(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return c, nil
}

func (u *candidateUsecase) History(ctx context.Context, id string) ([]domain.StatusHistoryEntry, error) {
	h, err := u.repo.History(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return h, nil
}

// buildFilter validates list parameters; unknown values are client errors
func (u *candidateUsecase) buildFilter(q domain.CandidateListQuery) (domain.CandidateFilter, error) {
	f := domain.CandidateFilter{Page: q.Page, PageSize: u.cfg.PageSize}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > domain.MaxPage {
		f.Page = domain.MaxPage
	}
	fields := map[string]string{}

	if q.Department != "" {
		d := domain.Department(q.Department)
		if !d.Valid() {
			fields["department"] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", q.Department)
		}
		f.Department = d
	}
	if q.CurrentStatus != "" {
		s, err := domain.ParseStatus(q.CurrentStatus)
		if err != nil {
			fields["current_status"] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", q.CurrentStatus)
		}
		f.Status = s
	}
	orderBy, desc, err := domain.ParseOrdering(q.Ordering)
	if err != nil {
		fields["ordering"] = "Ordering must be one of created_at, full_name, years_of_experience, optionally prefixed with -."
	}
	f.OrderBy, f.Descending = orderBy, desc

	if len(fields) > 0 {
		e := apperror.Validation("Invalid query parameters", fields)
		e.Err = domain.ErrInvalidFilter
		return f, e
	}
	return f, nil
}

func (u *candidateUsecase) List(ctx context.Context, q domain.CandidateListQuery) (*domain.PaginatedResult[domain.Candidate], error) {
	f, err := u.buildFilter(q)
	if err != nil {
		return nil, err
	}
	items, total, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, storeError(err)
	}
	return domain.NewPaginatedResult(items, total, f.Page, f.PageSize), nil
}

var exportColumns = []string{
	"ID", "FULL NAME", "EMAIL", "PHONE", "DATE OF BIRTH", "YEARS OF EXPERIENCE",
	"DEPARTMENT", "CURRENT STATUS", "RESUME", "CREATED AT", "UPDATED AT",
}

// Export writes every candidate matching the filters to an XLSX workbook
func (u *candidateUsecase) Export(ctx context.Context, q domain.CandidateListQuery) ([]byte, string, error) {
	f, err := u.buildFilter(q)
	if err != nil {
		return nil, "", err
	}
	f.Page, f.PageSize = 1, 0
	candidates, _, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, "", storeError(err)
	}

	xf := excelize.NewFile()
	defer xf.Close()
	sheetName := "Candidates"
	xf.SetSheetName("Sheet1", sheetName)

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		xf.SetCellValue(sheetName, cell, col)
	}
	headerStyle, _ := xf.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	xf.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, c := range candidates {
		values := []any{
			c.ID, c.FullName, c.Email, c.Phone, c.DateOfBirth.String(), c.YearsOfExperience,
			string(c.Department), c.CurrentStatus.Label(), c.ResumeFilename,
			c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			xf.SetCellValue(sheetName, cell, v)
		}
	}
	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		xf.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := xf.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}
	filename := fmt.Sprintf("candidates_%s.xlsx", u.cfg.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

// OpenResume prefers a signed redirect and falls back to streaming the bytes
func (u *candidateUsecase) OpenResume(ctx context.Context, id string) (*domain.ResumeDownload, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if c.ResumeKey == "" {
		return nil, apperror.NotFoundWrap("Resume not found", domain.ErrResumeMissing)
	}

	dl := &domain.ResumeDownload{
		Filename:    c.ResumeFilename,
		ContentType: security.ContentTypeFor(c.ResumeFilename),
	}
	if signer, ok := u.files.(domain.SignedURLer); ok {
		signed, err := signer.SignedURL(ctx, c.ResumeKey, c.ResumeFilename, u.cfg.PresignTTL)
		if err != nil {
			return nil, apperror.Unavailable(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
		}
		dl.RedirectURL = signed
		return dl, nil
	}

	body, err := u.files.Open(ctx, c.ResumeKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.NotFoundWrap("Resume not found", domain.ErrResumeMissing)
		}
		return nil, apperror.Unavailable(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
	}
	dl.Body = body
	return dl, nil
}
