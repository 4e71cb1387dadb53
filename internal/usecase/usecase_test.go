package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"go-hr-backend/internal/domain"
	"go-hr-backend/internal/repository/memory"
	"go-hr-backend/internal/usecase"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/storage"
	"go-hr-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Mock collaborators

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChanged(ctx context.Context, c *domain.Candidate, entry domain.StatusHistoryEntry) error {
	return m.Called(ctx, c, entry).Error(0)
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Create(ctx context.Context, c *domain.Candidate, first domain.StatusHistoryEntry) error {
	return m.Called(ctx, c, first).Error(0)
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) List(ctx context.Context, f domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Candidate), args.Get(1).(int64), args.Error(2)
}

func (m *MockCandidateRepo) History(ctx context.Context, id string) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusHistoryEntry), args.Error(1)
}

func (m *MockCandidateRepo) AppendStatus(ctx context.Context, id string, e domain.StatusHistoryEntry) (*domain.Candidate, error) {
	args := m.Called(ctx, id, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// memFiles is an in-memory FileStore
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemFiles() *memFiles { return &memFiles{objects: map[string][]byte{}} }

func (f *memFiles) Put(ctx context.Context, key string, body io.Reader, size int64, ct string) error {
	if f.failPut {
		return errors.New("bucket offline")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[key] = b
	f.mu.Unlock()
	return nil
}

func (f *memFiles) Move(ctx context.Context, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[from]
	if !ok {
		return storage.ErrNotFound
	}
	delete(f.objects, from)
	f.objects[to] = b
	return nil
}

func (f *memFiles) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	delete(f.objects, key)
	f.mu.Unlock()
	return nil
}

func (f *memFiles) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *memFiles) URL(key string) string { return "http://files.test/" + key }

func (f *memFiles) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// signingFiles adds presigned links
type signingFiles struct {
	*memFiles
}

func (s signingFiles) SignedURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	return "https://signed.test/" + key + "?ttl=" + ttl.String(), nil
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fixture struct {
	repo     domain.CandidateRepository
	uploads  domain.UploadRepository
	files    *memFiles
	candUC   domain.CandidateUsecase
	uploadUC domain.UploadUsecase
	statusUC domain.StatusUsecase
	notifier *MockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	v := validation.MustNew()
	f := &fixture{
		repo:     memory.NewCandidateRepository(clock),
		uploads:  memory.NewUploadRepository(),
		files:    newMemFiles(),
		notifier: new(MockNotifier),
	}
	f.candUC = usecase.NewCandidateUsecase(f.repo, f.uploads, f.files, v, usecase.CandidateConfig{PageSize: 2, Now: clock})
	f.uploadUC = usecase.NewUploadUsecase(f.uploads, f.files, usecase.UploadConfig{MaxBytes: 1 << 20, TTL: time.Hour, Now: clock})
	f.statusUC = usecase.NewStatusUsecase(f.repo, f.notifier, v)
	return f
}

const pdfBody = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n"

func (f *fixture) upload(t *testing.T) string {
	t.Helper()
	res, err := f.uploadUC.Upload(context.Background(), domain.UploadFile{
		Filename: "CV Final.pdf",
		Size:     int64(len(pdfBody)),
		Content:  strings.NewReader(pdfBody),
	})
	require.NoError(t, err)
	return res.FileID
}

func intPtr(i int) *int { return &i }

func (f *fixture) request(t *testing.T, email, phone string) domain.RegisterCandidateRequest {
	return domain.RegisterCandidateRequest{
		FullName:          "Ann Lee",
		Email:             email,
		Phone:             phone,
		DateOfBirth:       "1990-03-01",
		YearsOfExperience: intPtr(5),
		Department:        "IT",
		FileID:            f.upload(t),
	}
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func admin() domain.Actor { return domain.Actor{Admin: true} }

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates submitted candidate with first history entry", func(t *testing.T) {
		f := newFixture(t)
		c, err := f.candUC.Register(ctx, f.request(t, "  Ann@Example.COM ", "+1 555 0100"))
		require.NoError(t, err)

		assert.Equal(t, "ann@example.com", c.Email)
		assert.Equal(t, domain.StatusSubmitted, c.CurrentStatus)
		require.Len(t, c.StatusHistory, 1)
		assert.Equal(t, usecase.SubmittedFeedback, *c.StatusHistory[0].Feedback)
		assert.Equal(t, "resumes/"+c.ID+"/CV_Final.pdf", c.ResumeKey)
		assert.True(t, f.files.has(c.ResumeKey))

		got, err := f.candUC.GetStatus(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, got.CurrentStatus)
		assert.Len(t, got.StatusHistory, 1)
	})

	t.Run("duplicate email restores the upload", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.candUC.Register(ctx, f.request(t, "a@x.com", "1110000"))
		require.NoError(t, err)

		req := f.request(t, "A@x.com", "2220000")
		_, err = f.candUC.Register(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDuplicateField))
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, "A candidate with this email already exists.", appErr.Fields["email"])

		info, err := f.uploadUC.GetInfo(ctx, req.FileID)
		require.NoError(t, err)
		assert.False(t, info.IsUsed)

		page, err := f.candUC.List(ctx, domain.CandidateListQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Count)
	})

	t.Run("upload can only be used once", func(t *testing.T) {
		f := newFixture(t)
		req := f.request(t, "a@x.com", "1110000")
		_, err := f.candUC.Register(ctx, req)
		require.NoError(t, err)

		again := req
		again.Email, again.Phone = "b@x.com", "2220000"
		_, err = f.candUC.Register(ctx, again)
		assert.True(t, errors.Is(err, domain.ErrUploadUsed))
	})

	t.Run("expired upload", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.uploads.Create(ctx, &domain.TemporaryUpload{
			FileID: "old", StorageKey: "temp_resumes/old/resume_old.pdf",
			CreatedAt: fixedNow.Add(-2 * time.Hour), ExpiresAt: fixedNow.Add(-time.Hour),
		}))
		req := f.request(t, "a@x.com", "1110000")
		req.FileID = "old"
		_, err := f.candUC.Register(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrUploadExpired))
		assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	})

	t.Run("experience bounded by age", func(t *testing.T) {
		f := newFixture(t)
		req := f.request(t, "a@x.com", "1110000")
		req.DateOfBirth = "2007-07-01" // 16 on the fixed date
		req.YearsOfExperience = intPtr(1)
		_, err := f.candUC.Register(ctx, req)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields["years_of_experience"], "cannot exceed 0")
	})

	t.Run("field validation", func(t *testing.T) {
		f := newFixture(t)
		req := f.request(t, "not-an-email", "12")
		req.Department = "Sales"
		req.YearsOfExperience = nil
		_, err := f.candUC.Register(ctx, req)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		for _, field := range []string{"email", "phone", "department", "years_of_experience"} {
			assert.Contains(t, appErr.Fields, field)
		}
	})
}

func TestTransitionScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.On("NotifyStatusChanged", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	a, err := f.candUC.Register(ctx, f.request(t, "a@x.com", "1110000"))
	require.NoError(t, err)

	feedback := "looks good"
	c, err := f.statusUC.Transition(ctx, admin(), a.ID, domain.StatusUpdateRequest{Status: "under_review", Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, c.CurrentStatus)
	require.Len(t, c.StatusHistory, 2)
	assert.Equal(t, "looks good", *c.StatusHistory[1].Feedback)
	assert.Equal(t, domain.DefaultAdminInfo, *c.StatusHistory[1].AdminInfo)

	c, err = f.statusUC.Transition(ctx, domain.Actor{Admin: true, Identity: "hr-lead"}, a.ID, domain.StatusUpdateRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, c.CurrentStatus)
	require.Len(t, c.StatusHistory, 3)
	assert.Nil(t, c.StatusHistory[2].Feedback)
	assert.Equal(t, "hr-lead", *c.StatusHistory[2].AdminInfo)

	// no transition graph: leaving accepted is allowed
	c, err = f.statusUC.Transition(ctx, admin(), a.ID, domain.StatusUpdateRequest{Status: "under_review"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, c.CurrentStatus)

	hist, err := f.candUC.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, hist, 4)
	for i := 1; i < len(hist); i++ {
		assert.False(t, hist[i].ChangedAt.Before(hist[i-1].ChangedAt))
	}
	assert.Equal(t, c.CurrentStatus, hist[len(hist)-1].Status)

	f.notifier.AssertNumberOfCalls(t, "NotifyStatusChanged", 3)

	req := f.request(t, "a@x.com", "9990000")
	_, err = f.candUC.Register(ctx, req)
	assert.True(t, errors.Is(err, domain.ErrDuplicateField))
}

func TestTransitionFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.statusUC.Transition(ctx, admin(), "unknown-id", domain.StatusUpdateRequest{Status: "accepted"})
		assert.True(t, errors.Is(err, domain.ErrCandidateNotFound))
		assert.Equal(t, http.StatusNotFound, appCode(t, err))
		f.notifier.AssertNotCalled(t, "NotifyStatusChanged", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid status never reaches the store", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		uc := usecase.NewStatusUsecase(repo, nil, validation.MustNew())
		_, err := uc.Transition(ctx, admin(), "any", domain.StatusUpdateRequest{Status: "hired"})
		assert.True(t, errors.Is(err, domain.ErrInvalidStatus))
		assert.Equal(t, http.StatusBadRequest, appCode(t, err))
		repo.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid status leaves candidate unchanged", func(t *testing.T) {
		f := newFixture(t)
		a, err := f.candUC.Register(ctx, f.request(t, "a@x.com", "1110000"))
		require.NoError(t, err)
		_, err = f.statusUC.Transition(ctx, admin(), a.ID, domain.StatusUpdateRequest{Status: "hired"})
		assert.Error(t, err)
		got, err := f.candUC.GetStatus(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, got.CurrentStatus)
		assert.Len(t, got.StatusHistory, 1)
	})

	t.Run("caller without admin capability", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		uc := usecase.NewStatusUsecase(repo, nil, validation.MustNew())
		_, err := uc.Transition(ctx, domain.Actor{}, "any", domain.StatusUpdateRequest{Status: "accepted"})
		assert.Equal(t, http.StatusForbidden, appCode(t, err))
	})

	t.Run("feedback too long", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		uc := usecase.NewStatusUsecase(repo, nil, validation.MustNew())
		long := strings.Repeat("x", 1001)
		_, err := uc.Transition(ctx, admin(), "any", domain.StatusUpdateRequest{Status: "accepted", Feedback: &long})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "feedback")
	})

	t.Run("storage failure is unavailable", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("AppendStatus", mock.Anything, "c1", mock.Anything).Return(nil, domain.ErrStorageUnavailable)
		uc := usecase.NewStatusUsecase(repo, nil, validation.MustNew())
		_, err := uc.Transition(ctx, admin(), "c1", domain.StatusUpdateRequest{Status: "accepted"})
		assert.Equal(t, http.StatusServiceUnavailable, appCode(t, err))
	})

	t.Run("notification failure does not fail the transition", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.On("NotifyStatusChanged", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
		a, err := f.candUC.Register(ctx, f.request(t, "a@x.com", "1110000"))
		require.NoError(t, err)
		c, err := f.statusUC.Transition(ctx, admin(), a.ID, domain.StatusUpdateRequest{Status: "rejected"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, c.CurrentStatus)
		f.notifier.AssertExpectations(t)
	})
}

func TestConcurrentTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.On("NotifyStatusChanged", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	a, err := f.candUC.Register(ctx, f.request(t, "a@x.com", "1110000"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(s domain.Status) {
			defer wg.Done()
			_, err := f.statusUC.Transition(ctx, admin(), a.ID, domain.StatusUpdateRequest{Status: string(s)})
			assert.NoError(t, err)
		}(domain.Statuses[i%len(domain.Statuses)])
	}
	wg.Wait()

	got, err := f.candUC.GetStatus(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.StatusHistory, 31)
	assert.Equal(t, got.StatusHistory[30].Status, got.CurrentStatus)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i, phone := range []string{"1110000", "2220000", "3330000"} {
		req := f.request(t, phone+"@x.com", phone)
		if i == 1 {
			req.Department = "HR"
		}
		_, err := f.candUC.Register(ctx, req)
		require.NoError(t, err)
	}

	t.Run("pagination links", func(t *testing.T) {
		page, err := f.candUC.List(ctx, domain.CandidateListQuery{Page: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Count)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Results, 2)
		require.NotNil(t, page.Next)
		assert.Equal(t, 2, *page.Next)
		assert.Nil(t, page.Previous)

		page, err = f.candUC.List(ctx, domain.CandidateListQuery{Page: 2})
		require.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Nil(t, page.Next)
		require.NotNil(t, page.Previous)
	})

	t.Run("huge page number", func(t *testing.T) {
		page, err := f.candUC.List(ctx, domain.CandidateListQuery{Page: math.MaxInt64 / 10})
		require.NoError(t, err)
		assert.Empty(t, page.Results)
		assert.Equal(t, int64(3), page.Count)
		assert.Equal(t, domain.MaxPage, page.Page)
		assert.Nil(t, page.Next)
	})

	t.Run("filter by department", func(t *testing.T) {
		page, err := f.candUC.List(ctx, domain.CandidateListQuery{Department: "HR"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Count)
	})

	t.Run("unknown filter values", func(t *testing.T) {
		_, err := f.candUC.List(ctx, domain.CandidateListQuery{Department: "Sales", CurrentStatus: "hired", Ordering: "-email"})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Len(t, appErr.Fields, 3)
	})

	t.Run("export", func(t *testing.T) {
		data, filename, err := f.candUC.Export(ctx, domain.CandidateListQuery{Department: "IT"})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".xlsx"))

		xf, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		rows, err := xf.GetRows("Candidates")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
		assert.Equal(t, "FULL NAME", rows[0][1])
	})
}

func TestOpenResume(t *testing.T) {
	ctx := context.Background()

	t.Run("streams from local store", func(t *testing.T) {
		f := newFixture(t)
		c, err := f.candUC.Register(ctx, f.request(t, "a@x.com", "1110000"))
		require.NoError(t, err)

		dl, err := f.candUC.OpenResume(ctx, c.ID)
		require.NoError(t, err)
		defer dl.Body.Close()
		b, _ := io.ReadAll(dl.Body)
		assert.Equal(t, pdfBody, string(b))
		assert.Equal(t, "CV Final.pdf", dl.Filename)
		assert.Equal(t, "application/pdf", dl.ContentType)
	})

	t.Run("redirects when the store signs urls", func(t *testing.T) {
		f := newFixture(t)
		c, err := f.candUC.Register(ctx, f.request(t, "a@x.com", "1110000"))
		require.NoError(t, err)

		uc := usecase.NewCandidateUsecase(f.repo, f.uploads, signingFiles{f.files}, validation.MustNew(), usecase.CandidateConfig{PresignTTL: time.Minute})
		dl, err := uc.OpenResume(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, dl.Body)
		assert.Equal(t, "https://signed.test/"+c.ResumeKey+"?ttl=1m0s", dl.RedirectURL)
	})

	t.Run("unknown candidate", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.candUC.OpenResume(ctx, "nope")
		assert.Equal(t, http.StatusNotFound, appCode(t, err))
	})
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores under temp key", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.uploadUC.Upload(ctx, domain.UploadFile{Filename: "cv.pdf", Size: int64(len(pdfBody)), Content: strings.NewReader(pdfBody)})
		require.NoError(t, err)
		key := storage.TempResumeKey(res.FileID, ".pdf")
		assert.True(t, f.files.has(key))
		assert.Equal(t, "http://files.test/"+key, res.URL)
		assert.Equal(t, fixedNow.Add(time.Hour), res.ExpiresAt)

		info, err := f.uploadUC.GetInfo(ctx, res.FileID)
		require.NoError(t, err)
		assert.False(t, info.IsExpired)
		assert.False(t, info.IsUsed)
		assert.Equal(t, "application/pdf", info.ContentType)
	})

	t.Run("rejects oversize", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uploadUC.Upload(ctx, domain.UploadFile{Filename: "cv.pdf", Size: 2 << 20, Content: strings.NewReader(pdfBody)})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "File size cannot exceed 1MB.", appErr.Fields["file"])
	})

	t.Run("rejects wrong type", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uploadUC.Upload(ctx, domain.UploadFile{Filename: "cv.exe", Size: 4, Content: strings.NewReader("MZ..")})
		assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t)
		f.files.failPut = true
		_, err := f.uploadUC.Upload(ctx, domain.UploadFile{Filename: "cv.pdf", Size: int64(len(pdfBody)), Content: strings.NewReader(pdfBody)})
		assert.Equal(t, http.StatusServiceUnavailable, appCode(t, err))
	})

	t.Run("unknown file id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uploadUC.GetInfo(ctx, "missing")
		assert.Equal(t, http.StatusNotFound, appCode(t, err))
	})

	t.Run("purge expired", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.uploads.Create(ctx, &domain.TemporaryUpload{
			FileID: "old", StorageKey: "temp_resumes/old/resume_old.pdf", ExpiresAt: fixedNow.Add(-time.Minute),
		}))
		f.files.objects["temp_resumes/old/resume_old.pdf"] = []byte(pdfBody)
		fresh := f.upload(t)

		n, err := f.uploadUC.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.False(t, f.files.has("temp_resumes/old/resume_old.pdf"))
		_, err = f.uploadUC.GetInfo(ctx, fresh)
		assert.NoError(t, err)
	})
}

func TestHealth(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCandidateRepo)
	repo.On("Ping", mock.Anything).Return(nil).Once()
	uc := usecase.NewHealthUsecase(repo, map[string]usecase.Checker{
		"redis": func(context.Context) error { return errors.New("down") },
	})
	res, err := uc.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "degraded", res.Status)
	assert.Equal(t, "down", res.Components["redis"])

	repo.On("Ping", mock.Anything).Return(domain.ErrStorageUnavailable).Once()
	res, err = uc.Check(ctx)
	assert.Error(t, err)
	assert.Equal(t, "unavailable", res.Status)
}
