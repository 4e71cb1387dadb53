package memory_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"go-hr-backend/internal/domain"
	"go-hr-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCandidate(email, phone string) *domain.Candidate {
	return &domain.Candidate{
		FullName:          "Test Person",
		Email:             email,
		Phone:             phone,
		DateOfBirth:       domain.NewDate(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)),
		YearsOfExperience: 3,
		Department:        domain.DepartmentIT,
	}
}

func submitted() domain.StatusHistoryEntry {
	fb := "Application submitted successfully"
	return domain.StatusHistoryEntry{Status: domain.StatusSubmitted, Feedback: &fb}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	repo := memory.NewCandidateRepository(clock.Now)

	c := newCandidate("a@x.com", "111")
	require.NoError(t, repo.Create(ctx, c, submitted()))
	assert.NotEmpty(t, c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, got.CurrentStatus)
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, domain.StatusSubmitted, got.StatusHistory[0].Status)
	assert.Equal(t, clock.Now(), got.StatusHistory[0].ChangedAt)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestCreateDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCandidateRepository(nil)
	require.NoError(t, repo.Create(ctx, newCandidate("a@x.com", "111"), submitted()))

	cases := []struct {
		name   string
		email  string
		phone  string
		fields []string
	}{
		{"email differs only in case", "A@X.com", "222", []string{domain.FieldEmail}},
		{"phone", "b@x.com", "111", []string{domain.FieldPhone}},
		{"both", "a@x.com", "111", []string{domain.FieldEmail, domain.FieldPhone}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.Create(ctx, newCandidate(tc.email, tc.phone), submitted())
			var dup *domain.DuplicateFieldError
			require.ErrorAs(t, err, &dup)
			assert.ErrorIs(t, err, domain.ErrDuplicateField)
			assert.Equal(t, tc.fields, dup.Fields)
		})
	}

	_, total, err := repo.List(ctx, domain.CandidateFilter{PageSize: 20, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCandidateRepository(nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, newCandidate("same@x.com", fmt.Sprintf("55500%02d", i)), submitted())
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}

func TestAppendStatus(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	repo := memory.NewCandidateRepository(clock.Now)

	c := newCandidate("a@x.com", "111")
	require.NoError(t, repo.Create(ctx, c, submitted()))

	t.Run("unknown id leaves nothing behind", func(t *testing.T) {
		_, err := repo.AppendStatus(ctx, "unknown-id", domain.StatusHistoryEntry{Status: domain.StatusAccepted})
		assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
		_, err = repo.History(ctx, "unknown-id")
		assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
	})

	t.Run("appends and projects current status", func(t *testing.T) {
		clock.Advance(time.Minute)
		updated, err := repo.AppendStatus(ctx, c.ID, domain.StatusHistoryEntry{Status: domain.StatusUnderReview})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUnderReview, updated.CurrentStatus)
		assert.Len(t, updated.StatusHistory, 2)
		assert.Equal(t, clock.Now(), updated.UpdatedAt)
	})

	t.Run("clock going backwards keeps order", func(t *testing.T) {
		clock.Advance(-time.Hour)
		updated, err := repo.AppendStatus(ctx, c.ID, domain.StatusHistoryEntry{Status: domain.StatusAccepted})
		require.NoError(t, err)
		h := updated.StatusHistory
		require.Len(t, h, 3)
		assert.False(t, h[2].ChangedAt.Before(h[1].ChangedAt))
		assert.Equal(t, domain.StatusAccepted, h[len(h)-1].Status)
	})
}

func TestConcurrentTransitionsStayConsistent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCandidateRepository(nil)
	c := newCandidate("a@x.com", "111")
	require.NoError(t, repo.Create(ctx, c, submitted()))

	statuses := domain.Statuses
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(s domain.Status) {
			defer wg.Done()
			_, err := repo.AppendStatus(ctx, c.ID, domain.StatusHistoryEntry{Status: s})
			assert.NoError(t, err)
		}(statuses[i%len(statuses)])
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.StatusHistory, 51)
	assert.Equal(t, got.StatusHistory[50].Status, got.CurrentStatus)
	for i := 1; i < len(got.StatusHistory); i++ {
		assert.False(t, got.StatusHistory[i].ChangedAt.Before(got.StatusHistory[i-1].ChangedAt))
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	repo := memory.NewCandidateRepository(clock.Now)

	names := []string{"Carol", "alice", "Bob"}
	depts := []domain.Department{domain.DepartmentIT, domain.DepartmentHR, domain.DepartmentIT}
	ids := make([]string, len(names))
	for i, n := range names {
		c := newCandidate(fmt.Sprintf("%d@x.com", i), fmt.Sprintf("100000%d", i))
		c.FullName = n
		c.Department = depts[i]
		c.YearsOfExperience = i
		require.NoError(t, repo.Create(ctx, c, submitted()))
		ids[i] = c.ID
		clock.Advance(time.Minute)
	}
	_, err := repo.AppendStatus(ctx, ids[0], domain.StatusHistoryEntry{Status: domain.StatusRejected})
	require.NoError(t, err)

	t.Run("default newest first", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.CandidateFilter{OrderBy: domain.OrderByCreatedAt, Descending: true, Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{items[0].ID, items[1].ID, items[2].ID})
	})

	t.Run("by name ascending", func(t *testing.T) {
		items, _, err := repo.List(ctx, domain.CandidateFilter{OrderBy: domain.OrderByFullName, Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, "alice", items[0].FullName)
		assert.Equal(t, "Carol", items[2].FullName)
	})

	t.Run("page past the end", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.CandidateFilter{Page: math.MaxInt64 / 10, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, items)
	})

	t.Run("filters", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.CandidateFilter{Department: domain.DepartmentIT, Status: domain.StatusSubmitted, Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, ids[2], items[0].ID)
	})

	t.Run("paging", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.CandidateFilter{OrderBy: domain.OrderByYearsOfExperience, Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].YearsOfExperience)

		items, _, err = repo.List(ctx, domain.CandidateFilter{Page: 5, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestUploadClaim(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUploadRepository()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &domain.TemporaryUpload{FileID: "f1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &domain.TemporaryUpload{FileID: "old", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	_, err := repo.Claim(ctx, "missing", now)
	assert.ErrorIs(t, err, domain.ErrUploadNotFound)

	_, err = repo.Claim(ctx, "old", now.Add(2*time.Minute))
	assert.ErrorIs(t, err, domain.ErrUploadExpired)

	u, err := repo.Claim(ctx, "f1", now)
	require.NoError(t, err)
	assert.True(t, u.IsUsed)

	_, err = repo.Claim(ctx, "f1", now)
	assert.ErrorIs(t, err, domain.ErrUploadUsed)

	require.NoError(t, repo.Release(ctx, "f1"))
	_, err = repo.Claim(ctx, "f1", now)
	assert.NoError(t, err)

	removed, err := repo.DeleteExpired(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "old", removed[0].FileID)
}
