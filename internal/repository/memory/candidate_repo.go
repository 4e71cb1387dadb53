package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-hr-backend/internal/domain"

	"github.com/google/uuid"
)

// Clock supplies the current time
type Clock func() time.Time

type candidateRepository struct {
	mu         sync.RWMutex
	now        Clock
	candidates map[string]*domain.Candidate
	history    map[string][]domain.StatusHistoryEntry
	byEmail    map[string]string
	byPhone    map[string]string
	nextID     int64
}

// NewCandidateRepository returns an in-process store. One mutex guards every
// write, so uniqueness checks and history appends are serialized.
func NewCandidateRepository(now Clock) domain.CandidateRepository {
	if now == nil {
		now = time.Now
	}
	return &candidateRepository{
		now:        now,
		candidates: make(map[string]*domain.Candidate),
		history:    make(map[string][]domain.StatusHistoryEntry),
		byEmail:    make(map[string]string),
		byPhone:    make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *candidateRepository) Create(ctx context.Context, c *domain.Candidate, first domain.StatusHistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var dup []string
	if _, ok := r.byEmail[emailKey(c.Email)]; ok {
		dup = append(dup, domain.FieldEmail)
	}
	if _, ok := r.byPhone[c.Phone]; ok {
		dup = append(dup, domain.FieldPhone)
	}
	if len(dup) > 0 {
		return &domain.DuplicateFieldError{Fields: dup}
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, ok := r.candidates[c.ID]; ok {
		// id collisions surface like any other write failure
		return domain.ErrStorageUnavailable
	}

	now := r.now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.CurrentStatus = first.Status

	r.nextID++
	first.ID = r.nextID
	first.CandidateID = c.ID
	first.ChangedAt = now

	stored := *c
	stored.StatusHistory = nil
	r.candidates[c.ID] = &stored
	r.history[c.ID] = []domain.StatusHistoryEntry{first}
	r.byEmail[emailKey(c.Email)] = c.ID
	r.byPhone[c.Phone] = c.ID

	c.StatusHistory = []domain.StatusHistoryEntry{first}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	out := *c
	out.StatusHistory = r.copyHistory(id)
	return &out, nil
}

func (r *candidateRepository) copyHistory(id string) []domain.StatusHistoryEntry {
	src := r.history[id]
	out := make([]domain.StatusHistoryEntry, len(src))
	copy(out, src)
	return out
}

func (r *candidateRepository) List(ctx context.Context, f domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]domain.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		if f.Department != "" && c.Department != f.Department {
			continue
		}
		if f.Status != "" && c.CurrentStatus != f.Status {
			continue
		}
		matched = append(matched, *c)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		cmp := compare(a, b, f.OrderBy)
		if cmp == 0 {
			cmp = strings.Compare(a.ID, b.ID)
		}
		if f.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	total := int64(len(matched))
	if f.PageSize <= 0 {
		return matched, total, nil
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	if page-1 >= (len(matched)+f.PageSize-1)/f.PageSize {
		return []domain.Candidate{}, total, nil
	}
	start := (page - 1) * f.PageSize
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func compare(a, b domain.Candidate, field string) int {
	switch field {
	case domain.OrderByFullName:
		return strings.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName))
	case domain.OrderByYearsOfExperience:
		return a.YearsOfExperience - b.YearsOfExperience
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (r *candidateRepository) History(ctx context.Context, id string) ([]domain.StatusHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.candidates[id]; !ok {
		return nil, domain.ErrCandidateNotFound
	}
	return r.copyHistory(id), nil
}

func (r *candidateRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusHistoryEntry) (*domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}

	// changed_at never goes backwards, even if the clock does
	now := r.now().UTC()
	if now.Before(c.UpdatedAt) {
		now = c.UpdatedAt
	}

	r.nextID++
	entry.ID = r.nextID
	entry.CandidateID = id
	entry.ChangedAt = now
	r.history[id] = append(r.history[id], entry)

	c.CurrentStatus = entry.Status
	c.UpdatedAt = now

	out := *c
	out.StatusHistory = r.copyHistory(id)
	return &out, nil
}

func (r *candidateRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
