package domain

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// Application status values. These strings are part of the public API.
type Status string

const (
	StatusSubmitted          Status = "submitted"
	StatusUnderReview        Status = "under_review"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusRejected           Status = "rejected"
	StatusAccepted           Status = "accepted"
)

// Statuses lists every recognized status in lifecycle order
var Statuses = []Status{
	StatusSubmitted,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusRejected,
	StatusAccepted,
}

var statusLabels = map[Status]string{
	StatusSubmitted:          "Submitted",
	StatusUnderReview:        "Under Review",
	StatusInterviewScheduled: "Interview Scheduled",
	StatusRejected:           "Rejected",
	StatusAccepted:           "Accepted",
}

// Valid reports whether s is one of the recognized statuses
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable name used in emails and exports
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStatus converts raw input into a Status.
// Any value outside the fixed enumeration yields ErrInvalidStatus.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Department values
type Department string

const (
	DepartmentIT      Department = "IT"
	DepartmentHR      Department = "HR"
	DepartmentFinance Department = "Finance"
)

var Departments = []Department{DepartmentIT, DepartmentHR, DepartmentFinance}

func (d Department) Valid() bool {
	switch d {
	case DepartmentIT, DepartmentHR, DepartmentFinance:
		return true
	}
	return false
}

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Candidate is one applicant record. CurrentStatus always mirrors the
// status of the last entry in the candidate's history.
type Candidate struct {
	ID                string     `json:"id"`
	FullName          string     `json:"full_name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	DateOfBirth       Date       `json:"date_of_birth"`
	YearsOfExperience int        `json:"years_of_experience"`
	Department        Department `json:"department"`

	// Resume reference; the bytes live in the file store
	ResumeFileID   string `json:"resume_file_id,omitempty"`
	ResumeFilename string `json:"resume_filename,omitempty"`
	ResumeKey      string `json:"-"`

	CurrentStatus Status    `json:"current_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Populated on single-record reads, oldest entry first
	StatusHistory []StatusHistoryEntry `json:"status_history,omitempty"`
}

// StatusHistoryEntry is one immutable status assignment
type StatusHistoryEntry struct {
	ID          int64     `json:"-"`
	CandidateID string    `json:"-"`
	Status      Status    `json:"status"`
	Feedback    *string   `json:"feedback"`
	ChangedAt   time.Time `json:"changed_at"`
	AdminInfo   *string   `json:"admin_info"`
}

// CandidateStatusView is the public status check payload
type CandidateStatusView struct {
	ID            string               `json:"id"`
	FullName      string               `json:"full_name"`
	CurrentStatus Status               `json:"current_status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	StatusHistory []StatusHistoryEntry `json:"status_history"`
}

func (c *Candidate) StatusView() CandidateStatusView {
	history := c.StatusHistory
	if history == nil {
		history = []StatusHistoryEntry{}
	}
	return CandidateStatusView{
		ID:            c.ID,
		FullName:      c.FullName,
		CurrentStatus: c.CurrentStatus,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		StatusHistory: history,
	}
}

// RegisterCandidateRequest is the registration payload
type RegisterCandidateRequest struct {
	FullName          string `json:"full_name" validate:"required,max=255,valid_name"`
	Email             string `json:"email" validate:"required,email,max=254"`
	Phone             string `json:"phone" validate:"required,valid_phone"`
	DateOfBirth       string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	YearsOfExperience *int   `json:"years_of_experience" validate:"required,min=0"`
	Department        string `json:"department" validate:"required,oneof=IT HR Finance"`
	FileID            string `json:"file_id" validate:"required"`
}

// StatusUpdateRequest is the admin payload for a transition
type StatusUpdateRequest struct {
	Status   string  `json:"status"`
	Feedback *string `json:"feedback" validate:"omitempty,max=1000"`
}

// CandidateListQuery carries raw list parameters from the caller
type CandidateListQuery struct {
	Department    string `form:"department"`
	CurrentStatus string `form:"current_status"`
	Ordering      string `form:"ordering"`
	Page          int    `form:"page"`
}

// CandidateFilter is the validated form of CandidateListQuery
type CandidateFilter struct {
	Department Department
	Status     Status
	OrderBy    string
	Descending bool
	Page       int
	PageSize   int
}

// Candidate list ordering fields
const (
	OrderByCreatedAt         = "created_at"
	OrderByFullName          = "full_name"
	OrderByYearsOfExperience = "years_of_experience"
)

var sortFields = map[string]bool{
	OrderByCreatedAt:         true,
	OrderByFullName:          true,
	OrderByYearsOfExperience: true,
}

// ParseOrdering reads "field" or "-field". Empty input means newest first.
func ParseOrdering(raw string) (field string, desc bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return OrderByCreatedAt, true, nil
	}
	if strings.HasPrefix(raw, "-") {
		desc = true
		raw = raw[1:]
	}
	if !sortFields[raw] {
		return "", false, ErrInvalidOrdering
	}
	return raw, desc, nil
}

// ResumeDownload is either a redirect target or a readable body
type ResumeDownload struct {
	Filename    string
	ContentType string
	RedirectURL string
	Body        io.ReadCloser
}

// CandidateRepository is the candidate record store. Create and AppendStatus
// are atomic: the record and its history entry are written together or not at all.
type CandidateRepository interface {
	// Create persists c with first as its initial history entry.
	// Returns *DuplicateFieldError when email or phone is taken.
	Create(ctx context.Context, c *Candidate, first StatusHistoryEntry) error
	// GetByID returns the candidate with its ordered history
	GetByID(ctx context.Context, id string) (*Candidate, error)
	List(ctx context.Context, filter CandidateFilter) ([]Candidate, int64, error)
	// History returns entries oldest first, ErrCandidateNotFound for unknown ids
	History(ctx context.Context, id string) ([]StatusHistoryEntry, error)
	// AppendStatus appends entry and moves current_status to entry.Status.
	// Concurrent calls for one candidate are serialized.
	AppendStatus(ctx context.Context, id string, entry StatusHistoryEntry) (*Candidate, error)
	Ping(ctx context.Context) error
}

type CandidateUsecase interface {
	Register(ctx context.Context, req RegisterCandidateRequest) (*Candidate, error)
	GetStatus(ctx context.Context, id string) (*Candidate, error)
	List(ctx context.Context, q CandidateListQuery) (*PaginatedResult[Candidate], error)
	History(ctx context.Context, id string) ([]StatusHistoryEntry, error)
	Export(ctx context.Context, q CandidateListQuery) ([]byte, string, error)
	OpenResume(ctx context.Context, id string) (*ResumeDownload, error)
}

// StatusUsecase is the only way to change a candidate's status after creation
type StatusUsecase interface {
	Transition(ctx context.Context, actor Actor, id string, req StatusUpdateRequest) (*Candidate, error)
}
