package domain

import (
	"errors"
	"strings"
)

var (
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidOrdering    = errors.New("invalid ordering field")
	ErrInvalidFilter      = errors.New("invalid filter value")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDuplicateField     = errors.New("duplicate field")

	ErrUploadNotFound = errors.New("upload not found")
	ErrUploadExpired  = errors.New("upload has expired")
	ErrUploadUsed     = errors.New("upload has already been used")
	ErrResumeMissing  = errors.New("resume file not found")
)

// Unique fields of a candidate record
const (
	FieldEmail = "email"
	FieldPhone = "phone"
)

var duplicateMessages = map[string]string{
	FieldEmail: "A candidate with this email already exists.",
	FieldPhone: "A candidate with this phone number already exists.",
}

// DuplicateFieldError names every unique field that collided with an existing record
type DuplicateFieldError struct {
	Fields []string
}

func (e *DuplicateFieldError) Error() string {
	return "duplicate field: " + strings.Join(e.Fields, ", ")
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

// Messages returns the per-field message shown to registrants
func (e *DuplicateFieldError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		msg, ok := duplicateMessages[f]
		if !ok {
			msg = "A candidate with this " + f + " already exists."
		}
		out[f] = msg
	}
	return out
}
