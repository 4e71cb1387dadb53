package domain

import "context"

// Notifier is told about committed status changes. Failures never undo a transition.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, c *Candidate, entry StatusHistoryEntry) error
}

// Mail message types
const MailTypeStatusChanged = "status_changed"

// MailMessage is the notification queue payload
type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

// StatusChangedMailData is the template data for a status change email
type StatusChangedMailData struct {
	CandidateID string `json:"candidate_id"`
	FullName    string `json:"full_name"`
	Status      Status `json:"status"`
	StatusLabel string `json:"status_label"`
	Feedback    string `json:"feedback,omitempty"`
	ChangedAt   string `json:"changed_at"`
}
