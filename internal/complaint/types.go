package complaint

import (
	"errors"
	"time"
)

// Workflow statuses. The described flow is pending → assigned →
// in_progress → resolved, but ordering is deliberately not enforced:
// any role with write access may set any status.
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// ValidStatus reports whether s is a known workflow status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Attachment is a file uploaded alongside a complaint. The bytes live
// on disk (or object storage); only metadata travels over the API.
type Attachment struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
	StoragePath string `json:"-"`
}

// Complaint is a citizen-submitted issue tracked through the workflow.
// Complaints are never deleted; they only accumulate responses and
// status changes.
type Complaint struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Status      string       `json:"status"`
	Response    string       `json:"response,omitempty"`
	AgencyID    string       `json:"agencyId,omitempty"`
	UserID      string       `json:"userId"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewComplaint is the submission payload.
type NewComplaint struct {
	Title       string
	Description string
	Category    string
	UserID      string
	Attachments []Attachment
}

// Scope restricts which complaints a viewer may see. Zero value means
// no restriction (administrators).
type Scope struct {
	UserID   string
	AgencyID string
}

var (
	ErrNotFound      = errors.New("complaint not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid status")
)
