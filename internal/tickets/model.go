package tickets

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the ticket does not exist.
	ErrNotFound = errors.New("tickets: record not found")
	// ErrInvalidStatus indicates a status transition is not allowed.
	ErrInvalidStatus = errors.New("tickets: invalid status transition")
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

type TicketPriority string

const (
	PriorityLow      TicketPriority = "LOW"
	PriorityMedium   TicketPriority = "MEDIUM"
	PriorityHigh     TicketPriority = "HIGH"
	PriorityCritical TicketPriority = "CRITICAL"
)

// slaWindows maps priority to the resolution deadline measured from creation.
var slaWindows = map[TicketPriority]time.Duration{
	PriorityLow:      5 * 24 * time.Hour,
	PriorityMedium:   3 * 24 * time.Hour,
	PriorityHigh:     24 * time.Hour,
	PriorityCritical: 4 * time.Hour,
}

// SLADeadline returns the resolution deadline for a ticket opened at the
// given time.
func SLADeadline(priority TicketPriority, openedAt time.Time) time.Time {
	window, ok := slaWindows[priority]
	if !ok {
		window = slaWindows[PriorityMedium]
	}
	return openedAt.Add(window)
}

var validTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusOpen},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusOpen},
	TicketStatusClosed:     {},
}

// CanTransition reports whether a ticket may move between two statuses.
func CanTransition(from, to TicketStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Ticket struct {
	ID          int64          `json:"id" db:"id"`
	Code        string         `json:"code" db:"code"`
	ClientID    int64          `json:"client_id" db:"client_id"`
	Subject     string         `json:"subject" db:"subject"`
	Description string         `json:"description" db:"description"`
	Status      TicketStatus   `json:"status" db:"status"`
	Priority    TicketPriority `json:"priority" db:"priority"`
	AssignedTo  *int64         `json:"assigned_to,omitempty" db:"assigned_to"`
	SLADue      time.Time      `json:"sla_due" db:"sla_due"`
	SLABreached bool           `json:"sla_breached" db:"sla_breached"`
	CreatedBy   int64          `json:"created_by" db:"created_by"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type TicketComment struct {
	ID        int64     `json:"id" db:"id"`
	TicketID  int64     `json:"ticket_id" db:"ticket_id"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TicketWithNames decorates a ticket with display names for list views.
type TicketWithNames struct {
	Ticket
	ClientName     string  `json:"client_name" db:"client_name"`
	AssignedToName *string `json:"assigned_to_name,omitempty" db:"assigned_to_name"`
}
