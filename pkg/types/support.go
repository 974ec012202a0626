package types

import "time"

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

type TicketCategory string

const (
	TicketCategoryTechnical   TicketCategory = "technical"
	TicketCategoryApplication TicketCategory = "application"
	TicketCategoryScoring     TicketCategory = "scoring"
	TicketCategoryAccount     TicketCategory = "account"
	TicketCategoryOther       TicketCategory = "other"
)

func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryTechnical, TicketCategoryApplication, TicketCategoryScoring, TicketCategoryAccount, TicketCategoryOther:
		return true
	}
	return false
}

type SupportTicket struct {
	ID         string         `db:"id" json:"id"`
	Number     string         `db:"number" json:"number"`
	UserID     string         `db:"user_id" json:"userId"`
	Email      string         `db:"email" json:"email"`
	Subject    string         `db:"subject" json:"subject"`
	Message    string         `db:"message" json:"message"`
	Category   TicketCategory `db:"category" json:"category"`
	Priority   TicketPriority `db:"priority" json:"priority"`
	Status     TicketStatus   `db:"status" json:"status"`
	AssignedTo *string        `db:"assigned_to" json:"assignedTo,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`
	ResolvedAt *time.Time     `db:"resolved_at" json:"resolvedAt,omitempty"`

	Responses []*SupportResponse `db:"-" json:"responses,omitempty"`
}

type SupportResponse struct {
	ID          string    `db:"id" json:"id"`
	TicketID    string    `db:"ticket_id" json:"ticketId"`
	ResponderID string    `db:"responder_id" json:"responderId"`
	Message     string    `db:"message" json:"message"`
	IsAdmin     bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusOpen},
}

// CanTransitionTo reports whether a ticket in status s may move to next.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
