package model

import (
	"errors"
	"time"
)

// Support ticket states.
const (
	TicketOpen       = "OPEN"
	TicketInProgress = "IN_PROGRESS"
	TicketResolved   = "RESOLVED"
	TicketClosed     = "CLOSED"
)

// Ticket priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Message sender types.
const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"
)

// ReplyGracePeriod is how long after resolution a customer may still
// reply and reopen the ticket.
const ReplyGracePeriod = 30 * 24 * time.Hour

var (
	// ErrTicketClosed means the ticket can no longer receive messages.
	ErrTicketClosed = errors.New("this ticket is closed and can no longer receive messages")
)

// ValidTicketStatus reports whether s is one of the four ticket states.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// CheckCustomerReply decides whether a customer may append a message to
// the ticket, and whether doing so reopens it.  A CLOSED ticket never
// accepts replies.  A RESOLVED ticket accepts replies within the grace
// window after its closed timestamp and reopens to OPEN; past the
// window it is permanently closed.
func CheckCustomerReply(t SupportTicket, now time.Time) (reopen bool, err error) {
	if t.Status == TicketClosed {
		return false, ErrTicketClosed
	}
	if t.Status == TicketResolved {
		if t.ClosedAt != nil && t.ClosedAt.Before(now.Add(-ReplyGracePeriod)) {
			return false, ErrTicketClosed
		}
		return true, nil
	}
	return false, nil
}

// SupportTicket is a customer support conversation.  Creation requires
// the user to own at least one product registration.
type SupportTicket struct {
	ID        uint64     // support_tickets.id
	UserID    uint64     // support_tickets.user_id
	Subject   string     // support_tickets.subject
	Status    string     // support_tickets.status
	Priority  string     // support_tickets.priority
	Tags      []string   // support_tickets.tags (JSON array)
	ClosedAt  *time.Time // support_tickets.closed_at (nullable)
	CreatedAt time.Time  // support_tickets.created_at
	UpdatedAt time.Time  // support_tickets.updated_at
}

// TicketMessage is one message in a ticket, ordered by creation time.
type TicketMessage struct {
	ID         uint64    // ticket_messages.id
	TicketID   uint64    // ticket_messages.ticket_id
	SenderType string    // ticket_messages.sender_type
	SenderID   uint64    // ticket_messages.sender_id
	Body       string    // ticket_messages.body
	CreatedAt  time.Time // ticket_messages.created_at
}

// TicketAttachment is a file attached to a ticket message.
type TicketAttachment struct {
	ID               uint64    // ticket_attachments.id
	MessageID        uint64    // ticket_attachments.message_id
	OriginalFilename string    // ticket_attachments.original_filename
	StoragePath      string    // ticket_attachments.storage_path
	MimeType         string    // ticket_attachments.mime_type
	FileSize         int64     // ticket_attachments.file_size
	CreatedAt        time.Time // ticket_attachments.created_at
}
