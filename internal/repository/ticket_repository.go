package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// TicketRepo provides CRUD operations for support tickets, their
// messages and message attachments. Ticket creation and replies are
// multi-step writes and run inside handler-owned transactions via the
// Tx variants. Tags are stored as a JSON array in a single column.
type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func decodeTags(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return []string{}
	}
	return tags
}

func scanTicket(scan func(dest ...interface{}) error) (model.SupportTicket, error) {
	var (
		t    model.SupportTicket
		tags sql.NullString
	)
	err := scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.Priority, &tags,
		&t.ClosedAt, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	t.Tags = decodeTags(tags)
	return t, err
}

const ticketCols = "id,user_id,subject,status,priority,tags,closed_at,created_at,updated_at"

// CreateTx inserts an OPEN ticket within an existing transaction and
// populates the generated ID.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.SupportTicket) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO support_tickets (user_id, subject, status, priority, tags) VALUES (?,?,?,?,?)",
		t.UserID, t.Subject, t.Status, t.Priority, tags)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID fetches a ticket regardless of owner (admin paths).
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.SupportTicket, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM support_tickets WHERE id=? LIMIT 1", id)
	return scanTicket(row.Scan)
}

// GetByIDForUser fetches a ticket only if the user owns it.
func (r *TicketRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (model.SupportTicket, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM support_tickets WHERE id=? AND user_id=? LIMIT 1", id, userID)
	return scanTicket(row.Scan)
}

// CreateMessageTx appends a message within an existing transaction.
func (r *TicketRepo) CreateMessageTx(ctx context.Context, tx *sql.Tx, m *model.TicketMessage) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_messages (ticket_id, sender_type, sender_id, body) VALUES (?,?,?,?)",
		m.TicketID, m.SenderType, m.SenderID, m.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// CreateAttachmentTx stores attachment metadata for a message within an
// existing transaction.
func (r *TicketRepo) CreateAttachmentTx(ctx context.Context, tx *sql.Tx, a *model.TicketAttachment) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_attachments (message_id, original_filename, storage_path, mime_type, file_size) VALUES (?,?,?,?,?)",
		a.MessageID, a.OriginalFilename, a.StoragePath, a.MimeType, a.FileSize)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// SetStatusTx updates status and closed timestamp together inside a
// transaction (reply-triggered transitions).
func (r *TicketRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, closedAt *time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE support_tickets SET status=?, closed_at=? WHERE id=?", status, closedAt, id)
	return err
}

// SetStatus updates status directly (admin status endpoint). RESOLVED
// and CLOSED stamp the closed timestamp; any other status clears it.
func (r *TicketRepo) SetStatus(ctx context.Context, id uint64, status string, now time.Time) error {
	var closedAt *time.Time
	if status == model.TicketResolved || status == model.TicketClosed {
		closedAt = &now
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE support_tickets SET status=?, closed_at=? WHERE id=?", status, closedAt, id)
	return err
}

// SetTags replaces the ticket's tag list.
func (r *TicketRepo) SetTags(ctx context.Context, id uint64, tags []string) error {
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE support_tickets SET tags=? WHERE id=?", encoded, id)
	return err
}

// ListMessages returns a ticket's messages oldest first, each with its
// attachments.
func (r *TicketRepo) ListMessages(ctx context.Context, ticketID uint64) ([]MessageDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, ticket_id, sender_type, sender_id, body, created_at FROM ticket_messages WHERE ticket_id=? ORDER BY created_at, id",
		ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MessageDetail
	for rows.Next() {
		var m MessageDetail
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderType, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Attachments = []AttachmentInfo{}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	args := make([]interface{}, len(out))
	index := make(map[uint64]*MessageDetail, len(out))
	for i := range out {
		ids[i] = "?"
		args[i] = out[i].ID
		index[out[i].ID] = &out[i]
	}
	arows, err := r.db.QueryContext(ctx,
		"SELECT id, message_id, original_filename, mime_type, file_size, created_at FROM ticket_attachments WHERE message_id IN ("+strings.Join(ids, ",")+") ORDER BY id",
		args...)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var (
			a     AttachmentInfo
			msgID uint64
		)
		if err := arows.Scan(&a.ID, &msgID, &a.OriginalFilename, &a.MimeType, &a.FileSize, &a.CreatedAt); err != nil {
			return nil, err
		}
		if m, ok := index[msgID]; ok {
			m.Attachments = append(m.Attachments, a)
		}
	}
	return out, arows.Err()
}

// MessageDetail is a ticket message with its attachment metadata.
type MessageDetail struct {
	ID          uint64           `json:"id"`
	TicketID    uint64           `json:"ticket_id"`
	SenderType  string           `json:"sender_type"`
	SenderID    uint64           `json:"sender_id"`
	Body        string           `json:"body"`
	Attachments []AttachmentInfo `json:"attachments"`
	CreatedAt   time.Time        `json:"created_at"`
}

// AttachmentInfo is the client-facing slice of an attachment row.
type AttachmentInfo struct {
	ID               uint64    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	FileSize         int64     `json:"file_size"`
	CreatedAt        time.Time `json:"created_at"`
}

// TicketSummary is one row of a ticket listing with the latest message
// preview.
type TicketSummary struct {
	ID             uint64     `json:"id"`
	UserID         uint64     `json:"user_id"`
	UserEmail      *string    `json:"user_email,omitempty"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	Tags           []string   `json:"tags"`
	MessageCount   int        `json:"message_count"`
	LastSenderType *string    `json:"last_sender_type,omitempty"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

const ticketSummarySelect = `
    SELECT t.id, t.user_id, u.email, t.subject, t.status, t.priority, t.tags,
           (SELECT COUNT(*) FROM ticket_messages m WHERE m.ticket_id=t.id),
           (SELECT m.sender_type FROM ticket_messages m WHERE m.ticket_id=t.id ORDER BY m.created_at DESC, m.id DESC LIMIT 1),
           (SELECT m.created_at FROM ticket_messages m WHERE m.ticket_id=t.id ORDER BY m.created_at DESC, m.id DESC LIMIT 1),
           t.closed_at, t.created_at, t.updated_at
    FROM support_tickets t
    JOIN users u ON u.id = t.user_id`

func collectTicketSummaries(rows *sql.Rows) ([]TicketSummary, error) {
	defer rows.Close()
	var out []TicketSummary
	for rows.Next() {
		var (
			s    TicketSummary
			tags sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserEmail, &s.Subject, &s.Status, &s.Priority, &tags,
			&s.MessageCount, &s.LastSenderType, &s.LastMessageAt,
			&s.ClosedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Tags = decodeTags(tags)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByUser returns all of a customer's tickets, most recently
// updated first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]TicketSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		ticketSummarySelect+" WHERE t.user_id=? ORDER BY t.updated_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return collectTicketSummaries(rows)
}

// AdminTicketFilter narrows the admin ticket listing.
type AdminTicketFilter struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// ListAdmin returns a filtered page of tickets plus the total matching
// count, most recently updated first.
func (r *TicketRepo) ListAdmin(ctx context.Context, f AdminTicketFilter) ([]TicketSummary, int, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	if f.Status != "" {
		where = append(where, "t.status=?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		where = append(where, "t.priority=?")
		args = append(args, f.Priority)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM support_tickets t"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageArgs := append(append([]interface{}{}, args...), f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.db.QueryContext(ctx,
		ticketSummarySelect+cond+" ORDER BY t.updated_at DESC LIMIT ? OFFSET ?", pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectTicketSummaries(rows)
	return out, total, err
}

// CountByUser returns how many tickets the user has opened.
func (r *TicketRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM support_tickets WHERE user_id=?", userID).Scan(&n)
	return n, err
}
