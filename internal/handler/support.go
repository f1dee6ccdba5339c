package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/storage"
)

// SupportHandler serves the customer side of support tickets.  Only
// users who registered at least one product may open a ticket.
type SupportHandler struct {
	Tickets *repository.TicketRepo
	Regs    *repository.RegistrationRepo
	Files   storage.Store
	Log     zerolog.Logger
}

func NewSupportHandler(tickets *repository.TicketRepo, regs *repository.RegistrationRepo, files storage.Store, log zerolog.Logger) *SupportHandler {
	return &SupportHandler{Tickets: tickets, Regs: regs, Files: files, Log: log}
}

type createTicketReq struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

type ticketPart struct {
	ID        uint64     `json:"id"`
	Subject   string     `json:"subject"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	Tags      []string   `json:"tags"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toTicketPart(t model.SupportTicket) ticketPart {
	return ticketPart{ID: t.ID, Subject: t.Subject, Status: t.Status, Priority: t.Priority, Tags: t.Tags, ClosedAt: t.ClosedAt, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func validPriority(p string) bool {
	switch p {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent:
		return true
	}
	return false
}

// CreateTicket opens a ticket with its first message in one
// transaction.
func (h *SupportHandler) CreateTicket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	var req createTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "subject and message are required"})
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !validPriority(req.Priority) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid priority"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	owned, err := h.Regs.CountByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if owned == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "you must register a product before opening a support ticket"})
	}

	tx, err := h.Tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "begin transaction failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket := model.SupportTicket{
		UserID:   userID,
		Subject:  req.Subject,
		Status:   model.TicketOpen,
		Priority: req.Priority,
		Tags:     []string{},
	}
	if err := h.Tickets.CreateTx(ctx, tx, &ticket); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create ticket failed"})
	}
	msg := model.TicketMessage{
		TicketID:   ticket.ID,
		SenderType: model.SenderCustomer,
		SenderID:   userID,
		Body:       req.Message,
	}
	if err := h.Tickets.CreateMessageTx(ctx, tx, &msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create message failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "commit failed"})
	}
	committed = true

	h.Log.Info().Uint64("ticket_id", ticket.ID).Uint64("user_id", userID).Msg("support ticket opened")
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": toTicketPart(ticket)})
}

// ListTickets returns the caller's tickets, most recently updated
// first.
func (h *SupportHandler) ListTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": tickets})
}

// GetTicket returns one owned ticket with its full message thread.
func (h *SupportHandler) GetTicket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	messages, err := h.Tickets.ListMessages(ctx, ticket.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"ticket": toTicketPart(ticket), "messages": messages},
	})
}

// SendMessage appends a customer message, with optional attachments,
// to an owned ticket.  A reply to a RESOLVED ticket inside the grace
// window reopens it; CLOSED tickets and stale RESOLVED tickets refuse
// the message.
func (h *SupportHandler) SendMessage(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid ticket id"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "multipart form required"})
	}
	body := ""
	if v := form.Value["message"]; len(v) > 0 {
		body = strings.TrimSpace(v[0])
	}
	if body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "message body is required"})
	}
	files := form.File["files"]
	if len(files) > 0 {
		if _, msg := collectUploads(form, "files", 1); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": msg})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	now := time.Now().UTC()
	reopen, err := model.CheckCustomerReply(ticket, now)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	var saved []storage.SavedFile
	if len(files) > 0 {
		saved = make([]storage.SavedFile, 0, len(files))
		for _, fh := range files {
			src, err := fh.Open()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "file upload failed"})
			}
			sf, err := h.Files.Save(fh.Filename, src)
			src.Close()
			if err != nil {
				h.Log.Error().Err(err).Msg("attachment store failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "file upload failed"})
			}
			saved = append(saved, sf)
		}
	}

	tx, err := h.Tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "begin transaction failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	msg := model.TicketMessage{
		TicketID:   ticket.ID,
		SenderType: model.SenderCustomer,
		SenderID:   userID,
		Body:       body,
	}
	if err := h.Tickets.CreateMessageTx(ctx, tx, &msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create message failed"})
	}
	for i, fh := range files {
		att := model.TicketAttachment{
			MessageID:        msg.ID,
			OriginalFilename: fh.Filename,
			StoragePath:      saved[i].Path,
			MimeType:         fh.Header.Get("Content-Type"),
			FileSize:         saved[i].Size,
		}
		if err := h.Tickets.CreateAttachmentTx(ctx, tx, &att); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "store attachment failed"})
		}
	}

	status := ticket.Status
	if reopen {
		status = model.TicketOpen
		if err := h.Tickets.SetStatusTx(ctx, tx, ticket.ID, status, nil); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "update status failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    echo.Map{"message_id": msg.ID, "ticket_status": status},
	})
}
