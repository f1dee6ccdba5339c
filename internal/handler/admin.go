package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/notification"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/queue"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
	queue_publisher "github.com/FaridHajiyevAZ/KomfyAz/internal/service"
)

// AdminHandler serves the review queue, the duplicates report, ticket
// administration and the dashboard statistics.
type AdminHandler struct {
	Users     *repository.UserRepo
	Regs      *repository.RegistrationRepo
	Photos    *repository.PhotoRepo
	Warrs     *repository.WarrantyRepo
	Notes     *repository.NoteRepo
	Tickets   *repository.TicketRepo
	Stats     *repository.StatsRepo
	Catalog   *repository.CatalogRepo
	Mailer    notification.EmailSender
	Dashboard string
	Log       zerolog.Logger
}

func NewAdminHandler(users *repository.UserRepo, regs *repository.RegistrationRepo, photos *repository.PhotoRepo, warrs *repository.WarrantyRepo, notes *repository.NoteRepo, tickets *repository.TicketRepo, stats *repository.StatsRepo, cat *repository.CatalogRepo, mailer notification.EmailSender, dashboardURL string, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Regs: regs, Photos: photos, Warrs: warrs, Notes: notes, Tickets: tickets, Stats: stats, Catalog: cat, Mailer: mailer, Dashboard: dashboardURL, Log: log}
}

// ----- registrations -----

// ListRegistrations returns a filtered page of the review queue.
func (h *AdminHandler) ListRegistrations(c echo.Context) error {
	page, limit := pageParams(c)
	f := repository.AdminRegistrationFilter{
		Status: strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		Page:   page,
		Limit:  limit,
	}
	if v, err := strconv.ParseUint(c.QueryParam("model_id"), 10, 64); err == nil {
		f.ModelID = v
	}
	if v, err := strconv.ParseUint(c.QueryParam("source_id"), 10, 64); err == nil {
		f.SourceID = v
	}
	if v, err := time.Parse("2006-01-02", c.QueryParam("date_from")); err == nil {
		f.DateFrom = &v
	}
	if v, err := time.Parse("2006-01-02", c.QueryParam("date_to")); err == nil {
		f.DateTo = &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	regs, total, err := h.Regs.ListAdmin(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	overrideExpired(regs, time.Now().UTC())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": regs, "meta": listMeta(page, limit, total)})
}

// GetRegistration returns a registration with its owner, photos,
// warranty and audit notes.
func (h *AdminHandler) GetRegistration(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid registration id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	reg, err := h.Regs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	owner, err := h.Users.GetByID(ctx, reg.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	photos, err := h.Photos.ListByRegistration(ctx, reg.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	notes, err := h.Notes.ListByRegistration(ctx, reg.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	photoParts := make([]echo.Map, 0, len(photos))
	for _, p := range photos {
		photoParts = append(photoParts, echo.Map{
			"id":                p.ID,
			"type":              p.Type,
			"original_filename": p.OriginalFilename,
			"mime_type":         p.MimeType,
			"file_size":         p.FileSize,
			"sha256_hash":       p.SHA256Hash,
			"created_at":        p.CreatedAt,
		})
	}
	noteParts := make([]echo.Map, 0, len(notes))
	for _, n := range notes {
		noteParts = append(noteParts, echo.Map{"id": n.ID, "admin_id": n.AdminID, "content": n.Content, "created_at": n.CreatedAt})
	}

	data := echo.Map{
		"id":                 reg.ID,
		"user":               toUserPart(owner),
		"mattress_model_id":  reg.MattressModelID,
		"purchase_source_id": reg.PurchaseSourceID,
		"purchase_date":      reg.PurchaseDate,
		"status":             reg.RegistrationStatus,
		"rejection_reason":   reg.RejectionReason,
		"created_at":         reg.CreatedAt,
		"photos":             photoParts,
		"notes":              noteParts,
	}
	if w, err := h.Warrs.GetByRegistration(ctx, reg.ID); err == nil {
		data["warranty"] = toWarrantyPart(w, time.Now().UTC())
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data})
}

type updateRegStatusReq struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func validRegStatus(s string) bool {
	switch s {
	case model.RegStatusPendingReview, model.RegStatusApproved, model.RegStatusRejected, model.RegStatusInfoRequested:
		return true
	}
	return false
}

// UpdateRegistrationStatus moves a registration along the review state
// machine.  The status change, the warranty side effect and the audit
// note commit as one transaction; the confirmation email and the
// broker event fire only after the commit succeeds.
func (h *AdminHandler) UpdateRegistrationStatus(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid registration id"})
	}
	var req updateRegStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	req.Reason = strings.TrimSpace(req.Reason)
	if !validRegStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid status"})
	}
	if req.Status == model.RegStatusRejected && req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "a reason is required when rejecting"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	reg, err := h.Regs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if !model.CanTransitionRegistration(reg.RegistrationStatus, req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   fmt.Sprintf("cannot move a %s registration to %s", reg.RegistrationStatus, req.Status),
		})
	}

	warranty, werr := h.Warrs.GetByRegistration(ctx, reg.ID)
	hasWarranty := werr == nil
	if werr != nil && !errors.Is(werr, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	now := time.Now().UTC()

	tx, err := h.Regs.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "begin transaction failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}
	if err := h.Regs.UpdateStatusTx(ctx, tx, reg.ID, req.Status, reason); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "update status failed"})
	}

	if hasWarranty {
		switch req.Status {
		case model.RegStatusApproved:
			if err := h.Warrs.ActivateTx(ctx, tx, warranty.ID, now); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "activate warranty failed"})
			}
		case model.RegStatusRejected:
			if err := h.Warrs.VoidTx(ctx, tx, warranty.ID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "void warranty failed"})
			}
		}
	}

	// The audit trail records a note only when the reviewer gave a
	// reason; plain approvals leave no note.
	if req.Reason != "" {
		note := model.AdminNote{
			AdminID:               adminID,
			ProductRegistrationID: reg.ID,
			Content:               fmt.Sprintf("Status changed to %s. Reason: %s", req.Status, req.Reason),
		}
		if err := h.Notes.CreateTx(ctx, tx, &note); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create note failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "commit failed"})
	}
	committed = true

	if req.Status == model.RegStatusApproved && hasWarranty {
		h.afterApproval(reg, warranty, now)
	}

	h.Log.Info().
		Uint64("registration_id", reg.ID).
		Str("from", reg.RegistrationStatus).
		Str("to", req.Status).
		Uint64("admin_id", adminID).
		Msg("registration status updated")
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"registration_id": reg.ID, "status": req.Status},
	})
}

// afterApproval runs the non-transactional side effects of an
// approval: the confirmation email when the customer has an address,
// and the broker event for downstream consumers.  Failures are logged;
// the approval itself has already committed.
func (h *AdminHandler) afterApproval(reg model.ProductRegistration, warranty model.Warranty, activatedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owner, err := h.Users.GetByID(ctx, reg.UserID)
	if err != nil {
		h.Log.Error().Err(err).Msg("approval side effects: owner lookup failed")
		return
	}
	mm, err := h.Catalog.GetModel(ctx, reg.MattressModelID)
	if err != nil {
		h.Log.Error().Err(err).Msg("approval side effects: model lookup failed")
		return
	}

	if owner.Email != nil && !warranty.StartDate.IsZero() && !warranty.EndDate.IsZero() {
		subject, html := notification.WarrantyConfirmationEmail(notification.WarrantyDetails{
			ModelName: mm.Name,
			StartDate: warranty.StartDate.Format("2006-01-02"),
			EndDate:   warranty.EndDate.Format("2006-01-02"),
		}, h.Dashboard)
		if err := h.Mailer.SendEmail(*owner.Email, subject, html); err != nil {
			h.Log.Error().Err(err).Msg("warranty confirmation email failed")
		}
	}

	event := queue.WarrantyActivatedEvent{
		RegistrationID: reg.ID,
		WarrantyID:     warranty.ID,
		UserID:         reg.UserID,
		ModelName:      mm.Name,
		StartDate:      warranty.StartDate.Format("2006-01-02"),
		EndDate:        warranty.EndDate.Format("2006-01-02"),
		ActivatedAt:    activatedAt.Format(time.RFC3339),
	}
	if err := queue_publisher.PublishWarrantyActivated(ctx, event); err != nil {
		h.Log.Error().Err(err).Msg("warranty activated event publish failed")
	}
}

type addNoteReq struct {
	Content string `json:"content"`
}

// AddNote appends an audit note to a registration.
func (h *AdminHandler) AddNote(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid registration id"})
	}
	var req addNoteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "content is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Regs.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	note := model.AdminNote{AdminID: adminID, ProductRegistrationID: id, Content: strings.TrimSpace(req.Content)}
	if err := h.Notes.Create(ctx, &note); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create note failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    echo.Map{"id": note.ID, "content": note.Content},
	})
}

// GetDuplicates returns the fraud-signal report: every photo hash
// shared by more than one registration, busiest hashes first.
func (h *AdminHandler) GetDuplicates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	groups, err := h.Photos.DuplicateReport(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": groups})
}

// ----- tickets -----

// ListTickets returns a filtered page of tickets across all users.
func (h *AdminHandler) ListTickets(c echo.Context) error {
	page, limit := pageParams(c)
	f := repository.AdminTicketFilter{
		Status:   strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		Priority: strings.ToUpper(strings.TrimSpace(c.QueryParam("priority"))),
		Page:     page,
		Limit:    limit,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tickets, total, err := h.Tickets.ListAdmin(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": tickets, "meta": listMeta(page, limit, total)})
}

// GetTicket returns any ticket with its thread and owner.
func (h *AdminHandler) GetTicket(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	owner, err := h.Users.GetByID(ctx, ticket.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	messages, err := h.Tickets.ListMessages(ctx, ticket.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"ticket": toTicketPart(ticket), "user": toUserPart(owner), "messages": messages},
	})
}

type replyTicketReq struct {
	Message string `json:"message"`
}

// ReplyTicket appends an admin message.  The first reply to an OPEN
// ticket moves it to IN_PROGRESS.
func (h *AdminHandler) ReplyTicket(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid ticket id"})
	}
	var req replyTicketReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "message is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
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
		SenderType: model.SenderAdmin,
		SenderID:   adminID,
		Body:       strings.TrimSpace(req.Message),
	}
	if err := h.Tickets.CreateMessageTx(ctx, tx, &msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create message failed"})
	}

	status := ticket.Status
	if status == model.TicketOpen {
		status = model.TicketInProgress
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

type ticketStatusReq struct {
	Status string `json:"status"`
}

// UpdateTicketStatus sets a ticket's status.  RESOLVED and CLOSED
// stamp the closed timestamp; any other status clears it.
func (h *AdminHandler) UpdateTicketStatus(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid ticket id"})
	}
	var req ticketStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidTicketStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tickets.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if err := h.Tickets.SetStatus(ctx, id, req.Status, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"ticket_id": id, "status": req.Status}})
}

type ticketTagsReq struct {
	Tags []string `json:"tags"`
}

// UpdateTicketTags replaces a ticket's tag list.
func (h *AdminHandler) UpdateTicketTags(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid ticket id"})
	}
	var req ticketTagsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		v := strings.TrimSpace(t)
		if v == "" {
			continue
		}
		if len(v) > 50 {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "tags must be 50 characters or fewer"})
		}
		tags = append(tags, v)
	}
	if len(tags) > 10 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "a ticket can carry at most 10 tags"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tickets.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if err := h.Tickets.SetTags(ctx, id, tags); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"ticket_id": id, "tags": tags}})
}

// ----- stats and users -----

// GetStats returns the dashboard counters and the 12-month
// registration histogram.
func (h *AdminHandler) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	dash, err := h.Stats.Collect(ctx, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": dash})
}

// ListUsers returns a page of customer accounts with activity counts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	users, total, err := h.Users.ListCustomers(ctx, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": users, "meta": listMeta(page, limit, total)})
}

// GetUser returns one account with its registrations.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	regs, err := h.Regs.ListByUser(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	overrideExpired(regs, time.Now().UTC())
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"user":          toUserPart(u),
			"is_verified":   u.IsVerified,
			"deleted_at":    u.DeletedAt,
			"created_at":    u.CreatedAt,
			"registrations": regs,
		},
	})
}
