package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
)

func newSupportHandler(t *testing.T) (*SupportHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return &SupportHandler{
		Tickets: repository.NewTicketRepo(db),
		Regs:    repository.NewRegistrationRepo(db),
		Log:     zerolog.Nop(),
	}, mock
}

func ticketRows(id, userID uint64, status string, closedAt *time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "subject", "status", "priority", "tags", "closed_at", "created_at", "updated_at",
	}).AddRow(id, userID, "Mattress sagging", status, model.PriorityMedium, "[]", closedAt, now, now)
}

func TestCreateTicketRequiresRegistration(t *testing.T) {
	h, mock := newSupportHandler(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/support/tickets",
		strings.NewReader(`{"subject":"Mattress sagging","message":"It sags after a month"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(9))

	require.NoError(t, h.CreateTicket(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "register a product")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSendMessageClosedTicketRejected(t *testing.T) {
	h, mock := newSupportHandler(t)
	closedAt := time.Now().UTC().Add(-time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM support_tickets").
		WillReturnRows(ticketRows(3, 9, model.TicketClosed, &closedAt))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("message", "any update on this?"))
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/support/tickets/3/messages", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(9))
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.SendMessage(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "closed")
	require.NoError(t, mock.ExpectationsWereMet())
}
