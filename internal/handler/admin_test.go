package handler

import (
	"database/sql"
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

func newAdminHandler(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return &AdminHandler{
		Regs:  repository.NewRegistrationRepo(db),
		Warrs: repository.NewWarrantyRepo(db),
		Notes: repository.NewNoteRepo(db),
		Log:   zerolog.Nop(),
	}, mock
}

func registrationRows(id, userID uint64, status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "mattress_model_id", "purchase_source_id", "purchase_date",
		"received_undamaged", "info_accurate", "registration_status", "rejection_reason",
		"created_at", "updated_at",
	}).AddRow(id, userID, 1, 1, now.AddDate(0, -1, 0), true, true, status, nil, now, now)
}

func callUpdateStatus(t *testing.T, h *AdminHandler, regID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/registrations/"+regID+"/status",
		strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues(regID)
	require.NoError(t, h.UpdateRegistrationStatus(c))
	return rec
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	h, mock := newAdminHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM product_registrations").
		WillReturnRows(registrationRows(4, 9, model.RegStatusApproved))

	rec := callUpdateStatus(t, h, "4", `{"status":"REJECTED","reason":"forged invoice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "cannot move")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusWithoutReasonLeavesNoNote(t *testing.T) {
	h, mock := newAdminHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM product_registrations").
		WillReturnRows(registrationRows(4, 9, model.RegStatusPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM warranties").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE product_registrations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// No admin_notes insert: the ordered expectations end at the commit.
	mock.ExpectCommit()

	rec := callUpdateStatus(t, h, "4", `{"status":"INFO_REQUESTED"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectionVoidsWarrantyAndNotes(t *testing.T) {
	h, mock := newAdminHandler(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM product_registrations").
		WillReturnRows(registrationRows(4, 9, model.RegStatusPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM warranties").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_registration_id", "status", "start_date", "end_date", "activated_at",
		}).AddRow(2, 4, model.WarrantyPending, now, now.AddDate(10, 0, 0), nil))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE product_registrations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE warranties").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO admin_notes").
		WithArgs(uint64(1), uint64(4), "Status changed to REJECTED. Reason: forged invoice").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := callUpdateStatus(t, h, "4", `{"status":"REJECTED","reason":"forged invoice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
