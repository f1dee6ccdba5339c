package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/config"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/utils"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return &AuthHandler{
		Cfg:    config.Config{Env: "test", JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7},
		Users:  repository.NewUserRepo(db),
		Tokens: repository.NewTokenRepo(db),
		Log:    zerolog.Nop(),
	}, mock
}

func callRefresh(t *testing.T, h *AuthHandler, raw string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	if raw != "" {
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: raw})
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.Refresh(e.NewContext(req, rec)))
	return rec
}

func customerRows(id uint64) *sqlmock.Rows {
	now := time.Now().UTC()
	email := "user@example.com"
	return sqlmock.NewRows([]string{
		"id", "email", "phone", "password_hash", "first_name", "last_name",
		"role", "is_verified", "consent_at", "deleted_at", "created_at", "updated_at",
	}).AddRow(id, email, nil, "$2a$04$hash", nil, nil, model.RoleCustomer, true, now, nil, now, now)
}

func TestRefreshRotatesThenRejectsReplay(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "11111111-2222-3333-4444-555555555555"
	hash := utils.HashRefreshRaw(raw)
	future := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(7, future))
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(customerRows(7))
	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	rec := callRefresh(t, h, raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Data.AccessToken)

	var rotated string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == refreshCookieName {
			rotated = ck.Value
		}
	}
	require.NotEmpty(t, rotated)
	require.NotEqual(t, raw, rotated, "rotation must issue a different token")

	// The old token was rotated away; presenting it again fails.
	mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs(hash).
		WillReturnError(sql.ErrNoRows)

	rec = callRefresh(t, h, raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshLosingRotationRaceFails(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	hash := utils.HashRefreshRaw(raw)
	future := time.Now().UTC().Add(24 * time.Hour)

	// The row is visible but a concurrent caller deletes it first:
	// the conditional delete removes nothing and no pair is issued.
	mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(7, future))
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := callRefresh(t, h, raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshExpiredTokenRemovedOnSight(t *testing.T) {
	h, mock := newAuthHandler(t)
	raw := "99999999-8888-7777-6666-555555555555"
	hash := utils.HashRefreshRaw(raw)
	past := time.Now().UTC().Add(-time.Hour)

	mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(7, past))
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := callRefresh(t, h, raw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshWithoutCookie(t *testing.T) {
	h, _ := newAuthHandler(t)
	rec := callRefresh(t, h, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
