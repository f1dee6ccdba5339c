package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // errors.Is comparisons against repository sentinels
	"net/http" // HTTP status codes and primitives
	"regexp"   // phone number format check
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls and cookie expiry

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing
	"github.com/rs/zerolog"       // structured application logging

	"github.com/FaridHajiyevAZ/KomfyAz/internal/config"       // app configuration
	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"        // domain models
	"github.com/FaridHajiyevAZ/KomfyAz/internal/notification" // email/sms transports
	"github.com/FaridHajiyevAZ/KomfyAz/internal/otp"          // OTP and reset-token stores
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"   // DB repositories
	"github.com/FaridHajiyevAZ/KomfyAz/internal/utils"        // hashing and token issuing
)

// refreshCookieName is the HTTP-only cookie carrying the opaque refresh
// token.  The token never appears in a response body.
const refreshCookieName = "refreshToken"

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	OTP    *otp.Store
	Resets *otp.ResetStore
	Mailer notification.EmailSender
	Sms    notification.SmsSender
	Log    zerolog.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, o *otp.Store, rs *otp.ResetStore, mail notification.EmailSender, sms notification.SmsSender, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, OTP: o, Resets: rs, Mailer: mail, Sms: sms, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Consent   bool   `json:"consent"`
}
type verifyOtpReq struct {
	Identifier string `json:"identifier"`
	Otp        string `json:"otp"`
}
type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
type identifierReq struct {
	Identifier string `json:"identifier"`
}
type resetPasswordReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// userPart is the profile slice returned alongside tokens.
type userPart struct {
	ID        uint64  `json:"id"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      string  `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Phone: u.Phone, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}

// setRefreshCookie writes the rotated refresh token.  HttpOnly keeps it
// away from scripts, SameSite=Strict away from cross-site requests, and
// Secure is on outside dev so the token only moves over TLS.
func (h *AuthHandler) setRefreshCookie(c echo.Context, raw string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    raw,
		Expires:  exp,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteStrictMode,
	})
}

// issuePair creates an access token and stores a fresh refresh token
// for the user, writing the cookie on the way out.
func (h *AuthHandler) issuePair(ctx context.Context, c echo.Context, userID uint64, role string) (utils.AccessToken, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, err
	}
	refresh := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return utils.AccessToken{}, err
	}
	h.setRefreshCookie(c, refresh.Raw, refresh.Exp)
	return access, nil
}

// sendOtp issues a fresh code for the identifier and dispatches it over
// email or SMS.  Delivery failures are logged, never surfaced: the
// workflow treats notification as fire-and-forget.
func (h *AuthHandler) sendOtp(ctx context.Context, identifier string, email, phone *string) {
	code, err := otp.Generate()
	if err != nil {
		h.Log.Error().Err(err).Msg("otp generation failed")
		return
	}
	if err := h.OTP.Put(ctx, identifier, code); err != nil {
		h.Log.Error().Err(err).Msg("otp store failed")
		return
	}
	if email != nil {
		subject, html := notification.OtpEmail(code)
		if err := h.Mailer.SendEmail(*email, subject, html); err != nil {
			h.Log.Error().Err(err).Msg("otp email dispatch failed")
		}
		return
	}
	if phone != nil {
		if err := h.Sms.SendSms(*phone, notification.OtpSms(code)); err != nil {
			h.Log.Error().Err(err).Msg("otp sms dispatch failed")
		}
	}
}

// Register creates an unverified account and sends an OTP to the
// contact identifier.  Tokens are only issued after OTP verification.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Email == "" && req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "either email or phone number is required"})
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid phone number format"})
	}
	if !req.Consent {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "you must consent to data processing"})
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var email, phone *string
	if req.Email != "" {
		email = &req.Email
	}
	if req.Phone != "" {
		phone = &req.Phone
	}
	exists, err := h.Users.ExistsByIdentifier(ctx, email, phone)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "an account with this email or phone already exists"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create user failed"})
	}
	var firstName, lastName *string
	if v := strings.TrimSpace(req.FirstName); v != "" {
		firstName = &v
	}
	if v := strings.TrimSpace(req.LastName); v != "" {
		lastName = &v
	}
	uid, err := h.Users.Create(ctx, email, phone, hash, firstName, lastName, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "an account with this email or phone already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create user failed"})
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Phone
	}
	h.sendOtp(ctx, identifier, email, phone)

	h.Log.Info().Uint64("user_id", uid).Msg("user registered")
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Registration successful. Please verify your account with the OTP sent.",
		"data":    echo.Map{"user_id": uid},
	})
}

// VerifyOtp confirms the contact identifier.  Exactly the configured
// number of attempts is allowed within a code's lifetime; success marks
// the user verified and issues the first token pair.
func (h *AuthHandler) VerifyOtp(c echo.Context) error {
	var req verifyOtpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || len(req.Otp) != 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "identifier and 6-digit otp required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	valid, err := h.OTP.Verify(ctx, req.Identifier, req.Otp)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "verification failed"})
	}
	if !valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid or expired OTP"})
	}

	u, err := h.Users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if err := h.Users.MarkVerified(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "verification failed"})
	}

	access, err := h.issuePair(ctx, c, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"access_token": access.Token,
			"user":         toUserPart(u),
		},
	})
}

// Login verifies credentials.  Unverified accounts get a fresh OTP and
// a 403 instead of tokens.  The error message never says which part of
// the credentials was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "identifier and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid credentials"})
	}

	if !u.IsVerified {
		h.sendOtp(ctx, req.Identifier, u.Email, u.Phone)
		return c.JSON(http.StatusForbidden, echo.Map{
			"success": false,
			"error":   "account not verified. A new OTP has been sent.",
			"data":    echo.Map{"requires_verification": true},
		})
	}

	access, err := h.issuePair(ctx, c, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"access_token": access.Token,
			"user":         toUserPart(u),
		},
	})
}

// ForgotPassword always answers with the same generic message so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req identifierReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Identifier) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "identifier required"})
	}
	generic := echo.Map{"success": true, "message": "If an account exists, a reset link has been sent."}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByIdentifier(ctx, strings.TrimSpace(req.Identifier))
	if err != nil || u.Email == nil {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.Log.Error().Err(err).Msg("forgot-password lookup failed")
		}
		return c.JSON(http.StatusOK, generic)
	}

	token, err := h.Resets.Issue(ctx, u.ID)
	if err != nil {
		h.Log.Error().Err(err).Msg("reset token issue failed")
		return c.JSON(http.StatusOK, generic)
	}
	subject, html := notification.PasswordResetEmail(token, h.Cfg.FrontendURL)
	if err := h.Mailer.SendEmail(*u.Email, subject, html); err != nil {
		h.Log.Error().Err(err).Msg("reset email dispatch failed")
	}
	return c.JSON(http.StatusOK, generic)
}

// ResetPassword consumes a reset token, replaces the password and
// revokes every refresh token the user holds, forcing a fresh login on
// all devices.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "token and password required"})
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, ok, err := h.Resets.Consume(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "reset failed"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid or expired reset token"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "reset failed"})
	}
	if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "reset failed"})
	}
	if err := h.Tokens.DeleteAllForUser(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password reset successful. Please log in."})
}

// Refresh rotates the refresh token presented in the cookie.  The old
// token is consumed with a single conditional delete: only the caller
// whose delete removed the row gets a new pair, so a replayed token
// that lost the race fails instead of producing a second session.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "no refresh token provided"})
	}
	hash := utils.HashRefreshRaw(cookie.Value)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, expiresAt, err := h.Tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "refresh failed"})
	}
	if time.Now().UTC().After(expiresAt) {
		// Expired tokens are removed on sight.
		_, _ = h.Tokens.ConsumeByHash(ctx, hash)
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired refresh token"})
	}

	consumed, err := h.Tokens.ConsumeByHash(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "refresh failed"})
	}
	if !consumed {
		// Someone else rotated this token first; treat as replay.
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired refresh token"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || u.DeletedAt != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired refresh token"})
	}

	access, err := h.issuePair(ctx, c, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"access_token": access.Token},
	})
}

// Logout revokes the refresh token in the cookie, if any, and clears
// the cookie either way.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if _, err := h.Tokens.ConsumeByHash(ctx, utils.HashRefreshRaw(cookie.Value)); err != nil {
			h.Log.Error().Err(err).Msg("logout token delete failed")
		}
	}
	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out"})
}
