package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
)

// ProfileHandler serves the authenticated user's own account data.
type ProfileHandler struct {
	Users   *repository.UserRepo
	Regs    *repository.RegistrationRepo
	Tickets *repository.TicketRepo
}

func NewProfileHandler(users *repository.UserRepo, regs *repository.RegistrationRepo, tickets *repository.TicketRepo) *ProfileHandler {
	return &ProfileHandler{Users: users, Regs: regs, Tickets: tickets}
}

type updateProfileReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// GetProfile returns the caller's account plus activity counters.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	regCount, err := h.Regs.CountByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	ticketCount, err := h.Tickets.CountByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"user":               toUserPart(u),
			"is_verified":        u.IsVerified,
			"created_at":         u.CreatedAt,
			"registration_count": regCount,
			"ticket_count":       ticketCount,
		},
	})
}

// UpdateProfile patches name and contact fields.  Changing email or
// phone checks uniqueness against every other live account first.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	if req.FirstName == nil && req.LastName == nil && req.Email == nil && req.Phone == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "nothing to update"})
	}
	if req.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*req.Email))
		if v == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "email cannot be empty"})
		}
		req.Email = &v
	}
	if req.Phone != nil {
		v := strings.TrimSpace(*req.Phone)
		if !phonePattern.MatchString(v) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid phone number format"})
		}
		req.Phone = &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Email != nil {
		taken, err := h.Users.IdentifierTaken(ctx, "email", *req.Email, userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "email already in use"})
		}
	}
	if req.Phone != nil {
		taken, err := h.Users.IdentifierTaken(ctx, "phone", *req.Phone, userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "phone already in use"})
		}
	}

	if err := h.Users.UpdateProfile(ctx, userID, req.FirstName, req.LastName, req.Email, req.Phone); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "email or phone already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "update failed"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": toUserPart(u)})
}
