package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
)

// WarrantyHandler serves the customer warranty lookup.  Status and
// days remaining are computed at read time so an overdue warranty
// reads EXPIRED even before the sweep has caught up.
type WarrantyHandler struct {
	Regs  *repository.RegistrationRepo
	Warrs *repository.WarrantyRepo
}

func NewWarrantyHandler(regs *repository.RegistrationRepo, warrs *repository.WarrantyRepo) *WarrantyHandler {
	return &WarrantyHandler{Regs: regs, Warrs: warrs}
}

// GetWarranty returns the warranty attached to one of the caller's
// registrations.
func (h *WarrantyHandler) GetWarranty(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	regID := pathID(c, "registrationId")
	if regID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid registration id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Regs.GetByIDForUser(ctx, regID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	w, err := h.Warrs.GetByRegistration(ctx, regID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "warranty not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": toWarrantyPart(w, time.Now().UTC())})
}
