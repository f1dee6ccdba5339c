package handler

import (
	"context"  // context carries deadlines for DB calls
	"net/http" // http status codes
	"time"     // timeouts

	"github.com/labstack/echo/v4" // echo request context

	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository" // catalog repository
)

// CatalogHandler serves the public catalog endpoints.  Both listings
// sit behind the response cache middleware; the data changes rarely.
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
}

func NewCatalogHandler(cat *repository.CatalogRepo) *CatalogHandler {
	return &CatalogHandler{Catalog: cat}
}

type modelPart struct {
	ID             uint64     `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    *string    `json:"description,omitempty"`
	WarrantyMonths int        `json:"warranty_months"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
}

type sourcePart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ListModels returns every active mattress model.
func (h *CatalogHandler) ListModels(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	models, err := h.Catalog.ListActiveModels(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	out := make([]modelPart, 0, len(models))
	for _, m := range models {
		out = append(out, modelPart{ID: m.ID, Name: m.Name, Slug: m.Slug, Description: m.Description, WarrantyMonths: m.WarrantyMonths, ReleasedAt: m.ReleasedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": out})
}

// ListSources returns every active purchase source.
func (h *CatalogHandler) ListSources(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sources, err := h.Catalog.ListActiveSources(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	out := make([]sourcePart, 0, len(sources))
	for _, s := range sources {
		out = append(out, sourcePart{ID: s.ID, Name: s.Name, Type: s.Type})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": out})
}
