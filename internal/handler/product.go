package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/storage"
)

// ProductHandler serves the customer registration workflow: submitting
// a product with evidence photos, listing owned products and topping up
// photos when the reviewer asks for more.
type ProductHandler struct {
	Regs    *repository.RegistrationRepo
	Photos  *repository.PhotoRepo
	Warrs   *repository.WarrantyRepo
	Catalog *repository.CatalogRepo
	Files   storage.Store
	Log     zerolog.Logger
}

func NewProductHandler(regs *repository.RegistrationRepo, photos *repository.PhotoRepo, warrs *repository.WarrantyRepo, cat *repository.CatalogRepo, files storage.Store, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{Regs: regs, Photos: photos, Warrs: warrs, Catalog: cat, Files: files, Log: log}
}

// photoPart is the photo metadata included in detail responses.  The
// storage path stays server side.
type photoPart struct {
	ID               uint64    `json:"id"`
	Type             string    `json:"type"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	FileSize         int64     `json:"file_size"`
	CreatedAt        time.Time `json:"created_at"`
}

type warrantyPart struct {
	ID            uint64     `json:"id"`
	Status        string     `json:"status"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	ActivatedAt   *time.Time `json:"activated_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
}

func toWarrantyPart(w model.Warranty, now time.Time) warrantyPart {
	return warrantyPart{
		ID:            w.ID,
		Status:        model.EffectiveWarrantyStatus(w, now),
		StartDate:     w.StartDate,
		EndDate:       w.EndDate,
		ActivatedAt:   w.ActivatedAt,
		DaysRemaining: model.WarrantyDaysRemaining(w, now),
	}
}

// collectUploads validates the multipart file set against the count,
// size and content-type limits.
func collectUploads(form *multipart.Form, field string, min int) ([]*multipart.FileHeader, string) {
	files := form.File[field]
	if len(files) < min {
		if min >= 2 {
			return nil, "at least 2 photos are required (label and invoice)"
		}
		return nil, "at least one file is required"
	}
	if len(files) > storage.MaxFilesPerUpload {
		return nil, "at most 5 files per upload"
	}
	for _, f := range files {
		if f.Size > storage.MaxFileSize {
			return nil, "each file must be 10MB or smaller"
		}
		if !storage.AllowedMimeType(f.Header.Get("Content-Type")) {
			return nil, "only image files are accepted (jpeg, png, webp, heic, heif)"
		}
	}
	return files, ""
}

// saveUploads streams each file to storage before the DB transaction
// opens.  An abort later leaves orphaned files on disk; they reference
// nothing and are harmless.
func (h *ProductHandler) saveUploads(files []*multipart.FileHeader) ([]storage.SavedFile, error) {
	out := make([]storage.SavedFile, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		saved, err := h.Files.Save(fh.Filename, src)
		src.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

// flagDuplicates compares each stored hash against photos of other
// registrations.  A collision is a fraud signal for the review queue,
// never a block: reused invoice templates hit this path legitimately.
func (h *ProductHandler) flagDuplicates(ctx context.Context, registrationID uint64, saved []storage.SavedFile) {
	for _, sf := range saved {
		otherID, found, err := h.Photos.FindOtherRegistrationByHash(ctx, sf.SHA256, registrationID)
		if err != nil {
			h.Log.Error().Err(err).Msg("duplicate hash lookup failed")
			continue
		}
		if found {
			h.Log.Warn().
				Uint64("registration_id", registrationID).
				Uint64("matches_registration_id", otherID).
				Str("sha256", sf.SHA256).
				Msg("duplicate evidence photo detected")
		}
	}
}

// photoType maps an upload position to its evidence role: the first
// file is the product label, the second the invoice.
func photoType(index int) string {
	switch index {
	case 0:
		return model.PhotoTypeLabel
	case 1:
		return model.PhotoTypeInvoice
	default:
		return model.PhotoTypeAdditional
	}
}

// Register accepts a multipart product submission.  Files are stored
// and hashed first; the registration row, its pending warranty and the
// photo rows then commit as one transaction.
func (h *ProductHandler) Register(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "multipart form required"})
	}
	field := func(name string) string {
		if v := form.Value[name]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	modelID, _ := strconv.ParseUint(field("mattress_model_id"), 10, 64)
	sourceID, _ := strconv.ParseUint(field("purchase_source_id"), 10, 64)
	if modelID == 0 || sourceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "mattress_model_id and purchase_source_id are required"})
	}
	purchaseDate, err := time.Parse("2006-01-02", field("purchase_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "purchase_date must be YYYY-MM-DD"})
	}
	undamaged := field("received_undamaged") == "true"
	accurate := field("info_accurate") == "true"
	if !undamaged || !accurate {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "both condition confirmations are required"})
	}

	files, msg := collectUploads(form, "photos", 2)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	mm, err := h.Catalog.GetModel(ctx, modelID)
	if err != nil || !mm.IsActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "unknown or inactive mattress model"})
	}
	src, err := h.Catalog.GetSource(ctx, sourceID)
	if err != nil || !src.IsActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "unknown or inactive purchase source"})
	}
	if err := model.ValidatePurchaseDate(purchaseDate, mm.ReleasedAt, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	saved, err := h.saveUploads(files)
	if err != nil {
		h.Log.Error().Err(err).Msg("photo upload store failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "file upload failed"})
	}

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

	reg := model.ProductRegistration{
		UserID:             userID,
		MattressModelID:    modelID,
		PurchaseSourceID:   sourceID,
		PurchaseDate:       purchaseDate,
		ReceivedUndamaged:  undamaged,
		InfoAccurate:       accurate,
		RegistrationStatus: model.RegStatusPendingReview,
	}
	if err := h.Regs.CreateTx(ctx, tx, &reg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create registration failed"})
	}

	warranty := model.Warranty{
		ProductRegistrationID: reg.ID,
		Status:                model.WarrantyPending,
		StartDate:             purchaseDate,
		EndDate:               model.WarrantyEndDate(purchaseDate, mm.WarrantyMonths),
	}
	if err := h.Warrs.CreateTx(ctx, tx, &warranty); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "create warranty failed"})
	}

	for i, fh := range files {
		photo := model.RegistrationPhoto{
			ProductRegistrationID: reg.ID,
			Type:                  photoType(i),
			OriginalFilename:      fh.Filename,
			StoragePath:           saved[i].Path,
			MimeType:              fh.Header.Get("Content-Type"),
			FileSize:              saved[i].Size,
			SHA256Hash:            saved[i].SHA256,
		}
		if err := h.Photos.CreateTx(ctx, tx, &photo); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "store photo failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "commit failed"})
	}
	committed = true

	h.flagDuplicates(ctx, reg.ID, saved)

	h.Log.Info().Uint64("registration_id", reg.ID).Uint64("user_id", userID).Msg("product registered")
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Registration submitted and pending review.",
		"data": echo.Map{
			"registration_id": reg.ID,
			"status":          reg.RegistrationStatus,
			"warranty":        toWarrantyPart(warranty, time.Now().UTC()),
		},
	})
}

// MyProducts lists the caller's registrations with warranty snapshots.
func (h *ProductHandler) MyProducts(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	regs, err := h.Regs.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	overrideExpired(regs, time.Now().UTC())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": regs})
}

// overrideExpired applies the read-time expiry rule to listing rows: a
// stored ACTIVE warranty past its end date reports EXPIRED.
func overrideExpired(regs []repository.RegistrationSummary, now time.Time) {
	expired := model.WarrantyExpired
	for i := range regs {
		s := regs[i]
		if s.WarrantyStatus != nil && *s.WarrantyStatus == model.WarrantyActive &&
			s.WarrantyEnd != nil && s.WarrantyEnd.Before(now) {
			regs[i].WarrantyStatus = &expired
		}
	}
}

// GetProduct returns one owned registration with photos and warranty.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid registration id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reg, err := h.Regs.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}

	photos, err := h.Photos.ListByRegistration(ctx, reg.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	photoParts := make([]photoPart, 0, len(photos))
	for _, p := range photos {
		photoParts = append(photoParts, photoPart{ID: p.ID, Type: p.Type, OriginalFilename: p.OriginalFilename, MimeType: p.MimeType, FileSize: p.FileSize, CreatedAt: p.CreatedAt})
	}

	data := echo.Map{
		"id":                 reg.ID,
		"mattress_model_id":  reg.MattressModelID,
		"purchase_source_id": reg.PurchaseSourceID,
		"purchase_date":      reg.PurchaseDate,
		"status":             reg.RegistrationStatus,
		"rejection_reason":   reg.RejectionReason,
		"created_at":         reg.CreatedAt,
		"photos":             photoParts,
	}
	if w, err := h.Warrs.GetByRegistration(ctx, reg.ID); err == nil {
		data["warranty"] = toWarrantyPart(w, time.Now().UTC())
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data})
}

// AddPhotos appends evidence to a registration awaiting review.  If
// the reviewer had asked for more information the status returns to
// PENDING_REVIEW, putting the registration back in the queue.
func (h *ProductHandler) AddPhotos(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid registration id"})
	}
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "multipart form required"})
	}
	files, msg := collectUploads(form, "photos", 1)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	reg, err := h.Regs.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "query failed"})
	}
	if reg.RegistrationStatus != model.RegStatusInfoRequested && reg.RegistrationStatus != model.RegStatusPendingReview {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "photos can only be added while the registration is under review"})
	}

	saved, err := h.saveUploads(files)
	if err != nil {
		h.Log.Error().Err(err).Msg("photo upload store failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "file upload failed"})
	}

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

	for i, fh := range files {
		photo := model.RegistrationPhoto{
			ProductRegistrationID: reg.ID,
			Type:                  model.PhotoTypeAdditional,
			OriginalFilename:      fh.Filename,
			StoragePath:           saved[i].Path,
			MimeType:              fh.Header.Get("Content-Type"),
			FileSize:              saved[i].Size,
			SHA256Hash:            saved[i].SHA256,
		}
		if err := h.Photos.CreateTx(ctx, tx, &photo); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "store photo failed"})
		}
	}

	status := reg.RegistrationStatus
	if status == model.RegStatusInfoRequested {
		status = model.RegStatusPendingReview
		if err := h.Regs.UpdateStatusTx(ctx, tx, reg.ID, status, nil); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "update status failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "commit failed"})
	}
	committed = true

	h.flagDuplicates(ctx, reg.ID, saved)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Photos added.",
		"data":    echo.Map{"registration_id": reg.ID, "status": status, "photos_added": len(files)},
	})
}
