package model

import (
	"errors"
	"time"
)

// Registration review states.  A submission always starts in
// PENDING_REVIEW; an admin moves it forward from there.
const (
	RegStatusPendingReview = "PENDING_REVIEW"
	RegStatusApproved      = "APPROVED"
	RegStatusRejected      = "REJECTED"
	RegStatusInfoRequested = "INFO_REQUESTED"
)

// Photo type tags.  The first uploaded file is treated as the product
// label, the second as the purchase invoice, anything after that is
// supplementary evidence.
const (
	PhotoTypeLabel      = "LABEL"
	PhotoTypeInvoice    = "INVOICE"
	PhotoTypeAdditional = "ADDITIONAL"
)

// MaxPurchaseAge is how far in the past a purchase date may lie when a
// product is registered.
const MaxPurchaseAge = 365 * 24 * time.Hour

// regTransitions enumerates the reachable edges of the review state
// machine.  APPROVED and REJECTED are terminal; INFO_REQUESTED returns
// to PENDING_REVIEW when the customer supplies more photos.
var regTransitions = map[string][]string{
	RegStatusPendingReview: {RegStatusApproved, RegStatusRejected, RegStatusInfoRequested},
	RegStatusInfoRequested: {RegStatusApproved, RegStatusRejected, RegStatusPendingReview},
}

// CanTransitionRegistration reports whether a registration may move
// from one review status to another.
func CanTransitionRegistration(from, to string) bool {
	for _, next := range regTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Purchase date validation failures surfaced to the customer as
// business-rule errors.
var (
	ErrPurchaseBeforeRelease = errors.New("purchase date cannot be before the model release date")
	ErrPurchaseInFuture      = errors.New("purchase date cannot be in the future")
	ErrPurchaseTooOld        = errors.New("purchase date cannot be older than 1 year")
)

// ValidatePurchaseDate checks a claimed purchase date against the model
// release date and the allowed registration window.
func ValidatePurchaseDate(purchase time.Time, releasedAt *time.Time, now time.Time) error {
	if releasedAt != nil && purchase.Before(*releasedAt) {
		return ErrPurchaseBeforeRelease
	}
	if purchase.After(now) {
		return ErrPurchaseInFuture
	}
	if purchase.Before(now.Add(-MaxPurchaseAge)) {
		return ErrPurchaseTooOld
	}
	return nil
}

// ProductRegistration records a customer's claim on a purchased
// mattress.  It references the catalog entries and owns the uploaded
// evidence photos and the one-to-one warranty record.  Rows are never
// deleted; admin actions only move the status along the state machine.
type ProductRegistration struct {
	ID                 uint64    // product_registrations.id
	UserID             uint64    // product_registrations.user_id
	MattressModelID    uint64    // product_registrations.mattress_model_id
	PurchaseSourceID   uint64    // product_registrations.purchase_source_id
	PurchaseDate       time.Time // product_registrations.purchase_date
	ReceivedUndamaged  bool      // product_registrations.received_undamaged
	InfoAccurate       bool      // product_registrations.info_accurate
	RegistrationStatus string    // product_registrations.registration_status
	RejectionReason    *string   // product_registrations.rejection_reason (nullable)
	CreatedAt          time.Time // product_registrations.created_at
	UpdatedAt          time.Time // product_registrations.updated_at
}

// RegistrationPhoto stores metadata for one uploaded evidence file.
// The SHA-256 digest of the file bytes drives duplicate detection.
// Rows are immutable once created.
type RegistrationPhoto struct {
	ID                    uint64    // registration_photos.id
	ProductRegistrationID uint64    // registration_photos.product_registration_id
	Type                  string    // registration_photos.type
	OriginalFilename      string    // registration_photos.original_filename
	StoragePath           string    // registration_photos.storage_path
	MimeType              string    // registration_photos.mime_type
	FileSize              int64     // registration_photos.file_size
	SHA256Hash            string    // registration_photos.sha256_hash
	CreatedAt             time.Time // registration_photos.created_at
}

// AdminNote is an append-only audit entry attached to a registration.
type AdminNote struct {
	ID                    uint64    // admin_notes.id
	AdminID               uint64    // admin_notes.admin_id
	ProductRegistrationID uint64    // admin_notes.product_registration_id
	Content               string    // admin_notes.content
	CreatedAt             time.Time // admin_notes.created_at
}
