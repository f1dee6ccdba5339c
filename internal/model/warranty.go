package model

import (
	"math"
	"time"
)

// Warranty states as held in storage.  A warranty is created PENDING
// alongside its registration, activated or voided by the admin review
// decision, and expired by the daily sweep once its end date passes.
const (
	WarrantyPending = "PENDING"
	WarrantyActive  = "ACTIVE"
	WarrantyExpired = "EXPIRED"
	WarrantyVoided  = "VOIDED"
)

// Warranty is the one-to-one warranty record for a product
// registration.  End date is derived from the purchase date and the
// model's warranty duration, never set directly.
type Warranty struct {
	ID                    uint64     // warranties.id
	ProductRegistrationID uint64     // warranties.product_registration_id
	Status                string     // warranties.status
	StartDate             time.Time  // warranties.start_date
	EndDate               time.Time  // warranties.end_date
	ActivatedAt           *time.Time // warranties.activated_at (nullable)
}

// WarrantyEndDate advances a purchase date by the model's warranty
// duration in months.  AddDate normalizes month overflow the same way
// the catalog defines durations (e.g. 2024-01-31 + 1 month rolls into
// March), so 120 months from 2024-01-01 lands on 2034-01-01.
func WarrantyEndDate(start time.Time, warrantyMonths int) time.Time {
	return start.AddDate(0, warrantyMonths, 0)
}

// EffectiveWarrantyStatus returns the status a read path must report:
// a stored ACTIVE warranty whose end date has passed is EXPIRED even
// before the sweep has run.
func EffectiveWarrantyStatus(w Warranty, now time.Time) string {
	if w.Status == WarrantyActive && w.EndDate.Before(now) {
		return WarrantyExpired
	}
	return w.Status
}

// WarrantyDaysRemaining is the ceiling of whole days left on an active
// warranty, floored at zero.  Non-active warranties report zero.
func WarrantyDaysRemaining(w Warranty, now time.Time) int {
	if w.Status != WarrantyActive {
		return 0
	}
	days := math.Ceil(w.EndDate.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}
