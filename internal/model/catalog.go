package model

import "time"

// MattressModel is a catalog entry describing a sellable mattress and
// the warranty duration it carries.  Rows are immutable after creation
// except for the is_active toggle.
type MattressModel struct {
	ID             uint64     // mattress_models.id
	Name           string     // mattress_models.name
	Slug           string     // mattress_models.slug
	Description    *string    // mattress_models.description (nullable)
	WarrantyMonths int        // mattress_models.warranty_months
	ReleasedAt     *time.Time // mattress_models.released_at (nullable)
	IsActive       bool       // mattress_models.is_active
	CreatedAt      time.Time  // mattress_models.created_at
}

// Purchase source types.
const (
	SourceOnline = "online"
	SourceStore  = "store"
	SourceDealer = "dealer"
)

// PurchaseSource is a catalog entry describing where a mattress was
// bought (web shop, physical store or dealer).
type PurchaseSource struct {
	ID        uint64    // purchase_sources.id
	Name      string    // purchase_sources.name
	Type      string    // purchase_sources.type
	IsActive  bool      // purchase_sources.is_active
	CreatedAt time.Time // purchase_sources.created_at
}
