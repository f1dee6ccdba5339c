package repository

import (
	"context"
	"database/sql"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// CatalogRepo reads the mattress model and purchase source catalogs.
// Catalog rows are created by seeding and only toggle their active
// flag, so this repo is read-only.
type CatalogRepo struct{ DB *sql.DB }

func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{DB: db} }

// ListActiveModels returns active mattress models ordered by name.
func (r *CatalogRepo) ListActiveModels(ctx context.Context) ([]model.MattressModel, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,slug,description,warranty_months,released_at,is_active,created_at FROM mattress_models WHERE is_active=1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MattressModel
	for rows.Next() {
		var m model.MattressModel
		if err := rows.Scan(&m.ID, &m.Name, &m.Slug, &m.Description, &m.WarrantyMonths, &m.ReleasedAt, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetModel fetches one mattress model by id.
func (r *CatalogRepo) GetModel(ctx context.Context, id uint64) (model.MattressModel, error) {
	var m model.MattressModel
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,slug,description,warranty_months,released_at,is_active,created_at FROM mattress_models WHERE id=? LIMIT 1",
		id).Scan(&m.ID, &m.Name, &m.Slug, &m.Description, &m.WarrantyMonths, &m.ReleasedAt, &m.IsActive, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	return m, err
}

// ListActiveSources returns active purchase sources ordered by name.
func (r *CatalogRepo) ListActiveSources(ctx context.Context) ([]model.PurchaseSource, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,type,is_active,created_at FROM purchase_sources WHERE is_active=1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PurchaseSource
	for rows.Next() {
		var s model.PurchaseSource
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSource fetches one purchase source by id.
func (r *CatalogRepo) GetSource(ctx context.Context, id uint64) (model.PurchaseSource, error) {
	var s model.PurchaseSource
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,type,is_active,created_at FROM purchase_sources WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.Type, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}
