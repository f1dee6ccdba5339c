package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// WarrantyRepo persists the one-to-one warranty attached to each
// product registration.
type WarrantyRepo struct{ db *sql.DB }

func NewWarrantyRepo(db *sql.DB) *WarrantyRepo { return &WarrantyRepo{db: db} }

// CreateTx inserts a PENDING warranty within an existing transaction.
func (r *WarrantyRepo) CreateTx(ctx context.Context, tx *sql.Tx, w *model.Warranty) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO warranties (product_registration_id, status, start_date, end_date) VALUES (?,?,?,?)",
		w.ProductRegistrationID, w.Status, w.StartDate, w.EndDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

// GetByRegistration fetches the warranty for a registration.
func (r *WarrantyRepo) GetByRegistration(ctx context.Context, registrationID uint64) (model.Warranty, error) {
	var w model.Warranty
	err := r.db.QueryRowContext(ctx,
		"SELECT id, product_registration_id, status, start_date, end_date, activated_at FROM warranties WHERE product_registration_id=? LIMIT 1",
		registrationID).Scan(&w.ID, &w.ProductRegistrationID, &w.Status, &w.StartDate, &w.EndDate, &w.ActivatedAt)
	if err == sql.ErrNoRows {
		return w, ErrNotFound
	}
	return w, err
}

// ActivateTx marks a warranty ACTIVE and stamps the activation time,
// inside the review transaction.
func (r *WarrantyRepo) ActivateTx(ctx context.Context, tx *sql.Tx, id uint64, activatedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE warranties SET status=?, activated_at=? WHERE id=?",
		model.WarrantyActive, activatedAt, id)
	return err
}

// VoidTx marks a warranty VOIDED inside the review transaction.
func (r *WarrantyRepo) VoidTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE warranties SET status=? WHERE id=?", model.WarrantyVoided, id)
	return err
}

// ExpireOverdue flips every ACTIVE warranty whose end date has passed
// to EXPIRED and returns how many rows changed. Running it with
// nothing to expire is a no-op.
func (r *WarrantyRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE warranties SET status=? WHERE status=? AND end_date<?",
		model.WarrantyExpired, model.WarrantyActive, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
