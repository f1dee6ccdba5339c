package repository

import (
	"context"
	"database/sql"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// NoteRepo stores the append-only admin audit trail on registrations.
type NoteRepo struct{ db *sql.DB }

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

// CreateTx appends a note within an existing transaction.
func (r *NoteRepo) CreateTx(ctx context.Context, tx *sql.Tx, n *model.AdminNote) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO admin_notes (admin_id, product_registration_id, content) VALUES (?,?,?)",
		n.AdminID, n.ProductRegistrationID, n.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// Create appends a note outside any transaction (standalone notes).
func (r *NoteRepo) Create(ctx context.Context, n *model.AdminNote) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO admin_notes (admin_id, product_registration_id, content) VALUES (?,?,?)",
		n.AdminID, n.ProductRegistrationID, n.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByRegistration returns a registration's notes, newest first.
func (r *NoteRepo) ListByRegistration(ctx context.Context, registrationID uint64) ([]model.AdminNote, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, admin_id, product_registration_id, content, created_at FROM admin_notes WHERE product_registration_id=? ORDER BY created_at DESC",
		registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AdminNote
	for rows.Next() {
		var n model.AdminNote
		if err := rows.Scan(&n.ID, &n.AdminID, &n.ProductRegistrationID, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
