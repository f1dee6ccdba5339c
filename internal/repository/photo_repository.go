package repository

import (
	"context"
	"database/sql"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// PhotoRepo stores registration photo metadata. Rows are immutable
// once written; the sha256_hash column drives duplicate detection.
type PhotoRepo struct{ db *sql.DB }

func NewPhotoRepo(db *sql.DB) *PhotoRepo { return &PhotoRepo{db: db} }

// CreateTx inserts a photo row within an existing transaction.
func (r *PhotoRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.RegistrationPhoto) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO registration_photos
         (product_registration_id, type, original_filename, storage_path, mime_type, file_size, sha256_hash)
         VALUES (?,?,?,?,?,?,?)`,
		p.ProductRegistrationID, p.Type, p.OriginalFilename, p.StoragePath, p.MimeType, p.FileSize, p.SHA256Hash)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// FindOtherRegistrationByHash returns the id of some other registration
// already holding a photo with this content hash, if one exists. A hit
// is a fraud signal, not a blocker.
func (r *PhotoRepo) FindOtherRegistrationByHash(ctx context.Context, hash string, excludeRegistrationID uint64) (uint64, bool, error) {
	var regID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT product_registration_id FROM registration_photos WHERE sha256_hash=? AND product_registration_id<>? LIMIT 1",
		hash, excludeRegistrationID).Scan(&regID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return regID, true, nil
}

// ListByRegistration returns all photos of a registration in upload order.
func (r *PhotoRepo) ListByRegistration(ctx context.Context, registrationID uint64) ([]model.RegistrationPhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_registration_id, type, original_filename, storage_path, mime_type, file_size, sha256_hash, created_at
         FROM registration_photos WHERE product_registration_id=? ORDER BY id`, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RegistrationPhoto
	for rows.Next() {
		var p model.RegistrationPhoto
		if err := rows.Scan(&p.ID, &p.ProductRegistrationID, &p.Type, &p.OriginalFilename,
			&p.StoragePath, &p.MimeType, &p.FileSize, &p.SHA256Hash, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DuplicateGroup is one row of the admin duplicates report: a content
// hash shared by photos across more than one registration.
type DuplicateGroup struct {
	Hash              string `json:"hash"`
	RegistrationCount int    `json:"registration_count"`
	RegistrationIDs   string `json:"registration_ids"` // comma separated
}

// DuplicateReport groups photo hashes referenced by more than one
// registration, most-shared first, capped at 50 groups.
func (r *PhotoRepo) DuplicateReport(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT sha256_hash,
               COUNT(DISTINCT product_registration_id) AS registration_count,
               GROUP_CONCAT(DISTINCT product_registration_id ORDER BY product_registration_id) AS registration_ids
        FROM registration_photos
        WHERE sha256_hash <> ''
        GROUP BY sha256_hash
        HAVING COUNT(DISTINCT product_registration_id) > 1
        ORDER BY registration_count DESC
        LIMIT 50`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DuplicateGroup
	for rows.Next() {
		var g DuplicateGroup
		if err := rows.Scan(&g.Hash, &g.RegistrationCount, &g.RegistrationIDs); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
