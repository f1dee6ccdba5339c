package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// RegistrationRepo provides CRUD operations for product registrations.
// Multi-step workflow writes (submission, review transitions) run
// inside transactions owned by the handler; this repo exposes Tx
// variants for those steps. All timestamp fields are stored in UTC.
type RegistrationRepo struct{ db *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *RegistrationRepo) DB() *sql.DB { return r.db }

const regCols = "id,user_id,mattress_model_id,purchase_source_id,purchase_date,received_undamaged,info_accurate,registration_status,rejection_reason,created_at,updated_at"

func scanRegistration(scan func(dest ...interface{}) error) (model.ProductRegistration, error) {
	var reg model.ProductRegistration
	err := scan(&reg.ID, &reg.UserID, &reg.MattressModelID, &reg.PurchaseSourceID,
		&reg.PurchaseDate, &reg.ReceivedUndamaged, &reg.InfoAccurate,
		&reg.RegistrationStatus, &reg.RejectionReason, &reg.CreatedAt, &reg.UpdatedAt)
	if err == sql.ErrNoRows {
		return reg, ErrNotFound
	}
	return reg, err
}

// CreateTx inserts a new registration within an existing transaction
// and populates the generated ID on the record. Status must be
// PENDING_REVIEW for submissions.
func (r *RegistrationRepo) CreateTx(ctx context.Context, tx *sql.Tx, reg *model.ProductRegistration) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO product_registrations
         (user_id, mattress_model_id, purchase_source_id, purchase_date, received_undamaged, info_accurate, registration_status)
         VALUES (?,?,?,?,?,?,?)`,
		reg.UserID, reg.MattressModelID, reg.PurchaseSourceID, reg.PurchaseDate,
		reg.ReceivedUndamaged, reg.InfoAccurate, reg.RegistrationStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	return nil
}

// GetByID fetches a registration regardless of owner (admin paths).
func (r *RegistrationRepo) GetByID(ctx context.Context, id uint64) (model.ProductRegistration, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+regCols+" FROM product_registrations WHERE id=? LIMIT 1", id)
	return scanRegistration(row.Scan)
}

// GetByIDForUser fetches a registration only if the user owns it.
func (r *RegistrationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (model.ProductRegistration, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+regCols+" FROM product_registrations WHERE id=? AND user_id=? LIMIT 1", id, userID)
	return scanRegistration(row.Scan)
}

// CountByUser returns how many registrations the user owns. Support
// ticket creation requires at least one.
func (r *RegistrationRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM product_registrations WHERE user_id=?", userID).Scan(&n)
	return n, err
}

// UpdateStatusTx sets the review status inside a transaction. The
// rejection reason is persisted only for REJECTED and cleared on every
// other transition.
func (r *RegistrationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, rejectionReason *string) error {
	if status != model.RegStatusRejected {
		rejectionReason = nil
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE product_registrations SET registration_status=?, rejection_reason=? WHERE id=?",
		status, rejectionReason, id)
	return err
}

// RegistrationSummary is one row of a registration listing, joined with
// the catalog names and the warranty snapshot.
type RegistrationSummary struct {
	ID                 uint64     `json:"id"`
	UserID             uint64     `json:"user_id"`
	UserEmail          *string    `json:"user_email,omitempty"`
	UserPhone          *string    `json:"user_phone,omitempty"`
	UserFirstName      *string    `json:"user_first_name,omitempty"`
	UserLastName       *string    `json:"user_last_name,omitempty"`
	ModelName          string     `json:"model_name"`
	SourceName         string     `json:"source_name"`
	SourceType         string     `json:"source_type"`
	PurchaseDate       time.Time  `json:"purchase_date"`
	RegistrationStatus string     `json:"registration_status"`
	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	WarrantyStatus     *string    `json:"warranty_status,omitempty"`
	WarrantyStart      *time.Time `json:"warranty_start,omitempty"`
	WarrantyEnd        *time.Time `json:"warranty_end,omitempty"`
	PhotoCount         int        `json:"photo_count"`
	NoteCount          int        `json:"note_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

const regSummarySelect = `
    SELECT pr.id, pr.user_id, u.email, u.phone, u.first_name, u.last_name,
           mm.name, ps.name, ps.type,
           pr.purchase_date, pr.registration_status, pr.rejection_reason,
           w.status, w.start_date, w.end_date,
           (SELECT COUNT(*) FROM registration_photos rp WHERE rp.product_registration_id=pr.id),
           (SELECT COUNT(*) FROM admin_notes an WHERE an.product_registration_id=pr.id),
           pr.created_at
    FROM product_registrations pr
    JOIN users u            ON u.id = pr.user_id
    JOIN mattress_models mm ON mm.id = pr.mattress_model_id
    JOIN purchase_sources ps ON ps.id = pr.purchase_source_id
    LEFT JOIN warranties w  ON w.product_registration_id = pr.id`

func collectSummaries(rows *sql.Rows) ([]RegistrationSummary, error) {
	defer rows.Close()
	var out []RegistrationSummary
	for rows.Next() {
		var s RegistrationSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserEmail, &s.UserPhone, &s.UserFirstName, &s.UserLastName,
			&s.ModelName, &s.SourceName, &s.SourceType,
			&s.PurchaseDate, &s.RegistrationStatus, &s.RejectionReason,
			&s.WarrantyStatus, &s.WarrantyStart, &s.WarrantyEnd,
			&s.PhotoCount, &s.NoteCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByUser returns all of a customer's registrations, newest first.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID uint64) ([]RegistrationSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		regSummarySelect+" WHERE pr.user_id=? ORDER BY pr.created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

// AdminRegistrationFilter narrows the admin registration listing.
type AdminRegistrationFilter struct {
	Status   string
	ModelID  uint64
	SourceID uint64
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// ListAdmin returns a filtered page of registrations plus the total
// matching count.
func (r *RegistrationRepo) ListAdmin(ctx context.Context, f AdminRegistrationFilter) ([]RegistrationSummary, int, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)
	if f.Status != "" {
		where = append(where, "pr.registration_status=?")
		args = append(args, f.Status)
	}
	if f.ModelID != 0 {
		where = append(where, "pr.mattress_model_id=?")
		args = append(args, f.ModelID)
	}
	if f.SourceID != 0 {
		where = append(where, "pr.purchase_source_id=?")
		args = append(args, f.SourceID)
	}
	if f.DateFrom != nil {
		where = append(where, "pr.purchase_date>=?")
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		where = append(where, "pr.purchase_date<=?")
		args = append(args, *f.DateTo)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM product_registrations pr"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageArgs := append(append([]interface{}{}, args...), f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.db.QueryContext(ctx,
		regSummarySelect+cond+" ORDER BY pr.created_at DESC LIMIT ? OFFSET ?", pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectSummaries(rows)
	return out, total, err
}
