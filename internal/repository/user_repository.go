package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,email,phone,password_hash,first_name,last_name,role,is_verified,consent_at,deleted_at,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.IsVerified, &u.ConsentAt, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts a user and returns its ID. Email and phone are
// optional but at least one must be present; both carry unique
// constraints which surface as ErrConflict.
func (r *UserRepo) Create(ctx context.Context, email, phone *string, passwordHash string, firstName, lastName *string, consentAt time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, phone, password_hash, first_name, last_name, role, consent_at) VALUES (?,?,?,?,?,?,?)",
		email, phone, passwordHash, firstName, lastName, model.RoleCustomer, consentAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByIdentifier fetches a live (not soft-deleted) user whose email or
// phone matches the identifier.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE (email=? OR phone=?) AND deleted_at IS NULL LIMIT 1",
		identifier, identifier))
}

// ExistsByIdentifier reports whether any user (including soft-deleted
// ones) already holds the email or phone.
func (r *UserRepo) ExistsByIdentifier(ctx context.Context, email, phone *string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE (email IS NOT NULL AND email=?) OR (phone IS NOT NULL AND phone=?)",
		email, phone).Scan(&n)
	return n > 0, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// MarkVerified flips the is_verified flag after a successful OTP check.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET is_verified=1 WHERE id=?", id)
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	return err
}

// IdentifierTaken reports whether another user already holds the given
// email or phone value. Used by profile updates.
func (r *UserRepo) IdentifierTaken(ctx context.Context, column, value string, excludeID uint64) (bool, error) {
	if column != "email" && column != "phone" {
		return false, nil
	}
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+column+"=? AND id<>?", value, excludeID).Scan(&n)
	return n > 0, err
}

// UpdateProfile applies the non-nil fields to the user row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, email, phone *string) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if firstName != nil {
		sets = append(sets, "first_name=?")
		args = append(args, *firstName)
	}
	if lastName != nil {
		sets = append(sets, "last_name=?")
		args = append(args, *lastName)
	}
	if email != nil {
		sets = append(sets, "email=?")
		args = append(args, *email)
	}
	if phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *phone)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// CustomerSummary is one row of the admin customer listing.
type CustomerSummary struct {
	ID                uint64    `json:"id"`
	Email             *string   `json:"email"`
	Phone             *string   `json:"phone"`
	FirstName         *string   `json:"first_name"`
	LastName          *string   `json:"last_name"`
	IsVerified        bool      `json:"is_verified"`
	CreatedAt         time.Time `json:"created_at"`
	RegistrationCount int       `json:"registration_count"`
	TicketCount       int       `json:"ticket_count"`
}

// ListCustomers returns a page of live customer accounts with their
// registration and ticket counts, newest first.
func (r *UserRepo) ListCustomers(ctx context.Context, page, limit int) ([]CustomerSummary, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=? AND deleted_at IS NULL", model.RoleCustomer).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx, `
        SELECT u.id, u.email, u.phone, u.first_name, u.last_name, u.is_verified, u.created_at,
               (SELECT COUNT(*) FROM product_registrations pr WHERE pr.user_id=u.id),
               (SELECT COUNT(*) FROM support_tickets st WHERE st.user_id=u.id)
        FROM users u
        WHERE u.role=? AND u.deleted_at IS NULL
        ORDER BY u.created_at DESC
        LIMIT ? OFFSET ?`,
		model.RoleCustomer, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CustomerSummary, 0, limit)
	for rows.Next() {
		var c CustomerSummary
		if err := rows.Scan(&c.ID, &c.Email, &c.Phone, &c.FirstName, &c.LastName,
			&c.IsVerified, &c.CreatedAt, &c.RegistrationCount, &c.TicketCount); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
