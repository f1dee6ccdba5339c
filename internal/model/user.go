package model

import "time"

// Roles assigned to application users.  The role is embedded in the
// access token and checked by the RequireRole middleware.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  A user signs up with an email address or a phone
// number (at least one must be present) and is soft deleted by
// stamping DeletedAt; rows are never removed.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (nullable).
//  Phone        – unique phone number in E.164 form (nullable).
//  PasswordHash – bcrypt hashed password.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  Role         – CUSTOMER or ADMIN.
//  IsVerified   – whether the contact identifier was confirmed via OTP.
//  ConsentAt    – when the user consented to data processing.
//  DeletedAt    – soft delete marker (null while the account is live).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        *string    // users.email (nullable)
	Phone        *string    // users.phone (nullable)
	PasswordHash string     // users.password_hash
	FirstName    *string    // users.first_name (nullable)
	LastName     *string    // users.last_name (nullable)
	Role         string     // users.role
	IsVerified   bool       // users.is_verified
	ConsentAt    *time.Time // users.consent_at (nullable)
	DeletedAt    *time.Time // users.deleted_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and is single use: rotation and
// revocation delete the row.  The plain token is never stored; only
// its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
