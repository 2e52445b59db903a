// internal/data/users.go
// This file contains the User model, the bcrypt-backed password type, and
// the Postgres-backed identity store.
package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sijanonly/school-library/internal/validator"
)

// AnonymousUser represents an unauthenticated request. Handlers compare
// against this sentinel instead of checking for nil so a missing credential
// and an absent context value behave identically.
var AnonymousUser = &User{}

// User represents a single account record stored in the database.
// The password is held only as a one-way hash and is never serialized.
type User struct {
	ID          uuid.UUID `json:"id"`           // Generated at registration, immutable afterwards
	CreatedAt   time.Time `json:"created_at"`   // Timestamp when the record was created
	Username    string    `json:"username"`     // Unique login name
	Email       string    `json:"email"`        // Unique, format-validated address
	FirstName   string    `json:"first_name"`   // Optional given name
	LastName    string    `json:"last_name"`    // Optional family name
	City        string    `json:"city"`         // Home city
	Password    password  `json:"-"`            // One-way hash, never exposed
	IsActive    bool      `json:"is_active"`    // Inactive accounts cannot log in
	IsStaff     bool      `json:"is_staff"`     // Staff may delete any account and manage the catalog
	IsSuperuser bool      `json:"is_superuser"` // Superusers hold every staff privilege plus cross-account edits
}

// IsAnonymous reports whether this User is the AnonymousUser sentinel.
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// FullName returns the user's first and last name joined by a space.
// Either part may be empty, in which case the result is just the other part.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// MarshalJSON adds the derived full_name field to the standard struct encoding.
func (u User) MarshalJSON() ([]byte, error) {
	// Alias strips the MarshalJSON method so encoding does not recurse.
	type alias User
	return json.Marshal(struct {
		alias
		FullName string `json:"full_name"`
	}{alias(u), u.FullName()})
}

// password wraps a bcrypt hash together with the plaintext it was derived
// from (when known). The plaintext pointer distinguishes "not set" from
// "set to the empty string" during validation.
type password struct {
	plaintext *string
	hash      []byte
}

// bcryptCost is the work factor used when hashing new passwords.
const bcryptCost = 12

// Set hashes the plaintext password with bcrypt and stores both values.
func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcryptCost)
	if err != nil {
		return err
	}

	p.plaintext = &plaintextPassword
	p.hash = hash
	return nil
}

// Matches reports whether the supplied plaintext matches the stored hash.
// A mismatch is not an error; any other bcrypt failure is.
func (p *password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// Hash exposes the stored hash so store implementations can persist it.
func (p *password) Hash() []byte { return p.hash }

// SetHash installs an already-hashed password, used when scanning rows.
func (p *password) SetHash(hash []byte) { p.hash = hash }

// ValidateEmail checks that email is present and matches the email grammar.
// The two failure messages are distinct from the uniqueness message returned
// on duplicates, so clients can tell a malformed address from a taken one.
func ValidateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "email", "This field is required.")
	v.Check(validator.Matches(email, validator.EmailRX), "email", "Enter a valid email address.")
}

// ValidatePasswordPlaintext checks a candidate plaintext password.
// The 72-byte cap is a bcrypt limitation.
func ValidatePasswordPlaintext(v *validator.Validator, plaintext string) {
	v.Check(plaintext != "", "password", "This field is required.")
	v.Check(len(plaintext) <= 72, "password", "must not be more than 72 bytes long")
}

// ValidateUser runs every field-level check for a User record.
// The password plaintext is only checked when it is present; updates that
// do not change the password leave the plaintext pointer nil.
func ValidateUser(v *validator.Validator, user *User) {
	v.Check(user.Username != "", "username", "This field is required.")
	v.Check(len(user.Username) <= 150, "username", "must not be more than 150 characters long")

	ValidateEmail(v, user.Email)

	v.Check(user.City != "", "city", "This field is required.")
	v.Check(len(user.FirstName) <= 150, "first_name", "must not be more than 150 characters long")
	v.Check(len(user.LastName) <= 150, "last_name", "must not be more than 150 characters long")

	if user.Password.plaintext != nil {
		ValidatePasswordPlaintext(v, *user.Password.plaintext)
	}

	// A missing hash at this point is a bug in the calling code, not a
	// client error, so panic rather than report it as validation failure.
	if user.Password.hash == nil {
		panic("missing password hash for user")
	}
}

// UserStore is the identity-store contract consumed by the HTTP layer.
type UserStore interface {
	Insert(user *User) error
	GetByID(id uuid.UUID) (*User, error)
	GetByUsername(username string) (*User, error)
	GetAll(filters Filters) ([]*User, Metadata, error)
	Update(user *User) error
	Delete(id uuid.UUID) error
}

// UserModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting account records.
type UserModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new user record to the database. The id is generated here,
// before the INSERT, so it is never reassigned afterwards. Uniqueness
// violations on username or email are returned as the matching sentinel.
func (m UserModel) Insert(user *User) error {
	user.ID = uuid.New()

	query := `
        INSERT INTO users (id, username, email, password_hash, first_name, last_name, city, is_active, is_staff, is_superuser)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at`

	args := []any{
		user.ID,
		user.Username,
		user.Email,
		user.Password.hash,
		user.FirstName,
		user.LastName,
		user.City,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
	}

	err := m.DB.QueryRow(query, args...).Scan(&user.CreatedAt)
	if err != nil {
		return translateConstraint(err)
	}
	return nil
}

// GetByID retrieves a single user by primary key.
// Returns ErrRecordNotFound if no user with the given id exists.
func (m UserModel) GetByID(id uuid.UUID) (*User, error) {
	query := `
		SELECT id, created_at, username, email, password_hash, first_name, last_name, city, is_active, is_staff, is_superuser
		FROM users
		WHERE id = $1`

	return m.getOne(query, id)
}

// GetByUsername retrieves a single user by their unique username.
// Returns ErrRecordNotFound if no user with the given username exists.
func (m UserModel) GetByUsername(username string) (*User, error) {
	query := `
		SELECT id, created_at, username, email, password_hash, first_name, last_name, city, is_active, is_staff, is_superuser
		FROM users
		WHERE username = $1`

	return m.getOne(query, username)
}

// getOne runs a single-row user query and scans the result.
func (m UserModel) getOne(query string, arg any) (*User, error) {
	var user User
	var hash []byte

	err := m.DB.QueryRow(query, arg).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Username,
		&user.Email,
		&hash,
		&user.FirstName,
		&user.LastName,
		&user.City,
		&user.IsActive,
		&user.IsStaff,
		&user.IsSuperuser,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	user.Password.SetHash(hash)
	return &user, nil
}

// GetAll retrieves a paginated list of users, newest first.
// It uses a COUNT(*) OVER() window function so only one round-trip is needed.
func (m UserModel) GetAll(filters Filters) ([]*User, Metadata, error) {
	query := `
		SELECT count(*) OVER(), id, created_at, username, email, password_hash, first_name, last_name, city, is_active, is_staff, is_superuser
		FROM users
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2`

	rows, err := m.DB.Query(query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	users := []*User{}

	for rows.Next() {
		var user User
		var hash []byte
		err := rows.Scan(
			&totalRecords,
			&user.ID,
			&user.CreatedAt,
			&user.Username,
			&user.Email,
			&hash,
			&user.FirstName,
			&user.LastName,
			&user.City,
			&user.IsActive,
			&user.IsStaff,
			&user.IsSuperuser,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		user.Password.SetHash(hash)
		users = append(users, &user)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return users, metadata, nil
}

// Update saves the modified fields of user back to the database.
// The id and created_at columns are never rewritten.
func (m UserModel) Update(user *User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, first_name = $4,
		    last_name = $5, city = $6, is_active = $7, is_staff = $8, is_superuser = $9
		WHERE id = $10`

	args := []any{
		user.Username,
		user.Email,
		user.Password.hash,
		user.FirstName,
		user.LastName,
		user.City,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.ID,
	}

	result, err := m.DB.Exec(query, args...)
	if err != nil {
		return translateConstraint(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes the user with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists.
func (m UserModel) Delete(id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := m.DB.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
