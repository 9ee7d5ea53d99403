// internal/data/users.go
package data

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// User represents a registered account. The Password field never appears in
// JSON output; only its bcrypt hash is stored.
type User struct {
	ID        string    `json:"id"`         // UUID assigned by the data layer
	Username  string    `json:"username"`   // Public display name
	Email     string    `json:"email"`      // Login identifier, unique
	Password  password  `json:"-"`          // Plaintext (transient) and bcrypt hash
	CreatedAt time.Time `json:"created_at"` // Timestamp when the record was created
}

// password wraps a plaintext password and its bcrypt hash. The plaintext
// pointer is nil when the struct was loaded from the database.
type password struct {
	plaintext *string
	hash      []byte
}

// Set calculates the bcrypt hash of a plaintext password and stores both the
// hash and the plaintext in the struct.
func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.plaintext = &plaintextPassword
	p.hash = hash
	return nil
}

// Matches reports whether the provided plaintext password matches the stored
// bcrypt hash.
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

// ValidatePasswordPlaintext checks the plaintext password rules shared by
// registration and login. The 72-byte ceiling is bcrypt's input limit.
func ValidatePasswordPlaintext(v *validator.Validator, plaintext string) {
	v.Check(plaintext != "", "password", "must be provided")
	v.Check(len(plaintext) >= 8, "password", "must be at least 8 bytes long")
	v.Check(len(plaintext) <= 72, "password", "must not be more than 72 bytes long")
}

// ValidateUser checks the invariants for a user record being registered.
func ValidateUser(v *validator.Validator, user *User) {
	v.Check(strings.TrimSpace(user.Username) != "", "username", "must be provided")
	v.Check(len(user.Username) <= 100, "username", "must not be more than 100 characters long")

	v.Check(user.Email != "", "email", "must be provided")
	v.Check(validator.Matches(user.Email, validator.EmailRX), "email", "must be a valid email address")

	if user.Password.plaintext != nil {
		ValidatePasswordPlaintext(v, *user.Password.plaintext)
	}
}

// UserModel wraps a *sql.DB connection and provides methods for creating and
// fetching user records.
type UserModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new user record to the database. The record's ID is a UUID
// generated here. Registering an email address that already exists returns
// ErrDuplicateEmail, backed by the unique index on the email column.
func (m UserModel) Insert(user *User) error {
	user.ID = uuid.New().String()

	query := `
        INSERT INTO users (id, username, email, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	err := m.DB.QueryRow(query, user.ID, user.Username, user.Email, user.Password.hash).Scan(&user.CreatedAt)
	if err != nil {
		// 23505 is the PostgreSQL unique_violation error code.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_email_key" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail retrieves the user record with the given email address.
// Returns ErrRecordNotFound if no such user exists.
func (m UserModel) GetByEmail(email string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = $1`

	var user User
	err := m.DB.QueryRow(query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password.hash,
		&user.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}
