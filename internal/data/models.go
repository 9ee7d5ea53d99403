// internal/data/models.go
package data

import (
	"database/sql"
	"errors"
	"math"
)

// Models is a top-level container that groups all database model types together.
// Each field is an interface so handler tests can substitute in-memory fakes
// without a running database. It is passed around the application via
// applicationDependencies so every handler has access to the database without
// importing sql directly.
type Models struct {
	Books   Books   // Operations on the books table
	Reviews Reviews // Operations on the reviews table
	Users   Users   // Operations on the users table
}

// Books describes every operation the application performs on book records.
// BookModel is the production implementation backed by PostgreSQL.
type Books interface {
	Insert(book *Book) error
	Get(id string) (*Book, error)
	GetAll(filters Filters) ([]*Book, Metadata, error)
	GetAllByOwner(ownerID string) ([]*Book, error)
	Update(book *Book) error
	Delete(id string) error
}

// Reviews describes every operation the application performs on review records.
type Reviews interface {
	Insert(review *Review) error
	Get(id string) (*Review, error)
	GetAllForBook(bookID string) ([]*Review, error)
	GetAllByUser(userID string) ([]*Review, error)
	GetAllForBooks(bookIDs []string) ([]*Review, error)
	Update(review *Review) error
	Delete(id string) error
}

// Users describes the operations needed for registration and login.
type Users interface {
	Insert(user *User) error
	GetByEmail(email string) (*User, error)
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB) Models {
	return Models{
		Books:   BookModel{DB: db},
		Reviews: ReviewModel{DB: db},
		Users:   UserModel{DB: db},
	}
}

// Sentinel errors returned by the model layer. Handlers match on these with
// errors.Is to choose the right HTTP response; anything else is treated as an
// unclassified storage failure and reported as a generic 500.
var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateReview is returned when a user tries to review the same
	// book twice. Backed by the (book_id, user_id) unique constraint.
	ErrDuplicateReview = errors.New("duplicate review")

	// ErrDuplicateEmail is returned when registering with an email address
	// that is already taken.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// Filters holds pagination parameters extracted from URL query strings.
// Book listings are always ordered newest-first, so no sort column is carried.
type Filters struct {
	Page     int // Current page number (1-indexed)
	PageSize int // Number of records per page
}

// limit returns the SQL LIMIT value derived from PageSize.
func (f Filters) limit() int { return f.PageSize }

// offset returns the SQL OFFSET value derived from Page and PageSize.
func (f Filters) offset() int { return (f.Page - 1) * f.PageSize }

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and filter values.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
