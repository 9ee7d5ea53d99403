// Package data provides the record types, validation functions, and database
// interaction logic for the book review service.
package data

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// DefaultCoverURL is the placeholder image assigned to books created without
// an explicit image URL.
const DefaultCoverURL = "https://via.placeholder.com/300x400?text=Book+Cover"

// Book represents a single book record stored in the database.
// It maps directly to a row in the "books" table. OwnerID and OwnerName are
// copied from the authenticated identity at creation time and never change
// afterwards; every mutation of the record is gated on OwnerID.
type Book struct {
	ID          string    `json:"id"`          // UUID assigned by the data layer
	Title       string    `json:"title"`       // Title of the book
	Author      string    `json:"author"`      // Name of the book's author
	Genre       string    `json:"genre"`       // Genre label, free-form text
	Year        int       `json:"year"`        // Year the book was published
	Description string    `json:"description"` // Short description of the book
	ImageURL    string    `json:"image_url"`   // Cover image URL (placeholder if none given)
	OwnerID     string    `json:"owner_id"`    // Identity that created the record; immutable
	OwnerName   string    `json:"owner_name"`  // Display name of the owner at creation time
	CreatedAt   time.Time `json:"created_at"`  // Timestamp when the record was created
}

// CreateBookInput holds the fields a client must supply when creating a new book.
// All fields except ImageURL are required.
type CreateBookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// UpdateBookInput holds the fields a client may supply when partially updating a book.
// Every field is a pointer so we can distinguish between "not provided" (nil)
// and "intentionally set". Only non-nil fields are applied, which means a
// legitimately empty-looking value is never silently dropped the way a
// truthiness check would drop it.
type UpdateBookInput struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Genre       *string `json:"genre"`
	Year        *int    `json:"year"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// ValidateBook checks the invariants every book record must satisfy: the four
// text fields must be non-empty after trimming, and the year must be set.
// Run this against the fully-assembled record on create and after applying a
// partial update, so updates cannot sneak an invalid value in.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(strings.TrimSpace(book.Title) != "", "title", "must be provided")
	v.Check(strings.TrimSpace(book.Author) != "", "author", "must be provided")
	v.Check(strings.TrimSpace(book.Genre) != "", "genre", "must be provided")
	v.Check(strings.TrimSpace(book.Description) != "", "description", "must be provided")
	v.Check(book.Year != 0, "year", "must be provided")
}

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book records.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new book record to the database. The record's ID is a UUID
// generated here, and the database-assigned created_at value is written back
// into the book struct. An empty ImageURL is replaced with the placeholder.
func (m BookModel) Insert(book *Book) error {
	book.ID = uuid.New().String()
	if book.ImageURL == "" {
		book.ImageURL = DefaultCoverURL
	}

	query := `
        INSERT INTO books (id, title, author, genre, year, description, image_url, owner_id, owner_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at`

	// Run the INSERT and scan the auto-generated timestamp back into the struct.
	return m.DB.QueryRow(
		query,
		book.ID,
		book.Title,
		book.Author,
		book.Genre,
		book.Year,
		book.Description,
		book.ImageURL,
		book.OwnerID,
		book.OwnerName,
	).Scan(&book.CreatedAt)
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(id string) (*Book, error) {
	query := `
		SELECT id, title, author, genre, year, description, image_url, owner_id, owner_name, created_at
		FROM books
		WHERE id = $1`

	var book Book
	err := m.DB.QueryRow(query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Year,
		&book.Description,
		&book.ImageURL,
		&book.OwnerID,
		&book.OwnerName,
		&book.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAll retrieves a paginated list of books ordered newest-first.
// It uses a COUNT(*) OVER() window function so only one round-trip is needed.
// Returns the book slice and pagination Metadata.
func (m BookModel) GetAll(filters Filters) ([]*Book, Metadata, error) {
	query := `
		SELECT count(*) OVER(), id, title, author, genre, year, description, image_url, owner_id, owner_name, created_at
		FROM books
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2`

	// Execute the SELECT and get a result set (rows).
	rows, err := m.DB.Query(query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	// Always close the result set when we are done to free the database connection.
	defer rows.Close()

	totalRecords := 0
	books := []*Book{}

	// Iterate over each row and scan the columns into a Book struct.
	for rows.Next() {
		var book Book
		err := rows.Scan(
			&totalRecords, // COUNT(*) OVER() – same value on every row
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Genre,
			&book.Year,
			&book.Description,
			&book.ImageURL,
			&book.OwnerID,
			&book.OwnerName,
			&book.CreatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		books = append(books, &book)
	}

	// Check for any error that occurred while iterating the rows.
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// GetAllByOwner retrieves every book created by the given identity,
// ordered newest-first. Used by the profile aggregation.
func (m BookModel) GetAllByOwner(ownerID string) ([]*Book, error) {
	query := `
		SELECT id, title, author, genre, year, description, image_url, owner_id, owner_name, created_at
		FROM books
		WHERE owner_id = $1
		ORDER BY created_at DESC, id ASC`

	rows, err := m.DB.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Genre,
			&book.Year,
			&book.Description,
			&book.ImageURL,
			&book.OwnerID,
			&book.OwnerName,
			&book.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// Update saves the modified fields of book back to the database.
// The owner_id and owner_name columns are deliberately absent from the SET
// clause: ownership is immutable after creation.
func (m BookModel) Update(book *Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, genre = $3, year = $4, description = $5, image_url = $6
		WHERE id = $7`

	result, err := m.DB.Exec(
		query,
		book.Title,
		book.Author,
		book.Genre,
		book.Year,
		book.Description,
		book.ImageURL,
		book.ID,
	)
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

// Delete removes the book with the given id together with every review that
// references it. Both deletes run inside a single transaction so readers never
// observe a window where reviews point at a missing book.
// Returns ErrRecordNotFound if no matching book exists.
func (m BookModel) Delete(id string) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	// Remove dependent reviews first so the book row is the last thing to go.
	_, err = tx.Exec(`DELETE FROM reviews WHERE book_id = $1`, id)
	if err != nil {
		return err
	}

	result, err := tx.Exec(`DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	// If no rows were deleted, the book didn't exist.
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return tx.Commit()
}
