// internal/data/reviews.go
package data

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// Review represents a single user's review of a book.
// It maps to a row in the "reviews" table. UserID and Username are copied from
// the authenticated identity at creation time; mutation is gated on UserID.
// The (BookID, UserID) pair is unique: a user reviews a given book at most once.
type Review struct {
	ID        string    `json:"id"`         // UUID assigned by the data layer
	BookID    string    `json:"book_id"`    // Book this review belongs to
	UserID    string    `json:"user_id"`    // Identity that wrote the review; immutable
	Username  string    `json:"username"`   // Display name of the reviewer at creation time
	Rating    int       `json:"rating"`     // Star rating, integer 1 to 5
	Comment   string    `json:"comment"`    // Free-form review text
	CreatedAt time.Time `json:"created_at"` // Timestamp when the record was created

	// BookTitle and BookAuthor are not stored on the reviews table. They are
	// populated by the joined profile queries so a profile entry can name the
	// book without a second fetch, and omitted from JSON everywhere else.
	BookTitle  string `json:"book_title,omitempty"`
	BookAuthor string `json:"book_author,omitempty"`
}

// CreateReviewInput holds the fields a client must supply when creating a review.
type CreateReviewInput struct {
	BookID  string `json:"book_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateReviewInput holds the fields a client may supply when partially
// updating a review. Pointer fields distinguish "not provided" from a value.
type UpdateReviewInput struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// ValidateReview checks the invariants every review record must satisfy:
// a target book, a rating between 1 and 5, and a non-empty comment.
func ValidateReview(v *validator.Validator, review *Review) {
	v.Check(review.BookID != "", "book_id", "must be provided")
	v.Check(review.Rating >= 1 && review.Rating <= 5, "rating", "must be between 1 and 5")
	v.Check(strings.TrimSpace(review.Comment) != "", "comment", "must be provided")
}

// ReviewModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting review records.
type ReviewModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new review record to the database. The record's ID is a UUID
// generated here, and the database-assigned created_at value is written back
// into the review struct.
//
// The reviews table carries a unique constraint on (book_id, user_id), so a
// concurrent second submission by the same user loses the race inside the
// database rather than slipping past an application-level existence check.
// That violation is surfaced as ErrDuplicateReview.
func (m ReviewModel) Insert(review *Review) error {
	review.ID = uuid.New().String()

	query := `
        INSERT INTO reviews (id, book_id, user_id, username, rating, comment)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	err := m.DB.QueryRow(
		query,
		review.ID,
		review.BookID,
		review.UserID,
		review.Username,
		review.Rating,
		review.Comment,
	).Scan(&review.CreatedAt)

	if err != nil {
		// 23505 is the PostgreSQL unique_violation error code.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "reviews_book_user_key" {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

// Get retrieves a single review by its primary key.
// Returns ErrRecordNotFound if no review with the given id exists.
func (m ReviewModel) Get(id string) (*Review, error) {
	query := `
		SELECT id, book_id, user_id, username, rating, comment, created_at
		FROM reviews
		WHERE id = $1`

	var review Review
	err := m.DB.QueryRow(query, id).Scan(
		&review.ID,
		&review.BookID,
		&review.UserID,
		&review.Username,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &review, nil
}

// GetAllForBook retrieves every review of the given book, newest-first.
func (m ReviewModel) GetAllForBook(bookID string) ([]*Review, error) {
	query := `
		SELECT id, book_id, user_id, username, rating, comment, created_at
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC, id ASC`

	return m.queryReviews(query, bookID)
}

// GetAllByUser retrieves every review written by the given identity,
// newest-first. Each row is joined against the books table so the result
// carries the reviewed book's title and author. The join is an inner join:
// a review whose book has gone missing is simply omitted.
func (m ReviewModel) GetAllByUser(userID string) ([]*Review, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.username, r.rating, r.comment, r.created_at, b.title, b.author
		FROM reviews r
		INNER JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id ASC`

	rows, err := m.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.BookID,
			&review.UserID,
			&review.Username,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.BookTitle,
			&review.BookAuthor,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetAllForBooks retrieves every review whose book_id is in bookIDs, joined
// with the book's title. Used by the profile aggregation to collect all the
// reviews received across one owner's books in a single round-trip.
// An empty id slice short-circuits to an empty result.
func (m ReviewModel) GetAllForBooks(bookIDs []string) ([]*Review, error) {
	if len(bookIDs) == 0 {
		return []*Review{}, nil
	}

	query := `
		SELECT r.id, r.book_id, r.user_id, r.username, r.rating, r.comment, r.created_at, b.title
		FROM reviews r
		INNER JOIN books b ON b.id = r.book_id
		WHERE r.book_id = ANY($1)
		ORDER BY r.created_at DESC, r.id ASC`

	rows, err := m.DB.Query(query, pq.Array(bookIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.BookID,
			&review.UserID,
			&review.Username,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.BookTitle,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Update saves the modified rating and comment of review back to the database.
// All other columns are immutable once written.
func (m ReviewModel) Update(review *Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2
		WHERE id = $3`

	result, err := m.DB.Exec(query, review.Rating, review.Comment, review.ID)
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

// Delete removes the review with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists.
func (m ReviewModel) Delete(id string) error {
	result, err := m.DB.Exec(`DELETE FROM reviews WHERE id = $1`, id)
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

// queryReviews runs a SELECT over the plain (unjoined) review columns and
// scans the result set into a slice.
func (m ReviewModel) queryReviews(query string, args ...any) ([]*Review, error) {
	rows, err := m.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.BookID,
			&review.UserID,
			&review.Username,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
