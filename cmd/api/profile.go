// cmd/api/profile.go
// This file contains the handler for the caller's aggregated profile: a
// read-only fan-out over the books they own and the reviews they have given
// and received. Nothing here mutates state; every aggregate is recomputed
// from the underlying rows on each request.
package main

import (
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/data"
)

// ownedBook is a book from the caller's shelf, enriched with its aggregates
// and carrying the raw review list.
type ownedBook struct {
	data.RatedBook
	Reviews []*data.Review `json:"reviews"`
}

// profileStats holds the scalar counts and the two five-bucket histograms
// over the reviews the caller has received and given.
type profileStats struct {
	TotalBooks              int         `json:"total_books"`
	TotalReviewsGiven       int         `json:"total_reviews_given"`
	TotalReviewsReceived    int         `json:"total_reviews_received"`
	RatingDistribution      map[int]int `json:"rating_distribution"`
	GivenRatingDistribution map[int]int `json:"given_rating_distribution"`
}

// showProfileHandler handles GET /v1/profile.
// It assembles, for the authenticated caller:
//
//   - myBooks: every book they own, newest-first, each enriched with its
//     average rating and review count plus the raw review list;
//   - reviewsGiven: every review they authored, joined with the reviewed
//     book's title and author;
//   - reviewsReceived: every review on any of their books, joined with the
//     book's title;
//   - stats: scalar totals and the rating distributions over both sets.
func (app *applicationDependencies) showProfileHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.mustGetIdentity(r)

	// Step 1: the caller's books. Their IDs scope the reviews-received query.
	myBooks, err := app.models.Books.GetAllByOwner(identity.UserID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Step 2: enrich each owned book with its aggregates and raw reviews.
	bookIDs := make([]string, 0, len(myBooks))
	ownedBooks := make([]ownedBook, 0, len(myBooks))
	for _, book := range myBooks {
		reviews, err := app.models.Reviews.GetAllForBook(book.ID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		ownedBooks = append(ownedBooks, ownedBook{
			RatedBook: data.EnrichBook(book, reviews),
			Reviews:   reviews,
		})
		bookIDs = append(bookIDs, book.ID)
	}

	// Step 3: reviews the caller has written, with book title and author joined in.
	reviewsGiven, err := app.models.Reviews.GetAllByUser(identity.UserID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Step 4: reviews received across all owned books in one query.
	reviewsReceived, err := app.models.Reviews.GetAllForBooks(bookIDs)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Step 5: the scalar counts and both histograms.
	stats := profileStats{
		TotalBooks:              len(myBooks),
		TotalReviewsGiven:       len(reviewsGiven),
		TotalReviewsReceived:    len(reviewsReceived),
		RatingDistribution:      data.RatingDistribution(reviewsReceived),
		GivenRatingDistribution: data.RatingDistribution(reviewsGiven),
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"profile": envelope{
			"my_books":         ownedBooks,
			"reviews_given":    reviewsGiven,
			"reviews_received": reviewsReceived,
			"stats":            stats,
		},
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
