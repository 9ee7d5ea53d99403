// internal/data/aggregates.go
// Pure rating-aggregation functions. Aggregates are always recomputed from the
// review rows on the read path and never persisted, so they can't drift out of
// sync with the underlying data.
package data

import "math"

// AverageRating returns the arithmetic mean of the review ratings, rounded to
// one decimal place. An empty review set yields 0.
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

// RatingDistribution returns a five-bucket histogram of the review ratings.
// All five buckets are always present, zero-filled, so callers and clients
// never have to special-case a missing key. Ratings are validated to the 1–5
// range before they reach the database, so no out-of-range bucket can appear.
func RatingDistribution(reviews []*Review) map[int]int {
	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, review := range reviews {
		distribution[review.Rating]++
	}
	return distribution
}

// RatedBook is a Book augmented with its recomputed aggregates. The embedded
// Book flattens into the JSON object, so the wire shape is the book's fields
// plus average_rating and review_count.
type RatedBook struct {
	*Book
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// EnrichBook non-destructively augments a book with the aggregates derived
// from its reviews.
func EnrichBook(book *Book, reviews []*Review) RatedBook {
	return RatedBook{
		Book:          book,
		AverageRating: AverageRating(reviews),
		ReviewCount:   len(reviews),
	}
}
