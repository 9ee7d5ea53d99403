package data

import "testing"

// ratings builds a review slice with the given ratings; only the Rating field
// matters to the aggregation functions.
func ratings(values ...int) []*Review {
	reviews := make([]*Review, 0, len(values))
	for _, v := range values {
		reviews = append(reviews, &Review{Rating: v})
	}
	return reviews
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []int{3}, 3.0},
		{"rounds to one decimal", []int{5, 4, 4}, 4.3},
		{"exact mean", []int{5, 3}, 4.0},
		{"rounds up", []int{1, 2}, 1.5},
		{"all fives", []int{5, 5, 5, 5}, 5.0},
		{"repeating third", []int{1, 1, 2}, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AverageRating(ratings(tt.ratings...))
			if got != tt.want {
				t.Errorf("AverageRating(%v) = %v; want %v", tt.ratings, got, tt.want)
			}
		})
	}
}

func TestRatingDistribution(t *testing.T) {
	reviews := ratings(5, 3, 5, 1, 3, 3)

	dist := RatingDistribution(reviews)

	// All five buckets must be present even when empty.
	for bucket := 1; bucket <= 5; bucket++ {
		if _, ok := dist[bucket]; !ok {
			t.Errorf("bucket %d missing from distribution", bucket)
		}
	}
	if len(dist) != 5 {
		t.Errorf("distribution has %d buckets; want 5", len(dist))
	}

	want := map[int]int{1: 1, 2: 0, 3: 3, 4: 0, 5: 2}
	for bucket, count := range want {
		if dist[bucket] != count {
			t.Errorf("bucket %d = %d; want %d", bucket, dist[bucket], count)
		}
	}

	// The bucket counts always sum to the number of reviews.
	sum := 0
	for _, count := range dist {
		sum += count
	}
	if sum != len(reviews) {
		t.Errorf("distribution sums to %d; want %d", sum, len(reviews))
	}
}

func TestRatingDistributionEmpty(t *testing.T) {
	dist := RatingDistribution(nil)
	if len(dist) != 5 {
		t.Fatalf("distribution has %d buckets; want 5", len(dist))
	}
	for bucket, count := range dist {
		if count != 0 {
			t.Errorf("bucket %d = %d; want 0", bucket, count)
		}
	}
}

func TestEnrichBook(t *testing.T) {
	book := &Book{ID: "b1", Title: "Testing in Go"}
	reviews := ratings(5, 4, 4)

	rated := EnrichBook(book, reviews)

	if rated.Book != book {
		t.Error("enrichment should wrap the original book, not copy it")
	}
	if rated.AverageRating != 4.3 {
		t.Errorf("AverageRating = %v; want 4.3", rated.AverageRating)
	}
	if rated.ReviewCount != 3 {
		t.Errorf("ReviewCount = %d; want 3", rated.ReviewCount)
	}

	// The original book value must be untouched.
	if book.Title != "Testing in Go" {
		t.Error("enrichment mutated the original book")
	}
}
