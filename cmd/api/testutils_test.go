// cmd/api/testutils_test.go
// Shared fixtures for the handler tests: in-memory implementations of the
// model interfaces, a preconfigured application, and a thin wrapper around
// httptest.Server for making authenticated JSON requests. The fakes mirror
// the semantics of the PostgreSQL models, including newest-first ordering,
// the duplicate-review rule, and the cascading book delete.
package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aoideee/bookshelf-api/internal/auth"
	"github.com/aoideee/bookshelf-api/internal/data"
)

// mockDB holds the in-memory record maps shared by the model fakes.
type mockDB struct {
	mu      sync.Mutex
	seq     int
	books   map[string]*data.Book
	reviews map[string]*data.Review
	users   map[string]*data.User // keyed by email
}

func newMockDB() *mockDB {
	return &mockDB{
		books:   make(map[string]*data.Book),
		reviews: make(map[string]*data.Review),
		users:   make(map[string]*data.User),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// deterministic regardless of how fast the test runs.
func (db *mockDB) tick() time.Time {
	db.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Second)
}

// newestFirst sorts reviews by descending creation time, matching the SQL
// ORDER BY used by the real models.
func newestFirst(reviews []*data.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

// mockBooks implements data.Books over the in-memory maps.
type mockBooks struct{ db *mockDB }

func (m mockBooks) Insert(book *data.Book) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	book.ID = uuid.New().String()
	if book.ImageURL == "" {
		book.ImageURL = data.DefaultCoverURL
	}
	book.CreatedAt = m.db.tick()

	stored := *book
	m.db.books[book.ID] = &stored
	return nil
}

func (m mockBooks) Get(id string) (*data.Book, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	book, ok := m.db.books[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	record := *book
	return &record, nil
}

func (m mockBooks) GetAll(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	all := make([]*data.Book, 0, len(m.db.books))
	for _, book := range m.db.books {
		record := *book
		all = append(all, &record)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := (filters.Page - 1) * filters.PageSize
	if start > total {
		start = total
	}
	end := start + filters.PageSize
	if end > total {
		end = total
	}

	metadata := data.Metadata{}
	if total > 0 {
		metadata = data.Metadata{
			CurrentPage:  filters.Page,
			PageSize:     filters.PageSize,
			FirstPage:    1,
			LastPage:     int(math.Ceil(float64(total) / float64(filters.PageSize))),
			TotalRecords: total,
		}
	}
	return all[start:end], metadata, nil
}

func (m mockBooks) GetAllByOwner(ownerID string) ([]*data.Book, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	owned := []*data.Book{}
	for _, book := range m.db.books {
		if book.OwnerID == ownerID {
			record := *book
			owned = append(owned, &record)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (m mockBooks) Update(book *data.Book) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.books[book.ID]; !ok {
		return data.ErrRecordNotFound
	}
	stored := *book
	m.db.books[book.ID] = &stored
	return nil
}

// Delete removes the book and every review referencing it, mirroring the
// transactional cascade in the PostgreSQL model.
func (m mockBooks) Delete(id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.books[id]; !ok {
		return data.ErrRecordNotFound
	}
	for reviewID, review := range m.db.reviews {
		if review.BookID == id {
			delete(m.db.reviews, reviewID)
		}
	}
	delete(m.db.books, id)
	return nil
}

// mockReviews implements data.Reviews over the in-memory maps.
type mockReviews struct{ db *mockDB }

func (m mockReviews) Insert(review *data.Review) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	// One review per (book, user), same rule as the unique constraint.
	for _, existing := range m.db.reviews {
		if existing.BookID == review.BookID && existing.UserID == review.UserID {
			return data.ErrDuplicateReview
		}
	}

	review.ID = uuid.New().String()
	review.CreatedAt = m.db.tick()

	stored := *review
	m.db.reviews[review.ID] = &stored
	return nil
}

func (m mockReviews) Get(id string) (*data.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	review, ok := m.db.reviews[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	record := *review
	return &record, nil
}

func (m mockReviews) GetAllForBook(bookID string) ([]*data.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	reviews := []*data.Review{}
	for _, review := range m.db.reviews {
		if review.BookID == bookID {
			record := *review
			reviews = append(reviews, &record)
		}
	}
	newestFirst(reviews)
	return reviews, nil
}

func (m mockReviews) GetAllByUser(userID string) ([]*data.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	reviews := []*data.Review{}
	for _, review := range m.db.reviews {
		if review.UserID != userID {
			continue
		}
		// Inner join against books: a review whose book is gone is omitted.
		book, ok := m.db.books[review.BookID]
		if !ok {
			continue
		}
		record := *review
		record.BookTitle = book.Title
		record.BookAuthor = book.Author
		reviews = append(reviews, &record)
	}
	newestFirst(reviews)
	return reviews, nil
}

func (m mockReviews) GetAllForBooks(bookIDs []string) ([]*data.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	wanted := make(map[string]bool, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = true
	}

	reviews := []*data.Review{}
	for _, review := range m.db.reviews {
		if !wanted[review.BookID] {
			continue
		}
		book, ok := m.db.books[review.BookID]
		if !ok {
			continue
		}
		record := *review
		record.BookTitle = book.Title
		reviews = append(reviews, &record)
	}
	newestFirst(reviews)
	return reviews, nil
}

func (m mockReviews) Update(review *data.Review) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.reviews[review.ID]; !ok {
		return data.ErrRecordNotFound
	}
	stored := *review
	m.db.reviews[review.ID] = &stored
	return nil
}

func (m mockReviews) Delete(id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.reviews[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(m.db.reviews, id)
	return nil
}

// mockUsers implements data.Users over the in-memory maps.
type mockUsers struct{ db *mockDB }

func (m mockUsers) Insert(user *data.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, exists := m.db.users[user.Email]; exists {
		return data.ErrDuplicateEmail
	}

	user.ID = uuid.New().String()
	user.CreatedAt = m.db.tick()

	stored := *user
	m.db.users[user.Email] = &stored
	return nil
}

func (m mockUsers) GetByEmail(email string) (*data.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	user, ok := m.db.users[email]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	record := *user
	return &record, nil
}

// newTestApplication returns an application wired to fresh in-memory models,
// with logging discarded and the rate limiter disabled.
func newTestApplication(t *testing.T) *applicationDependencies {
	t.Helper()

	db := newMockDB()

	var settings serverConfig
	settings.environment = "testing"
	settings.limiter.enabled = false

	return &applicationDependencies{
		config: settings,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.Models{
			Books:   mockBooks{db},
			Reviews: mockReviews{db},
			Users:   mockUsers{db},
		},
		tokens: auth.NewTokenManager("test-secret-at-least-32-bytes-long!!", time.Hour),
	}
}

// mintToken issues a real signed token for the given identity, so test
// requests travel through the same authenticate middleware as production ones.
func mintToken(t *testing.T, app *applicationDependencies, userID, username string) string {
	t.Helper()

	token, err := app.tokens.Generate(auth.Identity{UserID: userID, Username: username})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

// testServer wraps httptest.Server with a helper for JSON requests.
type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T, app *applicationDependencies) *testServer {
	t.Helper()

	ts := httptest.NewServer(app.routes())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, t: t}
}

// do sends a JSON request with an optional bearer token, returning the
// response status and body. A nil body sends no payload.
func (ts *testServer) do(method, urlPath, token string, body any) (int, []byte) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, ts.URL+urlPath, reader)
	if err != nil {
		ts.t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		ts.t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, respBody
}

// unmarshal decodes a JSON response body into dst, failing the test on error.
func (ts *testServer) unmarshal(body []byte, dst any) {
	ts.t.Helper()

	if err := json.Unmarshal(body, dst); err != nil {
		ts.t.Fatalf("unmarshal response %s: %v", body, err)
	}
}
