// cmd/api/books.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger, the token manager, and the database models.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/validator"
)

// listBooksHandler handles GET /v1/books.
// It returns a page of books ordered newest-first, each enriched with its
// recomputed average rating and review count. The page and limit query
// parameters default to 1 and 12 and are clamped to positive integers;
// non-numeric input falls back to the defaults rather than failing.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filters := data.Filters{
		Page:     app.readInt(qs, "page", 1),
		PageSize: app.readInt(qs, "limit", 12),
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 12
	}

	books, metadata, err := app.models.Books.GetAll(filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Enrich each book on the page with aggregates derived from its reviews.
	ratedBooks := make([]data.RatedBook, 0, len(books))
	for _, book := range books {
		reviews, err := app.models.Reviews.GetAllForBook(book.ID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		ratedBooks = append(ratedBooks, data.EnrichBook(book, reviews))
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": ratedBooks, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /v1/books/:id.
// It returns the book enriched with its average rating and review count,
// plus the full review list ordered newest-first.
// Responds 404 if no book with that ID exists.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	// readIDParam extracts and validates the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	reviews, err := app.models.Reviews.GetAllForBook(book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"book":    data.EnrichBook(book, reviews),
		"reviews": reviews,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /v1/books.
// It reads a JSON body containing the new book's details, stamps the record
// with the authenticated identity as its immutable owner, inserts it, and
// responds with the created book and a 201 Created status.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.mustGetIdentity(r)

	var input data.CreateBookInput

	// Decode the incoming JSON body into our input struct using the safe readJSON helper.
	// readJSON enforces a 1MB limit, rejects unknown fields, and ensures a single value.
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Map the input fields onto a new Book struct. The owner columns come
	// from the verified identity, never from the request body.
	book := &data.Book{
		Title:       input.Title,
		Author:      input.Author,
		Genre:       input.Genre,
		Year:        input.Year,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		OwnerID:     identity.UserID,
		OwnerName:   identity.Username,
	}

	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// Persist the book to the database.
	// Insert() also writes the generated ID and timestamp back into book.
	err = app.models.Books.Insert(book)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Respond with the fully-populated book and a 201 Created status.
	err = app.writeJSON(w, http.StatusCreated, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PATCH /v1/books/:id.
// It reads a partial JSON body (UpdateBookInput), finds the existing book,
// verifies the caller owns it, applies only the non-nil fields from the
// input, revalidates the result, and saves the changes.
// Responds 404 if the book does not exist and 403 if the caller is not its owner.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.mustGetIdentity(r)

	// Parse and validate the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Only the owner may change the record.
	if book.OwnerID != identity.UserID {
		app.notPermittedResponse(w, r)
		return
	}

	// Decode the partial update fields from the request body.
	var input data.UpdateBookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Apply only the fields that were actually provided in the request body.
	// Each field is a pointer; nil means "not provided, leave as-is".
	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}
	if input.Year != nil {
		book.Year = *input.Year
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.ImageURL != nil {
		book.ImageURL = *input.ImageURL
	}

	// Revalidate the merged record so a patch can't blank out a required field.
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// Persist the updated book back to the database.
	err = app.models.Books.Update(book)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Respond with the updated book.
	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:id.
// It verifies the caller owns the book, then removes the book together with
// every review referencing it in a single transaction, and responds with a
// confirmation message.
// Responds 404 if the book does not exist and 403 if the caller is not its owner.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.mustGetIdentity(r)

	// Parse and validate the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Only the owner may delete the record.
	if book.OwnerID != identity.UserID {
		app.notPermittedResponse(w, r)
		return
	}

	// Delete the book and its reviews as one unit.
	err = app.models.Books.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Respond with a success message.
	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book and associated reviews successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
