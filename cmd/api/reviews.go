// cmd/api/reviews.go
// This file contains all HTTP request handlers for the reviews resource.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/validator"
)

// createReviewHandler handles POST /v1/reviews.
// It validates the input, checks that the target book exists, and inserts the
// review stamped with the authenticated identity as its immutable author.
// A second review of the same book by the same user is answered with a 409;
// the (book_id, user_id) unique constraint backs that check, so two truly
// concurrent submissions cannot both slip through.
func (app *applicationDependencies) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.mustGetIdentity(r)

	var input data.CreateReviewInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// The author columns come from the verified identity, never the body.
	review := &data.Review{
		BookID:   input.BookID,
		UserID:   identity.UserID,
		Username: identity.Username,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}

	v := validator.New()
	if data.ValidateReview(v, review); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// A review must target an existing book.
	_, err = app.models.Books.Get(review.BookID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.models.Reviews.Insert(review)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateReview):
			app.conflictResponse(w, r, "you have already reviewed this book")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"review": review}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateReviewHandler handles PATCH /v1/reviews/:id.
// It reads a partial JSON body (UpdateReviewInput), finds the existing review,
// verifies the caller authored it, applies only the non-nil fields, revalidates
// the result, and saves the changes.
// Responds 404 if the review does not exist and 403 if the caller is not its author.
func (app *applicationDependencies) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.mustGetIdentity(r)

	// Parse and validate the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.models.Reviews.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Only the author may change the record.
	if review.UserID != identity.UserID {
		app.notPermittedResponse(w, r)
		return
	}

	// Decode the partial update fields from the request body.
	var input data.UpdateReviewInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Apply only the fields that were actually provided in the request body.
	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}

	// Revalidate the merged record so a patch can't push the rating out of
	// range or blank out the comment.
	v := validator.New()
	if data.ValidateReview(v, review); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Reviews.Update(review)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"review": review}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteReviewHandler handles DELETE /v1/reviews/:id.
// It verifies the caller authored the review, removes it, and responds with a
// confirmation message.
// Responds 404 if the review does not exist and 403 if the caller is not its author.
func (app *applicationDependencies) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.mustGetIdentity(r)

	// Parse and validate the :id URL parameter.
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.models.Reviews.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Only the author may delete the record.
	if review.UserID != identity.UserID {
		app.notPermittedResponse(w, r)
		return
	}

	err = app.models.Reviews.Delete(id)
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
	err = app.writeJSON(w, http.StatusOK, envelope{"message": "review successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
