// cmd/api/books.go
// This file contains all HTTP request handlers for the books resource.
// Reads are public; writes are gated behind requireCatalogWrite in routes.go.
package main

import (
	"errors"
	"net/http"

	"github.com/sijanonly/school-library/internal/data"
	"github.com/sijanonly/school-library/internal/validator"
)

// applyBookConstraintError maps a store sentinel onto a field-level 400.
// Returns false when the error was not a recognized constraint violation and
// still needs generic handling.
func (app *applicationDependencies) applyBookConstraintError(w http.ResponseWriter, r *http.Request, v *validator.Validator, err error) bool {
	switch {
	case errors.Is(err, data.ErrDuplicateBarcode):
		v.AddError("barcode", "a book with this barcode already exists")
	case errors.Is(err, data.ErrUnknownPublisher):
		v.AddError("publisher_id", "no publisher with this id exists")
	case errors.Is(err, data.ErrUnknownBookType):
		v.AddError("book_type_id", "no book type with this id exists")
	case errors.Is(err, data.ErrUnknownAuthor):
		v.AddError("author_ids", "one or more author ids do not exist")
	case errors.Is(err, data.ErrUnknownTag):
		v.AddError("keyword_ids", "one or more tag ids do not exist")
	default:
		return false
	}
	app.failedValidationResponse(w, r, v.Errors)
	return true
}

// createBookHandler handles POST /v1/books.
// It reads a JSON body containing the new book's details and relation ids
// and inserts the record with its author and keyword links in a single
// store operation, so a bad relation id never leaves a partial record
// behind. Responds with the fully loaded book and a 201 Created status.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title          string   `json:"title"`
		Subject        string   `json:"subject"`
		Summary        string   `json:"summary"`
		ISBN           string   `json:"isbn"`
		Language       string   `json:"language"`
		Availability   bool     `json:"availability"`
		Status         string   `json:"status"`
		NumberOfCopies *int     `json:"number_of_copies"`
		Barcode        *string  `json:"barcode"`
		PublisherID    *int64   `json:"publisher_id"`
		BookTypeID     *int64   `json:"book_type_id"`
		AuthorIDs      []int64  `json:"author_ids"`
		KeywordIDs     []int64  `json:"keyword_ids"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book := &data.Book{
		Title:          input.Title,
		Subject:        input.Subject,
		Summary:        input.Summary,
		ISBN:           input.ISBN,
		Language:       input.Language,
		Availability:   input.Availability,
		Status:         input.Status,
		NumberOfCopies: input.NumberOfCopies,
		Barcode:        input.Barcode,
		PublisherID:    input.PublisherID,
		BookTypeID:     input.BookTypeID,
	}

	v := validator.New()
	data.ValidateBook(v, book)
	v.Check(validator.Unique(input.AuthorIDs), "author_ids", "must not contain duplicate ids")
	v.Check(validator.Unique(input.KeywordIDs), "keyword_ids", "must not contain duplicate ids")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Insert(book, input.AuthorIDs, input.KeywordIDs)
	if err != nil {
		if !app.applyBookConstraintError(w, r, v, err) {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Reload so the response carries the nested publisher, book type,
	// authors, and keywords rather than bare ids.
	book, err = app.models.Books.Get(book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /v1/books/:id.
// Public: any client may retrieve a book with its nested relations.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
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

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /v1/books.
// Public: returns the catalog newest-first with publisher, book type,
// authors, and keywords eager-loaded, plus pagination metadata.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	filters := app.readFilters(r.URL.Query())

	books, metadata, err := app.models.Books.GetAll(filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PATCH /v1/books/:id.
// It reads a partial JSON body, applies only the provided fields, and swaps
// the author/keyword link sets when the corresponding arrays are present.
// Responds 404 if the book does not exist.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
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

	// Every field is a pointer; nil means "not provided, leave as-is".
	// The relation arrays are pointers to slices for the same reason: an
	// absent array keeps the links, an empty one clears them.
	var input struct {
		Title          *string  `json:"title"`
		Subject        *string  `json:"subject"`
		Summary        *string  `json:"summary"`
		ISBN           *string  `json:"isbn"`
		Language       *string  `json:"language"`
		Availability   *bool    `json:"availability"`
		Status         *string  `json:"status"`
		NumberOfCopies *int     `json:"number_of_copies"`
		Barcode        *string  `json:"barcode"`
		PublisherID    *int64   `json:"publisher_id"`
		BookTypeID     *int64   `json:"book_type_id"`
		AuthorIDs      *[]int64 `json:"author_ids"`
		KeywordIDs     *[]int64 `json:"keyword_ids"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Subject != nil {
		book.Subject = *input.Subject
	}
	if input.Summary != nil {
		book.Summary = *input.Summary
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Language != nil {
		book.Language = *input.Language
	}
	if input.Availability != nil {
		book.Availability = *input.Availability
	}
	if input.Status != nil {
		book.Status = *input.Status
	}
	if input.NumberOfCopies != nil {
		book.NumberOfCopies = input.NumberOfCopies
	}
	if input.Barcode != nil {
		book.Barcode = input.Barcode
	}
	if input.PublisherID != nil {
		book.PublisherID = input.PublisherID
	}
	if input.BookTypeID != nil {
		book.BookTypeID = input.BookTypeID
	}

	v := validator.New()
	data.ValidateBook(v, book)
	if input.AuthorIDs != nil {
		v.Check(validator.Unique(*input.AuthorIDs), "author_ids", "must not contain duplicate ids")
	}
	if input.KeywordIDs != nil {
		v.Check(validator.Unique(*input.KeywordIDs), "keyword_ids", "must not contain duplicate ids")
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// A nil slice tells the store to leave that link set alone; an empty
	// non-nil slice clears it. The store applies the row and the links in
	// one transaction, so a bad relation id changes nothing at all.
	var authorIDs, keywordIDs []int64
	if input.AuthorIDs != nil {
		authorIDs = *input.AuthorIDs
	}
	if input.KeywordIDs != nil {
		keywordIDs = *input.KeywordIDs
	}

	err = app.models.Books.Update(book, authorIDs, keywordIDs)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			if !app.applyBookConstraintError(w, r, v, err) {
				app.serverErrorResponse(w, r, err)
			}
		}
		return
	}

	// Reload so the nested relations reflect any link changes.
	book, err = app.models.Books.Get(book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:id.
// Removing a book removes its author/keyword links but never the linked
// authors, publishers, or tags themselves.
// Responds 404 if no book with that ID exists.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

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

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
