// cmd/api/booktypes.go
// HTTP request handlers for the book-types resource.
package main

import (
	"errors"
	"net/http"

	"github.com/sijanonly/school-library/internal/data"
	"github.com/sijanonly/school-library/internal/validator"
)

// createBookTypeHandler handles POST /v1/book-types.
func (app *applicationDependencies) createBookTypeHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name       string `json:"name"`
		DaysAmount *int   `json:"days_amount"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	bookType := &data.BookType{
		Name:       input.Name,
		DaysAmount: input.DaysAmount,
	}

	v := validator.New()
	data.ValidateBookType(v, bookType)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.BookTypes.Insert(bookType)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"book_type": bookType}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookTypeHandler handles GET /v1/book-types/:id.
func (app *applicationDependencies) showBookTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	bookType, err := app.models.BookTypes.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book_type": bookType}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBookTypesHandler handles GET /v1/book-types.
func (app *applicationDependencies) listBookTypesHandler(w http.ResponseWriter, r *http.Request) {
	bookTypes, err := app.models.BookTypes.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book_types": bookTypes}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookTypeHandler handles PATCH /v1/book-types/:id.
// Only supplied fields are applied.
func (app *applicationDependencies) updateBookTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	bookType, err := app.models.BookTypes.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var input struct {
		Name       *string `json:"name"`
		DaysAmount *int    `json:"days_amount"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Name != nil {
		bookType.Name = *input.Name
	}
	if input.DaysAmount != nil {
		bookType.DaysAmount = input.DaysAmount
	}

	v := validator.New()
	data.ValidateBookType(v, bookType)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.BookTypes.Update(bookType)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book_type": bookType}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookTypeHandler handles DELETE /v1/book-types/:id.
// Books of this type keep existing with their type cleared; nothing cascades.
func (app *applicationDependencies) deleteBookTypeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.BookTypes.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book type successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
