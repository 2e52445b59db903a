// cmd/api/publishers.go
// HTTP request handlers for the publishers resource.
package main

import (
	"errors"
	"net/http"

	"github.com/sijanonly/school-library/internal/data"
	"github.com/sijanonly/school-library/internal/validator"
)

// createPublisherHandler handles POST /v1/publishers.
func (app *applicationDependencies) createPublisherHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name             string  `json:"name"`
		PublicationYear  *int    `json:"publication_year"`
		PublicationPlace *string `json:"publication_place"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	publisher := &data.Publisher{
		Name:             input.Name,
		PublicationYear:  input.PublicationYear,
		PublicationPlace: input.PublicationPlace,
	}

	v := validator.New()
	data.ValidatePublisher(v, publisher)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Publishers.Insert(publisher)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"publisher": publisher}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showPublisherHandler handles GET /v1/publishers/:id.
func (app *applicationDependencies) showPublisherHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	publisher, err := app.models.Publishers.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"publisher": publisher}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listPublishersHandler handles GET /v1/publishers.
func (app *applicationDependencies) listPublishersHandler(w http.ResponseWriter, r *http.Request) {
	publishers, err := app.models.Publishers.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"publishers": publishers}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updatePublisherHandler handles PATCH /v1/publishers/:id.
// Only supplied fields are applied.
func (app *applicationDependencies) updatePublisherHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	publisher, err := app.models.Publishers.Get(id)
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
		Name             *string `json:"name"`
		PublicationYear  *int    `json:"publication_year"`
		PublicationPlace *string `json:"publication_place"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Name != nil {
		publisher.Name = *input.Name
	}
	if input.PublicationYear != nil {
		publisher.PublicationYear = input.PublicationYear
	}
	if input.PublicationPlace != nil {
		publisher.PublicationPlace = input.PublicationPlace
	}

	v := validator.New()
	data.ValidatePublisher(v, publisher)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Publishers.Update(publisher)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"publisher": publisher}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deletePublisherHandler handles DELETE /v1/publishers/:id.
// Books referencing the publisher keep existing with their publisher cleared;
// nothing cascades.
func (app *applicationDependencies) deletePublisherHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Publishers.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "publisher successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
