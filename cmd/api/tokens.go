// cmd/api/tokens.go
// This file contains the token-lifecycle handlers: login (credential
// exchange), verification, and refresh. The error contract is strict: a
// missing field is a 400 validation failure, bad credentials or a bad token
// are a 401, and the two are never conflated.
package main

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/sijanonly/school-library/internal/auth"
	"github.com/sijanonly/school-library/internal/data"
	"github.com/sijanonly/school-library/internal/validator"
)

// loginHandler handles POST /v1/users/login.
// A missing username or password is reported per-field with
// "This field is required." and a 400 status. Unknown users, wrong
// passwords, and deactivated accounts all yield the same generic 401 so the
// response never reveals which check failed.
func (app *applicationDependencies) loginHandler(w http.ResponseWriter, r *http.Request) {
	// Pointers distinguish an absent field from an empty string; both are
	// rejected, with the same message.
	var input struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Username != nil && *input.Username != "", "username", "This field is required.")
	v.Check(input.Password != nil && *input.Password != "", "password", "This field is required.")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user, err := app.models.Users.GetByUsername(*input.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.invalidCredentialsResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if !user.IsActive {
		app.invalidCredentialsResponse(w, r)
		return
	}

	match, err := user.Password.Matches(*input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !match {
		app.invalidCredentialsResponse(w, r)
		return
	}

	token, err := app.tokens.Issue(user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"token": token}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// verifyTokenHandler handles POST /v1/users/token-verify.
// It checks the signature and expiry of the token carried in the body and
// confirms the identity it asserts still exists and is active. On success it
// echoes the token back alongside the resolved user.
func (app *applicationDependencies) verifyTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Token != "", "token", "This field is required.")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	userID, err := app.tokens.Verify(input.Token)
	if err != nil {
		app.invalidAuthenticationTokenResponse(w, r)
		return
	}

	user, err := app.resolveTokenSubject(w, r, userID)
	if user == nil {
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"token": input.Token, "user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// refreshTokenHandler handles POST /v1/users/token-refresh.
// A renewed token is issued when the presented token's signature is valid
// and its expiry is still in the future or within the configured refresh
// window. The asserted identity is re-checked against the store, so a token
// for a deleted or deactivated account cannot be refreshed.
func (app *applicationDependencies) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Token != "", "token", "This field is required.")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	refreshed, err := app.tokens.Refresh(input.Token)
	if err != nil {
		app.invalidAuthenticationTokenResponse(w, r)
		return
	}

	// The refreshed token was just issued, so Verify cannot fail on expiry;
	// it only extracts the subject here.
	userID, err := app.tokens.Verify(refreshed)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	user, err := app.resolveTokenSubject(w, r, userID)
	if user == nil {
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"token": refreshed}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// resolveTokenSubject loads the user a token points at, writing the
// appropriate error response and returning nil when the subject is unknown
// or deactivated.
func (app *applicationDependencies) resolveTokenSubject(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*data.User, error) {
	user, err := app.models.Users.GetByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.invalidAuthenticationTokenResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, err
	}
	if !user.IsActive {
		app.invalidAuthenticationTokenResponse(w, r)
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}
