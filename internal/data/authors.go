// internal/data/authors.go
package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sijanonly/school-library/internal/validator"
)

// Author represents a single author record stored in the database.
// Authors are linked to books through the books_authors association table.
type Author struct {
	ID        int64  `json:"author_id"`  // Unique identifier assigned by the database
	FirstName string `json:"first_name"` // Given name
	LastName  string `json:"last_name"`  // Family name
}

// FullName returns the author's first and last name joined by a space.
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// MarshalJSON adds the derived full_name field to the standard struct encoding.
func (a Author) MarshalJSON() ([]byte, error) {
	type alias Author
	return json.Marshal(struct {
		alias
		FullName string `json:"full_name"`
	}{alias(a), a.FullName()})
}

// ValidateAuthor runs the field-level checks for an Author record.
func ValidateAuthor(v *validator.Validator, author *Author) {
	v.Check(author.FirstName != "", "first_name", "This field is required.")
	v.Check(author.LastName != "", "last_name", "This field is required.")
	v.Check(len(author.FirstName) <= 30, "first_name", "must not be more than 30 characters long")
	v.Check(len(author.LastName) <= 30, "last_name", "must not be more than 30 characters long")
}

// AuthorStore is the author-store contract consumed by the HTTP layer.
type AuthorStore interface {
	Insert(author *Author) error
	Get(id int64) (*Author, error)
	GetAll() ([]*Author, error)
	Update(author *Author) error
	Delete(id int64) error
}

// AuthorModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting author records.
type AuthorModel struct {
	DB *sql.DB
}

// Insert adds a new author record and writes the assigned id back into author.
func (m AuthorModel) Insert(author *Author) error {
	query := `
        INSERT INTO authors (first_name, last_name)
        VALUES ($1, $2)
        RETURNING author_id`

	return m.DB.QueryRow(query, author.FirstName, author.LastName).Scan(&author.ID)
}

// Get retrieves a single author by primary key.
func (m AuthorModel) Get(id int64) (*Author, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT author_id, first_name, last_name
		FROM authors
		WHERE author_id = $1`

	var author Author
	err := m.DB.QueryRow(query, id).Scan(&author.ID, &author.FirstName, &author.LastName)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &author, nil
}

// GetAll retrieves every author, ordered by last then first name.
func (m AuthorModel) GetAll() ([]*Author, error) {
	query := `
		SELECT author_id, first_name, last_name
		FROM authors
		ORDER BY last_name, first_name, author_id`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []*Author{}
	for rows.Next() {
		var author Author
		err := rows.Scan(&author.ID, &author.FirstName, &author.LastName)
		if err != nil {
			return nil, err
		}
		authors = append(authors, &author)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}

// Update saves the modified fields of author back to the database.
func (m AuthorModel) Update(author *Author) error {
	query := `
		UPDATE authors
		SET first_name = $1, last_name = $2
		WHERE author_id = $3`

	result, err := m.DB.Exec(query, author.FirstName, author.LastName, author.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes the author with the given id. Association rows in
// books_authors are removed by the database; book records are untouched.
func (m AuthorModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM authors WHERE author_id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
