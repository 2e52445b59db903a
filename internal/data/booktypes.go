// internal/data/booktypes.go
package data

import (
	"database/sql"
	"errors"

	"github.com/sijanonly/school-library/internal/validator"
)

// BookType defines a lending period for a class of books, for example
// reference books that never leave the library versus ordinary lending
// stock. Deleting a book type clears the reference on its books.
type BookType struct {
	ID         int64  `json:"book_type_id"` // Unique identifier assigned by the database
	Name       string `json:"name"`         // Display name of the lending class
	DaysAmount *int   `json:"days_amount"`  // Optional lending duration in days
}

// ValidateBookType runs the field-level checks for a BookType record.
func ValidateBookType(v *validator.Validator, bookType *BookType) {
	v.Check(bookType.Name != "", "name", "This field is required.")
	v.Check(len(bookType.Name) <= 50, "name", "must not be more than 50 characters long")
	if bookType.DaysAmount != nil {
		v.Check(*bookType.DaysAmount >= 0, "days_amount", "must not be negative")
	}
}

// BookTypeStore is the book-type store contract consumed by the HTTP layer.
type BookTypeStore interface {
	Insert(bookType *BookType) error
	Get(id int64) (*BookType, error)
	GetAll() ([]*BookType, error)
	Update(bookType *BookType) error
	Delete(id int64) error
}

// BookTypeModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book-type records.
type BookTypeModel struct {
	DB *sql.DB
}

// Insert adds a new book-type record and writes the assigned id back into bookType.
func (m BookTypeModel) Insert(bookType *BookType) error {
	query := `
        INSERT INTO book_types (name, days_amount)
        VALUES ($1, $2)
        RETURNING book_type_id`

	return m.DB.QueryRow(query, bookType.Name, bookType.DaysAmount).Scan(&bookType.ID)
}

// Get retrieves a single book type by primary key.
func (m BookTypeModel) Get(id int64) (*BookType, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT book_type_id, name, days_amount
		FROM book_types
		WHERE book_type_id = $1`

	var bookType BookType
	err := m.DB.QueryRow(query, id).Scan(&bookType.ID, &bookType.Name, &bookType.DaysAmount)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &bookType, nil
}

// GetAll retrieves every book type, shortest lending period first.
func (m BookTypeModel) GetAll() ([]*BookType, error) {
	query := `
		SELECT book_type_id, name, days_amount
		FROM book_types
		ORDER BY days_amount NULLS LAST, book_type_id`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookTypes := []*BookType{}
	for rows.Next() {
		var bookType BookType
		err := rows.Scan(&bookType.ID, &bookType.Name, &bookType.DaysAmount)
		if err != nil {
			return nil, err
		}
		bookTypes = append(bookTypes, &bookType)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookTypes, nil
}

// Update saves the modified fields of bookType back to the database.
func (m BookTypeModel) Update(bookType *BookType) error {
	query := `
		UPDATE book_types
		SET name = $1, days_amount = $2
		WHERE book_type_id = $3`

	result, err := m.DB.Exec(query, bookType.Name, bookType.DaysAmount, bookType.ID)
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

// Delete removes the book type with the given id. The book_type_id column on
// referencing books is set to NULL by the database (ON DELETE SET NULL).
func (m BookTypeModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM book_types WHERE book_type_id = $1`, id)
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
