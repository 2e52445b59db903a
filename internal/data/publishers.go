// internal/data/publishers.go
package data

import (
	"database/sql"
	"errors"

	"github.com/sijanonly/school-library/internal/validator"
)

// Publisher represents a single publisher record stored in the database.
// A book references at most one publisher; deleting a publisher clears the
// reference on its books rather than cascading.
type Publisher struct {
	ID               int64   `json:"publisher_id"`      // Unique identifier assigned by the database
	Name             string  `json:"name"`              // Publishing company name
	PublicationYear  *int    `json:"publication_year"`  // Optional year of publication
	PublicationPlace *string `json:"publication_place"` // Optional place of publication
}

// ValidatePublisher runs the field-level checks for a Publisher record.
func ValidatePublisher(v *validator.Validator, publisher *Publisher) {
	v.Check(publisher.Name != "", "name", "This field is required.")
	v.Check(len(publisher.Name) <= 50, "name", "must not be more than 50 characters long")
	if publisher.PublicationPlace != nil {
		v.Check(len(*publisher.PublicationPlace) <= 200, "publication_place", "must not be more than 200 characters long")
	}
}

// PublisherStore is the publisher-store contract consumed by the HTTP layer.
type PublisherStore interface {
	Insert(publisher *Publisher) error
	Get(id int64) (*Publisher, error)
	GetAll() ([]*Publisher, error)
	Update(publisher *Publisher) error
	Delete(id int64) error
}

// PublisherModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting publisher records.
type PublisherModel struct {
	DB *sql.DB
}

// Insert adds a new publisher record and writes the assigned id back into publisher.
func (m PublisherModel) Insert(publisher *Publisher) error {
	query := `
        INSERT INTO publishers (name, publication_year, publication_place)
        VALUES ($1, $2, $3)
        RETURNING publisher_id`

	return m.DB.QueryRow(
		query,
		publisher.Name,
		publisher.PublicationYear,
		publisher.PublicationPlace,
	).Scan(&publisher.ID)
}

// Get retrieves a single publisher by primary key.
func (m PublisherModel) Get(id int64) (*Publisher, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT publisher_id, name, publication_year, publication_place
		FROM publishers
		WHERE publisher_id = $1`

	var publisher Publisher
	err := m.DB.QueryRow(query, id).Scan(
		&publisher.ID,
		&publisher.Name,
		&publisher.PublicationYear,
		&publisher.PublicationPlace,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &publisher, nil
}

// GetAll retrieves every publisher, ordered by name.
func (m PublisherModel) GetAll() ([]*Publisher, error) {
	query := `
		SELECT publisher_id, name, publication_year, publication_place
		FROM publishers
		ORDER BY name, publisher_id`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	publishers := []*Publisher{}
	for rows.Next() {
		var publisher Publisher
		err := rows.Scan(
			&publisher.ID,
			&publisher.Name,
			&publisher.PublicationYear,
			&publisher.PublicationPlace,
		)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, &publisher)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return publishers, nil
}

// Update saves the modified fields of publisher back to the database.
func (m PublisherModel) Update(publisher *Publisher) error {
	query := `
		UPDATE publishers
		SET name = $1, publication_year = $2, publication_place = $3
		WHERE publisher_id = $4`

	result, err := m.DB.Exec(
		query,
		publisher.Name,
		publisher.PublicationYear,
		publisher.PublicationPlace,
		publisher.ID,
	)
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

// Delete removes the publisher with the given id. The publisher_id column on
// referencing books is set to NULL by the database (ON DELETE SET NULL);
// books themselves are never deleted.
func (m PublisherModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM publishers WHERE publisher_id = $1`, id)
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
