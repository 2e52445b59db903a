// internal/data/books.go
// This file contains the Book model and its Postgres store. Book rows carry
// optional references to a publisher and a book type (cleared, never
// cascaded, when the referenced record is deleted) plus many-to-many links
// to authors and tags held in association tables.
package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/sijanonly/school-library/internal/validator"
)

// Book represents a single book record stored in the database, together with
// its eager-loaded relations.
type Book struct {
	ID             int64     `json:"book_id"`          // Unique identifier assigned by the database
	CreatedAt      time.Time `json:"created_at"`       // Timestamp when the record was created
	UpdatedAt      time.Time `json:"updated_at"`       // Timestamp of the last modification, never decreases
	Title          string    `json:"title"`            // Title of the book
	Subject        string    `json:"subject"`          // Subject area, e.g. "mathematics"
	Summary        string    `json:"summary"`          // Brief description of the book
	ISBN           string    `json:"isbn"`             // 13-digit ISBN identifier, may be empty
	Language       string    `json:"language"`         // Language of the text
	Availability   bool      `json:"availability"`     // Whether the book can currently be borrowed
	Status         string    `json:"status"`           // Free-text status note
	NumberOfCopies *int      `json:"number_of_copies"` // Optional count of physical copies
	Barcode        *string   `json:"barcode"`          // Optional, unique across all books

	// Foreign keys used on writes; the nested records below are what get
	// serialized on reads.
	PublisherID *int64 `json:"-"`
	BookTypeID  *int64 `json:"-"`

	Publisher *Publisher `json:"publisher"` // Eager-loaded publisher, nil when unset
	BookType  *BookType  `json:"book_type"` // Eager-loaded book type, nil when unset
	Authors   []Author   `json:"authors"`   // Eager-loaded linked authors
	Keywords  []Tag      `json:"keywords"`  // Eager-loaded linked tags
}

// AuthorList returns the full names of exactly the authors linked to the book.
func (b *Book) AuthorList() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.FullName())
	}
	return names
}

// YearPublished returns the publisher's publication year, or nil when the
// book has no publisher or the publisher has no year recorded.
func (b *Book) YearPublished() *int {
	if b.Publisher == nil {
		return nil
	}
	return b.Publisher.PublicationYear
}

// MarshalJSON adds the derived author_list and year_published fields to the
// standard struct encoding.
func (b Book) MarshalJSON() ([]byte, error) {
	type alias Book
	return json.Marshal(struct {
		alias
		AuthorList    []string `json:"author_list"`
		YearPublished *int     `json:"year_published"`
	}{alias(b), b.AuthorList(), b.YearPublished()})
}

// ValidateBook runs the field-level checks for a Book record.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "This field is required.")
	v.Check(len(book.Title) <= 100, "title", "must not be more than 100 characters long")
	v.Check(book.Subject != "", "subject", "This field is required.")
	v.Check(len(book.Subject) <= 50, "subject", "must not be more than 50 characters long")
	v.Check(len(book.Summary) <= 1000, "summary", "must not be more than 1000 characters long")
	v.Check(len(book.ISBN) <= 13, "isbn", "must not be more than 13 characters long")
	v.Check(len(book.Language) <= 100, "language", "must not be more than 100 characters long")
	if book.NumberOfCopies != nil {
		v.Check(*book.NumberOfCopies >= 0, "number_of_copies", "must not be negative")
	}
	if book.Barcode != nil {
		v.Check(*book.Barcode != "", "barcode", "must not be empty when provided")
		v.Check(len(*book.Barcode) <= 50, "barcode", "must not be more than 50 characters long")
	}
}

// BookStore is the book-store contract consumed by the HTTP layer. Insert
// and Update take the author and tag link sets alongside the record so the
// row and its links are written atomically: a bad relation id fails the
// whole operation without leaving a partial record behind.
type BookStore interface {
	Insert(book *Book, authorIDs, tagIDs []int64) error
	Get(id int64) (*Book, error)
	GetAll(filters Filters) ([]*Book, Metadata, error)
	Update(book *Book, authorIDs, tagIDs []int64) error
	Delete(id int64) error
}

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book records.
type BookModel struct {
	DB *sql.DB
}

// Insert adds a new book record and its author/tag links to the database in
// a single transaction. After a successful insert, the database-assigned
// book_id, created_at, and updated_at values are written back into the book
// struct. Barcode collisions and unknown publisher/book-type/author/tag
// references are returned as the matching sentinel errors, and the
// transaction rolls back so no orphan record survives a bad relation id.
func (m BookModel) Insert(book *Book, authorIDs, tagIDs []int64) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO books (title, subject, summary, isbn, language, availability, status, number_of_copies, barcode, publisher_id, book_type_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING book_id, created_at, updated_at`

	args := []any{
		book.Title,
		book.Subject,
		book.Summary,
		book.ISBN,
		book.Language,
		book.Availability,
		book.Status,
		book.NumberOfCopies,
		book.Barcode,
		book.PublisherID,
		book.BookTypeID,
	}

	err = tx.QueryRow(query, args...).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return translateConstraint(err)
	}

	err = replaceLinks(tx, authorLinksDelete, authorLinksInsert, book.ID, authorIDs)
	if err != nil {
		return err
	}
	err = replaceLinks(tx, tagLinksDelete, tagLinksInsert, book.ID, tagIDs)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// bookColumns is the shared SELECT column list for book queries, including
// the LEFT JOINed publisher and book-type columns.
const bookColumns = `
	b.book_id, b.created_at, b.updated_at, b.title, b.subject, b.summary,
	b.isbn, b.language, b.availability, b.status, b.number_of_copies, b.barcode,
	p.publisher_id, p.name, p.publication_year, p.publication_place,
	bt.book_type_id, bt.name, bt.days_amount`

// scanBook scans one joined book row. The publisher and book-type columns
// are nullable because of the LEFT JOINs, so they go through Null* wrappers
// before the nested structs are populated.
func scanBook(scan func(dest ...any) error) (*Book, error) {
	var book Book
	var (
		pubID    sql.NullInt64
		pubName  sql.NullString
		pubYear  sql.NullInt64
		pubPlace sql.NullString
		btID     sql.NullInt64
		btName   sql.NullString
		btDays   sql.NullInt64
	)

	err := scan(
		&book.ID,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.Title,
		&book.Subject,
		&book.Summary,
		&book.ISBN,
		&book.Language,
		&book.Availability,
		&book.Status,
		&book.NumberOfCopies,
		&book.Barcode,
		&pubID,
		&pubName,
		&pubYear,
		&pubPlace,
		&btID,
		&btName,
		&btDays,
	)
	if err != nil {
		return nil, err
	}

	if pubID.Valid {
		publisher := &Publisher{ID: pubID.Int64, Name: pubName.String}
		if pubYear.Valid {
			year := int(pubYear.Int64)
			publisher.PublicationYear = &year
		}
		if pubPlace.Valid {
			place := pubPlace.String
			publisher.PublicationPlace = &place
		}
		book.Publisher = publisher
		book.PublisherID = &publisher.ID
	}

	if btID.Valid {
		bookType := &BookType{ID: btID.Int64, Name: btName.String}
		if btDays.Valid {
			days := int(btDays.Int64)
			bookType.DaysAmount = &days
		}
		book.BookType = bookType
		book.BookTypeID = &bookType.ID
	}

	book.Authors = []Author{}
	book.Keywords = []Tag{}
	return &book, nil
}

// Get retrieves a single book by primary key with all relations loaded.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT ` + bookColumns + `
		FROM books b
		LEFT JOIN publishers p ON p.publisher_id = b.publisher_id
		LEFT JOIN book_types bt ON bt.book_type_id = b.book_type_id
		WHERE b.book_id = $1`

	book, err := scanBook(func(dest ...any) error {
		return m.DB.QueryRow(query, id).Scan(dest...)
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	err = m.attachRelations([]*Book{book})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetAll retrieves a paginated list of books ordered newest-first, with
// publisher and book type joined in and authors and keywords loaded in two
// batched queries, so the cost stays at three round-trips regardless of the
// number of rows. A COUNT(*) OVER() window function supplies the total.
func (m BookModel) GetAll(filters Filters) ([]*Book, Metadata, error) {
	query := `
		SELECT count(*) OVER(), ` + bookColumns + `
		FROM books b
		LEFT JOIN publishers p ON p.publisher_id = b.publisher_id
		LEFT JOIN book_types bt ON bt.book_type_id = b.book_type_id
		ORDER BY b.created_at DESC, b.book_id ASC
		LIMIT $1 OFFSET $2`

	rows, err := m.DB.Query(query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	books := []*Book{}

	for rows.Next() {
		book, err := scanBook(func(dest ...any) error {
			// Prepend the window-function column to the shared scan list.
			return rows.Scan(append([]any{&totalRecords}, dest...)...)
		})
		if err != nil {
			return nil, Metadata{}, err
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	err = m.attachRelations(books)
	if err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// attachRelations loads the authors and keywords for every book in the slice
// using one batched query per association table.
func (m BookModel) attachRelations(books []*Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[int64]*Book, len(books))
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	authorQuery := `
		SELECT ba.book_id, a.author_id, a.first_name, a.last_name
		FROM books_authors ba
		JOIN authors a ON a.author_id = ba.author_id
		WHERE ba.book_id = ANY($1)
		ORDER BY a.last_name, a.first_name, a.author_id`

	rows, err := m.DB.Query(authorQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int64
		var author Author
		err := rows.Scan(&bookID, &author.ID, &author.FirstName, &author.LastName)
		if err != nil {
			return err
		}
		if b, ok := byID[bookID]; ok {
			b.Authors = append(b.Authors, author)
		}
	}
	if err = rows.Err(); err != nil {
		return err
	}

	tagQuery := `
		SELECT bt.book_id, t.tag_id, t.name, t.slug
		FROM books_tags bt
		JOIN tags t ON t.tag_id = bt.tag_id
		WHERE bt.book_id = ANY($1)
		ORDER BY t.name, t.tag_id`

	tagRows, err := m.DB.Query(tagQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var bookID int64
		var tag Tag
		err := tagRows.Scan(&bookID, &tag.ID, &tag.Name, &tag.Slug)
		if err != nil {
			return err
		}
		if b, ok := byID[bookID]; ok {
			b.Keywords = append(b.Keywords, tag)
		}
	}
	return tagRows.Err()
}

// Update saves the modified fields of book back to the database and refreshes
// updated_at. GREATEST keeps the modification timestamp monotonic even if the
// database clock steps backwards between writes. A nil authorIDs or tagIDs
// slice leaves that link set untouched; an empty non-nil slice clears it.
// The row and its links are written in one transaction, so a failed link
// swap never leaves the scalar fields updated.
func (m BookModel) Update(book *Book, authorIDs, tagIDs []int64) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE books
		SET title = $1, subject = $2, summary = $3, isbn = $4, language = $5,
		    availability = $6, status = $7, number_of_copies = $8, barcode = $9,
		    publisher_id = $10, book_type_id = $11,
		    updated_at = GREATEST(updated_at, now())
		WHERE book_id = $12
		RETURNING updated_at`

	args := []any{
		book.Title,
		book.Subject,
		book.Summary,
		book.ISBN,
		book.Language,
		book.Availability,
		book.Status,
		book.NumberOfCopies,
		book.Barcode,
		book.PublisherID,
		book.BookTypeID,
		book.ID,
	}

	err = tx.QueryRow(query, args...).Scan(&book.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return translateConstraint(err)
		}
	}

	if authorIDs != nil {
		err = replaceLinks(tx, authorLinksDelete, authorLinksInsert, book.ID, authorIDs)
		if err != nil {
			return err
		}
	}
	if tagIDs != nil {
		err = replaceLinks(tx, tagLinksDelete, tagLinksInsert, book.ID, tagIDs)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the book with the given id from the database. Association
// rows are removed by the database; authors, publishers, and tags referenced
// by the book are never deleted.
func (m BookModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM books WHERE book_id = $1`, id)
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

// Queries for swapping the association-table link sets.
const (
	authorLinksDelete = `DELETE FROM books_authors WHERE book_id = $1`
	authorLinksInsert = `INSERT INTO books_authors (book_id, author_id) SELECT $1, unnest($2::bigint[])`
	tagLinksDelete    = `DELETE FROM books_tags WHERE book_id = $1`
	tagLinksInsert    = `INSERT INTO books_tags (book_id, tag_id) SELECT $1, unnest($2::bigint[])`
)

// replaceLinks runs a delete-then-insert pair for an association table
// inside the caller's transaction, so the link set is swapped atomically
// together with the book row itself.
func replaceLinks(tx *sql.Tx, deleteQuery, insertQuery string, bookID int64, ids []int64) error {
	_, err := tx.Exec(deleteQuery, bookID)
	if err != nil {
		return err
	}

	if len(ids) > 0 {
		_, err = tx.Exec(insertQuery, bookID, pq.Array(ids))
		if err != nil {
			return translateConstraint(err)
		}
	}
	return nil
}
