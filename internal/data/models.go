// Package data provides the data models and database interaction logic
// for the library management system.
package data

import (
	"database/sql"
	"errors"
	"math"

	"github.com/lib/pq"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
//
// Each field is an interface so the HTTP layer can be tested against
// in-memory fakes without a running database.
type Models struct {
	Users      UserStore      // Identity store: account records and flags
	Books      BookStore      // Catalog: book records and their relations
	Authors    AuthorStore    // Catalog: author records
	Publishers PublisherStore // Catalog: publisher records
	Tags       TagStore       // Catalog: tag records with derived slugs
	BookTypes  BookTypeStore  // Catalog: lending-period definitions
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB) Models {
	return Models{
		Users:      UserModel{DB: db},
		Books:      BookModel{DB: db},
		Authors:    AuthorModel{DB: db},
		Publishers: PublisherModel{DB: db},
		Tags:       TagModel{DB: db},
		BookTypes:  BookTypeModel{DB: db},
	}
}

// Sentinel errors returned by the store layer. Handlers translate these into
// the corresponding HTTP responses (404 for missing records, field-level 400s
// for uniqueness and reference violations).
var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateBarcode  = errors.New("duplicate barcode")
	ErrDuplicateTagName  = errors.New("duplicate tag name")
	ErrDuplicateTagSlug  = errors.New("duplicate tag slug")
	ErrUnknownPublisher  = errors.New("unknown publisher")
	ErrUnknownBookType   = errors.New("unknown book type")
	ErrUnknownAuthor     = errors.New("unknown author")
	ErrUnknownTag        = errors.New("unknown tag")
)

// PostgreSQL error codes we care about (see the pq documentation).
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translateConstraint inspects a database error and, when it is a uniqueness
// or foreign-key violation on a known constraint, returns the matching
// sentinel error. Any other error is passed through unchanged so callers can
// still surface unexpected failures as 500s.
func translateConstraint(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrDuplicateEmail
		case "users_username_key":
			return ErrDuplicateUsername
		case "books_barcode_key":
			return ErrDuplicateBarcode
		case "tags_name_key":
			return ErrDuplicateTagName
		case "tags_slug_key":
			// Kept distinct from the name collision: a slug collision can
			// come from a concurrent insert racing to the same suffix, which
			// the tag store retries with a freshly resolved slug.
			return ErrDuplicateTagSlug
		}
	case pqForeignKeyViolation:
		switch pqErr.Constraint {
		case "books_publisher_id_fkey":
			return ErrUnknownPublisher
		case "books_book_type_id_fkey":
			return ErrUnknownBookType
		case "books_authors_author_id_fkey":
			return ErrUnknownAuthor
		case "books_tags_tag_id_fkey":
			return ErrUnknownTag
		}
	}
	return err
}

// Filters holds pagination parameters extracted from URL query strings.
// List ordering is fixed per resource (newest-first for books and users),
// so only page controls are exposed.
type Filters struct {
	Page     int // Current page number (1-indexed)
	PageSize int // Number of records per page
}

// limit returns the SQL LIMIT value derived from PageSize.
func (f Filters) limit() int { return f.PageSize }

// offset returns the SQL OFFSET value derived from Page and PageSize.
func (f Filters) offset() int { return (f.Page - 1) * f.PageSize }

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and filter values.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
