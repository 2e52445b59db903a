// internal/data/tags.go
// This file contains the Tag model and the slug-generation rules. Slugs are
// recomputed from the tag name on every insert and rename; collisions with
// existing slugs are resolved by appending the smallest free numeric suffix.
package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sijanonly/school-library/internal/validator"
)

// Tag labels books with a subject keyword, e.g. computer-science or economics.
// Tags are linked to books through the books_tags association table.
type Tag struct {
	ID   int64  `json:"tag_id"` // Unique identifier assigned by the database
	Name string `json:"name"`   // Unique display name
	Slug string `json:"slug"`   // Unique URL-safe form, derived from Name
}

// Slugify converts name into its canonical URL-safe form: lower-cased, with
// every run of non-alphanumeric characters collapsed into a single hyphen
// and leading/trailing hyphens trimmed. The result is deterministic; the
// same name always yields the same slug.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// ValidateTag runs the field-level checks for a Tag record.
func ValidateTag(v *validator.Validator, tag *Tag) {
	v.Check(tag.Name != "", "name", "This field is required.")
	v.Check(len(tag.Name) <= 60, "name", "must not be more than 60 characters long")
	v.Check(Slugify(tag.Name) != "", "name", "must contain at least one letter or digit")
}

// TagStore is the tag-store contract consumed by the HTTP layer.
type TagStore interface {
	Insert(tag *Tag) error
	Get(id int64) (*Tag, error)
	GetAll() ([]*Tag, error)
	Update(tag *Tag) error
	Delete(id int64) error
}

// TagModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting tag records.
type TagModel struct {
	DB *sql.DB
}

// resolveSlug returns base when it is not taken, or the base with the
// smallest free numeric suffix appended (base-2, base-3, …) otherwise.
func resolveSlug(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// slugFor derives the slug for name against the slugs currently in the
// database. excludeID lets an update keep its own slug without counting it
// as a collision, so renaming a tag to the same name is a no-op.
func (m TagModel) slugFor(name string, excludeID int64) (string, error) {
	base := Slugify(name)

	query := `
		SELECT slug FROM tags
		WHERE (slug = $1 OR slug LIKE $1 || '-%') AND tag_id <> $2`

	rows, err := m.DB.Query(query, base, excludeID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return "", err
		}
		taken[slug] = true
	}
	if err = rows.Err(); err != nil {
		return "", err
	}

	return resolveSlug(base, taken), nil
}

// slugRetryLimit bounds the re-resolution attempts when concurrent writes
// race to the same slug suffix.
const slugRetryLimit = 3

// Insert adds a new tag record, deriving its slug from the name, and writes
// the assigned id and slug back into tag. Two concurrent inserts of
// colliding names can resolve to the same suffix; the loser's unique-slug
// violation is retried with a freshly resolved slug rather than surfacing
// as a duplicate-name error for a name that is not actually taken.
func (m TagModel) Insert(tag *Tag) error {
	query := `
        INSERT INTO tags (name, slug)
        VALUES ($1, $2)
        RETURNING tag_id`

	for attempt := 0; attempt < slugRetryLimit; attempt++ {
		slug, err := m.slugFor(tag.Name, 0)
		if err != nil {
			return err
		}
		tag.Slug = slug

		err = m.DB.QueryRow(query, tag.Name, tag.Slug).Scan(&tag.ID)
		if err == nil {
			return nil
		}
		err = translateConstraint(err)
		if !errors.Is(err, ErrDuplicateTagSlug) {
			return err
		}
	}
	return ErrDuplicateTagSlug
}

// Get retrieves a single tag by primary key.
func (m TagModel) Get(id int64) (*Tag, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT tag_id, name, slug
		FROM tags
		WHERE tag_id = $1`

	var tag Tag
	err := m.DB.QueryRow(query, id).Scan(&tag.ID, &tag.Name, &tag.Slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &tag, nil
}

// GetAll retrieves every tag, ordered by name.
func (m TagModel) GetAll() ([]*Tag, error) {
	query := `
		SELECT tag_id, name, slug
		FROM tags
		ORDER BY name, tag_id`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*Tag{}
	for rows.Next() {
		var tag Tag
		err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug)
		if err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// Update saves the modified fields of tag back to the database. The slug is
// regenerated from the current name on every update, so renaming a tag
// always refreshes its slug. Suffix races with concurrent writers are
// retried the same way Insert retries them.
func (m TagModel) Update(tag *Tag) error {
	query := `
		UPDATE tags
		SET name = $1, slug = $2
		WHERE tag_id = $3`

	for attempt := 0; attempt < slugRetryLimit; attempt++ {
		slug, err := m.slugFor(tag.Name, tag.ID)
		if err != nil {
			return err
		}
		tag.Slug = slug

		result, err := m.DB.Exec(query, tag.Name, tag.Slug, tag.ID)
		if err != nil {
			err = translateConstraint(err)
			if errors.Is(err, ErrDuplicateTagSlug) {
				continue
			}
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
	return ErrDuplicateTagSlug
}

// Delete removes the tag with the given id. Association rows in books_tags
// are removed by the database; book records are untouched.
func (m TagModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM tags WHERE tag_id = $1`, id)
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
