// internal/auth/policy.go
package auth

import "github.com/sijanonly/school-library/internal/data"

// Action identifies an operation a policy decision is requested for.
type Action int

const (
	ActionUserRegister Action = iota // create an account
	ActionUserList                   // list all accounts
	ActionUserRead                   // retrieve one account
	ActionUserUpdate                 // modify one account
	ActionUserDelete                 // remove one account
	ActionCatalogRead                // read books, authors, publishers, tags, book types
	ActionCatalogWrite               // create/update/delete catalog records
)

// Allowed decides whether actor may perform action on target. The actor is
// never nil: unauthenticated requests carry the data.AnonymousUser sentinel.
// The target is only consulted for per-record user operations and may be nil
// otherwise.
//
// Only two axes of privilege exist, and they stay orthogonal here:
// ownership (actor is the target record) and staff elevation. There is no
// role hierarchy.
func Allowed(actor *data.User, action Action, target *data.User) bool {
	switch action {
	case ActionUserRegister, ActionCatalogRead:
		// Open to everyone, including anonymous clients.
		return true

	case ActionUserList, ActionUserRead:
		return !actor.IsAnonymous()

	case ActionUserUpdate:
		// Only the owner may edit their record; a superuser may edit any.
		// Staff status alone does not grant cross-account edits.
		if actor.IsAnonymous() || target == nil {
			return false
		}
		return actor.ID == target.ID || actor.IsSuperuser

	case ActionUserDelete:
		// Deletion is a staff privilege regardless of ownership: a
		// non-staff user may not delete even their own record.
		return !actor.IsAnonymous() && (actor.IsStaff || actor.IsSuperuser)

	case ActionCatalogWrite:
		return !actor.IsAnonymous() && (actor.IsStaff || actor.IsSuperuser)

	default:
		return false
	}
}
