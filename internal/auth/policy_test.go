package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sijanonly/school-library/internal/data"
)

func TestAllowed(t *testing.T) {
	owner := &data.User{ID: uuid.New(), IsActive: true}
	other := &data.User{ID: uuid.New(), IsActive: true}
	staff := &data.User{ID: uuid.New(), IsActive: true, IsStaff: true}
	super := &data.User{ID: uuid.New(), IsActive: true, IsSuperuser: true}

	tests := []struct {
		name   string
		actor  *data.User
		action Action
		target *data.User
		want   bool
	}{
		{"anonymous may register", data.AnonymousUser, ActionUserRegister, nil, true},
		{"authenticated may register", owner, ActionUserRegister, nil, true},

		{"anonymous may not list users", data.AnonymousUser, ActionUserList, nil, false},
		{"authenticated may list users", other, ActionUserList, nil, true},

		{"anonymous may not read a user", data.AnonymousUser, ActionUserRead, owner, false},
		{"authenticated may read any user", other, ActionUserRead, owner, true},

		{"owner may update own record", owner, ActionUserUpdate, owner, true},
		{"other user may not update record", other, ActionUserUpdate, owner, false},
		{"staff alone may not update another's record", staff, ActionUserUpdate, owner, false},
		{"superuser may update any record", super, ActionUserUpdate, owner, true},
		{"anonymous may not update", data.AnonymousUser, ActionUserUpdate, owner, false},

		{"non-staff may not delete even own record", owner, ActionUserDelete, owner, false},
		{"staff may delete any record", staff, ActionUserDelete, owner, true},
		{"superuser may delete any record", super, ActionUserDelete, owner, true},
		{"anonymous may not delete", data.AnonymousUser, ActionUserDelete, owner, false},

		{"anonymous may read the catalog", data.AnonymousUser, ActionCatalogRead, nil, true},
		{"authenticated may read the catalog", owner, ActionCatalogRead, nil, true},

		{"anonymous may not write the catalog", data.AnonymousUser, ActionCatalogWrite, nil, false},
		{"non-staff may not write the catalog", owner, ActionCatalogWrite, nil, false},
		{"staff may write the catalog", staff, ActionCatalogWrite, nil, true},
		{"superuser may write the catalog", super, ActionCatalogWrite, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allowed(tt.actor, tt.action, tt.target)
			if got != tt.want {
				t.Fatalf("Allowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllowedUnknownActionDenied(t *testing.T) {
	super := &data.User{ID: uuid.New(), IsSuperuser: true}
	if Allowed(super, Action(99), nil) {
		t.Fatal("unknown action should always be denied")
	}
}
