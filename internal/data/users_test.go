package data

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sijanonly/school-library/internal/validator"
)

func TestPasswordSetNeverStoresPlaintext(t *testing.T) {
	var p password
	err := p.Set("password123")
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if string(p.Hash()) == "password123" {
		t.Fatal("stored hash equals the plaintext password")
	}
	if len(p.Hash()) == 0 {
		t.Fatal("no hash was stored")
	}
}

func TestPasswordMatches(t *testing.T) {
	var p password
	if err := p.Set("correct horse battery staple"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	match, err := p.Matches("correct horse battery staple")
	if err != nil {
		t.Fatalf("matches failed: %v", err)
	}
	if !match {
		t.Fatal("correct password did not match")
	}

	match, err = p.Matches("wrong password")
	if err != nil {
		t.Fatalf("matches failed: %v", err)
	}
	if match {
		t.Fatal("wrong password matched")
	}
}

func TestUserFullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"John", "Coloney", "John Coloney"},
		{"John", "", "John"},
		{"", "Coloney", "Coloney"},
		{"", "", ""},
	}

	for _, tt := range tests {
		u := &User{FirstName: tt.first, LastName: tt.last}
		if got := u.FullName(); got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestUserJSONHidesPasswordAndAddsFullName(t *testing.T) {
	user := User{
		Username:  "john_coloney",
		Email:     "john@gmail.com",
		FirstName: "John",
		LastName:  "Coloney",
	}
	if err := user.Password.Set("password123"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	js, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	body := string(js)
	if strings.Contains(body, "password123") {
		t.Fatal("serialized user leaks the plaintext password")
	}
	if strings.Contains(strings.ToLower(body), "password") {
		t.Fatal("serialized user exposes a password field")
	}
	if !strings.Contains(body, `"full_name":"John Coloney"`) {
		t.Fatalf("serialized user missing full_name: %s", body)
	}
}

func TestValidateEmailMessagesAreDistinguishable(t *testing.T) {
	// A malformed address must produce the format message, which is a
	// different string from the duplicate message added by handlers, so the
	// two failure modes never look alike to a client.
	v := validator.New()
	ValidateEmail(v, "invalid_email")
	if v.Errors["email"] != "Enter a valid email address." {
		t.Fatalf("malformed email message = %q", v.Errors["email"])
	}

	v = validator.New()
	ValidateEmail(v, "")
	if v.Errors["email"] != "This field is required." {
		t.Fatalf("missing email message = %q", v.Errors["email"])
	}

	v = validator.New()
	ValidateEmail(v, "john@gmail.com")
	if !v.Valid() {
		t.Fatalf("valid email rejected: %v", v.Errors)
	}
}

func TestValidateUserRequiredFields(t *testing.T) {
	user := &User{}
	if err := user.Password.Set("password123"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	v := validator.New()
	ValidateUser(v, user)
	for _, field := range []string{"username", "email", "city"} {
		if v.Errors[field] != "This field is required." {
			t.Errorf("field %q message = %q, want required message", field, v.Errors[field])
		}
	}
}
