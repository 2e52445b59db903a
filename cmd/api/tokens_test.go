// cmd/api/tokens_test.go
package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestLoginValidation(t *testing.T) {
	app, users, _ := newTestApplication(t)
	ts := newTestServer(t, app)

	registerFixtureUser(t, users, "jcoloney", "jcoloney@example.com", "pa55word1234", false, false)

	tests := []struct {
		name       string
		payload    map[string]string
		wantStatus int
		wantInBody string
	}{
		{
			name:       "missing password",
			payload:    map[string]string{"username": "jcoloney"},
			wantStatus: http.StatusBadRequest,
			wantInBody: "This field is required.",
		},
		{
			name:       "empty password",
			payload:    map[string]string{"username": "jcoloney", "password": ""},
			wantStatus: http.StatusBadRequest,
			wantInBody: "This field is required.",
		},
		{
			name:       "missing username",
			payload:    map[string]string{"password": "pa55word1234"},
			wantStatus: http.StatusBadRequest,
			wantInBody: "This field is required.",
		},
		{
			name:       "wrong password",
			payload:    map[string]string{"username": "jcoloney", "password": "wrongwrong"},
			wantStatus: http.StatusUnauthorized,
			wantInBody: "invalid authentication credentials",
		},
		{
			name:       "unknown username",
			payload:    map[string]string{"username": "ghost", "password": "pa55word1234"},
			wantStatus: http.StatusUnauthorized,
			wantInBody: "invalid authentication credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(http.MethodPost, "/v1/users/login", "", tt.payload)
			if status != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body %s", status, tt.wantStatus, body)
			}
			if !strings.Contains(body, tt.wantInBody) {
				t.Errorf("body %s does not contain %q", body, tt.wantInBody)
			}
		})
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	app, users, _ := newTestApplication(t)
	ts := newTestServer(t, app)

	dormant := registerFixtureUser(t, users, "dormant", "dormant@example.com", "pa55word1234", false, false)
	dormant.IsActive = false
	if err := users.Update(dormant); err != nil {
		t.Fatalf("deactivate fixture user: %v", err)
	}

	// The response is indistinguishable from a wrong password.
	status, body := ts.do(http.MethodPost, "/v1/users/login", "", map[string]string{
		"username": "dormant",
		"password": "pa55word1234",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d, body %s", status, http.StatusUnauthorized, body)
	}
	if !strings.Contains(body, "invalid authentication credentials") {
		t.Errorf("body %s does not carry the generic credentials message", body)
	}
}

func TestTokenVerify(t *testing.T) {
	app, users, _ := newTestApplication(t)
	ts := newTestServer(t, app)

	registerFixtureUser(t, users, "jcoloney", "jcoloney@example.com", "pa55word1234", false, false)
	token := loginAs(t, ts, "jcoloney", "pa55word1234")

	// A freshly issued token verifies and resolves to its owner.
	status, body := ts.do(http.MethodPost, "/v1/users/token-verify", "", map[string]string{"token": token})
	if status != http.StatusOK {
		t.Fatalf("verify valid token: got status %d, body %s", status, body)
	}

	var response struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if response.Token != token {
		t.Errorf("verify did not echo the token back")
	}
	if response.User.Username != "jcoloney" {
		t.Errorf("got username %q, want %q", response.User.Username, "jcoloney")
	}

	// Garbage and tampered tokens are 401s.
	for _, bad := range []string{"not-a-jwt", token + "x"} {
		status, _ = ts.do(http.MethodPost, "/v1/users/token-verify", "", map[string]string{"token": bad})
		if status != http.StatusUnauthorized {
			t.Errorf("verify %q: got status %d, want %d", bad, status, http.StatusUnauthorized)
		}
	}

	// An absent token is a validation failure, not an authentication one.
	status, body = ts.do(http.MethodPost, "/v1/users/token-verify", "", map[string]string{})
	if status != http.StatusBadRequest {
		t.Errorf("verify missing token: got status %d, want %d, body %s", status, http.StatusBadRequest, body)
	}
}

func TestTokenVerifyDeletedSubject(t *testing.T) {
	app, users, _ := newTestApplication(t)
	ts := newTestServer(t, app)

	ghost := registerFixtureUser(t, users, "ghost", "ghost@example.com", "pa55word1234", false, false)
	token := loginAs(t, ts, "ghost", "pa55word1234")

	if err := users.Delete(ghost.ID); err != nil {
		t.Fatalf("delete fixture user: %v", err)
	}

	// The signature still checks out, but the identity no longer exists.
	status, _ := ts.do(http.MethodPost, "/v1/users/token-verify", "", map[string]string{"token": token})
	if status != http.StatusUnauthorized {
		t.Errorf("verify orphaned token: got status %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestTokenRefresh(t *testing.T) {
	app, users, _ := newTestApplication(t)
	ts := newTestServer(t, app)

	registerFixtureUser(t, users, "jcoloney", "jcoloney@example.com", "pa55word1234", false, false)
	token := loginAs(t, ts, "jcoloney", "pa55word1234")

	status, body := ts.do(http.MethodPost, "/v1/users/token-refresh", "", map[string]string{"token": token})
	if status != http.StatusOK {
		t.Fatalf("refresh valid token: got status %d, body %s", status, body)
	}

	var response struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if response.Token == "" {
		t.Fatal("refresh returned an empty token")
	}

	// The renewed token works as a credential in its own right.
	status, body = ts.do(http.MethodGet, "/v1/users", response.Token, nil)
	if status != http.StatusOK {
		t.Errorf("list with refreshed token: got status %d, body %s", status, body)
	}

	// Tokens that never verified do not refresh either.
	status, _ = ts.do(http.MethodPost, "/v1/users/token-refresh", "", map[string]string{"token": "not-a-jwt"})
	if status != http.StatusUnauthorized {
		t.Errorf("refresh garbage token: got status %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	app, users, _ := newTestApplication(t)
	ts := newTestServer(t, app)

	registerFixtureUser(t, users, "jcoloney", "jcoloney@example.com", "pa55word1234", false, false)
	token := loginAs(t, ts, "jcoloney", "pa55word1234")

	// A malformed Authorization header is rejected up front.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/v1/users", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Basic "+token)

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong scheme: got status %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if got := resp.Header.Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("got WWW-Authenticate %q, want %q", got, "Bearer")
	}
}
