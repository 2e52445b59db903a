// cmd/api/testutil_test.go
// Shared helpers for the handler tests: an application instance wired to
// in-memory store fakes, and a thin HTTP client around httptest.Server.
package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sijanonly/school-library/internal/auth"
	"github.com/sijanonly/school-library/internal/data"
)

// newTestApplication builds an application wired to fresh in-memory stores,
// a discard logger, and a short-lived test token service. The rate limiter
// is disabled so tests can hammer the server freely.
func newTestApplication(t *testing.T) (*applicationDependencies, *mockUserStore, *mockBookStore) {
	t.Helper()

	users := newMockUserStore()
	books := newMockBookStore()

	var settings serverConfig
	settings.environment = "test"
	settings.auth.scheme = "Bearer"
	settings.limiter.enabled = false

	app := &applicationDependencies{
		config: settings,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.Models{
			Users: users,
			Books: books,
		},
		tokens: &auth.TokenService{
			Secret:        []byte("test-secret-not-for-production"),
			Issuer:        "school-library-test",
			TTL:           time.Hour,
			RefreshWindow: time.Hour,
		},
	}
	return app, users, books
}

// testServer wraps httptest.Server with helpers for JSON round-trips.
type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T, app *applicationDependencies) *testServer {
	t.Helper()
	ts := httptest.NewServer(app.routes())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, t: t}
}

// do sends a request with an optional JSON body and bearer token, returning
// the status code and raw response body.
func (ts *testServer) do(method, path, token string, body any) (int, string) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		ts.t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		ts.t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, string(respBody)
}

// registerFixtureUser inserts a user directly into the store, bypassing the
// HTTP surface, and returns it. Used to arrange actors with specific flags.
func registerFixtureUser(t *testing.T, store *mockUserStore, username, email, plaintext string, staff, super bool) *data.User {
	t.Helper()

	user := &data.User{
		Username:    username,
		Email:       email,
		City:        "Cincinnati",
		IsActive:    true,
		IsStaff:     staff,
		IsSuperuser: super,
	}
	if err := user.Password.Set(plaintext); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := store.Insert(user); err != nil {
		t.Fatalf("insert fixture user: %v", err)
	}
	return user
}

// loginAs exchanges credentials for a token through the real login endpoint.
func loginAs(t *testing.T, ts *testServer, username, password string) string {
	t.Helper()

	status, body := ts.do(http.MethodPost, "/v1/users/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login as %s: status %d, body %s", username, status, body)
	}

	var response struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return response.Token
}

// mockUserStore is an in-memory data.UserStore with the same uniqueness and
// not-found semantics as the Postgres implementation.
type mockUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*data.User
	order []uuid.UUID // insertion order, for newest-first listing
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*data.User)}
}

func (s *mockUserStore) Insert(user *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return data.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return data.ErrDuplicateUsername
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	clone := *user
	s.users[user.ID] = &clone
	s.order = append(s.order, user.ID)
	return nil
}

func (s *mockUserStore) GetByID(id uuid.UUID) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *mockUserStore) GetByUsername(username string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (s *mockUserStore) GetAll(filters data.Filters) ([]*data.User, data.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first: reverse insertion order.
	users := []*data.User{}
	for i := len(s.order) - 1; i >= 0; i-- {
		if user, ok := s.users[s.order[i]]; ok {
			clone := *user
			users = append(users, &clone)
		}
	}
	return users, data.Metadata{TotalRecords: len(users)}, nil
}

func (s *mockUserStore) Update(user *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return data.ErrRecordNotFound
	}
	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return data.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return data.ErrDuplicateUsername
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *mockUserStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(s.users, id)
	return nil
}

// count reports how many user records the store holds.
func (s *mockUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// mockBookStore is an in-memory data.BookStore. It also holds the author,
// tag, publisher, and book-type fixtures that link-set operations and eager
// loading resolve against.
type mockBookStore struct {
	mu         sync.Mutex
	nextID     int64
	books      map[int64]*data.Book
	authors    map[int64]data.Author
	tags       map[int64]data.Tag
	publishers map[int64]data.Publisher
	bookTypes  map[int64]data.BookType
	authorIDs  map[int64][]int64 // book id → linked author ids
	keywordIDs map[int64][]int64 // book id → linked tag ids
}

func newMockBookStore() *mockBookStore {
	return &mockBookStore{
		nextID:     1,
		books:      make(map[int64]*data.Book),
		authors:    make(map[int64]data.Author),
		tags:       make(map[int64]data.Tag),
		publishers: make(map[int64]data.Publisher),
		bookTypes:  make(map[int64]data.BookType),
		authorIDs:  make(map[int64][]int64),
		keywordIDs: make(map[int64][]int64),
	}
}

// addAuthor, addTag, addPublisher, and addBookType seed the relation
// fixtures link operations resolve against.
func (s *mockBookStore) addAuthor(a data.Author) data.Author {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	s.nextID++
	s.authors[a.ID] = a
	return a
}

func (s *mockBookStore) addTag(tag data.Tag) data.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag.ID = s.nextID
	s.nextID++
	tag.Slug = data.Slugify(tag.Name)
	s.tags[tag.ID] = tag
	return tag
}

func (s *mockBookStore) addPublisher(p data.Publisher) data.Publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.publishers[p.ID] = p
	return p
}

func (s *mockBookStore) addBookType(bt data.BookType) data.BookType {
	s.mu.Lock()
	defer s.mu.Unlock()
	bt.ID = s.nextID
	s.nextID++
	s.bookTypes[bt.ID] = bt
	return bt
}

// checkRelations validates every referenced id, mirroring the constraint
// checks the SQL store's transaction performs. Callers must hold s.mu.
func (s *mockBookStore) checkRelations(book *data.Book, authorIDs, tagIDs []int64) error {
	if book.PublisherID != nil {
		if _, ok := s.publishers[*book.PublisherID]; !ok {
			return data.ErrUnknownPublisher
		}
	}
	if book.BookTypeID != nil {
		if _, ok := s.bookTypes[*book.BookTypeID]; !ok {
			return data.ErrUnknownBookType
		}
	}
	for _, id := range authorIDs {
		if _, ok := s.authors[id]; !ok {
			return data.ErrUnknownAuthor
		}
	}
	for _, id := range tagIDs {
		if _, ok := s.tags[id]; !ok {
			return data.ErrUnknownTag
		}
	}
	return nil
}

// Insert validates everything before mutating any state, matching the
// all-or-nothing transaction of the SQL store: a bad relation id leaves no
// record behind.
func (s *mockBookStore) Insert(book *data.Book, authorIDs, tagIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRelations(book, authorIDs, tagIDs); err != nil {
		return err
	}
	for _, existing := range s.books {
		if book.Barcode != nil && existing.Barcode != nil && *book.Barcode == *existing.Barcode {
			return data.ErrDuplicateBarcode
		}
	}

	book.ID = s.nextID
	s.nextID++
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt

	clone := *book
	s.books[book.ID] = &clone
	s.authorIDs[book.ID] = append([]int64{}, authorIDs...)
	s.keywordIDs[book.ID] = append([]int64{}, tagIDs...)
	return nil
}

// load assembles a fully eager-loaded copy of the stored book.
// Callers must hold s.mu.
func (s *mockBookStore) load(stored *data.Book) *data.Book {
	book := *stored
	book.Authors = []data.Author{}
	book.Keywords = []data.Tag{}

	if book.PublisherID != nil {
		if p, ok := s.publishers[*book.PublisherID]; ok {
			clone := p
			book.Publisher = &clone
		}
	}
	if book.BookTypeID != nil {
		if bt, ok := s.bookTypes[*book.BookTypeID]; ok {
			clone := bt
			book.BookType = &clone
		}
	}
	for _, id := range s.authorIDs[book.ID] {
		if a, ok := s.authors[id]; ok {
			book.Authors = append(book.Authors, a)
		}
	}
	for _, id := range s.keywordIDs[book.ID] {
		if tag, ok := s.tags[id]; ok {
			book.Keywords = append(book.Keywords, tag)
		}
	}
	return &book
}

func (s *mockBookStore) Get(id int64) (*data.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.books[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return s.load(stored), nil
}

func (s *mockBookStore) GetAll(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := []*data.Book{}
	for _, stored := range s.books {
		books = append(books, s.load(stored))
	}
	// Newest first, matching the SQL ordering.
	sort.Slice(books, func(i, j int) bool {
		if books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].ID < books[j].ID
		}
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books, data.Metadata{TotalRecords: len(books)}, nil
}

// Update validates everything before mutating any state. A nil authorIDs or
// tagIDs slice leaves that link set untouched; an empty non-nil slice clears
// it. A bad relation id leaves the stored record entirely unchanged.
func (s *mockBookStore) Update(book *data.Book, authorIDs, tagIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.books[book.ID]
	if !ok {
		return data.ErrRecordNotFound
	}
	if err := s.checkRelations(book, authorIDs, tagIDs); err != nil {
		return err
	}
	for id, existing := range s.books {
		if id == book.ID {
			continue
		}
		if book.Barcode != nil && existing.Barcode != nil && *book.Barcode == *existing.Barcode {
			return data.ErrDuplicateBarcode
		}
	}

	book.CreatedAt = stored.CreatedAt
	book.UpdatedAt = time.Now()
	clone := *book
	s.books[book.ID] = &clone
	if authorIDs != nil {
		s.authorIDs[book.ID] = append([]int64{}, authorIDs...)
	}
	if tagIDs != nil {
		s.keywordIDs[book.ID] = append([]int64{}, tagIDs...)
	}
	return nil
}

func (s *mockBookStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(s.books, id)
	delete(s.authorIDs, id)
	delete(s.keywordIDs, id)
	return nil
}

// count reports how many book records the store holds.
func (s *mockBookStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}
