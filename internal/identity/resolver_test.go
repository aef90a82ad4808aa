package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/soundrift/soundrift/internal/db"
	"github.com/soundrift/soundrift/pkg/middleware"
)

// fakeToken implements middleware.Token
type fakeToken struct {
	sub, name, email string
}

func (t *fakeToken) Claims(v interface{}) error {
	c, ok := v.(*struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	})
	if !ok {
		return fmt.Errorf("unsupported claims type %T", v)
	}
	c.Sub = t.sub
	c.Name = t.name
	c.Email = t.email
	return nil
}

// fakeVerifier implements middleware.Verifier
type fakeVerifier struct {
	tokens map[string]*fakeToken
}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if t, ok := f.tokens[raw]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// fakeUserStore mimics the unique-constraint arbitration of the real
// repository: Insert fails with ErrNotFound when the subject already exists.
type fakeUserStore struct {
	nextID  int64
	bySub   map[string]*db.User
	inserts int
	// raceWith, when set, inserts a competing row for the subject just
	// before Insert runs, simulating a concurrent first-time resolution.
	raceWith string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, bySub: map[string]*db.User{}}
}

func (f *fakeUserStore) GetBySubject(ctx context.Context, subject string) (*db.User, error) {
	if u, ok := f.bySub[subject]; ok {
		return u, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeUserStore) Get(ctx context.Context, id int64) (*db.User, error) {
	for _, u := range f.bySub {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeUserStore) Insert(ctx context.Context, user *db.User) (*db.User, error) {
	if f.raceWith == user.AuthSubject {
		f.bySub[user.AuthSubject] = &db.User{ID: f.nextID, AuthSubject: user.AuthSubject, CreatedAt: time.Now().UTC()}
		f.nextID++
		f.raceWith = ""
	}
	if _, exists := f.bySub[user.AuthSubject]; exists {
		return nil, db.ErrNotFound
	}
	f.inserts++
	created := &db.User{ID: f.nextID, AuthSubject: user.AuthSubject, Name: user.Name, Email: user.Email, CreatedAt: time.Now().UTC()}
	f.bySub[user.AuthSubject] = created
	f.nextID++
	return created, nil
}

func testVerifier() *fakeVerifier {
	return &fakeVerifier{tokens: map[string]*fakeToken{
		"tok-alice": {sub: "sub-alice", name: "Alice", email: "alice@example.com"},
		"tok-nosub": {},
	}}
}

func TestResolve_NoToken(t *testing.T) {
	r := NewResolver(testVerifier(), newFakeUserStore())
	id, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != nil {
		t.Fatalf("expected unauthenticated, got %+v", id)
	}
}

func TestResolve_InvalidTokenDegrades(t *testing.T) {
	r := NewResolver(testVerifier(), newFakeUserStore())
	id, err := r.Resolve(context.Background(), "garbage")
	if err != nil {
		t.Fatalf("provider failure must not surface: %v", err)
	}
	if id != nil {
		t.Fatalf("expected unauthenticated, got %+v", id)
	}
}

func TestResolve_MissingSubjectDegrades(t *testing.T) {
	r := NewResolver(testVerifier(), newFakeUserStore())
	id, err := r.Resolve(context.Background(), "tok-nosub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != nil {
		t.Fatalf("expected unauthenticated for absent subject, got %+v", id)
	}
}

func TestResolve_CreatesOnFirstSight(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(testVerifier(), store)

	id, err := r.Resolve(context.Background(), "tok-alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil {
		t.Fatal("expected identity, got nil")
	}
	if id.Subject != "sub-alice" || id.Name != "Alice" || id.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if store.inserts != 1 {
		t.Fatalf("expected one insert, got %d", store.inserts)
	}
}

func TestResolve_StableAcrossResolutions(t *testing.T) {
	store := newFakeUserStore()
	r := NewResolver(testVerifier(), store)

	first, err := r.Resolve(context.Background(), "tok-alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Resolve(context.Background(), "tok-alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.UserID != second.UserID {
		t.Fatalf("user id changed across resolutions: %d vs %d", first.UserID, second.UserID)
	}
	if store.inserts != 1 {
		t.Fatalf("expected exactly one user row, got %d inserts", store.inserts)
	}
}

func TestResolve_DuplicateRaceRelooksUp(t *testing.T) {
	store := newFakeUserStore()
	store.raceWith = "sub-alice"
	r := NewResolver(testVerifier(), store)

	id, err := r.Resolve(context.Background(), "tok-alice")
	if err != nil {
		t.Fatalf("losing the insert race must not surface: %v", err)
	}
	if id == nil {
		t.Fatal("expected identity from re-lookup, got nil")
	}
	if store.inserts != 0 {
		t.Fatalf("loser must not insert, got %d inserts", store.inserts)
	}
}
