package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundrift/soundrift/internal/db"
	"github.com/soundrift/soundrift/pkg/logger"
	"github.com/soundrift/soundrift/pkg/middleware"
)

// UserStore is the persistence surface the resolver needs.
type UserStore interface {
	GetBySubject(ctx context.Context, subject string) (*db.User, error)
	Insert(ctx context.Context, user *db.User) (*db.User, error)
	Get(ctx context.Context, id int64) (*db.User, error)
}

// Resolver maps an inbound bearer credential to a durable local user record,
// creating the record on first sight of a subject. Provider-side failures
// never surface to callers; they degrade to an unauthenticated result.
type Resolver struct {
	verifier middleware.Verifier
	users    UserStore
}

func NewResolver(v middleware.Verifier, users UserStore) *Resolver {
	return &Resolver{verifier: v, users: users}
}

// Resolve returns the caller's local identity, or (nil, nil) when no
// identity can be established. Only datastore failures return an error.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*middleware.Identity, error) {
	if rawToken == "" || r.verifier == nil {
		return nil, nil
	}

	token, err := r.verifier.Verify(ctx, rawToken)
	if err != nil {
		logger.Debugf("identity: token verification failed: %v", err)
		return nil, nil
	}
	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := token.Claims(&claims); err != nil {
		logger.Debugf("identity: claim extraction failed: %v", err)
		return nil, nil
	}
	if claims.Sub == "" {
		return nil, nil
	}

	user, err := r.users.GetBySubject(ctx, claims.Sub)
	if errors.Is(err, db.ErrNotFound) {
		user, err = r.insertOrRelookup(ctx, claims.Sub, claims.Name, claims.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving user for subject: %w", err)
	}

	id := &middleware.Identity{UserID: user.ID, Subject: user.AuthSubject}
	if user.Name != nil {
		id.Name = *user.Name
	}
	if user.Email != nil {
		id.Email = *user.Email
	}
	return id, nil
}

// insertOrRelookup creates the user row for a first-seen subject. Two
// requests may race to insert the same subject; the unique constraint on
// auth_subject arbitrates, and the loser re-resolves by lookup.
func (r *Resolver) insertOrRelookup(ctx context.Context, sub, name, email string) (*db.User, error) {
	u := &db.User{AuthSubject: sub}
	if name != "" {
		u.Name = &name
	}
	if email != "" {
		u.Email = &email
	}
	created, err := r.users.Insert(ctx, u)
	if errors.Is(err, db.ErrNotFound) {
		return r.users.GetBySubject(ctx, sub)
	}
	return created, err
}

// Lookup returns the durable user row behind an identity (used by /api/me).
func (r *Resolver) Lookup(ctx context.Context, id *middleware.Identity) (*db.User, error) {
	return r.users.Get(ctx, id.UserID)
}
