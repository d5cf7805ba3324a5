package access

import (
	"context"
	"errors"
	"fmt"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
)

// Actor is the resolved identity of a request: Anonymous, User or Admin.
// The set is closed; switches over it end in a default that denies.
type Actor interface {
	isActor()
	String() string
}

// Anonymous is a request without a valid session.
type Anonymous struct{}

// User is an authenticated account with the user role.
type User struct {
	ID uint
}

// Admin is an authenticated account with the admin role.
type Admin struct {
	ID uint
}

func (Anonymous) isActor() {}
func (User) isActor()      {}
func (Admin) isActor()     {}

func (Anonymous) String() string { return "anonymous" }
func (u User) String() string    { return fmt.Sprintf("user:%d", u.ID) }
func (a Admin) String() string   { return fmt.Sprintf("admin:%d", a.ID) }

// FromRole builds the actor for a stored account.
func FromRole(id uint, role model.Role) Actor {
	switch role {
	case model.RoleAdmin:
		return Admin{ID: id}
	case model.RoleUser:
		return User{ID: id}
	default:
		return Anonymous{}
	}
}

// ActorID returns the account id of an authenticated actor.
func ActorID(a Actor) (uint, bool) {
	switch a := a.(type) {
	case User:
		return a.ID, true
	case Admin:
		return a.ID, true
	default:
		return 0, false
	}
}

// IsAdmin reports whether a carries the admin role.
func IsAdmin(a Actor) bool {
	_, ok := a.(Admin)
	return ok
}

// Resolver looks up the actor behind an opaque session credential.
// An empty or invalid credential resolves to Anonymous with a nil error; an error means the
// credential store could not be consulted.
type Resolver interface {
	ResolveActor(ctx context.Context, credential string) (Actor, error)
}

// CurrentActor resolves credential through r. Store failures come back as ErrIdentityUnavailable
// and must be treated as deny, never as Anonymous.
func CurrentActor(ctx context.Context, r Resolver, credential string) (Actor, error) {
	actor, err := r.ResolveActor(ctx, credential)
	if err != nil {
		if errors.Is(err, apperr.ErrIdentityUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve actor: %w: %w", apperr.ErrIdentityUnavailable, err)
	}
	if actor == nil {
		return Anonymous{}, nil
	}
	return actor, nil
}
