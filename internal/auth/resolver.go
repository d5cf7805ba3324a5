package auth

import (
	"context"
	"errors"
	"fmt"

	"todo-planner/internal/access"
	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
)

// UserLookup is the part of the user store the resolver needs.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// SessionResolver resolves session tokens against the user store. The role comes from the stored
// account, not from the token, so a role change takes effect on the next request.
type SessionResolver struct {
	issuer *Issuer
	users  UserLookup
}

func NewSessionResolver(issuer *Issuer, users UserLookup) *SessionResolver {
	return &SessionResolver{issuer: issuer, users: users}
}

func (r *SessionResolver) ResolveActor(ctx context.Context, credential string) (access.Actor, error) {
	if credential == "" {
		return access.Anonymous{}, nil
	}
	id, _, err := r.issuer.Parse(credential)
	if err != nil {
		return access.Anonymous{}, nil
	}
	user, err := r.users.FindByID(ctx, id)
	switch {
	case err == nil:
		return access.FromRole(user.ID, user.Role), nil
	case errors.Is(err, apperr.ErrNotFound):
		return access.Anonymous{}, nil
	default:
		return nil, fmt.Errorf("load session user: %w: %w", apperr.ErrIdentityUnavailable, err)
	}
}
