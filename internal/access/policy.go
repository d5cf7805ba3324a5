package access

import (
	"fmt"

	"todo-planner/internal/apperr"
	"todo-planner/internal/query"
)

// Kind is an owned record kind.
type Kind string

const (
	KindCategory Kind = "categories"
	KindTask     Kind = "tasks"
)

// Operation is what the actor attempts on a kind.
type Operation string

const (
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpWrite  Operation = "write"
	OpDelete Operation = "delete"
)

func (k Kind) valid() bool {
	return k == KindCategory || k == KindTask
}

func (op Operation) valid() bool {
	switch op {
	case OpRead, OpList, OpWrite, OpDelete:
		return true
	}
	return false
}

// Authorize decides whether a may perform op on kind. When granted it returns the filter every
// affected record must satisfy: match-all for admins, ownership for users.
func Authorize(a Actor, kind Kind, op Operation) (query.Filter, error) {
	if !kind.valid() || !op.valid() {
		return query.Filter{}, fmt.Errorf("authorize %s %s: %w", op, kind, apperr.ErrForbidden)
	}
	switch a := a.(type) {
	case Admin:
		return query.MatchAll(), nil
	case User:
		return OwnedBy(a.ID), nil
	case Anonymous:
		return query.Filter{}, apperr.Unauthorized("must be logged in")
	default:
		return query.Filter{}, apperr.Unauthorized("unknown actor")
	}
}

// OwnedBy is the ownership predicate for userID.
func OwnedBy(userID uint) query.Filter {
	return query.Where(query.OwnerField, query.Equals, userID)
}

// CanAccess is the record-level form of Authorize for an already loaded record.
func CanAccess(a Actor, ownerID uint) bool {
	switch a := a.(type) {
	case Admin:
		return true
	case User:
		return a.ID == ownerID
	default:
		return false
	}
}
