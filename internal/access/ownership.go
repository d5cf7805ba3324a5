package access

import "todo-planner/internal/apperr"

// AssignOwner returns the owner to persist on a new record. An explicit owner is honored only for
// admins creating on behalf of someone; users always own what they create.
func AssignOwner(a Actor, requested *uint) (uint, error) {
	switch a := a.(type) {
	case Admin:
		if requested != nil && *requested != 0 {
			return *requested, nil
		}
		return a.ID, nil
	case User:
		return a.ID, nil
	default:
		return 0, apperr.Unauthorized("must be logged in")
	}
}
