package access

import "todo-planner/internal/query"

// Scope returns the query to execute for a list by a. Admins run requested unchanged; users get
// the ownership predicate ANDed in unconditionally, even when requested already names an owner.
func Scope(a Actor, kind Kind, requested query.Filter) (query.Filter, error) {
	return scope(a, kind, OpList, requested)
}

// ScopeRecord returns the filter selecting record id for op, restricted like Scope.
// Update and delete execute against it so a non-owned id simply matches nothing.
func ScopeRecord(a Actor, kind Kind, op Operation, id uint) (query.Filter, error) {
	return scope(a, kind, op, query.Where("id", query.Equals, id))
}

func scope(a Actor, kind Kind, op Operation, requested query.Filter) (query.Filter, error) {
	owned, err := Authorize(a, kind, op)
	if err != nil {
		return query.Filter{}, err
	}
	if IsAdmin(a) {
		return requested, nil
	}
	return requested.Merge(owned), nil
}
