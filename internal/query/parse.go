package query

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"todo-planner/internal/apperr"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

var whereKey = regexp.MustCompile(`^where\[([A-Za-z]+)\]\[([a-z_]+)\]$`)

// ParseWhere builds a filter from `where[field][op]=value` parameters. Other keys are ignored.
// Keys are visited in sorted order so the same query string always yields the same filter.
func ParseWhere(values url.Values, schema Schema) (Filter, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.HasPrefix(k, "where[") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	v := &apperr.ValidationError{}
	f := MatchAll()
	for _, key := range keys {
		m := whereKey.FindStringSubmatch(key)
		if m == nil {
			v.Add(key, "malformed filter key")
			continue
		}
		name, op := m[1], Op(m[2])
		field, ok := schema[name]
		if !ok {
			v.Add(name, "unknown field")
			continue
		}
		if _, ok := knownOps[op]; !ok || !field.Type.Accepts(op) {
			v.Add(name, fmt.Sprintf("operator %q not supported", op))
			continue
		}
		for _, raw := range values[key] {
			val, err := convert(field.Type, op, strings.TrimSpace(raw))
			if err != nil {
				v.Add(name, err.Error())
				continue
			}
			f = f.And(Condition{Field: name, Op: op, Value: val})
		}
	}
	if err := v.Err(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func convert(t FieldType, op Op, raw string) (any, error) {
	switch op {
	case Exists:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected true or false")
		}
		return b, nil
	case In:
		parts := strings.Split(raw, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			val, err := scalar(t, strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case Equals, NotEquals:
		if raw == "null" {
			return nil, nil
		}
	case Contains:
		if t == TypeJSONList {
			return NormalizeTag(raw), nil
		}
		return raw, nil
	}
	return scalar(t, raw)
}

func scalar(t FieldType, raw string) (any, error) {
	switch t {
	case TypeID:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("expected a positive id")
		}
		return uint(n), nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected true or false")
		}
		return b, nil
	case TypeTime:
		return ParseTime(raw)
	default:
		return raw, nil
	}
}

// ParseTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseTime(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("expected RFC 3339 time or YYYY-MM-DD date")
}

// NormalizeTag strips a leading '#', trims and lowercases a hashtag.
func NormalizeTag(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "#")))
}
