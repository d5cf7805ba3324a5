package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-planner/internal/query"
)

// applyFilter translates f into WHERE clauses. Columns come only from schema, never from input.
func applyFilter(db *gorm.DB, schema query.Schema, f query.Filter) (*gorm.DB, error) {
	for _, c := range f.Conditions() {
		field, ok := schema[c.Field]
		if !ok {
			return nil, fmt.Errorf("filter on unknown field %q", c.Field)
		}
		col := clause.Column{Name: field.Column}
		switch c.Op {
		case query.Equals:
			if c.Value == nil {
				db = db.Where("? IS NULL", col)
			} else {
				db = db.Where("? = ?", col, c.Value)
			}
		case query.NotEquals:
			if c.Value == nil {
				db = db.Where("? IS NOT NULL", col)
			} else {
				db = db.Where("(? <> ? OR ? IS NULL)", col, c.Value, col)
			}
		case query.In:
			values, ok := c.Value.([]any)
			if !ok || len(values) == 0 {
				db = db.Where("1 = 0")
				continue
			}
			db = db.Where("? IN ?", col, values)
		case query.Exists:
			if exists, _ := c.Value.(bool); exists {
				db = db.Where("? IS NOT NULL", col)
			} else {
				db = db.Where("? IS NULL", col)
			}
		case query.Contains:
			s, _ := c.Value.(string)
			if field.Type == query.TypeJSONList {
				element, err := json.Marshal(s)
				if err != nil {
					return nil, fmt.Errorf("encode %q: %w", c.Field, err)
				}
				db = db.Where("CAST(? AS TEXT) LIKE ? ESCAPE '\\'", col, "%"+likeEscape(string(element))+"%")
			} else {
				db = db.Where("LOWER(?) LIKE ? ESCAPE '\\'", col, "%"+likeEscape(strings.ToLower(s))+"%")
			}
		case query.GreaterThan:
			db = db.Where("? > ?", col, c.Value)
		case query.LessThan:
			db = db.Where("? < ?", col, c.Value)
		default:
			return nil, fmt.Errorf("unsupported operator %q on %q", c.Op, c.Field)
		}
	}
	return db, nil
}

func applyPage(db *gorm.DB, schema query.Schema, p query.Page) (*gorm.DB, error) {
	sortField := p.Sort
	if sortField == "" {
		sortField = "id"
	}
	field, ok := schema[sortField]
	if !ok {
		return nil, fmt.Errorf("sort on unknown field %q", sortField)
	}
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: field.Column}, Desc: p.Desc})
	if field.Column != "id" {
		db = db.Order("id ASC")
	}
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
		if p.Page > 1 {
			db = db.Offset(p.Offset())
		}
	}
	return db, nil
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeEscape neutralizes LIKE wildcards in user input.
func likeEscape(s string) string {
	return likeReplacer.Replace(s)
}
