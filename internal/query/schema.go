package query

// FieldType drives value conversion and the operators a field accepts.
type FieldType int

const (
	TypeID FieldType = iota
	TypeBool
	TypeString
	TypeTime
	TypeJSONList
)

// Field maps a wire field name onto a storage column.
type Field struct {
	Column string
	Type   FieldType
}

// Schema is the whitelist of filterable and sortable fields of one record kind.
type Schema map[string]Field

// OwnerField is the wire name of the owning-user field on every owned kind.
const OwnerField = "user"

var TaskSchema = Schema{
	"id":        {Column: "id", Type: TypeID},
	OwnerField:  {Column: "user_id", Type: TypeID},
	"category":  {Column: "category_id", Type: TypeID},
	"completed": {Column: "is_completed", Type: TypeBool},
	"title":     {Column: "title", Type: TypeString},
	"dueDate":   {Column: "due_date", Type: TypeTime},
	"reminder":  {Column: "reminder", Type: TypeTime},
	"hashtags":  {Column: "hashtags", Type: TypeJSONList},
	"createdAt": {Column: "created_at", Type: TypeTime},
}

var CategorySchema = Schema{
	"id":           {Column: "id", Type: TypeID},
	OwnerField:     {Column: "user_id", Type: TypeID},
	"name":         {Column: "name", Type: TypeString},
	"isPredefined": {Column: "is_predefined", Type: TypeBool},
	"createdAt":    {Column: "created_at", Type: TypeTime},
}

// Accepts reports whether op may be applied to a field of type t.
func (t FieldType) Accepts(op Op) bool {
	switch op {
	case Equals, NotEquals, In:
		return t != TypeJSONList
	case Exists:
		return true
	case Contains:
		return t == TypeString || t == TypeJSONList
	case GreaterThan, LessThan:
		return t == TypeID || t == TypeTime
	default:
		return false
	}
}
