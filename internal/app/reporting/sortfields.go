package reporting

// EntityKind names a listable entity
type EntityKind string

const (
	EntitySessions EntityKind = "sessions"
	EntityStudents EntityKind = "students"
)

// DefaultSortField is used whenever a requested sort key is not allowed
const DefaultSortField = "createdAt"

// SortableFields is the closed set of sort keys accepted per entity.
// Stores map these API names to their own columns; raw request values never reach a query.
var SortableFields = map[EntityKind]map[string]struct{}{
	EntitySessions: {
		"createdAt":        {},
		"score":            {},
		"percentage":       {},
		"timeTakenSeconds": {},
		"level":            {},
	},
	EntityStudents: {
		"createdAt":    {},
		"studentName":  {},
		"studentId":    {},
		"mobileNumber": {},
		"lastLoginAt":  {},
	},
}

// SortSpec is a validated sort key and direction
type SortSpec struct {
	Field     string
	Ascending bool
}

// ResolveSort validates sortBy against the entity allow-list.
// Unknown keys fall back to DefaultSortField; only "asc" sorts ascending.
func ResolveSort(kind EntityKind, sortBy, sortOrder string) SortSpec {
	field := DefaultSortField
	if _, ok := SortableFields[kind][sortBy]; ok {
		field = sortBy
	}
	return SortSpec{
		Field:     field,
		Ascending: sortOrder == "asc",
	}
}
