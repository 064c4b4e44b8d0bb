package domain

// InsertPosition selects where a newly created task lands in the list.
type InsertPosition int

const (
	// InsertStart places the new task before all existing ones: every
	// existing row's sort order is incremented by one and the new task gets
	// order 0. Both steps happen inside one storage transaction.
	InsertStart InsertPosition = iota
	// InsertEnd places the new task after the current maximum sort order.
	InsertEnd
)

// ParseInsertPosition maps the wire value to an InsertPosition. The empty
// string defaults to InsertStart (newest-first ordering).
func ParseInsertPosition(s string) (InsertPosition, error) {
	switch s {
	case "", "start":
		return InsertStart, nil
	case "end":
		return InsertEnd, nil
	default:
		return 0, ValidationError{Field: "position", Rule: "must be \"start\" or \"end\""}
	}
}

// OrderAssignment pairs a task id with the sort order it should receive.
type OrderAssignment struct {
	ID        int64
	SortOrder int
}

// BuildOrderAssignments converts a full id sequence in desired order into
// index-based sort-order assignments. The caller supplies the list already
// in final order; order is never re-derived from anything else. Shape
// violations are rejected before any assignment is produced.
func BuildOrderAssignments(ids []int64) ([]OrderAssignment, error) {
	if len(ids) == 0 {
		return nil, ValidationError{Field: "taskIds", Rule: "must not be empty"}
	}
	seen := make(map[int64]struct{}, len(ids))
	assignments := make([]OrderAssignment, len(ids))
	for i, id := range ids {
		if id <= 0 {
			return nil, ValidationError{Field: "taskIds", Rule: "must contain positive integers"}
		}
		if _, dup := seen[id]; dup {
			return nil, ValidationError{Field: "taskIds", Rule: "must not contain duplicates"}
		}
		seen[id] = struct{}{}
		assignments[i] = OrderAssignment{ID: id, SortOrder: i}
	}
	return assignments, nil
}
