package domain

// Zone thresholds for a hovered item's bounding box, measured as a vertical
// offset ratio (0 = top edge, 1 = bottom edge). Ratios between the two keep
// the previously computed target so the insertion marker does not oscillate
// while the pointer sits near an item's vertical center.
const (
	dragZoneAbove = 0.45
	dragZoneBelow = 0.55
)

type dragState int

const (
	dragIdle dragState = iota
	dragActive
)

// DragResolver translates a pointer drag over a vertically stacked list
// into a target insertion index. It is a two-state machine: Idle until an
// item is grabbed, Dragging until release or cancellation. All state is
// local to one interactive session; nothing is persisted until release.
type DragResolver struct {
	state        dragState
	draggedIndex int
	count        int
	target       int
	hasTarget    bool
}

// NewDragResolver returns a resolver in the Idle state.
func NewDragResolver() *DragResolver {
	return &DragResolver{target: -1}
}

// Grab starts a drag of the item at index within a list of count items.
func (d *DragResolver) Grab(index, count int) error {
	if count <= 0 || index < 0 || index >= count {
		return ValidationError{Field: "index", Rule: "must address an existing list item"}
	}
	d.state = dragActive
	d.draggedIndex = index
	d.count = count
	d.target = -1
	d.hasTarget = false
	return nil
}

// Hover processes a pointer position over the item at hoverIndex with
// vertical offset ratio within that item's bounding box. Positions inside
// the deadband retain the previous target. A candidate that would drop the
// item back into its own slot suppresses the marker instead of leaving a
// stale target behind.
func (d *DragResolver) Hover(hoverIndex int, ratio float64) {
	if d.state != dragActive || hoverIndex < 0 || hoverIndex >= d.count {
		return
	}
	var candidate int
	switch {
	case ratio < dragZoneAbove:
		candidate = hoverIndex
	case ratio > dragZoneBelow:
		candidate = hoverIndex + 1
	default:
		return
	}
	if candidate == d.draggedIndex || candidate == d.draggedIndex+1 {
		d.target = -1
		d.hasTarget = false
		return
	}
	d.target = candidate
	d.hasTarget = true
}

// Target reports the current insertion index and whether one is set.
func (d *DragResolver) Target() (int, bool) {
	return d.target, d.hasTarget
}

// Release ends the drag. When a valid target was set it reports the move to
// apply: from is the dragged item's original index and insertAt the index
// to reinsert it at after removal (already adjusted down by one when the
// target sat past the original position). The resolver returns to Idle
// unconditionally.
func (d *DragResolver) Release() (from, insertAt int, ok bool) {
	if d.state != dragActive {
		return 0, 0, false
	}
	from = d.draggedIndex
	target := d.target
	ok = d.hasTarget
	d.reset()
	if !ok {
		return 0, 0, false
	}
	insertAt = target
	if target > from {
		insertAt = target - 1
	}
	return from, insertAt, true
}

// Cancel aborts the drag with no reorder, e.g. when the pointer leaves the
// list bounds entirely.
func (d *DragResolver) Cancel() {
	d.reset()
}

func (d *DragResolver) reset() {
	d.state = dragIdle
	d.draggedIndex = 0
	d.count = 0
	d.target = -1
	d.hasTarget = false
}

// ApplyMove removes the element at from and reinserts it at insertAt,
// returning the resulting id sequence. insertAt addresses the sequence
// after removal, matching what Release reports. The input is not modified.
func ApplyMove(ids []int64, from, insertAt int) []int64 {
	out := make([]int64, 0, len(ids))
	if from < 0 || from >= len(ids) {
		return append(out, ids...)
	}
	moved := ids[from]
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(out) {
		insertAt = len(out)
	}
	out = append(out, 0)
	copy(out[insertAt+1:], out[insertAt:])
	out[insertAt] = moved
	return out
}
