package callflow

// ScrollState tracks where the panel is in its scroll-into-view cycle.
type ScrollState int

const (
	// ScrollIdle: nothing selected.
	ScrollIdle ScrollState = iota
	// ScrollPending: a new selection was made and the scroll has not run yet.
	ScrollPending
	// ScrollDone: the scroll for the current selection already ran; repeated
	// renders of the same selection must not scroll again.
	ScrollDone
)

// ScrollCoordinator decides when the detail panel scrolls a card into view.
// A scroll fires exactly once per distinct selection change; re-rendering
// while the same event stays selected never re-triggers it. The coordinator
// is written from a single goroutine alongside the rest of the view state.
type ScrollCoordinator struct {
	state    ScrollState
	selected int64
}

// NewScrollCoordinator starts in the idle state.
func NewScrollCoordinator() *ScrollCoordinator {
	return &ScrollCoordinator{state: ScrollIdle}
}

// Select records a selection. It returns true when the selection changed and
// a scroll should be scheduled.
func (c *ScrollCoordinator) Select(eventID int64) bool {
	if c.state != ScrollIdle && c.selected == eventID {
		return false
	}
	c.selected = eventID
	c.state = ScrollPending
	return true
}

// MarkScrolled consumes the pending scroll.
func (c *ScrollCoordinator) MarkScrolled() {
	if c.state == ScrollPending {
		c.state = ScrollDone
	}
}

// Clear resets to idle, e.g. when the call-flow view closes.
func (c *ScrollCoordinator) Clear() {
	c.state = ScrollIdle
	c.selected = 0
}

// State exposes the current phase.
func (c *ScrollCoordinator) State() ScrollState {
	return c.state
}

// Selected returns the current selection and whether one exists.
func (c *ScrollCoordinator) Selected() (int64, bool) {
	if c.state == ScrollIdle {
		return 0, false
	}
	return c.selected, true
}
