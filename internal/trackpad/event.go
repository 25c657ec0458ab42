package trackpad

// Role is the function a touch contact or a button zone is bound to.
type Role int

const (
	RoleMove Role = iota
	RolePrimary
	RoleSecondary

	numRoles = 3
)

func (r Role) String() string {
	switch r {
	case RoleMove:
		return "move"
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	}
	return "unknown"
}

// button returns the DOM MouseEvent.button value for the role.
func (r Role) button() int {
	if r == RoleSecondary {
		return 2
	}
	return 0
}

// mask returns the DOM MouseEvent.buttons bit for the role.
func (r Role) mask() int {
	switch r {
	case RolePrimary:
		return 1
	case RoleSecondary:
		return 2
	}
	return 0
}

// Kind is the type of a synthesized event.
type Kind int

const (
	KindPress Kind = iota
	KindRelease
	KindClick
	KindContextClick
	KindMotion
	KindEnter
	KindLeave
	KindOver
	KindOut
	KindDragStart
	KindDrag
	KindDragOver
	KindDrop
	KindDragEnd
)

var kindNames = [...]string{
	KindPress:        "mousedown",
	KindRelease:      "mouseup",
	KindClick:        "click",
	KindContextClick: "contextmenu",
	KindMotion:       "mousemove",
	KindEnter:        "mouseenter",
	KindLeave:        "mouseleave",
	KindOver:         "mouseover",
	KindOut:          "mouseout",
	KindDragStart:    "dragstart",
	KindDrag:         "drag",
	KindDragOver:     "dragover",
	KindDrop:         "drop",
	KindDragEnd:      "dragend",
}

// String returns the DOM event type name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsDrag reports whether k belongs to the drag-and-drop family.
func (k Kind) IsDrag() bool {
	return k >= KindDragStart
}

// Event is a synthesized pointer or drag event.
type Event struct {
	Kind Kind
	// X and Y are client coordinates: the cursor position plus the hotspot.
	X, Y       float64
	Button     int
	Buttons    int
	Bubbles    bool
	Cancelable bool
}

// Type returns the DOM event type name.
func (e Event) Type() string { return e.Kind.String() }

// Target is an element events can be dispatched to. Targets are compared
// with ==, so implementations should be pointers with a stable identity.
type Target interface {
	// Attached reports whether the element is still part of the document.
	Attached() bool
}

// HitTester resolves the topmost element at a surface coordinate. It
// returns nil when nothing is there.
type HitTester interface {
	ElementAt(x, y float64) Target
}

// Dispatcher delivers synthesized events to their target.
type Dispatcher interface {
	Dispatch(t Target, ev Event)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(t Target, ev Event)

// Dispatch calls f(t, ev).
func (f DispatcherFunc) Dispatch(t Target, ev Event) { f(t, ev) }

// Cursor renders the cursor glyph on the surface.
type Cursor interface {
	Show(p Point)
	Move(p Point)
	Hide()
}

// Scroller scrolls the surface in response to wheel input on the pad.
type Scroller interface {
	ScrollBy(dx, dy float64)
}

// synth is the single factory and dispatch point for synthesized events.
type synth struct {
	out     Dispatcher
	hotspot float64
}

// make builds an event of the given kind at cursor c. role selects the
// button field; buttons is the held-button mask after the transition.
func (s *synth) make(kind Kind, c Point, role Role, buttons int) Event {
	return Event{
		Kind:       kind,
		X:          c.X + s.hotspot,
		Y:          c.Y + s.hotspot,
		Button:     role.button(),
		Buttons:    buttons,
		Bubbles:    true,
		Cancelable: true,
	}
}

// emit dispatches ev to t. Missing and detached targets are skipped.
func (s *synth) emit(t Target, ev Event) {
	if t == nil || !t.Attached() {
		return
	}
	s.out.Dispatch(t, ev)
}
