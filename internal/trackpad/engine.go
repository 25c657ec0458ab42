package trackpad

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrHostUnavailable is returned by New when the panel host is missing
	// or refuses to register the panel.
	ErrHostUnavailable = errors.New("trackpad: host panel API unavailable")

	// ErrClosed is returned by Close on an engine that is already closed.
	ErrClosed = errors.New("trackpad: engine closed")
)

// PanelHandle identifies a registered panel to its host.
type PanelHandle string

// Host registers the input panel with whatever hosts it.
type Host interface {
	RegisterPanel(name string) (PanelHandle, error)
}

// PanelCloser is implemented by hosts that want to know when a registered
// panel goes away.
type PanelCloser interface {
	ClosePanel(h PanelHandle) error
}

// mouseGesture is the mouse interaction in progress on the panel.
type mouseGesture struct {
	active bool
	role   Role
	last   Point
}

// Engine turns panel input into synthetic pointer and drag events.
type Engine struct {
	host   Host
	handle PanelHandle
	doc    HitTester
	glyph  Cursor
	scroll Scroller
	log    *slog.Logger
	s      synth

	viewport    Viewport
	layout      Layout
	sensitivity float64

	cursor  Point
	router  *router
	buttons [numRoles]*button
	hover   hover
	mouse   mouseGesture
	closed  bool
}

// New registers the panel with host and returns an engine dispatching to out.
// It fails with ErrHostUnavailable, without creating any state, when host is
// nil or refuses the panel.
func New(host Host, doc HitTester, out Dispatcher, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	if host == nil {
		log.Error("trackpad host API not found")
		return nil, ErrHostUnavailable
	}
	if doc == nil || out == nil {
		return nil, errors.New("trackpad: hit tester and dispatcher are required")
	}
	handle, err := host.RegisterPanel(o.panelName)
	if err != nil {
		log.Error("trackpad panel registration failed", "panel", o.panelName, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrHostUnavailable, err)
	}

	e := &Engine{
		host:        host,
		handle:      handle,
		doc:         doc,
		glyph:       o.cursor,
		scroll:      o.scroller,
		log:         log,
		s:           synth{out: out, hotspot: o.hotspot},
		viewport:    o.viewport,
		layout:      o.layout,
		sensitivity: o.sensitivity,
		router:      newRouter(),
	}
	e.buttons[RolePrimary] = newButton(RolePrimary, o.threshold)
	e.buttons[RoleSecondary] = newButton(RoleSecondary, o.threshold)
	e.cursor = e.viewport.Center()
	if e.glyph != nil {
		e.glyph.Show(e.cursor)
	}
	log.Info("trackpad engine started", "panel", o.panelName, "handle", string(handle),
		"width", e.viewport.Width, "height", e.viewport.Height)
	e.tick()
	return e, nil
}

// Cursor returns the virtual cursor position.
func (e *Engine) Cursor() Point { return e.cursor }

// Viewport returns the surface the cursor is clamped to.
func (e *Engine) Viewport() Viewport { return e.viewport }

// Layout returns the input panel zones.
func (e *Engine) Layout() Layout { return e.layout }

// Held reports whether the button bound to role is held.
func (e *Engine) Held(role Role) bool {
	b := e.button(role)
	return b != nil && b.held()
}

// Dragging reports whether the button bound to role has started a drag.
func (e *Engine) Dragging(role Role) bool {
	b := e.button(role)
	if b == nil {
		return false
	}
	sess, ok := b.session()
	return ok && sess.started
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool { return e.closed }

func (e *Engine) button(role Role) *button {
	if role < 0 || role >= numRoles {
		return nil
	}
	return e.buttons[role]
}

func (e *Engine) hitTest() Target {
	return e.doc.ElementAt(e.cursor.X+e.s.hotspot, e.cursor.Y+e.s.hotspot)
}

// held returns the held buttons in role order.
func (e *Engine) held() []*button {
	var out []*button
	for _, b := range e.buttons {
		if b != nil && b.held() {
			out = append(out, b)
		}
	}
	return out
}

func (e *Engine) heldMask() int {
	m := 0
	for _, b := range e.held() {
		m |= b.role.mask()
	}
	return m
}

// Tick runs one frame: drag and hold dispatch while a button is held, hover
// transitions otherwise. Hosts call it once per animation frame; cursor
// motion ticks implicitly.
func (e *Engine) Tick() {
	if e.closed {
		return
	}
	e.tick()
}

func (e *Engine) tick() {
	c := e.cursor
	under := e.hitTest()
	held := e.held()
	if len(held) == 0 {
		e.hover.update(&e.s, c, under, 0)
		return
	}

	mask := e.heldMask()
	for _, b := range held {
		b.dragPhase(&e.s, c, under, mask)
	}

	role := held[0].role
	var sent []Target
	send := func(t Target) {
		if t == nil {
			return
		}
		for _, x := range sent {
			if x == t {
				return
			}
		}
		sent = append(sent, t)
		e.s.emit(t, e.s.make(KindMotion, c, role, mask))
	}
	for _, b := range held {
		sess, _ := b.session()
		send(sess.source)
	}
	send(under)
	e.hover.follow(under)
}

// moveBy applies a raw panel delta to the cursor.
func (e *Engine) moveBy(d Point) {
	e.cursor = e.viewport.Clamp(e.cursor.Add(d.Mul(e.sensitivity)))
	if e.glyph != nil {
		e.glyph.Move(e.cursor)
	}
	e.tick()
}

func (e *Engine) press(role Role) {
	b := e.button(role)
	if b == nil || b.held() {
		return
	}
	target := e.hitTest()
	if !b.press(&e.s, e.cursor, target, e.heldMask()|role.mask()) {
		e.log.Debug("trackpad press ignored: no element under cursor", "role", role.String(),
			"x", e.cursor.X, "y", e.cursor.Y)
	}
}

func (e *Engine) release(role Role) {
	b := e.button(role)
	if b == nil || !b.held() {
		return
	}
	b.release(&e.s, e.cursor, e.hitTest(), e.heldMask()&^role.mask())
}

func (e *Engine) cancel(role Role) {
	b := e.button(role)
	if b == nil || !b.held() {
		return
	}
	b.cancel(&e.s, e.cursor, e.heldMask()&^role.mask())
}

// MouseDown handles a mouse press at panel position p. On the pad it starts
// a relative drag of the cursor; on a button zone it presses that button
// unless a touch contact already holds it. The pointer is assumed to sit on
// the panel; relative devices are better fed through the touch methods.
func (e *Engine) MouseDown(p Point) {
	if e.closed || e.mouse.active {
		return
	}
	role, ok := e.layout.ZoneAt(p).Role()
	if !ok || e.router.bound(role) {
		return
	}
	e.mouse = mouseGesture{active: true, role: role, last: p}
	if role != RoleMove {
		e.press(role)
	}
}

// MouseMove handles mouse motion at panel position p.
func (e *Engine) MouseMove(p Point) {
	if e.closed || !e.mouse.active || e.mouse.role != RoleMove {
		return
	}
	d := p.Sub(e.mouse.last)
	e.mouse.last = p
	e.moveBy(d)
}

// MouseUp ends the mouse gesture started by MouseDown.
func (e *Engine) MouseUp(p Point) {
	if e.closed || !e.mouse.active {
		return
	}
	role := e.mouse.role
	e.mouse = mouseGesture{}
	if role != RoleMove {
		e.release(role)
	}
}

// Wheel forwards wheel deltas received over the pad to the Scroller.
func (e *Engine) Wheel(p Point, dx, dy float64) {
	if e.closed || e.scroll == nil || e.layout.ZoneAt(p) != ZonePad {
		return
	}
	e.scroll.ScrollBy(dx, dy)
}

// TouchStart binds a new contact to the role owning the zone at p. It
// reports whether the contact was bound; contacts landing outside every
// zone, or on a role that is already held, are ignored.
func (e *Engine) TouchStart(id int, p Point) bool {
	if e.closed {
		return false
	}
	role, ok := e.layout.ZoneAt(p).Role()
	if !ok {
		return false
	}
	if e.mouse.active && e.mouse.role == role {
		return false
	}
	if !e.router.bind(id, role, p) {
		e.log.Debug("trackpad touch ignored: role already bound", "id", id, "role", role.String())
		return false
	}
	if role != RoleMove {
		e.press(role)
	}
	return true
}

// TouchMove handles motion of contact id. Pad contacts move the cursor;
// button contacts keep their hold alive and tick.
func (e *Engine) TouchMove(id int, p Point) {
	if e.closed {
		return
	}
	role, ok := e.router.owner(id)
	if !ok {
		return
	}
	d, _ := e.router.advance(id, p)
	if role == RoleMove {
		e.moveBy(d)
		return
	}
	e.tick()
}

// TouchEnd unbinds contact id and releases the button it held.
func (e *Engine) TouchEnd(id int) {
	if e.closed {
		return
	}
	role, ok := e.router.unbind(id)
	if !ok || role == RoleMove {
		return
	}
	e.release(role)
}

// TouchCancel unbinds contact id and abandons the hold it drove, without
// drop or click.
func (e *Engine) TouchCancel(id int) {
	if e.closed {
		return
	}
	role, ok := e.router.unbind(id)
	if !ok || role == RoleMove {
		return
	}
	e.cancel(role)
}

// Resize updates the surface size, re-clamps the cursor and ticks. The
// cursor keeps its position when it still fits.
func (e *Engine) Resize(width, height float64) {
	if e.closed {
		return
	}
	e.viewport.Width = width
	e.viewport.Height = height
	e.cursor = e.viewport.Clamp(e.cursor)
	if e.glyph != nil {
		e.glyph.Move(e.cursor)
	}
	e.tick()
}

// Close forces every held button through its cancel transition, leaves the
// hover target, unbinds all contacts and hides the cursor glyph. A second
// call returns ErrClosed.
func (e *Engine) Close() error {
	if e.closed {
		return ErrClosed
	}
	for _, b := range e.held() {
		e.cancel(b.role)
	}
	e.hover.leave(&e.s, e.cursor)
	for _, id := range e.router.ids() {
		e.router.unbind(id)
	}
	e.mouse = mouseGesture{}
	if e.glyph != nil {
		e.glyph.Hide()
	}
	e.closed = true

	var err error
	if pc, ok := e.host.(PanelCloser); ok {
		err = pc.ClosePanel(e.handle)
	}
	e.log.Info("trackpad engine closed", "handle", string(e.handle))
	return err
}
