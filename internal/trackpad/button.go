package trackpad

// DefaultDragThreshold is the cursor displacement from the press origin
// beyond which a hold becomes a drag.
const DefaultDragThreshold = 5

// buttonState is the state of one emulated mouse button: idleState or
// heldState.
type buttonState interface {
	isButtonState()
}

type idleState struct{}

// heldState is entered on a press that resolved a target. The drag session
// starts with the press and flips started once the threshold is crossed.
type heldState struct {
	session dragSession
}

func (idleState) isButtonState() {}
func (heldState) isButtonState() {}

// dragSession is the drag candidacy carried by a held button.
type dragSession struct {
	source  Target
	origin  Point
	started bool
}

// button is the press/drag/release state machine for one button role.
type button struct {
	role      Role
	threshold float64
	state     buttonState
}

func newButton(role Role, threshold float64) *button {
	return &button{role: role, threshold: threshold, state: idleState{}}
}

func (b *button) held() bool {
	_, ok := b.state.(heldState)
	return ok
}

// session returns the drag session of a held button.
func (b *button) session() (dragSession, bool) {
	st, ok := b.state.(heldState)
	return st.session, ok
}

// clickKind is the event that completes a press without drag.
func (b *button) clickKind() Kind {
	if b.role == RoleSecondary {
		return KindContextClick
	}
	return KindClick
}

// press handles a button-down signal with target resolved at cursor c.
// buttons is the held mask including this button. A press without a target
// or on an already held button is ignored.
func (b *button) press(s *synth, c Point, target Target, buttons int) bool {
	switch b.state.(type) {
	case idleState:
		if target == nil {
			return false
		}
		b.state = heldState{session: dragSession{source: target, origin: c}}
		s.emit(target, s.make(KindPress, c, b.role, buttons))
		return true
	case heldState:
		return false
	}
	return false
}

// dragPhase runs the drag part of a tick: threshold detection, then drag
// on the source and dragover on the element under the cursor.
func (b *button) dragPhase(s *synth, c Point, under Target, buttons int) {
	switch st := b.state.(type) {
	case idleState:
		return
	case heldState:
		sess := st.session
		if !sess.started && c.Distance(sess.origin) > b.threshold {
			sess.started = true
			s.emit(sess.source, s.make(KindDragStart, c, b.role, buttons))
		}
		if sess.started {
			s.emit(sess.source, s.make(KindDrag, c, b.role, buttons))
			if under != nil && under != sess.source {
				s.emit(under, s.make(KindDragOver, c, b.role, buttons))
			}
		}
		b.state = heldState{session: sess}
	}
}

// release handles a button-up signal. buttons is the held mask without
// this button. A drag ends with drop and dragend and never clicks.
func (b *button) release(s *synth, c Point, under Target, buttons int) bool {
	switch st := b.state.(type) {
	case idleState:
		return false
	case heldState:
		b.state = idleState{}
		src := st.session.source
		if st.session.started {
			s.emit(under, s.make(KindDrop, c, b.role, buttons))
			s.emit(src, s.make(KindDragEnd, c, b.role, buttons))
			s.emit(src, s.make(KindRelease, c, b.role, buttons))
			return true
		}
		s.emit(src, s.make(KindRelease, c, b.role, buttons))
		s.emit(src, s.make(b.clickKind(), c, b.role, buttons))
		return true
	}
	return false
}

// cancel abandons a hold: dragend for a started drag, then mouseup. Neither
// drop nor click is emitted.
func (b *button) cancel(s *synth, c Point, buttons int) bool {
	switch st := b.state.(type) {
	case idleState:
		return false
	case heldState:
		b.state = idleState{}
		src := st.session.source
		if st.session.started {
			s.emit(src, s.make(KindDragEnd, c, b.role, buttons))
		}
		s.emit(src, s.make(KindRelease, c, b.role, buttons))
		return true
	}
	return false
}
