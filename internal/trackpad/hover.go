package trackpad

// hover tracks the element under the cursor while no button is held and
// keeps enter/leave notifications balanced.
type hover struct {
	target Target
}

// update compares t with the stored target and emits the resulting events.
func (h *hover) update(s *synth, c Point, t Target, buttons int) {
	if t != h.target {
		if h.target != nil {
			s.emit(h.target, s.make(KindLeave, c, RoleMove, buttons))
			s.emit(h.target, s.make(KindOut, c, RoleMove, buttons))
		}
		if t != nil {
			s.emit(t, s.make(KindEnter, c, RoleMove, buttons))
			s.emit(t, s.make(KindOver, c, RoleMove, buttons))
		}
		h.target = t
		return
	}
	if t != nil {
		s.emit(t, s.make(KindMotion, c, RoleMove, buttons))
	}
}

// follow records t without emitting anything. Held buttons own motion
// delivery, but the tracker must know where the cursor is on release.
func (h *hover) follow(t Target) {
	h.target = t
}

// leave emits a final mouseleave for the current target and forgets it.
func (h *hover) leave(s *synth, c Point) {
	if h.target != nil {
		s.emit(h.target, s.make(KindLeave, c, RoleMove, 0))
	}
	h.target = nil
}
