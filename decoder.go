package main

// Evdev frame decoder.
//
// Turns the raw event stream of one input device into panel inputs the
// trackpad engine understands:
// - multitouch (type B slots) and single-touch panels become touch contacts
//   in panel coordinates, committed once per SYN_REPORT
// - relative mice become synthetic contacts: motion drives a pad contact and
//   BTN_LEFT/BTN_RIGHT hold contacts on the button zones, so a physical mouse
//   can press and drag at the same time

import (
	"trackpad-bridge/internal/trackpad"
)

type panelInputKind int

const (
	touchStart panelInputKind = iota
	touchMove
	touchEnd
	touchCancel
	wheel
)

func (k panelInputKind) String() string {
	switch k {
	case touchStart:
		return "start"
	case touchMove:
		return "move"
	case touchEnd:
		return "end"
	case touchCancel:
		return "cancel"
	case wheel:
		return "wheel"
	}
	return "unknown"
}

// panelInput is one decoded input occurrence.
type panelInput struct {
	kind   panelInputKind
	id     int
	p      trackpad.Point
	dx, dy float64
}

// Synthetic contact ids for relative mice. Kernel tracking ids are never
// negative.
const (
	mouseMoveID  = -1
	mouseLeftID  = -2
	mouseRightID = -3
)

const maxSlots = 16

// slotState is one multitouch slot between two SYN_REPORTs.
type slotState struct {
	trackingID int32
	started    int32 // tracking id reported by the last touchStart
	x, y       int32
	active     bool
	wasActive  bool
	dirty      bool
}

type evdevDecoder struct {
	ranges    absRanges
	layout    trackpad.Layout
	size      trackpad.Point
	wheelStep float64

	slots   [maxSlots]slotState
	curSlot int // -1 while the kernel addresses a slot beyond maxSlots
	sawMT   bool

	// single-touch fallback (ABS_X/ABS_Y + BTN_TOUCH)
	single     slotState
	singleDown bool

	// relative mouse
	relX, relY     int32
	wheelV, wheelH int32
	mouseStarted   bool
	mousePos       trackpad.Point
	btnLeft        bool
	btnRight       bool
	btnLeftDirty   bool
	btnRightDirty  bool

	out []panelInput
}

// newEvdevDecoder maps device coordinates onto a panel of the given size
// laid out as l.
func newEvdevDecoder(r absRanges, l trackpad.Layout, width, height, wheelStep float64) *evdevDecoder {
	d := &evdevDecoder{
		ranges:    r,
		layout:    l,
		size:      trackpad.Pt(width, height),
		wheelStep: wheelStep,
	}
	for i := range d.slots {
		d.slots[i] = slotState{trackingID: -1, started: -1}
	}
	return d
}

func center(r trackpad.Rect) trackpad.Point {
	return trackpad.Pt(r.X+r.W/2, r.Y+r.H/2)
}

// handle consumes one raw event. It returns the inputs committed by a
// SYN_REPORT, or nil.
func (d *evdevDecoder) handle(etype uint16, code uint16, value int32) []panelInput {
	switch etype {
	case EV_ABS:
		d.handleAbs(code, value)
	case EV_REL:
		switch code {
		case REL_X:
			d.relX += value
		case REL_Y:
			d.relY += value
		case REL_WHEEL:
			d.wheelV += value
		case REL_HWHEEL:
			d.wheelH += value
		}
	case EV_KEY:
		switch code {
		case BTN_TOUCH:
			d.singleDown = value != 0
		case BTN_LEFT:
			d.btnLeft = value != 0
			d.btnLeftDirty = true
		case BTN_RIGHT:
			d.btnRight = value != 0
			d.btnRightDirty = true
		}
	case EV_SYN:
		switch code {
		case SYN_REPORT:
			return d.commit()
		case SYN_DROPPED:
			return d.drop()
		}
	}
	return nil
}

func (d *evdevDecoder) handleAbs(code uint16, value int32) {
	switch code {
	case ABS_MT_SLOT:
		d.sawMT = true
		if value >= 0 && int(value) < maxSlots {
			d.curSlot = int(value)
		} else {
			d.curSlot = -1
		}
	case ABS_MT_TRACKING_ID:
		d.sawMT = true
		if s := d.slot(); s != nil {
			s.trackingID = value
			s.active = value != -1
			s.dirty = true
		}
	case ABS_MT_POSITION_X:
		d.sawMT = true
		if s := d.slot(); s != nil {
			s.x = value
			s.dirty = true
		}
	case ABS_MT_POSITION_Y:
		d.sawMT = true
		if s := d.slot(); s != nil {
			s.y = value
			s.dirty = true
		}
	case ABS_X:
		d.single.x = value
		d.single.dirty = true
	case ABS_Y:
		d.single.y = value
		d.single.dirty = true
	}
}

// slot returns the slot addressed by the last ABS_MT_SLOT, or nil when
// that slot is out of range and its events are discarded.
func (d *evdevDecoder) slot() *slotState {
	if d.curSlot < 0 {
		return nil
	}
	return &d.slots[d.curSlot]
}

func (d *evdevDecoder) mtPoint(s *slotState) trackpad.Point {
	r := d.ranges
	return trackpad.Pt(norm(s.x, r.mtXMin, r.mtXMax)*d.size.X, norm(s.y, r.mtYMin, r.mtYMax)*d.size.Y)
}

func (d *evdevDecoder) singlePoint() trackpad.Point {
	r := d.ranges
	return trackpad.Pt(norm(d.single.x, r.xMin, r.xMax)*d.size.X, norm(d.single.y, r.yMin, r.yMax)*d.size.Y)
}

// commit emits the state changes accumulated since the previous report.
// Lifts are emitted before starts so a slot reused within one frame ends its
// previous contact first.
func (d *evdevDecoder) commit() []panelInput {
	d.out = d.out[:0]

	if d.sawMT {
		d.commitSlots()
	} else {
		d.commitSingle()
	}
	d.commitMouse()

	if len(d.out) == 0 {
		return nil
	}
	out := make([]panelInput, len(d.out))
	copy(out, d.out)
	return out
}

func (d *evdevDecoder) commitSlots() {
	for i := range d.slots {
		s := &d.slots[i]
		if s.wasActive && (!s.active || s.trackingID != s.started) {
			d.out = append(d.out, panelInput{kind: touchEnd, id: int(s.started)})
			s.wasActive = false
		}
	}
	for i := range d.slots {
		s := &d.slots[i]
		switch {
		case s.active && !s.wasActive:
			s.started = s.trackingID
			d.out = append(d.out, panelInput{kind: touchStart, id: int(s.trackingID), p: d.mtPoint(s)})
		case s.active && s.dirty:
			d.out = append(d.out, panelInput{kind: touchMove, id: int(s.trackingID), p: d.mtPoint(s)})
		}
		s.wasActive = s.active
		s.dirty = false
	}
}

func (d *evdevDecoder) commitSingle() {
	s := &d.single
	const singleID = 0
	switch {
	case d.singleDown && !s.wasActive:
		d.out = append(d.out, panelInput{kind: touchStart, id: singleID, p: d.singlePoint()})
	case d.singleDown && s.dirty:
		d.out = append(d.out, panelInput{kind: touchMove, id: singleID, p: d.singlePoint()})
	case !d.singleDown && s.wasActive:
		d.out = append(d.out, panelInput{kind: touchEnd, id: singleID})
	}
	s.wasActive = d.singleDown
	s.dirty = false
}

func (d *evdevDecoder) commitMouse() {
	if d.relX != 0 || d.relY != 0 {
		if !d.mouseStarted {
			d.mouseStarted = true
			d.mousePos = center(d.layout.Pad)
			d.out = append(d.out, panelInput{kind: touchStart, id: mouseMoveID, p: d.mousePos})
		}
		d.mousePos = d.mousePos.Add(trackpad.Pt(float64(d.relX), float64(d.relY)))
		d.out = append(d.out, panelInput{kind: touchMove, id: mouseMoveID, p: d.mousePos})
		d.relX, d.relY = 0, 0
	}
	if d.btnLeftDirty {
		d.out = append(d.out, d.mouseButton(d.btnLeft, mouseLeftID, d.layout.Left))
		d.btnLeftDirty = false
	}
	if d.btnRightDirty {
		d.out = append(d.out, d.mouseButton(d.btnRight, mouseRightID, d.layout.Right))
		d.btnRightDirty = false
	}
	if d.wheelV != 0 || d.wheelH != 0 {
		d.out = append(d.out, panelInput{
			kind: wheel,
			p:    center(d.layout.Pad),
			dx:   float64(d.wheelH) * d.wheelStep,
			dy:   -float64(d.wheelV) * d.wheelStep,
		})
		d.wheelV, d.wheelH = 0, 0
	}
}

func (d *evdevDecoder) mouseButton(down bool, id int, zone trackpad.Rect) panelInput {
	if down {
		return panelInput{kind: touchStart, id: id, p: center(zone)}
	}
	return panelInput{kind: touchEnd, id: id}
}

// drop handles SYN_DROPPED: the kernel discarded events, so every open
// contact is cancelled and the decoder starts over.
func (d *evdevDecoder) drop() []panelInput {
	var out []panelInput
	for i := range d.slots {
		s := &d.slots[i]
		if s.wasActive {
			out = append(out, panelInput{kind: touchCancel, id: int(s.started)})
		}
		*s = slotState{trackingID: -1, started: -1}
	}
	if d.single.wasActive {
		out = append(out, panelInput{kind: touchCancel, id: 0})
	}
	d.single = slotState{}
	d.singleDown = false
	if d.btnLeft {
		out = append(out, panelInput{kind: touchCancel, id: mouseLeftID})
	}
	if d.btnRight {
		out = append(out, panelInput{kind: touchCancel, id: mouseRightID})
	}
	if d.mouseStarted {
		out = append(out, panelInput{kind: touchCancel, id: mouseMoveID})
	}
	d.mouseStarted = false
	d.btnLeft, d.btnRight = false, false
	d.btnLeftDirty, d.btnRightDirty = false, false
	d.relX, d.relY, d.wheelV, d.wheelH = 0, 0, 0, 0
	return out
}
