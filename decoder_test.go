package main

import (
	"reflect"
	"testing"

	"trackpad-bridge/internal/trackpad"
)

type rawEvent struct {
	etype uint16
	code  uint16
	value int32
}

func syn() rawEvent { return rawEvent{EV_SYN, SYN_REPORT, 0} }

func newTestDecoder() *evdevDecoder {
	r := absRanges{
		xMin: 0, xMax: 1000, yMin: 0, yMax: 1000,
		mtXMin: 0, mtXMax: 1000, mtYMin: 0, mtYMax: 1000,
		slots: 10,
	}
	return newEvdevDecoder(r, trackpad.NewLayout(400, 300, 50), 400, 300, 40)
}

// feedAll runs evs through d and collects every committed input.
func feedAll(d *evdevDecoder, evs ...rawEvent) []panelInput {
	var out []panelInput
	for _, e := range evs {
		out = append(out, d.handle(e.etype, e.code, e.value)...)
	}
	return out
}

func kinds(in []panelInput) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		out = append(out, p.kind.String())
	}
	return out
}

func TestDecoderMultitouchLifecycle(t *testing.T) {
	d := newTestDecoder()

	got := feedAll(d,
		rawEvent{EV_ABS, ABS_MT_SLOT, 0},
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 7},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 500},
		rawEvent{EV_ABS, ABS_MT_POSITION_Y, 250},
		syn(),
	)
	want := []panelInput{{kind: touchStart, id: 7, p: trackpad.Pt(200, 75)}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("start = %+v, want %+v", got, want)
	}

	got = feedAll(d,
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 750},
		syn(),
	)
	want = []panelInput{{kind: touchMove, id: 7, p: trackpad.Pt(300, 75)}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("move = %+v, want %+v", got, want)
	}

	got = feedAll(d,
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, -1},
		syn(),
	)
	want = []panelInput{{kind: touchEnd, id: 7}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("end = %+v, want %+v", got, want)
	}

	if got := feedAll(d, syn()); got != nil {
		t.Errorf("idle report = %+v, want nil", got)
	}
}

func TestDecoderTwoSlots(t *testing.T) {
	d := newTestDecoder()
	got := feedAll(d,
		rawEvent{EV_ABS, ABS_MT_SLOT, 0},
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 1},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 500},
		rawEvent{EV_ABS, ABS_MT_POSITION_Y, 300},
		rawEvent{EV_ABS, ABS_MT_SLOT, 1},
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 2},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 100},
		rawEvent{EV_ABS, ABS_MT_POSITION_Y, 900},
		syn(),
	)
	if len(got) != 2 || got[0].id != 1 || got[1].id != 2 {
		t.Fatalf("got %+v, want starts for ids 1 and 2", got)
	}
	if got[1].p != trackpad.Pt(40, 270) {
		t.Errorf("slot 1 at %v, want (40,270)", got[1].p)
	}

	// Slot 0 lifts while slot 1 moves.
	got = feedAll(d,
		rawEvent{EV_ABS, ABS_MT_SLOT, 0},
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, -1},
		rawEvent{EV_ABS, ABS_MT_SLOT, 1},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 200},
		syn(),
	)
	if want := []string{"end", "move"}; !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("kinds = %v, want %v", kinds(got), want)
	}
}

func TestDecoderSlotReuseEndsPreviousContact(t *testing.T) {
	d := newTestDecoder()
	feedAll(d,
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 3},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 100},
		syn(),
	)
	// The kernel reassigns the slot without an intermediate -1.
	got := feedAll(d,
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 4},
		syn(),
	)
	want := []panelInput{
		{kind: touchEnd, id: 3},
		{kind: touchStart, id: 4, p: trackpad.Pt(40, 0)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecoderSingleTouchFallback(t *testing.T) {
	d := newTestDecoder()
	got := feedAll(d,
		rawEvent{EV_ABS, ABS_X, 500},
		rawEvent{EV_ABS, ABS_Y, 500},
		rawEvent{EV_KEY, BTN_TOUCH, 1},
		syn(),
		rawEvent{EV_ABS, ABS_X, 600},
		syn(),
		rawEvent{EV_KEY, BTN_TOUCH, 0},
		syn(),
	)
	if want := []string{"start", "move", "end"}; !reflect.DeepEqual(kinds(got), want) {
		t.Fatalf("kinds = %v, want %v", kinds(got), want)
	}
	if got[0].p != trackpad.Pt(200, 150) || got[1].p != trackpad.Pt(240, 150) {
		t.Errorf("points = %v, %v", got[0].p, got[1].p)
	}
}

func TestDecoderRelativeMouse(t *testing.T) {
	d := newTestDecoder()
	padCenter := trackpad.Pt(200, 125)

	got := feedAll(d,
		rawEvent{EV_REL, REL_X, 3},
		rawEvent{EV_REL, REL_Y, -2},
		syn(),
	)
	want := []panelInput{
		{kind: touchStart, id: mouseMoveID, p: padCenter},
		{kind: touchMove, id: mouseMoveID, p: padCenter.Add(trackpad.Pt(3, -2))},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("motion = %+v, want %+v", got, want)
	}

	got = feedAll(d,
		rawEvent{EV_KEY, BTN_LEFT, 1},
		syn(),
		rawEvent{EV_REL, REL_X, 1},
		syn(),
		rawEvent{EV_KEY, BTN_LEFT, 0},
		syn(),
	)
	want = []panelInput{
		{kind: touchStart, id: mouseLeftID, p: trackpad.Pt(100, 275)},
		{kind: touchMove, id: mouseMoveID, p: padCenter.Add(trackpad.Pt(4, -2))},
		{kind: touchEnd, id: mouseLeftID},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("press/drag = %+v, want %+v", got, want)
	}

	got = feedAll(d, rawEvent{EV_KEY, BTN_RIGHT, 1}, syn())
	if len(got) != 1 || got[0].id != mouseRightID || got[0].p != trackpad.Pt(300, 275) {
		t.Errorf("right press = %+v", got)
	}
}

func TestDecoderWheel(t *testing.T) {
	d := newTestDecoder()
	got := feedAll(d,
		rawEvent{EV_REL, REL_WHEEL, 1},
		rawEvent{EV_REL, REL_HWHEEL, -1},
		syn(),
	)
	want := []panelInput{{kind: wheel, p: trackpad.Pt(200, 125), dx: -40, dy: -40}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecoderDroppedCancelsContacts(t *testing.T) {
	d := newTestDecoder()
	feedAll(d,
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 9},
		syn(),
		rawEvent{EV_KEY, BTN_LEFT, 1},
		syn(),
	)
	got := feedAll(d, rawEvent{EV_SYN, SYN_DROPPED, 0})
	want := []panelInput{
		{kind: touchCancel, id: 9},
		{kind: touchCancel, id: mouseLeftID},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("drop = %+v, want %+v", got, want)
	}

	// After the drop the slot state restarts cleanly.
	got = feedAll(d, rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 10}, syn())
	if want := []string{"start"}; !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("kinds after drop = %v, want %v", kinds(got), want)
	}
}

func TestDecoderDroppedReleasesMousePad(t *testing.T) {
	d := newTestDecoder()
	feedAll(d, rawEvent{EV_REL, REL_X, 5}, syn())

	got := feedAll(d, rawEvent{EV_SYN, SYN_DROPPED, 0})
	want := []panelInput{{kind: touchCancel, id: mouseMoveID}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("drop = %+v, want %+v", got, want)
	}

	// The next motion binds the pad again from its centre.
	got = feedAll(d, rawEvent{EV_REL, REL_Y, 1}, syn())
	want = []panelInput{
		{kind: touchStart, id: mouseMoveID, p: trackpad.Pt(200, 125)},
		{kind: touchMove, id: mouseMoveID, p: trackpad.Pt(200, 126)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("motion after drop = %+v, want %+v", got, want)
	}
}

func TestDecoderIgnoresOutOfRangeSlot(t *testing.T) {
	d := newTestDecoder()
	feedAll(d,
		rawEvent{EV_ABS, ABS_MT_SLOT, 0},
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 1},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 500},
		syn(),
	)

	got := feedAll(d,
		rawEvent{EV_ABS, ABS_MT_SLOT, maxSlots},
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, 2},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 900},
		rawEvent{EV_ABS, ABS_MT_TRACKING_ID, -1},
		syn(),
	)
	if got != nil {
		t.Errorf("events for slot %d leaked into slot 0: %+v", maxSlots, got)
	}

	// Addressing a valid slot again resumes normal decoding.
	got = feedAll(d,
		rawEvent{EV_ABS, ABS_MT_SLOT, 0},
		rawEvent{EV_ABS, ABS_MT_POSITION_X, 750},
		syn(),
	)
	want := []panelInput{{kind: touchMove, id: 1, p: trackpad.Pt(300, 0)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slot 0 after recovery = %+v, want %+v", got, want)
	}
}
