package trackpad

import "testing"

func TestRouterBind(t *testing.T) {
	r := newRouter()
	if !r.bind(1, RoleMove, Pt(0, 0)) {
		t.Fatal("bind(1, move) failed")
	}
	if r.bind(2, RoleMove, Pt(0, 0)) {
		t.Error("bound a second contact to move")
	}
	if r.bind(1, RolePrimary, Pt(0, 0)) {
		t.Error("bound contact 1 to a second role")
	}
	if !r.bind(2, RolePrimary, Pt(0, 0)) {
		t.Error("bind(2, primary) failed")
	}
	if role, ok := r.owner(2); !ok || role != RolePrimary {
		t.Errorf("owner(2) = %v, %v; want primary", role, ok)
	}
	if got := r.ids(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("ids() = %v, want [1 2]", got)
	}
}

func TestRouterAdvanceAndUnbind(t *testing.T) {
	r := newRouter()
	r.bind(7, RoleMove, Pt(10, 10))
	d, ok := r.advance(7, Pt(13, 6))
	if !ok || d != Pt(3, -4) {
		t.Errorf("advance = %v, %v; want (3, -4)", d, ok)
	}
	d, _ = r.advance(7, Pt(14, 6))
	if d != Pt(1, 0) {
		t.Errorf("second advance = %v, want (1, 0)", d)
	}
	if _, ok := r.advance(8, Pt(0, 0)); ok {
		t.Error("advance on an unbound contact succeeded")
	}

	role, ok := r.unbind(7)
	if !ok || role != RoleMove {
		t.Errorf("unbind(7) = %v, %v; want move", role, ok)
	}
	if r.bound(RoleMove) {
		t.Error("move still bound after unbind")
	}
	if _, ok := r.unbind(7); ok {
		t.Error("unbind twice succeeded")
	}
}
