package trackpad

// binding records which touch contact, if any, currently owns a role.
type binding struct {
	id    int
	last  Point
	bound bool
}

// router binds touch contact identifiers to roles. A role has at most one
// contact and a contact has at most one role.
type router struct {
	roles [numRoles]binding
	byID  map[int]Role
}

func newRouter() *router {
	return &router{byID: make(map[int]Role)}
}

// bind assigns id to role at position p. It fails when the role is already
// held by another contact or id already owns a role.
func (r *router) bind(id int, role Role, p Point) bool {
	if r.roles[role].bound {
		return false
	}
	if _, ok := r.byID[id]; ok {
		return false
	}
	r.roles[role] = binding{id: id, last: p, bound: true}
	r.byID[id] = role
	return true
}

// owner returns the role bound to id.
func (r *router) owner(id int) (Role, bool) {
	role, ok := r.byID[id]
	return role, ok
}

// bound reports whether role is held by a touch contact.
func (r *router) bound(role Role) bool {
	return r.roles[role].bound
}

// advance records p as the latest position of id and returns the delta
// from the previous one.
func (r *router) advance(id int, p Point) (Point, bool) {
	role, ok := r.byID[id]
	if !ok {
		return Point{}, false
	}
	b := &r.roles[role]
	d := p.Sub(b.last)
	b.last = p
	return d, true
}

// unbind releases id and returns the role it held.
func (r *router) unbind(id int) (Role, bool) {
	role, ok := r.byID[id]
	if !ok {
		return 0, false
	}
	delete(r.byID, id)
	r.roles[role] = binding{}
	return role, true
}

// ids returns the contacts currently bound, in role order.
func (r *router) ids() []int {
	var out []int
	for _, b := range r.roles {
		if b.bound {
			out = append(out, b.id)
		}
	}
	return out
}
