// Package dom keeps a geometric snapshot of a page's elements and resolves
// the topmost element at a point.
//
// The page reports its layout as a Snapshot; Apply merges it into the
// Document so that an Element keeps its identity across snapshots while it
// stays in the page. Elements missing from a newer snapshot are detached,
// and the trackpad engine treats dispatches to them as no-ops.
package dom

import (
	"sort"

	"trackpad-bridge/internal/trackpad"
)

// Size is a viewport size in CSS pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ElementInfo is one element of a layout snapshot.
type ElementInfo struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
	Z  int     `json:"z"`
}

// Snapshot is the layout of the page at one instant. Elements are listed
// in document order.
type Snapshot struct {
	Viewport Size          `json:"viewport"`
	Elements []ElementInfo `json:"elements"`
}

// Element is a laid-out page element.
type Element struct {
	ID   string
	Rect trackpad.Rect
	Z    int

	order    int
	attached bool
}

// Attached reports whether the element was present in the latest snapshot.
func (e *Element) Attached() bool { return e.attached }

// Document is the merged view of the page's layout snapshots.
type Document struct {
	viewport Size
	byID     map[string]*Element
	// stack is in paint order: ascending z, then document order.
	stack []*Element
}

// New returns an empty document.
func New() *Document {
	return &Document{byID: make(map[string]*Element)}
}

// Apply replaces the document's layout with s and returns the number of
// elements that were detached.
func (d *Document) Apply(s Snapshot) int {
	d.viewport = s.Viewport
	seen := make(map[string]bool, len(s.Elements))
	d.stack = d.stack[:0]
	for i, info := range s.Elements {
		if info.ID == "" || seen[info.ID] {
			continue
		}
		seen[info.ID] = true
		el, ok := d.byID[info.ID]
		if !ok {
			el = &Element{ID: info.ID}
			d.byID[info.ID] = el
		}
		el.Rect = trackpad.Rect{X: info.X, Y: info.Y, W: info.W, H: info.H}
		el.Z = info.Z
		el.order = i
		el.attached = true
		d.stack = append(d.stack, el)
	}

	removed := 0
	for id, el := range d.byID {
		if !seen[id] {
			el.attached = false
			delete(d.byID, id)
			removed++
		}
	}
	sort.SliceStable(d.stack, func(i, j int) bool {
		if d.stack[i].Z != d.stack[j].Z {
			return d.stack[i].Z < d.stack[j].Z
		}
		return d.stack[i].order < d.stack[j].order
	})
	return removed
}

// Detach removes a single element, as reported by the page between
// snapshots.
func (d *Document) Detach(id string) bool {
	el, ok := d.byID[id]
	if !ok {
		return false
	}
	el.attached = false
	delete(d.byID, id)
	for i, s := range d.stack {
		if s == el {
			d.stack = append(d.stack[:i], d.stack[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the attached element with the given id.
func (d *Document) Lookup(id string) (*Element, bool) {
	el, ok := d.byID[id]
	return el, ok
}

// Viewport returns the viewport size of the latest snapshot.
func (d *Document) Viewport() Size { return d.viewport }

// Len returns the number of attached elements.
func (d *Document) Len() int { return len(d.stack) }

// At returns the topmost element containing (x, y), or nil.
func (d *Document) At(x, y float64) *Element {
	p := trackpad.Pt(x, y)
	for i := len(d.stack) - 1; i >= 0; i-- {
		if d.stack[i].Rect.Contains(p) {
			return d.stack[i]
		}
	}
	return nil
}

// ElementAt implements trackpad.HitTester.
func (d *Document) ElementAt(x, y float64) trackpad.Target {
	if el := d.At(x, y); el != nil {
		return el
	}
	return nil
}
