package trackpad

import "math"

// Point is a position in surface or panel coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	d := p.Sub(q)
	return math.Sqrt(d.X*d.X + d.Y*d.Y)
}

// Rect is an axis-aligned rectangle. Contains is half-open on the far edges.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Viewport describes the visible surface the virtual cursor lives on.
type Viewport struct {
	Width, Height float64
	// CursorSize is the edge length of the cursor glyph. The glyph must stay
	// fully visible, so the cursor's top-left corner is bounded by
	// [0, Width-CursorSize] x [0, Height-CursorSize].
	CursorSize float64
}

// Clamp returns p constrained to the cursor bounds of v.
func (v Viewport) Clamp(p Point) Point {
	return Point{
		X: clamp(p.X, 0, v.Width-v.CursorSize),
		Y: clamp(p.Y, 0, v.Height-v.CursorSize),
	}
}

// Center returns the initial cursor position used by the panel.
func (v Viewport) Center() Point {
	return v.Clamp(Point{X: v.Width / 2, Y: v.Height * 0.4})
}

func clamp(x, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Zone identifies a region of the input panel.
type Zone int

const (
	ZoneNone Zone = iota
	ZonePad
	ZoneLeft
	ZoneRight
)

func (z Zone) String() string {
	switch z {
	case ZonePad:
		return "pad"
	case ZoneLeft:
		return "left"
	case ZoneRight:
		return "right"
	}
	return "none"
}

// Role returns the functional role that owns the zone.
func (z Zone) Role() (Role, bool) {
	switch z {
	case ZonePad:
		return RoleMove, true
	case ZoneLeft:
		return RolePrimary, true
	case ZoneRight:
		return RoleSecondary, true
	}
	return 0, false
}

// Layout splits the input panel into the pad and the two button zones.
type Layout struct {
	Pad, Left, Right Rect
}

// NewLayout returns the standard panel arrangement: the pad fills the panel
// above a button strip of the given height, which is split evenly into the
// left and right buttons.
func NewLayout(width, height, strip float64) Layout {
	if strip > height {
		strip = height
	}
	if strip < 0 {
		strip = 0
	}
	pad := height - strip
	half := width / 2
	return Layout{
		Pad:   Rect{X: 0, Y: 0, W: width, H: pad},
		Left:  Rect{X: 0, Y: pad, W: half, H: strip},
		Right: Rect{X: half, Y: pad, W: width - half, H: strip},
	}
}

// ZoneAt returns the zone containing p.
func (l Layout) ZoneAt(p Point) Zone {
	switch {
	case l.Pad.Contains(p):
		return ZonePad
	case l.Left.Contains(p):
		return ZoneLeft
	case l.Right.Contains(p):
		return ZoneRight
	}
	return ZoneNone
}
