package trackpad

import "log/slog"

// Defaults for the panel and the cursor glyph.
const (
	DefaultCursorSize  = 24
	DefaultHotspot     = 5
	DefaultSensitivity = 2
	DefaultStripHeight = 50
	DefaultPanelName   = "Trackpad"
)

// Option configures an Engine during creation.
type Option func(*options)

type options struct {
	viewport    Viewport
	layout      Layout
	sensitivity float64
	threshold   float64
	hotspot     float64
	cursor      Cursor
	scroller    Scroller
	logger      *slog.Logger
	panelName   string
}

func defaultOptions() options {
	return options{
		viewport:    Viewport{Width: 1280, Height: 720, CursorSize: DefaultCursorSize},
		layout:      NewLayout(400, 300, DefaultStripHeight),
		sensitivity: DefaultSensitivity,
		threshold:   DefaultDragThreshold,
		hotspot:     DefaultHotspot,
		panelName:   DefaultPanelName,
	}
}

// WithViewport sets the surface the cursor is clamped to.
func WithViewport(v Viewport) Option {
	return func(o *options) {
		o.viewport = v
	}
}

// WithLayout sets the input panel zones.
func WithLayout(l Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithSensitivity sets the factor applied to pad motion deltas.
func WithSensitivity(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.sensitivity = s
		}
	}
}

// WithDragThreshold sets the displacement that turns a hold into a drag.
func WithDragThreshold(d float64) Option {
	return func(o *options) {
		if d >= 0 {
			o.threshold = d
		}
	}
}

// WithHotspot sets the offset from the glyph's top-left corner to the point
// that is hit-tested and reported in event coordinates.
func WithHotspot(h float64) Option {
	return func(o *options) {
		o.hotspot = h
	}
}

// WithCursor sets the cursor glyph renderer.
func WithCursor(c Cursor) Option {
	return func(o *options) {
		o.cursor = c
	}
}

// WithScroller enables wheel forwarding from the pad.
func WithScroller(s Scroller) Option {
	return func(o *options) {
		o.scroller = s
	}
}

// WithLogger overrides the package logger for one engine.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPanelName sets the name the panel is registered under.
func WithPanelName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.panelName = name
		}
	}
}
