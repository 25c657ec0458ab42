package main

// Page protocol.
//
// The page hosting the panel talks JSON text frames over the WebSocket.
//
// page -> bridge:
//   {"t":"layout","viewport":{"w":..,"h":..},"elements":[{"id":..,"x":..,"y":..,"w":..,"h":..,"z":..}]}
//   {"t":"detach","id":..}
//   {"t":"ready","handle":..}         panel registered
//   {"t":"reject","reason":..}        page has no panel API
//
// bridge -> page:
//   {"t":"hello","name":..}
//   {"t":"cursor","op":"show|move|hide","x":..,"y":..}
//   {"t":"dispatch","target":..,"type":..,"x":..,"y":..,"button":..,"buttons":..,"bubbles":..,"cancelable":..}
//   {"t":"scroll","dx":..,"dy":..}
//   {"t":"close","handle":..}         panel torn down

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trackpad-bridge/internal/dom"
	"trackpad-bridge/internal/trackpad"
)

type pageMessage struct {
	T        string            `json:"t"`
	Viewport *dom.Size         `json:"viewport,omitempty"`
	Elements []dom.ElementInfo `json:"elements,omitempty"`
	ID       string            `json:"id,omitempty"`
	Handle   string            `json:"handle,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

type outHello struct {
	T    string `json:"t"`
	Name string `json:"name"`
}

type outCursor struct {
	T  string  `json:"t"`
	Op string  `json:"op"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type outDispatch struct {
	T          string  `json:"t"`
	Target     string  `json:"target"`
	Type       string  `json:"type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Button     int     `json:"button"`
	Buttons    int     `json:"buttons"`
	Bubbles    bool    `json:"bubbles"`
	Cancelable bool    `json:"cancelable"`
}

type outScroll struct {
	T  string  `json:"t"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type outClose struct {
	T      string `json:"t"`
	Handle string `json:"handle"`
}

var errPanelRejected = errors.New("page rejected panel")

// pageConn is the page side of the trackpad engine: it registers the panel,
// renders the cursor glyph, and forwards dispatched events and scroll
// requests over the socket.
type pageConn struct {
	ctx             context.Context
	ws              *WSConn
	doc             *dom.Document
	log             *slog.Logger
	registerTimeout time.Duration
}

func newPageConn(ctx context.Context, ws *WSConn, doc *dom.Document, log *slog.Logger, registerTimeout time.Duration) *pageConn {
	return &pageConn{ctx: ctx, ws: ws, doc: doc, log: log, registerTimeout: registerTimeout}
}

// send writes v and reports a write failure on the socket's error channel so
// the run loop reconnects.
func (p *pageConn) send(v any) {
	if err := p.ws.WriteJSON(v); err != nil {
		p.ws.sendErr(err)
	}
}

// RegisterPanel announces the panel and waits for the page to accept it.
// Layout and detach messages arriving meanwhile are applied to the document.
func (p *pageConn) RegisterPanel(name string) (trackpad.PanelHandle, error) {
	if err := p.ws.WriteJSON(outHello{T: "hello", Name: name}); err != nil {
		return "", err
	}
	timer := time.NewTimer(p.registerTimeout)
	defer timer.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return "", p.ctx.Err()
		case err := <-p.ws.Err():
			return "", err
		case <-timer.C:
			return "", fmt.Errorf("no answer to hello within %s", p.registerTimeout)
		case m := <-p.ws.Messages():
			switch m.T {
			case "ready":
				h := m.Handle
				if h == "" {
					h = name
				}
				return trackpad.PanelHandle(h), nil
			case "reject":
				return "", fmt.Errorf("%w: %s", errPanelRejected, m.Reason)
			default:
				p.apply(m, nil)
			}
		}
	}
}

func (p *pageConn) ClosePanel(h trackpad.PanelHandle) error {
	return p.ws.WriteJSON(outClose{T: "close", Handle: string(h)})
}

func (p *pageConn) Dispatch(t trackpad.Target, ev trackpad.Event) {
	el, ok := t.(*dom.Element)
	if !ok {
		return
	}
	evDispatched.Add(1)
	if ev.Kind.IsDrag() {
		p.log.Debug("drag event", "type", ev.Type(), "target", el.ID, "x", ev.X, "y", ev.Y)
	}
	p.send(outDispatch{
		T:          "dispatch",
		Target:     el.ID,
		Type:       ev.Type(),
		X:          ev.X,
		Y:          ev.Y,
		Button:     ev.Button,
		Buttons:    ev.Buttons,
		Bubbles:    ev.Bubbles,
		Cancelable: ev.Cancelable,
	})
}

func (p *pageConn) Show(pt trackpad.Point) {
	p.send(outCursor{T: "cursor", Op: "show", X: pt.X, Y: pt.Y})
}

func (p *pageConn) Move(pt trackpad.Point) {
	p.send(outCursor{T: "cursor", Op: "move", X: pt.X, Y: pt.Y})
}

func (p *pageConn) Hide() {
	p.send(outCursor{T: "cursor", Op: "hide"})
}

func (p *pageConn) ScrollBy(dx, dy float64) {
	p.send(outScroll{T: "scroll", DX: dx, DY: dy})
}

// apply folds a page message into the document. When eng is set, a changed
// viewport is forwarded to it and the engine ticks so hover follows the new
// layout.
func (p *pageConn) apply(m pageMessage, eng *trackpad.Engine) {
	switch m.T {
	case "layout":
		var s dom.Snapshot
		if m.Viewport != nil {
			s.Viewport = *m.Viewport
		} else {
			s.Viewport = p.doc.Viewport()
		}
		s.Elements = m.Elements
		detached := p.doc.Apply(s)
		evLayouts.Add(1)
		p.log.Debug("layout", "elements", p.doc.Len(), "detached", detached,
			"w", s.Viewport.W, "h", s.Viewport.H)
		if eng == nil {
			return
		}
		if vp := eng.Viewport(); s.Viewport.W > 0 && s.Viewport.H > 0 &&
			(vp.Width != s.Viewport.W || vp.Height != s.Viewport.H) {
			eng.Resize(s.Viewport.W, s.Viewport.H)
			return
		}
		eng.Tick()
	case "detach":
		if p.doc.Detach(m.ID) {
			p.log.Debug("element detached", "id", m.ID)
		}
		if eng != nil {
			eng.Tick()
		}
	case "ready", "reject":
		// Only meaningful during registration.
	default:
		p.log.Debug("ignoring page message", "t", m.T)
	}
}
