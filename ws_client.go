package main

// WebSocket client with:
// - TCP keepalive on the dialer
// - aggressive ping ticker
// - pong watchdog (read deadline)
// - background reader that decodes page messages (and processes control frames)

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WSConn struct {
	Conn *websocket.Conn
	mu   sync.Mutex
	log  *slog.Logger

	done chan struct{}
	once sync.Once
	errC chan error
	msgC chan pageMessage
}

func DialWS(ctx context.Context, wsURL string, pingEvery time.Duration, pongWait time.Duration, log *slog.Logger) (*WSConn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}

	d := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		NetDialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 15 * time.Second,
		}).DialContext,
	}

	conn, _, err := d.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	w := &WSConn{
		Conn: conn,
		log:  log,
		done: make(chan struct{}),
		errC: make(chan error, 1),
		msgC: make(chan pageMessage, 64),
	}

	// Keepalive needs READ to process PONG/close frames.
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(_ string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go w.readLoop(pongWait)
	go w.pingLoop(pingEvery)
	return w, nil
}

func (w *WSConn) Close() {
	w.once.Do(func() { close(w.done) })
	_ = w.Conn.Close()
}

func (w *WSConn) Err() <-chan error { return w.errC }

// Messages delivers decoded page messages in arrival order.
func (w *WSConn) Messages() <-chan pageMessage { return w.msgC }

func (w *WSConn) sendErr(err error) {
	select {
	case w.errC <- err:
	default:
	}
}

func (w *WSConn) readLoop(pongWait time.Duration) {
	for {
		_, b, err := w.Conn.ReadMessage()
		if err != nil {
			w.sendErr(err)
			return
		}
		// Any page traffic proves the peer is alive.
		_ = w.Conn.SetReadDeadline(time.Now().Add(pongWait))

		var m pageMessage
		if err := json.Unmarshal(b, &m); err != nil {
			w.log.Warn("dropping malformed page message", "err", err, "len", len(b))
			continue
		}
		select {
		case w.msgC <- m:
		case <-w.done:
			return
		}
	}
}

func (w *WSConn) pingLoop(pingEvery time.Duration) {
	t := time.NewTicker(pingEvery)
	defer t.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-t.C:
			w.mu.Lock()
			w.Conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			err := w.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			w.mu.Unlock()
			if err != nil {
				w.sendErr(err)
				return
			}
		}
	}
}

func (w *WSConn) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return w.Conn.WriteMessage(websocket.TextMessage, b)
}
