package main

// Bridge run loop.
//
// One goroutine reads the input device and decodes it into panel inputs.
// The run loop owns the trackpad engine and the document, and is the only
// goroutine that touches them: it selects over decoded input, page
// messages, socket errors and the animation ticker.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"trackpad-bridge/internal/dom"
	"trackpad-bridge/internal/trackpad"
)

// RunBridgeForever selects the input device and keeps a page session alive
// until ctx is done. It returns early only for errors a reconnect cannot
// fix, such as a page without the panel API.
func RunBridgeForever(ctx context.Context, cfg BridgeConfig, log *slog.Logger) error {
	if cfg.ListDevices {
		for _, d := range listProcInputDevices() {
			fmt.Printf("name=%q handlers=%v\n", d.name, d.handlers)
		}
		return nil
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	path, err := autoDetectActiveDevice(cfg.InputDevice, log, seconds(cfg.ProbeSeconds, 100*time.Millisecond))
	if err != nil {
		return err
	}
	log.Info("using input device", "path", path)
	evDeviceSelected.Set(path)

	pingEvery := seconds(cfg.PingSeconds, time.Second)
	pongWait := seconds(cfg.PongTimeoutSeconds, 2*time.Second)

	reconnectDelay := 500 * time.Millisecond
	maxReconnectDelay := 5 * time.Second

	for {
		ws, err := DialWS(ctx, cfg.WsURL, pingEvery, pongWait, log)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			j := time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
			log.Warn("ws connect error", "err", err, "retry_in", reconnectDelay+j)
			if !sleepCtx(ctx, reconnectDelay+j) {
				return nil
			}
			reconnectDelay = time.Duration(math.Min(float64(maxReconnectDelay), float64(reconnectDelay)*1.7))
			continue
		}

		log.Info("connected", "ws", cfg.WsURL)
		reconnectDelay = 500 * time.Millisecond
		evConnected.Set(1)

		err = runOnce(ctx, path, cfg, ws, log)
		ws.Close()
		evConnected.Set(0)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, errPanelRejected) {
			return err
		}
		log.Info("disconnected", "sessions", evSessions.Value(), "inputs", evInputs.Value(),
			"dispatched", evDispatched.Value(), "reconnect_in", reconnectDelay, "err", err)
		if !sleepCtx(ctx, reconnectDelay) {
			return nil
		}
		evReconnects.Add(1)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// readInput decodes the device stream and forwards committed input batches
// until the read fails or done is closed.
func readInput(f *os.File, dec *evdevDecoder, dump *slog.Logger, out chan<- []panelInput, errC chan<- error, done <-chan struct{}) {
	reader := bufio.NewReaderSize(f, 4096)
	parser := &inputParser{}
	chunk := make([]byte, 4096)
	for {
		n, err := reader.Read(chunk)
		if err != nil {
			select {
			case errC <- err:
			case <-done:
			}
			return
		}
		var batch []panelInput
		parser.feed(chunk[:n], func(etype uint16, code uint16, value int32) {
			if dump != nil {
				dump.Debug("ev", "type", etype, "code", code, "value", value)
			}
			batch = append(batch, dec.handle(etype, code, value)...)
		})
		if len(batch) == 0 {
			continue
		}
		select {
		case out <- batch:
		case <-done:
			return
		}
	}
}

// applyInput feeds one decoded input to the engine.
func applyInput(eng *trackpad.Engine, in panelInput) {
	switch in.kind {
	case touchStart:
		eng.TouchStart(in.id, in.p)
	case touchMove:
		eng.TouchMove(in.id, in.p)
	case touchEnd:
		eng.TouchEnd(in.id)
	case touchCancel:
		eng.TouchCancel(in.id)
	case wheel:
		eng.Wheel(in.p, in.dx, in.dy)
	}
}

func runOnce(ctx context.Context, path string, cfg BridgeConfig, ws *WSConn, log *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fd := int(f.Fd())
	if !cfg.NoGrab {
		tryGrab(fd)
	}

	dec := newEvdevDecoder(getRanges(fd), cfg.layout(), cfg.PanelWidth, cfg.PanelHeight, cfg.WheelStep)
	var dump *slog.Logger
	if cfg.DumpEvents {
		dump = log.With("path", path)
	}

	doc := dom.New()
	page := newPageConn(ctx, ws, doc, log, seconds(cfg.RegisterTimeoutSeconds, time.Second))

	opts := append(cfg.engineOptions(),
		trackpad.WithCursor(page),
		trackpad.WithScroller(page),
	)
	eng, err := trackpad.New(page, doc, page, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil && !errors.Is(err, trackpad.ErrClosed) {
			log.Debug("panel close", "err", err)
		}
	}()
	evSessions.Add(1)
	if vp := doc.Viewport(); vp.W > 0 && vp.H > 0 {
		eng.Resize(vp.W, vp.H)
	}

	inputs := make(chan []panelInput, 16)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go readInput(f, dec, dump, inputs, readErr, done)

	tick := time.NewTicker(time.Second / time.Duration(max(1, cfg.TickHz)))
	defer tick.Stop()

	lastAnyInput := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-ws.Err():
			return err
		case err := <-readErr:
			return fmt.Errorf("read %s: %w", path, err)
		case m := <-ws.Messages():
			page.apply(m, eng)
		case batch := <-inputs:
			lastAnyInput = time.Now()
			for _, in := range batch {
				applyInput(eng, in)
			}
			evInputs.Add(int64(len(batch)))
			evLastInputMS.Set(lastAnyInput.UnixMilli())
		case <-tick.C:
			if eng.Held(trackpad.RolePrimary) || eng.Held(trackpad.RoleSecondary) {
				eng.Tick()
			}
			// If input goes quiet, print a hint in debug mode.
			if cfg.Debug && time.Since(lastAnyInput) > 5*time.Second {
				log.Debug("no input events for 5s (try -list-devices, increase -probe-seconds, or pass -input /dev/input/eventX)",
					"path", path)
				lastAnyInput = time.Now()
			}
		}
	}
}
