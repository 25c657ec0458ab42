package main

// Trackpad bridge entrypoint.
//
// This directory builds a single self-contained binary that:
// - reads /dev/input/event* (Linux input) from a touch panel or mouse
// - drives a virtual cursor and synthetic pointer/drag events
// - streams those events to the page over WebSocket
//
// Code is split across:
// - util.go: env/flag helpers
// - config.go: layered configuration (defaults, config.toml, env, flags)
// - linux_input.go: Linux input constants + ioctl + input_event parsing
// - decoder.go: evdev frames -> panel touch/wheel inputs
// - device_select.go: device listing + probing/selection
// - ws_client.go: robust websocket client (ping/pong, TCP keepalive, reconnect signals)
// - page.go: page protocol (panel registration, dispatch, cursor glyph)
// - bridge.go: main run loop
// - status.go: optional local status endpoint + expvar counters
// - internal/trackpad: the pointer/drag engine
// - internal/dom: page layout snapshot + hit testing

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trackpad-bridge/internal/trackpad"
)

func main() {
	cfg := defaultConfig()

	cfgPath, explicit := configPath(), false
	if p, ok := configFlagValue(os.Args[1:]); ok {
		cfgPath, explicit = p, true
	}
	if err := loadConfigFile(cfgPath, explicit, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	applyEnv(&cfg)

	var writeConfig bool
	flag.String("config", cfgPath, "Path to config.toml")
	flag.BoolVar(&writeConfig, "write-config", false, "Write the effective configuration to -config and exit")
	flag.StringVar(&cfg.WsURL, "ws", cfg.WsURL, "WebSocket URL of the page hosting the panel")
	flag.StringVar(&cfg.InputDevice, "input", cfg.InputDevice, "Input device path (e.g. /dev/input/event3). If empty, auto-detect.")
	flag.BoolVar(&cfg.NoGrab, "no-grab", cfg.NoGrab, "Do not EVIOCGRAB the input device")
	flag.StringVar(&cfg.PanelName, "panel", cfg.PanelName, "Panel name announced to the page")
	flag.Float64Var(&cfg.PanelWidth, "panel-width", cfg.PanelWidth, "Panel surface width the device is mapped onto")
	flag.Float64Var(&cfg.PanelHeight, "panel-height", cfg.PanelHeight, "Panel surface height the device is mapped onto")
	flag.Float64Var(&cfg.StripHeight, "strip-height", cfg.StripHeight, "Height of the left/right button strip at the bottom of the panel")
	flag.Float64Var(&cfg.ViewportWidth, "viewport-width", cfg.ViewportWidth, "Page viewport width until the page reports its layout")
	flag.Float64Var(&cfg.ViewportHeight, "viewport-height", cfg.ViewportHeight, "Page viewport height until the page reports its layout")
	flag.Float64Var(&cfg.Sensitivity, "sensitivity", cfg.Sensitivity, "Cursor units per panel unit of pad motion")
	flag.Float64Var(&cfg.DragThreshold, "drag-threshold", cfg.DragThreshold, "Distance a held button must travel before a drag starts")
	flag.Float64Var(&cfg.Hotspot, "hotspot", cfg.Hotspot, "Offset from the cursor glyph's corner to the point that is hit-tested")
	flag.Float64Var(&cfg.WheelStep, "wheel-step", cfg.WheelStep, "Scroll distance per wheel detent")
	flag.IntVar(&cfg.TickHz, "tick-hz", cfg.TickHz, "Frame rate of hold/drag dispatch while a button is held")
	flag.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "Serve /status and /debug/vars on this address (e.g. 127.0.0.1:8091). Empty disables.")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Log contact transitions, page messages and probe results")
	flag.BoolVar(&cfg.DumpEvents, "dump-events", cfg.DumpEvents, "Log raw input events (type/code/value). Noisy.")
	flag.BoolVar(&cfg.ListDevices, "list-devices", false, "Print /proc/bus/input/devices names/handlers and exit")
	flag.Float64Var(&cfg.ProbeSeconds, "probe-seconds", cfg.ProbeSeconds, "Seconds to probe each /dev/input/event* for activity when auto-detecting (touch the panel during this!)")
	flag.Float64Var(&cfg.PingSeconds, "ping-seconds", cfg.PingSeconds, "WebSocket ping interval (seconds). Aggressive keepalive.")
	flag.Float64Var(&cfg.PongTimeoutSeconds, "pong-timeout-seconds", cfg.PongTimeoutSeconds, "Reconnect if no pong is received in this window.")
	flag.Float64Var(&cfg.RegisterTimeoutSeconds, "register-timeout-seconds", cfg.RegisterTimeoutSeconds, "How long to wait for the page to accept the panel.")
	flag.Parse()

	if writeConfig {
		if err := writeConfigFile(cfgPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", cfgPath)
		return
	}

	level := slog.LevelInfo
	if cfg.Debug || cfg.DumpEvents {
		level = slog.LevelDebug
	}
	base := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	trackpad.SetLogger(base.With("component", "trackpad"))
	log := base.With("component", "bridge")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.StatusAddr != "" && !cfg.ListDevices {
		go serveStatus(ctx, cfg.StatusAddr, log)
	}

	if err := RunBridgeForever(ctx, cfg, log); err != nil {
		log.Error("fatal", "err", err)
		stop()
		os.Exit(1)
	}
}
