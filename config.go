package main

// Bridge configuration.
//
// Settings are layered, later layers win:
//   defaults -> config.toml -> environment -> command-line flags

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"trackpad-bridge/internal/trackpad"
)

const configFile = "config.toml"

type BridgeConfig struct {
	WsURL       string `toml:"ws_url"`
	InputDevice string `toml:"input_device"`
	NoGrab      bool   `toml:"no_grab"`

	PanelName   string  `toml:"panel_name"`
	PanelWidth  float64 `toml:"panel_width"`
	PanelHeight float64 `toml:"panel_height"`
	StripHeight float64 `toml:"strip_height"`

	// Surface size used until the page reports its first layout.
	ViewportWidth  float64 `toml:"viewport_width"`
	ViewportHeight float64 `toml:"viewport_height"`

	Sensitivity   float64 `toml:"sensitivity"`
	DragThreshold float64 `toml:"drag_threshold"`
	Hotspot       float64 `toml:"hotspot"`
	WheelStep     float64 `toml:"wheel_step"`
	TickHz        int     `toml:"tick_hz"`

	// Empty disables the local status endpoint.
	StatusAddr string `toml:"status_addr"`

	Debug       bool `toml:"debug"`
	DumpEvents  bool `toml:"dump_events"`
	ListDevices bool `toml:"-"`

	ProbeSeconds           float64 `toml:"probe_seconds"`
	PingSeconds            float64 `toml:"ping_seconds"`
	PongTimeoutSeconds     float64 `toml:"pong_timeout_seconds"`
	RegisterTimeoutSeconds float64 `toml:"register_timeout_seconds"`
}

func defaultConfig() BridgeConfig {
	return BridgeConfig{
		WsURL:                  "ws://127.0.0.1:8000/ws/trackpad",
		NoGrab:                 false,
		PanelName:              trackpad.DefaultPanelName,
		PanelWidth:             400,
		PanelHeight:            300,
		StripHeight:            trackpad.DefaultStripHeight,
		ViewportWidth:          1280,
		ViewportHeight:         720,
		Sensitivity:            trackpad.DefaultSensitivity,
		DragThreshold:          trackpad.DefaultDragThreshold,
		Hotspot:                trackpad.DefaultHotspot,
		WheelStep:              40,
		TickHz:                 30,
		ProbeSeconds:           1.5,
		PingSeconds:            2,
		PongTimeoutSeconds:     8,
		RegisterTimeoutSeconds: 5,
	}
}

// configPath returns the default location of the config file.
func configPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "trackpad-bridge", configFile)
}

// loadConfigFile overlays the TOML file at path onto cfg. A missing file is
// not an error unless required is set.
func loadConfigFile(path string, required bool, cfg *BridgeConfig) error {
	_, err := toml.DecodeFile(path, cfg)
	if err == nil {
		return nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("read config %s: %w", path, err)
}

// writeConfigFile stores cfg at path, creating the directory if needed.
func writeConfigFile(path string, cfg BridgeConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// applyEnv overlays TRACKPAD_* environment variables onto cfg.
func applyEnv(cfg *BridgeConfig) {
	cfg.WsURL = getenvDefault("TRACKPAD_WS", cfg.WsURL)
	cfg.InputDevice = getenvDefault("INPUT_DEVICE", cfg.InputDevice)
	cfg.NoGrab = getenvBoolDefault("NO_GRAB", cfg.NoGrab)
	cfg.PanelName = getenvDefault("TRACKPAD_PANEL", cfg.PanelName)
	cfg.PanelWidth = getenvFloatDefault("PANEL_WIDTH", cfg.PanelWidth)
	cfg.PanelHeight = getenvFloatDefault("PANEL_HEIGHT", cfg.PanelHeight)
	cfg.StripHeight = getenvFloatDefault("STRIP_HEIGHT", cfg.StripHeight)
	cfg.ViewportWidth = getenvFloatDefault("VIEWPORT_WIDTH", cfg.ViewportWidth)
	cfg.ViewportHeight = getenvFloatDefault("VIEWPORT_HEIGHT", cfg.ViewportHeight)
	cfg.Sensitivity = getenvFloatDefault("SENSITIVITY", cfg.Sensitivity)
	cfg.DragThreshold = getenvFloatDefault("DRAG_THRESHOLD", cfg.DragThreshold)
	cfg.Hotspot = getenvFloatDefault("HOTSPOT", cfg.Hotspot)
	cfg.WheelStep = getenvFloatDefault("WHEEL_STEP", cfg.WheelStep)
	cfg.TickHz = getenvIntDefault("TICK_HZ", cfg.TickHz)
	cfg.StatusAddr = getenvDefault("STATUS_ADDR", cfg.StatusAddr)
	cfg.Debug = getenvBoolDefault("DEBUG", cfg.Debug)
	cfg.DumpEvents = getenvBoolDefault("DUMP_EVENTS", cfg.DumpEvents)
	cfg.ProbeSeconds = getenvFloatDefault("PROBE_SECONDS", cfg.ProbeSeconds)
	cfg.PingSeconds = getenvFloatDefault("PING_SECONDS", cfg.PingSeconds)
	cfg.PongTimeoutSeconds = getenvFloatDefault("PONG_TIMEOUT_SECONDS", cfg.PongTimeoutSeconds)
	cfg.RegisterTimeoutSeconds = getenvFloatDefault("REGISTER_TIMEOUT_SECONDS", cfg.RegisterTimeoutSeconds)
}

func (c BridgeConfig) validate() error {
	switch {
	case c.WsURL == "":
		return errors.New("ws url is empty")
	case c.PanelWidth <= 0 || c.PanelHeight <= 0:
		return fmt.Errorf("panel size %vx%v must be positive", c.PanelWidth, c.PanelHeight)
	case c.StripHeight < 0 || c.StripHeight >= c.PanelHeight:
		return fmt.Errorf("button strip height %v must be in [0, %v)", c.StripHeight, c.PanelHeight)
	case c.Sensitivity <= 0:
		return fmt.Errorf("sensitivity %v must be positive", c.Sensitivity)
	case c.DragThreshold < 0:
		return fmt.Errorf("drag threshold %v must not be negative", c.DragThreshold)
	case c.Hotspot < 0 || c.Hotspot > trackpad.DefaultCursorSize:
		return fmt.Errorf("hotspot %v must be in [0, %v]", c.Hotspot, trackpad.DefaultCursorSize)
	}
	return nil
}

// layout returns the input panel zones.
func (c BridgeConfig) layout() trackpad.Layout {
	return trackpad.NewLayout(c.PanelWidth, c.PanelHeight, c.StripHeight)
}

// engineOptions maps the config onto trackpad engine options.
func (c BridgeConfig) engineOptions() []trackpad.Option {
	return []trackpad.Option{
		trackpad.WithPanelName(c.PanelName),
		trackpad.WithLayout(c.layout()),
		trackpad.WithViewport(trackpad.Viewport{
			Width:      c.ViewportWidth,
			Height:     c.ViewportHeight,
			CursorSize: trackpad.DefaultCursorSize,
		}),
		trackpad.WithSensitivity(c.Sensitivity),
		trackpad.WithDragThreshold(c.DragThreshold),
		trackpad.WithHotspot(c.Hotspot),
	}
}

// configFlagValue finds -config before flag parsing, so the file can be
// loaded underneath the environment and the remaining flags.
func configFlagValue(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasVal {
			return val, true
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}
