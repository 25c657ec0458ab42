package main

import (
	"os"
	"path/filepath"
	"testing"

	"trackpad-bridge/internal/dom"
	"trackpad-bridge/internal/trackpad"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	l := cfg.layout()
	if l.Pad.H != cfg.PanelHeight-cfg.StripHeight {
		t.Errorf("pad height = %v, want %v", l.Pad.H, cfg.PanelHeight-cfg.StripHeight)
	}
	if cfg.Sensitivity != trackpad.DefaultSensitivity || cfg.DragThreshold != trackpad.DefaultDragThreshold {
		t.Errorf("engine defaults not carried: %+v", cfg)
	}
}

func TestConfigLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
ws_url = "ws://file:1/ws"
sensitivity = 3.5
tick_hz = 20
strip_height = 40
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	if err := loadConfigFile(path, true, &cfg); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	t.Setenv("SENSITIVITY", "1.25")
	t.Setenv("TRACKPAD_WS", "")
	applyEnv(&cfg)

	if cfg.WsURL != "ws://file:1/ws" {
		t.Errorf("WsURL = %q, want file value", cfg.WsURL)
	}
	if cfg.Sensitivity != 1.25 {
		t.Errorf("Sensitivity = %v, want env value 1.25", cfg.Sensitivity)
	}
	if cfg.TickHz != 20 || cfg.StripHeight != 40 {
		t.Errorf("TickHz, StripHeight = %v, %v; want 20, 40", cfg.TickHz, cfg.StripHeight)
	}
	if cfg.PanelWidth != 400 {
		t.Errorf("PanelWidth = %v, want default 400", cfg.PanelWidth)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg := defaultConfig()
	if err := loadConfigFile(path, false, &cfg); err != nil {
		t.Errorf("optional missing file: %v", err)
	}
	if err := loadConfigFile(path, true, &cfg); err == nil {
		t.Error("required missing file: want error")
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	want := defaultConfig()
	want.PanelName = "Pad 2"
	want.DragThreshold = 8
	if err := writeConfigFile(path, want); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}
	var got BridgeConfig
	if err := loadConfigFile(path, true, &got); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if got != want {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*BridgeConfig)
	}{
		{"empty url", func(c *BridgeConfig) { c.WsURL = "" }},
		{"zero width", func(c *BridgeConfig) { c.PanelWidth = 0 }},
		{"strip too tall", func(c *BridgeConfig) { c.StripHeight = c.PanelHeight }},
		{"negative strip", func(c *BridgeConfig) { c.StripHeight = -1 }},
		{"zero sensitivity", func(c *BridgeConfig) { c.Sensitivity = 0 }},
		{"negative threshold", func(c *BridgeConfig) { c.DragThreshold = -1 }},
		{"negative hotspot", func(c *BridgeConfig) { c.Hotspot = -1 }},
		{"hotspot past glyph", func(c *BridgeConfig) { c.Hotspot = trackpad.DefaultCursorSize + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(&cfg)
			if err := cfg.validate(); err == nil {
				t.Error("validate() = nil, want error")
			}
		})
	}
}

func TestConfigFlagValue(t *testing.T) {
	tests := []struct {
		args []string
		want string
		ok   bool
	}{
		{[]string{"-debug"}, "", false},
		{[]string{"-config", "/etc/tp.toml"}, "/etc/tp.toml", true},
		{[]string{"--config=/tmp/a.toml", "-debug"}, "/tmp/a.toml", true},
		{[]string{"-debug", "--", "-config", "x"}, "", false},
		{[]string{"-config"}, "", false},
	}
	for _, tt := range tests {
		got, ok := configFlagValue(tt.args)
		if got != tt.want || ok != tt.ok {
			t.Errorf("configFlagValue(%q) = %q, %v; want %q, %v", tt.args, got, ok, tt.want, tt.ok)
		}
	}
}

func TestConfigHotspotReachesEvents(t *testing.T) {
	for _, hotspot := range []float64{0, trackpad.DefaultHotspot, 12} {
		doc := dom.New()
		doc.Apply(dom.Snapshot{
			Viewport: dom.Size{W: 800, H: 600},
			Elements: []dom.ElementInfo{{ID: "page", W: 800, H: 600}},
		})
		var down *trackpad.Event
		out := trackpad.DispatcherFunc(func(_ trackpad.Target, ev trackpad.Event) {
			if ev.Kind == trackpad.KindPress {
				down = &ev
			}
		})

		cfg := defaultConfig()
		cfg.ViewportWidth, cfg.ViewportHeight = 800, 600
		cfg.Hotspot = hotspot
		eng, err := trackpad.New(stubHost{}, doc, out, cfg.engineOptions()...)
		if err != nil {
			t.Fatalf("trackpad.New: %v", err)
		}
		l := cfg.layout()
		eng.TouchStart(1, trackpad.Pt(l.Left.X+1, l.Left.Y+1))
		eng.TouchEnd(1)

		if down == nil {
			t.Fatalf("hotspot %v: no mousedown dispatched", hotspot)
		}
		c := eng.Cursor()
		if down.X != c.X+hotspot || down.Y != c.Y+hotspot {
			t.Errorf("hotspot %v: mousedown at (%v,%v), cursor at %v", hotspot, down.X, down.Y, c)
		}
	}
}
