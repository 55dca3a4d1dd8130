package config

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/artifact-crop/internal/detection"
	"github.com/ironsheep/artifact-crop/internal/render"
	"github.com/ironsheep/artifact-crop/internal/session"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig_MatchesPackageDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if got, want := cfg.DetectionParams(), detection.DefaultParams(); got != want {
		t.Errorf("DetectionParams:\n got %+v\nwant %+v", got, want)
	}
	if got, want := cfg.RenderOptions(), render.DefaultOptions(); got != want {
		t.Errorf("RenderOptions:\n got %+v\nwant %+v", got, want)
	}
	if cfg.Mode() != session.ModeCircle {
		t.Errorf("Mode: got %v, want circle", cfg.Mode())
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel: got %v, want info", cfg.SlogLevel())
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.json")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", path, err)
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("Load(%q) should return defaults, got %+v", path, cfg)
		}
	}
}

func TestLoad_OverridesAndValidates(t *testing.T) {
	path := writeConfig(t, `{
		"log_level": "debug",
		"display_width": 800,
		"display_height": -1,
		"default_mode": "rect",
		"blur_kernel": 4,
		"canny_low": 40,
		"canny_high": 10,
		"circle_threshold": 300,
		"rect_epsilon": 2,
		"grid_color": "bogus",
		"line_color": "#00ff00"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	d := DefaultConfig()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"log level", cfg.SlogLevel(), slog.LevelDebug},
		{"viewport", cfg.Viewport(), image.Pt(800, d.DisplayHeight)},
		{"mode", cfg.Mode(), session.ModeRectangle},
		{"blur kernel made odd", cfg.BlurKernel, 5},
		{"canny high above low", cfg.CannyHigh, 120.0},
		{"circle threshold clamped", cfg.CircleThreshold, 255},
		{"rect epsilon reset", cfg.RectEpsilon, d.RectEpsilon},
		{"invalid colour reset", cfg.GridColor, d.GridColor},
		{"valid colour kept", cfg.LineColor, "#00ff00"},
		{"untouched field", cfg.RectAnalysisSize, d.RectAnalysisSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	p := cfg.DetectionParams()
	if p.Lines.Viewport != image.Pt(800, d.DisplayHeight) || p.Circles.Threshold != 255 {
		t.Errorf("DetectionParams did not carry overrides: %+v", p)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"display_width": `)

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if *cfg != *DefaultConfig() {
		t.Error("a decode error should return defaults")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultMode = "freeform"
	cfg.GridSpacing = 32

	path := filepath.Join(t.TempDir(), "saved.json")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.env)
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			if cfg.SlogLevel() != tt.want {
				t.Errorf("got %v, want %v", cfg.SlogLevel(), tt.want)
			}
		})
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultMode = "rectangle"

	opts := cfg.SessionOptions("out.png")
	want := session.Options{
		Viewport:    image.Pt(1280, 720),
		InitialMode: session.ModeRectangle,
		OutputPath:  "out.png",
		CacheSize:   2,
	}
	if opts != want {
		t.Errorf("got %+v, want %+v", opts, want)
	}
}
