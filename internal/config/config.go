package config

import (
	"encoding/json"
	"image"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/artifact-crop/internal/detection"
	"github.com/ironsheep/artifact-crop/internal/render"
	"github.com/ironsheep/artifact-crop/internal/session"
	"github.com/ironsheep/artifact-crop/internal/vision"
)

// LogLevelEnv overrides the configured log level when set.
const LogLevelEnv = "ARTIFACT_CROP_LOG_LEVEL"

// Config holds runtime configuration for detection, rendering and the
// session. Fields may be loaded from a JSON file and overridden by
// command-line flags.
type Config struct {
	LogLevel string `json:"log_level"`

	// Display area previews are fitted into. Line analysis runs at this
	// resolution too.
	DisplayWidth  int `json:"display_width"`
	DisplayHeight int `json:"display_height"`

	DefaultMode       string `json:"default_mode"`
	RotationCacheSize int    `json:"rotation_cache_size"`

	// Line detection
	BlurKernel     int     `json:"blur_kernel"`
	CannyLow       float64 `json:"canny_low"`
	CannyHigh      float64 `json:"canny_high"`
	HoughThreshold int     `json:"hough_threshold"`
	MinLineLength  float64 `json:"min_line_length"`
	MaxLineGap     float64 `json:"max_line_gap"`

	// Circle detection
	CircleAnalysisSize int     `json:"circle_analysis_size"`
	CircleThreshold    int     `json:"circle_threshold"`
	CircleMinDist      float64 `json:"circle_min_dist"`
	CircleParam1       float64 `json:"circle_param1"`
	CircleParam2       float64 `json:"circle_param2"`
	CircleMinRadius    int     `json:"circle_min_radius"`
	CircleMaxRadius    int     `json:"circle_max_radius"`

	// Rectangle detection
	RectAnalysisSize int     `json:"rect_analysis_size"`
	RectThreshold    int     `json:"rect_threshold"`
	RectEpsilon      float64 `json:"rect_epsilon"`

	// Preview overlays
	GridSpacing   int     `json:"grid_spacing"`
	GridColor     string  `json:"grid_color"`
	LineColor     string  `json:"line_color"`
	LineWidth     float64 `json:"line_width"`
	CircleColor   string  `json:"circle_color"`
	SquareColor   string  `json:"square_color"`
	RectColor     string  `json:"rect_color"`
	FreeformColor string  `json:"freeform_color"`
	StrokeWidth   float64 `json:"stroke_width"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	p := detection.DefaultParams()
	r := render.DefaultOptions()
	return &Config{
		LogLevel:          "info",
		DisplayWidth:      p.Lines.Viewport.X,
		DisplayHeight:     p.Lines.Viewport.Y,
		DefaultMode:       session.ModeCircle.String(),
		RotationCacheSize: 2,

		BlurKernel:     p.Lines.BlurKernel,
		CannyLow:       p.Lines.CannyLow,
		CannyHigh:      p.Lines.CannyHigh,
		HoughThreshold: p.Lines.Hough.Threshold,
		MinLineLength:  p.Lines.Hough.MinLineLength,
		MaxLineGap:     p.Lines.Hough.MaxLineGap,

		CircleAnalysisSize: p.Circles.AnalysisSize,
		CircleThreshold:    int(p.Circles.Threshold),
		CircleMinDist:      p.Circles.Hough.MinDist,
		CircleParam1:       p.Circles.Hough.Param1,
		CircleParam2:       p.Circles.Hough.Param2,
		CircleMinRadius:    p.Circles.Hough.MinRadius,
		CircleMaxRadius:    p.Circles.Hough.MaxRadius,

		RectAnalysisSize: p.Rects.AnalysisSize,
		RectThreshold:    int(p.Rects.Threshold),
		RectEpsilon:      p.Rects.EpsilonFraction,

		GridSpacing:   r.GridSpacing,
		GridColor:     r.GridColor,
		LineColor:     r.LineColor,
		LineWidth:     r.LineWidth,
		CircleColor:   r.CircleColor,
		SquareColor:   r.SquareColor,
		RectColor:     r.RectColor,
		FreeformColor: r.FreeformColor,
		StrokeWidth:   r.StrokeWidth,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()

	if _, ok := parseLevel(c.LogLevel); !ok {
		c.LogLevel = d.LogLevel
	}
	if c.DisplayWidth <= 0 {
		c.DisplayWidth = d.DisplayWidth
	}
	if c.DisplayHeight <= 0 {
		c.DisplayHeight = d.DisplayHeight
	}
	if _, err := session.ParseCropMode(c.DefaultMode); err != nil {
		c.DefaultMode = d.DefaultMode
	}
	if c.RotationCacheSize <= 0 {
		c.RotationCacheSize = d.RotationCacheSize
	}

	// Gaussian kernels are odd.
	if c.BlurKernel <= 0 {
		c.BlurKernel = d.BlurKernel
	}
	if c.BlurKernel%2 == 0 {
		c.BlurKernel++
	}
	if c.CannyLow <= 0 {
		c.CannyLow = d.CannyLow
	}
	if c.CannyHigh <= c.CannyLow {
		c.CannyHigh = c.CannyLow * 3
	}
	if c.HoughThreshold <= 0 {
		c.HoughThreshold = d.HoughThreshold
	}
	if c.MinLineLength < 0 {
		c.MinLineLength = d.MinLineLength
	}
	if c.MaxLineGap < 0 {
		c.MaxLineGap = d.MaxLineGap
	}

	if c.CircleAnalysisSize <= 0 {
		c.CircleAnalysisSize = d.CircleAnalysisSize
	}
	c.CircleThreshold = clampByte(c.CircleThreshold)
	if c.CircleMinDist <= 0 {
		c.CircleMinDist = d.CircleMinDist
	}
	if c.CircleParam1 <= 0 {
		c.CircleParam1 = d.CircleParam1
	}
	if c.CircleParam2 <= 0 {
		c.CircleParam2 = d.CircleParam2
	}
	if c.CircleMinRadius < 0 {
		c.CircleMinRadius = 0
	}
	if c.CircleMaxRadius < 0 || (c.CircleMaxRadius > 0 && c.CircleMaxRadius < c.CircleMinRadius) {
		c.CircleMaxRadius = 0
	}

	if c.RectAnalysisSize <= 0 {
		c.RectAnalysisSize = d.RectAnalysisSize
	}
	c.RectThreshold = clampByte(c.RectThreshold)
	if c.RectEpsilon <= 0 || c.RectEpsilon >= 1 {
		c.RectEpsilon = d.RectEpsilon
	}

	if c.GridSpacing <= 0 {
		c.GridSpacing = d.GridSpacing
	}
	if c.LineWidth <= 0 {
		c.LineWidth = d.LineWidth
	}
	if c.StrokeWidth <= 0 {
		c.StrokeWidth = d.StrokeWidth
	}
	for _, f := range []struct{ value, def *string }{
		{&c.GridColor, &d.GridColor},
		{&c.LineColor, &d.LineColor},
		{&c.CircleColor, &d.CircleColor},
		{&c.SquareColor, &d.SquareColor},
		{&c.RectColor, &d.RectColor},
		{&c.FreeformColor, &d.FreeformColor},
	} {
		if _, err := colorful.Hex(*f.value); err != nil {
			*f.value = *f.def
		}
	}
	return nil
}

func clampByte(v int) int {
	return min(max(v, 0), math.MaxUint8)
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(LogLevelEnv); v != "" {
		if _, ok := parseLevel(v); ok {
			c.LogLevel = strings.ToLower(v)
		}
	}
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// Viewport returns the display area.
func (c *Config) Viewport() image.Point {
	return image.Pt(c.DisplayWidth, c.DisplayHeight)
}

// Mode returns the initial crop mode.
func (c *Config) Mode() session.CropMode {
	mode, err := session.ParseCropMode(c.DefaultMode)
	if err != nil {
		return session.ModeCircle
	}
	return mode
}

// DetectionParams converts the detection fields.
func (c *Config) DetectionParams() detection.Params {
	p := detection.DefaultParams()
	p.Lines.Viewport = c.Viewport()
	p.Lines.BlurKernel = c.BlurKernel
	p.Lines.CannyLow = c.CannyLow
	p.Lines.CannyHigh = c.CannyHigh
	p.Lines.Hough.Threshold = c.HoughThreshold
	p.Lines.Hough.MinLineLength = c.MinLineLength
	p.Lines.Hough.MaxLineGap = c.MaxLineGap

	p.Circles = detection.CircleParams{
		AnalysisSize: c.CircleAnalysisSize,
		Threshold:    uint8(clampByte(c.CircleThreshold)),
		Hough: vision.CircleParams{
			DP:        p.Circles.Hough.DP,
			MinDist:   c.CircleMinDist,
			Param1:    c.CircleParam1,
			Param2:    c.CircleParam2,
			MinRadius: c.CircleMinRadius,
			MaxRadius: c.CircleMaxRadius,
		},
	}

	p.Rects = detection.RectParams{
		AnalysisSize:    c.RectAnalysisSize,
		Threshold:       uint8(clampByte(c.RectThreshold)),
		EpsilonFraction: c.RectEpsilon,
	}
	return p
}

// RenderOptions converts the overlay fields.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		GridSpacing:   c.GridSpacing,
		GridColor:     c.GridColor,
		LineColor:     c.LineColor,
		LineWidth:     c.LineWidth,
		CircleColor:   c.CircleColor,
		SquareColor:   c.SquareColor,
		RectColor:     c.RectColor,
		FreeformColor: c.FreeformColor,
		StrokeWidth:   c.StrokeWidth,
	}
}

// SessionOptions returns controller options writing to outputPath.
func (c *Config) SessionOptions(outputPath string) session.Options {
	return session.Options{
		Viewport:    c.Viewport(),
		InitialMode: c.Mode(),
		OutputPath:  outputPath,
		CacheSize:   c.RotationCacheSize,
	}
}
