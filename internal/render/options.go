package render

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Options controls preview rendering. Colours are "#rrggbb" hex strings.
type Options struct {
	// GridSpacing is the distance in display pixels between grid lines.
	GridSpacing int
	GridColor   string

	// LineColor strokes the selected rotation candidate's segments.
	LineColor string
	LineWidth float64

	CircleColor   string
	SquareColor   string
	RectColor     string
	FreeformColor string

	// StrokeWidth is the width of crop selection outlines.
	StrokeWidth float64
}

// DefaultOptions returns the standard preview look: a dark 20px grid, thin
// red segments and 2px red selection outlines.
func DefaultOptions() Options {
	return Options{
		GridSpacing:   20,
		GridColor:     "#404040",
		LineColor:     "#ff0000",
		LineWidth:     1,
		CircleColor:   "#ff0000",
		SquareColor:   "#c80000",
		RectColor:     "#ff0000",
		FreeformColor: "#ff0000",
		StrokeWidth:   2,
	}
}

// palette holds the parsed colours of an Options value.
type palette struct {
	grid     color.RGBA
	line     color.Color
	circle   color.Color
	square   color.Color
	rect     color.Color
	freeform color.Color
}

func parseColor(name, hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid %s colour %q: %w", name, hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func (o Options) palette() (palette, error) {
	var (
		p   palette
		err error
	)
	if p.grid, err = parseColor("grid", o.GridColor); err != nil {
		return p, err
	}

	fields := []struct {
		name string
		hex  string
		dst  *color.Color
	}{
		{"line", o.LineColor, &p.line},
		{"circle", o.CircleColor, &p.circle},
		{"square", o.SquareColor, &p.square},
		{"rectangle", o.RectColor, &p.rect},
		{"freeform", o.FreeformColor, &p.freeform},
	}
	for _, f := range fields {
		c, err := parseColor(f.name, f.hex)
		if err != nil {
			return p, err
		}
		*f.dst = c
	}
	return p, nil
}
