package render

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/artifact-crop/internal/geometry"
)

// fit scales img into an RGBA canvas of the given size.
func fit(img image.Image, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	if img.Bounds().Size() == size {
		draw.Copy(dst, image.Point{}, img, img.Bounds(), draw.Src, nil)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// toRGBA returns img as an *image.RGBA, copying only when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rectangle{Max: b.Size()})
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}

// pen strokes antialiased outlines onto a canvas.
type pen struct {
	dasher *rasterx.Dasher
}

func newPen(dst draw.Image, width float64, c color.Color) *pen {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	d := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	d.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	d.SetColor(c)
	return &pen{dasher: d}
}

func (p *pen) line(a, b geometry.Point) {
	p.dasher.Start(rasterx.ToFixedP(a.X, a.Y))
	p.dasher.Line(rasterx.ToFixedP(b.X, b.Y))
	p.dasher.Stop(false)
}

func (p *pen) circle(center geometry.Point, r float64) {
	rasterx.AddCircle(center.X, center.Y, r, p.dasher)
}

func (p *pen) rect(a, b geometry.Point) {
	rasterx.AddRect(min(a.X, b.X), min(a.Y, b.Y), max(a.X, b.X), max(a.Y, b.Y), 0, p.dasher)
}

// flush paints everything stroked since the last flush.
func (p *pen) flush() {
	p.dasher.Draw()
	p.dasher.Clear()
}

// drawGrid draws one-pixel grid lines every spacing pixels, starting at
// offset, directly over img.
func drawGrid(img *image.RGBA, spacing, offset int, c color.RGBA) {
	if spacing <= 0 {
		return
	}
	b := img.Bounds()

	for x := b.Min.X + offset; x < b.Max.X; x += spacing {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			img.SetRGBA(x, y, c)
		}
	}

	for y := b.Min.Y + offset; y < b.Max.Y; y += spacing {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
