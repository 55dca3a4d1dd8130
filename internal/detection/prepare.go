package detection

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// resize scales img to exactly size using linear resampling.
func resize(img image.Image, size image.Point) image.Image {
	b := img.Bounds()
	if b.Dx() == size.X && b.Dy() == size.Y {
		return img
	}
	return imaging.Resize(img, size.X, size.Y, imaging.Linear)
}

// toGray converts img to 8-bit luminance (ITU-R BT.601 weights).
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	gs := imaging.Grayscale(img)
	b := gs.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := gs.Pix[y*gs.Stride : y*gs.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out
}

// blurGray applies a Gaussian blur whose support matches a kernel x kernel
// window.
func blurGray(img *image.Gray, kernel int) *image.Gray {
	if kernel <= 1 {
		return img
	}
	radius := float64(kernel-1) / 2
	return toGray(blur.Gaussian(img, radius))
}

// thresholdChannels applies a binary threshold to each colour channel
// independently: values above level become 255, the rest 0.
func thresholdChannels(img image.Image, level uint8) image.Image {
	bin := func(v uint8) uint8 {
		if v > level {
			return 255
		}
		return 0
	}
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{R: bin(c.R), G: bin(c.G), B: bin(c.B), A: c.A}
	})
}

// thresholdInverse maps luminance above level to 0 and everything else to 255.
func thresholdInverse(img *image.Gray, level uint8) *image.Gray {
	if level == 255 {
		out := image.NewGray(img.Bounds())
		for i := range out.Pix {
			out.Pix[i] = 255
		}
		return out
	}
	return toGray(effect.Invert(segment.Threshold(img, level+1)))
}

// circleAnalysisImage prepares the binarized grayscale raster the circle
// detector runs on.
func circleAnalysisImage(src image.Image, size image.Point, level uint8) *image.Gray {
	return toGray(thresholdChannels(resize(src, size), level))
}

// rectAnalysisImage prepares the inverse-thresholded raster the rectangle
// detector extracts contours from.
func rectAnalysisImage(src image.Image, size image.Point, level uint8) *image.Gray {
	return thresholdInverse(toGray(resize(src, size)), level)
}

// lineAnalysisImage prepares the blurred grayscale raster fed to Canny.
func lineAnalysisImage(src image.Image, size image.Point, kernel int) *image.Gray {
	return blurGray(toGray(resize(src, size)), kernel)
}
