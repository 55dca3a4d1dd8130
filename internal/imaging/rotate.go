package imaging

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/artifact-crop/internal/geometry"
)

// Warper applies an affine transform to a raster. vision.Primitives satisfies
// it.
type Warper interface {
	WarpAffine(src image.Image, m geometry.Affine, size image.Point) (image.Image, error)
}

// anglePrecision is the resolution normalized angles are rounded to, so that
// repeated step adjustments do not accumulate float drift.
const anglePrecision = 1e9

// NormalizeAngle maps degrees into (-180, 180], rounded to 1e-9 degrees.
func NormalizeAngle(degrees float64) float64 {
	for degrees > 180 {
		degrees -= 360
	}
	for degrees <= -180 {
		degrees += 360
	}
	return math.Round(degrees*anglePrecision) / anglePrecision
}

// RotationKey identifies a rotation by its normalized angle formatted with two
// decimals. Angles that format the same share one rotated raster.
func RotationKey(degrees float64) string {
	key := strconv.FormatFloat(NormalizeAngle(degrees), 'f', 2, 64)
	if key == "-0.00" {
		key = "0.00"
	}
	return key
}

// Rotate turns src counter-clockwise by degrees about its raster center
// ((cols-1)/2, (rows-1)/2) at unit scale. The output keeps the source canvas
// size, so corners rotated past the edge are clipped and uncovered areas are
// black.
//
// A normalized angle of zero returns a deep copy without warping.
func Rotate(w Warper, src image.Image, degrees float64) (image.Image, error) {
	degrees = NormalizeAngle(degrees)
	b := src.Bounds()
	m := geometry.RotationAbout(geometry.RasterCenter(b.Dx(), b.Dy()), degrees)
	if m.IsIdentity(0) {
		return imaging.Clone(src), nil
	}

	out, err := w.WarpAffine(src, m, b.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to rotate by %s°: %w", RotationKey(degrees), err)
	}
	return out, nil
}

// RotationCache keeps recently rotated rasters keyed by RotationKey, so that
// returning to an angle after navigating back does not warp the full-resolution
// image again.
//
// RotationCache is safe for concurrent use. Cached rasters must be treated as
// read-only.
type RotationCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	order  []string
	limit  int
}

// NewRotationCache creates a cache holding at most limit rasters. A limit
// below 1 is treated as 1.
func NewRotationCache(limit int) *RotationCache {
	return &RotationCache{
		images: make(map[string]image.Image),
		limit:  max(limit, 1),
	}
}

// Rotate returns src rotated by degrees, warping only on a cache miss. It also
// returns the rotation key and whether the raster came from the cache.
//
// The cache assumes src is the same raster for every call; call Clear when the
// source changes.
func (c *RotationCache) Rotate(w Warper, src image.Image, degrees float64) (image.Image, string, bool, error) {
	key := RotationKey(degrees)

	c.mu.RLock()
	if img, ok := c.images[key]; ok {
		c.mu.RUnlock()
		return img, key, true, nil
	}
	c.mu.RUnlock()

	img, err := Rotate(w, src, degrees)
	if err != nil {
		return nil, key, false, err
	}

	c.mu.Lock()
	if _, ok := c.images[key]; !ok {
		c.order = append(c.order, key)
	}
	c.images[key] = img
	for len(c.order) > c.limit {
		delete(c.images, c.order[0])
		c.order = c.order[1:]
	}
	c.mu.Unlock()

	return img, key, false, nil
}

// Len reports how many rasters are cached.
func (c *RotationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes every cached raster.
func (c *RotationCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.order = nil
	c.mu.Unlock()
}
