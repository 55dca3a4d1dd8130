// Package detection proposes rotation and crop candidates for a photographed
// artifact.
//
// Three pipelines share one vision.Primitives backend:
//
//   - Lines: the source is fitted into the display viewport, blurred, edge
//     detected and passed to the probabilistic Hough transform. Segments are
//     binned by rounded angle and the bins ranked by total supported length.
//   - Circles: the rotated image is resized so its shorter side equals the
//     analysis size, binarized per channel, and passed to the Hough circle
//     transform. Circles touching the analysis square are discarded.
//   - Rectangles: the rotated image is resized the same way, inverse
//     thresholded, and its contours approximated as polygons. Four-vertex
//     polygons become axis-aligned bounding boxes.
//
// # Coordinate System
//
// Segments are reported in analysis space. Circle and rectangle candidates are
// scaled back to the pixel space of the image that was analysed, truncating
// toward zero.
//
// # Empty Results
//
// ErrNoRotationCandidates and ErrNoShapeCandidates are not failures; callers
// substitute a 0° rotation or the whole-image rectangle.
package detection
