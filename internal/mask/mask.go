// Package mask turns a BGR photo into a binary membership mask for one
// target color: HSV band thresholding, morphological cleanup, then
// connected-component filtering by area.
package mask

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"shape-labeler/internal/config"
	"shape-labeler/pkg/geometry"
)

// Component describes one surviving connected region of a binary mask.
type Component struct {
	Area   int
	Bounds geometry.RectInt
}

// Compute returns a binary mask (255 = member, 0 = background) of the
// pixels falling inside any of the given HSV bands, after morphological
// opening and closing and area-based component filtering.
//
// The result is a pure function of the inputs: no randomness, no side
// effects, and an all-zero mask is a valid outcome rather than an error.
// The caller owns the returned Mat.
func Compute(bgr gocv.Mat, bands []config.HSVRange, cleanup config.CleanupConfig) (gocv.Mat, error) {
	if bgr.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty input image")
	}
	if len(bands) == 0 {
		return gocv.NewMat(), fmt.Errorf("no threshold bands given")
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	// Union of all acceptance bands. Red arrives as two bands because its
	// hue wraps across 0; green as two to cover yellowish greens.
	m := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)
	for _, band := range bands {
		bandMask := gocv.NewMat()
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(band.Lo[0], band.Lo[1], band.Lo[2], 0),
			gocv.NewScalar(band.Hi[0], band.Hi[1], band.Hi[2], 0),
			&bandMask)
		gocv.BitwiseOr(m, bandMask, &m)
		bandMask.Close()
	}

	// Open removes isolated specks, close fills small interior gaps.
	// One pass each.
	openKernel := gocv.GetStructuringElement(gocv.MorphRect,
		image.Point{X: cleanup.OpenKernel, Y: cleanup.OpenKernel})
	defer openKernel.Close()
	closeKernel := gocv.GetStructuringElement(gocv.MorphRect,
		image.Point{X: cleanup.CloseKernel, Y: cleanup.CloseKernel})
	defer closeKernel.Close()

	gocv.MorphologyEx(m, &m, gocv.MorphOpen, openKernel)
	gocv.MorphologyEx(m, &m, gocv.MorphClose, closeKernel)

	filtered := filterByArea(m, cleanup.MinAreaFrac, cleanup.MaxAreaFrac)
	m.Close()

	return filtered, nil
}

// filterByArea keeps only 8-connected components whose pixel area lies in
// [minFrac*H*W, maxFrac*H*W] inclusive. Too small is sensor noise; too
// large is a whole-frame lighting artifact.
func filterByArea(m gocv.Mat, minFrac, maxFrac float64) gocv.Mat {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	count := gocv.ConnectedComponentsWithStats(m, &labels, &stats, &centroids)

	h, w := m.Rows(), m.Cols()
	minArea := int(float64(h*w) * minFrac)
	maxArea := int(float64(h*w) * maxFrac)

	keep := make([]bool, count)
	for i := 1; i < count; i++ {
		area := int(stats.GetIntAt(i, int(gocv.CCStatArea)))
		keep[i] = area >= minArea && area <= maxArea
	}

	out := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if keep[labels.GetIntAt(y, x)] {
				out.SetUCharAt(y, x, 255)
			}
		}
	}

	return out
}

// Regions returns the connected components of a binary mask with their
// areas and bounding boxes. Used for diagnostics; the pipeline itself
// only needs the mask.
func Regions(m gocv.Mat) []Component {
	if m.Empty() {
		return nil
	}

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	count := gocv.ConnectedComponentsWithStats(m, &labels, &stats, &centroids)

	components := make([]Component, 0, count-1)
	for i := 1; i < count; i++ {
		components = append(components, Component{
			Area: int(stats.GetIntAt(i, int(gocv.CCStatArea))),
			Bounds: geometry.NewRectInt(
				int(stats.GetIntAt(i, int(gocv.CCStatLeft))),
				int(stats.GetIntAt(i, int(gocv.CCStatTop))),
				int(stats.GetIntAt(i, int(gocv.CCStatWidth))),
				int(stats.GetIntAt(i, int(gocv.CCStatHeight))),
			),
		})
	}

	return components
}
