package label

import (
	"image/color"

	"gocv.io/x/gocv"

	"shape-labeler/pkg/colorutil"
)

// drawOrder fixes both the rendering sequence and the outline color per
// class. Later classes visually occlude earlier ones where strokes cross.
var drawOrder = []struct {
	class Class
	color color.RGBA
}{
	{Red, colorutil.Red},
	{Green, colorutil.Green},
	{Blue, colorutil.Blue},
}

// RenderOverlay draws the external contour of every labeled region onto a
// copy of the source photo, one fixed color per class, outlines only.
// The input Mats are not mutated; the caller owns the returned Mat.
func RenderOverlay(bgr, labels gocv.Mat, thickness int) gocv.Mat {
	overlay := bgr.Clone()

	for _, d := range drawOrder {
		region := classMask(labels, d.class)
		contours := gocv.FindContours(region, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		gocv.DrawContours(&overlay, contours, -1, d.color, thickness)
		contours.Close()
		region.Close()
	}

	return overlay
}

// classMask extracts labels == class as a 0/255 binary mask.
func classMask(labels gocv.Mat, c Class) gocv.Mat {
	region := gocv.NewMat()
	code := float64(c)
	gocv.InRangeWithScalar(labels,
		gocv.NewScalar(code, 0, 0, 0),
		gocv.NewScalar(code, 0, 0, 0),
		&region)
	return region
}
