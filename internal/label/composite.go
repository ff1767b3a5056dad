// Package label builds single-channel label images from per-color binary
// masks and renders diagnostic contour overlays.
package label

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Class is a pixel label code in the output mask.
type Class uint8

const (
	Background Class = 0
	Red        Class = 1
	Green      Class = 2
	Blue       Class = 3
)

func (c Class) String() string {
	switch c {
	case Background:
		return "background"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// ClassMask pairs a label class with its binary membership mask.
type ClassMask struct {
	Class Class
	Mask  gocv.Mat
}

// Composite folds an ordered list of (class, mask) pairs into one CV8U
// label image. Each pair writes its class code wherever its mask is
// nonzero; later pairs override earlier ones at the same pixel, which is
// the deterministic tie-break should the color thresholds ever overlap.
// The standard call order is red, green, blue.
//
// All masks must share the same dimensions; a mismatch is an error.
// The caller owns the returned Mat.
func Composite(pairs []ClassMask) (gocv.Mat, error) {
	if len(pairs) == 0 {
		return gocv.NewMat(), fmt.Errorf("no masks to composite")
	}

	h, w := pairs[0].Mask.Rows(), pairs[0].Mask.Cols()
	if h == 0 || w == 0 {
		return gocv.NewMat(), fmt.Errorf("empty mask for class %s", pairs[0].Class)
	}
	for _, p := range pairs[1:] {
		if p.Mask.Rows() != h || p.Mask.Cols() != w {
			return gocv.NewMat(), fmt.Errorf("mask shape mismatch: class %s is %dx%d, want %dx%d",
				p.Class, p.Mask.Cols(), p.Mask.Rows(), w, h)
		}
	}

	out := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for _, p := range pairs {
		code := uint8(p.Class)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if p.Mask.GetUCharAt(y, x) != 0 {
					out.SetUCharAt(y, x, code)
				}
			}
		}
	}

	return out, nil
}

// AreaFraction returns the proportion of pixels carrying a non-background
// label.
func AreaFraction(labels gocv.Mat) float64 {
	total := labels.Rows() * labels.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(labels)) / float64(total)
}
