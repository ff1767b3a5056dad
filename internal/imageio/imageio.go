// Package imageio provides image decoding into OpenCV Mats, artifact
// persistence, and input-directory enumeration for the labeling batch.
package imageio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load decodes an image file and returns it as an 8-bit 3-channel BGR Mat.
// Any format registered with image.Decode is accepted (png, jpeg, tiff,
// webp). The caller owns the returned Mat and must Close it.
func Load(path string) (gocv.Mat, error) {
	file, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return ToMatBGR(img), nil
}

// ToMatBGR converts a Go image.Image to a CV8UC3 Mat in BGR channel order.
func ToMatBGR(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}

	return mat
}

// Save writes a Mat to disk. The encoder is chosen from the path extension;
// single-channel Mats written as .png come out as lossless 8-bit grayscale.
func Save(path string, mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("refusing to write empty image to %s", path)
	}
	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to write image %s", path)
	}
	return nil
}

// List returns the names of directory entries whose extension is on the
// allow-list, compared case-insensitively, sorted lexicographically. The
// sort fixes the report ordering independent of filesystem listing order.
func List(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}
