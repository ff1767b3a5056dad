// Package batch runs the auto-labeling pipeline over a directory of
// photos: every readable image yields a label mask, a contour overlay and
// a grayscale copy, plus one report entry. Unreadable files are recorded
// and skipped; the batch itself keeps going.
package batch

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"shape-labeler/internal/config"
	"shape-labeler/internal/imageio"
	"shape-labeler/internal/label"
	"shape-labeler/internal/mask"
	"shape-labeler/internal/report"
)

// Artifact suffixes are a compatibility contract with the dataset
// splitting tool, which pairs grayscale photos and label masks by
// stripping these from the filename stem. Do not change them.
const (
	maskSuffix    = "_shape.png"
	overlaySuffix = "_overlay.jpg"
	graySuffix    = "_gray.png"
)

// Runner executes labeling batches with a fixed configuration.
type Runner struct {
	cfg *config.Config
	log zerolog.Logger
}

// New creates a Runner. The configuration is treated as read-only.
func New(cfg *config.Config, log zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run processes every allowed image file in inputDir and writes artifacts
// under outputDir. The returned entries are ordered lexicographically by
// filename regardless of scheduling, one entry per input file.
//
// A missing input directory or any artifact write failure aborts the run;
// a file that fails to decode only produces a read_fail entry.
func (r *Runner) Run(inputDir, outputDir string) ([]report.Entry, error) {
	names, err := imageio.List(inputDir, r.cfg.Batch.Extensions)
	if err != nil {
		return nil, err
	}

	for _, sub := range []string{r.cfg.Output.MaskDir, r.cfg.Output.OverlayDir, r.cfg.Output.GrayDir} {
		if err := os.MkdirAll(filepath.Join(outputDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	r.log.Info().
		Int("files", len(names)).
		Str("input", inputDir).
		Str("output", outputDir).
		Msg("starting labeling run")

	// Each file's result lands in its index slot, so entry order is the
	// sorted filename order even when workers finish out of order.
	entries := make([]report.Entry, len(names))

	workers := r.cfg.Batch.Workers
	if workers > len(names) {
		workers = len(names)
	}

	if workers <= 1 {
		for i, name := range names {
			entry, err := r.processOne(name, inputDir, outputDir)
			if err != nil {
				return nil, err
			}
			entries[i] = entry
		}
		return entries, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		stop     atomic.Bool
	)
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if stop.Load() {
					continue
				}
				entry, err := r.processOne(names[i], inputDir, outputDir)
				if err != nil {
					stop.Store(true)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				entries[i] = entry
			}
		}()
	}
	for i := range names {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return entries, nil
}

// processOne runs the full per-file pipeline. A decode failure returns a
// read_fail entry and a nil error; everything else that goes wrong is
// fatal to the run, since partial artifacts would be misleading.
func (r *Runner) processOne(name, inputDir, outputDir string) (report.Entry, error) {
	path := filepath.Join(inputDir, name)

	bgr, err := imageio.Load(path)
	if err != nil {
		r.log.Warn().Str("file", name).Err(err).Msg("unreadable image, skipping")
		return report.ReadFail(path), nil
	}
	defer bgr.Close()

	pairs := make([]label.ClassMask, 0, 3)
	defer func() {
		for _, p := range pairs {
			p.Mask.Close()
		}
	}()

	for _, target := range []struct {
		class label.Class
		bands []config.HSVRange
	}{
		{label.Red, r.cfg.Colors.Red},
		{label.Green, r.cfg.Colors.Green},
		{label.Blue, r.cfg.Colors.Blue},
	} {
		m, err := mask.Compute(bgr, target.bands, r.cfg.Cleanup)
		if err != nil {
			return report.Entry{}, fmt.Errorf("%s: %s mask: %w", name, target.class, err)
		}
		pairs = append(pairs, label.ClassMask{Class: target.class, Mask: m})

		if dbg := r.log.Debug(); dbg.Enabled() {
			regions := mask.Regions(m)
			dbg.Str("file", name).
				Str("color", target.class.String()).
				Int("regions", len(regions)).
				Msg("color mask computed")
		}
	}

	labels, err := label.Composite(pairs)
	if err != nil {
		return report.Entry{}, fmt.Errorf("%s: composite: %w", name, err)
	}
	defer labels.Close()

	overlay := label.RenderOverlay(bgr, labels, r.cfg.Output.OverlayThickness)
	defer overlay.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	base := strings.TrimSuffix(name, filepath.Ext(name))
	maskPath := filepath.Join(outputDir, r.cfg.Output.MaskDir, base+maskSuffix)
	overlayPath := filepath.Join(outputDir, r.cfg.Output.OverlayDir, base+overlaySuffix)
	grayPath := filepath.Join(outputDir, r.cfg.Output.GrayDir, base+graySuffix)

	if err := imageio.Save(maskPath, labels); err != nil {
		return report.Entry{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := imageio.Save(overlayPath, overlay); err != nil {
		return report.Entry{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := imageio.Save(grayPath, gray); err != nil {
		return report.Entry{}, fmt.Errorf("%s: %w", name, err)
	}

	// Rounded so report values are stable across runs and platforms.
	area := math.Round(label.AreaFraction(labels)*1e4) / 1e4

	r.log.Info().Str("file", name).Float64("area_frac", area).Msg("labeled")
	return report.OK(path, area, maskPath, overlayPath, grayPath), nil
}
