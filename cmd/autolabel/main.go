// Command autolabel classifies colored shapes in a directory of photos.
// Every readable image produces a single-channel label mask (0=background,
// 1=red, 2=green, 3=blue), a contour overlay for eyeballing the result,
// and a grayscale copy, plus one entry in a JSON run report.
//
// Usage: autolabel -in /path/to/photos -out /path/to/out
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"shape-labeler/internal/batch"
	"shape-labeler/internal/config"
	"shape-labeler/internal/report"
	"shape-labeler/internal/version"
)

func main() {
	inDir := flag.String("in", "", "input directory of photos (required)")
	outDir := flag.String("out", "", "output directory for masks, overlays, grayscale and report (required)")
	cfgPath := flag.String("config", "", "optional JSON config file with threshold tables")
	workers := flag.Int("workers", 0, "override worker count (0 = use config value)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("autolabel %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *inDir == "" || *outDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -in <photo-dir> -out <output-dir>\n\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Error().Err(err).Msg("could not load config")
			os.Exit(1)
		}
		cfg = loaded
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	runner := batch.New(cfg, log)
	entries, err := runner.Run(*inDir, *outDir)
	if err != nil {
		log.Error().Err(err).Msg("labeling run failed")
		os.Exit(1)
	}

	if err := report.Write(entries, *outDir, cfg.Output.ReportName); err != nil {
		log.Error().Err(err).Msg("could not write report")
		os.Exit(1)
	}

	s := report.Summarize(entries)
	log.Info().
		Int("ok", s.OK).
		Int("read_fail", s.ReadFailed).
		Float64("mean_area_frac", s.MeanArea).
		Float64("stddev_area_frac", s.StdDevArea).
		Msg("run complete")
}
