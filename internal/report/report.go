// Package report accumulates per-file processing records and serializes
// them as the machine-readable run report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
)

// Status records the outcome of processing one input file.
type Status string

const (
	StatusOK       Status = "ok"
	StatusReadFail Status = "read_fail"
)

// Entry is one immutable report record. Artifact paths and area fraction
// are only present on success; AreaFrac is a pointer so that failed
// entries serialize without the field rather than with a misleading zero.
type Entry struct {
	Path     string   `json:"path"`
	Status   Status   `json:"status"`
	AreaFrac *float64 `json:"area_frac,omitempty"`
	Mask     string   `json:"mask,omitempty"`
	Overlay  string   `json:"overlay,omitempty"`
	Gray     string   `json:"gray,omitempty"`
}

// OK builds a success entry.
func OK(path string, areaFrac float64, mask, overlay, gray string) Entry {
	return Entry{
		Path:     path,
		Status:   StatusOK,
		AreaFrac: &areaFrac,
		Mask:     mask,
		Overlay:  overlay,
		Gray:     gray,
	}
}

// ReadFail builds a decode-failure entry.
func ReadFail(path string) Entry {
	return Entry{Path: path, Status: StatusReadFail}
}

// Write serializes the entries as an indented JSON array to name inside
// dir, replacing any previous report. The file appears atomically: the
// data is written to a temporary sibling first and renamed into place.
func Write(entries []Entry, dir, name string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize report: %w", err)
	}
	return nil
}

// Summary aggregates a finished run for the closing log line.
type Summary struct {
	OK         int
	ReadFailed int
	MeanArea   float64
	StdDevArea float64
}

// Summarize computes entry counts and area-fraction statistics over the
// successful entries.
func Summarize(entries []Entry) Summary {
	var s Summary
	var fracs []float64
	for _, e := range entries {
		switch e.Status {
		case StatusOK:
			s.OK++
			if e.AreaFrac != nil {
				fracs = append(fracs, *e.AreaFrac)
			}
		case StatusReadFail:
			s.ReadFailed++
		}
	}

	if len(fracs) > 0 {
		s.MeanArea = stat.Mean(fracs, nil)
	}
	if len(fracs) > 1 {
		s.StdDevArea = stat.StdDev(fracs, nil)
	}
	return s
}
