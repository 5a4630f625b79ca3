// Package report persists sweep results: a per-run directory holding the
// aggregate results CSV, per-step waveform files and a summary chart.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rfbench/powersweep/sweep"
)

// resultsHeader is the column layout of results.csv.
var resultsHeader = []string{
	"timestamp",
	"tx_power_dbm",
	"read_back_dbm",
	"confirmed",
	"sent",
	"peak_to_peak_v",
	"rms_v",
	"measured_dbm",
	"artifact",
	"error",
}

// Run is a sweep.Recorder writing one results.csv per sweep run.
type Run struct {
	dir    string
	file   *os.File
	writer *csv.Writer
}

// NewRun creates the run directory and its results file. The directory is
// named after the run ID below baseDir.
func NewRun(baseDir, runID string) (*Run, error) {
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory %s: %w", dir, err)
	}

	file, err := os.Create(filepath.Join(dir, "results.csv"))
	if err != nil {
		return nil, err
	}

	run := &Run{
		dir:    dir,
		file:   file,
		writer: csv.NewWriter(file),
	}

	if err := run.writer.Write(resultsHeader); err != nil {
		_ = file.Close()
		return nil, err
	}
	run.writer.Flush()

	return run, run.writer.Error()
}

// Dir returns the run directory, for placing per-step artifacts next to the
// results file.
func (run *Run) Dir() string {
	return run.dir
}

// Record appends one step result. The file is flushed per record so a
// sweep aborted mid-run keeps its completed steps.
func (run *Run) Record(result sweep.Result) error {
	record := []string{
		result.Timestamp.Format(time.RFC3339),
		strconv.Itoa(result.Level),
		strconv.Itoa(result.ReadBack),
		strconv.FormatBool(result.Confirmed),
		strconv.FormatBool(result.Sent),
		"", "", "", "",
		"",
	}

	if m := result.Measurement; m != nil {
		record[5] = strconv.FormatFloat(m.PeakToPeak, 'f', 6, 64)
		record[6] = strconv.FormatFloat(m.RMS, 'f', 6, 64)
		if m.HasPower {
			record[7] = strconv.FormatFloat(m.PowerDBm, 'f', 2, 64)
		}
		record[8] = m.Artifact
	}
	if result.Err != nil {
		record[9] = result.Err.Error()
	}

	if err := run.writer.Write(record); err != nil {
		return err
	}
	run.writer.Flush()
	return run.writer.Error()
}

// Close finishes the results file.
func (run *Run) Close() error {
	run.writer.Flush()
	if err := run.writer.Error(); err != nil {
		_ = run.file.Close()
		return err
	}
	return run.file.Close()
}
