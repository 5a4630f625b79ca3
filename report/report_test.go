package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfbench/powersweep/sweep"
)

func TestRunRecord(t *testing.T) {
	baseDir := t.TempDir()

	run, err := NewRun(baseDir, "test-run")
	require.NoError(t, err)

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, run.Record(sweep.Result{
		Level:     10,
		ReadBack:  10,
		Confirmed: true,
		Sent:      true,
		Measurement: &sweep.Measurement{
			PeakToPeak: 0.5,
			RMS:        0.1767,
			PowerDBm:   9.83,
			HasPower:   true,
			Artifact:   "waveform_power10dBm.csv",
		},
		Timestamp: ts,
	}))
	require.NoError(t, run.Record(sweep.Result{
		Level:     11,
		Err:       errors.New("device rejected level"),
		Timestamp: ts,
	}))
	require.NoError(t, run.Close())

	file, err := os.Open(filepath.Join(baseDir, "test-run", "results.csv"))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, resultsHeader, records[0])
	assert.Equal(t, []string{
		"2024-06-01T12:00:00Z", "10", "10", "true", "true",
		"0.500000", "0.176700", "9.83", "waveform_power10dBm.csv", "",
	}, records[1])
	assert.Equal(t, []string{
		"2024-06-01T12:00:00Z", "11", "0", "false", "false",
		"", "", "", "", "device rejected level",
	}, records[2])
}

func TestRunDir(t *testing.T) {
	baseDir := t.TempDir()

	run, err := NewRun(baseDir, "abc")
	require.NoError(t, err)
	defer run.Close()

	assert.Equal(t, filepath.Join(baseDir, "abc"), run.Dir())
	assert.DirExists(t, run.Dir())
}

func TestChart(t *testing.T) {
	results := []sweep.Result{
		{Level: 0, Measurement: &sweep.Measurement{PowerDBm: -0.4, HasPower: true}},
		{Level: 5, Measurement: &sweep.Measurement{PowerDBm: 4.7, HasPower: true}},
		{Level: 10}, // no measurement, skipped
		{Level: 15, Measurement: &sweep.Measurement{PowerDBm: 14.1, HasPower: true}},
	}

	path := filepath.Join(t.TempDir(), "sweep.png")
	require.NoError(t, Chart(results, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestChartNoMeasurements(t *testing.T) {
	err := Chart([]sweep.Result{{Level: 0}}, filepath.Join(t.TempDir(), "sweep.png"))
	assert.Error(t, err)
}
