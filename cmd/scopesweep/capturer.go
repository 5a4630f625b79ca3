package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rfbench/powersweep/powermeter"
	"github.com/rfbench/powersweep/scope"
	"github.com/rfbench/powersweep/sweep"
)

// benchCapturer glues the instruments to the sweep: per step it pulls a
// waveform from the scope, saves it as CSV, and reads the power sensor if
// one is attached.
type benchCapturer struct {
	scope   *scope.Scope
	meter   *powermeter.Meter
	channel int
	dir     string

	// now is replaceable for tests.
	now func() time.Time
}

func (bc *benchCapturer) timestamp() string {
	now := time.Now
	if bc.now != nil {
		now = bc.now
	}
	return now().Format("20060102_150405")
}

func (bc *benchCapturer) Capture(level int) (sweep.Measurement, error) {
	wf, err := bc.scope.Capture(bc.channel)
	if err != nil {
		return sweep.Measurement{}, err
	}

	name := fmt.Sprintf("waveform_ch%d_power%ddBm_%s.csv", bc.channel, level, bc.timestamp())
	path := filepath.Join(bc.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return sweep.Measurement{}, err
	}
	if err := wf.WriteCSV(file); err != nil {
		_ = file.Close()
		return sweep.Measurement{}, err
	}
	if err := file.Close(); err != nil {
		return sweep.Measurement{}, err
	}

	m := sweep.Measurement{
		PeakToPeak: wf.PeakToPeak(),
		RMS:        wf.RMS(),
		Artifact:   name,
	}

	if bc.meter != nil {
		power, err := bc.meter.Reading()
		if err != nil {
			return sweep.Measurement{}, err
		}
		m.PowerDBm = power
		m.HasPower = true
	}

	return m, nil
}
