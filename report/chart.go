package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/rfbench/powersweep/sweep"
)

// Chart plots set transmit power against the measured response and writes
// the plot to path (format chosen by extension, e.g. .png). Measured power
// in dBm is preferred; without power readings the scope's peak-to-peak
// voltage is plotted instead. Steps without a measurement are skipped.
func Chart(results []sweep.Result, path string) error {
	var xys plotter.XYs
	yLabel := "Measured power [dBm]"

	hasPower := false
	for _, result := range results {
		if result.Measurement != nil && result.Measurement.HasPower {
			hasPower = true
			break
		}
	}
	if !hasPower {
		yLabel = "Peak-to-peak [V]"
	}

	for _, result := range results {
		m := result.Measurement
		if m == nil {
			continue
		}

		y := m.PeakToPeak
		if hasPower {
			y = m.PowerDBm
		}
		xys = append(xys, plotter.XY{X: float64(result.Level), Y: y})
	}

	if len(xys) == 0 {
		return fmt.Errorf("no measurements to plot")
	}

	p := plot.New()
	p.Title.Text = "Transmit power sweep"
	p.X.Label.Text = "Set power [dBm]"
	p.Y.Label.Text = yLabel

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	p.Add(line, points, plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
