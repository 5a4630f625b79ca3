package scope

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// preamble carries the scaling fields of a :WAV:PRE? answer.
type preamble struct {
	xIncrement float64
	xOrigin    float64
	yIncrement float64
	yOrigin    float64
	yReference float64
}

// preambleFields is the field count of a :WAV:PRE? answer:
// format,type,points,count,xinc,xorig,xref,yinc,yorig,yref.
const preambleFields = 10

// parsePreamble extracts the scaling fields from a :WAV:PRE? answer.
func parsePreamble(msg string) (pre preamble, err error) {
	fields := strings.Split(strings.TrimSpace(msg), ",")
	if len(fields) < preambleFields {
		err = fmt.Errorf("preamble has %d fields, expected %d: %s", len(fields), preambleFields, msg)
		return
	}

	parse := func(s string) float64 {
		if err != nil {
			return 0
		}
		var v float64
		if v, err = strconv.ParseFloat(s, 64); err != nil {
			err = fmt.Errorf("invalid preamble field %q: %w", s, err)
		}
		return v
	}

	pre.xIncrement = parse(fields[4])
	pre.xOrigin = parse(fields[5])
	pre.yIncrement = parse(fields[7])
	pre.yOrigin = parse(fields[8])
	pre.yReference = parse(fields[9])

	return
}

// Waveform is a captured record with its scaling parameters. Raw holds the
// unscaled byte samples as transferred from the scope.
type Waveform struct {
	Raw []byte

	XIncrement float64
	XOrigin    float64
	YIncrement float64
	YOrigin    float64
	YReference float64
}

// Times returns the sample timestamps in seconds.
func (wf Waveform) Times() []float64 {
	times := make([]float64, len(wf.Raw))
	for i := range wf.Raw {
		times[i] = float64(i)*wf.XIncrement + wf.XOrigin
	}
	return times
}

// Voltages returns the scaled sample values in volts.
func (wf Waveform) Voltages() []float64 {
	volts := make([]float64, len(wf.Raw))
	for i, sample := range wf.Raw {
		volts[i] = (float64(sample)-wf.YReference)*wf.YIncrement + wf.YOrigin
	}
	return volts
}

// PeakToPeak returns the peak-to-peak voltage of the record.
func (wf Waveform) PeakToPeak() float64 {
	if len(wf.Raw) == 0 {
		return 0
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range wf.Voltages() {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return max - min
}

// RMS returns the root mean square voltage of the record.
func (wf Waveform) RMS() float64 {
	if len(wf.Raw) == 0 {
		return 0
	}

	var sum float64
	for _, v := range wf.Voltages() {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(wf.Raw)))
}

// WriteCSV writes the scaled record as a two column time/voltage CSV.
func (wf Waveform) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Time(s)", "Voltage(V)"}); err != nil {
		return err
	}

	times := wf.Times()
	for i, v := range wf.Voltages() {
		record := []string{
			strconv.FormatFloat(times[i], 'e', 9, 64),
			strconv.FormatFloat(v, 'e', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
