// Package powermeter drives an RF power sensor over SCPI. The sensor sits
// on a directional coupler tap or behind an attenuator, so a gain
// correction is applied on the instrument to report power at the DUT
// output plane.
package powermeter

import (
	"fmt"
	"strconv"
	"strings"
)

// client is the subset of the SCPI instrument the meter driver uses.
type client interface {
	Exec(cmd string) error
	Query(cmd string) (string, error)
	Reset() error
	Identify() (string, error)
}

// Units are the power reading measures the sensor can be configured to use.
type Units string

const (
	// DBM reads power in dBm.
	DBM Units = "DBM"

	// Watts reads power in watts.
	Watts Units = "W"
)

// Meter is a power sensor attached through a SCPI connection.
type Meter struct {
	inst client
}

// New wraps a SCPI instrument as a Meter.
func New(inst client) *Meter {
	return &Meter{inst: inst}
}

// Identify asks the sensor who it is.
func (meter *Meter) Identify() (string, error) {
	return meter.inst.Identify()
}

// Reset performs a soft reset of the sensor.
func (meter *Meter) Reset() error {
	return meter.inst.Reset()
}

// Zero zeroes the sensor. No RF may be applied while zeroing.
func (meter *Meter) Zero() error {
	return meter.inst.Exec("CAL:ZERO:AUTO ONCE")
}

// SetUnits selects the reading units.
func (meter *Meter) SetUnits(units Units) error {
	return meter.inst.Exec(fmt.Sprintf("UNIT:POW %s", units))
}

// SetOffset corrects for signal loss between the DUT and the sensor, e.g.
// the coupling factor of a directional coupler plus attenuator pads. The
// offset is given in dB and added to every reading by the instrument.
func (meter *Meter) SetOffset(dB float64) error {
	if err := meter.inst.Exec(fmt.Sprintf("SENS:CORR:GAIN2 %.2f", dB)); err != nil {
		return err
	}
	return meter.inst.Exec("SENS:CORR:GAIN2:STAT ON")
}

// SetAverageCount configures reading averaging.
func (meter *Meter) SetAverageCount(n int) error {
	return meter.inst.Exec(fmt.Sprintf("SENS:AVER:COUN %d", n))
}

// Reading triggers a measurement and returns the power in the configured
// units.
func (meter *Meter) Reading() (float64, error) {
	resp, err := meter.inst.Query("READ?")
	if err != nil {
		return 0, err
	}

	power, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0, fmt.Errorf("sensor returned unparsable reading %q: %w", resp, err)
	}
	return power, nil
}
