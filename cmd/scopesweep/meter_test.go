package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfbench/powersweep/config"
	"github.com/rfbench/powersweep/powermeter"
)

func TestSetupMeterWithZeroing(t *testing.T) {
	inst := &fakeInstrument{}
	cfg := &config.Config{}
	cfg.Meter.Offset = 42.8
	cfg.Meter.AverageCount = 8

	require.NoError(t, setupMeter(powermeter.New(inst), cfg, true))

	assert.Equal(t, []string{
		"*RST",
		"CAL:ZERO:AUTO ONCE",
		"UNIT:POW DBM",
		"SENS:CORR:GAIN2 42.80",
		"SENS:CORR:GAIN2:STAT ON",
		"SENS:AVER:COUN 8",
	}, inst.cmds)
}

func TestSetupMeterWithoutZeroing(t *testing.T) {
	inst := &fakeInstrument{}
	cfg := &config.Config{}
	cfg.Meter.AverageCount = 4

	require.NoError(t, setupMeter(powermeter.New(inst), cfg, false))

	assert.Equal(t, []string{
		"UNIT:POW DBM",
		"SENS:AVER:COUN 4",
	}, inst.cmds)
}
