package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfbench/powersweep/powermeter"
	"github.com/rfbench/powersweep/scope"
)

// fakeInstrument answers scope and meter queries from maps and records
// the commands it receives.
type fakeInstrument struct {
	answers map[string]string
	blocks  map[string][]byte
	cmds    []string
}

func (f *fakeInstrument) Exec(cmd string) error {
	f.cmds = append(f.cmds, cmd)
	return nil
}

func (f *fakeInstrument) Query(cmd string) (string, error) {
	f.cmds = append(f.cmds, cmd)
	return f.answers[cmd], nil
}

func (f *fakeInstrument) QueryBlock(cmd string) ([]byte, error) {
	f.cmds = append(f.cmds, cmd)
	return f.blocks[cmd], nil
}

func (f *fakeInstrument) Reset() error {
	f.cmds = append(f.cmds, "*RST")
	return nil
}

func (f *fakeInstrument) Identify() (string, error) { return "fake", nil }

func TestBenchCapturer(t *testing.T) {
	scopeInst := &fakeInstrument{
		answers: map[string]string{
			":WAV:PRE?": "0,0,3,1,1e-06,0,0,0.01,0,127",
		},
		blocks: map[string][]byte{
			":WAV:DATA?": {127, 177, 127},
		},
	}
	meterInst := &fakeInstrument{
		answers: map[string]string{"READ?": "12.3"},
	}

	dir := t.TempDir()
	bc := &benchCapturer{
		scope:   scope.New(scopeInst),
		meter:   powermeter.New(meterInst),
		channel: 1,
		dir:     dir,
		now:     func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}

	m, err := bc.Capture(17)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, m.PeakToPeak, 1e-9)
	assert.True(t, m.HasPower)
	assert.InDelta(t, 12.3, m.PowerDBm, 1e-9)
	assert.Equal(t, "waveform_ch1_power17dBm_20240601_120000.csv", m.Artifact)

	data, err := os.ReadFile(filepath.Join(dir, m.Artifact))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Time(s),Voltage(V)")
}

func TestBenchCapturerNoMeter(t *testing.T) {
	scopeInst := &fakeInstrument{
		answers: map[string]string{
			":WAV:PRE?": "0,0,2,1,1e-06,0,0,0.01,0,127",
		},
		blocks: map[string][]byte{
			":WAV:DATA?": {127, 127},
		},
	}

	bc := &benchCapturer{
		scope:   scope.New(scopeInst),
		channel: 2,
		dir:     t.TempDir(),
	}

	m, err := bc.Capture(0)
	require.NoError(t, err)
	assert.False(t, m.HasPower)
}
