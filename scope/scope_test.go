package scope

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records commands and answers queries from a map.
type fakeClient struct {
	cmds    []string
	answers map[string]string
	blocks  map[string][]byte
}

func (f *fakeClient) Exec(cmd string) error {
	f.cmds = append(f.cmds, cmd)
	return nil
}

func (f *fakeClient) Query(cmd string) (string, error) {
	f.cmds = append(f.cmds, cmd)
	return f.answers[cmd], nil
}

func (f *fakeClient) QueryBlock(cmd string) ([]byte, error) {
	f.cmds = append(f.cmds, cmd)
	return f.blocks[cmd], nil
}

func (f *fakeClient) Reset() error {
	f.cmds = append(f.cmds, "*RST")
	return nil
}

func (f *fakeClient) Identify() (string, error) {
	return "fake scope", nil
}

func TestParsePreamble(t *testing.T) {
	pre, err := parsePreamble("0,0,1200,1,2.000000e-06,-1.200000e-03,0,4.000000e-03,0.000000e+00,1.270000e+02\n")
	require.NoError(t, err)

	assert.InDelta(t, 2e-6, pre.xIncrement, 1e-12)
	assert.InDelta(t, -1.2e-3, pre.xOrigin, 1e-12)
	assert.InDelta(t, 4e-3, pre.yIncrement, 1e-12)
	assert.InDelta(t, 0.0, pre.yOrigin, 1e-12)
	assert.InDelta(t, 127.0, pre.yReference, 1e-12)

	_, err = parsePreamble("0,0,1200")
	assert.Error(t, err)

	_, err = parsePreamble("0,0,1200,1,x,0,0,1,0,127")
	assert.Error(t, err)
}

func TestWaveformScaling(t *testing.T) {
	wf := Waveform{
		Raw:        []byte{127, 227, 27},
		XIncrement: 1e-3,
		XOrigin:    -1e-3,
		YIncrement: 0.01,
		YOrigin:    0,
		YReference: 127,
	}

	volts := wf.Voltages()
	require.Len(t, volts, 3)
	assert.InDelta(t, 0.0, volts[0], 1e-9)
	assert.InDelta(t, 1.0, volts[1], 1e-9)
	assert.InDelta(t, -1.0, volts[2], 1e-9)

	times := wf.Times()
	assert.InDelta(t, -1e-3, times[0], 1e-12)
	assert.InDelta(t, 1e-3, times[2], 1e-12)

	assert.InDelta(t, 2.0, wf.PeakToPeak(), 1e-9)

	// RMS of {0, 1, -1} is sqrt(2/3).
	assert.InDelta(t, 0.8164965809, wf.RMS(), 1e-9)
}

func TestWaveformEmpty(t *testing.T) {
	var wf Waveform
	assert.Zero(t, wf.PeakToPeak())
	assert.Zero(t, wf.RMS())
}

func TestWaveformWriteCSV(t *testing.T) {
	wf := Waveform{
		Raw:        []byte{127, 227},
		XIncrement: 1e-3,
		YIncrement: 0.01,
		YReference: 127,
	}

	var buf bytes.Buffer
	require.NoError(t, wf.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Time(s),Voltage(V)", lines[0])
	assert.Equal(t, "0.000000000e+00,0.000000e+00", lines[1])
	assert.Equal(t, "1.000000000e-03,1.000000e+00", lines[2])
}

func TestScopeCapture(t *testing.T) {
	fake := &fakeClient{
		answers: map[string]string{
			":WAV:PRE?": "0,0,4,1,1e-06,0,0,0.01,0,127",
		},
		blocks: map[string][]byte{
			":WAV:DATA?": {127, 137, 147, 127},
		},
	}

	sc := New(fake)
	wf, err := sc.Capture(2)
	require.NoError(t, err)

	assert.Equal(t, []byte{127, 137, 147, 127}, wf.Raw)
	assert.InDelta(t, 0.01, wf.YIncrement, 1e-12)
	assert.InDelta(t, 0.2, wf.PeakToPeak(), 1e-9)

	assert.Contains(t, fake.cmds, ":TRIG:FORC")
	assert.Contains(t, fake.cmds, ":STOP")
	assert.Contains(t, fake.cmds, ":WAV:SOUR CHAN2")
	assert.Contains(t, fake.cmds, ":RUN")
}

func TestScopeConfigure(t *testing.T) {
	fake := &fakeClient{}

	sc := New(fake)
	require.NoError(t, sc.Configure(DefaultSettings()))

	assert.Equal(t, "*RST", fake.cmds[0])
	assert.Contains(t, fake.cmds, ":CHAN1:DISP ON")
	assert.Contains(t, fake.cmds, ":CHAN1:COUP DC")
	assert.Contains(t, fake.cmds, ":TRIG:EDGE:SOUR CHAN1")
	assert.Contains(t, fake.cmds, ":TIM:SCAL 0.001")
}
