// Package scope drives a SCPI oscilloscope for transmit burst captures.
// The command set follows the DS1000Z-style :CHAN/:TRIG/:WAV tree.
package scope

import (
	"fmt"
	"time"
)

// client is the subset of the SCPI instrument the scope driver uses.
type client interface {
	Exec(cmd string) error
	Query(cmd string) (string, error)
	QueryBlock(cmd string) ([]byte, error)
	Reset() error
	Identify() (string, error)
}

// Settings describe the acquisition setup for a capture channel.
type Settings struct {
	Channel      int
	Coupling     string  // "DC" or "AC"
	Scale        float64 // vertical, volts per division
	TriggerLevel float64 // volts
	TimeScale    float64 // horizontal, seconds per division
}

// DefaultSettings match a detector diode on a coupler tap port.
func DefaultSettings() Settings {
	return Settings{
		Channel:      1,
		Coupling:     "DC",
		Scale:        0.1,
		TriggerLevel: 0.1,
		TimeScale:    0.001,
	}
}

// Scope is an oscilloscope attached through a SCPI connection.
type Scope struct {
	inst client
}

// New wraps a SCPI instrument as a Scope.
func New(inst client) *Scope {
	return &Scope{inst: inst}
}

// Identify asks the scope who it is.
func (scope *Scope) Identify() (string, error) {
	return scope.inst.Identify()
}

// Configure resets the scope and sets up channel, trigger and timebase.
func (scope *Scope) Configure(settings Settings) error {
	if err := scope.inst.Reset(); err != nil {
		return err
	}
	// The scope needs a moment after *RST before accepting setup commands.
	time.Sleep(time.Second)

	chanCmds := []string{
		fmt.Sprintf(":CHAN%d:DISP ON", settings.Channel),
		fmt.Sprintf(":CHAN%d:COUP %s", settings.Channel, settings.Coupling),
		fmt.Sprintf(":CHAN%d:SCAL %g", settings.Channel, settings.Scale),
		":TRIG:MODE EDGE",
		fmt.Sprintf(":TRIG:EDGE:SOUR CHAN%d", settings.Channel),
		":TRIG:EDGE:SLOP POS",
		fmt.Sprintf(":TRIG:EDGE:LEV %g", settings.TriggerLevel),
		fmt.Sprintf(":TIM:SCAL %g", settings.TimeScale),
	}

	for _, cmd := range chanCmds {
		if err := scope.inst.Exec(cmd); err != nil {
			return fmt.Errorf("configuring scope with %q: %w", cmd, err)
		}
	}

	return nil
}

// ForceTrigger forces an acquisition if the scope is still waiting.
func (scope *Scope) ForceTrigger() error {
	return scope.inst.Exec(":TRIG:FORC")
}

// Run restarts continuous acquisition.
func (scope *Scope) Run() error {
	return scope.inst.Exec(":RUN")
}

// Stop halts acquisition, freezing the current record.
func (scope *Scope) Stop() error {
	return scope.inst.Exec(":STOP")
}

// Capture pulls the current waveform record from the given channel. The
// acquisition is stopped for the transfer and restarted afterwards.
func (scope *Scope) Capture(channel int) (Waveform, error) {
	if err := scope.ForceTrigger(); err != nil {
		return Waveform{}, err
	}
	time.Sleep(500 * time.Millisecond)

	if err := scope.Stop(); err != nil {
		return Waveform{}, err
	}

	setupCmds := []string{
		fmt.Sprintf(":WAV:SOUR CHAN%d", channel),
		":WAV:MODE RAW",
		":WAV:FORM BYTE",
	}
	for _, cmd := range setupCmds {
		if err := scope.inst.Exec(cmd); err != nil {
			return Waveform{}, fmt.Errorf("preparing waveform transfer with %q: %w", cmd, err)
		}
	}

	preMsg, err := scope.inst.Query(":WAV:PRE?")
	if err != nil {
		return Waveform{}, err
	}

	pre, err := parsePreamble(preMsg)
	if err != nil {
		return Waveform{}, err
	}

	raw, err := scope.inst.QueryBlock(":WAV:DATA?")
	if err != nil {
		return Waveform{}, err
	}

	if err := scope.Run(); err != nil {
		return Waveform{}, err
	}

	return Waveform{
		Raw:        raw,
		XIncrement: pre.xIncrement,
		XOrigin:    pre.xOrigin,
		YIncrement: pre.yIncrement,
		YOrigin:    pre.yOrigin,
		YReference: pre.yReference,
	}, nil
}
