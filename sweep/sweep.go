// Package sweep steps a radio's transmit power through a range of levels,
// verifying each setting and giving attached bench instruments a
// transmission to measure at every step.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Radio is the device under test.
type Radio interface {
	SetTxPower(dBm int) error
	TxPower() (dBm int, err error)
	SendText(msg string) error
}

// Measurement is what an instrument observed during one sweep step.
type Measurement struct {
	PeakToPeak float64
	RMS        float64

	// PowerDBm is only meaningful if HasPower is set; a scope-only bench
	// does not produce absolute power readings.
	PowerDBm float64
	HasPower bool

	// Artifact is the path of a per-step file, e.g. a waveform CSV.
	Artifact string
}

// Capturer takes an instrument measurement for one sweep step.
type Capturer interface {
	Capture(level int) (Measurement, error)
}

// Result is the outcome of a single sweep step.
type Result struct {
	Level       int
	ReadBack    int
	Confirmed   bool
	Sent        bool
	Measurement *Measurement
	Err         error
	Timestamp   time.Time
}

// Recorder persists step results.
type Recorder interface {
	Record(Result) error
}

// Config parameterizes a sweep run.
type Config struct {
	MinPower int
	MaxPower int
	Step     int

	// Delay separates consecutive level applications.
	Delay time.Duration

	// Settle is waited between applying a level and reading it back.
	Settle time.Duration

	// Destination optionally addresses the test message to a node.
	Destination string

	// Message overrides the default per-level test message.
	Message string
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Levels    int
	Confirmed int
	Results   []Result
	Started   time.Time
	Finished  time.Time
}

// Runner executes a sweep. Capturer and Recorder are optional; Logger
// defaults to a disabled logger.
type Runner struct {
	Capturer Capturer
	Recorder Recorder
	Logger   zerolog.Logger

	radio Radio
	cfg   Config
	runID string
}

// New creates a Runner for the given radio.
func New(cfg Config, radio Radio) *Runner {
	return &Runner{
		Logger: zerolog.Nop(),
		radio:  radio,
		cfg:    cfg,
		runID:  uuid.NewString(),
	}
}

// RunID identifies this sweep run, e.g. for naming its artifact directory.
func (runner *Runner) RunID() string {
	return runner.runID
}

// wait sleeps for d unless the context ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// message builds the per-level test message.
func (runner *Runner) message(level int) string {
	msg := runner.cfg.Message
	if msg == "" {
		msg = fmt.Sprintf("Test message at power level: %d", level)
	}
	if runner.cfg.Destination != "" {
		msg = fmt.Sprintf("@%s %s", runner.cfg.Destination, msg)
	}
	return msg
}

// Run executes the sweep. Step failures are recorded and the sweep
// continues; only invalid parameters or context cancellation end the run
// early.
func (runner *Runner) Run(ctx context.Context) (Summary, error) {
	levels, err := Levels(runner.cfg.MinPower, runner.cfg.MaxPower, runner.cfg.Step)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:   runner.runID,
		Levels:  len(levels),
		Started: time.Now(),
	}

	log := runner.Logger.With().Str("run_id", summary.RunID).Logger()
	log.Info().
		Int("min_power_dbm", runner.cfg.MinPower).
		Int("max_power_dbm", runner.cfg.MaxPower).
		Int("step_dbm", runner.cfg.Step).
		Dur("delay", runner.cfg.Delay).
		Int("levels", len(levels)).
		Msg("starting power sweep")

	for i, level := range levels {
		if i > 0 {
			if waitErr := wait(ctx, runner.cfg.Delay); waitErr != nil {
				return summary, waitErr
			}
		}

		result := runner.step(ctx, log, level)
		if result.Err != nil && ctx.Err() != nil {
			return summary, ctx.Err()
		}

		if result.Confirmed {
			summary.Confirmed++
		}
		summary.Results = append(summary.Results, result)

		if runner.Recorder != nil {
			if recErr := runner.Recorder.Record(result); recErr != nil {
				log.Error().Err(recErr).Int("tx_power_dbm", level).Msg("recording step failed")
			}
		}
	}

	summary.Finished = time.Now()
	log.Info().
		Int("levels", summary.Levels).
		Int("confirmed", summary.Confirmed).
		Dur("elapsed", summary.Finished.Sub(summary.Started)).
		Msg("power sweep completed")

	return summary, nil
}

// step applies one level: set, settle, verify, transmit, measure.
func (runner *Runner) step(ctx context.Context, log zerolog.Logger, level int) Result {
	result := Result{Level: level, Timestamp: time.Now()}
	stepLog := log.With().Int("tx_power_dbm", level).Logger()

	stepLog.Info().Msg("setting transmit power")
	if err := runner.radio.SetTxPower(level); err != nil {
		stepLog.Error().Err(err).Msg("setting transmit power failed")
		result.Err = err
		return result
	}

	if err := wait(ctx, runner.cfg.Settle); err != nil {
		result.Err = err
		return result
	}

	if readBack, err := runner.radio.TxPower(); err != nil {
		stepLog.Error().Err(err).Msg("reading transmit power back failed")
		result.Err = err
	} else {
		result.ReadBack = readBack
		result.Confirmed = readBack == level
		if !result.Confirmed {
			stepLog.Warn().Int("read_back_dbm", readBack).Msg("power setting not confirmed")
		}
	}

	if err := runner.radio.SendText(runner.message(level)); err != nil {
		stepLog.Error().Err(err).Msg("sending test message failed")
		if result.Err == nil {
			result.Err = err
		}
	} else {
		result.Sent = true
		stepLog.Info().Msg("test message sent")
	}

	if runner.Capturer != nil && result.Sent {
		// Give the instruments a moment to trigger on the burst before
		// pulling the measurement.
		if err := wait(ctx, runner.cfg.Settle); err != nil {
			result.Err = err
			return result
		}

		if m, err := runner.Capturer.Capture(level); err != nil {
			stepLog.Error().Err(err).Msg("instrument capture failed")
			if result.Err == nil {
				result.Err = err
			}
		} else {
			result.Measurement = &m
			ev := stepLog.Info().
				Float64("peak_to_peak_v", m.PeakToPeak).
				Float64("rms_v", m.RMS)
			if m.HasPower {
				ev = ev.Float64("measured_dbm", m.PowerDBm)
			}
			ev.Msg("measurement captured")
		}
	}

	return result
}
