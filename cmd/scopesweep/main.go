// scopesweep runs a transmit power sweep while capturing each burst on a
// SCPI oscilloscope, optionally cross-checking absolute power on an RF
// power sensor behind a directional coupler. Per-step waveforms, an
// aggregate results CSV and a sweep chart land in a per-run directory.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rfbench/powersweep/config"
	"github.com/rfbench/powersweep/powermeter"
	"github.com/rfbench/powersweep/radio"
	"github.com/rfbench/powersweep/report"
	"github.com/rfbench/powersweep/scope"
	"github.com/rfbench/powersweep/scpi"
	"github.com/rfbench/powersweep/sweep"
)

var (
	port      = kingpin.Flag("port", "Serial port of the device under test").Required().String()
	scopeAddr = kingpin.Flag("scope-addr", "SCPI address of the oscilloscope, e.g. 192.0.2.10:5025").Required().String()
	meterAddr = kingpin.Flag("meter-addr", "SCPI address of the power sensor (optional)").String()
	zeroMeter = kingpin.Flag("zero-meter", "Reset and zero the power sensor before the sweep; remove RF drive first").Bool()
	channel   = kingpin.Flag("channel", "Oscilloscope channel to capture, 0 uses the bench profile").Default("0").Int()
	outputDir = kingpin.Flag("output-dir", "Directory for run artifacts, empty uses the bench profile").String()
	minPower  = kingpin.Flag("min-power", "Minimum power level (dBm)").Default("0").Int()
	maxPower  = kingpin.Flag("max-power", "Maximum power level (dBm)").Default("30").Int()
	step      = kingpin.Flag("step", "Power level increment (dB)").Default("1").Int()
	delay     = kingpin.Flag("delay", "Delay between steps").Default("5s").Duration()
	dest      = kingpin.Flag("dest", "Destination node ID for the test message").String()
	message   = kingpin.Flag("message", "Custom test message").String()
)

func main() {
	kingpin.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading bench profile failed")
	}

	scopeSettings := scope.Settings{
		Channel:      cfg.Scope.Channel,
		Coupling:     cfg.Scope.Coupling,
		Scale:        cfg.Scope.Scale,
		TriggerLevel: cfg.Scope.TriggerLevel,
		TimeScale:    cfg.Scope.TimeScale,
	}
	if *channel > 0 {
		scopeSettings.Channel = *channel
	}
	artifactBase := cfg.Output.Dir
	if *outputDir != "" {
		artifactBase = *outputDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Info().Str("port", *port).Msg("checking device")
	modem, err := radio.OpenSerial(ctx, *port, cfg.Serial.Baud)
	if err != nil {
		log.Fatal().Err(err).Str("port", *port).Msg("opening device failed")
	}
	defer func() {
		if closeErr := modem.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("closing device failed")
		}
	}()

	status, err := modem.FetchStatus()
	if err != nil {
		log.Fatal().Err(err).Msg("could not get device info, please check connection")
	}
	log.Info().
		Str("device", modem.Device()).
		Str("firmware", status.Firmware).
		Int("tx_power_dbm", status.TxPower).
		Msg("device connected")

	scopeInst, err := scpi.Dial(*scopeAddr, cfg.Scope.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to oscilloscope failed")
	}
	defer scopeInst.Close()

	sc := scope.New(scopeInst)
	if idn, err := sc.Identify(); err != nil {
		log.Fatal().Err(err).Msg("oscilloscope did not identify")
	} else {
		log.Info().Str("idn", idn).Msg("connected to oscilloscope")
	}
	if err := sc.Configure(scopeSettings); err != nil {
		log.Fatal().Err(err).Msg("configuring oscilloscope failed")
	}

	var meter *powermeter.Meter
	if *meterAddr != "" {
		meterInst, err := scpi.Dial(*meterAddr, cfg.Meter.Timeout)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to power sensor failed")
		}
		defer meterInst.Close()

		meter = powermeter.New(meterInst)
		if idn, err := meter.Identify(); err != nil {
			log.Fatal().Err(err).Msg("power sensor did not identify")
		} else {
			log.Info().Str("idn", idn).Float64("offset_db", cfg.Meter.Offset).Msg("connected to power sensor")
		}
		if err := setupMeter(meter, cfg, *zeroMeter); err != nil {
			log.Fatal().Err(err).Msg("configuring power sensor failed")
		}
	}

	runner := sweep.New(sweep.Config{
		MinPower:    *minPower,
		MaxPower:    *maxPower,
		Step:        *step,
		Delay:       *delay,
		Settle:      cfg.Sweep.Settle,
		Destination: *dest,
		Message:     *message,
	}, modem)
	runner.Logger = log.Logger

	run, err := report.NewRun(artifactBase, runner.RunID())
	if err != nil {
		log.Fatal().Err(err).Msg("creating run directory failed")
	}
	defer func() {
		if closeErr := run.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("closing results file failed")
		}
	}()

	runner.Recorder = run
	runner.Capturer = &benchCapturer{
		scope:   sc,
		meter:   meter,
		channel: scopeSettings.Channel,
		dir:     run.Dir(),
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("power sweep aborted")
	}

	chartPath := filepath.Join(run.Dir(), "sweep.png")
	if err := report.Chart(summary.Results, chartPath); err != nil {
		log.Error().Err(err).Msg("writing sweep chart failed")
	} else {
		log.Info().Str("chart", chartPath).Msg("sweep chart written")
	}

	log.Info().
		Int("levels", summary.Levels).
		Int("confirmed", summary.Confirmed).
		Str("results", filepath.Join(run.Dir(), "results.csv")).
		Msg("power sweep completed")
}

func setupMeter(meter *powermeter.Meter, cfg *config.Config, zero bool) error {
	if zero {
		// Zeroing measures the sensor's own offset, so it must happen
		// before the sweep puts any RF on the coupler tap.
		if err := meter.Reset(); err != nil {
			return err
		}
		if err := meter.Zero(); err != nil {
			return err
		}
	}
	if err := meter.SetUnits(powermeter.DBM); err != nil {
		return err
	}
	if cfg.Meter.Offset != 0 {
		if err := meter.SetOffset(cfg.Meter.Offset); err != nil {
			return err
		}
	}
	return meter.SetAverageCount(cfg.Meter.AverageCount)
}
