// powersweep steps a serial-attached LoRa radio through a range of
// transmit power levels, verifying each setting and sending a test
// message per level for external instruments to measure.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rfbench/powersweep/config"
	"github.com/rfbench/powersweep/radio"
	"github.com/rfbench/powersweep/sweep"
)

var (
	port     = kingpin.Flag("port", "Serial port of the device under test").Required().String()
	minPower = kingpin.Flag("min-power", "Minimum power level (dBm)").Default("0").Int()
	maxPower = kingpin.Flag("max-power", "Maximum power level (dBm)").Default("30").Int()
	step     = kingpin.Flag("step", "Power level increment (dB)").Default("1").Int()
	delay    = kingpin.Flag("delay", "Delay between steps").Default("5s").Duration()
	dest     = kingpin.Flag("dest", "Destination node ID for the test message").String()
	message  = kingpin.Flag("message", "Custom test message").String()
	freq     = kingpin.Flag("freq", "Radio frequency in MHz, 0 keeps the device setting").Default("0").Float64()
	mode     = kingpin.Flag("mode", "Modem config number, negative keeps the device setting").Default("-1").Int()
)

func main() {
	kingpin.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading bench profile failed")
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
		Float64("frequency_mhz", status.Frequency).
		Int("tx_power_dbm", status.TxPower).
		Msg("device connected")

	if *freq > 0 {
		if err := modem.Frequency(*freq); err != nil {
			log.Fatal().Err(err).Float64("frequency_mhz", *freq).Msg("setting frequency failed")
		}
	}
	if *mode >= 0 {
		if err := modem.Mode(radio.ModemMode(*mode)); err != nil {
			log.Fatal().Err(err).Int("mode", *mode).Msg("setting modem config failed")
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

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("power sweep aborted")
	}

	log.Info().
		Int("levels", summary.Levels).
		Int("confirmed", summary.Confirmed).
		Msg("power sweep completed")
}
