package radio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// infoLines is the amount of lines an AT+INFO command answers with.
const infoLines = 12

// Status describes the radio's status, acquired by AT+INFO.
type Status struct {
	Firmware  string
	Mode      ModemMode
	Mtu       int
	Frequency float64
	TxPower   int
	RxBad     int
	RxGood    int
	TxGood    int
}

func (status Status) String() string {
	var sb strings.Builder

	_, _ = fmt.Fprint(&sb, "Status(", "firmware=", status.Firmware, ",")
	_, _ = fmt.Fprintf(&sb, "mode=%d,", status.Mode)
	_, _ = fmt.Fprintf(&sb, "mtu=%d,", status.Mtu)
	_, _ = fmt.Fprintf(&sb, "frequency=%.2f,", status.Frequency)
	_, _ = fmt.Fprintf(&sb, "tx_power=%d,", status.TxPower)
	_, _ = fmt.Fprintf(&sb, "rx_bad=%d,", status.RxBad)
	_, _ = fmt.Fprintf(&sb, "rx_good=%d,", status.RxGood)
	_, _ = fmt.Fprintf(&sb, "tx_good=%d)", status.TxGood)

	return sb.String()
}

// parseStatus extracts a Status from the response lines of an AT+INFO.
func parseStatus(respMsgs []string) (status Status, err error) {
	for _, respMsg := range respMsgs {
		respMsgFilter := regexp.MustCompile(`^(status info:|)\r?\n$`)
		if respMsgFilter.MatchString(respMsg) {
			continue
		}

		splitRegexp := regexp.MustCompile(`^(.+?):[ ]+([^\r]+)\r?\n$`)
		fields := splitRegexp.FindStringSubmatch(respMsg)
		if len(fields) != 3 {
			err = fmt.Errorf("non-empty info line does not satisfy regexp: %s", respMsg)
			return
		}

		switch value := fields[2]; fields[1] {
		case "firmware":
			status.Firmware = value

		case "modem config":
			switch value {
			case "medium range":
				status.Mode = MediumRange
			case "slow+long range":
				// This can be both SlowLongRange or SlowLongRange2..
				status.Mode = SlowLongRange
			case "fast+short range":
				status.Mode = FastShortRange
			default:
				err = fmt.Errorf("unknown modem config: %s", value)
				return
			}

		case "frequency":
			if freq, freqErr := strconv.ParseFloat(value, 64); freqErr != nil {
				err = freqErr
				return
			} else {
				status.Frequency = freq
			}

		case "tx power", "max pkt size", "rx bad", "rx good", "tx good":
			v, vErr := strconv.Atoi(strings.TrimSuffix(value, " dBm"))
			if vErr != nil {
				err = vErr
				return
			}

			switch fields[1] {
			case "tx power":
				status.TxPower = v
			case "max pkt size":
				status.Mtu = v
			case "rx bad":
				status.RxBad = v
			case "rx good":
				status.RxGood = v
			case "tx good":
				status.TxGood = v
			}

		case "rx listener":
			// We don't care about this one.

		default:
			err = fmt.Errorf("unknown info key value: %s", fields[1])
			return
		}
	}

	return
}

// FetchStatus queries the radio's status information.
func (modem *Modem) FetchStatus() (status Status, err error) {
	respMsgs, cmdErr := modem.sendCmdMultiline("AT+INFO\n", infoLines)
	if cmdErr != nil {
		err = cmdErr
		return
	}

	return parseStatus(respMsgs)
}

// updateMtu fetches the current MTU.
func (modem *Modem) updateMtu() (err error) {
	if status, statusErr := modem.FetchStatus(); statusErr != nil {
		err = statusErr
	} else {
		modem.mtu = status.Mtu
	}

	return
}

// Mtu returns the radio's MTU.
func (modem *Modem) Mtu() (mtu int, err error) {
	if modem.mtu == 0 {
		if mtuErr := modem.updateMtu(); mtuErr != nil {
			err = mtuErr
			return
		}
	}

	// A status answer without a usable "max pkt size" must not leak a zero
	// MTU to callers, Send would never advance with one.
	if modem.mtu <= 0 {
		err = fmt.Errorf("radio reported no usable MTU")
		return
	}

	mtu = modem.mtu
	return
}
