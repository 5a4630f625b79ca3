package radio

import (
	"fmt"
	"strings"
)

// ModemMode is the radio's modem config, as specified by AT+MODE.
type ModemMode int

const (
	// MediumRange is the default mode for medium range. Bw = 125 kHz, Cr = 4/5, Sf = 128chips/symbol, CRC on.
	MediumRange ModemMode = 0

	// FastShortRange is a fast and short range mode. Bw = 500 kHz, Cr = 4/5, Sf = 128chips/symbol, CRC on.
	FastShortRange ModemMode = 1

	// SlowLongRange is a slow and long range mode. Bw = 31.25 kHz, Cr = 4/8, Sf = 512chips/symbol, CRC on.
	SlowLongRange ModemMode = 2

	// SlowLongRange2 is another slow and long range mode. Bw = 125 kHz, Cr = 4/8, Sf = 4096chips/symbol, CRC on.
	SlowLongRange2 ModemMode = 3
)

// Mode sets the radio's modem config.
func (modem *Modem) Mode(mode ModemMode) error {
	cmd := fmt.Sprintf("AT+MODE=%d\n", mode)
	if respMsg, cmdErr := modem.sendCmd(cmd); cmdErr != nil {
		return cmdErr
	} else if !strings.HasPrefix(respMsg, "+ Ok.") {
		return fmt.Errorf("changing modem mode returned unexpected response: %s", respMsg)
	} else {
		return nil
	}
}

// Frequency changes the radio's frequency, specified in MHz.
func (modem *Modem) Frequency(frequency float64) error {
	cmd := fmt.Sprintf("AT+FREQ=%.2f\n", frequency)
	if respMsg, cmdErr := modem.sendCmd(cmd); cmdErr != nil {
		return cmdErr
	} else if !strings.HasPrefix(respMsg, "Set Freq to: ") {
		return fmt.Errorf("changing frequency returned unexpected response: %s", respMsg)
	} else {
		return nil
	}
}

// SetTxPower changes the radio's transmit power, specified in dBm.
func (modem *Modem) SetTxPower(dBm int) error {
	cmd := fmt.Sprintf("AT+TXPWR=%d\n", dBm)
	if respMsg, cmdErr := modem.sendCmd(cmd); cmdErr != nil {
		return cmdErr
	} else if !strings.HasPrefix(respMsg, "+ Ok.") {
		return fmt.Errorf("changing tx power returned unexpected response: %s", respMsg)
	} else {
		return nil
	}
}

// TxPower reads the transmit power in dBm back from the radio's status.
func (modem *Modem) TxPower() (dBm int, err error) {
	if status, statusErr := modem.FetchStatus(); statusErr != nil {
		err = statusErr
	} else {
		dBm = status.TxPower
	}

	return
}
