package radio

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Transmit sends p as a single LoRa packet. The payload must fit within the
// radio's MTU; Send fragments larger payloads.
func (modem *Modem) Transmit(p []byte) (n int, err error) {
	cmd := fmt.Sprintf("AT+TX=%s\n", hex.EncodeToString(p))
	if respMsg, cmdErr := modem.sendCmd(cmd); cmdErr != nil {
		err = cmdErr
	} else if !strings.HasPrefix(respMsg, "+SENT ") {
		err = fmt.Errorf("transmitting returned unexpected response: %s", respMsg)
	} else {
		n = len(p)
	}

	return
}

// Send transmits the byte array, fragmented into multiple packets if its
// length exceeds the radio's MTU.
func (modem *Modem) Send(p []byte) (n int, err error) {
	mtu, mtuErr := modem.Mtu()
	if mtuErr != nil {
		err = mtuErr
		return
	}

	for pos := 0; pos < len(p); pos += mtu {
		bound := pos + mtu
		if bound > len(p) {
			bound = len(p)
		}

		tx, txErr := modem.Transmit(p[pos:bound])
		n += tx
		if txErr != nil {
			err = txErr
			return
		}
	}

	return
}

// SendText transmits a text message, fragmented like Send.
func (modem *Modem) SendText(msg string) error {
	_, err := modem.Send([]byte(msg))
	return err
}
