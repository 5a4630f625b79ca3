package radio

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/tarm/serial"
)

// DefaultBaud is the serial baud rate rf95modem firmwares ship with.
const DefaultBaud = 9600

// Modem drives an rf95modem-compatible LoRa radio attached to a serial
// port. Commands are synchronous request/response pairs, while received
// packets arrive asynchronously as +RX lines and are dispatched to the
// registered handlers.
type Modem struct {
	device string
	dev    io.ReadWriteCloser
	reader *bufio.Reader

	cmdLock  sync.Mutex
	msgQueue chan string

	handlerLock sync.Mutex
	rxHandlers  []func(RxMessage)

	ctx    context.Context
	cancel context.CancelFunc

	mtu int
}

// OpenSerial opens the radio on the named serial device. The Modem shuts
// down when the context is canceled or Close is called.
func OpenSerial(ctx context.Context, device string, baud int) (modem *Modem, err error) {
	if baud == 0 {
		baud = DefaultBaud
	}

	dev, devErr := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if devErr != nil {
		err = devErr
		return
	}

	modem = attach(ctx, device, dev)
	return
}

// attach wraps an already opened device. Split out from OpenSerial so the
// protocol logic can be driven from a pipe.
func attach(ctx context.Context, device string, dev io.ReadWriteCloser) (modem *Modem) {
	modemCtx, cancel := context.WithCancel(ctx)

	modem = &Modem{
		device:   device,
		dev:      dev,
		reader:   bufio.NewReader(dev),
		msgQueue: make(chan string, 32),
		ctx:      modemCtx,
		cancel:   cancel,
	}

	go modem.readPump()

	return
}

// readPump separates asynchronous +RX lines from command responses.
func (modem *Modem) readPump() {
	for {
		lineMsg, lineErr := modem.reader.ReadString('\n')
		if lineErr != nil {
			modem.cancel()
			return
		}

		if strings.HasPrefix(lineMsg, "+RX ") {
			if rx, rxErr := parsePacketRx(lineMsg); rxErr == nil {
				modem.dispatchRx(rx)
			}
			continue
		}

		select {
		case modem.msgQueue <- lineMsg:
		case <-modem.ctx.Done():
			return
		}
	}
}

// sendCmdMultiline sends an AT command to the radio and reads the amount of
// requested responding lines.
func (modem *Modem) sendCmdMultiline(cmd string, respLines int) (responses []string, err error) {
	modem.cmdLock.Lock()
	defer modem.cmdLock.Unlock()

	select {
	case <-modem.ctx.Done():
		err = io.EOF
		return
	default:
	}

	if _, writeErr := modem.dev.Write([]byte(cmd)); writeErr != nil {
		err = writeErr
		return
	}

	for i := 0; i < respLines; i++ {
		select {
		case respMsg := <-modem.msgQueue:
			responses = append(responses, respMsg)
		case <-modem.ctx.Done():
			err = io.EOF
			return
		}
	}

	return
}

// sendCmd sends an AT command to the radio and reads the responding line.
func (modem *Modem) sendCmd(cmd string) (response string, err error) {
	if responses, responsesErr := modem.sendCmdMultiline(cmd, 1); responsesErr != nil {
		err = responsesErr
	} else {
		response = responses[0]
	}

	return
}

// Device returns the serial device name this Modem was opened on.
func (modem *Modem) Device() string {
	return modem.device
}

// Close shuts down the Modem and its serial port.
func (modem *Modem) Close() error {
	modem.cancel()
	return modem.dev.Close()
}
