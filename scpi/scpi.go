// Package scpi implements a small client for SCPI instruments reachable
// over a raw TCP socket, the usual transport on port 5025 for LAN-attached
// scopes and meters.
package scpi

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a single command or query round trip. Waveform
// transfers can take a while on slow scopes.
const DefaultTimeout = 10 * time.Second

// Instrument is a single SCPI instrument connection. All methods are safe
// for concurrent use; commands are serialized on the socket.
type Instrument struct {
	addr    string
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration

	lock sync.Mutex
}

// Dial connects to a SCPI instrument, e.g. "192.0.2.10:5025". A zero
// timeout selects DefaultTimeout.
func Dial(addr string, timeout time.Duration) (*Instrument, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing instrument %s: %w", addr, err)
	}

	return attach(addr, conn, timeout), nil
}

// attach wraps an established connection. Split out from Dial so tests can
// drive the protocol over a net.Pipe.
func attach(addr string, conn net.Conn, timeout time.Duration) *Instrument {
	return &Instrument{
		addr:    addr,
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}
}

func (inst *Instrument) deadline() time.Time {
	return time.Now().Add(inst.timeout)
}

// Exec sends a command that answers nothing.
func (inst *Instrument) Exec(cmd string) error {
	inst.lock.Lock()
	defer inst.lock.Unlock()

	return inst.write(cmd)
}

func (inst *Instrument) write(cmd string) error {
	if err := inst.conn.SetWriteDeadline(inst.deadline()); err != nil {
		return err
	}

	if _, err := inst.conn.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("writing %q to %s: %w", cmd, inst.addr, err)
	}
	return nil
}

// Query sends a command and returns its single-line answer with the line
// terminator stripped.
func (inst *Instrument) Query(cmd string) (string, error) {
	inst.lock.Lock()
	defer inst.lock.Unlock()

	if err := inst.write(cmd); err != nil {
		return "", err
	}

	if err := inst.conn.SetReadDeadline(inst.deadline()); err != nil {
		return "", err
	}

	resp, err := inst.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading answer for %q from %s: %w", cmd, inst.addr, err)
	}

	return strings.TrimRight(resp, "\r\n"), nil
}

// QueryBlock sends a command answered with an IEEE 488.2 definite length
// block (#<n><len><bytes>) and returns the block's payload.
func (inst *Instrument) QueryBlock(cmd string) ([]byte, error) {
	inst.lock.Lock()
	defer inst.lock.Unlock()

	if err := inst.write(cmd); err != nil {
		return nil, err
	}

	if err := inst.conn.SetReadDeadline(inst.deadline()); err != nil {
		return nil, err
	}

	data, err := readBlock(inst.reader)
	if err != nil {
		return nil, fmt.Errorf("reading block answer for %q from %s: %w", cmd, inst.addr, err)
	}
	return data, nil
}

// Identify asks the instrument who it is.
func (inst *Instrument) Identify() (string, error) {
	return inst.Query("*IDN?")
}

// Reset performs a soft reset.
func (inst *Instrument) Reset() error {
	return inst.Exec("*RST")
}

// Addr returns the instrument's network address.
func (inst *Instrument) Addr() string {
	return inst.addr
}

// Close shuts down the connection.
func (inst *Instrument) Close() error {
	return inst.conn.Close()
}
