package rtu

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/albenik/go-serial/v2"
)

const (
	SERIAL_TIMEOUT = 30 * time.Millisecond
	SERIAL_WAIT    = 30 * time.Millisecond
	BAUDRATE       = 9600
)

var ErrNoDevice = errors.New("no serial device")

// SerialPort is a USB RS485 adapter wired straight to the heat pump's
// CN9 connector. The controller talks 9600 8N1 out of the box.
//
// Unlike TCPPort it is meant to stay open between requests, see
// Controller.KeepOpen.
type SerialPort struct {
	Dev      string
	Baudrate int
	Parity   Parity
	StopBits int // 1 or 2, 0 is 1
	Timeout  time.Duration
	Wait     time.Duration
}

// Framing is the line setting in the usual "9600 8N1" form.
func (p *SerialPort) Framing() string {
	par := "N"
	switch p.Parity {
	case OddParity:
		par = "O"
	case EvenParity:
		par = "E"
	}
	return fmt.Sprintf("%d 8%s%d", p.baudrate(), par, p.stopBits())
}

func (p *SerialPort) baudrate() int {
	if p.Baudrate <= 0 {
		return BAUDRATE
	}
	return p.Baudrate
}

func (p *SerialPort) stopBits() int {
	if p.StopBits == 2 {
		return 2
	}
	return 1
}

func (p *SerialPort) Open(
	repeat bool,
) (io.ReadWriteCloser, time.Duration, error) {
	if p.Dev == "" {
		return nil, 0, OpenErr{"serial", ErrNoDevice}
	}
	if !p.Parity.IsValid() {
		return nil, 0, OpenErr{p.Dev, fmt.Errorf("invalid parity %d", p.Parity)}
	}
	if p.Timeout <= 0 {
		p.Timeout = SERIAL_TIMEOUT
	}
	if p.Wait <= 0 {
		p.Wait = SERIAL_WAIT
	}

	sb := serial.OneStopBit
	if p.stopBits() == 2 {
		sb = serial.TwoStopBits
	}

	if repeat {
		debugLog("Reopening %s", p.Dev)
	} else {
		debugLog("Opening %s", p.Dev)
	}
	port, err := serial.Open(p.Dev,
		serial.WithBaudrate(p.baudrate()),
		serial.WithDataBits(8),
		serial.WithParity(serial.Parity(p.Parity)),
		serial.WithStopBits(sb),
		serial.WithReadTimeout(int(p.Timeout.Milliseconds())),
		serial.WithWriteTimeout(int(p.Timeout.Milliseconds())))
	if err != nil {
		return nil, p.Wait, OpenErr{p.Dev, err}
	}
	log("%s opened at %s", p.Dev, p.Framing())
	return port, p.Wait, nil
}
