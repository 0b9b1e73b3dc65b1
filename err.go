package rtu

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrTimeout = errors.New("response timeout")

// ModbusErr is the exception code of an exception reply.
type ModbusErr byte

func (e ModbusErr) Error() string {
	switch e {
	case 1:
		return "illegal function"
	case 2:
		return "illegal data address"
	case 3:
		return "illegal data value"
	case 4:
		return "server device failure"
	case 5:
		return "acknowledge"
	case 6:
		return "server device busy"
	case 8:
		return "memory parity error"
	case 0xA:
		return "gateway path unavailable"
	case 0xB:
		return "gateway target failed"
	default:
		return "modbus exception " + strconv.Itoa(int(e))
	}
}

// BadRxErr is a reply that failed the CRC, echo or length checks.
type BadRxErr []byte

func (e BadRxErr) Error() string {
	return fmt.Sprintf("invalid response: [% X]", []byte(e))
}

// TransportErr wraps a socket level failure: dial, write, read.
type TransportErr struct {
	Op  string
	Err error
}

func (e TransportErr) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e TransportErr) Unwrap() error {
	return e.Err
}

// FailedErr is what a caller sees once a transaction gives up.
type FailedErr struct {
	Op       string
	Attempts int
	Err      error
}

func (e FailedErr) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %s",
		e.Op, e.Attempts, e.Err)
}

func (e FailedErr) Unwrap() error {
	return e.Err
}

// NoAckErr means the request went out but no valid reply came back.
// Non idempotent requests are not repeated after that.
type NoAckErr struct {
	Op  string
	Err error
}

func (e NoAckErr) Error() string {
	return e.Op + " not acknowledged: " + e.Err.Error()
}

func (e NoAckErr) Unwrap() error {
	return e.Err
}

func retryable(err error) bool {
	var me ModbusErr
	return !errors.As(err, &me)
}

// OpenErr is a link that could not be opened. Link is the device path or
// the dialed address.
type OpenErr struct {
	Link string
	Err  error
}

func (e OpenErr) Error() string {
	return e.Err.Error() + " while opening " + e.Link
}

func (e OpenErr) Unwrap() error {
	return e.Err
}
