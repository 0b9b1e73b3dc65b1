package powerworld

import (
	"errors"
	"fmt"
)

// DecodeErr is a register outside of, or unreadable in, a payload.
type DecodeErr struct {
	Addr uint16
	Regs int
	Err  error
}

func (e DecodeErr) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("register 0x%04X: %s", e.Addr, e.Err)
	}
	return fmt.Sprintf("register 0x%04X beyond payload of %d registers",
		e.Addr, e.Regs)
}

func (e DecodeErr) Unwrap() error {
	return e.Err
}

var ErrBadCommand = errors.New("bad command")

// RangeErr is a command value outside what the controller accepts.
type RangeErr struct {
	Target   Target
	Val      int
	Min, Max int
}

func (e RangeErr) Error() string {
	return fmt.Sprintf("%s: %d out of range %d..%d",
		e.Target, e.Val, e.Min, e.Max)
}

func (e RangeErr) Unwrap() error {
	return ErrBadCommand
}
