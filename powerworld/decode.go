package powerworld

import (
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	// values above wrapThreshold are negative, offset by wrapOffset
	wrapThreshold = 65280
	wrapOffset    = 65535
)

// Payload is the data of all poll segments back to back, hex encoded in
// upper case. Register a starts at character a*4.
type Payload string

func NewPayload(b []byte) Payload {
	return Payload(strings.ToUpper(hex.EncodeToString(b)))
}

// Regs is the number of registers the payload covers.
func (p Payload) Regs() int {
	return len(p) / 4
}

func (p Payload) Word(addr uint16) (uint16, error) {
	i := int(addr) * 4
	if i+4 > len(p) {
		return 0, DecodeErr{addr, p.Regs(), nil}
	}
	v, err := strconv.ParseUint(string(p[i:i+4]), 16, 16)
	if err != nil {
		return 0, DecodeErr{addr, p.Regs(), err}
	}
	return uint16(v), nil
}

// Scale multiplies raw by factor and rounds to one decimal, half to even.
// A zero factor keeps the raw integer.
func Scale(raw uint16, factor float64) float64 {
	if factor > 0 {
		return round1(float64(raw) * factor)
	}
	return float64(raw)
}

// Wrap turns the controller's near-rollover values into negatives.
// It is not two's complement: 65535 reads as 0 and 65281 as -254.
func Wrap(v float64) float64 {
	if v > wrapThreshold {
		return v - wrapOffset
	}
	return v
}

func Bit(w uint16, i uint) bool {
	return w>>i&1 == 1
}

// round1 rounds the exact binary value of x, not x*10, so 0.15 (stored
// as 0.1499...) gives 0.1 and a true tie like 1.25 goes to even.
func round1(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}
