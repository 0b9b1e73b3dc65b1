package rtu

import (
	"bytes"
	"fmt"
	"strconv"
)

type Cmd interface {
	TxBytes() []byte
	DevAddr() byte
	Addr() uint16
	Tx() string

	RxBytes() *[]byte
	IsValidRx() bool
	Rx() string
	Err() error

	// Idempotent reports whether the request may be repeated after it
	// has reached the wire.
	Idempotent() bool

	String() string
}

type cmd struct {
	tx []byte
	rx []byte
}

func (c *cmd) TxBytes() []byte {
	return c.tx
}

func (c *cmd) DevAddr() byte {
	return c.tx[0]
}

func (c *cmd) Addr() uint16 {
	return (uint16(c.tx[2]) << 8) | uint16(c.tx[3])
}

func (c *cmd) RxBytes() *[]byte {
	return &c.rx
}

func (c *cmd) Err() error {
	if len(c.rx) == 5 && c.rx[1]&0x80 != 0 {
		return ModbusErr(c.rx[2])
	} else {
		return nil
	}
}

func (c *cmd) isValidErr() bool {
	return len(c.rx) == 5 && Validate(c.rx) &&
		c.rx[0] == c.tx[0] && c.rx[1] == c.tx[1]|0x80
}

func (c *cmd) badRx(b []byte) []byte {
	b = append(b, '[')
	for i, x := range c.rx {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, fmt.Sprintf("%02X", x)...)
	}
	return append(b, ']')
}

//----------------------------------------------------------------------

// ReadHRegsCmd is function 0x03, read holding registers.
type ReadHRegsCmd struct {
	cmd
}

func NewReadHRegsCmd(devAddr byte, addr uint16, count uint16) *ReadHRegsCmd {
	if devAddr == 0 {
		panic("could not broadcast ReadHRegsCmd")
	}
	if count == 0 {
		panic("zero count")
	}
	if count > 125 {
		panic(fmt.Sprintf("count too many: %d", count))
	}
	if addr+count-1 < addr {
		panic(fmt.Sprintf("address overflow: %d, %d", addr, count))
	}

	tx := Encode(devAddr, FuncReadHRegs, []byte{
		byte(addr >> 8), byte(addr),
		byte(count >> 8), byte(count),
	})

	return &ReadHRegsCmd{cmd{
		tx: tx,
		rx: make([]byte, 0, count*2+5),
	}}
}

func (c *ReadHRegsCmd) Count() int {
	return int(c.tx[5])
}

// ByteCount is the byte count field of the reply.
func (c *ReadHRegsCmd) ByteCount() int {
	return int(c.rx[2])
}

func (c *ReadHRegsCmd) Reg(i int) uint16 {
	if i < 0 || i >= c.ByteCount()/2 {
		panic(fmt.Sprintf("invalid i: %d", i))
	}
	return (uint16(c.rx[3+i*2]) << 8) | uint16(c.rx[3+i*2+1])
}

// Bytes is the data part of the reply, without the address, function,
// byte count and CRC.
func (c *ReadHRegsCmd) Bytes() []byte {
	return c.rx[3 : 3+c.ByteCount()]
}

// Value is the single value of a one register read. Some firmware
// answers a single register with a one byte payload.
func (c *ReadHRegsCmd) Value() uint16 {
	if c.ByteCount() == 1 {
		return uint16(c.rx[3])
	}
	return c.Reg(0)
}

func (c *ReadHRegsCmd) IsValidRx() bool {
	return c.isValidErr() ||
		(len(c.rx) >= 6 && Validate(c.rx) &&
			c.rx[0] == c.tx[0] &&
			c.rx[1] == c.tx[1] &&
			c.validByteCount() &&
			len(c.rx) == int(c.rx[2])+5)
}

func (c *ReadHRegsCmd) validByteCount() bool {
	n := c.Count() * 2
	if c.Count() == 1 {
		return c.rx[2] == 1 || c.rx[2] == 2
	}
	return int(c.rx[2]) == n
}

func (c *ReadHRegsCmd) Idempotent() bool {
	return true
}

func (c *ReadHRegsCmd) String() string {
	b := c.aTx(make([]byte, 0, 32))
	b = append(b, '\n')
	if c.IsValidRx() {
		b = c.aRx(b)
	} else {
		b = c.badRx(b)
	}
	return string(b)
}

func (c *ReadHRegsCmd) Tx() string {
	return string(c.aTx(make([]byte, 0, 16)))
}

func (c *ReadHRegsCmd) aTx(b []byte) []byte {
	b = strconv.AppendInt(b, int64(c.DevAddr()), 10)
	b = append(b, "<-RHR "...)
	b = strconv.AppendInt(b, int64(c.Addr()), 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(c.Count()), 10)
	return b
}

func (c *ReadHRegsCmd) Rx() string {
	return string(c.aRx(make([]byte, 0, 16+c.Count()*6)))
}

func (c *ReadHRegsCmd) aRx(b []byte) []byte {
	b = strconv.AppendInt(b, int64(c.rx[0]), 10)
	b = append(b, "->RHR "...)
	if err := c.Err(); err != nil {
		return append(b, err.Error()...)
	}
	if c.ByteCount() == 1 {
		b = append(b, "1[b "...)
		b = strconv.AppendInt(b, int64(c.rx[3]), 10)
		return append(b, ']')
	}
	n := c.ByteCount() / 2
	b = strconv.AppendInt(b, int64(n), 10)
	b = append(b, '[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ' ')
			if i%10 == 0 {
				b = append(b, "| "...)
			}
		}
		b = strconv.AppendInt(b, int64(c.Reg(i)), 10)
	}
	return append(b, ']')
}

//----------------------------------------------------------------------

// WriteRegCmd is function 0x06, write single register.
type WriteRegCmd struct {
	cmd
}

func NewWriteRegCmd(devAddr byte, addr uint16, val uint16) *WriteRegCmd {
	tx := Encode(devAddr, FuncWriteReg, []byte{
		byte(addr >> 8), byte(addr),
		byte(val >> 8), byte(val),
	})

	var rx []byte
	if devAddr > 0 {
		rx = make([]byte, 0, len(tx))
	}

	return &WriteRegCmd{cmd{
		tx: tx,
		rx: rx,
	}}
}

func (c *WriteRegCmd) Reg() uint16 {
	return (uint16(c.tx[4]) << 8) | uint16(c.tx[5])
}

func (c *WriteRegCmd) IsValidRx() bool {
	return c.isValidErr() || (len(c.rx) == 8 && bytes.Equal(c.rx, c.tx))
}

func (c *WriteRegCmd) Idempotent() bool {
	return false
}

func (c *WriteRegCmd) String() string {
	if cap(c.rx) == 0 {
		return c.Tx()
	}
	b := c.aTx(make([]byte, 0, 32))
	b = append(b, '\n')
	if c.IsValidRx() {
		b = c.aRx(b)
	} else {
		b = c.badRx(b)
	}
	return string(b)
}

func (c *WriteRegCmd) Tx() string {
	return string(c.aTx(make([]byte, 0, 16)))
}

func (c *WriteRegCmd) aTx(b []byte) []byte {
	b = strconv.AppendInt(b, int64(c.DevAddr()), 10)
	b = append(b, "<-W1R "...)
	b = strconv.AppendInt(b, int64(c.Addr()), 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(c.Reg()), 10)
	return b
}

func (c *WriteRegCmd) Rx() string {
	return string(c.aRx(make([]byte, 0, 16)))
}

func (c *WriteRegCmd) aRx(b []byte) []byte {
	b = strconv.AppendInt(b, int64(c.rx[0]), 10)
	b = append(b, "->W1R "...)
	if err := c.Err(); err != nil {
		return append(b, err.Error()...)
	}
	b = strconv.AppendInt(b, int64(c.addr()), 10)
	b = append(b, ' ')
	return strconv.AppendInt(b, int64(c.reg()), 10)
}

func (c *WriteRegCmd) addr() uint16 {
	return (uint16(c.rx[2]) << 8) | uint16(c.rx[3])
}

func (c *WriteRegCmd) reg() uint16 {
	return (uint16(c.rx[4]) << 8) | uint16(c.rx[5])
}
