package rtu

const (
	FuncReadHRegs = 0x03
	FuncWriteReg  = 0x06

	minFrameLen = 4
)

// Encode builds an RTU frame: devAddr, fn, payload and the CRC trailer.
func Encode(devAddr, fn byte, payload []byte) []byte {
	b := make([]byte, len(payload)+4)
	b[0] = devAddr
	b[1] = fn
	copy(b[2:], payload)
	SetChecksum(b)
	return b
}

// Validate reports whether b carries a correct CRC trailer.
// Frames shorter than 4 bytes are never valid.
func Validate(b []byte) bool {
	return len(b) >= minFrameLen && checksum(b)
}

// Echoes reports whether rx answers tx: same device address and the same
// function code, either plain or with the exception bit set.
func Echoes(tx, rx []byte) bool {
	return len(rx) >= 2 && len(tx) >= 2 &&
		rx[0] == tx[0] && rx[1]&^0x80 == tx[1]
}
