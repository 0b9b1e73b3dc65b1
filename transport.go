package rtu

import "errors"

// ReadSingle reads one holding register.
func (c *Controller) ReadSingle(devAddr byte, reg uint16) (uint16, error) {
	cmd := NewReadHRegsCmd(devAddr, reg, 1)
	if err := c.Send(cmd); err != nil {
		return 0, err
	}
	return cmd.Value(), nil
}

// ReadRange reads count holding registers from start and returns the data
// bytes of the reply, two per register, big endian.
func (c *Controller) ReadRange(
	devAddr byte, start, count uint16,
) ([]byte, error) {
	cmd := NewReadHRegsCmd(devAddr, start, count)
	if err := c.Send(cmd); err != nil {
		return nil, err
	}
	return append([]byte(nil), cmd.Bytes()...), nil
}

// WriteSingle writes one holding register. A missing or wrong echo is only
// warned about: the request is on the wire and the controller's echo is
// known to be unreliable.
func (c *Controller) WriteSingle(devAddr byte, reg, val uint16) error {
	cmd := NewWriteRegCmd(devAddr, reg, val)
	err := c.Send(cmd)
	var na NoAckErr
	if errors.As(err, &na) {
		warnLog("%s", na)
		return nil
	}
	return err
}
