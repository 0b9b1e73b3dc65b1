package rtu

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/bangzek/clock"
)

const (
	TIMEOUT  = 2 * time.Second
	GAP      = 200 * time.Millisecond
	ATTEMPTS = 2
)

type nower interface {
	Now() time.Time
}

var (
	ctime  nower = clock.New()
	csleep       = time.Sleep
)

type PortOpener interface {
	Open(bool) (io.ReadWriteCloser, time.Duration, error)
}

// Controller runs request/response transactions against one device link.
// Transactions are serialized; each one is retried up to Attempts times and
// never starts earlier than Gap after the previous reply.
type Controller struct {
	Port     PortOpener
	Timeout  time.Duration
	Gap      time.Duration
	Attempts int

	// KeepOpen keeps the port between transactions. The heat pump's
	// RS485-to-LAN converters want a fresh connection per request.
	KeepOpen bool

	mu     sync.Mutex
	port   io.ReadWriteCloser
	wait   time.Duration
	repeat bool
	last   time.Time
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
}

func (c *Controller) close() {
	if c.port != nil {
		c.port.Close()
		c.port = nil
	}
}

func (c *Controller) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = TIMEOUT
	}
	if c.Gap <= 0 {
		c.Gap = GAP
	}
	if c.Attempts <= 0 {
		c.Attempts = ATTEMPTS
	}
}

func (c *Controller) Send(cmd Cmd) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults()

	var err error
	for i := 1; i <= c.Attempts; i++ {
		c.pace()
		var sent bool
		sent, err = c.send(cmd)
		c.last = ctime.Now()
		if !c.KeepOpen {
			c.close()
		}
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return FailedErr{cmd.Tx(), i, err}
		}
		if sent && !cmd.Idempotent() {
			return NoAckErr{cmd.Tx(), err}
		}
		if i < c.Attempts {
			warnLog("%s attempt %d/%d: %s", cmd.Tx(), i, c.Attempts, err)
		}
	}
	return FailedErr{cmd.Tx(), c.Attempts, err}
}

// pace holds the next request back until Gap has passed since the last
// reply. The controller drops requests that come in quicker than that.
func (c *Controller) pace() {
	if c.last.IsZero() {
		return
	}
	if d := c.last.Add(c.Gap).Sub(ctime.Now()); d > 0 {
		csleep(d)
	}
}

func (c *Controller) send(cmd Cmd) (bool, error) {
	if c.port == nil {
		var err error
		c.port, c.wait, err = c.Port.Open(c.repeat)
		if err != nil {
			c.repeat = true
			return false, TransportErr{"open", err}
		}
		c.repeat = false
	}

	tx := cmd.TxBytes()
	debugLog("tx: % X", tx)
	debugLog("TX: %s", cmd.Tx())
	if n, err := c.port.Write(tx); err != nil {
		c.close()
		return n > 0, TransportErr{"write", err}
	} else if n != len(tx) {
		c.close()
		return n > 0, TransportErr{"write", io.ErrShortWrite}
	}

	if c.wait > 0 {
		csleep(c.wait)
	}

	rx := cmd.RxBytes()
	if cap(*rx) == 0 {
		return true, nil
	}

	for deadline := ctime.Now().Add(c.Timeout); ; {
		if n, ok, err := c.read(tx, rx, cmd.IsValidRx); err != nil {
			c.close()
			if isTimeout(err) {
				return true, ErrTimeout
			}
			return true, TransportErr{"read", err}
		} else if n > 0 {
			debugLog("rx: % X", *rx)
			if !ok {
				c.close()
				return true, BadRxErr(append([]byte(nil), *rx...))
			}
			debugLog("RX: %s", cmd.Rx())
			break
		}

		if ctime.Now().After(deadline) {
			c.close()
			return true, ErrTimeout
		}
	}
	return true, cmd.Err()
}

func (c *Controller) read(
	tx []byte, b *[]byte, isValid func() bool,
) (int, bool, error) {
	*b = (*b)[:cap(*b)]
	for n := 0; n < len(*b); {
		nn, err := c.port.Read((*b)[n:])
		n += nn
		*b = (*b)[:n]
		if err != nil {
			return n, false, err
		} else if nn == 0 {
			return n, false, nil
		} else if isValid() {
			return n, true, nil
		} else if n >= 2 && !Echoes(tx, *b) {
			// another device or a stale reply, no point waiting for more
			return n, false, nil
		}
		*b = (*b)[:cap(*b)]
	}
	return len(*b), false, nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
