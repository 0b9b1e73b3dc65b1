// Package gateway reaches the heat pump through a Modbus-TCP gateway
// instead of a transparent RS485-to-LAN converter.
package gateway

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/rs/zerolog"

	rtu "github.com/bangzek/powerworld-rtu"
)

type Config struct {
	Endpoint string
	Timeout  time.Duration
	Gap      time.Duration
	Attempts int
}

// Transport talks MBAP to the gateway. Requests are serialized because
// SlaveId is set per request.
type Transport struct {
	mu       sync.Mutex
	handler  *modbus.TCPClientHandler
	client   modbus.Client
	gap      time.Duration
	attempts int
	last     time.Time
	log      zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) (*Transport, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("gateway: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = rtu.TIMEOUT
	}
	if cfg.Gap <= 0 {
		cfg.Gap = rtu.GAP
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = rtu.ATTEMPTS
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	return &Transport{
		handler:  h,
		client:   modbus.NewClient(h),
		gap:      cfg.Gap,
		attempts: cfg.Attempts,
		log:      log.With().Str("endpoint", cfg.Endpoint).Logger(),
	}, nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handler.Close()
}

func (t *Transport) ReadSingle(unit byte, reg uint16) (uint16, error) {
	b, err := t.ReadRange(unit, reg, 1)
	if err != nil {
		return 0, err
	}
	if len(b) == 1 {
		return uint16(b[0]), nil
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (t *Transport) ReadRange(
	unit byte, start, count uint16,
) ([]byte, error) {
	op := fmt.Sprintf("%d<-RHR %d:%d", unit, start, count)
	var b []byte
	err := t.do(unit, op, true, func() (err error) {
		b, err = t.client.ReadHoldingRegisters(start, count)
		if err == nil && len(b) != int(count)*2 && !(count == 1 && len(b) == 1) {
			err = fmt.Errorf("got %d bytes for %d registers", len(b), count)
		}
		return err
	})
	return b, err
}

// WriteSingle is not repeated: the gateway may have passed it on before
// failing.
func (t *Transport) WriteSingle(unit byte, reg, val uint16) error {
	op := fmt.Sprintf("%d<-W1R %d %d", unit, reg, val)
	return t.do(unit, op, false, func() error {
		_, err := t.client.WriteSingleRegister(reg, val)
		return err
	})
}

func (t *Transport) do(unit byte, op string, repeat bool, f func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handler.SlaveId = unit
	attempts := 1
	if repeat {
		attempts = t.attempts
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if !t.last.IsZero() {
			if d := time.Until(t.last.Add(t.gap)); d > 0 {
				time.Sleep(d)
			}
		}
		err = f()
		t.last = time.Now()
		if err == nil {
			return nil
		}

		var me *modbus.ModbusError
		if errors.As(err, &me) {
			return rtu.FailedErr{Op: op, Attempts: i, Err: err}
		}
		// a broken connection is redialed on the next request
		t.handler.Close()
		if i < attempts {
			t.log.Warn().Err(err).Str("op", op).Int("attempt", i).
				Msg("Retrying")
		}
	}
	return rtu.FailedErr{Op: op, Attempts: attempts, Err: err}
}
