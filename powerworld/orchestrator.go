package powerworld

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	INTERVAL       = 30 * time.Second
	RETRY_INTERVAL = 5 * time.Second
)

// State is where a poll is.
type State int32

const (
	Idle State = iota
	Reading
	Decoding
	Publishing
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reading:
		return "reading"
	case Decoding:
		return "decoding"
	case Publishing:
		return "publishing"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Sink takes what the polls produce.
type Sink interface {
	Publish(*Sample)
	Failed(error)
}

// PollErr is a poll that stopped at a segment.
type PollErr struct {
	Segment Segment
	Err     error
}

func (e PollErr) Error() string {
	return fmt.Sprintf("read 0x%04X:%d: %s", e.Segment.Start, e.Segment.Count,
		e.Err)
}

func (e PollErr) Unwrap() error {
	return e.Err
}

// Orchestrator polls one controller and runs commands against it. Polls
// and commands never overlap.
type Orchestrator struct {
	Transport     Transport
	Unit          byte
	Sink          Sink
	Interval      time.Duration
	RetryInterval time.Duration
	Log           zerolog.Logger

	mu    sync.Mutex
	state atomic.Int32
	next  time.Time
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

// Next is when the next poll is due. Zero before the first one.
func (o *Orchestrator) Next() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.next
}

// Tick polls if one is due at now and reports whether it did.
func (o *Orchestrator) Tick(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if now.Before(o.next) {
		return false
	}
	o.poll(now)
	return true
}

// Poll reads, decodes and publishes one sample right away.
func (o *Orchestrator) Poll(now time.Time) (*Sample, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.poll(now)
}

func (o *Orchestrator) poll(now time.Time) (*Sample, error) {
	s, err := o.read(now)
	if err != nil {
		o.setState(Failed)
		o.Log.Error().Err(err).Msg("Poll failed")
		if o.Sink != nil {
			o.Sink.Failed(err)
		}
		o.next = now.Add(o.retryInterval())
		o.setState(Idle)
		return nil, err
	}

	o.setState(Publishing)
	o.dump(s)
	if o.Sink != nil {
		o.Sink.Publish(s)
	}
	o.next = now.Add(o.interval())
	o.setState(Idle)
	return s, nil
}

func (o *Orchestrator) read(now time.Time) (*Sample, error) {
	o.setState(Reading)
	data := make([]byte, 0, PayloadRegs*2)
	for _, seg := range Segments {
		b, err := o.Transport.ReadRange(o.Unit, seg.Start, seg.Count)
		if err != nil {
			return nil, PollErr{seg, err}
		}
		if len(b) != int(seg.Count)*2 {
			return nil, PollErr{seg, fmt.Errorf("got %d bytes", len(b))}
		}
		data = append(data, b...)
	}

	o.setState(Decoding)
	s, err := Decode(NewPayload(data))
	if err != nil {
		return nil, err
	}
	s.Time = now
	return s, nil
}

func (o *Orchestrator) dump(s *Sample) {
	if o.Log.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, f := range Fields() {
		o.Log.Debug().
			Str("field", f.String()).
			Float64("value", s.Value(f)).
			Str("unit", f.Unit()).
			Msg("Decoded")
	}
	o.Log.Debug().
		Bool("unit_on", s.UnitOn).
		Stringer("mode", s.Mode).
		Stringer("frequency_mode", s.Frequency).
		Stringer("pump_mode", s.Pump).
		Int("error_level", s.Fault.Level).
		Str("error", s.Fault.Text).
		Msg("Sample")
}

// Execute runs c between polls. A failed command is not repeated; the
// caller sees the error.
func (o *Orchestrator) Execute(c Command) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	log := o.Log.With().Stringer("command", c).Logger()
	log.Info().Msg("Executing")
	if err := c.Apply(o.Transport, o.Unit); err != nil {
		log.Error().Err(err).Msg("Command failed")
		return err
	}
	log.Info().Msg("Done")
	return nil
}

func (o *Orchestrator) interval() time.Duration {
	if o.Interval > 0 {
		return o.Interval
	}
	return INTERVAL
}

func (o *Orchestrator) retryInterval() time.Duration {
	if o.RetryInterval > 0 {
		return o.RetryInterval
	}
	return RETRY_INTERVAL
}
