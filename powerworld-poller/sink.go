package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/bangzek/powerworld-rtu/powerworld"
)

type multiSink []powerworld.Sink

func (m multiSink) Publish(s *powerworld.Sample) {
	for _, x := range m {
		x.Publish(s)
	}
}

func (m multiSink) Failed(err error) {
	for _, x := range m {
		x.Failed(err)
	}
}

// logSink reports state changes the host would show.
type logSink struct {
	log zerolog.Logger
}

func (l logSink) Publish(s *powerworld.Sample) {
	l.log.Info().
		Bool("on", s.UnitOn).
		Stringer("mode", s.Mode).
		Stringer("frequency", s.Frequency).
		Float64("outlet", s.Value(powerworld.WaterOutletTemp)).
		Float64("ambient", s.Value(powerworld.AmbientTemp)).
		Str("error", s.Fault.Text).
		Msg("Published")
}

func (l logSink) Failed(err error) {
	l.log.Debug().Err(err).Msg("Nothing published")
}

// printSink writes one field per line for -once.
type printSink struct {
	w io.Writer
}

func (p printSink) Publish(s *powerworld.Sample) {
	fmt.Fprintf(p.w, "time: %s\nerror: %s\n",
		s.Time.Format("2006-01-02 15:04:05"), s.Fault.Text)
	for _, f := range powerworld.Fields() {
		if f.IsFlag() {
			fmt.Fprintf(p.w, "%s: %s\n", f, onOff(s.Flag(f)))
			continue
		}
		fmt.Fprintf(p.w, "%s: %g%s\n", f, s.Value(f), f.Unit())
	}
}

func (p printSink) Failed(err error) {
	fmt.Fprintf(p.w, "ERR: %s\n", err)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
