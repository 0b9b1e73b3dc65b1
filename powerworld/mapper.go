package powerworld

import "time"

// Sample is one decoded poll.
type Sample struct {
	Time time.Time

	UnitOn    bool
	Mode      Mode
	Frequency FreqMode
	Pump      PumpMode
	Fault     Fault
	Faults    [7]uint16

	values [NumFields + 1]float64
}

// Value of f as the host shows it. Flags are 0 or 1.
func (s *Sample) Value(f Field) float64 {
	if !f.IsValid() {
		return 0
	}
	return s.values[f]
}

func (s *Sample) Flag(f Field) bool {
	return s.Value(f) != 0
}

func (s *Sample) set(f Field, v float64) {
	s.values[f] = v
}

func (s *Sample) setFlag(f Field, b bool) {
	if b {
		s.values[f] = 1
	} else {
		s.values[f] = 0
	}
}

// words reads registers off a payload, keeping the first error.
type words struct {
	p   Payload
	err error
}

func (r *words) at(addr uint16) uint16 {
	if r.err != nil {
		return 0
	}
	w, err := r.p.Word(addr)
	r.err = err
	return w
}

// Decode builds a Sample from a full poll payload.
func Decode(p Payload) (*Sample, error) {
	if p.Regs() < PayloadRegs {
		return nil, DecodeErr{PayloadRegs - 1, p.Regs(), nil}
	}

	r := &words{p: p}
	s := new(Sample)
	for _, reg := range Registers {
		s.set(reg.Field, reg.decode(r.at(reg.Addr)))
	}

	s.UnitOn = Bit(r.at(RegUnitSwitch), 0)
	s.Mode = Mode(r.at(RegMode))
	s.set(OperationMode, float64(OperationLevel(s.UnitOn, s.Mode)))

	s.Frequency = FrequencyModeOf(r.at(RegControl1), r.at(RegControl2))
	s.set(FrequencyMode, float64(s.Frequency))

	s.Pump = PumpMode(s.Value(PumpAtTarget))

	for i := range s.Faults {
		s.Faults[i] = r.at(RegFault1 + uint16(i))
	}
	var antiFreeze bool
	s.Fault, antiFreeze = InterpretErrors(s.Faults)
	s.set(ErrorState, float64(s.Fault.Level))

	s.setFlag(AntiFreezing, antiFreeze || s.Flag(CrankshaftHeating))
	s.setFlag(WaterPump, s.Value(WaterPumpSpeed) > 0)

	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}
