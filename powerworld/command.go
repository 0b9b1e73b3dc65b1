package powerworld

import (
	"fmt"
	"strconv"
	"strings"
)

// Transport is the register access a controller link gives.
type Transport interface {
	ReadSingle(unit byte, reg uint16) (uint16, error)
	ReadRange(unit byte, start, count uint16) ([]byte, error)
	WriteSingle(unit byte, reg, val uint16) error
}

type Target int

const (
	TargetOperationMode Target = iota + 1
	TargetHotWaterSetpoint
	TargetHeatingSetpoint
	TargetPumpAtTarget
	TargetPumpCycle
	TargetFrequencyMode
)

type targetInfo struct {
	name     string
	min, max int
	// levels names the selector levels, when there are any
	levels map[string]int
}

var targetInfos = map[Target]targetInfo{
	TargetOperationMode: {"operation-mode", 0, 50, map[string]int{
		"off":               0,
		"hot-water":         HotWater.Level(),
		"heating":           Heating.Level(),
		"cooling":           Cooling.Level(),
		"hot-water-heating": HotWaterHeating.Level(),
		"hot-water-cooling": HotWaterCooling.Level(),
	}},
	TargetHotWaterSetpoint: {"hot-water-setpoint", 28, 70, nil},
	TargetHeatingSetpoint:  {"heating-setpoint", 15, 70, nil},
	TargetPumpAtTarget: {"pump-at-target", 10, 30, map[string]int{
		"intermittent":   Intermittent.Level(),
		"always-run":     AlwaysRun.Level(),
		"stop-at-target": StopAtTarget.Level(),
	}},
	TargetPumpCycle: {"pump-cycle", 1, 30, nil},
	TargetFrequencyMode: {"frequency-mode", 10, 40, map[string]int{
		"smart":    int(Smart),
		"powerful": int(Powerful),
		"silent":   int(Silent),
		"holiday":  int(Holiday),
	}},
}

func (t Target) String() string {
	if ti, ok := targetInfos[t]; ok {
		return ti.name
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// Command is a request from the host: a target and a selector level or
// setpoint value.
type Command struct {
	Target Target
	Level  int
}

func (c Command) String() string {
	return c.Target.String() + "=" + strconv.Itoa(c.Level)
}

// ParseCommand reads "target=value". The value is a number or, for
// selectors, a level name such as "heating" or "silent".
func ParseCommand(s string) (Command, error) {
	name, val, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return Command{}, fmt.Errorf("%w: %q has no '='", ErrBadCommand, s)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	val = strings.ToLower(strings.TrimSpace(val))

	for t, ti := range targetInfos {
		if ti.name != name {
			continue
		}
		c := Command{Target: t}
		if l, ok := ti.levels[val]; ok {
			c.Level = l
		} else if n, err := strconv.Atoi(val); err == nil {
			c.Level = n
		} else {
			return Command{}, fmt.Errorf("%w: %s has no value %q",
				ErrBadCommand, name, val)
		}
		return c, c.Validate()
	}
	return Command{}, fmt.Errorf("%w: unknown target %q", ErrBadCommand, name)
}

func (c Command) Validate() error {
	ti, ok := targetInfos[c.Target]
	if !ok {
		return fmt.Errorf("%w: unknown target %d", ErrBadCommand, c.Target)
	}
	if c.Level < ti.min || c.Level > ti.max {
		return RangeErr{c.Target, c.Level, ti.min, ti.max}
	}
	switch c.Target {
	case TargetOperationMode:
		if c.Level != 0 {
			_, err := ModeFromLevel(c.Level)
			return err
		}
	case TargetPumpAtTarget:
		_, err := PumpModeFromLevel(c.Level)
		return err
	case TargetFrequencyMode:
		if !FreqMode(c.Level).IsValid() {
			return fmt.Errorf("%w: no frequency mode at level %d",
				ErrBadCommand, c.Level)
		}
	}
	return nil
}

// Apply carries the command out. Packed registers are read first and
// written back whole with only the command's bits changed.
func (c Command) Apply(t Transport, unit byte) error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.Target {
	case TargetOperationMode:
		return applyOperationMode(t, unit, c.Level)
	case TargetHotWaterSetpoint:
		return t.WriteSingle(unit, RegHotWaterSet, uint16(c.Level))
	case TargetHeatingSetpoint:
		return t.WriteSingle(unit, RegHeatingSet, uint16(c.Level))
	case TargetPumpAtTarget:
		m, _ := PumpModeFromLevel(c.Level)
		return t.WriteSingle(unit, RegPumpAtTarget, uint16(m))
	case TargetPumpCycle:
		return t.WriteSingle(unit, RegPumpCycle, uint16(c.Level))
	case TargetFrequencyMode:
		return applyFrequencyMode(t, unit, FreqMode(c.Level))
	}
	return nil
}

func applyOperationMode(t Transport, unit byte, level int) error {
	sw, err := t.ReadSingle(unit, RegUnitSwitch)
	if err != nil {
		return err
	}
	if level == 0 {
		return t.WriteSingle(unit, RegUnitSwitch, sw&^1)
	}

	m, _ := ModeFromLevel(level)
	if !Bit(sw, 0) {
		if err := t.WriteSingle(unit, RegUnitSwitch, sw|1); err != nil {
			return err
		}
	}
	return t.WriteSingle(unit, RegMode, uint16(m))
}

func applyFrequencyMode(t Transport, unit byte, m FreqMode) error {
	ctrl1, err := t.ReadSingle(unit, RegControl1)
	if err != nil {
		return err
	}
	ctrl2, err := t.ReadSingle(unit, RegControl2)
	if err != nil {
		return err
	}
	ctrl1, ctrl2 = withFrequencyMode(m, ctrl1, ctrl2)
	if err := t.WriteSingle(unit, RegControl1, ctrl1); err != nil {
		return err
	}
	return t.WriteSingle(unit, RegControl2, ctrl2)
}
