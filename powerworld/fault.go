package powerworld

import "fmt"

// Error levels, as the host colours them.
const (
	LevelNone    = 1
	LevelNotice  = 2
	LevelUnknown = 3
	LevelFault   = 4
)

type Fault struct {
	Level int
	Text  string
}

var NoFault = Fault{LevelNone, "None"}

type faultBit struct {
	bit  uint
	text string
}

type faultReg struct {
	level int
	bits  []faultBit
}

// faultRegs are fault registers 1 to 7 (0x0007..0x000D). Bits are checked
// in this order and the first one set names the fault.
var faultRegs = [7]faultReg{
	{LevelFault, []faultBit{
		{0, "Er 14 Water tank temperature failure"},
		{1, "Er 21 Ambient temperature failure"},
		{2, "Er 16 Evaporator coil temperature failure"},
		{4, "Er 27 Water outlet temperature failure"},
		{5, "Er 05 High pressure fault"},
		{6, "Er 06 Low pressure fault"},
	}},
	{LevelFault, []faultBit{
		{0, "Er 03 Water flow fault"},
		{2, "Er 32 Heating outlet water temperature to high protection"},
	}},
	{LevelFault, []faultBit{
		{1, "Er 18 Exhaust gas temperature failure"},
	}},
	{LevelFault, []faultBit{
		{0, "Er 15 Water inlet temperature failure"},
		{1, "Er 12 Exhaust gas to high protection"},
		{5, "Er 23 Cooling outlet water temperature overcooling protection"},
		{6, "Er 29 Suction gas temperature failure"},
	}},
	{LevelFault, []faultBit{
		{0, "Er 69 Pressure too low protection"},
		{2, "Er 33 Evaporator coil temperature too high"},
		{3, "Er 42 Cooling pipe temperature sensor (after EV during cooling) fault"},
		{5, "Er 72 DC fan communication fault"},
		{7, "Er 67 Low pressure sensor fault"},
	}},
	{LevelNotice, []faultBit{
		{4, "Secondary anti-freezing"},
		{5, "Level 1 anti-freezing"},
	}},
	{LevelFault, []faultBit{
		{4, "Er 10 communication fault with frequency conversion module"},
		{5, "Er 66 DC fan 2 fault"},
		{6, "Er 64 DC fan 1 fault"},
	}},
}

const antiFreezeReg = 5

// InterpretErrors turns fault registers 1 to 7 into one fault. Every
// nonzero register replaces what the ones before it said, so the highest
// numbered one is reported, not the most severe. antiFreeze is set when
// register 6 names an anti-freezing stage.
func InterpretErrors(faults [7]uint16) (e Fault, antiFreeze bool) {
	e = NoFault
	for i, w := range faults {
		if w == 0 {
			continue
		}
		e = Fault{LevelUnknown, fmt.Sprintf("Unknown error (register %d)", i+1)}
		for _, fb := range faultRegs[i].bits {
			if Bit(w, fb.bit) {
				e = Fault{faultRegs[i].level, fb.text}
				if i == antiFreezeReg {
					antiFreeze = true
				}
				break
			}
		}
	}
	return e, antiFreeze
}
