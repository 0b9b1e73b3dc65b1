package powerworld

import "fmt"

// Holding registers of the heat pump controller.
const (
	RegOperatingState uint16 = 0x0003 // b7 defrosting
	RegOutputs        uint16 = 0x0005 // b0 chassis heating, b6 3-way valve, b7 boiler heater
	RegOutputs2       uint16 = 0x0006 // b1 crankshaft heating
	RegFault1         uint16 = 0x0007
	RegFault7         uint16 = 0x000D
	RegWaterInlet     uint16 = 0x000E
	RegBoiler         uint16 = 0x000F
	RegAmbient        uint16 = 0x0011
	RegWaterOutlet    uint16 = 0x0012
	RegSuctionGas     uint16 = 0x0015
	RegEvaporatorCoil uint16 = 0x0016
	RegInternalCoil   uint16 = 0x001A
	RegDischargeGas   uint16 = 0x001B
	RegCompressorFreq uint16 = 0x001E
	RegDCBusVoltage   uint16 = 0x0021
	RegCompressorCurr uint16 = 0x0023
	RegFan1Speed      uint16 = 0x0026
	RegFan2Speed      uint16 = 0x0027
	RegLowPressConv   uint16 = 0x0028
	RegPumpSpeed      uint16 = 0x002A
	RegLowPressure    uint16 = 0x002B
	RegCompressorPow  uint16 = 0x002E
	RegWaterflow      uint16 = 0x0030
	RegMainsVoltage   uint16 = 0x0031
	RegConsumedCurr   uint16 = 0x0032
	RegConsumedPow    uint16 = 0x0035
	RegCOP            uint16 = 0x0037
	RegUnitSwitch     uint16 = 0x003F // b0 unit on
	RegControl1       uint16 = 0x0040 // b4 powerful, b5 silent
	RegControl2       uint16 = 0x0041 // b1 holiday
	RegMode           uint16 = 0x0043
	RegHotWaterSet    uint16 = 0x00BE
	RegHeatingSet     uint16 = 0x00C0
	RegPumpAtTarget   uint16 = 0x015B
	RegPumpCycle      uint16 = 0x015C
)

// Segment is one range read of a poll.
type Segment struct {
	Start uint16
	Count uint16
}

// Segments are read in this order and their data concatenated. The
// controller rejects reads larger than 0x78 registers.
var Segments = [...]Segment{
	{0x0000, 0x78},
	{0x0078, 0x78},
	{0x00F0, 0x78},
	{0x0168, 0x07},
}

// PayloadRegs is the number of registers a full poll covers.
const PayloadRegs = 0x0168 + 0x07

const noBit = -1

// Register maps a Field that is read straight from one register.
type Register struct {
	Field  Field
	Addr   uint16
	Factor float64 // 0 keeps the raw integer
	Bit    int     // noBit when the value is the whole word

	// fix is applied after Wrap.
	fix func(float64) float64
}

var Registers = []Register{
	{WaterInletTemp, RegWaterInlet, 0.1, noBit, nil},
	{WaterOutletTemp, RegWaterOutlet, 0.1, noBit, nil},
	{AmbientTemp, RegAmbient, 0.5, noBit, prescaledWrap(2)},
	{BoilerTemp, RegBoiler, 0.1, noBit, nil},
	{SuctionGasTemp, RegSuctionGas, 0, noBit, lateWrap},
	{EvaporatorCoilTemp, RegEvaporatorCoil, 0, noBit, lateWrap},
	{InternalCoilTemp, RegInternalCoil, 0, noBit, nil},
	{DischargeGasTemp, RegDischargeGas, 0, noBit, nil},
	{LowPressureConvTemp, RegLowPressConv, 0.1, noBit, prescaledWrap(10)},
	{HotWaterSetpoint, RegHotWaterSet, 0, noBit, nil},
	{HeatingSetpoint, RegHeatingSet, 0, noBit, nil},
	{Fan1Speed, RegFan1Speed, 0, noBit, nil},
	{Fan2Speed, RegFan2Speed, 0, noBit, nil},
	{COP, RegCOP, 0.1, noBit, nil},
	{WaterPumpSpeed, RegPumpSpeed, 0.1, noBit, nil},
	{ThreeWayValve, RegOutputs, 0, 6, nil},
	{BoilerHeater, RegOutputs, 0, 7, nil},
	{DCBusVoltage, RegDCBusVoltage, 0, noBit, nil},
	{CompressorFrequency, RegCompressorFreq, 0, noBit, nil},
	{CompressorCurrent, RegCompressorCurr, 0, noBit, nil},
	{CompressorPower, RegCompressorPow, 0, noBit, nil},
	{LowPressure, RegLowPressure, 0.01, noBit, nil},
	{Defrosting, RegOperatingState, 0, 7, nil},
	{MainsVoltage, RegMainsVoltage, 0, noBit, nil},
	{ConsumedCurrent, RegConsumedCurr, 0.1, noBit, nil},
	{ConsumedPower, RegConsumedPow, 0, noBit, nil},
	{Waterflow, RegWaterflow, 0.01, noBit, nil},
	{PumpAtTarget, RegPumpAtTarget, 0, noBit, nil},
	{PumpCycle, RegPumpCycle, 0, noBit, nil},
	{ChassisHeating, RegOutputs, 0, 0, nil},
	{CrankshaftHeating, RegOutputs2, 0, 1, nil},
}

func (r Register) decode(w uint16) float64 {
	if r.Bit != noBit {
		if Bit(w, uint(r.Bit)) {
			return 1
		}
		return 0
	}
	v := Wrap(Scale(w, r.Factor))
	if r.fix != nil {
		v = r.fix(v)
	}
	return v
}

// prescaledWrap redoes the rollover check on the unscaled value of a
// register whose factor is 1/mult.
func prescaledWrap(mult float64) func(float64) float64 {
	return func(v float64) float64 {
		if v*mult > 65000 {
			return round1((v*mult - wrapOffset) * (1 / mult))
		}
		return v
	}
}

// lateWrap is the rollover check with the lower threshold some of the
// refrigerant sensors need.
func lateWrap(v float64) float64 {
	if v > 65000 {
		return v - wrapOffset
	}
	return v
}

// checkRegisters panics on a register table that does not fit the poll
// payload or maps a field twice.
func checkRegisters(regs []Register) {
	seen := make(map[Field]bool, len(regs))
	for _, r := range regs {
		if !r.Field.IsValid() {
			panic(fmt.Sprintf("invalid field %d", r.Field))
		}
		if seen[r.Field] {
			panic(fmt.Sprintf("%s mapped twice", r.Field))
		}
		seen[r.Field] = true
		if int(r.Addr) >= PayloadRegs {
			panic(fmt.Sprintf("%s at 0x%04X beyond the poll", r.Field, r.Addr))
		}
		if r.Bit != noBit && (r.Bit < 0 || r.Bit > 15) {
			panic(fmt.Sprintf("%s has invalid bit %d", r.Field, r.Bit))
		}
	}
	var next uint16
	for _, s := range Segments {
		if s.Start != next {
			panic(fmt.Sprintf("gap before segment 0x%04X", s.Start))
		}
		next = s.Start + s.Count
	}
	if int(next) != PayloadRegs {
		panic("segments do not cover PayloadRegs")
	}
}

func init() {
	checkRegisters(Registers)
}
