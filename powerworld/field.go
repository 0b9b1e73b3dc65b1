package powerworld

import "fmt"

// Field is one value of a Sample. The order is the device order of the
// host shell and never changes.
type Field int

const (
	// OperationMode is the selector level: 0 when the unit is off,
	// otherwise (mode+1)*10.
	OperationMode Field = iota + 1
	WaterInletTemp
	WaterOutletTemp
	AmbientTemp
	BoilerTemp
	SuctionGasTemp
	EvaporatorCoilTemp
	InternalCoilTemp
	DischargeGasTemp
	LowPressureConvTemp
	HotWaterSetpoint
	HeatingSetpoint
	Fan1Speed
	Fan2Speed
	COP
	WaterPumpSpeed
	ThreeWayValve
	BoilerHeater
	DCBusVoltage
	CompressorFrequency
	CompressorCurrent
	CompressorPower
	LowPressure
	Defrosting
	AntiFreezing
	MainsVoltage
	ConsumedCurrent
	ConsumedPower
	Waterflow
	PumpAtTarget
	PumpCycle
	WaterPump
	ChassisHeating
	CrankshaftHeating
	// ErrorState is the error level, 1 to 4.
	ErrorState
	// FrequencyMode is 10, 20, 30 or 40.
	FrequencyMode

	NumFields = int(FrequencyMode)
)

type fieldInfo struct {
	name string
	unit string
	flag bool
}

var fieldInfos = [NumFields + 1]fieldInfo{
	OperationMode:       {"operation_mode", "", false},
	WaterInletTemp:      {"water_inlet_temp", "°C", false},
	WaterOutletTemp:     {"water_outlet_temp", "°C", false},
	AmbientTemp:         {"ambient_temp", "°C", false},
	BoilerTemp:          {"boiler_temp", "°C", false},
	SuctionGasTemp:      {"suction_gas_temp", "°C", false},
	EvaporatorCoilTemp:  {"evaporator_coil_temp", "°C", false},
	InternalCoilTemp:    {"internal_coil_temp", "°C", false},
	DischargeGasTemp:    {"discharge_gas_temp", "°C", false},
	LowPressureConvTemp: {"low_pressure_conv_temp", "°C", false},
	HotWaterSetpoint:    {"hot_water_setpoint", "°C", false},
	HeatingSetpoint:     {"heating_setpoint", "°C", false},
	Fan1Speed:           {"fan1_speed", "rpm", false},
	Fan2Speed:           {"fan2_speed", "rpm", false},
	COP:                 {"cop", "", false},
	WaterPumpSpeed:      {"water_pump_speed", "%", false},
	ThreeWayValve:       {"three_way_valve", "", true},
	BoilerHeater:        {"boiler_heater", "", true},
	DCBusVoltage:        {"dc_bus_voltage", "V", false},
	CompressorFrequency: {"compressor_frequency", "Hz", false},
	CompressorCurrent:   {"compressor_current", "A", false},
	CompressorPower:     {"compressor_power", "W", false},
	LowPressure:         {"low_pressure", "bar", false},
	Defrosting:          {"defrosting", "", true},
	AntiFreezing:        {"anti_freezing", "", true},
	MainsVoltage:        {"mains_voltage", "V", false},
	ConsumedCurrent:     {"consumed_current", "A", false},
	ConsumedPower:       {"consumed_power", "W", false},
	Waterflow:           {"waterflow", "m3/h", false},
	PumpAtTarget:        {"pump_at_target", "", false},
	PumpCycle:           {"pump_cycle", "min", false},
	WaterPump:           {"water_pump", "", true},
	ChassisHeating:      {"chassis_heating", "", true},
	CrankshaftHeating:   {"crankshaft_heating", "", true},
	ErrorState:          {"error_level", "", false},
	FrequencyMode:       {"frequency_mode", "", false},
}

func (f Field) IsValid() bool {
	return f >= OperationMode && f <= FrequencyMode
}

func (f Field) String() string {
	if !f.IsValid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldInfos[f].name
}

func (f Field) Unit() string {
	if !f.IsValid() {
		return ""
	}
	return fieldInfos[f].unit
}

// IsFlag reports whether the field only takes 0 and 1.
func (f Field) IsFlag() bool {
	return f.IsValid() && fieldInfos[f].flag
}

// Fields lists every field in device order.
func Fields() []Field {
	fs := make([]Field, 0, NumFields)
	for f := OperationMode; f <= FrequencyMode; f++ {
		fs = append(fs, f)
	}
	return fs
}
