// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

// LEDBits decodes the single-byte LED on/blink bitfields carried by a
// MasterMultiLED broadcast (§4.4).
type LEDBits struct {
	MainsOn     bool
	Absorption  bool
	Bulk        bool
	Float       bool
	InverterOn  bool
	Overload    bool
	LowBattery  bool
	Temperature bool
}

func decodeLEDBits(b byte) LEDBits {
	return LEDBits{
		MainsOn:     b&(1<<0) != 0,
		Absorption:  b&(1<<1) != 0,
		Bulk:        b&(1<<2) != 0,
		Float:       b&(1<<3) != 0,
		InverterOn:  b&(1<<4) != 0,
		Overload:    b&(1<<5) != 0,
		LowBattery:  b&(1<<6) != 0,
		Temperature: b&(1<<7) != 0,
	}
}

// MasterMultiLed is the decoded MasterMultiLED broadcast (§3, §4.4).
type MasterMultiLed struct {
	LEDOn                   LEDBits
	LEDBlink                LEDBits
	LowBattery              bool
	AcInputConfiguration    uint8
	MinimumInputCurrentLimitA float64
	MaximumInputCurrentLimitA float64
	ActualInputCurrentLimitA  float64
	SwitchRegister          uint8
}

// MultiPlusStatus is the decoded charger/inverter + battery-condition
// aggregate (§3, §4.4).
type MultiPlusStatus struct {
	Temp                   float64
	DcCurrentA             float64
	BatterieAh             int16
	DcLevelAllowsInverting bool
}

// DcInfo is the decoded DC info frame (§3, §4.4).
type DcInfo struct {
	Voltage          float64
	CurrentInverting float64
	CurrentCharging  float64
}

func (a DcInfo) equal(b DcInfo) bool {
	return a.Voltage == b.Voltage &&
		a.CurrentInverting == b.CurrentInverting &&
		a.CurrentCharging == b.CurrentCharging
}

// AcInfo is one decoded AC info frame entry for a single phase tag
// (§3, §4.4).
type AcInfo struct {
	Phase           PhaseTag
	State           PhaseState
	MainVoltage     float64
	MainCurrent     float64
	InverterVoltage float64
	InverterCurrent float64
}

func (a AcInfo) equal(b AcInfo) bool {
	return a.State == b.State &&
		a.MainVoltage == b.MainVoltage &&
		a.MainCurrent == b.MainCurrent &&
		a.InverterVoltage == b.InverterVoltage &&
		a.InverterCurrent == b.InverterCurrent
}

// RAMVarInfo is one row of the RAM variable-info table (§3).
type RAMVarInfo struct {
	Scale     int16
	Offset    int16
	Available bool
	DataType  ResponseDataType
}

// SettingInfo is one row of the setting-info table (§3).
type SettingInfo struct {
	Scale       int16
	Offset      int16
	Default     uint16
	Minimum     uint16
	Maximum     uint16
	AccessLevel uint8
	Available   bool
	DataType    ResponseDataType
}

// Value is the decoded payload of a response delivered to a caller's
// response callback (§6 register_response_cb). Exactly one field is set,
// selected by Kind.
type Value struct {
	Kind   ValueKind
	U32    uint32
	I32    int32
	F32    float32
}

// ValueKind tags which field of Value is populated.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueU32
	ValueI32
	ValueF32
)

// ResponseData is delivered to the registered response callback once a
// request's response has been matched and decoded (§6).
type ResponseData struct {
	ID      uint8
	Command WinmonCommand
	Address uint8
	Value   Value
}
