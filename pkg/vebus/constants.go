// SPDX-License-Identifier: GPL-2.0-or-later

// Package vebus implements the VE.Bus master protocol engine: framing,
// byte-stuffing, checksums, a WinMon command builder, a frame decoder for
// broadcast status and point-to-point responses, a fixed-capacity request
// registry with retry/timeout bookkeeping, and the sync-triggered run loop
// that ties them together.
//
// The wire protocol and its master command subset originate with Victron's
// MK2/MK3 interface to the MultiPlus inverter/charger family.
package vebus

// Wire framing bytes (master -> inverter and inverter -> master).
const (
	MK3ID0      = 0x98
	MK3ID1      = 0xF7
	MPID0       = 0x83
	MPID1       = 0x83
	SyncFrame   = 0xFD
	DataFrame   = 0xFE
	SyncByte    = 0x55
	EndOfFrame  = 0xFF
	LowBattery  = 0x02
	stuffByte   = 0xFA
	stuffMask   = 0x0F
	stuffOrByte = 0x70
	destuffOr   = 0x80
)

// WinmonCommand identifies a command in the WinMon master command subset.
type WinmonCommand uint8

const (
	SendSoftwareVersionPart0 WinmonCommand = 0x05
	SendSoftwareVersionPart1 WinmonCommand = 0x06
	GetSetDeviceState        WinmonCommand = 0x0E
	ReadRAMVar               WinmonCommand = 0x30
	ReadSetting              WinmonCommand = 0x31
	WriteRAMVar              WinmonCommand = 0x32
	WriteSetting             WinmonCommand = 0x33
	WriteData                WinmonCommand = 0x34
	GetSettingInfo           WinmonCommand = 0x35
	GetRAMVarInfo            WinmonCommand = 0x36
	WriteViaID               WinmonCommand = 0x37
	ReadSnapShot             WinmonCommand = 0x38
)

// Expected response codes, keyed by the request that produced them.
const (
	RespRAMReadOK        = 0x85
	RespRAMReadUnknown   = 0x90
	RespSettingReadOK    = 0x86
	RespSettingUnknown   = 0x91
	RespWriteViaIDOK     = 0x87
	RespRAMVarInfoOK     = 0x8E
	RespSettingInfoOK    = 0x89
	RespSoftwareVersion  = 0x82
	RespDeviceState      = 0x94
)

// CommandDeviceState is the inquiry/force argument for GetSetDeviceState.
type CommandDeviceState uint8

const (
	Inquire           CommandDeviceState = 0
	ForceToEqualise   CommandDeviceState = 1
	ForceToAbsorption CommandDeviceState = 2
	ForceToFloat      CommandDeviceState = 3
)

// RamVariable indexes the RAM variable table (§3, §6).
type RamVariable uint8

const (
	UMainsRMS            RamVariable = 0
	IMainsRMS            RamVariable = 1
	UInverterRMS         RamVariable = 2
	IInverterRMS         RamVariable = 3
	UBat                 RamVariable = 4
	IBat                 RamVariable = 5
	UBatRMS              RamVariable = 6
	InverterPeriodTime   RamVariable = 7
	MainsPeriodTime      RamVariable = 8
	SignedACLoadCurrent  RamVariable = 9
	VirtualSwitchPos     RamVariable = 10
	IgnoreACInputState   RamVariable = 11
	MultiFuncRelayState  RamVariable = 12
	ChargeState          RamVariable = 13
	InverterPower        RamVariable = 14
	InverterPower2       RamVariable = 15
	OutputPower          RamVariable = 16
	InverterPowerNF      RamVariable = 17
	InverterPower2NF     RamVariable = 18
	OutputPowerNF        RamVariable = 19
	ramVariableCount                 = 20
)

// PowerSetpointAddress is the raw RAM address used by SetPower (§4.3).
const PowerSetpointAddress = 0x83

// Setting indexes the persisted-setting table (§3, §6).
type Setting uint8

const (
	Flags0                        Setting = 0
	Flags1                        Setting = 1
	UBatAbsorption                Setting = 2
	UBatFloat                     Setting = 3
	IBatBulk                      Setting = 4
	UInvSetpoint                  Setting = 5
	IMainsLimit                   Setting = 6
	RepeatedAbsorptionTime        Setting = 7
	RepeatedAbsorptionInterval    Setting = 8
	MaximumAbsorptionDuration     Setting = 9
	ChargeCharacteristic          Setting = 10
	UBatLowLimitForInverter       Setting = 11
	UBatLowHysteresisForInverter  Setting = 12
	NumberOfSlavesConnected       Setting = 13
	SpecialThreePhaseSetting      Setting = 14
	settingCount                          = 15
)

// VariableType selects the address space for WriteViaID (§4.3).
type VariableType uint8

const (
	VarTypeRAM     VariableType = 0x00
	VarTypeSetting VariableType = 0x01
)

// StorageType selects whether a WriteViaID write persists to EEPROM.
type StorageType uint8

const (
	StorageEEPROM   StorageType = 0x00
	StorageNoEEPROM StorageType = 0x02
)

// SwitchState is the argument to SetSwitchState (§4.3, §6).
type SwitchState uint8

const (
	SwitchSleep           SwitchState = 0x04
	SwitchChargerOnly     SwitchState = 0x05
	SwitchInverterOnly    SwitchState = 0x06
	SwitchChargerInverter SwitchState = 0x07
)

// ResponseDataType tags how a variable-info table entry's raw value decodes.
type ResponseDataType uint8

const (
	DataNone           ResponseDataType = 0
	DataFloat          ResponseDataType = 1
	DataUnsignedInt    ResponseDataType = 2
	DataSignedInt      ResponseDataType = 3
)

// PhaseTag identifies one of the 7 AC phase slots carried by info frames.
type PhaseTag uint8

const (
	PhaseL4   PhaseTag = 0x05
	PhaseL3   PhaseTag = 0x06
	PhaseL2   PhaseTag = 0x07
	PhaseSL1  PhaseTag = 0x08
	PhaseSL2  PhaseTag = 0x09
	PhaseSL3  PhaseTag = 0x0A
	PhaseSL4  PhaseTag = 0x0B
	PhaseDC   PhaseTag = 0x0C
)

// phasesCount is the number of AC phase slots (DC excluded; DC has its own record).
const phasesCount = int(PhaseDC) - int(PhaseL4)

// phaseIndex maps a PhaseTag to its slot in Status.acInfo. For DC or an
// out-of-range tag it returns an index outside the array, and indexing
// with it panics; callers must check IsACPhase first.
func phaseIndex(p PhaseTag) int {
	return int(p) - int(PhaseL4)
}

// IsACPhase reports whether tag identifies one of the 7 AC phase slots
// (as opposed to PhaseDC, which has its own status record).
func IsACPhase(tag PhaseTag) bool {
	return tag >= PhaseL4 && tag < PhaseDC
}

// PhaseState is the per-phase device state reported in info frames.
type PhaseState uint8

const (
	PhaseDown        PhaseState = 0x00
	PhaseStartup     PhaseState = 0x01
	PhaseOff         PhaseState = 0x02
	PhaseSlave       PhaseState = 0x03
	PhaseInvertFull  PhaseState = 0x04
	PhaseInvertHalf  PhaseState = 0x05
	PhaseInvertAES   PhaseState = 0x06
	PhasePowerAssist PhaseState = 0x07
	PhaseBypass      PhaseState = 0x08
	PhaseCharge      PhaseState = 0x09
)

// Resource-limit defaults (§6 configuration table).
const (
	DefaultFIFOSize         = 32
	DefaultMaxBufferSize    = 256
	DefaultMaxReceiveBuffer = 16
	DefaultResponseTimeout  = 200 // milliseconds
	DefaultMaxResend        = 3
)
