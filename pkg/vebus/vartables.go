// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

// defaultRAMVarInfos and defaultSettingInfos mirror the compiled-in tables
// for a MultiPlus-II 48/5000, the same default the original firmware
// ships (ve_bus_definition.h). Individual rows are overwritten at runtime
// by GetRAMVarInfo/GetSettingInfo responses (§3).
var defaultRAMVarInfos = [ramVariableCount]RAMVarInfo{
	UMainsRMS:           {Scale: 32668, Offset: 0, Available: true, DataType: DataFloat},
	IMainsRMS:           {Scale: -32668, Offset: 0, Available: true, DataType: DataFloat},
	UInverterRMS:        {Scale: 32668, Offset: 0, Available: true, DataType: DataFloat},
	IInverterRMS:        {Scale: 32668, Offset: 0, Available: true, DataType: DataFloat},
	UBat:                {Scale: 32668, Offset: 0, Available: true, DataType: DataFloat},
	IBat:                {Scale: -32758, Offset: 0, Available: true, DataType: DataFloat},
	UBatRMS:             {Scale: 32668, Offset: 0, Available: true, DataType: DataFloat},
	InverterPeriodTime:  {Scale: 30815, Offset: 256, Available: true, DataType: DataFloat},
	MainsPeriodTime:     {Scale: 31791, Offset: 0, Available: true, DataType: DataFloat},
	SignedACLoadCurrent: {Scale: -32668, Offset: 0, Available: true, DataType: DataFloat},
	VirtualSwitchPos:    {Scale: 0, Offset: 0, Available: false, DataType: DataNone},
	IgnoreACInputState:  {Scale: 5, Offset: -32768, Available: true, DataType: DataFloat},
	MultiFuncRelayState: {Scale: 6, Offset: -32768, Available: true, DataType: DataFloat},
	ChargeState:         {Scale: 32568, Offset: 0, Available: true, DataType: DataFloat},
	InverterPower:       {Scale: -1, Offset: 0, Available: true, DataType: DataFloat},
	InverterPower2:      {Scale: -1, Offset: 0, Available: true, DataType: DataFloat},
	OutputPower:         {Scale: -1, Offset: 0, Available: true, DataType: DataFloat},
	InverterPowerNF:     {Scale: -1, Offset: 0, Available: true, DataType: DataFloat},
	InverterPower2NF:    {Scale: -1, Offset: 0, Available: true, DataType: DataFloat},
	OutputPowerNF:       {Scale: -1, Offset: 0, Available: true, DataType: DataFloat},
}

var defaultSettingInfos = [settingCount]SettingInfo{
	Flags0:                       {Scale: 1, Offset: 0, Default: 35248, Minimum: 0, Maximum: 28668, Available: true, DataType: DataUnsignedInt},
	Flags1:                       {Scale: 2, Offset: 0, Default: 19966, Minimum: 0, Maximum: 65535, Available: true, DataType: DataUnsignedInt},
	UBatAbsorption:               {Scale: -100, Offset: 0, Default: 5850, Minimum: 4800, Maximum: 5900, Available: true, DataType: DataFloat},
	UBatFloat:                    {Scale: -100, Offset: 0, Default: 5800, Minimum: 4800, Maximum: 5900, Available: true, DataType: DataFloat},
	IBatBulk:                     {Scale: 1, Offset: 0, Default: 80, Minimum: 0, Maximum: 80, Available: true, DataType: DataFloat},
	UInvSetpoint:                 {Scale: 1, Offset: 0, Default: 230, Minimum: 210, Maximum: 245, Available: true, DataType: DataFloat},
	IMainsLimit:                  {Scale: -10, Offset: 0, Default: 320, Minimum: 10, Maximum: 500, Available: true, DataType: DataFloat},
	RepeatedAbsorptionTime:       {Scale: 15, Offset: 0, Default: 4, Minimum: 1, Maximum: 96, Available: true, DataType: DataFloat},
	RepeatedAbsorptionInterval:   {Scale: 360, Offset: 0, Default: 28, Minimum: 1, Maximum: 180, Available: true, DataType: DataFloat},
	MaximumAbsorptionDuration:    {Scale: 60, Offset: 0, Default: 8, Minimum: 1, Maximum: 24, Available: true, DataType: DataFloat},
	ChargeCharacteristic:         {Scale: 1, Offset: 0, Default: 3, Minimum: 1, Maximum: 3, Available: true, DataType: DataFloat},
	UBatLowLimitForInverter:      {Scale: -100, Offset: 0, Default: 4320, Minimum: 4200, Maximum: 4600, AccessLevel: 128, Available: true, DataType: DataFloat},
	UBatLowHysteresisForInverter: {Scale: -100, Offset: 0, Default: 160, Minimum: 25, Maximum: 600, Available: true, DataType: DataFloat},
	NumberOfSlavesConnected:      {Available: false, DataType: DataNone},
	SpecialThreePhaseSetting:     {Available: false, DataType: DataNone},
}
