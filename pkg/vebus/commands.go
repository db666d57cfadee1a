// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

// The builders in this file assemble the unframed WinMon command payload
// for each request kind (§4.3). Every payload but the switch-state one
// starts with a reserved 0x00 byte followed by the request id; buildRequestFrame
// adds the MK3 header, byte-stuffing and checksum on top.

func cmdReadRAMVar(id uint8, variable RamVariable) []byte {
	return []byte{0x00, id, byte(ReadRAMVar), byte(variable)}
}

func cmdReadSetting(id uint8, setting Setting) []byte {
	return []byte{0x00, id, byte(ReadSetting), byte(setting), 0x00}
}

func cmdReadRAMVarInfo(id uint8, variable RamVariable) []byte {
	return []byte{0x00, id, byte(GetRAMVarInfo), byte(variable), 0x00}
}

func cmdReadSettingInfo(id uint8, setting Setting) []byte {
	return []byte{0x00, id, byte(GetSettingInfo), byte(setting), 0x00}
}

func cmdReadSoftwareVersion(id uint8, part WinmonCommand) []byte {
	return []byte{0x00, id, byte(part)}
}

func cmdGetSetDeviceState(id uint8, command CommandDeviceState, state uint8) []byte {
	return []byte{0x00, id, byte(GetSetDeviceState), byte(command), state}
}

// cmdWriteViaID builds a WriteViaID payload for writing a 16-bit raw value
// into either the RAM-variable or the setting address space (§4.3).
func cmdWriteViaID(id uint8, varType VariableType, storage StorageType, address uint8, raw uint16) []byte {
	lowByte := uint8(raw & 0xFF)
	highByte := uint8(raw >> 8)
	return []byte{
		0x00, id, byte(WriteViaID),
		byte(varType) | byte(storage),
		address, lowByte, highByte,
	}
}

func cmdWriteRAMVar(id uint8, address uint8, raw uint16) []byte {
	return cmdWriteViaID(id, VarTypeRAM, StorageNoEEPROM, address, raw)
}

func cmdWriteSetting(id uint8, setting Setting, raw uint16, eeprom bool) []byte {
	storage := StorageEEPROM
	if !eeprom {
		storage = StorageNoEEPROM
	}
	return cmdWriteViaID(id, VarTypeSetting, storage, byte(setting), raw)
}

// cmdSetPower builds the WriteRAMVar payload for the power setpoint RAM
// address used by SetPower (§4.3, §6).
func cmdSetPower(id uint8, powerW int16) []byte {
	return cmdWriteRAMVar(id, PowerSetpointAddress, uint16(powerW))
}

func cmdReadSnapshot(id uint8) []byte {
	return []byte{0x00, id, byte(ReadSnapShot)}
}

// cmdSetSwitch builds the special short-form SetSwitchState payload,
// which carries no request id (§4.3, §6).
func cmdSetSwitch(state SwitchState) []byte {
	return []byte{0x3F, byte(state), 0x00, 0x00, 0x00}
}
