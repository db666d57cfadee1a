// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

// FrameKind classifies a destuffed received frame (§4.4). The frame's
// checksum is not verified.
type FrameKind int

const (
	FrameUnknown FrameKind = iota
	FrameSync
	FrameResponse
	FrameLedStatus
	FrameBatteryCondition
	FrameChargerCondition
	FrameInfoFrame
	FrameAcPhaseInfo
)

// classifyFrame determines the kind of a received, destuffed frame by
// inspecting its header and length (§4.4). It performs no further
// decoding; callers route to the matching decode* function based on the
// returned kind.
func classifyFrame(buf []byte) FrameKind {
	if len(buf) < 5 || buf[0] != MPID0 || buf[1] != MPID1 {
		return FrameUnknown
	}
	if buf[2] == SyncFrame && len(buf) == 10 && buf[4] == SyncByte {
		return FrameSync
	}
	if buf[2] != DataFrame {
		return FrameUnknown
	}
	switch buf[4] {
	case 0x00:
		if len(buf) < 6 {
			return FrameUnknown
		}
		return FrameResponse
	case 0x20:
		if len(buf) < 20 {
			return FrameUnknown
		}
		return FrameInfoFrame
	case 0x41:
		if len(buf) == 19 && buf[5] == 0x10 {
			return FrameLedStatus
		}
		return FrameUnknown
	case 0x70:
		if len(buf) == 15 && buf[5] == 0x81 && buf[6] == 0x64 && buf[7] == 0x14 &&
			buf[8] == 0xBC && buf[9] == 0x02 && buf[12] == 0x00 {
			return FrameBatteryCondition
		}
		return FrameUnknown
	case 0x80:
		return FrameChargerCondition
	case 0xE4:
		if len(buf) == 21 {
			return FrameAcPhaseInfo
		}
		return FrameUnknown
	default:
		return FrameUnknown
	}
}

// responseID extracts the request id a FrameResponse frame answers.
func responseID(buf []byte) uint8 {
	return buf[5]
}

// responseCode extracts the response code a FrameResponse frame carries,
// used to match against a pending request's expected code (§4.5).
func responseCode(buf []byte) byte {
	return buf[6]
}

// decodedChargerCondition holds the fields decoded out of a charger/
// inverter condition frame (command byte 0x80), before merge into the
// status store (§4.4).
type decodedChargerCondition struct {
	LowBattery             bool
	DcLevelAllowsInverting bool
	DcCurrentA             float64
	HasTemp                bool
	Temp                   float64
}

// decodeChargerInverterCondition decodes a 0x80 frame. ok is false when
// the frame doesn't match the fixed guard bytes the original firmware
// checks before trusting the payload.
func decodeChargerInverterCondition(buf []byte) (decodedChargerCondition, bool) {
	if len(buf) != 19 || buf[5] != 0x80 || (buf[6]&0xFE) != 0x12 || buf[8] != 0x80 ||
		(buf[11]&0x10) != 0x10 || buf[12] != 0x00 {
		return decodedChargerCondition{}, false
	}
	d := decodedChargerCondition{
		LowBattery:             buf[7] == LowBattery,
		DcLevelAllowsInverting: buf[6]&0x01 != 0,
		DcCurrentA:             float64(uint16(buf[10])<<8|uint16(buf[9])) / 10.0,
	}
	if buf[11]&0xF0 == 0x30 {
		d.HasTemp = true
		d.Temp = float64(buf[15]) / 10.0
	}
	return d, true
}

// decodeBatteryCondition decodes a 0x70 frame's battery capacity field.
func decodeBatteryCondition(buf []byte) (int16, bool) {
	if len(buf) != 15 || buf[5] != 0x81 || buf[6] != 0x64 || buf[7] != 0x14 ||
		buf[8] != 0xBC || buf[9] != 0x02 || buf[12] != 0x00 {
		return 0, false
	}
	return int16(uint16(buf[11])<<8 | uint16(buf[10])), true
}

// decodeMasterMultiLed decodes a 0x41 MasterMultiLED broadcast in full.
func decodeMasterMultiLed(buf []byte) MasterMultiLed {
	return MasterMultiLed{
		LEDOn:                     decodeLEDBits(buf[6]),
		LEDBlink:                  decodeLEDBits(buf[7]),
		LowBattery:                buf[8] == LowBattery,
		AcInputConfiguration:      buf[9],
		MinimumInputCurrentLimitA: float64(uint16(buf[11])<<8|uint16(buf[10])) / 10.0,
		MaximumInputCurrentLimitA: float64(uint16(buf[13])<<8|uint16(buf[12])) / 10.0,
		ActualInputCurrentLimitA:  float64(uint16(buf[15])<<8|uint16(buf[14])) / 10.0,
		SwitchRegister:            buf[16],
	}
}

// decodedInfoFrame carries the result of decodeInfoFrame: exactly one of
// the two aggregates below is meaningful, selected by IsDC.
type decodedInfoFrame struct {
	IsDC bool
	Ac   AcInfo
	Dc   DcInfo
}

// decodeInfoFrame decodes a 0x20 info frame, dispatching on the phase tag
// in buf[9] to either an AC-phase record or the DC record (§4.4). ramInfo
// supplies the current UBat/IBat/IInverterRMS scale+offset used to
// convert the raw 16/24-bit fields; it is the caller's current
// RAMVarInfo snapshot, not mutated here.
func decodeInfoFrame(buf []byte, ramInfo [ramVariableCount]RAMVarInfo) (decodedInfoFrame, bool) {
	if len(buf) < 20 {
		return decodedInfoFrame{}, false
	}
	tag := PhaseTag(buf[9])
	if IsACPhase(tag) {
		mainVoltageRaw := int16(uint16(buf[11])<<8 | uint16(buf[10]))
		mainCurrentRaw := int16(uint16(buf[13])<<8 | uint16(buf[12]))
		invVoltageRaw := int16(uint16(buf[15])<<8 | uint16(buf[14]))
		invCurrentRaw := int16(uint16(buf[17])<<8 | uint16(buf[16]))
		info := AcInfo{
			Phase:           tag,
			State:           PhaseState(buf[8]),
			MainVoltage:     ramRawToValueSigned(ramInfo[UBat], mainVoltageRaw),
			MainCurrent:     ramRawToValueSigned(ramInfo[IInverterRMS], mainCurrentRaw) * float64(buf[5]),
			InverterVoltage: ramRawToValueSigned(ramInfo[UBat], invVoltageRaw),
			InverterCurrent: ramRawToValueSigned(ramInfo[IInverterRMS], invCurrentRaw) * float64(buf[6]),
		}
		return decodedInfoFrame{Ac: info}, true
	}
	if tag == PhaseDC {
		voltageRaw := int16(uint16(buf[11])<<8 | uint16(buf[10]))
		invertingRaw24 := int32(buf[12]) | int32(buf[13])<<8 | int32(buf[14])<<16
		chargingRaw24 := int32(buf[15]) | int32(buf[16])<<8 | int32(buf[17])<<16
		info := DcInfo{
			Voltage:          ramRawToValueSigned(ramInfo[UBat], voltageRaw),
			CurrentInverting: ramRawToValueSigned(ramInfo[IBat], int16(invertingRaw24)),
			CurrentCharging:  ramRawToValueSigned(ramInfo[IBat], int16(chargingRaw24)),
		}
		return decodedInfoFrame{IsDC: true, Dc: info}, true
	}
	return decodedInfoFrame{}, false
}
