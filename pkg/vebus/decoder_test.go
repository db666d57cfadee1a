// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import "testing"

func TestClassifyFrameSync(t *testing.T) {
	buf := []byte{MPID0, MPID1, SyncFrame, 0x05, SyncByte, 0x00, 0x00, 0x00, 0x00, 0x00}
	if got := classifyFrame(buf); got != FrameSync {
		t.Fatalf("classifyFrame(sync) = %v, want FrameSync", got)
	}
}

func TestClassifyFrameResponse(t *testing.T) {
	buf := []byte{MPID0, MPID1, DataFrame, 0x01, 0x00, 0x80, RespRAMReadOK, 0x00, 0x00}
	if got := classifyFrame(buf); got != FrameResponse {
		t.Fatalf("classifyFrame(response) = %v, want FrameResponse", got)
	}
}

func TestClassifyFrameUnknownOnShortBuffer(t *testing.T) {
	buf := []byte{MPID0, MPID1}
	if got := classifyFrame(buf); got != FrameUnknown {
		t.Fatalf("classifyFrame(short) = %v, want FrameUnknown", got)
	}
}

func TestClassifyFrameUnknownOnBadHeader(t *testing.T) {
	buf := []byte{0x00, 0x00, DataFrame, 0x01, 0x00, 0x80, RespRAMReadOK, 0x00, 0x00}
	if got := classifyFrame(buf); got != FrameUnknown {
		t.Fatalf("classifyFrame(bad header) = %v, want FrameUnknown", got)
	}
}

func TestResponseIDAndCode(t *testing.T) {
	buf := []byte{MPID0, MPID1, DataFrame, 0x01, 0x00, 0x95, RespRAMReadOK, 0x00, 0x00}
	if got := responseID(buf); got != 0x95 {
		t.Fatalf("responseID = %#x, want 0x95", got)
	}
	if got := responseCode(buf); got != RespRAMReadOK {
		t.Fatalf("responseCode = %#x, want RespRAMReadOK", got)
	}
}

func TestDecodeMasterMultiLed(t *testing.T) {
	buf := make([]byte, 19)
	buf[5] = 0x10
	buf[6] = 1 << 0 // MainsOn lit
	buf[7] = 1 << 4 // InverterOn blinking
	buf[8] = LowBattery
	buf[9] = 0x03 // AC input configuration
	buf[10], buf[11] = 0x64, 0x00 // 100 raw -> 10.0A minimum
	buf[12], buf[13] = 0xC8, 0x00 // 200 raw -> 20.0A maximum
	buf[14], buf[15] = 0x96, 0x00 // 150 raw -> 15.0A actual
	buf[16] = 0x07

	led := decodeMasterMultiLed(buf)
	if !led.LEDOn.MainsOn {
		t.Errorf("LEDOn.MainsOn should be set")
	}
	if !led.LEDBlink.InverterOn {
		t.Errorf("LEDBlink.InverterOn should be set")
	}
	if !led.LowBattery {
		t.Errorf("LowBattery should be set")
	}
	if led.MinimumInputCurrentLimitA != 10.0 {
		t.Errorf("MinimumInputCurrentLimitA = %v, want 10.0", led.MinimumInputCurrentLimitA)
	}
	if led.MaximumInputCurrentLimitA != 20.0 {
		t.Errorf("MaximumInputCurrentLimitA = %v, want 20.0", led.MaximumInputCurrentLimitA)
	}
	if led.ActualInputCurrentLimitA != 15.0 {
		t.Errorf("ActualInputCurrentLimitA = %v, want 15.0", led.ActualInputCurrentLimitA)
	}
	if led.SwitchRegister != 0x07 {
		t.Errorf("SwitchRegister = %#x, want 0x07", led.SwitchRegister)
	}
}

func TestDecodeChargerInverterConditionRejectsBadGuardBytes(t *testing.T) {
	buf := make([]byte, 19)
	buf[5] = 0x80
	buf[6] = 0x00 // fails (buf[6]&0xFE)==0x12
	if _, ok := decodeChargerInverterCondition(buf); ok {
		t.Fatalf("expected decode to reject a frame with bad guard bytes")
	}
}

func TestDecodeChargerInverterCondition(t *testing.T) {
	buf := make([]byte, 19)
	buf[5] = 0x80
	buf[6] = 0x13 // (buf[6]&0xFE)==0x12, bit0 set -> DcLevelAllowsInverting
	buf[7] = LowBattery
	buf[8] = 0x80
	buf[9], buf[10] = 0x64, 0x00 // 100 raw -> 10.0A
	buf[11] = 0x30               // has-temp flag set
	buf[12] = 0x00
	buf[15] = 200 // 20.0 degC

	d, ok := decodeChargerInverterCondition(buf)
	if !ok {
		t.Fatalf("expected decode to succeed")
	}
	if !d.LowBattery {
		t.Errorf("LowBattery should be set")
	}
	if !d.DcLevelAllowsInverting {
		t.Errorf("DcLevelAllowsInverting should be set")
	}
	if d.DcCurrentA != 10.0 {
		t.Errorf("DcCurrentA = %v, want 10.0", d.DcCurrentA)
	}
	if !d.HasTemp || d.Temp != 20.0 {
		t.Errorf("HasTemp/Temp = %v/%v, want true/20.0", d.HasTemp, d.Temp)
	}
}

func TestDecodeBatteryCondition(t *testing.T) {
	buf := make([]byte, 15)
	buf[5], buf[6], buf[7], buf[8], buf[9] = 0x81, 0x64, 0x14, 0xBC, 0x02
	buf[10], buf[11] = 0x32, 0x00 // 50 Ah

	ah, ok := decodeBatteryCondition(buf)
	if !ok || ah != 50 {
		t.Fatalf("decodeBatteryCondition = %v,%v want 50,true", ah, ok)
	}
}

func TestDecodeInfoFrameAC(t *testing.T) {
	ramInfo := defaultRAMVarInfos
	buf := make([]byte, 21)
	buf[9] = byte(PhaseL2)
	buf[8] = byte(PhaseInvertFull)
	buf[5], buf[6] = 1, 1 // multipliers for MainCurrent/InverterCurrent

	decoded, ok := decodeInfoFrame(buf, ramInfo)
	if !ok {
		t.Fatalf("expected decode to succeed")
	}
	if decoded.IsDC {
		t.Fatalf("expected an AC record")
	}
	if decoded.Ac.Phase != PhaseL2 {
		t.Fatalf("Phase = %v, want PhaseL2", decoded.Ac.Phase)
	}
	if decoded.Ac.State != PhaseInvertFull {
		t.Fatalf("State = %v, want PhaseInvertFull", decoded.Ac.State)
	}
}

func TestDecodeInfoFrameDC(t *testing.T) {
	ramInfo := defaultRAMVarInfos
	buf := make([]byte, 21)
	buf[9] = byte(PhaseDC)

	decoded, ok := decodeInfoFrame(buf, ramInfo)
	if !ok {
		t.Fatalf("expected decode to succeed")
	}
	if !decoded.IsDC {
		t.Fatalf("expected a DC record")
	}
}

func TestDecodeInfoFrameRejectsShortBuffer(t *testing.T) {
	if _, ok := decodeInfoFrame(make([]byte, 10), defaultRAMVarInfos); ok {
		t.Fatalf("expected decode to reject a short buffer")
	}
}
