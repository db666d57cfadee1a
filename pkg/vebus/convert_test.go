// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import "testing"

func TestEffectiveScale(t *testing.T) {
	cases := []struct {
		scale int16
		want  float64
	}{
		// |scale| >= 0x4000 wraps to 0x8000 - |scale|, regardless of sign.
		{32668, float64(0x8000 - 32668)},
		{-32668, float64(0x8000 - 32668)},
		{-1, 1},
		{-32758, float64(0x8000 - 32758)},
	}
	for _, tc := range cases {
		if got := effectiveScale(tc.scale); got != tc.want {
			t.Errorf("effectiveScale(%d) = %v, want %v", tc.scale, got, tc.want)
		}
	}
}

func TestRamValueRawRoundTripUnsigned(t *testing.T) {
	info := defaultRAMVarInfos[UMainsRMS]
	raw := ramValueToRawUnsigned(info, 230.0)
	back := ramRawToValueUnsigned(info, raw)
	if diff := back - 230.0; diff > 0.01 || diff < -0.01 {
		t.Fatalf("round trip 230.0 -> %d -> %v, want ~230.0", raw, back)
	}
}

func TestRamValueRawRoundTripSigned(t *testing.T) {
	info := defaultRAMVarInfos[IBat]
	raw := ramValueToRawSigned(info, -12.5)
	back := ramRawToValueSigned(info, raw)
	if diff := back - (-12.5); diff > 0.01 || diff < -0.01 {
		t.Fatalf("round trip -12.5 -> %d -> %v, want ~-12.5", raw, back)
	}
}

func TestSettingValueToRawPositiveScale(t *testing.T) {
	info := defaultSettingInfos[UInvSetpoint] // Scale: 1 (positive -> divide)
	raw := settingValueToRaw(info, 230)
	if raw != 230 {
		t.Fatalf("settingValueToRaw(230) = %d, want 230", raw)
	}
}

func TestSettingValueToRawNegativeScale(t *testing.T) {
	info := defaultSettingInfos[UBatAbsorption] // Scale: -100 (negative -> multiply)
	raw := settingValueToRaw(info, 58.50)
	if raw != 5850 {
		t.Fatalf("settingValueToRaw(58.50) = %d, want 5850", raw)
	}
}

func TestSettingRawToValueRoundTrip(t *testing.T) {
	info := defaultSettingInfos[UBatAbsorption]
	raw := settingValueToRaw(info, 58.50)
	back := settingRawToValue(info, raw)
	if diff := back - 58.50; diff > 0.001 || diff < -0.001 {
		t.Fatalf("round trip 58.50 -> %d -> %v, want ~58.50", raw, back)
	}
}

func TestSettingRawToValueOffsetAddedAfterScale(t *testing.T) {
	// Mirrors the original firmware arithmetic exactly: offset is added
	// after scaling rather than folded into value before the inverse
	// multiply/divide, which only shows up when Offset != 0.
	info := SettingInfo{Scale: 10, Offset: 5}
	got := settingRawToValue(info, 2)
	want := float64(2)*10 + 5
	if got != want {
		t.Fatalf("settingRawToValue = %v, want %v", got, want)
	}
}
