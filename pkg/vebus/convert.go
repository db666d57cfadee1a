// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import "math"

// effectiveScale applies the sign-magnitude wrap described in §4.3: the
// magnitude used in the conversion is |scale| unless that is >= 0x4000, in
// which case it wraps as 0x8000 - |scale|, whatever the sign of scale.
func effectiveScale(scale int16) float64 {
	s := int32(scale)
	if s < 0 {
		s = -s
	}
	if s >= 0x4000 {
		s = 0x8000 - s
	}
	return float64(s)
}

// ramValueToRawUnsigned converts a float engineering value to its unsigned
// 16-bit raw representation for a RAM variable (§4.3).
func ramValueToRawUnsigned(info RAMVarInfo, value float64) uint16 {
	scale := effectiveScale(info.Scale)
	return uint16(int32(math.Round(value*scale)) - int32(info.Offset))
}

// ramValueToRawSigned is the signed counterpart of ramValueToRawUnsigned,
// used when the variable's table entry carries a negative scale.
func ramValueToRawSigned(info RAMVarInfo, value float64) int16 {
	scale := effectiveScale(info.Scale)
	return int16(int32(math.Round(value*scale)) - int32(info.Offset))
}

// ramRawToValueUnsigned converts an unsigned 16-bit raw RAM value back to
// its engineering float (§4.3).
func ramRawToValueUnsigned(info RAMVarInfo, raw uint16) float64 {
	scale := effectiveScale(info.Scale)
	return float64(raw)/scale + float64(info.Offset)
}

// ramRawToValueSigned is the signed counterpart of ramRawToValueUnsigned.
func ramRawToValueSigned(info RAMVarInfo, raw int16) float64 {
	scale := effectiveScale(info.Scale)
	return float64(raw)/scale + float64(info.Offset)
}

// settingValueToRaw converts a float engineering value to its raw 16-bit
// representation for a setting (§4.3). Settings use the sign of the scale
// itself to pick multiply-vs-divide, unlike RAM variables.
func settingValueToRaw(info SettingInfo, value float64) uint16 {
	var raw float64
	if info.Scale > 0 {
		raw = value / float64(info.Scale)
	} else {
		raw = value * float64(-info.Scale)
	}
	return uint16(int32(math.Round(raw)) - int32(info.Offset))
}

// settingRawToValue is the inverse of settingValueToRaw. The offset is
// added after scaling, not before — it mirrors the original firmware's
// arithmetic exactly rather than algebraically inverting
// settingValueToRaw, which matters only if a future GetSettingInfo
// response ever reports a nonzero Offset (the compiled-in table never
// does).
func settingRawToValue(info SettingInfo, raw uint16) float64 {
	var value float64
	if info.Scale > 0 {
		value = float64(raw) * float64(info.Scale)
	} else {
		value = float64(raw) / float64(-info.Scale)
	}
	return value + float64(info.Offset)
}
