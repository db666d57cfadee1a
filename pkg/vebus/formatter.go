// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import "fmt"

// FormatMasterMultiLed renders the LED aggregate for CLI/log display.
func FormatMasterMultiLed(m MasterMultiLed) string {
	return fmt.Sprintf(
		"LED on=%s blink=%s low_battery=%t ac_input=%d limit=%.1f/%.1f/%.1fA switch=0x%02X",
		formatLEDBits(m.LEDOn), formatLEDBits(m.LEDBlink), m.LowBattery, m.AcInputConfiguration,
		m.MinimumInputCurrentLimitA, m.ActualInputCurrentLimitA, m.MaximumInputCurrentLimitA, m.SwitchRegister,
	)
}

func formatLEDBits(b LEDBits) string {
	names := []struct {
		lit bool
		s   string
	}{
		{b.MainsOn, "mains"}, {b.Absorption, "absorption"}, {b.Bulk, "bulk"}, {b.Float, "float"},
		{b.InverterOn, "inverter"}, {b.Overload, "overload"}, {b.LowBattery, "low_battery"}, {b.Temperature, "temperature"},
	}
	result := ""
	for _, n := range names {
		if n.lit {
			if result != "" {
				result += ","
			}
			result += n.s
		}
	}
	if result == "" {
		return "(none)"
	}
	return result
}

// FormatMultiPlusStatus renders the charger/inverter/battery status
// aggregate.
func FormatMultiPlusStatus(s MultiPlusStatus) string {
	return fmt.Sprintf("temp=%.1f°C dc_current=%.1fA battery=%dAh inverting_allowed=%t",
		s.Temp, s.DcCurrentA, s.BatterieAh, s.DcLevelAllowsInverting)
}

// FormatDcInfo renders the DC info record.
func FormatDcInfo(d DcInfo) string {
	return fmt.Sprintf("dc voltage=%.2fV inverting=%.2fA charging=%.2fA", d.Voltage, d.CurrentInverting, d.CurrentCharging)
}

// FormatAcInfo renders one AC phase's info record.
func FormatAcInfo(a AcInfo) string {
	return fmt.Sprintf("phase=0x%02X state=%s main=%.1fV/%.1fA inverter=%.1fV/%.1fA",
		a.Phase, formatPhaseState(a.State), a.MainVoltage, a.MainCurrent, a.InverterVoltage, a.InverterCurrent)
}

func formatPhaseState(s PhaseState) string {
	switch s {
	case PhaseDown:
		return "DOWN"
	case PhaseStartup:
		return "STARTUP"
	case PhaseOff:
		return "OFF"
	case PhaseSlave:
		return "SLAVE"
	case PhaseInvertFull:
		return "INVERT_FULL"
	case PhaseInvertHalf:
		return "INVERT_HALF"
	case PhaseInvertAES:
		return "INVERT_AES"
	case PhasePowerAssist:
		return "POWER_ASSIST"
	case PhaseBypass:
		return "BYPASS"
	case PhaseCharge:
		return "CHARGE"
	default:
		return "UNKNOWN"
	}
}

// FormatResponseData renders a decoded response for CLI/log display.
func FormatResponseData(r ResponseData) string {
	switch r.Value.Kind {
	case ValueU32:
		return fmt.Sprintf("id=0x%02X command=0x%02X address=%d value=%d", r.ID, r.Command, r.Address, r.Value.U32)
	case ValueI32:
		return fmt.Sprintf("id=0x%02X command=0x%02X address=%d value=%d", r.ID, r.Command, r.Address, r.Value.I32)
	case ValueF32:
		return fmt.Sprintf("id=0x%02X command=0x%02X address=%d value=%.3f", r.ID, r.Command, r.Address, r.Value.F32)
	default:
		return fmt.Sprintf("id=0x%02X command=0x%02X address=%d (no value)", r.ID, r.Command, r.Address)
	}
}
