// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import "sync"

// Status is the concurrently-readable store for everything decoded off
// broadcast frames plus the two variable-info tables (§3, §4.7). Every
// aggregate carries its own "new data" flag, cleared by the matching
// Get method, so a poller only does work when something actually
// changed.
type Status struct {
	mu sync.Mutex

	masterMultiLed    MasterMultiLed
	masterMultiLedNew bool

	multiPlusStatus    MultiPlusStatus
	multiPlusStatusNew bool

	dcInfo    DcInfo
	dcInfoNew bool

	acInfo    [phasesCount]AcInfo
	acInfoNew [phasesCount]bool

	ramVarInfo  [ramVariableCount]RAMVarInfo
	settingInfo [settingCount]SettingInfo
}

func newStatus() *Status {
	s := &Status{
		ramVarInfo:  defaultRAMVarInfos,
		settingInfo: defaultSettingInfos,
	}
	for i := range s.acInfo {
		s.acInfo[i].Phase = PhaseTag(i + int(PhaseL4))
	}
	return s
}

// ApplyChargerCondition decodes a 0x80 frame and merges it into the
// master LED and multi-plus status aggregates (§4.4). It reports whether
// the frame matched the expected layout at all, not whether anything
// changed.
func (s *Status) ApplyChargerCondition(buf []byte) bool {
	d, ok := decodeChargerInverterCondition(buf)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.masterMultiLed.LowBattery != d.LowBattery {
		s.masterMultiLed.LowBattery = d.LowBattery
		s.masterMultiLedNew = true
	}
	changed := s.multiPlusStatus.DcLevelAllowsInverting != d.DcLevelAllowsInverting ||
		s.multiPlusStatus.DcCurrentA != d.DcCurrentA
	if d.HasTemp {
		changed = changed || s.multiPlusStatus.Temp != d.Temp
	}
	if changed {
		s.multiPlusStatus.DcLevelAllowsInverting = d.DcLevelAllowsInverting
		s.multiPlusStatus.DcCurrentA = d.DcCurrentA
		if d.HasTemp {
			s.multiPlusStatus.Temp = d.Temp
		}
		s.multiPlusStatusNew = true
	}
	return true
}

// ApplyBatteryCondition decodes a 0x70 frame and merges its battery
// capacity reading into the multi-plus status aggregate.
func (s *Status) ApplyBatteryCondition(buf []byte) bool {
	ah, ok := decodeBatteryCondition(buf)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.multiPlusStatus.BatterieAh != ah {
		s.multiPlusStatus.BatterieAh = ah
		s.multiPlusStatusNew = true
	}
	return true
}

// ApplyMasterMultiLed decodes a 0x41 frame and replaces the master LED
// aggregate if anything in it changed.
func (s *Status) ApplyMasterMultiLed(buf []byte) {
	led := decodeMasterMultiLed(buf)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.masterMultiLed != led {
		s.masterMultiLed = led
		s.masterMultiLedNew = true
	}
}

// ApplyInfoFrame decodes a 0x20 frame against the current RAM variable
// table and merges the result into either the DC record or the matching
// AC phase slot (§4.4).
func (s *Status) ApplyInfoFrame(buf []byte) bool {
	s.mu.Lock()
	ramInfo := s.ramVarInfo
	s.mu.Unlock()

	decoded, ok := decodeInfoFrame(buf, ramInfo)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if decoded.IsDC {
		if !s.dcInfo.equal(decoded.Dc) {
			s.dcInfo = decoded.Dc
			s.dcInfoNew = true
		}
		return true
	}
	idx := phaseIndex(decoded.Ac.Phase)
	if !s.acInfo[idx].equal(decoded.Ac) {
		s.acInfo[idx] = decoded.Ac
		s.acInfoNew[idx] = true
	}
	return true
}

// NewMasterMultiLedAvailable reports whether GetMasterMultiLed would
// return data that hasn't been read yet.
func (s *Status) NewMasterMultiLedAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masterMultiLedNew
}

// GetMasterMultiLed returns the current master LED aggregate and clears
// its new-data flag.
func (s *Status) GetMasterMultiLed() MasterMultiLed {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masterMultiLedNew = false
	return s.masterMultiLed
}

func (s *Status) NewMultiPlusStatusAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multiPlusStatusNew
}

func (s *Status) GetMultiPlusStatus() MultiPlusStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.multiPlusStatusNew = false
	return s.multiPlusStatus
}

func (s *Status) NewDcInfoAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dcInfoNew
}

func (s *Status) GetDcInfo() DcInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dcInfoNew = false
	return s.dcInfo
}

// NewAcInfoAvailable reports the first AC phase slot carrying unread
// data, mirroring the single-pending-phase poll the original firmware
// exposes. ok is false when nothing is pending.
func (s *Status) NewAcInfoAvailable() (tag PhaseTag, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, pending := range s.acInfoNew {
		if pending {
			return s.acInfo[i].Phase, true
		}
	}
	return 0, false
}

// GetAcInfo returns the current record for tag and clears its new-data
// flag.
func (s *Status) GetAcInfo(tag PhaseTag) AcInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := phaseIndex(tag)
	s.acInfoNew[idx] = false
	return s.acInfo[idx]
}

// Peek copies out every status aggregate under a single lock acquisition
// without clearing any new-data flag, for diagnostic export (§4
// diagnostic snapshot supplement). It is not part of the upstream
// polling API.
func (s *Status) Peek() (MasterMultiLed, MultiPlusStatus, DcInfo, [phasesCount]AcInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masterMultiLed, s.multiPlusStatus, s.dcInfo, s.acInfo
}

// RAMVarInfo returns the current table row for variable.
func (s *Status) RAMVarInfo(variable RamVariable) RAMVarInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ramVarInfo[variable]
}

// SettingInfo returns the current table row for setting.
func (s *Status) SettingInfo(setting Setting) SettingInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingInfo[setting]
}

// setRAMVarInfo overwrites a table row once a GetRAMVarInfo response
// arrives (§4.5).
func (s *Status) setRAMVarInfo(variable RamVariable, info RAMVarInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ramVarInfo[variable] = info
}

// setSettingInfo overwrites a table row once a GetSettingInfo response
// arrives.
func (s *Status) setSettingInfo(setting Setting, info SettingInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingInfo[setting] = info
}
