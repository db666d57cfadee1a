// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import (
	"context"
	"time"
)

// Config carries the resource limits and timing parameters an engine is
// built with (§6 configuration table). Zero-value fields fall back to
// their Default* constant.
type Config struct {
	FifoSize         int
	MaxBufferSize    int
	MaxReceiveBuffer int
	ResponseTimeout  time.Duration
	MaxResend        int
}

func (c Config) withDefaults() Config {
	if c.FifoSize == 0 {
		c.FifoSize = DefaultFIFOSize
	}
	if c.MaxBufferSize == 0 {
		c.MaxBufferSize = DefaultMaxBufferSize
	}
	if c.MaxReceiveBuffer == 0 {
		c.MaxReceiveBuffer = DefaultMaxReceiveBuffer
	}
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = DefaultResponseTimeout * time.Millisecond
	}
	if c.MaxResend == 0 {
		c.MaxResend = DefaultMaxResend
	}
	return c
}

// VEBus is the upstream-facing handle onto the protocol engine (§6). It
// is safe for concurrent use by any number of external contexts; the
// engine and maintainer loops must each run in their own goroutine via
// Run and Maintain.
type VEBus struct {
	registry *registry
	status   *Status
	engine   *Engine
}

// New builds a VEBus bound to transport. Callers must start both
// v.Run(ctx) and v.Maintain(ctx, interval) in their own goroutines
// before submitting requests, or requests will queue without ever being
// sent.
func New(transport Transport, cfg Config) *VEBus {
	cfg = cfg.withDefaults()
	reg := newRegistry(cfg.FifoSize, cfg.MaxResend, cfg.ResponseTimeout)
	status := newStatus()
	engine := newEngine(transport, reg, status, cfg.MaxBufferSize, cfg.MaxReceiveBuffer)
	return &VEBus{registry: reg, status: status, engine: engine}
}

// Run drives the engine's receive/decode/transmit loop until ctx is
// cancelled (§4.6, §5 engine context).
func (v *VEBus) Run(ctx context.Context) error {
	return v.engine.Run(ctx)
}

// Maintain drives timeout expiry, response harvesting, and receive_cb
// delivery on a fixed interval until ctx is cancelled (§5 maintainer
// context).
func (v *VEBus) Maintain(ctx context.Context, interval time.Duration) error {
	return v.engine.Maintain(ctx, interval)
}

// Pause and Resume suspend and restore transmission (§4.6 step 1).
func (v *VEBus) Pause()  { v.engine.Pause() }
func (v *VEBus) Resume() { v.engine.Resume() }

// RegisterResponseCb installs the callback invoked once a request's
// response has been matched and decoded (§6).
func (v *VEBus) RegisterResponseCb(fn func(ResponseData)) {
	v.engine.responseCb = fn
}

// RegisterReceiveCb installs the callback invoked in maintainer context
// with each raw frame's bytes (§6). The slice is a private copy safe to
// retain.
func (v *VEBus) RegisterReceiveCb(fn func([]byte)) {
	v.engine.receiveCb = fn
}

// WriteRAM writes value to a RAM variable, converting through its
// scale/offset unless the variable's data type is an integer kind, in
// which case value is truncated to its raw 16-bit form directly (§6,
// §4.3).
func (v *VEBus) WriteRAM(variable RamVariable, value float64, eeprom bool) (uint8, RequestError) {
	info := v.status.RAMVarInfo(variable)
	if !info.Available {
		return 0, ConvertError
	}
	var raw uint16
	switch info.DataType {
	case DataUnsignedInt, DataSignedInt:
		raw = uint16(int32(value))
	default:
		raw = ramRawFromValue(info, value)
	}
	storage := StorageEEPROM
	if !eeprom {
		storage = StorageNoEEPROM
	}
	payload := cmdWriteViaID(0, VarTypeRAM, storage, byte(variable), raw)
	return v.submitWithID(WriteViaID, byte(variable), RespWriteViaIDOK, payload, true)
}

// WriteSetting writes value to setting, range-checking the raw-converted
// value against the setting's [Minimum, Maximum] before enqueueing
// anything (§7).
func (v *VEBus) WriteSetting(setting Setting, value float64, eeprom bool) (uint8, RequestError) {
	info := v.status.SettingInfo(setting)
	if !info.Available {
		return 0, ConvertError
	}
	raw := settingValueToRaw(info, value)
	if raw < info.Minimum {
		return 0, OutsideLowerRange
	}
	if raw > info.Maximum {
		return 0, OutsideUpperRange
	}
	payload := cmdWriteSetting(0, setting, raw, eeprom)
	return v.submitWithID(WriteViaID, byte(setting), RespWriteViaIDOK, payload, true)
}

// SetPower is a shortcut for a RAM write to the power-setpoint address
// (§6). Negative watts charge the battery, positive watts discharge it.
func (v *VEBus) SetPower(watts int16) (uint8, RequestError) {
	payload := cmdSetPower(0, watts)
	return v.submitWithID(WriteRAMVar, PowerSetpointAddress, RespWriteViaIDOK, payload, true)
}

func (v *VEBus) ReadRAM(variable RamVariable) uint8 {
	id, _ := v.submitWithID(ReadRAMVar, byte(variable), RespRAMReadOK, cmdReadRAMVar(0, variable), true)
	return id
}

func (v *VEBus) ReadSetting(setting Setting) uint8 {
	id, _ := v.submitWithID(ReadSetting, byte(setting), RespSettingReadOK, cmdReadSetting(0, setting), true)
	return id
}

func (v *VEBus) ReadRAMInfo(variable RamVariable) uint8 {
	id, _ := v.submitWithID(GetRAMVarInfo, byte(variable), RespRAMVarInfoOK, cmdReadRAMVarInfo(0, variable), true)
	return id
}

func (v *VEBus) ReadSettingInfo(setting Setting) uint8 {
	id, _ := v.submitWithID(GetSettingInfo, byte(setting), RespSettingInfoOK, cmdReadSettingInfo(0, setting), true)
	return id
}

// SetSwitch is fire-and-forget; it carries no request id (§6, §4.3).
func (v *VEBus) SetSwitch(state SwitchState) {
	v.registry.submitFireAndForget(cmdSetSwitch(state))
}

func (v *VEBus) ReadSoftwareVersion() uint8 {
	id, _ := v.submitWithID(SendSoftwareVersionPart0, 0, RespSoftwareVersion, cmdReadSoftwareVersion(0, SendSoftwareVersionPart0), true)
	return id
}

func (v *VEBus) CommandReadDeviceState() uint8 {
	id, _ := v.submitWithID(GetSetDeviceState, 0, RespDeviceState, cmdGetSetDeviceState(0, Inquire, 0), true)
	return id
}

// ReadSnapShot requests the device's raw diagnostic snapshot (0x38). The
// request is queued with no response expected: its entry is removed as
// soon as it is sent, no reply is matched to it, and response_cb is never
// invoked for it. The device's reply, if any, reaches callers only as a
// raw frame through receive_cb.
func (v *VEBus) ReadSnapShot() uint8 {
	id, _ := v.submitWithID(ReadSnapShot, 0, 0, cmdReadSnapshot(0), false)
	return id
}

// GetRamVarInfo and GetSettingInfo return the current table row without
// enqueueing a request; use ReadRAMInfo/ReadSettingInfo to refresh them
// from the device first.
func (v *VEBus) GetRamVarInfo(variable RamVariable) RAMVarInfo { return v.status.RAMVarInfo(variable) }
func (v *VEBus) GetSettingInfo(setting Setting) SettingInfo    { return v.status.SettingInfo(setting) }

func (v *VEBus) NewMasterMultiLedAvailable() bool     { return v.status.NewMasterMultiLedAvailable() }
func (v *VEBus) GetMasterMultiLed() MasterMultiLed    { return v.status.GetMasterMultiLed() }
func (v *VEBus) NewMultiPlusStatusAvailable() bool    { return v.status.NewMultiPlusStatusAvailable() }
func (v *VEBus) GetMultiPlusStatus() MultiPlusStatus  { return v.status.GetMultiPlusStatus() }
func (v *VEBus) NewDcInfoAvailable() bool             { return v.status.NewDcInfoAvailable() }
func (v *VEBus) GetDcInfo() DcInfo                    { return v.status.GetDcInfo() }
func (v *VEBus) NewAcInfoAvailable() (PhaseTag, bool) { return v.status.NewAcInfoAvailable() }
func (v *VEBus) GetAcInfo(tag PhaseTag) AcInfo        { return v.status.GetAcInfo(tag) }

// submitWithID allocates a request id, rebuilds payload with that id in
// place of the placeholder 0 it was built with, and enqueues it.
func (v *VEBus) submitWithID(command WinmonCommand, address uint8, expectedCode byte, payload []byte, responseExpected bool) (uint8, RequestError) {
	id, status := v.registry.submit(command, address, expectedCode, payload, responseExpected)
	if status != Success {
		return 0, status
	}
	if len(payload) > 1 {
		payload[1] = id
	}
	return id, Success
}

// ramRawFromValue converts a float engineering value to a variable's raw
// 16-bit representation, choosing signed or unsigned arithmetic by the
// sign of the table's scale (§4.3).
func ramRawFromValue(info RAMVarInfo, value float64) uint16 {
	if info.Scale < 0 {
		return uint16(ramValueToRawSigned(info, value))
	}
	return ramValueToRawUnsigned(info, value)
}
