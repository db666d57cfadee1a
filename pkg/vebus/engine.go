// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import (
	"context"
	"log"
	"sync"
	"time"
)

// Engine is the cooperative protocol loop that owns the receive buffer
// and the transport (§4.6, C6). It is driven by a single goroutine via
// Run; Maintain runs concurrently in its own goroutine and only ever
// touches the registry and status store through their own locks, never
// the transport.
type Engine struct {
	transport Transport
	registry  *registry
	status    *Status

	maxBufferSize    int
	maxReceiveBuffer int

	paused      bool
	justResumed bool

	recvMu    sync.Mutex
	recvQueue [][]byte

	responseCb func(ResponseData)
	receiveCb  func([]byte)
}

func newEngine(transport Transport, reg *registry, status *Status, maxBufferSize, maxReceiveBuffer int) *Engine {
	return &Engine{
		transport:        transport,
		registry:         reg,
		status:           status,
		maxBufferSize:    maxBufferSize,
		maxReceiveBuffer: maxReceiveBuffer,
	}
}

// Pause suspends transmission; after Resume, Run's loop drains the
// transport's TX buffer once on its next pass before resuming normal
// operation, mirroring the original firmware's post-reconnect behavior.
func (e *Engine) Pause() {
	e.paused = true
}

// Resume clears the pause and arms the one-shot TX drain described in
// Pause.
func (e *Engine) Resume() {
	e.paused = false
	e.justResumed = true
}

// Run executes the receive/decode/transmit loop until ctx is cancelled
// (§4.6). It is the only code that calls transport.Write, TxFlush,
// RxAvailable, ReadByte, or SetDirection — the engine exclusively owns
// the transport (§5).
func (e *Engine) Run(ctx context.Context) error {
	buf := make([]byte, 0, e.maxBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if e.justResumed {
			_ = e.transport.TxFlush()
			e.justResumed = false
		}
		if e.paused {
			time.Sleep(time.Millisecond)
			continue
		}

		if !e.transport.RxAvailable() {
			time.Sleep(time.Millisecond)
			continue
		}

		buf = buf[:0]
		for e.transport.RxAvailable() && len(buf) < e.maxBufferSize {
			b, err := e.transport.ReadByte()
			if err != nil {
				break
			}
			buf = append(buf, b)
			if b == EndOfFrame {
				break
			}
		}
		if len(buf) == 0 || buf[len(buf)-1] != EndOfFrame {
			continue
		}

		e.pushReceived(append([]byte{}, buf...))

		destuffed := destuffBytes(buf[:len(buf)-1])
		kind := classifyFrame(destuffed)
		e.dispatch(kind, destuffed)

		if kind == FrameSync {
			e.trySend(destuffed[3])
		}
	}
}

// dispatch routes a classified frame to the decoder/status or registry
// as appropriate (§4.4).
func (e *Engine) dispatch(kind FrameKind, buf []byte) {
	switch kind {
	case FrameResponse:
		e.registry.matchResponse(responseID(buf), buf)
	case FrameInfoFrame:
		e.status.ApplyInfoFrame(buf)
	case FrameLedStatus:
		e.status.ApplyMasterMultiLed(buf)
	case FrameBatteryCondition:
		e.status.ApplyBatteryCondition(buf)
	case FrameChargerCondition:
		e.status.ApplyChargerCondition(buf)
	case FrameSync, FrameAcPhaseInfo, FrameUnknown:
		// Sync carries no payload to decode; AC-phase-info (0xE4) is
		// reported upstream only, never decoded further; unknown frames
		// are discarded.
	}
}

// trySend transmits the first unsent registry entry, if any, on this
// sync frame (§4.6 step 7). Only one request goes out per sync — the
// bus turnaround window admits exactly one.
func (e *Engine) trySend(frameNr byte) {
	entry := e.registry.nextUnsent()
	if entry == nil {
		return
	}

	frame := buildRequestFrame(entry.payload, frameNr)
	e.transport.SetDirection(DirectionTX)
	if _, err := e.transport.Write(frame); err != nil {
		log.Printf("vebus: send failed: %v", err)
	}
	if err := e.transport.TxFlush(); err != nil {
		log.Printf("vebus: tx flush failed: %v", err)
	}
	e.transport.SetDirection(DirectionRX)

	e.registry.markSent(entry, time.Now())
}

// pushReceived hands a raw frame copy to receive_cb bookkeeping,
// dropping the oldest entry with a log once maxReceiveBuffer is
// exceeded (§7 resource-exhaustion handling).
func (e *Engine) pushReceived(frame []byte) {
	e.recvMu.Lock()
	defer e.recvMu.Unlock()
	if len(e.recvQueue) >= e.maxReceiveBuffer {
		log.Printf("vebus: receive-buffer-list saturated, dropping oldest raw frame")
		e.recvQueue = e.recvQueue[1:]
	}
	e.recvQueue = append(e.recvQueue, frame)
}

// Maintain periodically calls expire_timeouts and harvest, then drains
// the raw-frame queue into receive_cb (§5 maintainer context). It blocks
// until ctx is cancelled; callers run it in its own goroutine.
func (e *Engine) Maintain(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	now := time.Now()
	for _, dropped := range e.registry.expireTimeouts(now) {
		log.Printf("vebus: dropped request id=0x%02x command=0x%02x after %d resends",
			dropped.id, dropped.command, dropped.resendCount)
	}

	for _, result := range e.registry.harvest() {
		if result.dropped != nil {
			log.Printf("vebus: dropped request id=0x%02x command=0x%02x: response code mismatch, resend budget exhausted",
				result.dropped.id, result.dropped.command)
			continue
		}
		e.deliver(result.completed)
	}

	e.drainReceived()
}

func (e *Engine) drainReceived() {
	e.recvMu.Lock()
	queue := e.recvQueue
	e.recvQueue = nil
	e.recvMu.Unlock()

	if e.receiveCb == nil {
		return
	}
	for _, frame := range queue {
		e.receiveCb(frame)
	}
}

// deliver decodes a completed request's response payload per its
// command and, if there's anything worth reporting, invokes
// response_cb (§4.5, §6). Responses to no-value commands (writes,
// snapshot) are dropped without a log or a callback, matching the
// original's no-op handling for those response cases.
func (e *Engine) deliver(entry *pendingRequest) {
	resp := ResponseData{ID: entry.id, Command: entry.command, Address: entry.address}
	ok := e.decodeResponseValue(entry, &resp)
	if !ok {
		return
	}
	if e.responseCb != nil {
		e.responseCb(resp)
	}
}

func (e *Engine) decodeResponseValue(entry *pendingRequest, resp *ResponseData) bool {
	raw := entry.response
	switch entry.command {
	case SendSoftwareVersionPart0:
		if len(raw) != 19 {
			log.Printf("vebus: SendSoftwareVersionPart0 unexpected size %d", len(raw))
			return false
		}
		resp.Value = Value{Kind: ValueU32, U32: uint32(raw[7]) | uint32(raw[8])<<8 | uint32(raw[9])<<16 | uint32(raw[10])<<24}
		return true
	case GetSetDeviceState:
		if len(raw) != 11 {
			log.Printf("vebus: GetSetDeviceState unexpected size %d", len(raw))
			return false
		}
		resp.Value = Value{Kind: ValueU32, U32: DecodeDeviceStateResponse(raw)}
		return true
	case ReadRAMVar:
		if len(raw) != 11 {
			log.Printf("vebus: ReadRAMVar unexpected size %d", len(raw))
			return false
		}
		variable := RamVariable(entry.address)
		info := e.status.RAMVarInfo(variable)
		if !info.Available {
			return false
		}
		unsigned := uint16(raw[8])<<8 | uint16(raw[7])
		signed := int16(unsigned)
		switch info.DataType {
		case DataFloat:
			var v float64
			if info.Scale < 0 {
				v = ramRawToValueSigned(info, signed)
			} else {
				v = ramRawToValueUnsigned(info, unsigned)
			}
			resp.Value = Value{Kind: ValueF32, F32: float32(v)}
		case DataUnsignedInt:
			resp.Value = Value{Kind: ValueU32, U32: uint32(unsigned)}
		case DataSignedInt:
			resp.Value = Value{Kind: ValueI32, I32: int32(signed)}
		default:
			return false
		}
		return true
	case ReadSetting:
		if len(raw) != 11 {
			log.Printf("vebus: ReadSetting unexpected size %d", len(raw))
			return false
		}
		setting := Setting(entry.address)
		info := e.status.SettingInfo(setting)
		if !info.Available {
			return false
		}
		rawValue := uint16(raw[8])<<8 | uint16(raw[7])
		switch info.DataType {
		case DataFloat:
			resp.Value = Value{Kind: ValueF32, F32: float32(settingRawToValue(info, rawValue))}
		case DataUnsignedInt:
			resp.Value = Value{Kind: ValueI32, I32: int32(rawValue)}
		default:
			return false
		}
		return true
	case GetRAMVarInfo:
		if len(raw) != 13 {
			log.Printf("vebus: GetRAMVarInfo unexpected size %d", len(raw))
			return false
		}
		info := RAMVarInfo{
			Scale:     int16(uint16(raw[8])<<8 | uint16(raw[7])),
			Offset:    int16(uint16(raw[10])<<8 | uint16(raw[9])),
			Available: true,
		}
		e.status.setRAMVarInfo(RamVariable(entry.address), info)
		return false
	case GetSettingInfo:
		if len(raw) != 20 {
			log.Printf("vebus: GetSettingInfo unexpected size %d", len(raw))
			return false
		}
		info := SettingInfo{
			Scale:       int16(uint16(raw[8])<<8 | uint16(raw[7])),
			Offset:      int16(uint16(raw[10])<<8 | uint16(raw[9])),
			Default:     uint16(raw[12])<<8 | uint16(raw[11]),
			Minimum:     uint16(raw[14])<<8 | uint16(raw[13]),
			Maximum:     uint16(raw[16])<<8 | uint16(raw[15]),
			AccessLevel: raw[17],
			Available:   true,
		}
		e.status.setSettingInfo(Setting(entry.address), info)
		return false
	default:
		// WriteRAMVar, WriteSetting, WriteData, WriteViaID, ReadSnapShot and
		// SendSoftwareVersionPart1 carry no decodable value; the original
		// leaves these branches empty too.
		return false
	}
}

// DecodeDeviceStateResponse applies the device-state quirk preserved
// from the original firmware: a reported state of 9 has its meaning
// split across two adjacent bytes that must be summed, every other
// state is a single byte.
func DecodeDeviceStateResponse(raw []byte) uint32 {
	if raw[7] == 9 {
		return uint32(raw[7]) + uint32(raw[8])
	}
	return uint32(raw[7])
}
