// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import (
	"testing"
	"time"
)

// fakeTransport is an in-memory Transport for engine tests: writes are
// captured whole, reads are served byte-by-byte from a preloaded queue.
type fakeTransport struct {
	rx       []byte
	writes   [][]byte
	dirCalls []Direction
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte{}, p...))
	return len(p), nil
}
func (f *fakeTransport) TxFlush() error       { return nil }
func (f *fakeTransport) RxAvailable() bool    { return len(f.rx) > 0 }
func (f *fakeTransport) ReadByte() (byte, error) {
	b := f.rx[0]
	f.rx = f.rx[1:]
	return b, nil
}
func (f *fakeTransport) SetDirection(d Direction) { f.dirCalls = append(f.dirCalls, d) }
func (f *fakeTransport) Close() error             { return nil }

func TestEngineTrySendOnePerSync(t *testing.T) {
	transport := &fakeTransport{}
	reg := newRegistry(4, 3, 50*time.Millisecond)
	status := newStatus()
	e := newEngine(transport, reg, status, DefaultMaxBufferSize, DefaultMaxReceiveBuffer)

	reg.submit(ReadRAMVar, byte(UBat), RespRAMReadOK, []byte{0x00, 0x00, byte(ReadRAMVar), byte(UBat)}, true)
	reg.submit(ReadRAMVar, byte(IBat), RespRAMReadOK, []byte{0x00, 0x00, byte(ReadRAMVar), byte(IBat)}, true)

	e.trySend(0x05)
	if len(transport.writes) != 1 {
		t.Fatalf("expected exactly one write per sync frame, got %d", len(transport.writes))
	}
	if reg.len() != 2 {
		t.Fatalf("the second entry must remain queued until the next sync, got %d pending", reg.len())
	}

	e.trySend(0x06)
	if len(transport.writes) != 2 {
		t.Fatalf("expected a second write on the next sync frame, got %d", len(transport.writes))
	}
}

func TestEngineTrySendDirectionToggle(t *testing.T) {
	transport := &fakeTransport{}
	reg := newRegistry(4, 3, 50*time.Millisecond)
	status := newStatus()
	e := newEngine(transport, reg, status, DefaultMaxBufferSize, DefaultMaxReceiveBuffer)
	reg.submit(ReadRAMVar, byte(UBat), RespRAMReadOK, []byte{0x00, 0x00, byte(ReadRAMVar), byte(UBat)}, true)

	e.trySend(0x05)

	if len(transport.dirCalls) != 2 || transport.dirCalls[0] != DirectionTX || transport.dirCalls[1] != DirectionRX {
		t.Fatalf("expected TX then RX direction toggling, got %v", transport.dirCalls)
	}
}

func TestEngineTrySendNoEntriesIsNoop(t *testing.T) {
	transport := &fakeTransport{}
	reg := newRegistry(4, 3, 50*time.Millisecond)
	status := newStatus()
	e := newEngine(transport, reg, status, DefaultMaxBufferSize, DefaultMaxReceiveBuffer)

	e.trySend(0x05)
	if len(transport.writes) != 0 {
		t.Fatalf("expected no write when nothing is pending, got %d", len(transport.writes))
	}
}

func TestEngineDispatchMatchesResponseToRegistry(t *testing.T) {
	transport := &fakeTransport{}
	reg := newRegistry(4, 3, 50*time.Millisecond)
	status := newStatus()
	e := newEngine(transport, reg, status, DefaultMaxBufferSize, DefaultMaxReceiveBuffer)

	id, _ := reg.submit(ReadRAMVar, byte(UBat), RespRAMReadOK, []byte{0x00, 0x00, byte(ReadRAMVar), byte(UBat)}, true)
	entry := reg.nextUnsent()
	reg.markSent(entry, time.Now())

	resp := []byte{MPID0, MPID1, DataFrame, 0x01, 0x00, id, RespRAMReadOK, 0x00, 0x00}
	e.dispatch(FrameResponse, resp)

	results := reg.harvest()
	if len(results) != 1 || results[0].completed == nil || results[0].completed.id != id {
		t.Fatalf("dispatch should have routed the response into the registry for harvest, got %+v", results)
	}
}

func TestEngineDispatchMasterMultiLedUpdatesStatus(t *testing.T) {
	transport := &fakeTransport{}
	reg := newRegistry(4, 3, 50*time.Millisecond)
	status := newStatus()
	e := newEngine(transport, reg, status, DefaultMaxBufferSize, DefaultMaxReceiveBuffer)

	buf := make([]byte, 19)
	buf[5] = 0x10
	buf[6] = 1 // MainsOn
	e.dispatch(FrameLedStatus, buf)

	if !status.NewMasterMultiLedAvailable() {
		t.Fatalf("expected dispatch of a LED frame to mark new data available")
	}
	led := status.GetMasterMultiLed()
	if !led.LEDOn.MainsOn {
		t.Fatalf("expected MainsOn to be decoded, got %+v", led)
	}
}

func TestDecodeDeviceStateResponseQuirk(t *testing.T) {
	raw9 := make([]byte, 11)
	raw9[7] = 9
	raw9[8] = 2
	if got := DecodeDeviceStateResponse(raw9); got != 11 {
		t.Fatalf("state 9 quirk: DecodeDeviceStateResponse = %d, want 11 (9+2)", got)
	}

	rawOther := make([]byte, 11)
	rawOther[7] = 3
	if got := DecodeDeviceStateResponse(rawOther); got != 3 {
		t.Fatalf("DecodeDeviceStateResponse = %d, want 3", got)
	}
}

func TestEngineDeliverDecodesRAMReadAndInvokesCallback(t *testing.T) {
	transport := &fakeTransport{}
	reg := newRegistry(4, 3, 50*time.Millisecond)
	status := newStatus()
	e := newEngine(transport, reg, status, DefaultMaxBufferSize, DefaultMaxReceiveBuffer)

	var got ResponseData
	e.responseCb = func(r ResponseData) { got = r }

	entry := &pendingRequest{
		id:      0x90,
		command: ReadRAMVar,
		address: byte(UMainsRMS),
		response: []byte{
			MPID0, MPID1, DataFrame, 0x01, 0x00, 0x90, RespRAMReadOK,
			0x64, 0x00, 0x00, 0x00,
		},
	}
	e.deliver(entry)

	if got.Command != ReadRAMVar || got.Value.Kind != ValueF32 {
		t.Fatalf("deliver did not invoke response_cb with a decoded float value, got %+v", got)
	}
}
