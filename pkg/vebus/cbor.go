// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// StatusSnapshot is a CBOR-serializable copy of every status aggregate,
// for offline diagnosis when a device is behaving oddly and the raw
// polling API isn't convenient to script against.
type StatusSnapshot struct {
	MasterMultiLed  MasterMultiLed      `cbor:"0,keyasint"`
	MultiPlusStatus MultiPlusStatus     `cbor:"1,keyasint"`
	DcInfo          DcInfo              `cbor:"2,keyasint"`
	AcInfo          [phasesCount]AcInfo `cbor:"3,keyasint"`
}

// Snapshot captures the current status store as a StatusSnapshot without
// disturbing any new-data flag.
func (v *VEBus) Snapshot() StatusSnapshot {
	led, mp, dc, ac := v.status.Peek()
	return StatusSnapshot{MasterMultiLed: led, MultiPlusStatus: mp, DcInfo: dc, AcInfo: ac}
}

// EncodeSnapshot serializes a StatusSnapshot to CBOR for the snapshot CLI
// subcommand.
func EncodeSnapshot(s StatusSnapshot) ([]byte, error) {
	data, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode status snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a CBOR-encoded StatusSnapshot, the inverse of
// EncodeSnapshot, for replaying a captured snapshot offline.
func DecodeSnapshot(data []byte) (StatusSnapshot, error) {
	var s StatusSnapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return StatusSnapshot{}, fmt.Errorf("decode status snapshot: %w", err)
	}
	return s, nil
}
