// SPDX-License-Identifier: GPL-2.0-or-later

package vebus

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
)

// Direction selects which way a half-duplex link is currently facing
// (§4.1).
type Direction int

const (
	DirectionRX Direction = iota
	DirectionTX
)

// Transport is the serial transport contract the engine drives (§4.1).
// TxFlush blocks until the underlying hardware has drained; RxAvailable
// is non-blocking; ReadByte is non-blocking and must only be called
// after RxAvailable reports true. SetDirection toggles the RS-485
// enable line on a half-duplex link; implementations that have no such
// concept (a WebSocket bridge) treat it as a no-op.
type Transport interface {
	Write(p []byte) (int, error)
	TxFlush() error
	RxAvailable() bool
	ReadByte() (byte, error)
	SetDirection(d Direction)
	Close() error
}

// DirectionFunc drives an RS-485 transceiver's enable pin. Implementing
// this as a caller-supplied callback, rather than baking GPIO access
// into SerialTransport, keeps the protocol package free of hardware
// specifics.
type DirectionFunc func(d Direction)

// SerialTransport drives a real RS-485 link through go.bug.st/serial.
type SerialTransport struct {
	port      serial.Port
	direction DirectionFunc
	buf       [1]byte
	pending   []byte
}

// OpenSerialTransport opens portName at baudRate 8-N-1 with no flow
// control, as required by §6's serial transport contract.
func OpenSerialTransport(portName string, baudRate int, direction DirectionFunc) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", portName, err)
	}
	return &SerialTransport{port: port, direction: direction}, nil
}

func (s *SerialTransport) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialTransport) TxFlush() error {
	return s.port.Drain()
}

func (s *SerialTransport) RxAvailable() bool {
	if len(s.pending) > 0 {
		return true
	}
	n, err := s.port.Read(s.buf[:])
	if err != nil || n == 0 {
		return false
	}
	s.pending = append(s.pending, s.buf[:n]...)
	return true
}

func (s *SerialTransport) ReadByte() (byte, error) {
	if len(s.pending) == 0 {
		if !s.RxAvailable() {
			return 0, fmt.Errorf("vebus: ReadByte called with no bytes available")
		}
	}
	b := s.pending[0]
	s.pending = s.pending[1:]
	return b, nil
}

func (s *SerialTransport) SetDirection(d Direction) {
	if s.direction != nil {
		s.direction(d)
	}
}

func (s *SerialTransport) Close() error {
	return s.port.Close()
}

// BridgeTransport carries VE.Bus frames over a binary-framed WebSocket
// connection to a remote RS-485 adapter, for development and testing
// without local hardware. It has no enable pin of its own, so
// SetDirection is a no-op.
type BridgeTransport struct {
	conn    *websocket.Conn
	pending []byte
}

// DialBridgeTransport connects to a ws:// or wss:// bridge endpoint with
// optional HTTP Basic auth, mirroring the teacher's WebSocket connection
// helper.
func DialBridgeTransport(wsURL, username, password string, skipSSLVerify bool) (*BridgeTransport, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bridge URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported bridge URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipSSLVerify}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+creds)
	}

	conn, resp, err := dialer.Dial(wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("bridge dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("bridge dial failed: %w", err)
	}
	return &BridgeTransport{conn: conn}, nil
}

func (b *BridgeTransport) Write(p []byte) (int, error) {
	if err := b.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (b *BridgeTransport) TxFlush() error {
	return nil
}

func (b *BridgeTransport) RxAvailable() bool {
	if len(b.pending) > 0 {
		return true
	}
	_ = b.conn.SetReadDeadline(time.Now().Add(5 * time.Millisecond))
	kind, data, err := b.conn.ReadMessage()
	if err != nil {
		return false
	}
	if kind != websocket.BinaryMessage {
		return false
	}
	b.pending = data
	return len(b.pending) > 0
}

func (b *BridgeTransport) ReadByte() (byte, error) {
	if len(b.pending) == 0 {
		if !b.RxAvailable() {
			return 0, fmt.Errorf("vebus: ReadByte called with no bytes available")
		}
	}
	c := b.pending[0]
	b.pending = b.pending[1:]
	return c, nil
}

func (b *BridgeTransport) SetDirection(Direction) {}

func (b *BridgeTransport) Close() error {
	return b.conn.Close()
}
