// Package transport abstracts the byte-level link the RPC server runs over.
package transport

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// Transport is a byte stream with poll-style reads: Read returns (0, nil)
// when no data is pending instead of blocking past the driver's own read
// timeout. The server owns its transport exclusively.
type Transport interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
}

// TransportError wraps a failed read or write on the underlying link.
type TransportError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SerialConfig holds the port parameters for OpenSerial.
type SerialConfig struct {
	PortName    string
	BaudRate    int
	ReadTimeout time.Duration // bound on a single driver read, not a frame
}

type serialTransport struct {
	port *serial.Port
}

// OpenSerial opens the named serial port. ReadTimeout should be short;
// it bounds one driver read so the frame reader can poll without
// blocking forever on a silent line.
func OpenSerial(cfg SerialConfig) (Transport, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.PortName,
		Baud:        cfg.BaudRate,
		Parity:      serial.ParityNone,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &serialTransport{port: port}, nil
}

func (s *serialTransport) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s *serialTransport) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s *serialTransport) Close() error                { return s.port.Close() }
