package netstring

import (
	"strconv"

	"github.com/clint456/uartrpc/transport"
)

// FrameWriter encodes payloads into the wire format and sends them.
type FrameWriter struct {
	t transport.Transport
}

func NewFrameWriter(t transport.Transport) *FrameWriter {
	return &FrameWriter{t: t}
}

// WriteFrame frames and sends one payload in a single transport write.
// Failed writes are wrapped and reported upward, not retried.
func (w *FrameWriter) WriteFrame(payload []byte) error {
	if _, err := w.t.Write(EncodeFrame(payload)); err != nil {
		return &transport.TransportError{Op: "write", Err: err}
	}
	return nil
}

// EncodeFrame returns `<decimal length>:<payload>,`. The length never
// carries leading zeros; an empty payload encodes as `0:,`.
func EncodeFrame(payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+8)
	frame = strconv.AppendInt(frame, int64(len(payload)), 10)
	frame = append(frame, ':')
	frame = append(frame, payload...)
	frame = append(frame, ',')
	return frame
}
