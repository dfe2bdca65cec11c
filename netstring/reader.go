// Package netstring frames byte payloads for a serial link as
// `<decimal length>:<payload>,` and recovers them from a stream that
// delivers bytes in arbitrary chunks.
package netstring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clint456/uartrpc/transport"
)

const (
	DefaultMaxLength    = 4096
	DefaultReadTimeout  = 5 * time.Second
	DefaultPollInterval = 10 * time.Millisecond
)

// ErrTimeout reports that the deadline expired before a complete frame
// arrived. All partial state is discarded; the next read starts clean.
var ErrTimeout = errors.New("netstring: timeout waiting for frame")

// FramingError reports a malformed frame on the wire.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("netstring: bad frame: %s", e.Reason)
}

// ReaderOptions bound a single frame read.
type ReaderOptions struct {
	MaxLength    int           // maximum declared payload length
	ReadTimeout  time.Duration // deadline for one complete frame
	PollInterval time.Duration // sleep between empty transport polls
}

// FrameReader assembles frames incrementally. Partial progress (header
// digits, payload bytes so far) survives across transport polls within
// one ReadFrame call; bytes past a frame boundary are retained for the
// next call.
type FrameReader struct {
	t     transport.Transport
	opts  ReaderOptions
	buf   bytes.Buffer // received but unconsumed bytes
	chunk []byte
}

func NewFrameReader(t transport.Transport, opts ReaderOptions) *FrameReader {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &FrameReader{t: t, opts: opts, chunk: make([]byte, 256)}
}

// ReadFrame returns the payload of the next complete frame, exactly as
// many bytes as the header declared. A malformed header or terminator
// yields a *FramingError after consuming at least the offending byte,
// so a desynchronized stream makes progress toward the next boundary
// instead of wedging the loop. Deadline expiry yields ErrTimeout and
// drops everything buffered. Context cancellation ends the poll loop
// and returns the context's error.
func (r *FrameReader) ReadFrame(ctx context.Context) ([]byte, error) {
	d := StartDeadline(r.opts.ReadTimeout)

	length, err := r.readLength(ctx, d)
	if err != nil {
		return nil, err
	}
	payload, err := r.readPayload(ctx, d, length)
	if err != nil {
		return nil, err
	}
	term, err := r.nextByte(ctx, d)
	if err != nil {
		return nil, err
	}
	if term != ',' {
		return nil, &FramingError{Reason: fmt.Sprintf("terminator %#x is not a comma", term)}
	}
	return payload, nil
}

// readLength consumes ASCII decimal digits up to the ':' separator.
func (r *FrameReader) readLength(ctx context.Context, d Deadline) (int, error) {
	var (
		n           int
		digits      int
		leadingZero bool
	)
	for {
		b, err := r.nextByte(ctx, d)
		if err != nil {
			return 0, err
		}
		switch {
		case b >= '0' && b <= '9':
			if leadingZero {
				return 0, &FramingError{Reason: "length field has a leading zero"}
			}
			if digits == 0 && b == '0' {
				leadingZero = true
			}
			n = n*10 + int(b-'0')
			digits++
			if n > r.opts.MaxLength {
				return 0, &FramingError{Reason: fmt.Sprintf("declared length %d exceeds maximum %d", n, r.opts.MaxLength)}
			}
		case b == ':':
			if digits == 0 {
				return 0, &FramingError{Reason: "empty length field"}
			}
			return n, nil
		default:
			return 0, &FramingError{Reason: fmt.Sprintf("length field byte %#x is not a digit", b)}
		}
	}
}

func (r *FrameReader) readPayload(ctx context.Context, d Deadline, length int) ([]byte, error) {
	payload := make([]byte, 0, length)
	for len(payload) < length {
		if r.buf.Len() == 0 {
			if err := r.fill(ctx, d); err != nil {
				return nil, err
			}
			continue
		}
		take := length - len(payload)
		if take > r.buf.Len() {
			take = r.buf.Len()
		}
		payload = append(payload, r.buf.Next(take)...)
	}
	return payload, nil
}

func (r *FrameReader) nextByte(ctx context.Context, d Deadline) (byte, error) {
	for r.buf.Len() == 0 {
		if err := r.fill(ctx, d); err != nil {
			return 0, err
		}
	}
	b, _ := r.buf.ReadByte()
	return b, nil
}

// fill polls the transport until at least one byte arrives, sleeping
// between empty polls. On deadline expiry the buffer is reset so the
// aborted frame cannot bleed into the next attempt.
func (r *FrameReader) fill(ctx context.Context, d Deadline) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Expired() {
			r.buf.Reset()
			return ErrTimeout
		}
		n, err := r.t.Read(r.chunk)
		if err != nil {
			return &transport.TransportError{Op: "read", Err: err}
		}
		if n > 0 {
			r.buf.Write(r.chunk[:n])
			return nil
		}
		sleep := r.opts.PollInterval
		if rem := d.Remaining(); rem < sleep {
			sleep = rem
		}
		time.Sleep(sleep)
	}
}
