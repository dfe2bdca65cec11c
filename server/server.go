// Package server runs the serve-forever JSON-RPC cycle over one
// exclusively-owned transport.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clint456/uartrpc/jsonrpc"
	"github.com/clint456/uartrpc/netstring"
	"github.com/clint456/uartrpc/transport"
)

type Config struct {
	ReadTimeout  time.Duration // deadline for one complete frame
	PollInterval time.Duration // sleep between empty transport polls
	MaxFrameLen  int           // maximum declared payload length
	TraceFrames  bool          // log length and CRC of every frame
}

// Server drives the cycle read, parse, dispatch, respond, write. All
// stages run synchronously on one goroutine; only the frame read waits,
// and only up to its deadline.
type Server struct {
	reader   *netstring.FrameReader
	writer   *netstring.FrameWriter
	registry *jsonrpc.Registry
	cfg      Config
	log      zerolog.Logger
}

func New(t transport.Transport, reg *jsonrpc.Registry, cfg Config, log zerolog.Logger) *Server {
	return &Server{
		reader: netstring.NewFrameReader(t, netstring.ReaderOptions{
			MaxLength:    cfg.MaxFrameLen,
			ReadTimeout:  cfg.ReadTimeout,
			PollInterval: cfg.PollInterval,
		}),
		writer:   netstring.NewFrameWriter(t),
		registry: reg,
		cfg:      cfg,
		log:      log,
	}
}

// Run serves requests until ctx is canceled, then returns nil. No
// single cycle's failure ends the loop: framing and timeout failures
// restart it with no output, parse and dispatch failures answer with an
// error response when an id is known, and write failures are logged and
// dropped. This is the only place that swallows every failure kind;
// the components below it report specific, typed ones.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Msg("serving requests")
	for {
		if ctx.Err() != nil {
			s.log.Info().Msg("shutting down")
			return nil
		}
		s.cycle(ctx)
	}
}

func (s *Server) cycle(ctx context.Context) {
	payload, err := s.reader.ReadFrame(ctx)
	if err != nil {
		s.reportReadFailure(err)
		return
	}
	s.trace("frame received", payload)

	req, err := jsonrpc.Parse(payload)
	if err != nil {
		s.respondParseFailure(err)
		return
	}

	result, errObj := jsonrpc.Dispatch(s.registry, req)
	if req.Notification() {
		// Notifications never produce output, success or failure.
		return
	}

	out, err := jsonrpc.BuildResponse(req.ID, result, errObj)
	if err != nil {
		s.log.Warn().Err(err).Str("method", req.Method).Msg("response not serializable")
		return
	}
	s.write(out)
}

// reportReadFailure restarts the cycle silently: nothing before a
// complete frame carries an id to answer with.
func (s *Server) reportReadFailure(err error) {
	var fe *netstring.FramingError
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Shutdown; Run notices on its next pass.
	case errors.Is(err, netstring.ErrTimeout):
		s.log.Debug().Msg("frame read timed out, waiting for a fresh frame")
	case errors.As(err, &fe):
		s.log.Debug().Str("reason", fe.Reason).Msg("discarding malformed frame")
	default:
		s.log.Warn().Err(err).Msg("transport read failed")
	}
}

func (s *Server) respondParseFailure(err error) {
	var invalid *jsonrpc.InvalidRequestError
	if errors.As(err, &invalid) && len(invalid.ID) > 0 {
		out, berr := jsonrpc.BuildResponse(invalid.ID, nil, &jsonrpc.ErrorObject{
			Code:    jsonrpc.CodeInvalidRequest,
			Message: "invalid request",
			Data:    invalid.Reason,
		})
		if berr != nil {
			s.log.Warn().Err(berr).Msg("error response not serializable")
			return
		}
		s.write(out)
		return
	}
	// No recoverable id: the request is unanswerable.
	s.log.Debug().Err(err).Msg("dropping unanswerable request")
}

func (s *Server) write(payload []byte) {
	s.trace("frame sent", payload)
	if err := s.writer.WriteFrame(payload); err != nil {
		s.log.Warn().Err(err).Msg("response write failed")
	}
}

func (s *Server) trace(msg string, payload []byte) {
	if !s.cfg.TraceFrames {
		return
	}
	s.log.Debug().
		Int("len", len(payload)).
		Str("crc", fmt.Sprintf("%04x", netstring.Checksum(payload))).
		Msg(msg)
}
