package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clint456/uartrpc/jsonrpc"
	"github.com/clint456/uartrpc/netstring"
)

// pipeTransport feeds pre-loaded input to the server and captures what
// it writes back. Reads past the input model a quiet line.
type pipeTransport struct {
	in  bytes.Buffer
	out bytes.Buffer
}

func (p *pipeTransport) Read(b []byte) (int, error) {
	if p.in.Len() == 0 {
		return 0, nil
	}
	return p.in.Read(b)
}

func (p *pipeTransport) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *pipeTransport) Close() error                { return nil }

func pingRegistry() *jsonrpc.Registry {
	reg := jsonrpc.NewRegistry()
	reg.Register("ping", func(params json.RawMessage) (any, error) {
		return "pong", nil
	})
	reg.Register("fail", func(params json.RawMessage) (any, error) {
		return nil, errors.New("sensor offline")
	})
	return reg
}

// runServer drives the loop over the input until the context window
// closes, then returns everything the server wrote.
func runServer(t *testing.T, reg *jsonrpc.Registry, input []byte) []byte {
	t.Helper()
	tr := &pipeTransport{}
	tr.in.Write(input)

	srv := New(tr, reg, Config{
		ReadTimeout:  50 * time.Millisecond,
		PollInterval: time.Millisecond,
		MaxFrameLen:  4096,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var runErr error
	go func() {
		runErr = srv.Run(ctx)
		close(done)
	}()
	<-done
	require.NoError(t, runErr)
	return tr.out.Bytes()
}

func frame(payload string) []byte {
	return netstring.EncodeFrame([]byte(payload))
}

// decodeResponse unframes a single response and unmarshals its envelope.
func decodeResponse(t *testing.T, wire []byte) (json.RawMessage, json.RawMessage, *jsonrpc.ErrorObject) {
	t.Helper()
	tr := &pipeTransport{}
	tr.in.Write(wire)
	reader := netstring.NewFrameReader(tr, netstring.ReaderOptions{ReadTimeout: 50 * time.Millisecond})
	payload, err := reader.ReadFrame(context.Background())
	require.NoError(t, err)

	var resp struct {
		Version string               `json:"jsonrpc"`
		ID      json.RawMessage      `json:"id"`
		Result  json.RawMessage      `json:"result"`
		Error   *jsonrpc.ErrorObject `json:"error"`
	}
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Equal(t, jsonrpc.Version, resp.Version)
	return resp.ID, resp.Result, resp.Error
}

func TestServerPingPong(t *testing.T) {
	out := runServer(t, pingRegistry(), frame(`{"jsonrpc":"2.0","id":1,"method":"ping","params":[]}`))

	want := `{"jsonrpc":"2.0","id":1,"result":"pong"}`
	assert.Equal(t, fmt.Sprintf("%d:%s,", len(want), want), string(out))
}

func TestServerMethodNotFound(t *testing.T) {
	out := runServer(t, pingRegistry(), frame(`{"jsonrpc":"2.0","id":2,"method":"missing"}`))

	id, result, errObj := decodeResponse(t, out)
	assert.Equal(t, "2", string(id))
	assert.Nil(t, result)
	require.NotNil(t, errObj)
	assert.Equal(t, jsonrpc.CodeMethodNotFound, errObj.Code)
	assert.NotEmpty(t, errObj.Message)
}

func TestServerHandlerFailure(t *testing.T) {
	out := runServer(t, pingRegistry(), frame(`{"jsonrpc":"2.0","id":3,"method":"fail"}`))

	id, _, errObj := decodeResponse(t, out)
	assert.Equal(t, "3", string(id))
	require.NotNil(t, errObj)
	assert.Equal(t, jsonrpc.CodeInternalError, errObj.Code)
	assert.Equal(t, "sensor offline", errObj.Data)
}

func TestServerMalformedFrameThenGoodOne(t *testing.T) {
	input := append([]byte("abc:xyz,"), frame(`{"jsonrpc":"2.0","id":4,"method":"ping"}`)...)
	out := runServer(t, pingRegistry(), input)

	// The garbage produced no output; the next frame was served.
	want := `{"jsonrpc":"2.0","id":4,"result":"pong"}`
	assert.Equal(t, fmt.Sprintf("%d:%s,", len(want), want), string(out))
}

func TestServerNotificationProducesNoOutput(t *testing.T) {
	input := append(
		frame(`{"jsonrpc":"2.0","method":"ping"}`),
		frame(`{"jsonrpc":"2.0","method":"missing"}`)...,
	)
	out := runServer(t, pingRegistry(), input)
	assert.Empty(t, out)
}

func TestServerInvalidRequestWithRecoverableID(t *testing.T) {
	out := runServer(t, pingRegistry(), frame(`{"jsonrpc":"2.0","id":5,"method":42}`))

	id, _, errObj := decodeResponse(t, out)
	assert.Equal(t, "5", string(id))
	require.NotNil(t, errObj)
	assert.Equal(t, jsonrpc.CodeInvalidRequest, errObj.Code)
}

func TestServerUnparseablePayloadDropped(t *testing.T) {
	out := runServer(t, pingRegistry(), frame(`[1,2,3]`))
	assert.Empty(t, out)
}

func TestServerIDTypePreserved(t *testing.T) {
	out := runServer(t, pingRegistry(), frame(`{"jsonrpc":"2.0","id":"req-9","method":"ping"}`))

	id, result, errObj := decodeResponse(t, out)
	assert.Equal(t, `"req-9"`, string(id))
	assert.Equal(t, `"pong"`, string(result))
	assert.Nil(t, errObj)
}

func TestServerServesMultipleCycles(t *testing.T) {
	input := append(
		frame(`{"jsonrpc":"2.0","id":1,"method":"ping"}`),
		frame(`{"jsonrpc":"2.0","id":2,"method":"ping"}`)...,
	)
	out := runServer(t, pingRegistry(), input)

	one := `{"jsonrpc":"2.0","id":1,"result":"pong"}`
	two := `{"jsonrpc":"2.0","id":2,"result":"pong"}`
	want := fmt.Sprintf("%d:%s,%d:%s,", len(one), one, len(two), two)
	assert.Equal(t, want, string(out))
}
