// uartrpc-call sends one JSON-RPC request over a serial port and
// prints the response frame, for exercising a device from the host.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clint456/uartrpc/netstring"
	"github.com/clint456/uartrpc/observability"
	"github.com/clint456/uartrpc/transport"
)

func main() {
	var (
		port    = flag.String("port", "/dev/ttyUSB0", "serial port")
		baud    = flag.Int("baud", 115200, "baud rate")
		method  = flag.String("method", "ping", "method to call")
		params  = flag.String("params", "", "params as a JSON value (optional)")
		timeout = flag.Duration("timeout", 5*time.Second, "response timeout")
		notify  = flag.Bool("notify", false, "send as a notification and skip waiting")
	)
	flag.Parse()

	log := observability.New("uartrpc-call", false)

	t, err := transport.OpenSerial(transport.SerialConfig{
		PortName:    *port,
		BaudRate:    *baud,
		ReadTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		log.Fatal().Str("port", *port).Err(err).Msg("serial open failed")
	}
	defer t.Close()

	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  *method,
	}
	if !*notify {
		req["id"] = uuid.NewString()
	}
	if *params != "" {
		req["params"] = json.RawMessage(*params)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		log.Fatal().Err(err).Msg("request encode failed")
	}

	if err := netstring.NewFrameWriter(t).WriteFrame(payload); err != nil {
		log.Fatal().Err(err).Msg("request write failed")
	}
	if *notify {
		return
	}

	reader := netstring.NewFrameReader(t, netstring.ReaderOptions{ReadTimeout: *timeout})
	resp, err := reader.ReadFrame(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("no response")
	}
	fmt.Println(string(resp))
}
