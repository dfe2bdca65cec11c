// uartrpcd serves JSON-RPC requests arriving over a serial port. It
// registers a few built-in methods; real deployments register their own
// before calling Run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/clint456/uartrpc/config"
	"github.com/clint456/uartrpc/jsonrpc"
	"github.com/clint456/uartrpc/observability"
	"github.com/clint456/uartrpc/server"
	"github.com/clint456/uartrpc/transport"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to TOML config file")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := observability.New("uartrpcd", *debug)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config load failed")
		}
	}

	t, err := transport.OpenSerial(transport.SerialConfig{
		PortName:    cfg.Port,
		BaudRate:    cfg.Baud,
		ReadTimeout: cfg.PollInterval(),
	})
	if err != nil {
		log.Fatal().Str("port", cfg.Port).Err(err).Msg("serial open failed")
	}
	defer t.Close()

	reg := jsonrpc.NewRegistry()
	registerBuiltins(reg)

	srv := server.New(t, reg, server.Config{
		ReadTimeout:  cfg.ReadTimeout(),
		PollInterval: cfg.PollInterval(),
		MaxFrameLen:  cfg.MaxFrameLen,
		TraceFrames:  cfg.TraceFrames,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("port", cfg.Port).Int("baud", cfg.Baud).Msg("starting")
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func registerBuiltins(reg *jsonrpc.Registry) {
	reg.Register("ping", func(params json.RawMessage) (any, error) {
		return "pong", nil
	})
	reg.Register("echo", func(params json.RawMessage) (any, error) {
		if len(params) == 0 {
			return nil, jsonrpc.InvalidParams("echo needs a params value")
		}
		return params, nil
	})
	reg.Register("device.info", func(params json.RawMessage) (any, error) {
		return map[string]any{
			"goos":    runtime.GOOS,
			"goarch":  runtime.GOARCH,
			"methods": reg.Methods(),
		}, nil
	})
}
