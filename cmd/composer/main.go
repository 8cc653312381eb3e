// Command composer runs scene scripts through the engine.
//
// Usage:
//
//	composer [flags] render script.yaml   apply a script, write the SVG
//	composer [flags] watch dir            apply every script dropped into dir
//	composer [flags] serve dir            watch, broadcasting batches over websocket
//
// Batches go to the configured sink: JSON lines on stdout by default, or a
// websocket endpoint at sink.addr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/change"
	"github.com/gogpu/compose/config"
	"github.com/gogpu/compose/engine"
	"github.com/gogpu/compose/internal/script"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML or TOML configuration file")
		output     = flag.String("output", "", "SVG output file, rewritten after every pass")
		quiet      = flag.Bool("quiet", false, "do not emit change batches")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: composer [flags] render|watch|serve path\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Arg(0), flag.Arg(1), *configPath, *output, *quiet); err != nil {
		slog.Error("composer failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, mode, path, configPath, output string, quiet bool) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return err
		}
	}
	if mode == "serve" {
		cfg.Sink.Kind = "websocket"
		if cfg.Sink.Addr == "" {
			cfg.Sink.Addr = "localhost:8080"
		}
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	compose.SetLogger(logger)

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	sink, shutdown, err := openSink(cfg, quiet)
	if err != nil {
		return err
	}
	defer shutdown()
	opts = append(opts, engine.WithSink(sink))

	c := &composer{
		engine: engine.New(opts...),
		output: output,
	}
	c.script = script.New(c.engine.Store())
	defer c.engine.Close()

	switch mode {
	case "render":
		if err := c.runFile(ctx, path); err != nil {
			return err
		}
		if output == "" {
			fmt.Println(c.engine.ToSVGString())
		}
		return nil
	case "watch", "serve":
		return c.watch(ctx, path)
	}
	return fmt.Errorf("unknown mode %q", mode)
}

// openSink builds the configured sink. The returned function stops any
// server it started.
func openSink(cfg *config.Config, quiet bool) (change.Sink, func(), error) {
	if quiet {
		return change.NewCallback(nil), func() {}, nil
	}
	if cfg.Sink.Kind != "websocket" {
		return change.NewJSONLines(os.Stdout), func() {}, nil
	}

	ws := change.NewWebSocket()
	mux := http.NewServeMux()
	mux.Handle("/changes", ws)
	srv := &http.Server{Addr: cfg.Sink.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("websocket server stopped", "err", err)
		}
	}()
	slog.Info("serving changes", "addr", "ws://"+cfg.Sink.Addr+"/changes")

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return ws, shutdown, nil
}

// errScript marks scripts that could not be read or decoded.
var errScript = errors.New("invalid script")

// composer feeds scripts to one engine. Calls are serialized by the
// caller.
type composer struct {
	engine *engine.Engine
	script *script.Interpreter
	output string
}

// runFile applies every document of a script file as one pass each.
func (c *composer) runFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", errScript, err)
	}
	defer f.Close()

	batches, err := c.script.Decode(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errScript, path, err)
	}
	for _, batch := range batches {
		rep, err := c.engine.Update(ctx, batch...)
		if err != nil {
			return err
		}
		slog.Info("pass",
			"file", path,
			"seq", rep.Seq,
			"applied", rep.Applied,
			"dropped", len(rep.Dropped),
			"records", rep.Records)
	}
	return c.writeOutput()
}

func (c *composer) writeOutput() error {
	if c.output == "" {
		return nil
	}
	return os.WriteFile(c.output, []byte(c.engine.ToSVGString()+"\n"), 0o644)
}
