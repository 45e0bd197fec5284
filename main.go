/*
offaxis runs a camera rig through the off-axis projection engine and
writes the resulting view and projection matrices every tick.

Without -rig the built-in testbed rig is used.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/offaxis/engine"
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/testbed"
)

func main() {
	var (
		rigPath  = flag.String("rig", "", "rig file (TOML); the testbed rig when empty")
		watch    = flag.Bool("watch", false, "reload the rig file when it changes")
		ticks    = flag.Uint64("ticks", 0, "stop after this many ticks; 0 runs until interrupted")
		rate     = flag.Float64("rate", engine.DEFAULT_TICK_RATE, "ticks per second")
		out      = flag.String("out", "", "write matrices as TOML to this file, - for stdout; log them when empty")
		preview  = flag.String("preview", "", "directory receiving a wireframe preview per camera")
		format   = flag.String("preview-format", engine.DEFAULT_PREVIEW_FORMAT, "preview image format: png or webp")
		logLevel = flag.String("log-level", "info", "debug, info, warn or error")
		dumpRig  = flag.Bool("dump-rig", false, "print the testbed rig as TOML and exit")
	)
	flag.Parse()

	if err := core.SetLogLevel(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *dumpRig {
		if err := testbed.NewDemoRig().Encode(os.Stdout); err != nil {
			core.LogFatal(err.Error())
		}
		return
	}

	cfg := &engine.ApplicationConfig{
		Name:          "offaxis",
		RigPath:       *rigPath,
		Watch:         *watch,
		TickRate:      *rate,
		TickLimit:     *ticks,
		PreviewDir:    *preview,
		PreviewFormat: *format,
	}
	if *rigPath == "" {
		cfg.Name = "testbed"
		cfg.Rig = testbed.NewDemoRig()
		cfg.Game = testbed.NewTestGame().Game
	}

	if err := run(cfg, *out); err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
}

// run drives the engine until it stops. out is "" for log output, "-" for
// stdout or a file path, which is closed before run returns.
func run(cfg *engine.ApplicationConfig, out string) error {
	var sink engine.MatrixSink = engine.LogSink{}
	switch out {
	case "":
	case "-":
		sink = engine.NewWriterSink(os.Stdout)
	default:
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer closeOrLog(f)
		sink = engine.NewWriterSink(f)
	}

	e, err := engine.New(cfg, sink)
	if err != nil {
		return err
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		select {
		case <-sigCh:
			core.LogInfo("interrupted, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	// run engine
	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func closeOrLog(c io.Closer) {
	if err := c.Close(); err != nil {
		core.LogError(err.Error())
	}
}
