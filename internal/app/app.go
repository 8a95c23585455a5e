package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	nethttp "net/http"
	"os"
	"time"

	simnet "dungeon-crawlers/sim/internal/net"
	"dungeon-crawlers/sim/internal/sim"
	"dungeon-crawlers/sim/internal/telemetry"
	"dungeon-crawlers/sim/logging"
	loggingsinks "dungeon-crawlers/sim/logging/sinks"
)

// Options are the CLI-level overrides layered on top of the scenario file.
type Options struct {
	ConfigPath string
	Listen     string
	Seed       int64
	TickRate   int
	RunFor     time.Duration
	Logger     telemetry.Logger
}

// Run loads the scenario, wires the event pipeline, and drives the loop until
// the context ends or the configured duration elapses.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	cfg := FileConfig{}.normalized()
	if opts.ConfigPath != "" {
		loaded, err := LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if opts.TickRate > 0 {
		cfg.TickRate = opts.TickRate
	}

	counters := telemetry.NewCounters()
	hub := simnet.NewHub(logger)

	router, closeSinks, err := buildRouter(cfg, hub)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("app: close router: %v", cerr)
		}
		closeSinks()
	}()

	personalities, err := cfg.personalities()
	if err != nil {
		return err
	}

	engine, err := sim.NewEngine(sim.Config{
		TickRate:      cfg.TickRate,
		World:         cfg.World,
		SafeZones:     cfg.SafeZones,
		Enemies:       cfg.Enemies,
		Crawlers:      cfg.Crawlers,
		Personalities: personalities,
	}, sim.Deps{
		Logger:    logger,
		Metrics:   counters,
		RNG:       rand.New(rand.NewSource(cfg.Seed)),
		Publisher: router,
	})
	if err != nil {
		return err
	}

	loop := sim.NewLoop(engine, sim.LoopHooks{
		AfterStep: func(result sim.StepResult) {
			hub.BroadcastSnapshot(result)
		},
	})

	stop := make(chan struct{})
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(stop)
	}()

	mux := nethttp.NewServeMux()
	simnet.NewServer(engine, hub, counters, logger).Routes(mux)
	srv := &nethttp.Server{Addr: cfg.Listen, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("app: listening on %s", cfg.Listen)
		serveErr <- srv.ListenAndServe()
	}()

	var timeout <-chan time.Time
	if opts.RunFor > 0 {
		timer := time.NewTimer(opts.RunFor)
		defer timer.Stop()
		timeout = timer.C
	}

	var runErr error
	select {
	case <-ctx.Done():
	case <-timeout:
		logger.Printf("app: run duration elapsed")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			runErr = fmt.Errorf("app: serve: %w", err)
		}
	}

	close(stop)
	<-loopDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("app: shutdown: %v", err)
	}

	return runErr
}

// buildRouter assembles the configured sinks behind the event router. The hub
// is always attached so spectators see the live feed.
func buildRouter(cfg FileConfig, hub *simnet.Hub) (*logging.Router, func(), error) {
	logCfg := cfg.loggingConfig()
	if !logCfg.HasSink("ws") {
		logCfg.EnabledSinks = append(logCfg.EnabledSinks, "ws")
	}

	var files []*os.File
	closeFiles := func() {
		for _, f := range files {
			f.Close()
		}
	}

	named := []logging.NamedSink{{Name: "ws", Sink: hub}}
	for _, name := range logCfg.EnabledSinks {
		switch name {
		case "console":
			named = append(named, logging.NamedSink{
				Name: "console",
				Sink: loggingsinks.NewConsoleSink(os.Stdout, logCfg.Console),
			})
		case "json":
			path := logCfg.JSON.FilePath
			if path == "" {
				path = "events.jsonl"
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				closeFiles()
				return nil, nil, fmt.Errorf("app: open json sink: %w", err)
			}
			files = append(files, f)
			named = append(named, logging.NamedSink{
				Name: "json",
				Sink: loggingsinks.NewJSONSink(f, logCfg.JSON.Gzip, logCfg.JSON.FlushInterval),
			})
		case "journal":
			sink, err := loggingsinks.NewSQLiteSink(logCfg.Journal.Path, logCfg.Journal.MaxBatch)
			if err != nil {
				closeFiles()
				return nil, nil, fmt.Errorf("app: open journal sink: %w", err)
			}
			named = append(named, logging.NamedSink{Name: "journal", Sink: sink})
		case "ws":
			// Already attached.
		default:
			closeFiles()
			return nil, nil, fmt.Errorf("app: unknown sink %q", name)
		}
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, named)
	if err != nil {
		closeFiles()
		return nil, nil, fmt.Errorf("app: construct router: %w", err)
	}
	return router, closeFiles, nil
}
