package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dungeon-crawlers/sim/internal/app"
	"dungeon-crawlers/sim/internal/telemetry"
)

var (
	configPath string
	listenAddr string
	seed       int64
	tickRate   int
	runFor     time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation",
	Long:  `Loads the scenario file, spawns the configured crawlers, and drives the tick loop until interrupted.`,
	RunE:  runSim,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to the scenario YAML file")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides scenario)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (overrides scenario)")
	runCmd.Flags().IntVar(&tickRate, "tick-rate", 0, "ticks per second (overrides scenario)")
	runCmd.Flags().DurationVar(&runFor, "run-for", 0, "stop after this duration (0 runs until interrupted)")
}

func runSim(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("received shutdown signal, stopping...")
		cancel()
	}()

	return app.Run(ctx, app.Options{
		ConfigPath: configPath,
		Listen:     listenAddr,
		Seed:       seed,
		TickRate:   tickRate,
		RunFor:     runFor,
		Logger:     telemetry.WrapLogger(log.Default()),
	})
}
