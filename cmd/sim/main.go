package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sim",
	Short: "Dungeon crawler agent simulation",
	Long:  `Runs the autonomous crawler simulation: a fixed-tick world of utility-driven agents with a spectator websocket feed.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
