// Package main is the entry point for the Chimera Protocol server and terminal client
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/chimera-protocol/cmd/server/client"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "chimera",
	Short: "Chimera Protocol",
	Long: `Chimera Protocol is a cyberpunk tabletop session run by an AI dungeon master.
It can be played in the terminal or hosted over gRPC.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load (default .env)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
