// Package client provides commands that drive a running Chimera server over gRPC
package client

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/chimera-protocol/internal/handlers/chimera/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration

	sessionID string
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Drive a Chimera session on a running server",
	Long:  `Client commands talk to the Chimera gRPC server to create, play and save sessions.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(createCmd)
	ClientCmd.AddCommand(getCmd)
	ClientCmd.AddCommand(sayCmd)
	ClientCmd.AddCommand(moveCmd)
	ClientCmd.AddCommand(stopCmd)
	ClientCmd.AddCommand(resumeCmd)
	ClientCmd.AddCommand(renderCmd)
	ClientCmd.AddCommand(closeCmd)

	ClientCmd.AddCommand(saveCmd)
	ClientCmd.AddCommand(loadCmd)
	ClientCmd.AddCommand(savesCmd)
	ClientCmd.AddCommand(deleteSaveCmd)
}

// requireSession adds the --session flag to cmd
func requireSession(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID (required)")
	_ = cmd.MarkFlagRequired("session") // nolint:errcheck // safe to ignore in init
}

// createClient creates a session service client
func createClient() (*v1alpha1.Client, func(), error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}
	return v1alpha1.NewClient(conn), cleanup, nil
}

// call invokes one method with a fresh connection and request deadline
func call(method string, req map[string]any) (map[string]any, error) {
	client, cleanup, err := createClient()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Call(ctx, method, req)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", method, err)
	}
	return resp, nil
}

// printYAML writes a response document in readable form
func printYAML(doc any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(doc)
}
