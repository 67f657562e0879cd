package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/chimera-protocol/internal/handlers/chimera/v1alpha1"
)

var (
	autopilot    bool
	afterMessage string
	showState    bool
	renderCols   int
	renderRows   int
	renderZoom   float64
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := map[string]any{}
		if cmd.Flags().Changed("autopilot") {
			req["autopilot"] = autopilot
		}

		resp, err := call(v1alpha1.MethodCreateSession, req)
		if err != nil {
			return err
		}

		id := resp["session_id"]
		fmt.Printf("Session created: %v\n\n", id)
		fmt.Printf("Follow along: chimera client get --session %v\n", id)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the message log and status of a session",
	RunE: func(_ *cobra.Command, _ []string) error {
		resp, err := call(v1alpha1.MethodGetSession, map[string]any{
			"session_id":       sessionID,
			"after_message_id": afterMessage,
		})
		if err != nil {
			return err
		}

		printMessages(resp)
		if notice, _ := resp["notice"].(string); notice != "" {
			fmt.Printf("\n! %s\n", notice)
		}
		if mode, _ := resp["mode"].(string); mode != "" {
			fmt.Printf("\nSession handed off to %s: %v\n", mode, resp["mode_reason"])
		}
		fmt.Println()
		if showState {
			return printYAML(map[string]any{"status": resp["status"], "state": resp["state"]})
		}
		return printYAML(map[string]any{"status": resp["status"]})
	},
}

var sayCmd = &cobra.Command{
	Use:   "say TEXT...",
	Short: "Submit player input",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		resp, err := call(v1alpha1.MethodSubmit, map[string]any{
			"session_id": sessionID,
			"input":      strings.Join(args, " "),
		})
		if err != nil {
			return err
		}

		if accepted, _ := resp["accepted"].(bool); !accepted {
			fmt.Printf("Refused: %v\n", resp["notice"])
			return nil
		}
		fmt.Println("Accepted")
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move NODE_ID",
	Short: "Move to an adjacent map node",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if _, err := call(v1alpha1.MethodSelectNode, map[string]any{
			"session_id": sessionID,
			"node_id":    args[0],
		}); err != nil {
			return err
		}
		fmt.Printf("Moving to %s\n", args[0])
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Toggle the emergency stop",
	RunE: func(cmd *cobra.Command, _ []string) error {
		off, _ := cmd.Flags().GetBool("off")
		if _, err := call(v1alpha1.MethodSetEmergencyStop, map[string]any{
			"session_id": sessionID,
			"active":     !off,
		}); err != nil {
			return err
		}
		if off {
			fmt.Println("Emergency stop released")
		} else {
			fmt.Println("Emergency stop engaged")
		}
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume autonomous play",
	RunE: func(_ *cobra.Command, _ []string) error {
		_, err := call(v1alpha1.MethodResume, map[string]any{"session_id": sessionID})
		return err
	},
}

var renderCmd = &cobra.Command{
	Use:   "map",
	Short: "Draw the current map",
	RunE: func(_ *cobra.Command, _ []string) error {
		resp, err := call(v1alpha1.MethodRenderMap, map[string]any{
			"session_id": sessionID,
			"cols":       renderCols,
			"rows":       renderRows,
			"zoom":       renderZoom,
		})
		if err != nil {
			return err
		}

		if name, _ := resp["map_name"].(string); name != "" {
			fmt.Printf("%s [%v]\n", name, resp["map_id"])
		}
		lines, _ := resp["lines"].([]any)
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close a session",
	RunE: func(_ *cobra.Command, _ []string) error {
		if _, err := call(v1alpha1.MethodCloseSession, map[string]any{"session_id": sessionID}); err != nil {
			return err
		}
		fmt.Println("Session closed")
		return nil
	},
}

func init() {
	createCmd.Flags().BoolVar(&autopilot, "autopilot", false, "Let the player persona act on its own")

	getCmd.Flags().StringVar(&afterMessage, "after", "", "Only show messages after this message ID")
	getCmd.Flags().BoolVar(&showState, "state", false, "Include the full game state")
	stopCmd.Flags().Bool("off", false, "Release the emergency stop")
	renderCmd.Flags().IntVar(&renderCols, "cols", 80, "Columns")
	renderCmd.Flags().IntVar(&renderRows, "rows", 24, "Rows")
	renderCmd.Flags().Float64Var(&renderZoom, "zoom", 0, "Zoom factor, negative resets")

	for _, cmd := range []*cobra.Command{getCmd, sayCmd, moveCmd, stopCmd, resumeCmd, renderCmd, closeCmd} {
		requireSession(cmd)
	}
}

func printMessages(resp map[string]any) {
	messages, _ := resp["messages"].([]any)
	for _, raw := range messages {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("[%v] %v: %v\n", m["id"], m["sender"], m["text"])
	}
}
