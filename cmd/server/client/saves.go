package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/chimera-protocol/internal/handlers/chimera/v1alpha1"
)

var (
	slot          string
	loadSessionID string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a session to a slot",
	RunE: func(_ *cobra.Command, _ []string) error {
		resp, err := call(v1alpha1.MethodSaveSession, map[string]any{
			"session_id": sessionID,
			"slot":       slot,
		})
		if err != nil {
			return err
		}

		save, _ := resp["save"].(map[string]any)
		fmt.Printf("Saved to %v (%v bytes)\n", save["slot"], save["size"])
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a save slot into a session",
	Long:  `Load a save slot. Without --session a new session is created for it.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		resp, err := call(v1alpha1.MethodLoadSession, map[string]any{
			"session_id": loadSessionID,
			"slot":       slot,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %s into session %v\n", slot, resp["session_id"])
		return nil
	},
}

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List save slots",
	RunE: func(_ *cobra.Command, _ []string) error {
		resp, err := call(v1alpha1.MethodListSaves, map[string]any{})
		if err != nil {
			return err
		}

		saves, _ := resp["saves"].([]any)
		if len(saves) == 0 {
			fmt.Println("No saves")
			return nil
		}
		for _, raw := range saves {
			s, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			fmt.Printf("%-20v %-32v %v\n", s["slot"], s["saved_at"], s["session_id"])
		}
		return nil
	},
}

var deleteSaveCmd = &cobra.Command{
	Use:   "delete-save",
	Short: "Delete a save slot",
	RunE: func(_ *cobra.Command, _ []string) error {
		if _, err := call(v1alpha1.MethodDeleteSave, map[string]any{"slot": slot}); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", slot)
		return nil
	},
}

func init() {
	requireSession(saveCmd)
	loadCmd.Flags().StringVar(&loadSessionID, "session", "", "Session to restore into (optional)")

	for _, cmd := range []*cobra.Command{saveCmd, loadCmd, deleteSaveCmd} {
		cmd.Flags().StringVar(&slot, "slot", "", "Save slot (required)")
		_ = cmd.MarkFlagRequired("slot") // nolint:errcheck // safe to ignore in init
	}
}
