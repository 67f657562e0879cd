package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/mapview"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/maps"
)

var (
	mapsDir    string
	renderCols int
	renderRows int
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Inspect map definitions",
}

var mapsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available maps",
	RunE:  runMapsList,
}

var mapsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check map definitions and the exits between them",
	RunE:  runMapsValidate,
}

var mapsRenderCmd = &cobra.Command{
	Use:   "render MAP_ID",
	Short: "Draw a map as text",
	Args:  cobra.ExactArgs(1),
	RunE:  runMapsRender,
}

func init() {
	mapsCmd.PersistentFlags().StringVar(&mapsDir, "dir", "", "Directory of map YAML files (default built-in maps)")
	mapsRenderCmd.Flags().IntVar(&renderCols, "cols", 80, "Columns")
	mapsRenderCmd.Flags().IntVar(&renderRows, "rows", 24, "Rows")

	mapsCmd.AddCommand(mapsListCmd)
	mapsCmd.AddCommand(mapsValidateCmd)
	mapsCmd.AddCommand(mapsRenderCmd)
}

func loadMaps() (maps.Repository, error) {
	if mapsDir == "" {
		return maps.LoadBuiltin()
	}
	return maps.LoadFS(os.DirFS(mapsDir))
}

func runMapsList(cmd *cobra.Command, _ []string) error {
	repo, err := loadMaps()
	if err != nil {
		return err
	}
	out, err := repo.List(cmd.Context(), &maps.ListInput{})
	if err != nil {
		return err
	}

	for _, g := range out.Maps {
		fmt.Printf("%-10s %-24s %3d nodes  entry %s\n", g.ID, g.Name, len(g.Nodes), g.DefaultEntryNodeID)
	}
	return nil
}

func runMapsValidate(cmd *cobra.Command, _ []string) error {
	repo, err := loadMaps()
	if err != nil {
		return err
	}
	out, err := repo.List(cmd.Context(), &maps.ListInput{})
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(out.Maps))
	for _, g := range out.Maps {
		known[g.ID] = true
	}

	var problems []string
	for _, g := range out.Maps {
		for _, id := range g.NodeIDs() {
			node := g.Nodes[id]
			if node.IsExitNode && !known[node.ExitLeadsToMapID] {
				problems = append(problems, fmt.Sprintf("%s/%s: exit leads to unknown map %q", g.ID, id, node.ExitLeadsToMapID))
			}
		}
	}
	if len(problems) > 0 {
		return errors.DataIntegrityf("%d broken exits:\n  %s", len(problems), strings.Join(problems, "\n  "))
	}

	fmt.Printf("%d maps OK\n", len(out.Maps))
	return nil
}

func runMapsRender(_ *cobra.Command, args []string) error {
	repo, err := loadMaps()
	if err != nil {
		return err
	}
	out, err := repo.Get(context.Background(), &maps.GetInput{MapID: args[0]})
	if err != nil {
		return err
	}

	vp := mapview.New()
	vp.SetGraph(out.Map)
	vp.SetCurrentNode(out.Map.DefaultEntryNodeID)

	fmt.Printf("%s [%s]\n", out.Map.Name, out.Map.ID)
	for _, line := range vp.Render(renderCols, renderRows) {
		fmt.Println(line)
	}
	return nil
}
