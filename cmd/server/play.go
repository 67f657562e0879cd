package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	orchestrator "github.com/KirkDiggler/chimera-protocol/internal/orchestrators/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
	"github.com/KirkDiggler/chimera-protocol/internal/ui/play"
)

var (
	playOffline   bool
	playAutoPilot bool
	playLogFile   string
	playMarkdown  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a session in the terminal",
	Long:  `Start a new Chimera Protocol session and play it in a full-screen terminal UI.`,
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playOffline, "offline", false, "Use scripted generators instead of AI providers")
	playCmd.Flags().BoolVar(&playAutoPilot, "autopilot", false, "Let the player persona act when you are idle")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "Write logs to this file instead of discarding them")
	playCmd.Flags().BoolVar(&playMarkdown, "markdown", true, "Render DM messages as markdown")
}

// modeRecorder ends the program when the session asks to leave
type modeRecorder struct {
	mu      sync.Mutex
	program *tea.Program
	mode    string
	reason  string
}

func (r *modeRecorder) RequestModeChange(_ context.Context, mode, reason string) {
	r.mu.Lock()
	r.mode, r.reason = mode, reason
	p := r.program
	r.mu.Unlock()

	slog.Info("Mode change requested", "mode", mode, "reason", reason)
	if p != nil {
		go p.Quit()
	}
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the screen owns stdout so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if playLogFile != "" {
		f, err := os.OpenFile(playLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.Wrapf(err, "failed to open log file %s", playLogFile)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	slog.SetDefault(cfg.NewLogger(logOut))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	deps, err := buildDependencies(ctx, cfg, playOffline)
	if err != nil {
		return err
	}
	defer deps.Close()

	term, err := terminal.New(&terminal.Config{
		IDGen: idgen.NewSequential("msg"),
		Clock: deps.clock,
	})
	if err != nil {
		return err
	}

	modes := &modeRecorder{}
	controller, err := orchestrator.New(&orchestrator.Config{
		SessionID: idgen.NewUUID("session").Generate(),
		Maps:      deps.maps,
		Templates: deps.templates,
		DM:        deps.dm,
		PlayerAI:  deps.player,
		Images:    deps.images,
		Prompts:   deps.prompts,
		Display:   term,
		Modes:     modes,
		Clock:     deps.clock,
		IDGen:     idgen.NewSequential("npc"),
		AutoPilot: playAutoPilot || cfg.AutoPilot,
		AITimeout: cfg.AITimeout,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	defer controller.Dispose()

	term.OnSubmit(func(input string) {
		if err := controller.Submit(ctx, input); err != nil {
			slog.Debug("Input refused", "input", input, "error", err)
		}
	})
	term.OnTypingComplete(func(string) { controller.Process() })

	model, err := play.New(ctx, &play.Config{
		Session:  controller,
		Terminal: term,
		Markdown: playMarkdown,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	modes.mu.Lock()
	modes.program = p
	modes.mu.Unlock()

	// Send blocks until the program reads it, and callbacks can fire
	// from inside Update
	term.OnChange(func() { go p.Send(play.Refresh()) })

	if err := controller.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start session")
	}

	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "terminal ui failed")
	}

	modes.mu.Lock()
	defer modes.mu.Unlock()
	if modes.mode != "" {
		fmt.Printf("Session ended, switching to %s: %s\n", modes.mode, modes.reason)
	}
	return nil
}
