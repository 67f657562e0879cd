package session

import (
	"context"
	"strings"
	"sync"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/mapview"
	orchestrator "github.com/KirkDiggler/chimera-protocol/internal/orchestrators/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

// hosted is one session with its terminal and map view
type hosted struct {
	id         string
	controller *orchestrator.Controller
	term       *terminal.Terminal

	mu         sync.Mutex
	viewport   *mapview.Viewport
	selected   string
	mode       string
	modeReason string
}

func newHosted(id string, cfg Config, autoPilot bool) (*hosted, error) {
	term, err := terminal.New(&terminal.Config{
		IDGen: idgen.NewSequential("msg"),
		Clock: cfg.Clock,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create terminal")
	}

	h := &hosted{
		id:       id,
		term:     term,
		viewport: mapview.New(),
		mode:     HostMode,
	}
	h.viewport.OnNodeClick(func(nodeID string) { h.selected = nodeID })

	h.controller, err = orchestrator.New(&orchestrator.Config{
		SessionID:    id,
		Maps:         cfg.Maps,
		Templates:    cfg.Templates,
		DM:           cfg.DM,
		PlayerAI:     cfg.PlayerAI,
		Images:       cfg.Images,
		Prompts:      cfg.Prompts,
		Display:      headless{term: term},
		Modes:        h,
		Clock:        cfg.Clock,
		IDGen:        idgen.NewSequential(id + "_npc"),
		Roller:       cfg.Roller,
		Dispatch:     cfg.Dispatch,
		FallbackMode: cfg.FallbackMode,
		AITimeout:    cfg.AITimeout,
		AutoPilot:    autoPilot,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create controller")
	}
	return h, nil
}

// RequestModeChange records that the session asked to leave Chimera mode
func (h *hosted) RequestModeChange(_ context.Context, mode, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = mode
	h.modeReason = reason
}

func (h *hosted) view(afterID string) *View {
	msgs := h.term.Messages()
	if afterID != "" {
		for i, m := range msgs {
			if m.ID == afterID {
				msgs = msgs[i+1:]
				break
			}
		}
	}

	h.mu.Lock()
	mode, reason := h.mode, h.modeReason
	h.mu.Unlock()

	return &View{
		SessionID:  h.id,
		Status:     h.controller.Status(),
		Messages:   msgs,
		Notice:     h.term.CurrentNotice(),
		Mode:       mode,
		ModeReason: reason,
	}
}

func (h *hosted) submit(ctx context.Context, input string) (*SubmitOutput, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.InvalidArgument("input is required")
	}

	h.term.Submit(input)
	err := h.controller.Submit(ctx, input)
	switch {
	case err == nil:
		return &SubmitOutput{Accepted: true}, nil
	case refusal(err):
		notice := h.term.CurrentNotice()
		if notice == "" {
			notice = errors.GetMessage(err)
		}
		return &SubmitOutput{Notice: notice}, nil
	default:
		return nil, err
	}
}

// syncLocked points the viewport at the controller's current map and node
func (h *hosted) syncLocked() {
	h.viewport.SetGraph(h.controller.CurrentMap())
	if st := h.controller.Status().State; st != nil {
		h.viewport.SetCurrentNode(st.CurrentNodeID)
	}
}

func (h *hosted) selectNode(ctx context.Context, nodeID string) error {
	h.mu.Lock()
	h.syncLocked()
	h.selected = ""
	ok := h.viewport.Click(nodeID)
	target := h.selected
	h.mu.Unlock()

	if !ok {
		return errors.NotFoundf("node %s is not on the current map", nodeID)
	}

	return h.controller.Submit(ctx, "MOVE "+target)
}

func (h *hosted) render(cols, rows int, zoom float64) *RenderMapOutput {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.syncLocked()
	switch {
	case zoom < 0:
		h.viewport.Reset()
	case zoom > 0:
		h.viewport.Zoom(zoom)
	}

	out := &RenderMapOutput{Lines: h.viewport.Render(cols, rows)}
	if g := h.viewport.Graph(); g != nil {
		out.MapID = g.ID
		out.MapName = g.Name
	}
	return out
}

// headless is a display with no typing animation: AI messages complete as
// soon as they are appended
type headless struct {
	term *terminal.Terminal
}

func (d headless) Append(sender terminal.Sender, text string) (terminal.Message, bool) {
	msg, ok := d.term.Append(sender, text)
	if ok && sender.IsAI() {
		d.term.CompleteTyping(msg.ID)
	}
	return msg, ok
}

func (d headless) Notice(text string) {
	d.term.Notice(text)
}
