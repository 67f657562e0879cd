// Package play is the interactive terminal screen for a single Chimera
// session: the message log with its typing animation, the map view, the
// character panel and the command line.
package play

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/mapview"
	orchestrator "github.com/KirkDiggler/chimera-protocol/internal/orchestrators/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

// Defaults for the typing animation
const (
	DefaultCharsPerTick = 3
	DefaultTickInterval = 25 * time.Millisecond
)

const (
	sidebarMinWidth = 36
	inputHeight     = 3
)

// Session is the part of the controller the screen drives
type Session interface {
	Status() orchestrator.Status
	CurrentMap() *chimera.MapGraph
	SetEmergencyStop(ctx context.Context, on bool)
	RegenerateAvatar(ctx context.Context) error
	Process()
}

// Config holds the dependencies of a Model
type Config struct {
	Session  Session
	Terminal *terminal.Terminal

	CharsPerTick int
	TickInterval time.Duration
	// Markdown renders finished DM messages through glamour
	Markdown bool
}

// Validate ensures required dependencies are present and applies defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Session == nil {
		vb.RequiredField("Session")
	}
	if c.Terminal == nil {
		vb.RequiredField("Terminal")
	}
	if vb.HasErrors() {
		return vb.Build()
	}
	if c.CharsPerTick <= 0 {
		c.CharsPerTick = DefaultCharsPerTick
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	return nil
}

type refreshMsg struct{}

type typingTickMsg struct{}

// Refresh tells the screen that the session changed. Background callers
// must deliver it with tea.Program.Send from their own goroutine.
func Refresh() tea.Msg {
	return refreshMsg{}
}

// TypingTick advances the typing animation by one step
func TypingTick() tea.Msg {
	return typingTickMsg{}
}

// Model is the bubbletea model of the play screen
type Model struct {
	ctx     context.Context
	session Session
	term    *terminal.Terminal
	cfg     Config

	mapView *mapview.Viewport
	input   textinput.Model
	log     viewport.Model
	spinner spinner.Model
	md      *glamour.TermRenderer

	width, height int
	mapCols       int
	mapRows       int
	// mapOriginX and mapOriginY locate the map drawing area on screen
	mapOriginX, mapOriginY int

	typingID string
	revealed int
	ticking  bool
	notice   string
}

// New creates the play screen
func New(ctx context.Context, cfg *Config) (*Model, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid play config")
	}

	ti := textinput.New()
	ti.Placeholder = "MOVE <node>, EXIT, HELP, or just say what you do"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.PromptStyle = lipgloss.NewStyle().Foreground(neonPink).Bold(true)
	ti.PlaceholderStyle = mutedStyle.Copy().Italic(true)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(neonCyan)

	m := &Model{
		ctx:     ctx,
		session: cfg.Session,
		term:    cfg.Terminal,
		cfg:     *cfg,
		mapView: mapview.New(),
		input:   ti,
		log:     viewport.New(80, 20),
		spinner: sp,
	}

	if cfg.Markdown {
		md, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err == nil {
			m.md = md
		}
	}

	m.mapView.OnNodeClick(func(nodeID string) {
		m.term.Submit("MOVE " + nodeID)
	})
	return m, nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, Refresh)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		cmds = append(cmds, m.sync())

	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
		cmds = append(cmds, cmd, m.sync())

	case tea.MouseMsg:
		if cmd := m.handleMouse(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.sync())

	case refreshMsg:
		cmds = append(cmds, m.sync())

	case typingTickMsg:
		m.ticking = false
		cmds = append(cmds, m.advanceTyping(), m.sync())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return nil, true
	case tea.KeyEnter:
		text := m.input.Value()
		m.input.Reset()
		m.term.Submit(text)
		return nil, false
	case tea.KeyUp:
		m.input.SetValue(m.term.HistoryUp())
		m.input.CursorEnd()
		return nil, false
	case tea.KeyDown:
		m.input.SetValue(m.term.HistoryDown())
		m.input.CursorEnd()
		return nil, false
	case tea.KeyCtrlE:
		m.session.SetEmergencyStop(m.ctx, !m.session.Status().EmergencyStop)
		return nil, false
	case tea.KeyCtrlR:
		if m.session.Status().EmergencyStop {
			m.notice = "Clear the emergency stop (ctrl+e) before resuming."
			return nil, false
		}
		m.session.Process()
		return nil, false
	case tea.KeyCtrlA:
		if err := m.session.RegenerateAvatar(m.ctx); err != nil {
			m.notice = errors.GetMessage(err)
		}
		return nil, false
	case tea.KeyCtrlX:
		m.mapView.Reset()
		return nil, false
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return cmd, false
	}

	switch msg.String() {
	case "ctrl+up":
		m.mapView.ZoomIn()
		return nil, false
	case "ctrl+down":
		m.mapView.ZoomOut()
		return nil, false
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd, false
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	col, row := msg.X-m.mapOriginX, msg.Y-m.mapOriginY
	inMap := col >= 0 && row >= 0 && col < m.mapCols && row < m.mapRows

	switch msg.Type {
	case tea.MouseLeft:
		if !inMap {
			return nil
		}
		if id, ok := m.mapView.NodeAtCell(col, row, m.mapCols, m.mapRows); ok {
			m.mapView.Click(id)
		}
		return nil
	case tea.MouseWheelUp, tea.MouseWheelDown:
		if inMap {
			delta := 1.0
			if msg.Type == tea.MouseWheelUp {
				delta = -1
			}
			m.mapView.Wheel(delta)
			return nil
		}
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return cmd
	}
	return nil
}

// sync pulls terminal and session state into the model
func (m *Model) sync() tea.Cmd {
	if id := m.term.TypingID(); id != m.typingID {
		m.typingID = id
		m.revealed = 0
	}
	if n := m.term.CurrentNotice(); n != "" {
		m.notice = n
	}

	m.mapView.SetGraph(m.session.CurrentMap())
	if st := m.session.Status().State; st != nil {
		m.mapView.SetCurrentNode(st.CurrentNodeID)
	}

	atBottom := m.log.AtBottom()
	m.log.SetContent(m.renderLog())
	if atBottom || m.typingID != "" {
		m.log.GotoBottom()
	}

	if m.typingID != "" && !m.ticking {
		m.ticking = true
		return tea.Tick(m.cfg.TickInterval, func(time.Time) tea.Msg { return TypingTick() })
	}
	return nil
}

// advanceTyping reveals more of the typing message and completes it once
// fully shown
func (m *Model) advanceTyping() tea.Cmd {
	if m.typingID == "" {
		return nil
	}
	text, ok := m.messageText(m.typingID)
	if !ok {
		return nil
	}

	m.revealed += m.cfg.CharsPerTick
	if m.revealed >= len([]rune(text)) {
		id := m.typingID
		m.typingID = ""
		m.revealed = 0
		m.term.CompleteTyping(id)
	}
	return nil
}

func (m *Model) messageText(id string) (string, bool) {
	for _, msg := range m.term.Messages() {
		if msg.ID == id {
			return msg.Text, true
		}
	}
	return "", false
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	sidebar := width / 3
	if sidebar < sidebarMinWidth {
		sidebar = sidebarMinWidth
	}
	logWidth := width - sidebar - 2
	if logWidth < 20 {
		logWidth = 20
	}
	m.log.Width = logWidth
	m.log.Height = max(height-inputHeight-2, 3)
	m.input.Width = width - 4

	// map panel: border (1) and padding (1) on each side, title row on top
	m.mapCols = max(sidebar-4, 10)
	m.mapRows = max(height/2-4, 5)
	m.mapOriginX = logWidth + 2 + 2
	m.mapOriginY = 2

	if m.md != nil {
		if md, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(logWidth-4)); err == nil {
			m.md = md
		}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.width == 0 {
		return "Establishing neural link..."
	}

	left := m.log.View()
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderMap(), m.renderStatus())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	footer := m.input.View()
	if m.notice != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, noticeStyle.Render(m.notice), footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m *Model) renderLog() string {
	var b strings.Builder
	for _, msg := range m.term.Messages() {
		d := msg.Sender.Display()
		label := labelStyle.Copy().Foreground(lipgloss.Color(msg.Color)).Render(d.Label + ":")

		text := msg.Text
		typing := msg.ID == m.typingID
		if typing {
			runes := []rune(text)
			text = string(runes[:min(m.revealed, len(runes))]) + "▌"
		} else if msg.Sender == terminal.SenderDM && m.md != nil {
			if out, err := m.md.Render(text); err == nil {
				text = strings.TrimSpace(out)
			}
		}

		fmt.Fprintf(&b, "%s %s\n\n", label, text)
		if typing {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderMap() string {
	title := "NO SIGNAL"
	if g := m.mapView.Graph(); g != nil {
		title = fmt.Sprintf("%s [%s]", g.Name, g.ID)
	}
	lines := m.mapView.Render(m.mapCols, m.mapRows)
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		mapStyle.Render(strings.Join(lines, "\n")),
	))
}

func (m *Model) renderStatus() string {
	st := m.session.Status()

	var rows []string
	switch {
	case st.EmergencyStop:
		rows = append(rows, alertStyle.Render("EMERGENCY STOP"))
	case st.Halted:
		rows = append(rows, alertStyle.Render("HALTED"))
	case st.Busy || m.term.IsActing():
		rows = append(rows, m.spinner.View()+" processing")
	}

	if st.State == nil {
		rows = append(rows, mutedStyle.Render("creation: "+string(st.Creation)))
		return panelStyle.Render(strings.Join(rows, "\n"))
	}

	p := st.State.Player
	rows = append(rows,
		titleStyle.Render(p.Name),
		fmt.Sprintf("HP %d/%d  ARM %d  LVL %d", p.HP.Current, p.HP.Max, p.Armor, p.Level),
		fmt.Sprintf("mode: %s", st.State.Mode),
		fmt.Sprintf("node: %s", st.State.CurrentNodeID),
		fmt.Sprintf("turns: %d/%d", st.State.World.ChimeraTurnCount, orchestrator.TurnBudget),
	)
	if st.State.Mode == chimera.ModeCombat {
		rows = append(rows, fmt.Sprintf("round %d, acting: %s", st.State.Round, st.State.ActiveCombatantID()))
	}
	if st.AvatarInProgress {
		rows = append(rows, m.spinner.View()+" rendering avatar")
	}
	for _, q := range st.State.Quests {
		if q.Status == chimera.QuestStatusActive {
			rows = append(rows, mutedStyle.Render("quest: "+q.Title))
		}
	}
	rows = append(rows, mutedStyle.Render("ctrl+e stop  ctrl+r resume  ctrl+a avatar"))
	return panelStyle.Render(strings.Join(rows, "\n"))
}
