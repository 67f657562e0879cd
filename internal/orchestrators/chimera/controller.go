// Package chimera implements the Chimera Protocol session controller: the
// character creation pipeline, the exploration turn loop with its
// facilitator checkpoint, player action resolution against the map graph,
// encounters and session snapshots.
package chimera

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/chimera-protocol/internal/clients/ai"
	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
	"github.com/KirkDiggler/chimera-protocol/internal/prompts"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/maps"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/templates"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

// Defaults applied by Config.Validate
const (
	DefaultFallbackMode   = "default"
	DefaultAITimeout      = 60 * time.Second
	DefaultStepDelay      = 1500 * time.Millisecond
	DefaultThinkingDelay  = 1200 * time.Millisecond
	DefaultTurnDelay      = 800 * time.Millisecond
	DefaultAutoPilotDelay = 4 * time.Second

	maxDMHistory = 12
)

// Config holds the dependencies of a Controller
type Config struct {
	SessionID string

	Maps      maps.Repository
	Templates templates.Repository
	DM        ai.TextGenerator
	// PlayerAI voices the player persona; defaults to DM
	PlayerAI ai.TextGenerator
	Images   ai.ImageGenerator
	Prompts  *prompts.Set

	Display Display
	Modes   ModeSwitcher
	// OnChange is called after every externally visible change
	OnChange func()

	Clock  clock.Clock
	IDGen  idgen.Generator
	Roller dice.Roller
	// Dispatch runs AI steps; defaults to a new goroutine per step
	Dispatch func(func())

	StartMapID   string
	FallbackMode string

	AITimeout     time.Duration
	StepDelay     time.Duration
	ThinkingDelay time.Duration
	TurnDelay     time.Duration

	// AutoPilot lets the player persona act when the human does not
	AutoPilot      bool
	AutoPilotDelay time.Duration
}

// Validate ensures required dependencies are present and applies defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("SessionID", c.SessionID, vb)
	if c.Maps == nil {
		vb.RequiredField("Maps")
	}
	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	if c.DM == nil {
		vb.RequiredField("DM")
	}
	if c.Images == nil {
		vb.RequiredField("Images")
	}
	if c.Display == nil {
		vb.RequiredField("Display")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGen == nil {
		vb.RequiredField("IDGen")
	}
	if vb.HasErrors() {
		return vb.Build()
	}

	if c.PlayerAI == nil {
		c.PlayerAI = c.DM
	}
	if c.Prompts == nil {
		c.Prompts = prompts.Default()
	}
	if c.Roller == nil {
		c.Roller = dice.DefaultRoller
	}
	if c.Dispatch == nil {
		c.Dispatch = func(f func()) { go f() }
	}
	if c.StartMapID == "" {
		c.StartMapID = maps.StartMapID
	}
	if c.FallbackMode == "" {
		c.FallbackMode = DefaultFallbackMode
	}
	setDefault(&c.AITimeout, DefaultAITimeout)
	setDefault(&c.StepDelay, DefaultStepDelay)
	setDefault(&c.ThinkingDelay, DefaultThinkingDelay)
	setDefault(&c.TurnDelay, DefaultTurnDelay)
	setDefault(&c.AutoPilotDelay, DefaultAutoPilotDelay)

	return nil
}

func setDefault(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

// creationProgress records which one-time creation beats have fired
type creationProgress struct {
	archetypes       bool
	playerChoice     bool
	avatar           bool
	avatarDone       bool
	incitingIncident bool
}

// Controller owns one session. All state is guarded by mu; the lock is never
// held while calling AI services, repositories or the display.
type Controller struct {
	cfg Config

	// ctx is canceled by Dispose so in-flight AI calls abort
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	alive    bool
	creation CreationState
	progress creationProgress
	// generation changes whenever creation is reset or replaced; a creation
	// step only applies its result if it is unchanged
	generation int
	state    *chimera.GameState
	graph    *chimera.MapGraph

	busy          bool
	thinking      bool
	avatarBusy    bool
	emergencyStop bool
	halted        bool

	// pendingAction is the accepted player action the next turn narrates
	pendingAction string

	archetype *chimera.Template
	backstory string
	avatarRef string
	dmHistory []ai.Turn
	timers    map[*pendingTimer]struct{}
}

type pendingTimer struct {
	name  string
	timer clock.Timer
}

// New creates a controller in the IDLE state
func New(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:      *cfg,
		ctx:      ctx,
		cancel:   cancel,
		alive:    true,
		creation: CreationIdle,
		timers:   make(map[*pendingTimer]struct{}),
	}, nil
}

// Start begins character creation for a fresh session
func (c *Controller) Start(ctx context.Context) error {
	var ob outbox

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return errors.FailedPrecondition("session disposed")
	}
	if c.creation != CreationIdle || c.state != nil {
		c.mu.Unlock()
		return errors.FailedPreconditionf("session already started (%s)", c.creation)
	}

	c.progress = creationProgress{}
	c.creation = CreationAwaitingArchetypes
	ob.system(MsgInitialized)
	c.scheduleLocked(c.cfg.StepDelay, "creation", c.Process)
	c.mu.Unlock()

	slog.InfoContext(ctx, "Chimera session started", "session_id", c.cfg.SessionID)
	c.flush(ctx, &ob)
	return nil
}

// Process advances the session by at most one step. It is the single entry
// point run after every external event and is safe to call at any time.
func (c *Controller) Process() {
	ctx := c.ctx
	var ob outbox

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}

	var step func()
	if c.creation != CreationComplete {
		step = c.nextCreationStepLocked(ctx, &ob)
	} else {
		step = c.nextTurnLocked(ctx)
	}
	c.mu.Unlock()

	c.flush(ctx, &ob)
	if step != nil {
		c.cfg.Dispatch(step)
	}
}

// Dispose tears the session down. Pending timers are canceled and any
// deferred callback that still fires becomes a no-op.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	c.alive = false
	c.cancelTimersLocked()
	c.mu.Unlock()

	c.cancel()
	slog.Info("Chimera session disposed", "session_id", c.cfg.SessionID)
}

// SetEmergencyStop raises or clears the emergency stop. Raising it cancels
// pending timers and hands control back to the human if no AI call is in
// flight. Clearing it only re-arms the autopilot; a session left waiting on
// a turn the stop suppressed goes back to awaiting the player.
func (c *Controller) SetEmergencyStop(ctx context.Context, on bool) {
	var ob outbox

	c.mu.Lock()
	if c.emergencyStop == on {
		c.mu.Unlock()
		return
	}
	c.emergencyStop = on
	if on {
		c.cancelTimersLocked()
		c.thinking = false
		if c.state != nil && !c.busy && !c.state.IsAwaitingPlayerAction && !c.state.World.IsAwaitingFacilitator {
			c.state.IsAwaitingPlayerAction = true
		}
		ob.system("EMERGENCY STOP engaged. Autonomous activity suspended.")
	} else {
		ob.system("Emergency stop cleared.")
		if s := c.state; s != nil && !c.busy && !c.thinking && !c.halted &&
			!s.IsAwaitingPlayerAction && !s.World.IsAwaitingFacilitator {
			s.IsAwaitingPlayerAction = true
			ob.system("Awaiting player action.")
		}
		c.scheduleAutoPilotLocked()
	}
	c.mu.Unlock()

	slog.WarnContext(ctx, "Emergency stop toggled", "session_id", c.cfg.SessionID, "active", on)
	c.flush(ctx, &ob)
}

// Status returns a snapshot of the controller's state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		SessionID:        c.cfg.SessionID,
		Creation:         c.creation,
		Busy:             c.busy || c.thinking,
		EmergencyStop:    c.emergencyStop,
		Halted:           c.halted,
		AvatarInProgress: c.avatarBusy,
		State:            c.state.Clone(),
	}
}

// CurrentMap returns the graph the player is on, or nil before creation
// completes. The graph is shared and read-only.
func (c *Controller) CurrentMap() *chimera.MapGraph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph
}

// SessionID returns the id of the session
func (c *Controller) SessionID() string {
	return c.cfg.SessionID
}

// scheduleLocked runs f after d unless the session is disposed first or the
// timer is canceled. Caller holds mu.
func (c *Controller) scheduleLocked(d time.Duration, name string, f func()) {
	if !c.alive {
		return
	}
	h := &pendingTimer{name: name}
	h.timer = c.cfg.Clock.AfterFunc(d, func() {
		c.mu.Lock()
		_, pending := c.timers[h]
		delete(c.timers, h)
		alive := c.alive
		c.mu.Unlock()

		if !alive || !pending {
			return
		}
		f()
	})
	c.timers[h] = struct{}{}
}

func (c *Controller) cancelTimersLocked() {
	for h := range c.timers {
		h.timer.Stop()
		delete(c.timers, h)
	}
}

// aiContext bounds one service call
func (c *Controller) aiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, c.cfg.AITimeout)
}

type outMsg struct {
	sender terminal.Sender
	text   string
}

// outbox collects output produced under the lock so it can be delivered
// after the lock is released
type outbox struct {
	msgs   []outMsg
	notice string
	mode   string
	reason string
}

func (o *outbox) say(sender terminal.Sender, text string) {
	o.msgs = append(o.msgs, outMsg{sender: sender, text: text})
}

func (o *outbox) system(text string) {
	o.say(terminal.SenderSystem, text)
}

func (o *outbox) requestMode(mode, reason string) {
	o.mode = mode
	o.reason = reason
}

func (c *Controller) flush(ctx context.Context, ob *outbox) {
	for _, m := range ob.msgs {
		c.cfg.Display.Append(m.sender, m.text)
	}
	if ob.notice != "" {
		c.cfg.Display.Notice(ob.notice)
	}
	if ob.mode != "" && c.cfg.Modes != nil {
		slog.InfoContext(ctx, "Requesting mode change",
			"session_id", c.cfg.SessionID,
			"mode", ob.mode,
			"reason", ob.reason,
		)
		c.cfg.Modes.RequestModeChange(ctx, ob.mode, ob.reason)
	}
	if c.cfg.OnChange != nil {
		c.cfg.OnChange()
	}
}

// serviceFailureMessage picks the user-facing text for a failed AI call
func serviceFailureMessage(err error, quotaMsg, genericMsg string) string {
	if errors.IsQuotaExhausted(err) {
		return quotaMsg
	}
	return genericMsg
}

func (c *Controller) rememberDMLocked(prompt, reply string) {
	c.dmHistory = append(c.dmHistory,
		ai.Turn{Role: ai.RoleUser, Text: prompt},
		ai.Turn{Role: ai.RoleModel, Text: reply},
	)
	if over := len(c.dmHistory) - maxDMHistory; over > 0 {
		c.dmHistory = append([]ai.Turn(nil), c.dmHistory[over:]...)
	}
}
