// Package terminal sequences display messages for a session: message log,
// the single typing animation slot, transient notices and command history.
package terminal

import (
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
)

// DefaultHistoryLimit bounds command history
const DefaultHistoryLimit = 20

// Message is one line in the log
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Color     string    `json:"color"`
	Timestamp time.Time `json:"timestamp"`
}

// Config holds the dependencies of a Terminal
type Config struct {
	IDGen        idgen.Generator
	Clock        clock.Clock
	HistoryLimit int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.IDGen == nil {
		vb.RequiredField("IDGen")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.HistoryLimit < 0 {
		vb.Field("HistoryLimit", "must not be negative")
	}
	return vb.Build()
}

// Terminal is safe for concurrent use. Callbacks run after the internal lock
// is released, so they may call back into the Terminal.
type Terminal struct {
	idGen        idgen.Generator
	clock        clock.Clock
	historyLimit int

	mu       sync.Mutex
	messages []Message
	typingID string
	acting   bool
	notice   string
	history  []string
	// histPos indexes history while navigating; len(history) means "not navigating"
	histPos int

	onSubmit         func(input string)
	onTypingComplete func(messageID string)
	onChange         func()
}

// New creates a terminal
func New(cfg *Config) (*Terminal, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid terminal config")
	}

	limit := cfg.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	return &Terminal{
		idGen:        cfg.IDGen,
		clock:        cfg.Clock,
		historyLimit: limit,
	}, nil
}

// OnSubmit sets the handler for submitted input
func (t *Terminal) OnSubmit(fn func(input string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSubmit = fn
}

// OnTypingComplete sets the handler fired when a typing animation finishes
func (t *Terminal) OnTypingComplete(fn func(messageID string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTypingComplete = fn
}

// OnChange sets a handler fired after any visible change
func (t *Terminal) OnChange(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Append adds a message. SYSTEM and DM messages identical to the immediately
// previous message are dropped and Append reports false. An AI message
// becomes the typing message and raises the acting indicator; a message that
// was still typing is completed first.
func (t *Terminal) Append(sender Sender, text string) (Message, bool) {
	t.mu.Lock()

	if sender.dedups() && len(t.messages) > 0 {
		last := t.messages[len(t.messages)-1]
		if last.Sender == sender && last.Text == text {
			t.mu.Unlock()
			return last, false
		}
	}

	msg := Message{
		ID:        t.idGen.Generate(),
		Sender:    sender,
		Text:      text,
		Color:     sender.Display().Color,
		Timestamp: t.clock.Now(),
	}
	t.messages = append(t.messages, msg)

	var completed string
	if sender.IsAI() {
		completed = t.typingID
		t.typingID = msg.ID
		t.acting = true
	}
	onTyping, onChange := t.onTypingComplete, t.onChange
	t.mu.Unlock()

	if completed != "" && onTyping != nil {
		onTyping(completed)
	}
	if onChange != nil {
		onChange()
	}
	return msg, true
}

// CompleteTyping finishes the typing animation of id. It clears the acting
// indicator and fires the typing-complete handler. Stale ids are ignored.
func (t *Terminal) CompleteTyping(id string) bool {
	t.mu.Lock()
	if id == "" || id != t.typingID {
		t.mu.Unlock()
		return false
	}
	t.typingID = ""
	t.acting = false
	onTyping, onChange := t.onTypingComplete, t.onChange
	t.mu.Unlock()

	if onTyping != nil {
		onTyping(id)
	}
	if onChange != nil {
		onChange()
	}
	return true
}

// Messages returns a copy of the log
func (t *Terminal) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

// TypingID returns the id of the message currently typing, or ""
func (t *Terminal) TypingID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typingID
}

// IsActing reports whether an AI message is still being presented
func (t *Terminal) IsActing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.acting
}

// Notice sets a transient notice that is not part of the log
func (t *Terminal) Notice(text string) {
	t.mu.Lock()
	t.notice = text
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// CurrentNotice returns the transient notice and clears it
func (t *Terminal) CurrentNotice() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.notice
	t.notice = ""
	return n
}

// Submit records input in history and hands it to the submit handler.
// Blank input is ignored.
func (t *Terminal) Submit(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	t.mu.Lock()
	t.history = append(t.history, input)
	if over := len(t.history) - t.historyLimit; over > 0 {
		t.history = append([]string(nil), t.history[over:]...)
	}
	t.histPos = len(t.history)
	onSubmit := t.onSubmit
	t.mu.Unlock()

	if onSubmit != nil {
		onSubmit(input)
	}
	return true
}

// History returns the recorded inputs, oldest first
func (t *Terminal) History() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.history...)
}

// HistoryUp steps to the previous input. At the oldest entry it stays put.
func (t *Terminal) HistoryUp() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.history) == 0 {
		return ""
	}
	if t.histPos > 0 {
		t.histPos--
	}
	return t.history[t.histPos]
}

// HistoryDown steps to the next input; past the newest it returns "".
func (t *Terminal) HistoryDown() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.histPos < len(t.history) {
		t.histPos++
	}
	if t.histPos == len(t.history) {
		return ""
	}
	return t.history[t.histPos]
}
