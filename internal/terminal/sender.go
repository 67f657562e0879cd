package terminal

// Sender identifies who produced a message
type Sender string

// Senders
const (
	SenderDM          Sender = "DM"
	SenderPlayerAI    Sender = "PLAYER_AI"
	SenderSystem      Sender = "SYSTEM"
	SenderUserInput   Sender = "USER_INPUT"
	SenderFacilitator Sender = "FACILITATOR"
)

// Display is how a sender is presented
type Display struct {
	Label string
	Color string
}

var displays = map[Sender]Display{
	SenderDM:          {Label: "DM", Color: "#00ff9f"},
	SenderPlayerAI:    {Label: "CHIMERA", Color: "#00b8ff"},
	SenderSystem:      {Label: "SYSTEM", Color: "#ffd300"},
	SenderUserInput:   {Label: "YOU", Color: "#e0e0e0"},
	SenderFacilitator: {Label: "FACILITATOR", Color: "#ff2079"},
}

// IsValid reports whether s is a known sender
func (s Sender) IsValid() bool {
	_, ok := displays[s]
	return ok
}

// Display returns the presentation metadata for s
func (s Sender) Display() Display {
	if d, ok := displays[s]; ok {
		return d
	}
	return Display{Label: string(s), Color: "#808080"}
}

// IsAI reports whether messages from s animate as typing
func (s Sender) IsAI() bool {
	return s == SenderDM || s == SenderPlayerAI
}

func (s Sender) dedups() bool {
	return s == SenderSystem || s == SenderDM
}
