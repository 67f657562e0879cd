package ai

import (
	"context"
	"sync"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

var defaultScript = []string{
	"The holo-arch stutters. Somewhere above the rain, a corporate drone adjusts its orbit and the plaza goes quiet.",
	"A vendor's screen flickers with your face for half a second before the feed dies. Someone knows you are here.",
	"Static crawls across every public terminal at once. The Chimera relay is awake, and it is counting.",
	"Footsteps echo behind you, then stop. When you turn there is only steam and the hum of cheap neon.",
	"A courier drone drops a sealed datachip at your feet and speeds off before you can read its markings.",
}

// ScriptedText replays a fixed list of lines in order, wrapping around. It
// lets sessions run without network access.
type ScriptedText struct {
	mu    sync.Mutex
	lines []string
	next  int
}

// NewScriptedText creates a scripted generator. With no lines it uses a
// built-in script.
func NewScriptedText(lines ...string) *ScriptedText {
	if len(lines) == 0 {
		lines = defaultScript
	}
	return &ScriptedText{lines: append([]string(nil), lines...)}
}

var _ TextGenerator = (*ScriptedText)(nil)

// GenerateText returns the next scripted line
func (s *ScriptedText) GenerateText(ctx context.Context, req *TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify("scripted", err, nil)
	}
	if req == nil {
		return "", errors.InvalidArgument("request is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.lines[s.next%len(s.lines)]
	s.next++
	return line, nil
}

// OfflineImages never produces an image. Sessions using it always take the
// default-avatar fallback.
type OfflineImages struct{}

var _ ImageGenerator = OfflineImages{}

// GenerateImage always fails with Unavailable
func (OfflineImages) GenerateImage(_ context.Context, _ *ImageRequest) (*Image, error) {
	return nil, errors.Unavailable("image generation is offline")
}
