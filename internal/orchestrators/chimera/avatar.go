package chimera

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// Avatar regeneration messages
const (
	MsgAvatarRegenQuota  = "Avatar regeneration quota exhausted (rate limited). Keeping the current avatar."
	MsgAvatarRegenFailed = "Avatar regeneration failed. Keeping the current avatar."
)

// RegenerateAvatar asks the image service for a new avatar. On success the
// result becomes the current avatar and joins the bounded history; on
// failure the avatar and history are unchanged. Only one regeneration runs
// at a time.
func (c *Controller) RegenerateAvatar(ctx context.Context) error {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return errors.FailedPrecondition("session disposed")
	}
	if c.state == nil {
		c.mu.Unlock()
		return errors.FailedPrecondition("no character to render")
	}
	if c.avatarBusy {
		c.mu.Unlock()
		return errors.FailedPrecondition("avatar generation already in progress")
	}
	c.avatarBusy = true
	s := c.state
	archetype, backstory := s.World.PlayerArchetype, s.World.PlayerBackstory
	c.mu.Unlock()

	slog.InfoContext(ctx, "Regenerating avatar", "session_id", c.cfg.SessionID)
	if c.cfg.OnChange != nil {
		c.cfg.OnChange()
	}

	c.cfg.Dispatch(func() {
		ref, genErr := c.generateAvatar(archetype, backstory)

		var ob outbox
		c.mu.Lock()
		c.avatarBusy = false
		if !c.alive {
			c.mu.Unlock()
			return
		}
		switch {
		case c.state != s:
			// restored while rendering; the result belongs to the old state
		case genErr != nil:
			ob.system(serviceFailureMessage(genErr, MsgAvatarRegenQuota, MsgAvatarRegenFailed))
		default:
			s.Player.PushAvatar(ref)
			ob.system("Avatar updated.")
		}
		c.mu.Unlock()

		if genErr != nil {
			slog.WarnContext(ctx, "Avatar regeneration failed",
				"session_id", c.cfg.SessionID,
				"quota", errors.IsQuotaExhausted(genErr),
				"error", genErr,
			)
		}
		c.flush(c.ctx, &ob)
	})
	return nil
}
