// Package errors provides structured errors for the Chimera session engine.
//
// Every failure that can reach a player is classified by a Code so callers can
// decide how to surface it without string matching:
//
//   - DataLoss: map or template data is internally inconsistent (a dangling
//     connection, a missing starting map). Fatal to character creation only.
//   - Unavailable: an AI text or image call failed. Recovered with a fallback.
//   - ResourceExhausted: the AI provider reported quota exhaustion. Recovered
//     like Unavailable but surfaced with its own message.
//   - InvalidArgument: the player asked for something illegal (an unconnected
//     move target, an unparseable snapshot).
//   - FailedPrecondition: the request arrived at the wrong time (input while
//     the AI is acting, a snapshot before creation finished).
//
// Creating errors:
//
//	err := errors.NotFoundf("map %s not found", mapID)
//	err := errors.DataIntegrityf("node %s connects to unknown node %s", from, to)
//
// Adding metadata:
//
//	err := errors.InvalidArgument("target not connected").
//	    WithMeta("from", current).
//	    WithMeta("to", target)
//
// Wrapping preserves the original code:
//
//	if err := repo.Save(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to save session")
//	}
//
// Checking:
//
//	if errors.IsQuotaExhausted(err) {
//	    // rate limit, not a generic failure
//	}
package errors
