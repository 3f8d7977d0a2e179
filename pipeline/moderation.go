package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chanuka/bound"
)

// Moderation verdicts. Rejected is a real verdict from the collaborator;
// Flagged additionally absorbs every failure mode, so a broken moderation
// service can only ever hold content for review, never approve it.
const (
	VerdictApproved = "approved"
	VerdictFlagged  = "flagged"
	VerdictRejected = "rejected"
)

// Verdict is the moderation collaborator's answer for one payload.
type Verdict struct {
	Status     string
	Confidence float64
}

// Moderator is the external content-moderation collaborator. Review may take
// arbitrarily long; the pipeline bounds it with its own timeout.
type Moderator interface {
	Review(ctx context.Context, content string) (Verdict, error)
}

// ModerationHook wires a Moderator into a binding for the operations that
// need it. Content extracts the text to review from the validated input;
// Apply stamps the resolved verdict onto the entity before persistence.
type ModerationHook[E any] struct {
	Moderator Moderator
	Timeout   time.Duration
	Content   func(in map[string]any) string
	Apply     func(ent E, verdict string) E
}

const defaultModerationTimeout = 2 * time.Second

// resolve runs the review under its own deadline and fails closed: a timeout,
// an error, an unknown status, or a confidence outside [0,1] all resolve to
// flagged.
func (h *ModerationHook[E]) resolve(ctx context.Context, content string, log zerolog.Logger) string {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultModerationTimeout
	}
	mctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := h.Moderator.Review(mctx, content)
	if err != nil {
		merr := &bound.ModerationServiceError{Cause: err}
		log.Warn().Err(merr).Msg("moderation unavailable, flagging for manual review")
		return VerdictFlagged
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		merr := &bound.ModerationServiceError{Status: v.Status, Confidence: v.Confidence}
		log.Warn().Err(merr).Msg("moderation confidence out of contract, flagging")
		return VerdictFlagged
	}
	switch v.Status {
	case VerdictApproved, VerdictFlagged, VerdictRejected:
		return v.Status
	}
	merr := &bound.ModerationServiceError{Status: v.Status, Confidence: v.Confidence}
	log.Warn().Err(merr).Msg("moderation status out of contract, flagging")
	return VerdictFlagged
}
