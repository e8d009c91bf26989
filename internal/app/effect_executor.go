// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/flairbot/internal/core/effects"
	"github.com/example/flairbot/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place moderation I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) (ExecutionResult, error)
}

// ExecutionResult counts what a plan actually did.
type ExecutionResult struct {
	Halted    bool // a forbidden effect stopped the plan
	Forbidden int
	Messaged  int
	Replied   int
	Flaired   int
	Removed   int
	Untracked int
}

// DefaultEffectExecutor implements EffectExecutor against the forum port,
// the tracking store and the audit log.
type DefaultEffectExecutor struct {
	forum     secondary.ForumClient
	store     *TrackingStore
	audit     *auditor
	community string
	logger    *zap.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
// auditLog may be nil when the storage backend keeps no history.
func NewEffectExecutor(forum secondary.ForumClient, store *TrackingStore, auditLog secondary.AuditLog, community string, logger *zap.Logger) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		forum:     forum,
		store:     store,
		audit:     newAuditor(auditLog, logger),
		community: community,
		logger:    logger,
	}
}

// Execute processes effects in sequence.
// Forbidden platform errors follow the effect's ForbiddenPolicy; any other
// error stops the plan and is returned.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) (ExecutionResult, error) {
	var result ExecutionResult
	for _, eff := range effs {
		err := e.executeOne(ctx, eff, &result)
		if err == nil {
			continue
		}
		if errors.Is(err, errHalt) {
			result.Halted = true
			return result, nil
		}
		return result, fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
	}
	return result, nil
}

// errHalt signals a forbidden effect with HaltOnForbidden.
var errHalt = errors.New("plan halted")

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect, result *ExecutionResult) error {
	switch typed := eff.(type) {
	case effects.MessageEffect:
		if err := e.forum.SendMessage(ctx, typed.To, typed.Subject, typed.Body); err != nil {
			return err
		}
		result.Messaged++
		e.audit.record(ctx, typed.SubmissionID, "", effects.AuditNotified, "to "+typed.To)
		return nil

	case effects.ReplyEffect:
		if err := e.forum.Reply(ctx, typed.MessageID, typed.Body); err != nil {
			return err
		}
		result.Replied++
		e.audit.record(ctx, typed.SubmissionID, typed.MessageID, effects.AuditRejectedReply, "")
		return nil

	case effects.FlairEffect:
		err := e.forum.ApplyFlair(ctx, e.community, typed.SubmissionID, typed.Text, typed.CSSClass)
		if errors.Is(err, secondary.ErrForbidden) {
			e.logger.Warn("no permission to flair here, is the account a moderator?",
				zap.String("submission", typed.SubmissionID),
				zap.String("community", e.community),
			)
			result.Forbidden++
			e.audit.record(ctx, typed.SubmissionID, "", effects.AuditFlairForbidden, typed.Text)
			return e.onForbidden(typed.OnForbidden)
		}
		if err != nil {
			return err
		}
		result.Flaired++
		e.audit.record(ctx, typed.SubmissionID, "", effects.AuditFlaired, typed.Text)
		return nil

	case effects.RemoveEffect:
		err := e.forum.RemoveSubmission(ctx, typed.SubmissionID)
		if errors.Is(err, secondary.ErrForbidden) {
			e.logger.Warn("no permission to remove here, is the account a moderator?",
				zap.String("submission", typed.SubmissionID),
				zap.String("community", e.community),
			)
			result.Forbidden++
			e.audit.record(ctx, typed.SubmissionID, "", effects.AuditRemoveForbidden, "")
			return e.onForbidden(typed.OnForbidden)
		}
		if err != nil {
			return err
		}
		result.Removed++
		e.audit.record(ctx, typed.SubmissionID, "", effects.AuditRemoved, "")
		return nil

	case effects.UntrackEffect:
		messageID, _ := e.store.FindBySubmission(typed.SubmissionID)
		e.store.Remove(ctx, typed.SubmissionID)
		result.Untracked++
		e.audit.record(ctx, typed.SubmissionID, messageID, effects.AuditUntracked, string(typed.Reason))
		return nil

	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) onForbidden(policy effects.ForbiddenPolicy) error {
	if policy == effects.HaltOnForbidden {
		return errHalt
	}
	return nil
}

var _ EffectExecutor = (*DefaultEffectExecutor)(nil)
