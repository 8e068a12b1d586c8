package rules

import (
	"context"
	"fmt"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/staff"
)

// ErrBypassNotAllowed is returned when the actor is not the guild owner or
// the failed check was not bypass-eligible.
var ErrBypassNotAllowed = fmt.Errorf("only the guild owner may bypass this check")

// ErrBypassReasonRequired is returned when no justification accompanies a
// bypass. The caller-facing flow must collect one before finalizing.
var ErrBypassReasonRequired = fmt.Errorf("a reason is required to bypass this check")

// BypassRequest captures a guild owner's decision to override a failed
// role-limit check.
type BypassRequest struct {
	Context  permissions.Context
	TargetID string
	Role     staff.Role
	Result   Result
	Reason   string
}

// AuthorizeBypass validates a bypass request without recording it: the
// situation must be bypass-eligible, the actor must be the guild owner, and
// a reason must be supplied.
func AuthorizeBypass(req BypassRequest) error {
	if !req.Result.BypassAvailable {
		return ErrBypassNotAllowed
	}
	if !req.Context.IsGuildOwner {
		return ErrBypassNotAllowed
	}
	if req.Reason == "" {
		return ErrBypassReasonRequired
	}
	return nil
}

// RecordBypass writes the mandatory critical audit entry for an exercised
// bypass. Callers invoke it after AuthorizeBypass and before performing the
// overridden operation.
func (s *Service) RecordBypass(ctx context.Context, logger audit.Logger, req BypassRequest) (*audit.Entry, error) {
	if err := AuthorizeBypass(req); err != nil {
		return nil, err
	}

	current, max := 0, 0
	if req.Result.CurrentCount != nil {
		current = *req.Result.CurrentCount
	}
	if req.Result.MaxCount != nil {
		max = *req.Result.MaxCount
	}

	entry := audit.NewEntry(req.Context.GuildID, audit.ActionRoleLimitBypassed, req.Context.UserID, req.TargetID, audit.Details{
		Reason: req.Reason,
		BypassInfo: &audit.BypassInfo{
			Rule:         RuleRoleLimit,
			CurrentCount: current,
			MaxCount:     max,
			Reason:       req.Reason,
		},
		Metadata: map[string]interface{}{
			"role": string(req.Role),
		},
	})
	entry.IsGuildOwnerBypass = true

	if err := logger.Log(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record bypass: %w", err)
	}

	if s.metrics != nil {
		s.metrics.OwnerBypassesTotal.WithLabelValues(RuleRoleLimit).Inc()
	}
	s.logger.WithFields(map[string]interface{}{
		"guild_id":  req.Context.GuildID,
		"actor_id":  req.Context.UserID,
		"target_id": req.TargetID,
		"role":      string(req.Role),
	}).Warn("guild owner bypassed role limit")

	return entry, nil
}
