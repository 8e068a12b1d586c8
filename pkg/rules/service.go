package rules

import (
	"context"
	"fmt"

	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/observability"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/staff"
)

// Rule names used in metrics and bypass records
const (
	RuleRoleLimit       = "role-limit"
	RulePromotion       = "promotion"
	RuleDemotion        = "demotion"
	RuleClientCaseLimit = "client-case-limit"
	RuleLeadAttorney    = "lead-attorney"
)

// StaffCounter counts active staff per role. *staff.Store satisfies it.
type StaffCounter interface {
	CountActive(ctx context.Context, guildID string, role staff.Role) (int, error)
}

// CaseCounter counts a client's non-closed cases. *cases.Store satisfies it.
type CaseCounter interface {
	CountActiveForClient(ctx context.Context, guildID, clientID string) (int, error)
}

// PermissionChecker is the slice of the permission service the rules use
type PermissionChecker interface {
	HasLeadAttorneyPermission(ctx context.Context, pctx permissions.Context) bool
}

// Service enforces the stateful business rules that pure permission lookup
// cannot express. Store failures fail closed: the result is invalid with an
// infrastructure message, and no error escapes to yes/no callers.
type Service struct {
	staffCounts StaffCounter
	caseCounts  CaseCounter
	perms       PermissionChecker
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// NewService creates a business rule validation service. metrics may be nil.
func NewService(staffCounts StaffCounter, caseCounts CaseCounter, perms PermissionChecker, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Service{
		staffCounts: staffCounts,
		caseCounts:  caseCounts,
		perms:       perms,
		logger:      logger,
		metrics:     metrics,
	}
}

// ValidateRoleLimit checks the population cap of a role before a hire or
// promotion lands someone in it. At or over the cap the result is invalid
// and bypass-eligible; whether the caller may exercise the bypass depends on
// the actor being the guild owner, which this check does not decide.
func (s *Service) ValidateRoleLimit(ctx context.Context, pctx permissions.Context, role staff.Role) Result {
	return s.observe(RuleRoleLimit, s.validateRoleLimit(ctx, pctx, role))
}

func (s *Service) validateRoleLimit(ctx context.Context, pctx permissions.Context, role staff.Role) Result {
	if !staff.ValidRole(string(role)) {
		return Fail(fmt.Sprintf("unknown staff role: %s", role))
	}

	max := staff.CapOf(role)
	current, err := s.staffCounts.CountActive(ctx, pctx.GuildID, role)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"guild_id": pctx.GuildID,
			"role":     string(role),
		}).Error("role limit check failed, rejecting")
		return Fail("unable to verify role availability, please try again")
	}

	if current >= max {
		msg := fmt.Sprintf("the %s role is full (%d/%d)", role, current, max)
		return FailWithCounts(msg, current, max).WithMeta("role", string(role))
	}
	return OK()
}

// ValidatePromotion checks a promotion moves strictly up the hierarchy.
// Self-promotion is rejected before any level comparison.
func (s *Service) ValidatePromotion(ctx context.Context, pctx permissions.Context, targetUserID string, currentRole, newRole staff.Role) Result {
	return s.observe(RulePromotion, s.validatePromotion(pctx, targetUserID, currentRole, newRole))
}

func (s *Service) validatePromotion(pctx permissions.Context, targetUserID string, currentRole, newRole staff.Role) Result {
	if pctx.UserID == targetUserID {
		return Fail("staff members cannot promote themselves")
	}
	if !staff.ValidRole(string(newRole)) {
		return Fail(fmt.Sprintf("unknown staff role: %s", newRole))
	}
	if staff.LevelOf(newRole) <= staff.LevelOf(currentRole) {
		return Fail(fmt.Sprintf("new role must be higher than %s", currentRole))
	}
	return OK()
}

// ValidateDemotion checks a demotion moves strictly down the hierarchy.
// Demotions are not subject to the population cap of the destination role.
func (s *Service) ValidateDemotion(ctx context.Context, pctx permissions.Context, targetUserID string, currentRole, newRole staff.Role) Result {
	return s.observe(RuleDemotion, s.validateDemotion(currentRole, newRole))
}

func (s *Service) validateDemotion(currentRole, newRole staff.Role) Result {
	if !staff.ValidRole(string(newRole)) {
		return Fail(fmt.Sprintf("unknown staff role: %s", newRole))
	}
	if staff.LevelOf(newRole) >= staff.LevelOf(currentRole) {
		return Fail(fmt.Sprintf("new role must be lower than %s", currentRole))
	}
	return OK()
}

// ValidateClientCaseLimit checks the five-active-case cap for a client.
// At four active cases the check still passes but carries a warning and
// counts so the caller can surface "approaching the limit".
func (s *Service) ValidateClientCaseLimit(ctx context.Context, pctx permissions.Context, clientID string) Result {
	return s.observe(RuleClientCaseLimit, s.validateClientCaseLimit(ctx, pctx, clientID))
}

func (s *Service) validateClientCaseLimit(ctx context.Context, pctx permissions.Context, clientID string) Result {
	current, err := s.caseCounts.CountActiveForClient(ctx, pctx.GuildID, clientID)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"guild_id":  pctx.GuildID,
			"client_id": clientID,
		}).Error("client case limit check failed, rejecting")
		return Fail("unable to verify client case load, please try again")
	}

	max := cases.MaxActivePerClient
	if current >= max {
		return Fail(fmt.Sprintf("client has reached the maximum active case limit (%d)", max)).
			WithMeta("current_count", current).
			WithMeta("max_count", max)
	}

	result := OK().WithMeta("current_count", current).WithMeta("max_count", max)
	if current == max-1 {
		result = result.WithWarning(fmt.Sprintf("client is approaching the active case limit (%d/%d)", current, max))
	}
	return result
}

// ValidateLeadAttorney checks both halves of lead-attorney assignment: the
// actor must hold lead-attorney permission and the target must already be an
// assigned lawyer on the case. The two failures carry distinct messages.
func (s *Service) ValidateLeadAttorney(ctx context.Context, pctx permissions.Context, c *cases.Case, targetUserID string) Result {
	return s.observe(RuleLeadAttorney, s.validateLeadAttorney(ctx, pctx, c, targetUserID))
}

func (s *Service) validateLeadAttorney(ctx context.Context, pctx permissions.Context, c *cases.Case, targetUserID string) Result {
	if !s.perms.HasLeadAttorneyPermission(ctx, pctx) {
		return Fail("you do not have permission to assign a lead attorney")
	}
	if c == nil || !c.HasLawyer(targetUserID) {
		return Fail("user cannot be assigned as lead attorney: they are not an assigned lawyer on this case")
	}
	return OK()
}

func (s *Service) observe(rule string, result Result) Result {
	if s.metrics != nil {
		s.metrics.ObserveRuleEvaluation(rule, result.Valid)
	}
	return result
}
