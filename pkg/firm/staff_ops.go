package firm

import (
	"context"
	"errors"
	"time"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/rules"
	"github.com/barrister-bot/barrister/pkg/staff"
)

// HireRequest asks to bring a user onto the staff at a role
type HireRequest struct {
	Context      permissions.Context
	TargetUserID string
	Role         staff.Role
	Reason       string
	// BypassReason, when the actor is the guild owner, authorizes overriding
	// a full role. Empty means no bypass is requested.
	BypassReason string
}

// Hire creates (or reactivates) an active staff record. A full role rejects
// the hire unless the guild owner supplies a bypass reason, in which case a
// critical audit entry records the override.
func (s *Service) Hire(ctx context.Context, req HireRequest) (*staff.Record, error) {
	pctx := req.Context
	if !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionStaffHired, req.TargetUserID)
		return nil, ErrPermissionDenied
	}

	if existing, err := s.staffStore.GetActive(ctx, pctx.GuildID, req.TargetUserID); err == nil && existing != nil {
		return nil, ErrAlreadyStaff
	} else if err != nil && !errors.Is(err, staff.ErrNotFound) {
		return nil, err
	}

	result := s.rules.ValidateRoleLimit(ctx, pctx, req.Role)
	if !result.Valid {
		if err := s.maybeBypass(ctx, pctx, req.TargetUserID, req.Role, result, req.BypassReason); err != nil {
			return nil, err
		}
	}

	entry := staff.HistoryEntry{
		ToRole:     req.Role,
		ActorID:    pctx.UserID,
		Timestamp:  time.Now().UTC(),
		Reason:     req.Reason,
		ActionType: staff.ActionHire,
	}

	// a previously terminated record is reactivated rather than duplicated
	rec, err := s.staffStore.Get(ctx, pctx.GuildID, req.TargetUserID)
	switch {
	case err == nil:
		entry.FromRole = rec.Role
		rec.Role = req.Role
		rec.Status = staff.StatusActive
		rec.History = append(rec.History, entry)
		if err := s.staffStore.Update(ctx, rec); err != nil {
			return nil, err
		}
	case errors.Is(err, staff.ErrNotFound):
		rec = &staff.Record{
			GuildID: pctx.GuildID,
			UserID:  req.TargetUserID,
			Role:    req.Role,
			Status:  staff.StatusActive,
			HiredBy: pctx.UserID,
			History: []staff.HistoryEntry{entry},
		}
		if err := s.staffStore.Insert(ctx, rec); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionStaffHired, pctx.UserID, req.TargetUserID, audit.Details{
		After:  &audit.Snapshot{Role: string(req.Role), Status: string(staff.StatusActive)},
		Reason: req.Reason,
	}))
	return rec, nil
}

// PromoteRequest asks to move a staff member up the hierarchy
type PromoteRequest struct {
	Context      permissions.Context
	TargetUserID string
	NewRole      staff.Role
	Reason       string
	BypassReason string
}

// Promote moves an active staff member to a strictly higher tier. The
// destination role's population cap applies, with the same owner bypass
// protocol as hiring.
func (s *Service) Promote(ctx context.Context, req PromoteRequest) (*staff.Record, error) {
	pctx := req.Context
	if !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionStaffPromoted, req.TargetUserID)
		return nil, ErrPermissionDenied
	}

	rec, err := s.staffStore.GetActive(ctx, pctx.GuildID, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	if result := s.rules.ValidatePromotion(ctx, pctx, req.TargetUserID, rec.Role, req.NewRole); !result.Valid {
		return nil, &RuleViolationError{Result: result}
	}
	if result := s.rules.ValidateRoleLimit(ctx, pctx, req.NewRole); !result.Valid {
		if err := s.maybeBypass(ctx, pctx, req.TargetUserID, req.NewRole, result, req.BypassReason); err != nil {
			return nil, err
		}
	}

	return s.changeRole(ctx, pctx, rec, req.NewRole, req.Reason, staff.ActionPromotion, audit.ActionStaffPromoted)
}

// DemoteRequest asks to move a staff member down the hierarchy
type DemoteRequest struct {
	Context      permissions.Context
	TargetUserID string
	NewRole      staff.Role
	Reason       string
}

// Demote moves an active staff member to a strictly lower tier. Demotion
// destinations are not checked against population caps.
func (s *Service) Demote(ctx context.Context, req DemoteRequest) (*staff.Record, error) {
	pctx := req.Context
	if !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionStaffDemoted, req.TargetUserID)
		return nil, ErrPermissionDenied
	}

	rec, err := s.staffStore.GetActive(ctx, pctx.GuildID, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	if result := s.rules.ValidateDemotion(ctx, pctx, req.TargetUserID, rec.Role, req.NewRole); !result.Valid {
		return nil, &RuleViolationError{Result: result}
	}

	return s.changeRole(ctx, pctx, rec, req.NewRole, req.Reason, staff.ActionDemotion, audit.ActionStaffDemoted)
}

// FireRequest asks to terminate a staff member
type FireRequest struct {
	Context      permissions.Context
	TargetUserID string
	Reason       string
}

// Fire terminates an active staff member. The record survives with status
// terminated so re-hiring reactivates it.
func (s *Service) Fire(ctx context.Context, req FireRequest) (*staff.Record, error) {
	pctx := req.Context
	if !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionStaffFired, req.TargetUserID)
		return nil, ErrPermissionDenied
	}
	if pctx.UserID == req.TargetUserID {
		return nil, ErrSelfTarget
	}

	rec, err := s.staffStore.GetActive(ctx, pctx.GuildID, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	before := &audit.Snapshot{Role: string(rec.Role), Status: string(rec.Status)}
	rec.Status = staff.StatusTerminated
	rec.History = append(rec.History, staff.HistoryEntry{
		FromRole:   rec.Role,
		ActorID:    pctx.UserID,
		Timestamp:  time.Now().UTC(),
		Reason:     req.Reason,
		ActionType: staff.ActionFire,
	})
	if err := s.staffStore.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionStaffFired, pctx.UserID, req.TargetUserID, audit.Details{
		Before: before,
		After:  &audit.Snapshot{Role: string(rec.Role), Status: string(staff.StatusTerminated)},
		Reason: req.Reason,
	}))
	return rec, nil
}

// ListStaff lists active staff ordered by tier. Requires the actor to be
// staff-adjacent at all: any lawyer permission suffices.
func (s *Service) ListStaff(ctx context.Context, pctx permissions.Context) ([]*staff.Record, error) {
	if !s.perms.HasLawyerPermission(ctx, pctx) && !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		return nil, ErrPermissionDenied
	}
	return s.staffStore.ListActive(ctx, pctx.GuildID)
}

func (s *Service) changeRole(ctx context.Context, pctx permissions.Context, rec *staff.Record, newRole staff.Role, reason string, actionType staff.ActionType, auditAction audit.Action) (*staff.Record, error) {
	before := &audit.Snapshot{Role: string(rec.Role), Status: string(rec.Status)}
	fromRole := rec.Role
	rec.Role = newRole
	rec.History = append(rec.History, staff.HistoryEntry{
		FromRole:   fromRole,
		ToRole:     newRole,
		ActorID:    pctx.UserID,
		Timestamp:  time.Now().UTC(),
		Reason:     reason,
		ActionType: actionType,
	})
	if err := s.staffStore.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, auditAction, pctx.UserID, rec.UserID, audit.Details{
		Before: before,
		After:  &audit.Snapshot{Role: string(newRole), Status: string(rec.Status)},
		Reason: reason,
	}))
	return rec, nil
}

// maybeBypass resolves a failed role-limit check: a guild owner with a
// reason proceeds (recording the critical audit entry), everyone else gets
// the violation back.
func (s *Service) maybeBypass(ctx context.Context, pctx permissions.Context, targetID string, role staff.Role, result rules.Result, reason string) error {
	if !result.BypassAvailable || !pctx.IsGuildOwner || reason == "" {
		return &RuleViolationError{Result: result}
	}
	_, err := s.rules.RecordBypass(ctx, s.auditLog, rules.BypassRequest{
		Context:  pctx,
		TargetID: targetID,
		Role:     role,
		Result:   result,
		Reason:   reason,
	})
	return err
}
