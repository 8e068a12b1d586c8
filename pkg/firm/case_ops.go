package firm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/permissions"
)

// OpenCaseRequest asks to open a case for a client
type OpenCaseRequest struct {
	Context     permissions.Context
	ClientID    string
	Title       string
	Description string
}

// OpenCase performs case intake: the actor needs the case action, the client
// must be under their active-case cap, and the new case starts pending with
// no lawyers assigned.
func (s *Service) OpenCase(ctx context.Context, req OpenCaseRequest) (*cases.Case, error) {
	pctx := req.Context
	if !s.hasCasePermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionCaseOpened, req.ClientID)
		return nil, ErrPermissionDenied
	}

	result := s.rules.ValidateClientCaseLimit(ctx, pctx, req.ClientID)
	if !result.Valid {
		return nil, &RuleViolationError{Result: result}
	}

	c := &cases.Case{
		GuildID:     pctx.GuildID,
		CaseNumber:  newCaseNumber(),
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Status:      cases.StatusPending,
		OpenedBy:    pctx.UserID,
	}
	if err := s.caseStore.Insert(ctx, c); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(pctx.GuildID, audit.ActionCaseOpened, pctx.UserID, req.ClientID, audit.Details{
		Metadata: map[string]interface{}{"case_number": c.CaseNumber, "title": c.Title},
	})
	for _, w := range result.Warnings {
		entry.Details.Reason = w
	}
	s.audit(ctx, entry)
	return c, nil
}

// AssignLawyer adds a lawyer to a case and moves a pending case to open
func (s *Service) AssignLawyer(ctx context.Context, pctx permissions.Context, caseNumber, lawyerID string) (*cases.Case, error) {
	if !s.hasCasePermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionCaseAssigned, lawyerID)
		return nil, ErrPermissionDenied
	}

	c, err := s.caseStore.Get(ctx, pctx.GuildID, caseNumber)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("case %s is closed", caseNumber)
	}
	if c.HasLawyer(lawyerID) {
		return c, nil
	}

	c.AssignedLawyers = append(c.AssignedLawyers, lawyerID)
	if c.Status == cases.StatusPending {
		c.Status = cases.StatusOpen
	}
	if err := s.caseStore.Update(ctx, c); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionCaseAssigned, pctx.UserID, lawyerID, audit.Details{
		Metadata: map[string]interface{}{"case_number": caseNumber},
	}))
	return c, nil
}

// UnassignLawyer removes a lawyer from a case; the lead attorney slot is
// cleared if it pointed at them.
func (s *Service) UnassignLawyer(ctx context.Context, pctx permissions.Context, caseNumber, lawyerID string) (*cases.Case, error) {
	if !s.hasCasePermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionCaseUnassigned, lawyerID)
		return nil, ErrPermissionDenied
	}

	c, err := s.caseStore.Get(ctx, pctx.GuildID, caseNumber)
	if err != nil {
		return nil, err
	}

	filtered := c.AssignedLawyers[:0]
	for _, id := range c.AssignedLawyers {
		if id != lawyerID {
			filtered = append(filtered, id)
		}
	}
	c.AssignedLawyers = filtered
	if c.LeadAttorneyID == lawyerID {
		c.LeadAttorneyID = ""
	}
	if err := s.caseStore.Update(ctx, c); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionCaseUnassigned, pctx.UserID, lawyerID, audit.Details{
		Metadata: map[string]interface{}{"case_number": caseNumber},
	}))
	return c, nil
}

// SetLeadAttorney designates an already-assigned lawyer as lead attorney
func (s *Service) SetLeadAttorney(ctx context.Context, pctx permissions.Context, caseNumber, lawyerID string) (*cases.Case, error) {
	c, err := s.caseStore.Get(ctx, pctx.GuildID, caseNumber)
	if err != nil {
		return nil, err
	}

	if result := s.rules.ValidateLeadAttorney(ctx, pctx, c, lawyerID); !result.Valid {
		return nil, &RuleViolationError{Result: result}
	}

	c.LeadAttorneyID = lawyerID
	if err := s.caseStore.Update(ctx, c); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionLeadAttorneySet, pctx.UserID, lawyerID, audit.Details{
		Metadata: map[string]interface{}{"case_number": caseNumber},
	}))
	return c, nil
}

// CloseCase closes a case with a result
func (s *Service) CloseCase(ctx context.Context, pctx permissions.Context, caseNumber string, result cases.Result) (*cases.Case, error) {
	if !s.hasCasePermission(ctx, pctx) {
		s.auditDenied(ctx, pctx, audit.ActionCaseClosed, caseNumber)
		return nil, ErrPermissionDenied
	}

	c, err := s.caseStore.Get(ctx, pctx.GuildID, caseNumber)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("case %s is already closed", caseNumber)
	}

	now := time.Now().UTC()
	c.Status = cases.StatusClosed
	c.Result = result
	c.ClosedBy = pctx.UserID
	c.ClosedAt = &now
	if err := s.caseStore.Update(ctx, c); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionCaseClosed, pctx.UserID, c.ClientID, audit.Details{
		Metadata: map[string]interface{}{"case_number": caseNumber, "result": string(result)},
	}))
	return c, nil
}

// ClientCases lists a client's cases
func (s *Service) ClientCases(ctx context.Context, pctx permissions.Context, clientID string) ([]*cases.Case, error) {
	if !s.hasCasePermission(ctx, pctx) {
		return nil, ErrPermissionDenied
	}
	return s.caseStore.ListForClient(ctx, pctx.GuildID, clientID)
}

// LawyerCaseload lists the non-closed cases a lawyer carries
func (s *Service) LawyerCaseload(ctx context.Context, pctx permissions.Context, userID string) ([]*cases.Case, error) {
	if !s.perms.HasLawyerPermission(ctx, pctx) && !s.hasCasePermission(ctx, pctx) {
		return nil, ErrPermissionDenied
	}
	return s.caseStore.ListForLawyer(ctx, pctx.GuildID, userID)
}

func (s *Service) hasCasePermission(ctx context.Context, pctx permissions.Context) bool {
	return s.perms.IsAdmin(ctx, pctx) || s.perms.HasActionPermission(ctx, pctx, permissions.ActionCase)
}

// newCaseNumber builds a year-prefixed, collision-resistant case number
func newCaseNumber() string {
	return fmt.Sprintf("%d-%s", time.Now().UTC().Year(), uuid.NewString()[:8])
}
