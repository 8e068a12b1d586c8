package firm

import (
	"context"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/observability"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/rules"
	"github.com/barrister-bot/barrister/pkg/staff"
)

// StaffStore is the staff persistence surface the service needs.
// *staff.Store satisfies it.
type StaffStore interface {
	CountActive(ctx context.Context, guildID string, role staff.Role) (int, error)
	Get(ctx context.Context, guildID, userID string) (*staff.Record, error)
	GetActive(ctx context.Context, guildID, userID string) (*staff.Record, error)
	ListActive(ctx context.Context, guildID string) ([]*staff.Record, error)
	Insert(ctx context.Context, rec *staff.Record) error
	Update(ctx context.Context, rec *staff.Record) error
}

// CaseStore is the case persistence surface the service needs.
// *cases.Store satisfies it.
type CaseStore interface {
	Get(ctx context.Context, guildID, caseNumber string) (*cases.Case, error)
	Insert(ctx context.Context, c *cases.Case) error
	Update(ctx context.Context, c *cases.Case) error
	ListForClient(ctx context.Context, guildID, clientID string) ([]*cases.Case, error)
	ListForLawyer(ctx context.Context, guildID, userID string) ([]*cases.Case, error)
}

// PermissionService is the authority surface the service needs.
// *permissions.Service satisfies it.
type PermissionService interface {
	HasActionPermission(ctx context.Context, pctx permissions.Context, action permissions.Action) bool
	IsAdmin(ctx context.Context, pctx permissions.Context) bool
	HasSeniorStaffPermission(ctx context.Context, pctx permissions.Context) bool
	HasLawyerPermission(ctx context.Context, pctx permissions.Context) bool
	HasLeadAttorneyPermission(ctx context.Context, pctx permissions.Context) bool
}

// Service orchestrates staff and case operations: permission check first,
// then business rules, then the mutation, with an audit entry for every
// privileged action and every exercised bypass.
type Service struct {
	staffStore StaffStore
	caseStore  CaseStore
	perms      PermissionService
	rules      *rules.Service
	auditLog   audit.Logger
	logger     *observability.Logger
}

// NewService wires the firm orchestration service
func NewService(staffStore StaffStore, caseStore CaseStore, perms PermissionService, ruleSvc *rules.Service, auditLog audit.Logger, logger *observability.Logger) *Service {
	if auditLog == nil {
		auditLog = audit.NopLogger()
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Service{
		staffStore: staffStore,
		caseStore:  caseStore,
		perms:      perms,
		rules:      ruleSvc,
		auditLog:   auditLog,
		logger:     logger,
	}
}

func (s *Service) auditDenied(ctx context.Context, pctx permissions.Context, action audit.Action, targetID string) {
	entry := audit.NewEntry(pctx.GuildID, audit.ActionPermissionDenied, pctx.UserID, targetID, audit.Details{
		Metadata: map[string]interface{}{"attempted": string(action)},
	})
	if err := s.auditLog.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithGuild(pctx.GuildID).Warn("failed to audit permission denial")
	}
}

func (s *Service) audit(ctx context.Context, entry *audit.Entry) {
	if err := s.auditLog.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithGuild(entry.GuildID).Warn("failed to write audit entry")
	}
}
