package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/observability"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/staff"
)

// PostingStore is the persistence surface the service needs. *Store
// satisfies it.
type PostingStore interface {
	Insert(ctx context.Context, p *Posting) error
	Get(ctx context.Context, guildID, id string) (*Posting, error)
	ListOpen(ctx context.Context, guildID string) ([]*Posting, error)
	Close(ctx context.Context, guildID, id, closedBy string, at time.Time) error
	InsertApplication(ctx context.Context, a *Application) error
	ListApplications(ctx context.Context, guildID, jobID string) ([]*Application, error)
	CountApplications(ctx context.Context, guildID, jobID string) (int, error)
}

// PermissionChecker is the slice of the permission service the job service
// uses
type PermissionChecker interface {
	HasSeniorStaffPermission(ctx context.Context, pctx permissions.Context) bool
}

// ErrPermissionDenied is returned when the actor may not manage postings
var ErrPermissionDenied = fmt.Errorf("permission denied")

// Service manages job postings. Posting and closing require senior-staff
// permission; applications are open to anyone in the guild.
type Service struct {
	store    PostingStore
	perms    PermissionChecker
	auditLog audit.Logger
	logger   *observability.Logger
}

// NewService wires the job posting service
func NewService(store PostingStore, perms PermissionChecker, auditLog audit.Logger, logger *observability.Logger) *Service {
	if auditLog == nil {
		auditLog = audit.NopLogger()
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Service{store: store, perms: perms, auditLog: auditLog, logger: logger}
}

// Post opens a new job posting for a staff role
func (s *Service) Post(ctx context.Context, pctx permissions.Context, title, description string, role staff.Role) (*Posting, error) {
	if !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		return nil, ErrPermissionDenied
	}
	if !staff.ValidRole(string(role)) {
		return nil, fmt.Errorf("unknown staff role: %s", role)
	}
	if title == "" {
		return nil, fmt.Errorf("posting title is required")
	}

	p := &Posting{
		ID:          uuid.NewString(),
		GuildID:     pctx.GuildID,
		Title:       title,
		Description: description,
		Role:        role,
		Status:      StatusOpen,
		PostedBy:    pctx.UserID,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionJobPosted, pctx.UserID, "", audit.Details{
		Metadata: map[string]interface{}{"job_id": p.ID, "title": title, "role": string(role)},
	}))
	return p, nil
}

// Close closes an open posting
func (s *Service) Close(ctx context.Context, pctx permissions.Context, jobID string) error {
	if !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		return ErrPermissionDenied
	}
	if err := s.store.Close(ctx, pctx.GuildID, jobID, pctx.UserID, time.Now().UTC()); err != nil {
		return err
	}

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionJobClosed, pctx.UserID, "", audit.Details{
		Metadata: map[string]interface{}{"job_id": jobID},
	}))
	return nil
}

// Apply records an application to an open posting
func (s *Service) Apply(ctx context.Context, pctx permissions.Context, jobID, statement string) (*Application, error) {
	p, err := s.store.Get(ctx, pctx.GuildID, jobID)
	if err != nil {
		return nil, err
	}
	if !p.IsOpen() {
		return nil, fmt.Errorf("job posting %s is closed", jobID)
	}

	a := &Application{
		ID:        uuid.NewString(),
		JobID:     jobID,
		GuildID:   pctx.GuildID,
		UserID:    pctx.UserID,
		Statement: statement,
	}
	if err := s.store.InsertApplication(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListOpen lists the guild's open postings
func (s *Service) ListOpen(ctx context.Context, pctx permissions.Context) ([]*Posting, error) {
	return s.store.ListOpen(ctx, pctx.GuildID)
}

// Applications lists a posting's applications. Senior staff only.
func (s *Service) Applications(ctx context.Context, pctx permissions.Context, jobID string) ([]*Application, error) {
	if !s.perms.HasSeniorStaffPermission(ctx, pctx) {
		return nil, ErrPermissionDenied
	}
	return s.store.ListApplications(ctx, pctx.GuildID, jobID)
}

func (s *Service) audit(ctx context.Context, entry *audit.Entry) {
	if err := s.auditLog.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithGuild(entry.GuildID).Warn("failed to write audit entry")
	}
}
