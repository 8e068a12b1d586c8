package retainers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/observability"
	"github.com/barrister-bot/barrister/pkg/permissions"
)

// RetainerStore is the persistence surface the service needs. *Store
// satisfies it.
type RetainerStore interface {
	Insert(ctx context.Context, r *Retainer) error
	Get(ctx context.Context, guildID, id string) (*Retainer, error)
	ListForClient(ctx context.Context, guildID, clientID string) ([]*Retainer, error)
	MarkSigned(ctx context.Context, guildID, id, signedName string, at time.Time) error
	MarkCancelled(ctx context.Context, guildID, id string) error
}

// PermissionChecker is the slice of the permission service the retainer
// service uses
type PermissionChecker interface {
	HasLawyerPermission(ctx context.Context, pctx permissions.Context) bool
}

// ErrPermissionDenied is returned when the actor may not manage retainers
var ErrPermissionDenied = fmt.Errorf("permission denied")

// ErrNotClient is returned when someone other than the named client tries
// to sign
var ErrNotClient = fmt.Errorf("only the named client may sign a retainer")

// Service manages retainer agreements. Lawyers create and cancel them;
// only the named client may sign.
type Service struct {
	store    RetainerStore
	perms    PermissionChecker
	auditLog audit.Logger
	logger   *observability.Logger
}

// NewService wires the retainer service
func NewService(store RetainerStore, perms PermissionChecker, auditLog audit.Logger, logger *observability.Logger) *Service {
	if auditLog == nil {
		auditLog = audit.NopLogger()
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Service{store: store, perms: perms, auditLog: auditLog, logger: logger}
}

// Create opens a pending retainer between the acting lawyer and a client
func (s *Service) Create(ctx context.Context, pctx permissions.Context, clientID, terms string) (*Retainer, error) {
	if !s.perms.HasLawyerPermission(ctx, pctx) {
		return nil, ErrPermissionDenied
	}
	if clientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	r := &Retainer{
		ID:       uuid.NewString(),
		GuildID:  pctx.GuildID,
		ClientID: clientID,
		LawyerID: pctx.UserID,
		Terms:    terms,
		Status:   StatusPending,
	}
	if err := s.store.Insert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Sign records the client's signature on a pending retainer
func (s *Service) Sign(ctx context.Context, pctx permissions.Context, retainerID, signedName string) (*Retainer, error) {
	r, err := s.store.Get(ctx, pctx.GuildID, retainerID)
	if err != nil {
		return nil, err
	}
	if r.ClientID != pctx.UserID {
		return nil, ErrNotClient
	}
	if !r.IsPending() {
		return nil, fmt.Errorf("retainer %s is %s", retainerID, r.Status)
	}
	if signedName == "" {
		return nil, fmt.Errorf("a signature name is required")
	}

	now := time.Now().UTC()
	if err := s.store.MarkSigned(ctx, pctx.GuildID, retainerID, signedName, now); err != nil {
		return nil, err
	}
	r.Status = StatusSigned
	r.SignedName = signedName
	r.SignedAt = &now

	s.audit(ctx, audit.NewEntry(pctx.GuildID, audit.ActionRetainerSigned, pctx.UserID, r.LawyerID, audit.Details{
		Metadata: map[string]interface{}{"retainer_id": r.ID, "signed_name": signedName},
	}))
	return r, nil
}

// Cancel withdraws a pending retainer. The lawyer who created it or anyone
// with lawyer permission may cancel.
func (s *Service) Cancel(ctx context.Context, pctx permissions.Context, retainerID string) error {
	if !s.perms.HasLawyerPermission(ctx, pctx) {
		return ErrPermissionDenied
	}
	return s.store.MarkCancelled(ctx, pctx.GuildID, retainerID)
}

// ListForClient lists a client's retainers. The client sees their own;
// lawyers see any client's.
func (s *Service) ListForClient(ctx context.Context, pctx permissions.Context, clientID string) ([]*Retainer, error) {
	if pctx.UserID != clientID && !s.perms.HasLawyerPermission(ctx, pctx) {
		return nil, ErrPermissionDenied
	}
	return s.store.ListForClient(ctx, pctx.GuildID, clientID)
}

func (s *Service) audit(ctx context.Context, entry *audit.Entry) {
	if err := s.auditLog.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithGuild(entry.GuildID).Warn("failed to write audit entry")
	}
}
