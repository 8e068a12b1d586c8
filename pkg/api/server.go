package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/firm"
	"github.com/barrister-bot/barrister/pkg/httputil"
	"github.com/barrister-bot/barrister/pkg/jobs"
	"github.com/barrister-bot/barrister/pkg/observability"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/retainers"
	"github.com/barrister-bot/barrister/pkg/rules"
	"github.com/barrister-bot/barrister/pkg/staff"
	"github.com/barrister-bot/barrister/pkg/validation"
)

// FirmService is the staff/case orchestration surface the API exposes.
// *firm.Service satisfies it.
type FirmService interface {
	Hire(ctx context.Context, req firm.HireRequest) (*staff.Record, error)
	Promote(ctx context.Context, req firm.PromoteRequest) (*staff.Record, error)
	Demote(ctx context.Context, req firm.DemoteRequest) (*staff.Record, error)
	Fire(ctx context.Context, req firm.FireRequest) (*staff.Record, error)
	ListStaff(ctx context.Context, pctx permissions.Context) ([]*staff.Record, error)
	OpenCase(ctx context.Context, req firm.OpenCaseRequest) (*cases.Case, error)
	AssignLawyer(ctx context.Context, pctx permissions.Context, caseNumber, lawyerID string) (*cases.Case, error)
	UnassignLawyer(ctx context.Context, pctx permissions.Context, caseNumber, lawyerID string) (*cases.Case, error)
	SetLeadAttorney(ctx context.Context, pctx permissions.Context, caseNumber, lawyerID string) (*cases.Case, error)
	CloseCase(ctx context.Context, pctx permissions.Context, caseNumber string, result cases.Result) (*cases.Case, error)
	ClientCases(ctx context.Context, pctx permissions.Context, clientID string) ([]*cases.Case, error)
	LawyerCaseload(ctx context.Context, pctx permissions.Context, userID string) ([]*cases.Case, error)
}

// PermissionService is the permission surface the API exposes.
// *permissions.Service satisfies it.
type PermissionService interface {
	HasActionPermission(ctx context.Context, pctx permissions.Context, action permissions.Action) bool
	IsAdmin(ctx context.Context, pctx permissions.Context) bool
}

// ConfigStore manages guild permission configs. *permissions.Store
// satisfies it.
type ConfigStore interface {
	Ensure(ctx context.Context, guildID string) (*permissions.GuildConfig, error)
	SetActionRoles(ctx context.Context, guildID string, action permissions.Action, roleIDs []string) error
	SetAdminRoles(ctx context.Context, guildID string, roleIDs []string) error
	SetAdminUsers(ctx context.Context, guildID string, userIDs []string) error
}

// JobService is the job posting surface. *jobs.Service satisfies it.
type JobService interface {
	Post(ctx context.Context, pctx permissions.Context, title, description string, role staff.Role) (*jobs.Posting, error)
	Close(ctx context.Context, pctx permissions.Context, jobID string) error
	Apply(ctx context.Context, pctx permissions.Context, jobID, statement string) (*jobs.Application, error)
	ListOpen(ctx context.Context, pctx permissions.Context) ([]*jobs.Posting, error)
	Applications(ctx context.Context, pctx permissions.Context, jobID string) ([]*jobs.Application, error)
}

// RetainerService is the retainer surface. *retainers.Service satisfies it.
type RetainerService interface {
	Create(ctx context.Context, pctx permissions.Context, clientID, terms string) (*retainers.Retainer, error)
	Sign(ctx context.Context, pctx permissions.Context, retainerID, signedName string) (*retainers.Retainer, error)
	Cancel(ctx context.Context, pctx permissions.Context, retainerID string) error
	ListForClient(ctx context.Context, pctx permissions.Context, clientID string) ([]*retainers.Retainer, error)
}

// CacheInvalidator drops a guild's cached permission config after a config
// mutation so revoked grants stop authorizing immediately instead of after
// the cache TTL. *permissions.ConfigCache satisfies it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, guildID string)
}

// AuditSearcher is the audit query surface. *audit.DBLogger satisfies it.
type AuditSearcher interface {
	Search(ctx context.Context, filter audit.SearchFilter) ([]*audit.Entry, error)
}

// Validator is the unified validation dispatch surface.
// *validation.Service satisfies it.
type Validator interface {
	Validate(ctx context.Context, req validation.Request) rules.Result
}

// Server is the HTTP decision API. It owns no business logic; every
// handler parses the request, builds a permission context, and delegates.
type Server struct {
	router     *mux.Router
	firm       FirmService
	perms      PermissionService
	configs    ConfigStore
	jobs       JobService
	retainers  RetainerService
	cache      CacheInvalidator
	auditLog   audit.Logger
	auditQuery AuditSearcher
	validator  Validator
	db         *sql.DB
	logger     *observability.Logger
}

// ServerOptions bundles the collaborators a Server needs
type ServerOptions struct {
	Firm       FirmService
	Perms      PermissionService
	Configs    ConfigStore
	Jobs       JobService
	Retainers  RetainerService
	Cache      CacheInvalidator
	AuditLog   audit.Logger
	AuditQuery AuditSearcher
	Validator  Validator
	DB         *sql.DB
	Logger     *observability.Logger
}

// NewServer creates the API server and sets up its routes
func NewServer(opts ServerOptions) *Server {
	if opts.AuditLog == nil {
		opts.AuditLog = audit.NopLogger()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	s := &Server{
		router:     mux.NewRouter(),
		firm:       opts.Firm,
		perms:      opts.Perms,
		configs:    opts.Configs,
		jobs:       opts.Jobs,
		retainers:  opts.Retainers,
		cache:      opts.Cache,
		auditLog:   opts.AuditLog,
		auditQuery: opts.AuditQuery,
		validator:  opts.Validator,
		db:         opts.DB,
		logger:     opts.Logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	guild := api.PathPrefix("/guilds/{guildID}").Subrouter()

	// Permission routes
	guild.HandleFunc("/permissions/check", s.checkPermission).Methods("POST")
	guild.HandleFunc("/config", s.getConfig).Methods("GET")
	guild.HandleFunc("/config/actions/{action}", s.setActionRoles).Methods("PUT")
	guild.HandleFunc("/config/admin-roles", s.setAdminRoles).Methods("PUT")
	guild.HandleFunc("/config/admin-users", s.setAdminUsers).Methods("PUT")

	// Staff routes
	guild.HandleFunc("/staff", s.listStaff).Methods("GET")
	guild.HandleFunc("/staff/hire", s.hire).Methods("POST")
	guild.HandleFunc("/staff/promote", s.promote).Methods("POST")
	guild.HandleFunc("/staff/demote", s.demote).Methods("POST")
	guild.HandleFunc("/staff/fire", s.fire).Methods("POST")

	// Case routes
	guild.HandleFunc("/cases", s.openCase).Methods("POST")
	guild.HandleFunc("/cases/{caseNumber}/lawyers", s.assignLawyer).Methods("POST")
	guild.HandleFunc("/cases/{caseNumber}/lawyers/{userID}", s.unassignLawyer).Methods("DELETE")
	guild.HandleFunc("/cases/{caseNumber}/lead", s.setLeadAttorney).Methods("POST")
	guild.HandleFunc("/cases/{caseNumber}/close", s.closeCase).Methods("POST")
	guild.HandleFunc("/clients/{clientID}/cases", s.clientCases).Methods("GET")
	guild.HandleFunc("/lawyers/{userID}/cases", s.lawyerCaseload).Methods("GET")

	// Validation dispatch
	guild.HandleFunc("/validate", s.validate).Methods("POST")

	// Job routes
	guild.HandleFunc("/jobs", s.postJob).Methods("POST")
	guild.HandleFunc("/jobs", s.listJobs).Methods("GET")
	guild.HandleFunc("/jobs/{jobID}/close", s.closeJob).Methods("POST")
	guild.HandleFunc("/jobs/{jobID}/applications", s.applyToJob).Methods("POST")
	guild.HandleFunc("/jobs/{jobID}/applications", s.listApplications).Methods("GET")

	// Retainer routes
	guild.HandleFunc("/retainers", s.createRetainer).Methods("POST")
	guild.HandleFunc("/retainers/{retainerID}/sign", s.signRetainer).Methods("POST")
	guild.HandleFunc("/retainers/{retainerID}/cancel", s.cancelRetainer).Methods("POST")
	guild.HandleFunc("/clients/{clientID}/retainers", s.clientRetainers).Methods("GET")

	// Audit routes
	guild.HandleFunc("/audit", s.searchAudit).Methods("GET")

	// Repair/diagnostics
	guild.HandleFunc("/repair", s.repair).Methods("POST")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler wraps the router with the standard middleware chain
func (s *Server) Handler() http.Handler {
	limiter := httputil.NewRateLimiter(nil)
	limiter.StartCleanup(context.Background())
	return httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(s.logger),
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(1<<20),
		httputil.RateLimitMiddleware(limiter),
	)(s.router)
}

// writeDomainError translates service errors to HTTP responses. Rule
// violations get a 422 carrying the full result so the caller can build a
// bypass confirmation prompt.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var violation *firm.RuleViolationError
	switch {
	case errors.As(err, &violation):
		httputil.WriteUnprocessable(w, toValidateResponse(violation.Result))
	case errors.Is(err, firm.ErrPermissionDenied),
		errors.Is(err, jobs.ErrPermissionDenied),
		errors.Is(err, retainers.ErrPermissionDenied),
		errors.Is(err, retainers.ErrNotClient):
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, staff.ErrNotFound),
		errors.Is(err, cases.ErrNotFound),
		errors.Is(err, jobs.ErrNotFound),
		errors.Is(err, retainers.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, firm.ErrAlreadyStaff),
		errors.Is(err, firm.ErrSelfTarget),
		errors.Is(err, jobs.ErrAlreadyApplied):
		httputil.WriteConflict(w, err.Error())
	default:
		s.logger.WithError(err).Error("request failed")
		httputil.WriteInternalError(w, err)
	}
}

func guildID(r *http.Request) string {
	return mux.Vars(r)["guildID"]
}

func parseTimeQuery(r *http.Request, key string) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
