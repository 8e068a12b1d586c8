package permissions

import (
	"context"

	"github.com/barrister-bot/barrister/pkg/observability"
)

// ConfigSource supplies guild permission configurations. *Store satisfies it;
// tests substitute fakes.
type ConfigSource interface {
	Ensure(ctx context.Context, guildID string) (*GuildConfig, error)
}

// Service answers "does this context hold authority A?" for the closed action
// set. Every failure mode resolves to a denial: a malformed context or a
// store error never grants access and never panics past this boundary.
type Service struct {
	source  ConfigSource
	cache   *ConfigCache
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates a permission service. cache and metrics may be nil.
func NewService(source ConfigSource, cache *ConfigCache, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Service{
		source:  source,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// HasActionPermission reports whether the context holds the named action.
// Evaluation order: guild owner override, then for the admin action the
// blanket admin lists, then the per-action role list. Holding an admin role
// does not imply any non-admin action.
func (s *Service) HasActionPermission(ctx context.Context, pctx Context, action Action) bool {
	allowed := s.check(ctx, pctx, action)
	if s.metrics != nil {
		s.metrics.ObservePermissionCheck(string(action), allowed)
	}
	return allowed
}

func (s *Service) check(ctx context.Context, pctx Context, action Action) bool {
	if !pctx.Valid() {
		s.logger.WithField("action", string(action)).Warn("permission check with malformed context, denying")
		return false
	}

	if pctx.IsGuildOwner {
		return true
	}

	cfg := s.loadConfig(ctx, pctx.GuildID, action)
	if cfg == nil {
		return false
	}

	if action == ActionAdmin {
		return s.isConfiguredAdmin(pctx, cfg)
	}

	return anyIntersect(pctx.UserRoles, cfg.RolesFor(action))
}

// IsAdmin reports whether the context is a guild owner, configured admin
// user, or holds an admin role.
func (s *Service) IsAdmin(ctx context.Context, pctx Context) bool {
	return s.HasActionPermission(ctx, pctx, ActionAdmin)
}

// HasSeniorStaffPermission reports admin status or the senior-staff action
func (s *Service) HasSeniorStaffPermission(ctx context.Context, pctx Context) bool {
	return s.IsAdmin(ctx, pctx) || s.HasActionPermission(ctx, pctx, ActionSeniorStaff)
}

// HasLawyerPermission reports admin status or the lawyer action
func (s *Service) HasLawyerPermission(ctx context.Context, pctx Context) bool {
	return s.IsAdmin(ctx, pctx) || s.HasActionPermission(ctx, pctx, ActionLawyer)
}

// HasLeadAttorneyPermission reports admin status or the lead-attorney action
func (s *Service) HasLeadAttorneyPermission(ctx context.Context, pctx Context) bool {
	return s.IsAdmin(ctx, pctx) || s.HasActionPermission(ctx, pctx, ActionLeadAttorney)
}

// loadConfig fetches the guild config through the cache, failing closed on
// store errors.
func (s *Service) loadConfig(ctx context.Context, guildID string, action Action) *GuildConfig {
	if s.cache != nil {
		if cfg := s.cache.Get(ctx, guildID); cfg != nil {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.WithLabelValues("guild_config").Inc()
			}
			return cfg
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.WithLabelValues("guild_config").Inc()
		}
	}

	cfg, err := s.source.Ensure(ctx, guildID)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"guild_id": guildID,
			"action":   string(action),
		}).Error("failed to load guild permission config, denying")
		if s.metrics != nil {
			s.metrics.PermissionCheckErrors.WithLabelValues(string(action)).Inc()
		}
		return nil
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, cfg); err != nil {
			s.logger.WithError(err).WithGuild(guildID).Warn("failed to cache guild config")
		}
	}
	return cfg
}

func (s *Service) isConfiguredAdmin(pctx Context, cfg *GuildConfig) bool {
	for _, u := range cfg.AdminUsers {
		if u == pctx.UserID {
			return true
		}
	}
	return anyIntersect(pctx.UserRoles, cfg.AdminRoles)
}

func anyIntersect(held, granted []string) bool {
	if len(held) == 0 || len(granted) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	for _, h := range held {
		if _, ok := set[h]; ok {
			return true
		}
	}
	return false
}
