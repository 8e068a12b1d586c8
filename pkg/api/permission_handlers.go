package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/httputil"
	"github.com/barrister-bot/barrister/pkg/permissions"
)

// checkPermission handles POST /guilds/{guildID}/permissions/check
func (s *Server) checkPermission(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !permissions.ValidAction(req.Action) {
		httputil.WriteBadRequest(w, "unknown permission action: "+req.Action)
		return
	}

	pctx := req.Actor.context(guildID(r))
	allowed := s.perms.HasActionPermission(r.Context(), pctx, permissions.Action(req.Action))
	httputil.WriteSuccess(w, CheckResponse{Allowed: allowed, Action: req.Action})
}

// getConfig handles GET /guilds/{guildID}/config
func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.configs.Ensure(r.Context(), guildID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, cfg)
}

// setActionRoles handles PUT /guilds/{guildID}/config/actions/{action}
func (s *Server) setActionRoles(w http.ResponseWriter, r *http.Request) {
	action := permissions.Action(mux.Vars(r)["action"])
	if !permissions.ValidAction(string(action)) {
		httputil.WriteBadRequest(w, "unknown permission action: "+string(action))
		return
	}

	var req ConfigUpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	gid := guildID(r)
	pctx := req.Actor.context(gid)
	if !s.requireConfigAuthority(w, r, pctx) {
		return
	}

	if err := s.configs.SetActionRoles(r.Context(), gid, action, req.RoleIDs); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.invalidateConfig(r.Context(), gid)
	s.auditConfigChange(r, pctx, "action_roles:"+string(action))
	httputil.WriteNoContent(w)
}

// setAdminRoles handles PUT /guilds/{guildID}/config/admin-roles
func (s *Server) setAdminRoles(w http.ResponseWriter, r *http.Request) {
	s.setAdminList(w, r, "admin_roles", s.configs.SetAdminRoles)
}

// setAdminUsers handles PUT /guilds/{guildID}/config/admin-users
func (s *Server) setAdminUsers(w http.ResponseWriter, r *http.Request) {
	s.setAdminList(w, r, "admin_users", s.configs.SetAdminUsers)
}

func (s *Server) setAdminList(w http.ResponseWriter, r *http.Request, field string, set func(ctx context.Context, guildID string, ids []string) error) {
	var req AdminUpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	gid := guildID(r)
	pctx := req.Actor.context(gid)
	if !s.requireConfigAuthority(w, r, pctx) {
		return
	}

	if err := set(r.Context(), gid, req.IDs); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.invalidateConfig(r.Context(), gid)
	s.auditConfigChange(r, pctx, field)
	httputil.WriteNoContent(w)
}

// invalidateConfig drops the guild's cached config so the next permission
// check reads the mutated grants
func (s *Server) invalidateConfig(ctx context.Context, guildID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, guildID)
	}
}

// requireConfigAuthority gates config mutation behind the config action or
// admin standing
func (s *Server) requireConfigAuthority(w http.ResponseWriter, r *http.Request, pctx permissions.Context) bool {
	ctx := r.Context()
	if s.perms.IsAdmin(ctx, pctx) || s.perms.HasActionPermission(ctx, pctx, permissions.ActionConfig) {
		return true
	}
	httputil.WriteForbidden(w, "config permission required")
	return false
}

func (s *Server) auditConfigChange(r *http.Request, pctx permissions.Context, field string) {
	entry := audit.NewEntry(pctx.GuildID, audit.ActionConfigChanged, pctx.UserID, "", audit.Details{
		Metadata: map[string]interface{}{"field": field},
	})
	if err := s.auditLog.Log(r.Context(), entry); err != nil {
		s.logger.WithError(err).WithGuild(pctx.GuildID).Warn("failed to audit config change")
	}
}
