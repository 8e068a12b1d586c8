package api

import (
	"net/http"

	"github.com/barrister-bot/barrister/pkg/firm"
	"github.com/barrister-bot/barrister/pkg/httputil"
	"github.com/barrister-bot/barrister/pkg/staff"
)

// listStaff handles GET /guilds/{guildID}/staff. The actor is identified by
// query parameters because listing has no body.
func (s *Server) listStaff(w http.ResponseWriter, r *http.Request) {
	pctx := actorFromQuery(r).context(guildID(r))
	records, err := s.firm.ListStaff(r.Context(), pctx)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, records)
}

// hire handles POST /guilds/{guildID}/staff/hire
func (s *Server) hire(w http.ResponseWriter, r *http.Request) {
	var req HireRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "user_id") || !httputil.RequireNonEmpty(w, req.Role, "role") {
		return
	}

	rec, err := s.firm.Hire(r.Context(), firm.HireRequest{
		Context:      req.Actor.context(guildID(r)),
		TargetUserID: req.UserID,
		Role:         staff.Role(req.Role),
		Reason:       req.Reason,
		BypassReason: req.BypassReason,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteCreated(w, rec)
}

// promote handles POST /guilds/{guildID}/staff/promote
func (s *Server) promote(w http.ResponseWriter, r *http.Request) {
	var req RoleChangeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "user_id") || !httputil.RequireNonEmpty(w, req.NewRole, "new_role") {
		return
	}

	rec, err := s.firm.Promote(r.Context(), firm.PromoteRequest{
		Context:      req.Actor.context(guildID(r)),
		TargetUserID: req.UserID,
		NewRole:      staff.Role(req.NewRole),
		Reason:       req.Reason,
		BypassReason: req.BypassReason,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, rec)
}

// demote handles POST /guilds/{guildID}/staff/demote
func (s *Server) demote(w http.ResponseWriter, r *http.Request) {
	var req RoleChangeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "user_id") || !httputil.RequireNonEmpty(w, req.NewRole, "new_role") {
		return
	}

	rec, err := s.firm.Demote(r.Context(), firm.DemoteRequest{
		Context:      req.Actor.context(guildID(r)),
		TargetUserID: req.UserID,
		NewRole:      staff.Role(req.NewRole),
		Reason:       req.Reason,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, rec)
}

// fire handles POST /guilds/{guildID}/staff/fire
func (s *Server) fire(w http.ResponseWriter, r *http.Request) {
	var req FireRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "user_id") {
		return
	}

	rec, err := s.firm.Fire(r.Context(), firm.FireRequest{
		Context:      req.Actor.context(guildID(r)),
		TargetUserID: req.UserID,
		Reason:       req.Reason,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, rec)
}

// actorFromQuery builds an Actor from query parameters for GET endpoints
func actorFromQuery(r *http.Request) Actor {
	q := r.URL.Query()
	isOwner, _ := httputil.ParseQueryBool(r, "is_guild_owner", false)
	return Actor{
		UserID:       q.Get("actor_id"),
		UserRoles:    q["actor_role"],
		IsGuildOwner: isOwner,
	}
}
