package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/httputil"
	"github.com/barrister-bot/barrister/pkg/staff"
	"github.com/barrister-bot/barrister/pkg/validation"
)

// validate handles POST /guilds/{guildID}/validate: the generic dispatch
// endpoint for callers that want a decision without performing the
// operation
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Entity, "entity") || !httputil.RequireNonEmpty(w, req.Operation, "operation") {
		return
	}

	result := s.validator.Validate(r.Context(), validation.Request{
		Context:   req.Actor.context(guildID(r)),
		Entity:    validation.EntityType(req.Entity),
		Operation: validation.Operation(req.Operation),
		Data:      req.Data,
	})
	httputil.WriteSuccess(w, toValidateResponse(result))
}

// postJob handles POST /guilds/{guildID}/jobs
func (s *Server) postJob(w http.ResponseWriter, r *http.Request) {
	var req PostJobRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	p, err := s.jobs.Post(r.Context(), req.Actor.context(guildID(r)), req.Title, req.Description, staff.Role(req.Role))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteCreated(w, p)
}

// listJobs handles GET /guilds/{guildID}/jobs
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	pctx := actorFromQuery(r).context(guildID(r))
	postings, err := s.jobs.ListOpen(r.Context(), pctx)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, postings)
}

// closeJob handles POST /guilds/{guildID}/jobs/{jobID}/close
func (s *Server) closeJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor Actor `json:"actor"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.jobs.Close(r.Context(), req.Actor.context(guildID(r)), mux.Vars(r)["jobID"]); err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// applyToJob handles POST /guilds/{guildID}/jobs/{jobID}/applications
func (s *Server) applyToJob(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	a, err := s.jobs.Apply(r.Context(), req.Actor.context(guildID(r)), mux.Vars(r)["jobID"], req.Statement)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteCreated(w, a)
}

// listApplications handles GET /guilds/{guildID}/jobs/{jobID}/applications
func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	pctx := actorFromQuery(r).context(guildID(r))
	apps, err := s.jobs.Applications(r.Context(), pctx, mux.Vars(r)["jobID"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, apps)
}

// createRetainer handles POST /guilds/{guildID}/retainers
func (s *Server) createRetainer(w http.ResponseWriter, r *http.Request) {
	var req CreateRetainerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ret, err := s.retainers.Create(r.Context(), req.Actor.context(guildID(r)), req.ClientID, req.Terms)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteCreated(w, ret)
}

// signRetainer handles POST /guilds/{guildID}/retainers/{retainerID}/sign
func (s *Server) signRetainer(w http.ResponseWriter, r *http.Request) {
	var req SignRetainerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ret, err := s.retainers.Sign(r.Context(), req.Actor.context(guildID(r)), mux.Vars(r)["retainerID"], req.SignedName)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, ret)
}

// cancelRetainer handles POST /guilds/{guildID}/retainers/{retainerID}/cancel
func (s *Server) cancelRetainer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor Actor `json:"actor"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.retainers.Cancel(r.Context(), req.Actor.context(guildID(r)), mux.Vars(r)["retainerID"]); err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// clientRetainers handles GET /guilds/{guildID}/clients/{clientID}/retainers
func (s *Server) clientRetainers(w http.ResponseWriter, r *http.Request) {
	pctx := actorFromQuery(r).context(guildID(r))
	list, err := s.retainers.ListForClient(r.Context(), pctx, mux.Vars(r)["clientID"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

// searchAudit handles GET /guilds/{guildID}/audit. Admin only.
func (s *Server) searchAudit(w http.ResponseWriter, r *http.Request) {
	gid := guildID(r)
	pctx := actorFromQuery(r).context(gid)
	if !s.perms.IsAdmin(r.Context(), pctx) {
		httputil.WriteForbidden(w, "admin permission required")
		return
	}

	limit, err := httputil.ParseQueryInt(r, "limit", 100)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	offset, err := httputil.ParseQueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	bypassOnly, err := httputil.ParseQueryBool(r, "bypass_only", false)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	filter := audit.SearchFilter{
		GuildID:    gid,
		ActorID:    httputil.ParseQueryString(r, "actor_id", ""),
		TargetID:   httputil.ParseQueryString(r, "target_id", ""),
		Severity:   audit.Severity(httputil.ParseQueryString(r, "severity", "")),
		BypassOnly: bypassOnly,
		StartTime:  parseTimeQuery(r, "start"),
		EndTime:    parseTimeQuery(r, "end"),
		Limit:      limit,
		Offset:     offset,
	}
	for _, action := range r.URL.Query()["action"] {
		filter.Actions = append(filter.Actions, audit.Action(action))
	}

	entries, err := s.auditQuery.Search(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, entries)
}
