package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/firm"
	"github.com/barrister-bot/barrister/pkg/httputil"
)

// openCase handles POST /guilds/{guildID}/cases
func (s *Server) openCase(w http.ResponseWriter, r *http.Request) {
	var req OpenCaseRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.ClientID, "client_id") || !httputil.RequireNonEmpty(w, req.Title, "title") {
		return
	}

	c, err := s.firm.OpenCase(r.Context(), firm.OpenCaseRequest{
		Context:     req.Actor.context(guildID(r)),
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteCreated(w, c)
}

// assignLawyer handles POST /guilds/{guildID}/cases/{caseNumber}/lawyers
func (s *Server) assignLawyer(w http.ResponseWriter, r *http.Request) {
	var req CaseLawyerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "user_id") {
		return
	}

	c, err := s.firm.AssignLawyer(r.Context(), req.Actor.context(guildID(r)), mux.Vars(r)["caseNumber"], req.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, c)
}

// unassignLawyer handles DELETE /guilds/{guildID}/cases/{caseNumber}/lawyers/{userID}
func (s *Server) unassignLawyer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pctx := actorFromQuery(r).context(guildID(r))
	c, err := s.firm.UnassignLawyer(r.Context(), pctx, vars["caseNumber"], vars["userID"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, c)
}

// setLeadAttorney handles POST /guilds/{guildID}/cases/{caseNumber}/lead
func (s *Server) setLeadAttorney(w http.ResponseWriter, r *http.Request) {
	var req CaseLawyerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "user_id") {
		return
	}

	c, err := s.firm.SetLeadAttorney(r.Context(), req.Actor.context(guildID(r)), mux.Vars(r)["caseNumber"], req.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, c)
}

// closeCase handles POST /guilds/{guildID}/cases/{caseNumber}/close
func (s *Server) closeCase(w http.ResponseWriter, r *http.Request) {
	var req CloseCaseRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !cases.ValidResult(cases.Result(req.Result)) {
		httputil.WriteBadRequest(w, "unknown case result: "+req.Result)
		return
	}

	c, err := s.firm.CloseCase(r.Context(), req.Actor.context(guildID(r)), mux.Vars(r)["caseNumber"], cases.Result(req.Result))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, c)
}

// clientCases handles GET /guilds/{guildID}/clients/{clientID}/cases
func (s *Server) clientCases(w http.ResponseWriter, r *http.Request) {
	pctx := actorFromQuery(r).context(guildID(r))
	list, err := s.firm.ClientCases(r.Context(), pctx, mux.Vars(r)["clientID"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

// lawyerCaseload handles GET /guilds/{guildID}/lawyers/{userID}/cases
func (s *Server) lawyerCaseload(w http.ResponseWriter, r *http.Request) {
	pctx := actorFromQuery(r).context(guildID(r))
	list, err := s.firm.LawyerCaseload(r.Context(), pctx, mux.Vars(r)["userID"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}
