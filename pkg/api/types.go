package api

import (
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/rules"
)

// Actor identifies who is performing a request. Every mutating endpoint
// carries one; the Discord-facing command handler fills it in from the
// interaction it received.
type Actor struct {
	UserID       string   `json:"user_id"`
	UserRoles    []string `json:"user_roles"`
	IsGuildOwner bool     `json:"is_guild_owner"`
}

func (a Actor) context(guildID string) permissions.Context {
	return permissions.Context{
		GuildID:      guildID,
		UserID:       a.UserID,
		UserRoles:    a.UserRoles,
		IsGuildOwner: a.IsGuildOwner,
	}
}

// CheckRequest asks whether an actor holds a permission action
type CheckRequest struct {
	Actor  Actor  `json:"actor"`
	Action string `json:"action"`
}

// CheckResponse is the yes/no answer to a permission check
type CheckResponse struct {
	Allowed bool   `json:"allowed"`
	Action  string `json:"action"`
}

// HireRequest asks to hire a user into a staff role
type HireRequest struct {
	Actor        Actor  `json:"actor"`
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	Reason       string `json:"reason,omitempty"`
	BypassReason string `json:"bypass_reason,omitempty"`
}

// RoleChangeRequest asks to promote or demote a staff member
type RoleChangeRequest struct {
	Actor        Actor  `json:"actor"`
	UserID       string `json:"user_id"`
	NewRole      string `json:"new_role"`
	Reason       string `json:"reason,omitempty"`
	BypassReason string `json:"bypass_reason,omitempty"`
}

// FireRequest asks to terminate a staff member
type FireRequest struct {
	Actor  Actor  `json:"actor"`
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// OpenCaseRequest asks to open a case for a client
type OpenCaseRequest struct {
	Actor       Actor  `json:"actor"`
	ClientID    string `json:"client_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CaseLawyerRequest names a lawyer for assignment or lead designation
type CaseLawyerRequest struct {
	Actor  Actor  `json:"actor"`
	UserID string `json:"user_id"`
}

// CloseCaseRequest closes a case with an outcome
type CloseCaseRequest struct {
	Actor  Actor  `json:"actor"`
	Result string `json:"result"`
}

// ValidateRequest is the generic validation dispatch payload
type ValidateRequest struct {
	Actor     Actor                  `json:"actor"`
	Entity    string                 `json:"entity"`
	Operation string                 `json:"operation"`
	Data      map[string]interface{} `json:"data"`
}

// ValidateResponse mirrors the merged rule result
type ValidateResponse struct {
	Valid           bool                   `json:"valid"`
	Errors          []string               `json:"errors,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
	BypassAvailable bool                   `json:"bypass_available,omitempty"`
	CurrentCount    *int                   `json:"current_count,omitempty"`
	MaxCount        *int                   `json:"max_count,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

func toValidateResponse(r rules.Result) ValidateResponse {
	return ValidateResponse{
		Valid:           r.Valid,
		Errors:          r.Errors,
		Warnings:        r.Warnings,
		BypassAvailable: r.BypassAvailable,
		CurrentCount:    r.CurrentCount,
		MaxCount:        r.MaxCount,
		Metadata:        r.Metadata,
	}
}

// ConfigUpdateRequest updates one permission action's granted roles
type ConfigUpdateRequest struct {
	Actor   Actor    `json:"actor"`
	RoleIDs []string `json:"role_ids"`
}

// AdminUpdateRequest updates the guild's admin roles or admin users
type AdminUpdateRequest struct {
	Actor Actor    `json:"actor"`
	IDs   []string `json:"ids"`
}

// PostJobRequest opens a job posting
type PostJobRequest struct {
	Actor       Actor  `json:"actor"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Role        string `json:"role"`
}

// ApplyRequest applies to a job posting
type ApplyRequest struct {
	Actor     Actor  `json:"actor"`
	Statement string `json:"statement,omitempty"`
}

// CreateRetainerRequest opens a pending retainer for a client
type CreateRetainerRequest struct {
	Actor    Actor  `json:"actor"`
	ClientID string `json:"client_id"`
	Terms    string `json:"terms,omitempty"`
}

// SignRetainerRequest records the client's signature
type SignRetainerRequest struct {
	Actor      Actor  `json:"actor"`
	SignedName string `json:"signed_name"`
}
