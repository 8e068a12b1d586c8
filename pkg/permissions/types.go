package permissions

import (
	"time"
)

// Action represents a named authority checked per guild configuration
type Action string

const (
	ActionAdmin        Action = "admin"
	ActionSeniorStaff  Action = "senior-staff"
	ActionCase         Action = "case"
	ActionConfig       Action = "config"
	ActionLawyer       Action = "lawyer"
	ActionLeadAttorney Action = "lead-attorney"
	ActionRepair       Action = "repair"
)

// AllActions returns the closed set of permission actions
func AllActions() []Action {
	return []Action{
		ActionAdmin,
		ActionSeniorStaff,
		ActionCase,
		ActionConfig,
		ActionLawyer,
		ActionLeadAttorney,
		ActionRepair,
	}
}

// ValidAction reports whether s names a known action
func ValidAction(s string) bool {
	for _, a := range AllActions() {
		if string(a) == s {
			return true
		}
	}
	return false
}

// Context carries per-request identity for permission decisions.
// It is constructed fresh for every inbound command and never persisted.
type Context struct {
	GuildID      string   `json:"guild_id"`
	UserID       string   `json:"user_id"`
	UserRoles    []string `json:"user_roles"`
	IsGuildOwner bool     `json:"is_guild_owner"`
}

// Valid reports whether the context carries the mandatory identifiers
func (c Context) Valid() bool {
	return c.GuildID != "" && c.UserID != ""
}

// HasRole reports whether the context holds the given role ID
func (c Context) HasRole(roleID string) bool {
	for _, r := range c.UserRoles {
		if r == roleID {
			return true
		}
	}
	return false
}

// GuildConfig is the persisted per-guild permission configuration.
// Every action in the closed set has an entry; an absent or empty list
// means no roles are granted, never "allow".
type GuildConfig struct {
	GuildID     string              `json:"guild_id"`
	ActionRoles map[Action][]string `json:"action_roles"`
	AdminRoles  []string            `json:"admin_roles"`
	AdminUsers  []string            `json:"admin_users"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// DefaultGuildConfig returns an empty configuration with every action key present
func DefaultGuildConfig(guildID string) *GuildConfig {
	actions := make(map[Action][]string, len(AllActions()))
	for _, a := range AllActions() {
		actions[a] = []string{}
	}
	return &GuildConfig{
		GuildID:     guildID,
		ActionRoles: actions,
		AdminRoles:  []string{},
		AdminUsers:  []string{},
	}
}

// Normalize fills in any missing action keys with empty role lists
func (g *GuildConfig) Normalize() {
	if g.ActionRoles == nil {
		g.ActionRoles = make(map[Action][]string, len(AllActions()))
	}
	for _, a := range AllActions() {
		if _, ok := g.ActionRoles[a]; !ok {
			g.ActionRoles[a] = []string{}
		}
	}
	if g.AdminRoles == nil {
		g.AdminRoles = []string{}
	}
	if g.AdminUsers == nil {
		g.AdminUsers = []string{}
	}
}

// RolesFor returns the role list configured for an action
func (g *GuildConfig) RolesFor(action Action) []string {
	if g.ActionRoles == nil {
		return nil
	}
	return g.ActionRoles[action]
}
