package audit

import (
	"encoding/json"
	"time"
)

// Action represents the category of an audited action
type Action string

const (
	// Staff lifecycle
	ActionStaffHired    Action = "staff_hired"
	ActionStaffPromoted Action = "staff_promoted"
	ActionStaffDemoted  Action = "staff_demoted"
	ActionStaffFired    Action = "staff_fired"

	// Case lifecycle
	ActionCaseOpened      Action = "case_opened"
	ActionCaseAssigned    Action = "case_assigned"
	ActionCaseUnassigned  Action = "case_unassigned"
	ActionLeadAttorneySet Action = "lead_attorney_set"
	ActionCaseClosed      Action = "case_closed"

	// Jobs and retainers
	ActionJobPosted      Action = "job_posted"
	ActionJobClosed      Action = "job_closed"
	ActionRetainerSigned Action = "retainer_signed"

	// Administration
	ActionConfigChanged     Action = "config_changed"
	ActionPermissionDenied  Action = "permission_denied"
	ActionRoleLimitBypassed Action = "role_limit_bypassed"
	ActionChannelCleanup    Action = "channel_cleanup"
)

// Severity grades an audit entry for operator triage
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityTable fixes the severity derived from each action
var severityTable = map[Action]Severity{
	ActionStaffHired:        SeverityMedium,
	ActionStaffPromoted:     SeverityMedium,
	ActionStaffDemoted:      SeverityMedium,
	ActionStaffFired:        SeverityHigh,
	ActionCaseOpened:        SeverityLow,
	ActionCaseAssigned:      SeverityLow,
	ActionCaseUnassigned:    SeverityLow,
	ActionLeadAttorneySet:   SeverityMedium,
	ActionCaseClosed:        SeverityLow,
	ActionJobPosted:         SeverityLow,
	ActionJobClosed:         SeverityLow,
	ActionRetainerSigned:    SeverityMedium,
	ActionConfigChanged:     SeverityHigh,
	ActionPermissionDenied:  SeverityMedium,
	ActionRoleLimitBypassed: SeverityCritical,
	ActionChannelCleanup:    SeverityLow,
}

// SeverityOf returns the static severity for an action, defaulting to low
func SeverityOf(action Action) Severity {
	if s, ok := severityTable[action]; ok {
		return s
	}
	return SeverityLow
}

// Snapshot captures a staff record's role and status at a point in time
type Snapshot struct {
	Role   string `json:"role,omitempty"`
	Status string `json:"status,omitempty"`
}

// BypassInfo records the particulars of a guild owner rule bypass
type BypassInfo struct {
	Rule         string `json:"rule"`
	CurrentCount int    `json:"current_count"`
	MaxCount     int    `json:"max_count"`
	Reason       string `json:"reason"`
}

// Details is the structured payload of an audit entry: typed before/after
// snapshots and bypass info, plus an open metadata bag for anything else.
type Details struct {
	Before     *Snapshot              `json:"before,omitempty"`
	After      *Snapshot              `json:"after,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	BypassInfo *BypassInfo            `json:"bypass_info,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Entry is a single append-only audit record. There is deliberately no
// update or delete API; retention pruning is the janitor's job.
type Entry struct {
	ID                int64     `json:"id"`
	GuildID           string    `json:"guild_id"`
	Action            Action    `json:"action"`
	ActorID           string    `json:"actor_id"`
	TargetID          string    `json:"target_id,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	Details           Details   `json:"details"`
	Severity          Severity  `json:"severity"`
	IsGuildOwnerBypass bool     `json:"is_guild_owner_bypass,omitempty"`
}

// NewEntry builds an entry with severity derived from the action
func NewEntry(guildID string, action Action, actorID, targetID string, details Details) *Entry {
	return &Entry{
		GuildID:   guildID,
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Timestamp: time.Now().UTC(),
		Details:   details,
		Severity:  SeverityOf(action),
	}
}

// ToJSON serializes the entry
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// SearchFilter narrows audit queries
type SearchFilter struct {
	GuildID    string
	Actions    []Action
	ActorID    string
	TargetID   string
	Severity   Severity
	BypassOnly bool
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Offset     int
}
