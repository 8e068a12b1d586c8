package staff

import (
	"time"
)

// Status represents the lifecycle state of a staff record
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
)

// ActionType categorizes a history entry
type ActionType string

const (
	ActionHire      ActionType = "hire"
	ActionPromotion ActionType = "promotion"
	ActionDemotion  ActionType = "demotion"
	ActionFire      ActionType = "fire"
)

// HistoryEntry records one role change on a staff record
type HistoryEntry struct {
	FromRole   Role       `json:"from_role,omitempty"`
	ToRole     Role       `json:"to_role,omitempty"`
	ActorID    string     `json:"actor_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Reason     string     `json:"reason,omitempty"`
	ActionType ActionType `json:"action_type"`
}

// Record is the persisted staff record. A user has at most one active record
// per guild; termination is a status change, never a delete, and re-hiring
// reactivates the existing record.
type Record struct {
	ID        int64          `json:"id"`
	GuildID   string         `json:"guild_id"`
	UserID    string         `json:"user_id"`
	Role      Role           `json:"role"`
	Status    Status         `json:"status"`
	History   []HistoryEntry `json:"history"`
	HiredBy   string         `json:"hired_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsActive reports whether the record counts against role caps
func (r *Record) IsActive() bool {
	return r.Status == StatusActive
}
