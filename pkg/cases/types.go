package cases

import (
	"time"
)

// Status represents the lifecycle state of a case
type Status string

const (
	StatusPending Status = "pending"
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
)

// Result records how a closed case ended
type Result string

const (
	ResultWin        Result = "win"
	ResultLoss       Result = "loss"
	ResultSettlement Result = "settlement"
	ResultDismissed  Result = "dismissed"
	ResultWithdrawn  Result = "withdrawn"
)

// MaxActivePerClient caps non-closed cases per client per guild
const MaxActivePerClient = 5

// ValidResult reports whether r names a known case outcome
func ValidResult(r Result) bool {
	switch r {
	case ResultWin, ResultLoss, ResultSettlement, ResultDismissed, ResultWithdrawn:
		return true
	}
	return false
}

// Case is a persisted legal case
type Case struct {
	ID              int64     `json:"id"`
	GuildID         string    `json:"guild_id"`
	CaseNumber      string    `json:"case_number"`
	ClientID        string    `json:"client_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Status          Status    `json:"status"`
	AssignedLawyers []string  `json:"assigned_lawyers"`
	LeadAttorneyID  string    `json:"lead_attorney_id,omitempty"`
	Result          Result    `json:"result,omitempty"`
	OpenedBy        string    `json:"opened_by"`
	ClosedBy        string    `json:"closed_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
}

// IsClosed reports whether the case no longer counts against the client cap
func (c *Case) IsClosed() bool {
	return c.Status == StatusClosed
}

// HasLawyer reports whether the user is among the assigned lawyers
func (c *Case) HasLawyer(userID string) bool {
	for _, id := range c.AssignedLawyers {
		if id == userID {
			return true
		}
	}
	return false
}
