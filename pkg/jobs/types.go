package jobs

import (
	"time"

	"github.com/barrister-bot/barrister/pkg/staff"
)

// Status represents the lifecycle state of a job posting
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Posting is an open position the firm is hiring for
type Posting struct {
	ID          string     `json:"id"`
	GuildID     string     `json:"guild_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Role        staff.Role `json:"role"`
	Status      Status     `json:"status"`
	PostedBy    string     `json:"posted_by"`
	ClosedBy    string     `json:"closed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// IsOpen reports whether the posting accepts applications
func (p *Posting) IsOpen() bool {
	return p.Status == StatusOpen
}

// Application is one user's application to a posting
type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Statement string    `json:"statement,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
